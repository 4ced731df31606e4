package progress

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
)

const (
	MinLogHours = 0.0
	MaxLogHours = 24.0

	DefaultDailyHourCap = 5.0
)

// RejectReason tells why a submission was not admitted.
type RejectReason string

const (
	ReasonEvidenceRequired     RejectReason = "evidence_required"
	ReasonDailyHourCapExceeded RejectReason = "daily_hour_cap_exceeded"
	ReasonOutOfRange           RejectReason = "out_of_range"
)

var errSubmissionRejected = errors.New("log submission rejected")

// Policy holds the admission rules of the gate.
type Policy struct {
	DailyHourCap float64
}

func DefaultPolicy() Policy {
	return Policy{DailyHourCap: DefaultDailyHourCap}
}

// Submission is a new or edited log as seen by the gate.
// ExistingHours is the student's total for the same day, without the log being edited.
type Submission struct {
	HasProject    bool
	EvidenceURL   string
	ExistingHours float64
	ProposedHours float64
}

type Decision struct {
	Accepted      bool
	Reason        RejectReason
	ExistingHours float64
	ProposedHours float64
	Cap           float64
}

// CheckSubmission admits or rejects a log submission.
// Rules are checked in order: hours range, evidence, daily cap.
// Sums are compared in hundredths of an hour so 3.5 + 1.5 is exactly at a 5.0 cap.
func CheckSubmission(policy Policy, sub Submission) Decision {
	d := Decision{
		ExistingHours: sub.ExistingHours,
		ProposedHours: sub.ProposedHours,
		Cap:           policy.DailyHourCap,
	}

	switch {
	case math.IsNaN(sub.ProposedHours) || sub.ProposedHours < MinLogHours || sub.ProposedHours > MaxLogHours:
		d.Reason = ReasonOutOfRange
	case sub.HasProject && core.CleanString(sub.EvidenceURL) == "":
		d.Reason = ReasonEvidenceRequired
	case core.Centi(sub.ExistingHours)+core.Centi(sub.ProposedHours) > core.Centi(policy.DailyHourCap):
		d.Reason = ReasonDailyHourCapExceeded
	default:
		d.Accepted = true
	}
	return d
}

// Err returns nil for an accepted decision and a *core.ValidationError otherwise.
func (d Decision) Err() error {
	if d.Accepted {
		return nil
	}

	fe := core.FieldError{Code: string(d.Reason)}
	switch d.Reason {
	case ReasonOutOfRange:
		fe.Field = "hours"
		fe.Error = fmt.Sprintf("hours must be between %g and %g", MinLogHours, MaxLogHours)
		fe.Context = map[string]interface{}{"min": MinLogHours, "max": MaxLogHours, "proposed_hours": d.ProposedHours}
	case ReasonEvidenceRequired:
		fe.Field = "evidence_url"
		fe.Error = "evidence is required for modules with a project"
	case ReasonDailyHourCapExceeded:
		fe.Field = "hours"
		fe.Error = fmt.Sprintf(
			"daily limit of %.2f hours exceeded: %.2f already logged, %.2f proposed",
			d.Cap, d.ExistingHours, d.ProposedHours,
		)
		fe.Context = map[string]interface{}{
			"existing_hours": core.RoundHours(d.ExistingHours),
			"proposed_hours": core.RoundHours(d.ProposedHours),
			"cap":            d.Cap,
		}
	}
	return core.NewValidationError(errSubmissionRejected, fe)
}
