package sqlxrepos

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

const logColumns = "id, student_id, module_id, date, hours, activity, evidence_url, is_approved, " +
	"mentor_rating, quiz_score, approved_by, created_at, updated_at"

var (
	logOrderingFields = map[string]string{
		"date":       "date",
		"hours":      "hours",
		"created_at": "created_at",
	}
	defaultLogOrdering = []core.DBOrdering{{Field: "date"}, {Field: "created_at"}}
)

type logRow struct {
	ID           string       `db:"id"`
	StudentID    string       `db:"student_id"`
	ModuleID     string       `db:"module_id"`
	Date         time.Time    `db:"date"`
	Hours        float64      `db:"hours"`
	Activity     string       `db:"activity"`
	EvidenceURL  null.String  `db:"evidence_url"`
	IsApproved   bool         `db:"is_approved"`
	MentorRating null.Int     `db:"mentor_rating"`
	QuizScore    null.Float64 `db:"quiz_score"`
	ApprovedBy   null.String  `db:"approved_by"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

func toLogRow(l progress.Log) logRow {
	return logRow{
		ID:           l.ID,
		StudentID:    l.StudentID,
		ModuleID:     l.ModuleID,
		Date:         core.Day(l.Date),
		Hours:        core.RoundHours(l.Hours),
		Activity:     l.Activity,
		EvidenceURL:  null.NewString(l.EvidenceURL, l.EvidenceURL != ""),
		IsApproved:   l.IsApproved,
		MentorRating: null.IntFromPtr(l.MentorRating),
		QuizScore:    null.Float64FromPtr(l.QuizScore),
		ApprovedBy:   null.NewString(l.ApprovedBy, l.ApprovedBy != ""),
		CreatedAt:    l.CreatedAt.UTC(),
		UpdatedAt:    l.UpdatedAt.UTC(),
	}
}

func (row logRow) log() progress.Log {
	return progress.Log{
		ID:           row.ID,
		StudentID:    row.StudentID,
		ModuleID:     row.ModuleID,
		Date:         core.Day(row.Date),
		Hours:        row.Hours,
		Activity:     row.Activity,
		EvidenceURL:  row.EvidenceURL.String,
		IsApproved:   row.IsApproved,
		MentorRating: row.MentorRating.Ptr(),
		QuizScore:    row.QuizScore.Ptr(),
		ApprovedBy:   row.ApprovedBy.String,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func (repo *progressRepository) CreateLog(ctx context.Context, l progress.Log) (progress.Log, error) {
	const q = `INSERT INTO progress_log (` + logColumns + `)
		VALUES (:id, :student_id, :module_id, :date, :hours, :activity, :evidence_url, :is_approved,
			:mentor_rating, :quiz_score, :approved_by, :created_at, :updated_at)`
	row := toLogRow(l)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return progress.Log{}, errors.Wrap(err, "inserting log")
	}
	return row.log(), nil
}

func (repo *progressRepository) GetLog(ctx context.Context, id string) (progress.Log, error) {
	if !isUUID(id) {
		return progress.Log{}, progress.ErrLogNotFound
	}
	var row logRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+logColumns+` FROM progress_log WHERE id = $1`, id); err != nil {
		return progress.Log{}, trapNoRowsErr(err, progress.ErrLogNotFound, "finding log by ID")
	}
	return row.log(), nil
}

// pendingOnly reports why a conditional write on a pending log matched no row.
func (repo *progressRepository) pendingOnly(ctx context.Context, id string) error {
	l, err := repo.GetLog(ctx, id)
	if err != nil {
		return err
	}
	if l.IsApproved {
		return progress.ErrAlreadyReviewed
	}
	return progress.ErrLogNotFound
}

func (repo *progressRepository) UpdateLog(ctx context.Context, l progress.Log) (progress.Log, error) {
	if !isUUID(l.ID) {
		return progress.Log{}, progress.ErrLogNotFound
	}
	const q = `UPDATE progress_log
		SET date = :date, hours = :hours, activity = :activity, evidence_url = :evidence_url, updated_at = :updated_at
		WHERE id = :id AND NOT is_approved
		RETURNING ` + logColumns
	return repo.writePending(ctx, q, l, "updating log")
}

func (repo *progressRepository) ApproveLog(ctx context.Context, l progress.Log) (progress.Log, error) {
	if !isUUID(l.ID) {
		return progress.Log{}, progress.ErrLogNotFound
	}
	const q = `UPDATE progress_log
		SET is_approved = true, mentor_rating = :mentor_rating, quiz_score = :quiz_score,
			approved_by = :approved_by, updated_at = :updated_at
		WHERE id = :id AND NOT is_approved
		RETURNING ` + logColumns
	return repo.writePending(ctx, q, l, "approving log")
}

func (repo *progressRepository) writePending(ctx context.Context, q string, l progress.Log, msg string) (progress.Log, error) {
	rows, err := repo.db.NamedQueryContext(ctx, q, toLogRow(l))
	if err != nil {
		return progress.Log{}, errors.Wrap(err, msg)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return progress.Log{}, errors.Wrap(err, msg)
		}
		return progress.Log{}, repo.pendingOnly(ctx, l.ID)
	}
	var row logRow
	if err = rows.StructScan(&row); err != nil {
		return progress.Log{}, errors.Wrap(err, msg)
	}
	return row.log(), nil
}

func (repo *progressRepository) DeletePendingLog(ctx context.Context, id string) error {
	if !isUUID(id) {
		return progress.ErrLogNotFound
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM progress_log WHERE id = $1 AND NOT is_approved`, id)
	if err != nil {
		return errors.Wrap(err, "deleting log")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting deleted logs")
	}
	if n == 0 {
		return repo.pendingOnly(ctx, id)
	}
	return nil
}

func (repo *progressRepository) QueryLogs(ctx context.Context, filter progress.QueryFilter, orderings ...core.DBOrdering) ([]progress.Log, error) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.StudentID != "" {
		if !isUUID(filter.StudentID) {
			return []progress.Log{}, nil
		}
		conds = append(conds, "student_id = "+arg(filter.StudentID))
	}
	if filter.ModuleID != "" {
		if !isUUID(filter.ModuleID) {
			return []progress.Log{}, nil
		}
		conds = append(conds, "module_id = "+arg(filter.ModuleID))
	}
	if filter.IsApproved != nil {
		conds = append(conds, "is_approved = "+arg(*filter.IsApproved))
	}
	if from := filter.From(); !from.IsZero() {
		conds = append(conds, "date >= "+arg(from))
	}
	if to := filter.To(); !to.IsZero() {
		conds = append(conds, "date <= "+arg(to))
	}

	q := `SELECT ` + logColumns + ` FROM progress_log`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	orderings = core.CleanOrderings(orderings, logOrderingFields)
	if len(orderings) == 0 {
		orderings = defaultLogOrdering
	}
	orderList := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		orderList = append(orderList, ord.String())
	}
	q += " ORDER BY " + strings.Join(orderList, ", ")

	var rows []logRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying logs")
	}
	logs := make([]progress.Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, row.log())
	}
	return logs, nil
}

func (repo *progressRepository) QueryApprovedDays(ctx context.Context, studentID string, since time.Time) ([]progress.DayHours, error) {
	days := make([]progress.DayHours, 0)
	if !isUUID(studentID) {
		return days, nil
	}
	const q = `SELECT date AS day, SUM(hours) AS hours FROM progress_log
		WHERE student_id = $1 AND is_approved AND date >= $2
		GROUP BY date ORDER BY date DESC`
	if err := repo.db.SelectContext(ctx, &days, q, studentID, core.Day(since)); err != nil {
		return nil, errors.Wrap(err, "querying approved days")
	}
	for i := range days {
		days[i].Day = core.Day(days[i].Day)
	}
	return days, nil
}

func (repo *progressRepository) SumHoursForDate(ctx context.Context, studentID string, date time.Time, excludeLogID string) (float64, error) {
	if !isUUID(studentID) {
		return 0, nil
	}
	const q = `SELECT COALESCE(SUM(hours), 0) FROM progress_log
		WHERE student_id = $1 AND date = $2 AND ($3 = '' OR id::text <> $3)`
	var sum float64
	if err := repo.db.GetContext(ctx, &sum, q, studentID, core.Day(date), excludeLogID); err != nil {
		return 0, errors.Wrap(err, "summing hours for date")
	}
	return sum, nil
}

func (repo *progressRepository) TotalApprovedHours(ctx context.Context, studentID string) (float64, error) {
	if !isUUID(studentID) {
		return 0, nil
	}
	const q = `SELECT COALESCE(SUM(hours), 0) FROM progress_log WHERE student_id = $1 AND is_approved`
	var sum float64
	if err := repo.db.GetContext(ctx, &sum, q, studentID); err != nil {
		return 0, errors.Wrap(err, "summing approved hours")
	}
	return sum, nil
}

func (repo *progressRepository) QueryApprovedTotals(ctx context.Context) (map[string]float64, error) {
	var rows []struct {
		StudentID string  `db:"student_id"`
		Total     float64 `db:"total"`
	}
	const q = `SELECT student_id, SUM(hours) AS total FROM progress_log WHERE is_approved GROUP BY student_id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying approved totals")
	}
	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.StudentID] = row.Total
	}
	return totals, nil
}
