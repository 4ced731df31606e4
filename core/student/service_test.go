package student_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/student"
	inmemdb "github.com/trezcool/studylog/storage/database/inmem"
	testutil "github.com/trezcool/studylog/tests"
)

func TestNewStudent_Validate(t *testing.T) {
	validate := testutil.NewValidator()

	tests := []struct {
		name       string
		ns         student.NewStudent
		wantFields []string
	}{
		{name: "valid", ns: student.NewStudent{TrackID: "t", Name: " Ann ", Email: "ANN@test.cd", TargetHoursPerWeek: 10}},
		{name: "empty", ns: student.NewStudent{}, wantFields: []string{"track_id", "name", "target_hours_per_week"}},
		{
			name:       "bad email and target",
			ns:         student.NewStudent{TrackID: "t", Name: "Ann", Email: "nope", TargetHoursPerWeek: 200},
			wantFields: []string{"email", "target_hours_per_week"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(validate)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "want validator.ValidationErrors; got %v", err)
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fe.Field())
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	repo := inmemdb.NewStudentRepository(db)
	currRepo := inmemdb.NewCurriculumRepository(db)
	svc := student.NewService(repo, curriculum.NewService(currRepo))
	validate := testutil.NewValidator()
	track := testutil.CreateTrack(t, currRepo, "go")

	ns := student.NewStudent{TrackID: " " + track.ID + " ", Name: " Ann ", Email: "ANN@test.cd", TargetHoursPerWeek: 10}
	require.NoError(t, ns.Validate(validate))
	ann, err := svc.Create(ctx, ns)
	require.NoError(t, err)
	assert.Equal(t, track.ID, ann.TrackID)
	assert.Equal(t, "Ann", ann.Name)
	assert.Equal(t, "ann@test.cd", ann.Email)
	assert.True(t, ann.IsActive())

	ben := testutil.CreateStudent(t, repo, "t2", "ben", student.StatusActive, 5)

	t.Run("unknown track", func(t *testing.T) {
		_, err := svc.Create(ctx, student.NewStudent{TrackID: "no-such-track", Name: "Cid", TargetHoursPerWeek: 5})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError; got %v", err)
		require.Len(t, vErr.Fields, 1)
		assert.Equal(t, "track_id", vErr.Fields[0].Field)
		assert.Equal(t, curriculum.ErrTrackNotFound, vErr.Err)

		all, err := svc.Query(ctx, student.QueryFilter{TrackID: "no-such-track"})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	got, err := svc.GetByID(ctx, " "+ann.ID+" ")
	require.NoError(t, err)
	assert.Equal(t, ann, got)

	_, err = svc.GetByID(ctx, "nope")
	assert.Equal(t, student.ErrNotFound, errors.Cause(err))

	ben, err = svc.SetStatus(ctx, ben.ID, student.StatusSuspended)
	require.NoError(t, err)
	assert.False(t, ben.IsActive())

	_, err = svc.SetStatus(ctx, ben.ID, "expelled")
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok)

	active, err := svc.QueryActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, []student.Student{ann}, active)

	byTrack, err := svc.Query(ctx, student.QueryFilter{TrackID: "t2"})
	require.NoError(t, err)
	assert.Equal(t, []student.Student{ben}, byTrack)
}
