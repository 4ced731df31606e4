package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studylog/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

const studentColumns = "id, track_id, name, email, target_hours_per_week, status, created_at, updated_at"

type studentRow struct {
	ID                 string      `db:"id"`
	TrackID            string      `db:"track_id"`
	Name               string      `db:"name"`
	Email              null.String `db:"email"`
	TargetHoursPerWeek int         `db:"target_hours_per_week"`
	Status             string      `db:"status"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

func toStudentRow(s student.Student) studentRow {
	return studentRow{
		ID:                 s.ID,
		TrackID:            s.TrackID,
		Name:               s.Name,
		Email:              null.NewString(s.Email, s.Email != ""),
		TargetHoursPerWeek: s.TargetHoursPerWeek,
		Status:             s.Status,
		CreatedAt:          s.CreatedAt.UTC(),
		UpdatedAt:          s.UpdatedAt.UTC(),
	}
}

func (row studentRow) student() student.Student {
	return student.Student{
		ID:                 row.ID,
		TrackID:            row.TrackID,
		Name:               row.Name,
		Email:              row.Email.String,
		TargetHoursPerWeek: row.TargetHoursPerWeek,
		Status:             row.Status,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	const q = `INSERT INTO student (` + studentColumns + `)
		VALUES (:id, :track_id, :name, :email, :target_hours_per_week, :status, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toStudentRow(s)); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if !isUUID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student by ID")
	}
	return row.student(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.TrackID != "" {
		if !isUUID(filter.TrackID) {
			return []student.Student{}, nil
		}
		conds = append(conds, "track_id = ?")
		args = append(args, filter.TrackID)
	}
	if len(filter.Statuses) > 0 {
		conds = append(conds, "status IN (?)")
		args = append(args, filter.Statuses)
	}

	q := `SELECT ` + studentColumns + ` FROM student`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name"

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expanding students query")
	}

	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.student())
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudentStatus(ctx context.Context, id, status string, updatedAt time.Time) (student.Student, error) {
	if !isUUID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	err := repo.db.GetContext(
		ctx, &row,
		`UPDATE student SET status = $2, updated_at = $3 WHERE id = $1 RETURNING `+studentColumns,
		id, status, updatedAt.UTC(),
	)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "updating student status")
	}
	return row.student(), nil
}
