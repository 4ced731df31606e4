package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core/curriculum"
)

type curriculumRepository struct {
	db *sqlx.DB
}

var _ curriculum.Repository = (*curriculumRepository)(nil) // interface compliance check

func NewCurriculumRepository(db *sqlx.DB) curriculum.Repository {
	return &curriculumRepository{db: db}
}

const moduleColumns = "id, track_id, title, display_order, has_project, is_active"

func (repo *curriculumRepository) CreateTrack(ctx context.Context, t curriculum.Track) (curriculum.Track, error) {
	const q = `INSERT INTO track (id, code, name, created_at) VALUES (:id, :code, :name, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, t); err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == "track_code_key" {
			return curriculum.Track{}, curriculum.ErrTrackCodeExists
		}
		return curriculum.Track{}, errors.Wrap(err, "inserting track")
	}
	return t, nil
}

func (repo *curriculumRepository) GetTrack(ctx context.Context, id string) (curriculum.Track, error) {
	if !isUUID(id) {
		return curriculum.Track{}, curriculum.ErrTrackNotFound
	}
	var t curriculum.Track
	err := repo.db.GetContext(ctx, &t, `SELECT id, code, name, created_at FROM track WHERE id = $1`, id)
	if err != nil {
		return curriculum.Track{}, trapNoRowsErr(err, curriculum.ErrTrackNotFound, "finding track by ID")
	}
	return t, nil
}

func (repo *curriculumRepository) CreateModule(ctx context.Context, m curriculum.Module) (curriculum.Module, error) {
	const q = `INSERT INTO module (` + moduleColumns + `)
		VALUES (:id, :track_id, :title, :display_order, :has_project, :is_active)`
	if _, err := repo.db.NamedExecContext(ctx, q, m); err != nil {
		if constraint, ok := uniqueConstraint(err); ok && constraint == "module_track_display_order_key" {
			return curriculum.Module{}, curriculum.ErrDisplayOrderExists
		}
		return curriculum.Module{}, errors.Wrap(err, "inserting module")
	}
	return m, nil
}

func (repo *curriculumRepository) GetModule(ctx context.Context, id string) (curriculum.Module, error) {
	if !isUUID(id) {
		return curriculum.Module{}, curriculum.ErrModuleNotFound
	}
	var m curriculum.Module
	err := repo.db.GetContext(ctx, &m, `SELECT `+moduleColumns+` FROM module WHERE id = $1`, id)
	if err != nil {
		return curriculum.Module{}, trapNoRowsErr(err, curriculum.ErrModuleNotFound, "finding module by ID")
	}
	return m, nil
}

func (repo *curriculumRepository) QueryModules(ctx context.Context, trackID string) ([]curriculum.Module, error) {
	modules := make([]curriculum.Module, 0)
	if !isUUID(trackID) {
		return modules, nil
	}
	err := repo.db.SelectContext(
		ctx, &modules,
		`SELECT `+moduleColumns+` FROM module WHERE track_id = $1 ORDER BY display_order`,
		trackID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	return modules, nil
}

func (repo *curriculumRepository) QueryCompletedModuleIDs(ctx context.Context, studentID string) ([]string, error) {
	ids := make([]string, 0)
	if !isUUID(studentID) {
		return ids, nil
	}
	err := repo.db.SelectContext(
		ctx, &ids,
		`SELECT module_id FROM module_completion WHERE student_id = $1 ORDER BY module_id`,
		studentID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	return ids, nil
}

// CreateCompletion relies on the (student_id, module_id) unique index to ignore concurrent duplicates.
func (repo *curriculumRepository) CreateCompletion(ctx context.Context, c curriculum.Completion) (bool, error) {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	const q = `INSERT INTO module_completion (student_id, module_id, completed_at)
		VALUES (:student_id, :module_id, :completed_at)
		ON CONFLICT (student_id, module_id) DO NOTHING`
	res, err := repo.db.NamedExecContext(ctx, q, c)
	if err != nil {
		return false, errors.Wrap(err, "inserting completion")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "counting inserted completions")
	}
	return n > 0, nil
}
