package database

import (
	"github.com/pkg/errors"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/quiz"
	"github.com/trezcool/studylog/core/student"
	inmemdb "github.com/trezcool/studylog/storage/database/inmem"
	sqlxrepos "github.com/trezcool/studylog/storage/database/sqlx"
)

const (
	EnginePostgres = "postgres"
	EngineInMem    = "inmem"
)

// Repositories groups the repositories of the configured engine.
type Repositories struct {
	Curriculum curriculum.Repository
	Student    student.Repository
	Progress   progress.Repository
	Quiz       quiz.Repository

	close func() error
}

// Close releases the underlying database, if any.
func (r Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// NewRepositories sets up the storage selected by conf.Database.Engine.
// For postgres, the database is created and migrated when needed.
func NewRepositories(conf *core.Config) (Repositories, error) {
	switch conf.Database.Engine {
	case EngineInMem:
		db := inmemdb.Open()
		return Repositories{
			Curriculum: inmemdb.NewCurriculumRepository(db),
			Student:    inmemdb.NewStudentRepository(db),
			Progress:   inmemdb.NewProgressRepository(db),
			Quiz:       inmemdb.NewQuizRepository(db),
		}, nil

	case EnginePostgres, "":
		if err := CreateIfNotExist(conf); err != nil {
			return Repositories{}, err
		}
		db, err := Open(conf)
		if err != nil {
			return Repositories{}, err
		}
		if err = Migrate(db.DB); err != nil {
			_ = db.Close()
			return Repositories{}, err
		}
		return Repositories{
			Curriculum: sqlxrepos.NewCurriculumRepository(db),
			Student:    sqlxrepos.NewStudentRepository(db),
			Progress:   sqlxrepos.NewProgressRepository(db),
			Quiz:       sqlxrepos.NewQuizRepository(db),
			close:      db.Close,
		}, nil

	default:
		return Repositories{}, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}
