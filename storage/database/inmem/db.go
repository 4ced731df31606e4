// Package inmemdb implements the repositories on mutex-guarded maps; used by tests and DB_ENGINE=inmem.
package inmemdb

import (
	"sync"

	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/quiz"
	"github.com/trezcool/studylog/core/student"
)

type (
	DB struct {
		curriculum *curriculumTables
		student    *studentTable
		progress   *logTable
		quiz       *quizTables
	}

	curriculumTables struct {
		tracks      map[string]*curriculum.Track
		modules     map[string]*curriculum.Module
		completions map[completionKey]*curriculum.Completion
		mutex       sync.RWMutex
	}

	completionKey struct {
		studentID string
		moduleID  string
	}

	studentTable struct {
		table map[string]*student.Student
		mutex sync.RWMutex
	}

	logTable struct {
		table map[string]*progress.Log
		mutex sync.RWMutex
	}

	quizTables struct {
		quizzes  map[string]*quiz.Quiz
		attempts []quiz.Attempt
		mutex    sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		curriculum: &curriculumTables{
			tracks:      make(map[string]*curriculum.Track),
			modules:     make(map[string]*curriculum.Module),
			completions: make(map[completionKey]*curriculum.Completion),
		},
		student:  &studentTable{table: make(map[string]*student.Student)},
		progress: &logTable{table: make(map[string]*progress.Log)},
		quiz:     &quizTables{quizzes: make(map[string]*quiz.Quiz)},
	}
}
