package main

import (
	"bytes"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/studylog/apps/api/echo"
	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/curriculum"
	"github.com/trezcool/studylog/core/progress"
	"github.com/trezcool/studylog/core/student"
	inmemdb "github.com/trezcool/studylog/storage/database/inmem"
	testutil "github.com/trezcool/studylog/tests"
)

type testCLI struct {
	*commandLine
	out       *bytes.Buffer
	currRepo  curriculum.Repository
	stdntRepo student.Repository
	logRepo   progress.Repository
}

func setup(t *testing.T) testCLI {
	conf := &core.Config{
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	}

	// set up DB & repos
	db := inmemdb.Open()
	tc := testCLI{
		out:       new(bytes.Buffer),
		currRepo:  inmemdb.NewCurriculumRepository(db),
		stdntRepo: inmemdb.NewStudentRepository(db),
		logRepo:   inmemdb.NewProgressRepository(db),
	}

	currSvc := curriculum.NewService(tc.currRepo)
	stdntSvc := student.NewService(tc.stdntRepo, currSvc)

	// start CLI
	tc.commandLine = &commandLine{
		conf:        conf,
		progressSvc: progress.NewService(conf, tc.logRepo, stdntSvc, currSvc, nil, nil),
		out:         tc.out,
	}
	return tc
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, err)
	case tt.wantErrStr != "":
		require.Error(t, err)
		assert.Equal(t, tt.wantErrStr, err.Error())
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "quiz_time_limit", "sql"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(args))
		})
	}
}

func Test_commandLine_token(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "no args", args: []string{"token"}, wantErr: errHelp},
		{name: "no role", args: []string{"token", "-subject", "abc"}, wantErr: errHelp},
		{name: "bad role", args: []string{"token", "-subject", "abc", "-role", "janitor"}, wantErr: errInvalidRole},
		{name: "student", args: []string{"token", "-subject", "abc", "-role", "student"}, extra: "abc"},
		{name: "mentor", args: []string{"token", "-subject", "m1", "-role", "mentor", "-name", "Mia"}, extra: "Mia"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			cli.out.Reset()
			err := cli.run(args)
			tt.check(t, err)
			if err != nil {
				return
			}

			claims := new(echoapi.Claims)
			token, err := jwt.ParseWithClaims(strings.TrimSpace(cli.out.String()), claims, func(*jwt.Token) (interface{}, error) {
				return []byte(cli.conf.SecretKey), nil
			})
			require.NoError(t, err)
			require.True(t, token.Valid)
			assert.Equal(t, tt.args[2], claims.Subject)
			assert.Equal(t, tt.args[4], claims.Role)
			assert.Equal(t, tt.extra, claims.Name)
		})
	}
}

func Test_commandLine_leaderboard(t *testing.T) {
	cli := setup(t)
	terminalWidthFunc = func() int { return 40 }

	t.Run("empty", func(t *testing.T) {
		cli.out.Reset()
		require.NoError(t, cli.run([]string{"admin", "leaderboard"}))
		assert.Equal(t, "no active students\n", cli.out.String())
	})

	track := testutil.CreateTrack(t, cli.currRepo, "go")
	m1 := testutil.CreateModule(t, cli.currRepo, track.ID, 1, false)
	ann := testutil.CreateStudent(t, cli.stdntRepo, track.ID, "ann", student.StatusActive, 7)
	ben := testutil.CreateStudent(t, cli.stdntRepo, track.ID, "ben with a very long name indeed", student.StatusActive, 7)
	testutil.CreateLog(t, cli.logRepo, ann.ID, m1.ID, time.Now().AddDate(0, 0, -1), 2.5, true)
	testutil.CreateLog(t, cli.logRepo, ben.ID, m1.ID, time.Now().AddDate(0, 0, -1), 4, true)

	t.Run("ranked", func(t *testing.T) {
		cli.out.Reset()
		require.NoError(t, cli.run([]string{"admin", "leaderboard"}))

		lines := strings.Split(strings.TrimRight(cli.out.String(), "\n"), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "RANK"))
		assert.Equal(t, "1      ben with a very lon…       4.00", lines[1])
		assert.Equal(t, "2      ann                        2.50", lines[2])
	})
}

func Test_commandLine_unknown(t *testing.T) {
	cli := setup(t)

	tests := []struct {
		cmd      string
		wantHint string
	}{
		{cmd: "migrat", wantHint: `did you mean "migrate"?`},
		{cmd: "tokn", wantHint: `did you mean "token"?`},
		{cmd: "leaderbord", wantHint: `did you mean "leaderboard"?`},
		{cmd: "xyz"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			cli.out.Reset()
			assert.Equal(t, errHelp, cli.run([]string{"admin", tt.cmd}))
			if tt.wantHint != "" {
				assert.Contains(t, cli.out.String(), tt.wantHint)
			} else {
				assert.NotContains(t, cli.out.String(), "did you mean")
			}
			assert.Contains(t, cli.out.String(), "Usage:")
		})
	}
}
