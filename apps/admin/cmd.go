package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"

	"github.com/trezcool/studylog/core"
	"github.com/trezcool/studylog/core/progress"
)

var (
	terminalWidthFunc = terminalWidth // mockable

	errHelp = errors.New("help provided")

	commands = []string{"migrate", "token", "leaderboard"}
)

type leaderboardService interface {
	Leaderboard(ctx context.Context) ([]progress.LeaderboardEntry, error)
}

type commandLine struct {
	db          *sql.DB
	conf        *core.Config
	progressSvc leaderboardService
	out         io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a goose command (up, down, status, version, redo...)")
	fmt.Fprintln(cli.out, "  token -subject ID -role student|mentor|admin [-name NAME] - print an API token")
	fmt.Fprintln(cli.out, "  leaderboard - print the ranking of active students")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenSubject := tokenCmd.String("subject", "", "The student ID, or any staff identifier.")
	tokenRole := tokenCmd.String("role", "", "The token role: student, mentor or admin.")
	tokenName := tokenCmd.String("name", "", "The name reported in logs.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenSubject == "" || *tokenRole == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenSubject, *tokenName, *tokenRole)
	case "leaderboard":
		return cli.leaderboard()
	default:
		if suggestion := suggest(args[1], commands); suggestion != "" {
			fmt.Fprintf(cli.out, "unknown command %q, did you mean %q?\n", args[1], suggestion)
		}
		cli.printUsage()
		return errHelp
	}
}

// suggest returns the candidate closest to name, if close enough.
func suggest(name string, candidates []string) string {
	var (
		best      string
		bestRatio = 0.6
	)
	for _, c := range candidates {
		m := difflib.NewMatcher(strings.Split(name, ""), strings.Split(c, ""))
		if r := m.Ratio(); r >= bestRatio {
			best, bestRatio = c, r
		}
	}
	return best
}

func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
