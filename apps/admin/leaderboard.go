package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	defaultWidth = 80
	minNameWidth = 8
)

func (cli *commandLine) leaderboard() error {
	entries, err := cli.progressSvc.Leaderboard(context.Background())
	if err != nil {
		return errors.Wrap(err, "loading leaderboard")
	}
	if len(entries) == 0 {
		fmt.Fprintln(cli.out, "no active students")
		return nil
	}

	width := terminalWidthFunc()
	if width <= 0 {
		width = defaultWidth
	}
	// rank (6) + hours (10) + separators
	nameWidth := width - 20
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}

	fmt.Fprintf(cli.out, "%-6s %-*s %10s\n", "RANK", nameWidth, "NAME", "HOURS")
	for _, e := range entries {
		fmt.Fprintf(cli.out, "%-6d %-*s %10.2f\n", e.Rank, nameWidth, truncate(e.Name, nameWidth), e.TotalApprovedHours)
	}
	return nil
}

func truncate(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max-1]) + "…"
}
