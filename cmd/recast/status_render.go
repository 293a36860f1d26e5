package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"recast/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusKinds = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 22
)

// statusReport accumulates the lines printed by `recast status`.
type statusReport struct {
	colorize bool
	lines    []string
}

func newStatusReport(w io.Writer) *statusReport {
	return &statusReport{colorize: shouldColorize(w)}
}

func (r *statusReport) section(title string) {
	if len(r.lines) > 0 {
		r.lines = append(r.lines, "")
	}
	header := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	r.lines = append(r.lines, r.paint(statusInfo, header), r.paint(statusInfo, strings.Repeat("-", len(header))))
}

func (r *statusReport) add(label string, kind statusKind, message string) {
	text := "[" + statusKinds[kind].label + "]"
	if message != "" {
		text += " " + message
	}
	r.lines = append(r.lines, r.paint(kind, fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", text)))
}

func (r *statusReport) addCheck(result preflight.Result) {
	kind := statusOK
	if !result.Passed {
		kind = statusError
	}
	r.add(result.Name, kind, result.Detail)
}

func (r *statusReport) paint(kind statusKind, line string) string {
	if !r.colorize {
		return line
	}
	return statusKinds[kind].color + line + ansiReset
}

func (r *statusReport) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintln(w, strings.Join(r.lines, "\n"))
	return int64(n), err
}

// shouldColorize reports whether writer is an interactive terminal.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
