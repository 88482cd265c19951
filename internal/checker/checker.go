// Package checker integrates an external semantic checker binary. The binary
// receives the script on disk and prints a textual report, which is parsed
// back into the shared diagnostic shape. The checker is optional: any failure
// to run it yields zero diagnostics rather than an error surfaced to the user.
package checker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/scr-community/scr-dev-tools/internal/commands"
	"github.com/scr-community/scr-dev-tools/internal/validator"
)

// Runner abstracts the external process so report parsing can be tested
// against canned output.
type Runner interface {
	Run(ctx context.Context, name, text string, extraArgs []string) (string, error)
}

// ProcessRunner runs a checker binary against a temp copy of the script.
type ProcessRunner struct {
	Binary string
	Args   []string
	// Table, when set, is exported as a flat command list next to the
	// script and handed to the binary via -commands.
	Table *commands.Table
}

// Run writes text under a fresh temp directory, invokes the binary and
// returns its combined output. A non-zero exit is not an error: checkers
// report findings through the exit code as well as the output.
func (r *ProcessRunner) Run(ctx context.Context, name, text string, extraArgs []string) (string, error) {
	if r.Binary == "" {
		return "", fmt.Errorf("no checker binary configured")
	}
	dir, err := os.MkdirTemp("", "scrtool-check-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, scriptName(name))
	if err := os.WriteFile(script, []byte(text), 0o600); err != nil {
		return "", fmt.Errorf("write script: %w", err)
	}

	args := append([]string{}, r.Args...)
	if r.Table != nil {
		list := filepath.Join(dir, "commands.txt")
		f, err := os.Create(list)
		if err != nil {
			return "", fmt.Errorf("write command list: %w", err)
		}
		if err := r.Table.Export(f); err != nil {
			f.Close()
			return "", fmt.Errorf("write command list: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("write command list: %w", err)
		}
		args = append(args, "-commands", list)
	}
	args = append(args, extraArgs...)
	args = append(args, script)

	cmd := exec.CommandContext(ctx, r.Binary, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if _, exited := err.(*exec.ExitError); !exited {
			return "", fmt.Errorf("run %s: %w", r.Binary, err)
		}
	}
	return string(out), nil
}

// scriptName keeps the script's base name so the report's file references
// match, falling back to a fixed name for unnamed documents.
func scriptName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == "/" || base == "" {
		return "script.scr"
	}
	return base
}

// Check runs the checker and parses its report. Any runner error is
// swallowed: a missing or crashing checker must not block editing.
func Check(ctx context.Context, r Runner, name, text string, extraArgs []string) []validator.Diagnostic {
	if r == nil {
		return nil
	}
	out, err := r.Run(ctx, name, text, extraArgs)
	if err != nil {
		return nil
	}
	return ParseReport(out, name)
}

// headerPattern matches the block header line, e.g. `E: (test.scr, 3):`.
var headerPattern = regexp.MustCompile(`^([EW]):\s*\((.+?),\s*(\d+)\)\s*:?\s*$`)

// categoryPhrases are the checker's message prefixes, stripped before the
// message is surfaced.
var categoryPhrases = []string{
	"Script Error",
	"Script Warning",
	"Syntax Error",
	"Compile Error",
	"Runtime Error",
}

const caretMarker = "^~~~^"

// ParseReport extracts diagnostics from a checker report. Blocks follow the
// shape:
//
//	E: (file.scr, 3):
//	E: <offending line>
//	E: ^
//	E: ^~~~^ Script Error : <message>
//
// Line numbers are 1-based in the report. Blocks naming a file other than
// scriptName are discarded, and anything unrecognized is skipped: the
// checker's output is not under our control and may be garbled.
func ParseReport(report, scriptName string) []validator.Diagnostic {
	base := filepath.Base(scriptName)
	var diags []validator.Diagnostic

	var (
		open     bool
		severity validator.DiagnosticLevel
		line     int
		col      int
		ours     bool
	)
	reset := func() { open, col = false, 0 }

	for _, raw := range strings.Split(report, "\n") {
		if m := headerPattern.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
			n, err := strconv.Atoi(m[3])
			if err != nil || n < 1 {
				reset()
				continue
			}
			open = true
			severity = letterLevel(m[1])
			line = n - 1
			col = 0
			ours = filepath.Base(strings.TrimSpace(m[2])) == base
			continue
		}
		if !open {
			continue
		}
		rest, ok := stripLetterPrefix(raw)
		if !ok {
			reset()
			continue
		}
		if idx := strings.Index(rest, caretMarker); idx >= 0 {
			if ours {
				msg, level := splitMessage(rest[idx+len(caretMarker):], severity)
				if msg != "" {
					diags = append(diags, validator.Diagnostic{
						Level:   level,
						Message: msg,
						Range: validator.Range{
							Start: validator.Position{Line: line, Col: col},
							End:   validator.Position{Line: line, Col: col},
						},
						Source: checkerSource,
					})
				}
			}
			reset()
			continue
		}
		// A caret-only line marks the column under the offending text.
		if trimmed := strings.TrimRight(rest, " \t"); strings.Trim(trimmed, " \t^") == "" && strings.Contains(trimmed, "^") {
			col = strings.Index(rest, "^")
		}
	}
	return diags
}

const checkerSource = "scr-checker"

func letterLevel(letter string) validator.DiagnosticLevel {
	if letter == "W" {
		return validator.LevelWarning
	}
	return validator.LevelError
}

// splitMessage strips the category phrase from the tail of a caret line and
// refines the severity from it (the phrase is more specific than the
// letter prefix).
func splitMessage(tail string, fallback validator.DiagnosticLevel) (string, validator.DiagnosticLevel) {
	tail = strings.TrimSpace(tail)
	level := fallback
	if before, after, found := strings.Cut(tail, " : "); found {
		if strings.Contains(strings.ToLower(before), "warning") {
			level = validator.LevelWarning
		} else if strings.Contains(strings.ToLower(before), "error") {
			level = validator.LevelError
		}
		return strings.TrimSpace(after), level
	}
	for _, phrase := range categoryPhrases {
		if strings.HasPrefix(tail, phrase) {
			if strings.Contains(strings.ToLower(phrase), "warning") {
				level = validator.LevelWarning
			} else {
				level = validator.LevelError
			}
			msg := strings.TrimSpace(tail[len(phrase):])
			return strings.TrimSpace(strings.TrimPrefix(msg, ":")), level
		}
	}
	return tail, level
}

// stripLetterPrefix removes the `E: ` / `W: ` prefix report lines carry.
func stripLetterPrefix(line string) (string, bool) {
	if len(line) >= 2 && (line[0] == 'E' || line[0] == 'W') && line[1] == ':' {
		return strings.TrimPrefix(line[2:], " "), true
	}
	return "", false
}
