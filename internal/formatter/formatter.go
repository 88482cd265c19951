// Package formatter rewrites the leading whitespace of each script line
// according to brace depth, label placement, single-line control bodies and
// switch-case alignment. Line content is never altered, only indentation.
// The pass is idempotent: formatting already-formatted text yields no edits.
package formatter

import (
	"strings"

	"github.com/scr-community/scr-dev-tools/internal/scan"
)

// Options selects the indent unit: one tab, or TabSize spaces.
type Options struct {
	InsertSpaces bool
	TabSize      int
}

// Edit replaces one full original line.
type Edit struct {
	Line    int
	NewText string
}

// state is the indentation bookkeeping threaded through the pass.
type state struct {
	level        int
	stack        []int // level snapshots pushed on entering brace blocks
	temp         int   // anticipated indent for dangling single-line control bodies
	labelComment bool  // next comment line sits one level shallower
	prevRender   int   // render level of the previous non-blank line
}

// Format computes the indentation edits for text. Only lines whose
// reconstruction differs from the original produce an edit.
func Format(text string, opts Options) []Edit {
	unit := "\t"
	if opts.InsertSpaces {
		width := opts.TabSize
		if width <= 0 {
			width = 4
		}
		unit = strings.Repeat(" ", width)
	}

	var edits []Edit
	st := state{prevRender: -1}
	for i, raw := range scan.SplitLines(text) {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}

		stripped := strings.TrimRight(scan.StripLineComment(trimmed), " \t")
		isComment := strings.HasPrefix(trimmed, "//")

		// Re-synchronize case/default to the enclosing switch block,
		// regardless of any drift accumulated before it.
		if scan.IsCaseClause(stripped) && len(st.stack) > 0 {
			st.level = st.stack[len(st.stack)-1] + 1
		}

		if strings.HasPrefix(trimmed, "}") {
			if n := len(st.stack); n > 0 {
				st.level = st.stack[n-1]
				st.stack = st.stack[:n-1]
			} else if st.level > 0 {
				st.level--
			}
			st.temp = 0
		}

		// A lone end closes a label body, but only at top level: inside
		// braces or behind a pending single-line body it is plain content.
		if strings.EqualFold(stripped, "end") && st.temp == 0 && len(st.stack) == 0 && st.level > 0 {
			st.level--
		}

		isLabel := scan.IsLabelLine(trimmed)
		render := st.renderLevel(trimmed, stripped, isLabel, isComment)

		content := strings.TrimLeft(raw, " \t")
		rebuilt := strings.Repeat(unit, render) + content
		if rebuilt != raw {
			edits = append(edits, Edit{Line: i, NewText: rebuilt})
		}
		st.prevRender = render

		st.update(stripped, render, isLabel, isComment)
	}
	return edits
}

// renderLevel computes the indent level this line is written at.
func (st *state) renderLevel(trimmed, stripped string, isLabel, isComment bool) int {
	switch {
	case isLabel:
		// Labels anchor at column zero whatever the nesting says.
		return 0
	case strings.HasPrefix(trimmed, "{"):
		// A block-opening brace belongs to the construct above it.
		if st.prevRender >= 0 {
			return st.prevRender
		}
		return st.level
	default:
		render := st.level
		if !strings.HasSuffix(stripped, "{") {
			render += st.temp
		}
		if isComment && st.labelComment && render > 0 {
			render--
		}
		return render
	}
}

// update adjusts the state for the line that follows.
func (st *state) update(stripped string, render int, isLabel, isComment bool) {
	switch {
	case strings.HasSuffix(stripped, "{"):
		st.stack = append(st.stack, render)
		st.level = render + 1
		st.temp = 0
	case scan.IsCaseClause(stripped):
		st.level++
	case isLabel:
		st.level++
		st.temp = 0
		st.labelComment = true
		return
	case isSingleLineControl(stripped):
		st.temp++
	case !isComment:
		st.temp = 0
	}
	if !isComment {
		st.labelComment = false
	}
}

// isSingleLineControl reports whether the line starts a brace-less control
// statement whose single body line should be indented once.
func isSingleLineControl(stripped string) bool {
	if strings.Contains(stripped, "{") {
		return false
	}
	tok, _ := scan.LeadingToken(stripped)
	switch strings.ToLower(tok) {
	case "if", "while", "for", "else", "elif":
		return true
	}
	return false
}
