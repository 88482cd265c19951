// Package validator implements the line-based script validator. It never
// builds a parse tree: every check is a textual heuristic over a single line,
// with a small amount of state (block comments, delimiter balance) carried
// across the pass. Malformed input always yields a best-effort diagnostic
// list, never a failure.
package validator

import (
	"fmt"
	"strings"

	"github.com/scr-community/scr-dev-tools/internal/commands"
	"github.com/scr-community/scr-dev-tools/internal/scan"
)

type DiagnosticLevel int

const (
	LevelError DiagnosticLevel = iota
	LevelWarning
)

// Source is the tag attached to every diagnostic produced here.
const Source = "scr-validator"

type Position struct {
	Line int
	Col  int
}

type Range struct {
	Start Position
	End   Position
}

// RelatedLocation points at a candidate definition for a "did you mean" hint.
type RelatedLocation struct {
	URI     string
	Range   Range
	Message string
}

type Diagnostic struct {
	Level   DiagnosticLevel
	Message string
	Range   Range
	Source  string
	Related []RelatedLocation
}

// Document is one immutable text snapshot. URI is optional; without it no
// related locations are attached.
type Document struct {
	URI  string
	Text string
}

// labelDef records one label definition found during the scan pass.
type labelDef struct {
	name string
	line int
}

// callSite records a thread/waitthread/exec statement referencing a label.
type callSite struct {
	target string
	line   int
	col    int
}

// scanState is the carry-over between lines of the scan pass.
type scanState struct {
	inBlockComment bool
	braces         int
	parens         int
	brackets       int
	labels         []labelDef
	callSites      []callSite
}

// Validate runs all checks over the document and returns diagnostics in
// discovery order: scan-pass findings in line order, unresolved thread calls
// next, delimiter imbalance last. Same inputs always produce the same list.
func Validate(doc Document, table *commands.Table) []Diagnostic {
	if table == nil {
		table = commands.NewTable()
	}
	lines := scan.SplitLines(doc.Text)

	var diags []Diagnostic
	state := scanState{}
	for i, raw := range lines {
		diags = state.scanLine(diags, i, raw, table)
	}

	diags = append(diags, resolveCallSites(doc, state, table)...)
	diags = append(diags, balanceErrors(state, lines)...)
	return diags
}

func (s *scanState) scanLine(diags []Diagnostic, lineNo int, raw string, table *commands.Table) []Diagnostic {
	line, stillOpen := scan.StripBlockComments(raw, s.inBlockComment)
	s.inBlockComment = stillOpen

	if scan.IsCommentOnly(line) {
		return diags
	}

	// Delimiter counting is deliberately textual: delimiters inside string
	// literals and trailing comments count too. Downstream consumers depend
	// on this behavior, do not "fix" it here.
	s.braces += strings.Count(line, "{") - strings.Count(line, "}")
	s.parens += strings.Count(line, "(") - strings.Count(line, ")")
	s.brackets += strings.Count(line, "[") - strings.Count(line, "]")

	stripped := strings.TrimSpace(scan.StripLineComment(line))
	isLabel := scan.IsLabelDefinition(stripped)
	if isLabel {
		s.labels = append(s.labels, labelDef{
			name: strings.TrimSuffix(stripped, ":"),
			line: lineNo,
		})
	}

	if scan.IsCaseClause(stripped) {
		return diags
	}

	for _, site := range scan.CallSites(line) {
		s.callSites = append(s.callSites, callSite{target: site.Target, line: lineNo, col: site.Col})
	}

	if strings.Count(line, `"`)%2 == 1 {
		diags = append(diags, Diagnostic{
			Level:   LevelWarning,
			Message: "odd number of double quotes, string may be unclosed",
			Range:   lineRange(lineNo, raw),
			Source:  Source,
		})
	}

	tok, col := scan.LeadingToken(line)
	lower := strings.ToLower(tok)
	if lower == "if" || lower == "while" {
		cond := scan.StripLineComment(line[col+len(tok):])
		if scan.HasAssignmentInCondition(cond) {
			diags = append(diags, Diagnostic{
				Level:   LevelWarning,
				Message: "assignment in condition, did you mean ==?",
				Range:   lineRange(lineNo, raw),
				Source:  Source,
			})
		}
	}

	if d, ok := unknownCommand(lineNo, line, tok, col, isLabel, table); ok {
		diags = append(diags, d)
	}
	return diags
}

// unknownCommand checks the line's leading identifier against the command
// table and the keyword set. Labels, entity references and member accesses
// are exempt.
func unknownCommand(lineNo int, line, tok string, col int, isLabel bool, table *commands.Table) (Diagnostic, bool) {
	if isLabel || tok == "" {
		return Diagnostic{}, false
	}
	if col+len(tok) < len(line) && line[col+len(tok)] == '.' {
		return Diagnostic{}, false
	}
	if table.Has(tok) || scan.IsKeyword(tok) {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Level:   LevelWarning,
		Message: fmt.Sprintf("unknown command or keyword '%s'", tok),
		Range: Range{
			Start: Position{Line: lineNo, Col: col},
			End:   Position{Line: lineNo, Col: col + len(tok)},
		},
		Source: Source,
	}, true
}

func resolveCallSites(doc Document, state scanState, table *commands.Table) []Diagnostic {
	defined := make(map[string]struct{}, len(state.labels))
	for _, l := range state.labels {
		defined[l.name] = struct{}{}
	}

	var diags []Diagnostic
	for _, site := range state.callSites {
		if _, ok := defined[site.target]; ok {
			continue
		}
		if table.Has(site.target) || scan.IsKeyword(site.target) {
			continue
		}
		d := Diagnostic{
			Level:   LevelWarning,
			Message: fmt.Sprintf("label '%s' not found in this file", site.target),
			Range: Range{
				Start: Position{Line: site.line, Col: site.col},
				End:   Position{Line: site.line, Col: site.col + len(site.target)},
			},
			Source: Source,
		}
		if doc.URI != "" {
			d.Related = similarLabels(doc.URI, site.target, state.labels)
		}
		diags = append(diags, d)
	}
	return diags
}

// maxLabelCandidates bounds the "did you mean" list. The similarity test is
// a shared 3-character prefix in either direction, case-insensitive; coarse
// on purpose.
const maxLabelCandidates = 3

func similarLabels(uri, target string, labels []labelDef) []RelatedLocation {
	var related []RelatedLocation
	lt := strings.ToLower(target)
	for _, l := range labels {
		if len(related) == maxLabelCandidates {
			break
		}
		ll := strings.ToLower(l.name)
		match := (len(lt) >= 3 && strings.Contains(ll, lt[:3])) ||
			(len(ll) >= 3 && strings.Contains(lt, ll[:3]))
		if !match {
			continue
		}
		related = append(related, RelatedLocation{
			URI: uri,
			Range: Range{
				Start: Position{Line: l.line, Col: 0},
				End:   Position{Line: l.line, Col: len(l.name)},
			},
			Message: fmt.Sprintf("did you mean '%s'?", l.name),
		})
	}
	return related
}

func balanceErrors(state scanState, lines []string) []Diagnostic {
	last := len(lines) - 1
	if last < 0 {
		last = 0
	}
	var lastLine string
	if len(lines) > 0 {
		lastLine = lines[last]
	}
	anchor := lineRange(last, lastLine)

	var diags []Diagnostic
	for _, c := range []struct {
		count int
		kind  string
		close string
	}{
		{state.braces, "braces", "closing braces"},
		{state.parens, "parentheses", "closing parentheses"},
		{state.brackets, "brackets", "closing brackets"},
	} {
		switch {
		case c.count > 0:
			diags = append(diags, Diagnostic{
				Level:   LevelError,
				Message: fmt.Sprintf("unbalanced %s: missing %d %s", c.kind, c.count, c.close),
				Range:   anchor,
				Source:  Source,
			})
		case c.count < 0:
			diags = append(diags, Diagnostic{
				Level:   LevelError,
				Message: fmt.Sprintf("unbalanced %s: %d extra %s", c.kind, -c.count, c.close),
				Range:   anchor,
				Source:  Source,
			})
		}
	}
	return diags
}

func lineRange(lineNo int, raw string) Range {
	return Range{
		Start: Position{Line: lineNo, Col: 0},
		End:   Position{Line: lineNo, Col: len(raw)},
	}
}
