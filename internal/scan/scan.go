// Package scan holds the line classification helpers shared by the validator
// and the formatter. Everything here is a pure function over a single line of
// script text; no helper keeps state between calls.
package scan

import (
	"strings"
)

const (
	// VariableSigil prefixes entity references ($player, $spawnpoint).
	VariableSigil = "$"
	// ScopeQualifier separates a foreign script from a label (other.scr::label).
	ScopeQualifier = "::"
	// ScriptExt is the script file extension used by exec-style statements.
	ScriptExt = ".scr"

	lineComment      = "//"
	blockCommentOpen = "/*"
	blockCommentEnd  = "*/"
)

// Keyword categories. The partition is fixed process-wide; lookups are
// case-insensitive, so every entry is stored lowercase.
var (
	ControlKeywords = newSet(
		"if", "else", "while", "for", "switch", "case", "default",
		"break", "continue", "goto", "try", "throw", "catch", "end",
	)

	ThreadKeywords = newSet(
		"thread", "waitthread", "exec", "waitexec",
		"wait", "waittill", "waitall", "pause",
	)

	ScopeKeywords = newSet(
		"local", "level", "game", "parm", "group", "self", "owner",
	)

	BuiltinKeywords = newSet(
		"println", "print", "size", "abs", "int", "vector",
	)

	ConstantKeywords = newSet(
		"null", "nil", "true", "false",
	)
)

var allKeywords = union(
	ControlKeywords, ThreadKeywords, ScopeKeywords, BuiltinKeywords, ConstantKeywords,
)

func newSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func union(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for w := range s {
			out[w] = struct{}{}
		}
	}
	return out
}

// IsKeyword reports whether tok is a reserved word in any category.
func IsKeyword(tok string) bool {
	_, ok := allKeywords[strings.ToLower(tok)]
	return ok
}

// KeywordCategory names the category a keyword belongs to, or "" for
// non-keywords. Used by the hover surface.
func KeywordCategory(tok string) string {
	t := strings.ToLower(tok)
	switch {
	case contains(ControlKeywords, t):
		return "control flow"
	case contains(ThreadKeywords, t):
		return "thread / execution"
	case contains(ScopeKeywords, t):
		return "scope"
	case contains(BuiltinKeywords, t):
		return "built-in"
	case contains(ConstantKeywords, t):
		return "constant"
	}
	return ""
}

// Keywords returns the unified keyword set, sorted lazily by the caller.
func Keywords() []string {
	out := make([]string, 0, len(allKeywords))
	for w := range allKeywords {
		out = append(out, w)
	}
	return out
}

func contains(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

// SplitLines splits text on line boundaries, tolerating both \n and \r\n.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// StripBlockComments removes the parts of line covered by /* */ comments,
// carrying the open-comment flag across lines. It returns the visible text
// and whether a block comment is still open at the end of the line.
func StripBlockComments(line string, inBlock bool) (string, bool) {
	var b strings.Builder
	for {
		if inBlock {
			idx := strings.Index(line, blockCommentEnd)
			if idx < 0 {
				return b.String(), true
			}
			line = line[idx+len(blockCommentEnd):]
			inBlock = false
			continue
		}
		idx := strings.Index(line, blockCommentOpen)
		if idx < 0 {
			b.WriteString(line)
			return b.String(), false
		}
		b.WriteString(line[:idx])
		line = line[idx+len(blockCommentOpen):]
		inBlock = true
	}
}

// StripLineComment cuts line at the first // marker.
func StripLineComment(line string) string {
	if idx := strings.Index(line, lineComment); idx >= 0 {
		return line[:idx]
	}
	return line
}

// IsCommentOnly reports whether the trimmed line is empty or a // comment.
func IsCommentOnly(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, lineComment)
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdent(tok string) bool {
	if tok == "" || !isIdentStart(tok[0]) {
		return false
	}
	for i := 1; i < len(tok); i++ {
		if !isIdentChar(tok[i]) {
			return false
		}
	}
	return true
}

// WordAt returns the identifier covering byte column col in line, with its
// start and end offsets. An empty word means col does not touch one.
func WordAt(line string, col int) (string, int, int) {
	if col < 0 || col > len(line) {
		return "", 0, 0
	}
	start := col
	for start > 0 && isIdentChar(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && isIdentChar(line[end]) {
		end++
	}
	if start == end || !isIdentStart(line[start]) {
		return "", 0, 0
	}
	return line[start:end], start, end
}

// IsLabelDefinition reports whether content (already comment-stripped and
// trimmed) defines a jump label: identifier characters followed by a single
// colon. Scope qualifiers and case/default clauses never count.
func IsLabelDefinition(content string) bool {
	if !strings.HasSuffix(content, ":") || strings.HasSuffix(content, ScopeQualifier) {
		return false
	}
	name := content[:len(content)-1]
	if !isIdent(name) {
		return false
	}
	lower := strings.ToLower(name)
	return lower != "case" && lower != "default"
}

// IsLabelLine is the formatter's looser label test: the line starts with an
// identifier and ends with a colon, with arguments permitted before the
// colon and an optional trailing // comment after it.
func IsLabelLine(line string) bool {
	content := strings.TrimRight(StripLineComment(strings.TrimSpace(line)), " \t")
	if content == "" || IsCaseClause(content) {
		return false
	}
	if !isIdentStart(content[0]) {
		return false
	}
	return strings.HasSuffix(content, ":") && !strings.HasSuffix(content, ScopeQualifier)
}

// IsCaseClause reports whether the trimmed content is a `case <expr>:` or
// `default:` clause.
func IsCaseClause(content string) bool {
	tok, _ := LeadingToken(content)
	switch strings.ToLower(tok) {
	case "case", "default":
		return true
	}
	return false
}

// LeadingToken returns the first identifier token on the line and the byte
// column where it starts. An empty token means the line does not start with
// identifier text.
func LeadingToken(line string) (string, int) {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	start := i
	if i >= len(line) || !isIdentStart(line[i]) {
		return "", start
	}
	for i < len(line) && isIdentChar(line[i]) {
		i++
	}
	return line[start:i], start
}

// CallSite records a thread/waitthread/exec statement naming a bare label.
type CallSite struct {
	Target  string
	Keyword string
	Col     int
}

// CallSites extracts the intra-file label targets referenced on a line.
// Targets qualified into another file, entity references, parenthesized
// expressions and direct script paths are not call sites.
func CallSites(line string) []CallSite {
	var sites []CallSite
	fields := splitFields(line)
	for i := 0; i+1 < len(fields); i++ {
		kw := strings.ToLower(fields[i].text)
		if kw != "thread" && kw != "waitthread" && kw != "exec" {
			continue
		}
		target := fields[i+1]
		if strings.Contains(target.text, ScopeQualifier) ||
			strings.HasPrefix(target.text, VariableSigil) ||
			strings.HasPrefix(target.text, "(") ||
			strings.HasSuffix(strings.ToLower(target.text), ScriptExt) {
			continue
		}
		if !isIdent(target.text) {
			continue
		}
		sites = append(sites, CallSite{Target: target.text, Keyword: kw, Col: target.col})
	}
	return sites
}

type field struct {
	text string
	col  int
}

func splitFields(line string) []field {
	var out []field
	i := 0
	for i < len(line) {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		start := i
		for i < len(line) && line[i] != ' ' && line[i] != '\t' {
			i++
		}
		if i > start {
			out = append(out, field{text: line[start:i], col: start})
		}
	}
	return out
}

// HasAssignmentInCondition reports whether cond contains a bare = that is
// not part of ==, !=, <= or >=. Lines that already compare with == are
// assumed intentional.
func HasAssignmentInCondition(cond string) bool {
	if strings.Contains(cond, "==") {
		return false
	}
	for i := 0; i < len(cond); i++ {
		if cond[i] != '=' {
			continue
		}
		if i > 0 && isComparisonNeighbor(cond[i-1]) {
			continue
		}
		if i+1 < len(cond) && isComparisonNeighbor(cond[i+1]) {
			continue
		}
		return true
	}
	return false
}

func isComparisonNeighbor(c byte) bool {
	return c == '=' || c == '!' || c == '<' || c == '>'
}
