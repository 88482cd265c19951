package scan

import (
	"testing"
)

func TestStripBlockComments(t *testing.T) {
	out, in := StripBlockComments("code /* hidden", false)
	if out != "code " || !in {
		t.Errorf("expected open block comment, got %q (open=%v)", out, in)
	}

	out, in = StripBlockComments("still hidden */ visible", true)
	if out != " visible" || in {
		t.Errorf("expected comment to close, got %q (open=%v)", out, in)
	}

	out, in = StripBlockComments("a /* x */ b /* y */ c", false)
	if out != "a  b  c" || in {
		t.Errorf("inline comments not removed: %q (open=%v)", out, in)
	}

	out, in = StripBlockComments("fully inside", true)
	if out != "" || !in {
		t.Errorf("line inside block comment should be empty, got %q", out)
	}
}

func TestIsLabelDefinition(t *testing.T) {
	cases := []struct {
		content string
		want    bool
	}{
		{"main:", true},
		{"spawn_guards:", true},
		{"_hidden:", true},
		{"main::", false},
		{"case 1:", false},
		{"default:", false},
		{"main", false},
		{"other.scr::label:", false},
		{"3way:", false},
	}
	for _, c := range cases {
		if got := IsLabelDefinition(c.content); got != c.want {
			t.Errorf("IsLabelDefinition(%q) = %v, want %v", c.content, got, c.want)
		}
	}
}

func TestIsLabelLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"main:", true},
		{"dothing local.count: // entry", true},
		{"  indented:", true},
		{"case 1:", false},
		{"default:", false},
		{"println foo", false},
		{"// main:", false},
	}
	for _, c := range cases {
		if got := IsLabelLine(c.line); got != c.want {
			t.Errorf("IsLabelLine(%q) = %v, want %v", c.line, got, c.want)
		}
	}
}

func TestCallSites(t *testing.T) {
	sites := CallSites("thread mylabel")
	if len(sites) != 1 || sites[0].Target != "mylabel" || sites[0].Col != 7 {
		t.Fatalf("unexpected sites: %+v", sites)
	}

	// Qualified, sigil-prefixed, parenthesized and script-path targets are
	// not intra-file call sites.
	for _, line := range []string{
		"thread other.scr::label",
		"waitthread $player",
		"exec (local.target)",
		"exec global/door.scr",
	} {
		if sites := CallSites(line); len(sites) != 0 {
			t.Errorf("CallSites(%q) = %+v, want none", line, sites)
		}
	}

	sites = CallSites("waitthread setup exec teardown")
	if len(sites) != 2 {
		t.Fatalf("expected 2 sites, got %+v", sites)
	}
	if sites[0].Target != "setup" || sites[1].Target != "teardown" {
		t.Errorf("unexpected targets: %+v", sites)
	}
}

func TestHasAssignmentInCondition(t *testing.T) {
	cases := []struct {
		cond string
		want bool
	}{
		{"(local.x = 1)", true},
		{"(local.x == 1)", false},
		{"(local.x != 1)", false},
		{"(local.x <= 1)", false},
		{"(local.x >= 1)", false},
		{"(local.x = 1 && local.y == 2)", false}, // == present, assumed intentional
		{"(local.x)", false},
	}
	for _, c := range cases {
		if got := HasAssignmentInCondition(c.cond); got != c.want {
			t.Errorf("HasAssignmentInCondition(%q) = %v, want %v", c.cond, got, c.want)
		}
	}
}

func TestWordAt(t *testing.T) {
	line := "\tspawn $guard"
	word, start, end := WordAt(line, 3)
	if word != "spawn" || start != 1 || end != 6 {
		t.Errorf("WordAt mid-word = %q [%d:%d]", word, start, end)
	}
	// Word boundaries count too.
	if word, _, _ = WordAt(line, 1); word != "spawn" {
		t.Errorf("WordAt at word start = %q", word)
	}
	if word, _, _ = WordAt(line, 0); word != "" {
		t.Errorf("WordAt on whitespace = %q", word)
	}
	if word, _, _ = WordAt(line, 99); word != "" {
		t.Errorf("WordAt past end = %q", word)
	}
}

func TestKeywordLookup(t *testing.T) {
	for _, kw := range []string{"thread", "Thread", "WHILE", "self", "NULL"} {
		if !IsKeyword(kw) {
			t.Errorf("expected %q to be a keyword", kw)
		}
	}
	if IsKeyword("teleportx") {
		t.Error("teleportx should not be a keyword")
	}
	if cat := KeywordCategory("waitthread"); cat != "thread / execution" {
		t.Errorf("unexpected category: %q", cat)
	}
}
