package validator

import (
	"strings"
	"testing"

	"github.com/scr-community/scr-dev-tools/internal/commands"
)

func validate(t *testing.T, text string) []Diagnostic {
	t.Helper()
	return Validate(Document{Text: text}, commands.Default())
}

func messagesContaining(diags []Diagnostic, substr string) []Diagnostic {
	var out []Diagnostic
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			out = append(out, d)
		}
	}
	return out
}

func TestCleanScript(t *testing.T) {
	text := `main:
	spawn "models/human/guard.tik"
	if (local.count == 3)
		println "three"
	thread patrol
end

patrol:
	playsound "alarm"
end
`
	diags := validate(t, text)
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %+v", diags)
	}
}

func TestMissingClosingBraces(t *testing.T) {
	text := "main:\n{\n{\nprintln \"x\"\nend"
	diags := validate(t, text)
	found := messagesContaining(diags, "missing 2 closing braces")
	if len(found) != 1 {
		t.Fatalf("expected exactly one brace error, got %+v", diags)
	}
	d := found[0]
	if d.Level != LevelError {
		t.Error("imbalance must be an error")
	}
	if d.Range.Start.Line != 4 {
		t.Errorf("imbalance should anchor at the last line, got %d", d.Range.Start.Line)
	}
}

func TestExtraClosingParens(t *testing.T) {
	diags := validate(t, "main:\nprintln (local.a))\nend")
	if len(messagesContaining(diags, "1 extra closing parentheses")) != 1 {
		t.Fatalf("expected extra-paren error, got %+v", diags)
	}
}

func TestDelimitersCountedInsideStrings(t *testing.T) {
	// Counting is textual on purpose: a brace inside a string literal still
	// trips the balance counter.
	diags := validate(t, "main:\nprintln \"{\"\nend")
	if len(messagesContaining(diags, "missing 1 closing braces")) != 1 {
		t.Fatalf("expected textual brace imbalance, got %+v", diags)
	}
}

func TestLabelResolution(t *testing.T) {
	text := `main:
thread mylabel
end

mylabel:
end
`
	diags := validate(t, text)
	if len(messagesContaining(diags, "not found")) != 0 {
		t.Fatalf("mylabel should resolve, got %+v", diags)
	}

	diags = validate(t, "main:\nthread missing_label\nend\n")
	found := messagesContaining(diags, "label 'missing_label' not found in this file")
	if len(found) != 1 {
		t.Fatalf("expected one unresolved-label warning, got %+v", diags)
	}
	d := found[0]
	if d.Level != LevelWarning {
		t.Error("unresolved label must be a warning")
	}
	if d.Range.Start.Line != 1 || d.Range.Start.Col != 7 {
		t.Errorf("warning should sit at the call column, got %+v", d.Range)
	}
}

func TestLabelSuggestions(t *testing.T) {
	text := `spawn_guards:
end
main:
thread spawn_gaurds
end
`
	diags := Validate(Document{URI: "file:///map.scr", Text: text}, commands.Default())
	found := messagesContaining(diags, "not found")
	if len(found) != 1 {
		t.Fatalf("expected unresolved label, got %+v", diags)
	}
	if len(found[0].Related) != 1 {
		t.Fatalf("expected one did-you-mean candidate, got %+v", found[0].Related)
	}
	rel := found[0].Related[0]
	if !strings.Contains(rel.Message, "spawn_guards") {
		t.Errorf("unexpected suggestion: %q", rel.Message)
	}
	if rel.Range.Start.Line != 0 {
		t.Errorf("suggestion should point at the definition line, got %d", rel.Range.Start.Line)
	}
}

func TestNoSuggestionsWithoutURI(t *testing.T) {
	text := "spawn_guards:\nend\nmain:\nthread spawn_gaurds\nend\n"
	diags := Validate(Document{Text: text}, commands.Default())
	found := messagesContaining(diags, "not found")
	if len(found) != 1 || found[0].Related != nil {
		t.Fatalf("related locations need a document URI, got %+v", found)
	}
}

func TestThreadTargetMayBeCommandOrKeyword(t *testing.T) {
	// A thread target that is itself a known command or keyword is not an
	// unresolved label.
	diags := validate(t, "main:\nthread spawn\nwaitthread end\nend\n")
	if len(messagesContaining(diags, "not found")) != 0 {
		t.Fatalf("expected no unresolved labels, got %+v", diags)
	}
}

func TestUnknownCommand(t *testing.T) {
	diags := validate(t, "main:\nspawn classname\nend\n")
	if len(messagesContaining(diags, "unknown command")) != 0 {
		t.Fatalf("spawn is in the table, got %+v", diags)
	}

	diags = validate(t, "main:\nteleportx classname\nend\n")
	found := messagesContaining(diags, "unknown command or keyword 'teleportx'")
	if len(found) != 1 {
		t.Fatalf("expected one unknown-command warning, got %+v", diags)
	}
	d := found[0]
	if d.Range.Start.Col != 0 || d.Range.End.Col != len("teleportx") {
		t.Errorf("warning should span the token, got %+v", d.Range)
	}
}

func TestUnknownCommandExemptions(t *testing.T) {
	text := `main:
$guard.health = 100
local.var = 5
level.done = 1
mylabel:
end
`
	diags := validate(t, text)
	if len(messagesContaining(diags, "unknown command")) != 0 {
		t.Fatalf("sigils, member access and labels are exempt, got %+v", diags)
	}
}

func TestUnknownCommandCaseInsensitive(t *testing.T) {
	diags := validate(t, "main:\nSPAWN classname\nIprintln \"hello\"\nend\n")
	if len(messagesContaining(diags, "unknown command")) != 0 {
		t.Fatalf("lookups are case-insensitive, got %+v", diags)
	}
}

func TestQuoteHeuristic(t *testing.T) {
	diags := validate(t, "main:\nprintln \"a\" \"b\nend\n")
	if len(messagesContaining(diags, "odd number of double quotes")) != 1 {
		t.Fatalf("three quotes should warn once, got %+v", diags)
	}

	for _, line := range []string{`println "a"`, `println "a" "b"`} {
		diags := validate(t, "main:\n"+line+"\nend\n")
		if len(messagesContaining(diags, "odd number")) != 0 {
			t.Errorf("%q should not warn, got %+v", line, diags)
		}
	}
}

func TestAssignmentInCondition(t *testing.T) {
	diags := validate(t, "main:\nif (local.x = 1)\nprintln \"x\"\nend\n")
	if len(messagesContaining(diags, "assignment in condition")) != 1 {
		t.Fatalf("expected assignment warning, got %+v", diags)
	}

	for _, line := range []string{
		"if (local.x == 1)",
		"while (local.x != 1)",
		"if (local.x <= 1)",
		"if (local.x >= 1)",
	} {
		diags := validate(t, "main:\n"+line+"\nprintln \"x\"\nend\n")
		if len(messagesContaining(diags, "assignment")) != 0 {
			t.Errorf("%q should not warn, got %+v", line, diags)
		}
	}
}

func TestBlockCommentsSkipped(t *testing.T) {
	text := `main:
/* bogus_command "unterminated
still inside { { {
done */ println "back"
end
`
	diags := validate(t, text)
	if len(diags) != 0 {
		t.Fatalf("block comment content must be ignored, got %+v", diags)
	}
}

func TestCaseLinesSkipped(t *testing.T) {
	text := `main:
switch (local.i)
{
case 1:
println "one"
default:
println "other"
}
end
`
	diags := validate(t, text)
	if len(diags) != 0 {
		t.Fatalf("case/default clauses are skipped, got %+v", diags)
	}
}

func TestEmptyTableTolerated(t *testing.T) {
	diags := Validate(Document{Text: "main:\nif (local.x == 1)\nprintln \"x\"\nend\n"}, commands.NewTable())
	// println is a builtin keyword; nothing else should trip.
	if len(diags) != 0 {
		t.Fatalf("expected keyword fallback with an empty table, got %+v", diags)
	}

	diags = Validate(Document{Text: "spawn x\n"}, commands.NewTable())
	if len(messagesContaining(diags, "unknown command or keyword 'spawn'")) != 1 {
		t.Fatalf("with an empty table spawn is unknown, got %+v", diags)
	}
}

func TestDeterministicOrdering(t *testing.T) {
	text := "teleportx a\nthread nowhere\n{\n"
	a := validate(t, text)
	b := validate(t, text)
	if len(a) != len(b) {
		t.Fatalf("non-deterministic output: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Message != b[i].Message {
			t.Fatalf("ordering differs at %d: %q vs %q", i, a[i].Message, b[i].Message)
		}
	}
	// Scan-pass warnings come first, unresolved labels next, imbalance last.
	if !strings.Contains(a[0].Message, "unknown command") ||
		!strings.Contains(a[1].Message, "not found") ||
		!strings.Contains(a[2].Message, "missing 1 closing braces") {
		t.Errorf("unexpected order: %+v", a)
	}
}
