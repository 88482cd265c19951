package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/scr-community/scr-dev-tools/internal/formatter"
	"github.com/scr-community/scr-dev-tools/internal/scan"
	"github.com/scr-community/scr-dev-tools/internal/validator"
)

func toProtocolPosition(p validator.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(p.Col),
	}
}

func toProtocolRange(r validator.Range) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(r.Start),
		End:   toProtocolPosition(r.End),
	}
}

func toProtocolDiagnostics(diags []validator.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := protocol.DiagnosticSeverityError
		if d.Level == validator.LevelWarning {
			severity = protocol.DiagnosticSeverityWarning
		}
		source := d.Source
		pd := protocol.Diagnostic{
			Range:    toProtocolRange(d.Range),
			Severity: &severity,
			Source:   &source,
			Message:  d.Message,
		}
		for _, rel := range d.Related {
			pd.RelatedInformation = append(pd.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{
					URI:   rel.URI,
					Range: toProtocolRange(rel.Range),
				},
				Message: rel.Message,
			})
		}
		out = append(out, pd)
	}
	return out
}

// formattingEdits turns line replacements into text edits spanning each
// original line.
func formattingEdits(text string, edits []formatter.Edit) []protocol.TextEdit {
	lines := scan.SplitLines(text)
	out := make([]protocol.TextEdit, 0, len(edits))
	for _, e := range edits {
		if e.Line < 0 || e.Line >= len(lines) {
			continue
		}
		out = append(out, protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(e.Line), Character: 0},
				End:   protocol.Position{Line: protocol.UInteger(e.Line), Character: protocol.UInteger(len(lines[e.Line]))},
			},
			NewText: e.NewText,
		})
	}
	return out
}

// applyChange splices newText over rng in text. A nil range replaces the
// whole document.
func applyChange(text string, rng *protocol.Range, newText string) string {
	if rng == nil {
		return newText
	}
	start := positionOffset(text, rng.Start)
	end := positionOffset(text, rng.End)
	if end < start {
		start, end = end, start
	}
	return text[:start] + newText + text[end:]
}

// positionOffset maps a protocol position to a byte offset, clamping
// positions past the end of a line or of the document.
func positionOffset(text string, pos protocol.Position) int {
	offset := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		next := strings.IndexByte(text[offset:], '\n')
		if next < 0 {
			return len(text)
		}
		offset += next + 1
	}
	rest := text[offset:]
	lineLen := len(rest)
	if next := strings.IndexByte(rest, '\n'); next >= 0 {
		lineLen = next
	}
	col := int(pos.Character)
	if col > lineLen {
		col = lineLen
	}
	return offset + col
}
