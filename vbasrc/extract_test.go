package vbasrc

import (
	"errors"
	"testing"

	"github.com/macrolabs/stompcheck/stomp"
)

const sampleSource = `Attribute VB_Name = "ThisDocument"

Private Sub DownloadPayload()
    Dim counter As Integer
    counter = 1
    Dim url As String
    url = "http://evil.example/p.exe" ' fetch target
    REM legacy note
    Call helper(counter)
End Sub

Function helper(n As Integer)
End Function
`

func TestExtractDeclarations(t *testing.T) {
	rep, err := Extract(sampleSource)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rep.Origin != stomp.OriginSource {
		t.Errorf("origin = %q, want %q", rep.Origin, stomp.OriginSource)
	}

	tests := []struct {
		key  string
		want stomp.SymbolKind
	}{
		{"downloadpayload", stomp.KindFunction},
		{"helper", stomp.KindFunction},
		{"counter", stomp.KindVariable},
		{"url", stomp.KindVariable},
		{"n", stomp.KindVariable},
	}
	for _, tt := range tests {
		sym, ok := rep.Symbols[tt.key]
		if !ok {
			t.Errorf("symbol %q missing", tt.key)
			continue
		}
		if sym.Kind != tt.want {
			t.Errorf("symbol %q kind = %s, want %s", tt.key, sym.Kind, tt.want)
		}
	}

	if _, ok := rep.Symbols["vb_name"]; ok {
		t.Error("Attribute lines are metadata and must not contribute symbols")
	}
	if _, ok := rep.Symbols["sub"]; ok {
		t.Error("reserved words must not become symbols")
	}
}

func TestExtractStringsAndComments(t *testing.T) {
	rep, err := Extract(sampleSource)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if _, ok := rep.Strings["http://evil.example/p.exe"]; !ok {
		t.Errorf("string literal missing, have %v", rep.Strings)
	}
	if _, ok := rep.Comments["fetch target"]; !ok {
		t.Errorf("apostrophe comment missing, have %v", rep.Comments)
	}
	if _, ok := rep.Comments["legacy note"]; !ok {
		t.Errorf("REM comment missing, have %v", rep.Comments)
	}
}

func TestExtractDoubledQuoteEscape(t *testing.T) {
	rep, err := Extract(`Sub s()
x = "say ""hi"" now"
End Sub`)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, ok := rep.Strings[`say "hi" now`]; !ok {
		t.Errorf("doubled quotes must collapse, have %v", rep.Strings)
	}
}

func TestExtractResolvesContinuations(t *testing.T) {
	// `Su _\nb` is not valid VBA, but a continued declaration line is:
	// the name lands on the next physical line.
	rep, err := Extract("Private Sub _\n    LongName()\nEnd Sub\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	sym, ok := rep.Symbols["longname"]
	if !ok {
		t.Fatalf("continued declaration not resolved, have %v", rep.Symbols)
	}
	if sym.Kind != stomp.KindFunction {
		t.Errorf("kind = %s, want %s", sym.Kind, stomp.KindFunction)
	}
}

func TestExtractContinuationMarkerInsideComment(t *testing.T) {
	// A comment ending in " _" is comment text, not a continuation:
	// the next physical line must still be parsed as code.
	tests := []struct {
		name string
		text string
	}{
		{"apostrophe comment", "' harmless note _\nSub Evil()\nEnd Sub\n"},
		{"rem comment", "Rem harmless note _\nSub Evil()\nEnd Sub\n"},
		{"trailing statement comment", "x = 1 ' harmless note _\nSub Evil()\nEnd Sub\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Extract(tt.text)
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			sym, ok := rep.Symbols["evil"]
			if !ok {
				t.Fatalf("declaration after the comment was swallowed, have %v", rep.Symbols)
			}
			if sym.Kind != stomp.KindFunction {
				t.Errorf("kind = %s, want %s", sym.Kind, stomp.KindFunction)
			}
			if _, ok := rep.Comments["harmless note"]; !ok {
				t.Errorf("comment not captured without its trailing underscore, have %v", rep.Comments)
			}
		})
	}
}

func TestExtractContinuationMarkerInsideString(t *testing.T) {
	// An underscore sequence inside a string literal is data.
	rep, err := Extract("Sub s()\nx = \"keep _\"\nEnd Sub\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, ok := rep.Strings["keep _"]; !ok {
		t.Errorf("string literal altered, have %v", rep.Strings)
	}
}

func TestExtractCommentTrailingUnderscore(t *testing.T) {
	// A comment whose text ends in `_` (last line, no newline) keys the
	// same way the disassembly side keys QuoteRem payloads.
	rep, err := Extract("Sub s()\nEnd Sub\n' ends oddly _")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, ok := rep.Comments["ends oddly"]; !ok {
		t.Errorf("trailing underscore must be stripped, have %v", rep.Comments)
	}
}

func TestExtractPropertyDeclaration(t *testing.T) {
	rep, err := Extract("Public Property Get Payload() As String\nEnd Property\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	sym, ok := rep.Symbols["payload"]
	if !ok {
		t.Fatalf("property name missing, have %v", rep.Symbols)
	}
	if sym.Kind != stomp.KindFunction {
		t.Errorf("kind = %s, want %s", sym.Kind, stomp.KindFunction)
	}
}

func TestExtractEndSubIsNotADeclaration(t *testing.T) {
	rep, err := Extract("Sub real()\nEnd Sub\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for key, sym := range rep.Symbols {
		if sym.Kind == stomp.KindFunction && key != "real" {
			t.Errorf("unexpected function symbol %q", key)
		}
	}
}

func TestExtractEmptySource(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace only", "  \n\t\n"},
		{"no tokens of interest", "&&& ::: %%%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep, err := Extract(tt.text)
			if err == nil {
				t.Fatalf("expected ParseError, got representation %+v", rep)
			}
			var parseErr *stomp.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestRemDoesNotEatIdentifiers(t *testing.T) {
	rep, err := Extract("Sub s()\nremainder = 1\nEnd Sub\n")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, ok := rep.Symbols["remainder"]; !ok {
		t.Errorf("identifier starting with rem must stay an identifier, have %v", rep.Symbols)
	}
	if len(rep.Comments) != 0 {
		t.Errorf("no comments expected, have %v", rep.Comments)
	}
}
