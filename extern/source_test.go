package extern

import (
	"errors"
	"testing"

	"github.com/macrolabs/stompcheck/stomp"
)

func TestStripBanner(t *testing.T) {
	out := `olevba 0.60.1 on Python 3.11 - http://decalage.info/python/oletools
===============================================================================
FILE: sample.docm
Type: OpenXML
-------------------------------------------------------------------------------
VBA MACRO ThisDocument.cls
in file: word/vbaProject.bin - OLE stream: 'VBA/ThisDocument'
- - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
Private Sub Document_Open()
    MsgBox "hi"
End Sub
`
	got := stripBanner(out)
	want := `Private Sub Document_Open()
    MsgBox "hi"
End Sub
`
	if got != want {
		t.Errorf("stripBanner:\n got: %q\nwant: %q", got, want)
	}
}

func TestStripBannerKeepsCodeLookalikes(t *testing.T) {
	// A VBA line must survive even when it is mostly punctuation.
	out := "x = 1 - 2 - 3\n"
	if got := stripBanner(out); got != "x = 1 - 2 - 3\n" {
		t.Errorf("got %q", got)
	}
}

func TestNewSourceDumperRejectsUnknownTool(t *testing.T) {
	_, err := NewSourceDumper("strings")
	var usageErr *stomp.UsageError
	if !errors.As(err, &usageErr) {
		t.Fatalf("expected UsageError, got %T: %v", err, err)
	}
}

func TestNewDisassemblerRequiresInstallDir(t *testing.T) {
	_, err := NewDisassembler("", "python3")
	var notFound *stomp.ToolNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ToolNotFoundError, got %T: %v", err, err)
	}

	_, err = NewDisassembler(t.TempDir(), "python3")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ToolNotFoundError for dir without pcodedmp.py, got %T: %v", err, err)
	}
}
