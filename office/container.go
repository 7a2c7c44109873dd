// Package office locates the VBA project binary inside an Office document.
//
// Legacy documents (.doc, .xls, .ppt) are OLE compound files carrying the
// VBA project directly; 2007+ documents (.docm, .xlsm, ...) are zip
// archives with a vbaProject.bin entry somewhere under word/, xl/ or ppt/.
package office

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/macrolabs/stompcheck/stomp"
)

var (
	zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Locate returns the path of the macro container to hand to the external
// tools. For OLE documents that is the document itself; for OOXML
// documents the vbaProject.bin entry is extracted to a temporary file.
// The returned cleanup func must be called on every exit path.
func Locate(docPath string) (macroPath string, cleanup func(), err error) {
	noop := func() {}

	f, err := os.Open(docPath)
	if err != nil {
		return "", noop, &stomp.UsageError{Msg: fmt.Sprintf("cannot open %s: %v", docPath, err)}
	}
	magic := make([]byte, 8)
	n, _ := io.ReadFull(f, magic)
	f.Close()
	magic = magic[:n]

	switch {
	case bytes.HasPrefix(magic, oleMagic):
		return docPath, noop, nil
	case bytes.HasPrefix(magic, zipMagic):
		return extractVBAProject(docPath)
	default:
		return "", noop, &stomp.UsageError{Msg: fmt.Sprintf("%s is not an Office document (unknown magic)", docPath)}
	}
}

// extractVBAProject copies the first vbaProject.bin entry of an OOXML
// archive to a temporary file.
func extractVBAProject(docPath string) (string, func(), error) {
	noop := func() {}

	zr, err := zip.OpenReader(docPath)
	if err != nil {
		return "", noop, &stomp.UsageError{Msg: fmt.Sprintf("cannot read %s as an OOXML archive: %v", docPath, err)}
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if !strings.EqualFold(path.Base(entry.Name), "vbaProject.bin") {
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return "", noop, fmt.Errorf("open %s in %s: %w", entry.Name, docPath, err)
		}
		defer rc.Close()

		tmp, err := os.CreateTemp("", "stompcheck-vbaproject-*.bin")
		if err != nil {
			return "", noop, err
		}
		cleanup := func() { os.Remove(tmp.Name()) }

		if _, err := io.Copy(tmp, rc); err != nil {
			tmp.Close()
			cleanup()
			return "", noop, fmt.Errorf("extract %s from %s: %w", entry.Name, docPath, err)
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return "", noop, err
		}
		return tmp.Name(), cleanup, nil
	}

	return "", noop, &stomp.UsageError{Msg: fmt.Sprintf("%s contains no vbaProject.bin (no macros?)", docPath)}
}
