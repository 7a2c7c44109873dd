package extern

import (
	"context"
	"os/exec"
	"strings"

	"github.com/macrolabs/stompcheck/stomp"
)

// SourceDumper recovers the compressed VBA source from a macro container
// using an external decompressor.
type SourceDumper struct {
	tool string
}

// NewSourceDumper returns a dumper for the named tool: "olevba" (oletools)
// or "sigtool" (ClamAV).
func NewSourceDumper(tool string) (*SourceDumper, error) {
	if tool == "" {
		tool = "olevba"
	}
	if tool != "olevba" && tool != "sigtool" {
		return nil, &stomp.UsageError{Msg: "source tool must be olevba or sigtool, got " + tool}
	}
	if _, err := exec.LookPath(tool); err != nil {
		hint := "install oletools (pip install oletools)"
		if tool == "sigtool" {
			hint = "install ClamAV (apt-get install clamav)"
		}
		return nil, &stomp.ToolNotFoundError{Tool: tool, Hint: hint}
	}
	return &SourceDumper{tool: tool}, nil
}

// Dump runs the decompressor and returns the recovered VBA source with the
// tool's own banner and separator lines removed, so the extractor only
// sees macro text.
func (s *SourceDumper) Dump(ctx context.Context, macroPath string) (string, error) {
	var out string
	var err error
	switch s.tool {
	case "sigtool":
		out, err = runTool(ctx, s.tool, s.tool, "--vba", macroPath)
	default:
		out, err = runTool(ctx, s.tool, s.tool, macroPath)
	}
	if err != nil {
		return "", err
	}
	return stripBanner(out), nil
}

// bannerPrefixes are olevba report lines interleaved with the macro text.
var bannerPrefixes = []string{
	"olevba ",
	"FILE:",
	"Type:",
	"VBA MACRO",
	"in file:",
	"XLMMacroDeobfuscator:",
}

// stripBanner drops decompressor report lines, keeping only VBA source.
func stripBanner(out string) string {
	var kept []string
	for _, line := range strings.Split(stomp.NormalizeLineEndings(out), "\n") {
		if isSeparator(line) || isBanner(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// isSeparator matches olevba's ===== / ----- / - - - rule lines.
func isSeparator(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	for _, r := range trimmed {
		if r != '=' && r != '-' && r != '+' && r != ' ' {
			return false
		}
	}
	return true
}

func isBanner(line string) bool {
	for _, prefix := range bannerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
