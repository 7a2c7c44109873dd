// Package extern invokes the external tools this analysis depends on: the
// pcodedmp p-code disassembler and a VBA source decompressor (olevba or
// ClamAV sigtool). Both are treated as black-box text producers; their
// output grammar is absorbed by the extractors, never here.
package extern

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/macrolabs/stompcheck/internal/debug"
	"github.com/macrolabs/stompcheck/stomp"
)

// runTool runs one external command to completion, buffering both output
// streams. The context kills the process on cancellation.
func runTool(ctx context.Context, tool string, name string, args ...string) (string, error) {
	debug.Debug("running external tool", "tool", tool, "cmd", name, "args", args)

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &stomp.ExternalToolError{
			Tool:   tool,
			Err:    err,
			Stderr: firstLine(stderr.String()),
		}
	}
	return stdout.String(), nil
}

// firstLine trims a stderr dump down to something printable in an error
// message.
func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
