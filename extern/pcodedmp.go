package extern

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	version "github.com/hashicorp/go-version"

	"github.com/macrolabs/stompcheck/stomp"
)

// MinPcodedmpVersion is the oldest pcodedmp release whose output grammar
// the extractor understands.
const MinPcodedmpVersion = "1.2.0"

// Disassembler wraps the pcodedmp.py script from
// https://github.com/bontchev/pcodedmp.
type Disassembler struct {
	script string
	python string
}

// NewDisassembler validates the installation directory (normally taken
// from PCODEDMP_DIR) and returns a runner for it.
func NewDisassembler(dir, python string) (*Disassembler, error) {
	if dir == "" {
		return nil, &stomp.ToolNotFoundError{
			Tool: "pcodedmp",
			Hint: "set PCODEDMP_DIR to the pcodedmp install directory (https://github.com/bontchev/pcodedmp)",
		}
	}
	script := filepath.Join(dir, "pcodedmp.py")
	if _, err := os.Stat(script); err != nil {
		return nil, &stomp.ToolNotFoundError{
			Tool: "pcodedmp",
			Hint: fmt.Sprintf("%s does not exist", script),
		}
	}
	if python == "" {
		python = "python3"
	}
	return &Disassembler{script: script, python: python}, nil
}

// Disassemble runs pcodedmp on a macro container and returns its raw
// textual output.
func (d *Disassembler) Disassemble(ctx context.Context, macroPath string) (string, error) {
	return runTool(ctx, "pcodedmp", d.python, d.script, macroPath)
}

var versionRe = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Version probes the installed pcodedmp release by scraping its help
// banner.
func (d *Disassembler) Version(ctx context.Context) (*version.Version, error) {
	out, err := runTool(ctx, "pcodedmp", d.python, d.script, "--version")
	if err != nil {
		// Older releases only expose the version in the -h banner.
		out, err = runTool(ctx, "pcodedmp", d.python, d.script, "-h")
		if err != nil {
			return nil, err
		}
	}
	m := versionRe.FindString(out)
	if m == "" {
		return nil, &stomp.ExternalToolError{Tool: "pcodedmp", Err: fmt.Errorf("no version string in output")}
	}
	return version.NewVersion(m)
}

// CheckVersion reports whether the installed release is recent enough.
func (d *Disassembler) CheckVersion(ctx context.Context) error {
	installed, err := d.Version(ctx)
	if err != nil {
		return err
	}
	minimum := version.Must(version.NewVersion(MinPcodedmpVersion))
	if installed.LessThan(minimum) {
		return fmt.Errorf("pcodedmp %s is too old, need at least %s", installed, minimum)
	}
	return nil
}
