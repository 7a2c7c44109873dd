package commands

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/macrolabs/stompcheck/cli/internal/config"
	"github.com/macrolabs/stompcheck/cli/internal/ui"
	"github.com/macrolabs/stompcheck/extern"
	"github.com/macrolabs/stompcheck/report"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify that the external tools are installed and usable",
	Long: `Check the analysis prerequisites: the Python interpreter, the
pcodedmp disassembler (and its minimum version ` + extern.MinPcodedmpVersion + `),
and the VBA source decompressor.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	healthy := true

	if _, err := exec.LookPath(cfg.Python); err != nil {
		ui.PrintError("python interpreter %q not found", cfg.Python)
		healthy = false
	} else {
		ui.PrintSuccess("python interpreter: %s", cfg.Python)
	}

	disasm, err := extern.NewDisassembler(cfg.PcodedmpDir, cfg.Python)
	if err != nil {
		ui.PrintError("%v", err)
		healthy = false
	} else if err := disasm.CheckVersion(cmd.Context()); err != nil {
		ui.PrintError("pcodedmp: %v", err)
		healthy = false
	} else {
		ui.PrintSuccess("pcodedmp: %s (>= %s)", cfg.PcodedmpDir, extern.MinPcodedmpVersion)
	}

	if _, err := extern.NewSourceDumper(cfg.SourceTool); err != nil {
		ui.PrintError("%v", err)
		healthy = false
	} else {
		ui.PrintSuccess("source decompressor: %s", cfg.SourceTool)
	}

	if !healthy {
		exitCode = report.ExitToolNotFound
		ui.PrintWarning("some prerequisites are missing; scans will fail until they are installed")
		return nil
	}
	ui.PrintSuccess("all prerequisites are installed")
	return nil
}
