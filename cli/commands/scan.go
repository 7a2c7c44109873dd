package commands

import (
	"context"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/macrolabs/stompcheck/cli/internal/config"
	"github.com/macrolabs/stompcheck/cli/internal/ui"
	"github.com/macrolabs/stompcheck/diff"
	"github.com/macrolabs/stompcheck/extern"
	"github.com/macrolabs/stompcheck/history"
	"github.com/macrolabs/stompcheck/internal/debug"
	"github.com/macrolabs/stompcheck/office"
	"github.com/macrolabs/stompcheck/pcode"
	"github.com/macrolabs/stompcheck/report"
	"github.com/macrolabs/stompcheck/vbasrc"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Analyze one Office document for VBA stomping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// runScan drives the default scan: analyze, render, record, set the exit
// code from the verdict.
func runScan(ctx context.Context, file string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	res, err := analyze(ctx, cfg, file)
	if err != nil {
		return err
	}

	if jsonOut {
		if err := report.RenderJSON(os.Stdout, file, res); err != nil {
			return err
		}
	} else {
		report.Render(os.Stdout, file, res, verbose)
	}

	recordScan(ctx, cfg, file, res)
	exitCode = report.VerdictExitCode(res.Verdict)
	return nil
}

// analyze runs the full pipeline for one document: locate the macro
// container, run both external tools, extract both representations,
// compare. Extraction failures propagate; they are never interpreted as
// "all symbols missing".
func analyze(ctx context.Context, cfg *config.Config, file string) (*diff.Result, error) {
	macroPath, cleanup, err := office.Locate(file)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	disasm, err := extern.NewDisassembler(cfg.PcodedmpDir, cfg.Python)
	if err != nil {
		return nil, err
	}
	dumper, err := extern.NewSourceDumper(cfg.SourceTool)
	if err != nil {
		return nil, err
	}

	// In JSON mode stdout must stay machine-readable, so no spinner.
	var spinner *pterm.SpinnerPrinter
	if !jsonOut {
		spinner, _ = ui.Spinner("Disassembling p-code")
	}
	pcodeText, err := disasm.Disassemble(ctx, macroPath)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return nil, err
	}

	if !jsonOut {
		spinner, _ = ui.Spinner("Decompressing VBA source")
	} else {
		spinner = nil
	}
	sourceText, err := dumper.Dump(ctx, macroPath)
	if spinner != nil {
		_ = spinner.Stop()
	}
	if err != nil {
		return nil, err
	}

	pcodeRep, err := pcode.Extract(pcodeText)
	if err != nil {
		return nil, err
	}
	sourceRep, err := vbasrc.Extract(sourceText)
	if err != nil {
		return nil, err
	}

	debug.Debug("extracted representations",
		"pcode_symbols", len(pcodeRep.Symbols),
		"pcode_strings", len(pcodeRep.Strings),
		"pcode_comments", len(pcodeRep.Comments),
		"source_symbols", len(sourceRep.Symbols))

	return diff.Compare(pcodeRep, sourceRep)
}

// recordScan appends the result to the scan history. History is an audit
// convenience; failures only warrant a debug log, never a failed scan.
func recordScan(ctx context.Context, cfg *config.Config, file string, res *diff.Result) {
	mgr, err := history.Open(cfg.HistoryPath)
	if err != nil {
		debug.Warn("cannot open scan history", "err", err)
		return
	}
	defer mgr.Close()

	sha, err := history.HashFile(file)
	if err != nil {
		debug.Warn("cannot hash document", "err", err)
		return
	}
	rec := &history.Record{
		Path:       file,
		SHA256:     sha,
		Verdict:    res.Verdict,
		PcodeOnly:  len(res.OfDirection(diff.PcodeOnly)),
		SourceOnly: len(res.OfDirection(diff.SourceOnly)),
		ScannedAt:  time.Now(),
	}
	if err := mgr.Record(ctx, rec); err != nil {
		debug.Warn("cannot record scan", "err", err)
	}
}
