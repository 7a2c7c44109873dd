// Package commands wires the stompcheck CLI together.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/macrolabs/stompcheck/cli/internal/ui"
	"github.com/macrolabs/stompcheck/internal/debug"
	"github.com/macrolabs/stompcheck/report"
)

// Version is stamped at build time.
var Version = "0.1.0"

var (
	verbose   bool
	jsonOut   bool
	debugLogs bool
)

// exitCode is what Execute returns; commands that finish without error set
// it (the scan commands use it to separate CLEAN from SUSPICIOUS).
var exitCode int

var rootCmd = &cobra.Command{
	Use:   "stompcheck [file]",
	Short: "Detect VBA stomping in Office documents",
	Long: `stompcheck compares the compiled p-code of an Office document's VBA
macros against the human-readable source stored alongside it. When the
bytecode references functions, variables, strings or comments that the
visible source does not contain, the source was rewritten after
compilation ("VBA stomping") and the document is flagged SUSPICIOUS.

Exit codes: 0 clean, 1 suspicious, 2 usage error, 3 missing external
tool, 4 external tool failure, 5 unparseable tool output.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug.Init(debugLogs)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runScan(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"print the full categorized discrepancy listing")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false,
		"emit machine-readable JSON results")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false,
		"enable debug logging to stderr")
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	exitCode = report.ExitClean
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return report.ErrorExitCode(err)
	}
	return exitCode
}
