package commands

import (
	"github.com/spf13/cobra"

	"github.com/macrolabs/stompcheck/cli/internal/ui"
)

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Explain the VBA stomping technique and how detection works",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ui.PrintMarkdown(explainText)
	},
}

func init() {
	rootCmd.AddCommand(explainCmd)
}

const explainText = `# VBA stomping

Office documents store macros twice:

1. **Compiled p-code** — the bytecode the VBA runtime actually executes
   when the document is opened by the Office version it was compiled for.
2. **Compressed source** — the human-readable text shown in the VBA
   editor and read by most antivirus engines and analysts.

*VBA stomping* overwrites the compressed source after compilation. The
editor and source-based scanners then see benign code while the runtime
keeps executing the original, malicious bytecode.

## How stompcheck detects it

The p-code disassembly and the recovered source are reduced to the same
symbolic representation: declared functions and variables, string
literals, and comments. After normalization (VBA identifiers are
case-insensitive; strings are compared byte-exact), the two sets are
diffed **directionally**:

- Items found **only in the p-code** cannot have come from the visible
  source. The document is flagged ` + "`SUSPICIOUS`" + `.
- Items found **only in the source** are normal (dead code is eliminated
  at compile time) and never raise the verdict on their own.

## Limits

A stomped document whose replacement source happens to mention every
identifier, string and comment of the original will not be flagged; nor
does a SUSPICIOUS verdict say *what* the bytecode does. Treat the verdict
as a triage signal, then analyze the p-code disassembly itself.
`
