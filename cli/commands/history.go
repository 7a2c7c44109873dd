package commands

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/macrolabs/stompcheck/cli/internal/config"
	"github.com/macrolabs/stompcheck/cli/internal/ui"
	"github.com/macrolabs/stompcheck/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans",
	RunE:  runHistoryList,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the scan history",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*history.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.HistoryPath)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	mgr, err := openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	records, err := mgr.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No scans recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.ScannedAt.Format("2006-01-02 15:04:05"),
			rec.Path,
			string(rec.Verdict),
			strconv.Itoa(rec.PcodeOnly),
			strconv.Itoa(rec.SourceOnly),
			rec.SHA256[:12],
		})
	}
	ui.PrintTable([]string{"Scanned", "File", "Verdict", "P-code only", "Source only", "SHA-256"}, rows)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	confirmed := false
	prompt := &survey.Confirm{
		Message: "Delete all recorded scans?",
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return err
	}
	if !confirmed {
		fmt.Println("Aborted.")
		return nil
	}

	mgr, err := openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.Clear(cmd.Context()); err != nil {
		return err
	}
	ui.PrintSuccess("scan history cleared")
	return nil
}
