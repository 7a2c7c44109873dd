package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/macrolabs/stompcheck/cache"
	"github.com/macrolabs/stompcheck/cli/internal/config"
	"github.com/macrolabs/stompcheck/cli/internal/ui"
	"github.com/macrolabs/stompcheck/cli/internal/watch"
	"github.com/macrolabs/stompcheck/diff"
	"github.com/macrolabs/stompcheck/history"
	"github.com/macrolabs/stompcheck/internal/debug"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Continuously scan Office documents dropped into a directory",
	Long: `Watch a directory and analyze every Office document created or
modified in it. Results are printed one line per file and recorded in
the scan history. Documents whose content hash was already analyzed in
this session are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	clean, suspicious := ui.VerdictPrinters()
	seen := cache.New()
	ctx := cmd.Context()

	scanOne := func(path string) {
		sha, err := history.HashFile(path)
		if err != nil {
			debug.Warn("cannot hash file", "path", path, "err", err)
			return
		}
		if cached, ok := seen.Get(sha); ok {
			debug.Debug("content already analyzed, skipping", "path", path)
			printVerdict(clean, suspicious, path, cached.(diff.Verdict))
			return
		}

		res, err := analyze(ctx, cfg, path)
		if err != nil {
			ui.PrintError("%s: %v", path, err)
			return
		}
		seen.Set(sha, res.Verdict, 24*time.Hour)
		printVerdict(clean, suspicious, path, res.Verdict)
		recordScan(ctx, cfg, path, res)
	}

	watcher, err := watch.New(args[0], scanOne)
	if err != nil {
		return err
	}
	watcher.Start()
	defer watcher.Stop()

	fmt.Printf("Watching %s for Office documents (Ctrl-C to stop)\n", args[0])

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	stats := seen.GetStats()
	debug.Debug("watch session finished", "analyzed", stats.Size, "cache_hits", stats.Hits)
	return nil
}

func printVerdict(clean, suspicious *color.Color, path string, v diff.Verdict) {
	if v == diff.VerdictSuspicious {
		suspicious.Printf("%s: %s\n", path, v)
		return
	}
	clean.Printf("%s: %s\n", path, v)
}
