// Package report renders comparison results and maps outcomes to exit
// codes. "Could not analyze" always exits with a code distinct from both
// "clean" and "suspicious".
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/macrolabs/stompcheck/diff"
	"github.com/macrolabs/stompcheck/stomp"
)

// Exit codes.
const (
	ExitClean        = 0
	ExitSuspicious   = 1
	ExitUsage        = 2
	ExitToolNotFound = 3
	ExitExternalTool = 4
	ExitParse        = 5
)

var (
	cleanColor      = color.New(color.FgGreen, color.Bold)
	suspiciousColor = color.New(color.FgRed, color.Bold)
	dimColor        = color.New(color.Faint)
)

// VerdictExitCode maps a verdict to the process exit status.
func VerdictExitCode(v diff.Verdict) int {
	if v == diff.VerdictSuspicious {
		return ExitSuspicious
	}
	return ExitClean
}

// ErrorExitCode maps an analysis error to its dedicated exit status.
func ErrorExitCode(err error) int {
	switch {
	case stomp.IsUsage(err):
		return ExitUsage
	case stomp.IsToolNotFound(err):
		return ExitToolNotFound
	case stomp.IsExternalTool(err):
		return ExitExternalTool
	case stomp.IsParse(err):
		return ExitParse
	default:
		return ExitUsage
	}
}

// Render writes the verdict for one document and, in verbose mode, the
// full categorized discrepancy listing.
func Render(w io.Writer, file string, res *diff.Result, verbose bool) {
	if res.Verdict == diff.VerdictSuspicious {
		fmt.Fprintf(w, "%s: %s (VBA source diverges from compiled p-code)\n",
			file, suspiciousColor.Sprint(res.Verdict))
	} else {
		fmt.Fprintf(w, "%s: %s\n", file, cleanColor.Sprint(res.Verdict))
	}

	if !verbose {
		return
	}

	if len(res.Streams) > 0 {
		fmt.Fprintln(w)
		dimColor.Fprintln(w, "Module streams:")
		for _, stream := range res.Streams {
			fmt.Fprintf(w, "  %s\n", stream)
		}
	}

	renderDirection(w, res, diff.PcodeOnly,
		"Present in p-code only (stomping indicators)")
	renderDirection(w, res, diff.SourceOnly,
		"Present in source only (informational; compiled away or added after compilation)")

	fmt.Fprintln(w)
	dimColor.Fprintln(w, "Missing from source, per category:")
	for _, ratio := range res.Ratios {
		fmt.Fprintf(w, "  %-10s %d/%d (%.0f%%)\n",
			ratio.Category, ratio.Missing, ratio.Total, ratio.Fraction()*100)
	}
}

// renderDirection prints one direction's discrepancies as a table grouped
// by category.
func renderDirection(w io.Writer, res *diff.Result, dir diff.Direction, title string) {
	records := res.OfDirection(dir)
	if len(records) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", title)

	rows := pterm.TableData{{"Category", "Value"}}
	for _, d := range records {
		rows = append(rows, []string{string(d.Category), d.Value})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		// Table rendering is cosmetic; fall back to plain lines.
		for _, d := range records {
			fmt.Fprintf(w, "  [%s] %s\n", d.Category, d.Value)
		}
		return
	}
	fmt.Fprintln(w, table)
}

// jsonResult is the machine-readable shape for triage pipelines.
type jsonResult struct {
	File string `json:"file"`
	*diff.Result
}

// RenderJSON writes one document's result as a single JSON object.
func RenderJSON(w io.Writer, file string, res *diff.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonResult{File: file, Result: res})
}
