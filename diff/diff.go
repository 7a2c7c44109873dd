// Package diff reconciles the p-code-derived and source-derived
// representations of a VBA module and classifies their differences.
//
// The comparison is directional: an item found in the compiled p-code but
// not in the visible source means the source was rewritten after
// compilation and is a stomping indicator. The opposite direction is
// normal (dead code eliminated at compile time) and is kept only for the
// verbose report.
package diff

import (
	"fmt"
	"sort"

	"github.com/macrolabs/stompcheck/stomp"
)

// Category is the discrepancy bucket a difference falls into.
type Category string

const (
	CategoryFunction Category = "Function"
	CategoryVariable Category = "Variable"
	CategoryString   Category = "String"
	CategoryComment  Category = "Comment"
)

// Categories lists all buckets in report order.
var Categories = []Category{CategoryFunction, CategoryVariable, CategoryString, CategoryComment}

// Direction tells which representation uniquely contains an item.
type Direction string

const (
	// PcodeOnly items exist in the compiled bytecode but not in the
	// visible source. These are the stomping indicators.
	PcodeOnly Direction = "PcodeOnly"
	// SourceOnly items exist in the source but were not found in the
	// p-code. Informational only.
	SourceOnly Direction = "SourceOnly"
)

// Discrepancy is one item present on exactly one side after normalization.
type Discrepancy struct {
	Category  Category  `json:"category"`
	Value     string    `json:"value"`
	Direction Direction `json:"direction"`
}

// Verdict is the binary outcome of a comparison.
type Verdict string

const (
	VerdictClean      Verdict = "CLEAN"
	VerdictSuspicious Verdict = "SUSPICIOUS"
)

// Ratio is the fraction of one category's p-code items missing from the
// source. Report-only: the verdict never depends on it.
type Ratio struct {
	Category Category `json:"category"`
	Missing  int      `json:"missing"`
	Total    int      `json:"total"`
}

// Fraction returns Missing/Total, or 0 for an empty category.
func (r Ratio) Fraction() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Missing) / float64(r.Total)
}

// Result is the outcome of comparing two representations. The verdict is
// always derived from the discrepancy set it travels with.
type Result struct {
	Verdict       Verdict       `json:"verdict"`
	Discrepancies []Discrepancy `json:"discrepancies"`
	Ratios        []Ratio       `json:"ratios"`
	Streams       []string      `json:"streams,omitempty"`
}

// OfDirection returns the discrepancies pointing one way, in report order.
func (r *Result) OfDirection(dir Direction) []Discrepancy {
	var out []Discrepancy
	for _, d := range r.Discrepancies {
		if d.Direction == dir {
			out = append(out, d)
		}
	}
	return out
}

// Compare computes the categorized directional set differences between a
// p-code representation and a source representation and derives the
// verdict: SUSPICIOUS iff anything exists only on the p-code side.
//
// Compare never sees a failed extraction: extractors return errors instead
// of empty representations, and that error propagates to the caller before
// any comparison happens. The origin check below guards against wiring
// mistakes, not against extraction failures.
func Compare(pcodeRep, sourceRep *stomp.ModuleRepresentation) (*Result, error) {
	if pcodeRep == nil || sourceRep == nil {
		return nil, fmt.Errorf("compare: both representations are required")
	}
	if pcodeRep.Origin != stomp.OriginPcode {
		return nil, fmt.Errorf("compare: first representation has origin %q, want %q", pcodeRep.Origin, stomp.OriginPcode)
	}
	if sourceRep.Origin != stomp.OriginSource {
		return nil, fmt.Errorf("compare: second representation has origin %q, want %q", sourceRep.Origin, stomp.OriginSource)
	}

	res := &Result{Verdict: VerdictClean, Streams: pcodeRep.Streams}

	compareSymbols(res, pcodeRep.Symbols, sourceRep.Symbols)
	compareCategory(res, CategoryString,
		stringValues(pcodeRep.Strings), stringValues(sourceRep.Strings))
	compareCategory(res, CategoryComment,
		commentValues(pcodeRep.Comments), commentValues(sourceRep.Comments))

	sort.SliceStable(res.Discrepancies, func(i, j int) bool {
		a, b := res.Discrepancies[i], res.Discrepancies[j]
		if a.Category != b.Category {
			return categoryRank(a.Category) < categoryRank(b.Category)
		}
		if a.Direction != b.Direction {
			return a.Direction == PcodeOnly
		}
		return a.Value < b.Value
	})

	for _, d := range res.Discrepancies {
		if d.Direction == PcodeOnly {
			res.Verdict = VerdictSuspicious
			break
		}
	}
	return res, nil
}

// compareSymbols diffs the two symbol tables. A name is "present" when the
// other side knows it under any kind: the two extractors classify
// declarations independently, and a kind disagreement over the same name
// is a classification artifact, not a stomping indicator. The bucket a
// discrepancy lands in comes from the side that actually has the symbol.
func compareSymbols(res *Result, pcodeSyms, sourceSyms map[string]stomp.Symbol) {
	missing := map[Category]int{}
	total := map[Category]int{}

	for key, sym := range pcodeSyms {
		cat := symbolCategory(sym.Kind)
		total[cat]++
		if _, ok := sourceSyms[key]; !ok {
			res.Discrepancies = append(res.Discrepancies, Discrepancy{Category: cat, Value: sym.Name, Direction: PcodeOnly})
			missing[cat]++
		}
	}
	for key, sym := range sourceSyms {
		if _, ok := pcodeSyms[key]; !ok {
			res.Discrepancies = append(res.Discrepancies, Discrepancy{Category: symbolCategory(sym.Kind), Value: sym.Name, Direction: SourceOnly})
		}
	}

	for _, cat := range []Category{CategoryFunction, CategoryVariable} {
		res.Ratios = append(res.Ratios, Ratio{Category: cat, Missing: missing[cat], Total: total[cat]})
	}
}

func symbolCategory(kind stomp.SymbolKind) Category {
	if kind == stomp.KindFunction {
		return CategoryFunction
	}
	return CategoryVariable
}

// compareCategory records one discrepancy per normalized key present on
// exactly one side, plus the p-code-side missing ratio for the category.
func compareCategory(res *Result, cat Category, pcodeItems, sourceItems map[string]string) {
	missing := 0
	for key, raw := range pcodeItems {
		if _, ok := sourceItems[key]; !ok {
			res.Discrepancies = append(res.Discrepancies, Discrepancy{Category: cat, Value: raw, Direction: PcodeOnly})
			missing++
		}
	}
	for key, raw := range sourceItems {
		if _, ok := pcodeItems[key]; !ok {
			res.Discrepancies = append(res.Discrepancies, Discrepancy{Category: cat, Value: raw, Direction: SourceOnly})
		}
	}
	res.Ratios = append(res.Ratios, Ratio{Category: cat, Missing: missing, Total: len(pcodeItems)})
}

func stringValues(strs map[string]stomp.StringLiteral) map[string]string {
	out := make(map[string]string, len(strs))
	for key, s := range strs {
		out[key] = s.Raw
	}
	return out
}

func commentValues(comments map[string]stomp.CommentEntry) map[string]string {
	out := make(map[string]string, len(comments))
	for key, c := range comments {
		out[key] = c.Text
	}
	return out
}

func categoryRank(c Category) int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}
