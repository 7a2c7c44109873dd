package diff

import (
	"testing"

	"github.com/macrolabs/stompcheck/stomp"
)

func pcodeRep(build func(*stomp.ModuleRepresentation)) *stomp.ModuleRepresentation {
	rep := stomp.NewModuleRepresentation(stomp.OriginPcode)
	if build != nil {
		build(rep)
	}
	return rep
}

func sourceRep(build func(*stomp.ModuleRepresentation)) *stomp.ModuleRepresentation {
	rep := stomp.NewModuleRepresentation(stomp.OriginSource)
	if build != nil {
		build(rep)
	}
	return rep
}

func TestIdenticalRepresentationsAreClean(t *testing.T) {
	build := func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Main", stomp.KindFunction)
		rep.AddSymbol("counter", stomp.KindVariable)
		rep.AddString("hello")
		rep.AddComment("a note")
	}

	res, err := Compare(pcodeRep(build), sourceRep(build))
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Verdict != VerdictClean {
		t.Errorf("verdict = %s, want %s", res.Verdict, VerdictClean)
	}
	if len(res.Discrepancies) != 0 {
		t.Errorf("expected no discrepancies, got %v", res.Discrepancies)
	}
}

func TestPcodeOnlyFunctionIsSuspicious(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Main", stomp.KindFunction)
		rep.AddSymbol("DownloadPayload", stomp.KindFunction)
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Main", stomp.KindFunction)
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Verdict != VerdictSuspicious {
		t.Fatalf("verdict = %s, want %s", res.Verdict, VerdictSuspicious)
	}

	found := false
	for _, d := range res.Discrepancies {
		if d.Category == CategoryFunction && d.Direction == PcodeOnly && d.Value == "DownloadPayload" {
			found = true
		}
	}
	if !found {
		t.Errorf("DownloadPayload not listed as PcodeOnly Function: %v", res.Discrepancies)
	}
}

func TestCasingDifferenceIsNotADiscrepancy(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("foo", stomp.KindFunction)
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Foo", stomp.KindFunction)
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Verdict != VerdictClean || len(res.Discrepancies) != 0 {
		t.Errorf("casing-only difference flagged: verdict=%s discrepancies=%v", res.Verdict, res.Discrepancies)
	}
}

func TestSourceOnlySymbolStaysClean(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Main", stomp.KindFunction)
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Main", stomp.KindFunction)
		rep.AddSymbol("deadCode", stomp.KindVariable)
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Verdict != VerdictClean {
		t.Errorf("SourceOnly items must never raise the verdict, got %s", res.Verdict)
	}

	sourceOnly := res.OfDirection(SourceOnly)
	if len(sourceOnly) != 1 || sourceOnly[0].Value != "deadCode" {
		t.Errorf("deadCode should be a SourceOnly record: %v", sourceOnly)
	}
}

func TestStringComparisonIsCaseSensitive(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddString("Hello")
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddString("hello")
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Verdict != VerdictSuspicious {
		t.Fatalf("case-different strings are a genuine discrepancy, got %s", res.Verdict)
	}

	pcodeOnly := res.OfDirection(PcodeOnly)
	if len(pcodeOnly) != 1 || pcodeOnly[0].Category != CategoryString || pcodeOnly[0].Value != "Hello" {
		t.Errorf("expected PcodeOnly String Hello, got %v", pcodeOnly)
	}
}

func TestKindDisagreementIsNotADiscrepancy(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Thing", stomp.KindVariable)
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddSymbol("Thing", stomp.KindFunction)
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Verdict != VerdictClean || len(res.Discrepancies) != 0 {
		t.Errorf("kind disagreement over the same name flagged: %v", res.Discrepancies)
	}
}

func TestRatios(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddString("a")
		rep.AddString("b")
		rep.AddString("c")
		rep.AddString("d")
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddString("a")
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	for _, ratio := range res.Ratios {
		if ratio.Category != CategoryString {
			continue
		}
		if ratio.Missing != 3 || ratio.Total != 4 {
			t.Errorf("string ratio = %d/%d, want 3/4", ratio.Missing, ratio.Total)
		}
		if ratio.Fraction() != 0.75 {
			t.Errorf("fraction = %f, want 0.75", ratio.Fraction())
		}
	}
}

func TestCompareRejectsWrongOrigins(t *testing.T) {
	pc := pcodeRep(nil)
	src := sourceRep(nil)

	if _, err := Compare(src, pc); err == nil {
		t.Error("swapped origins must be rejected")
	}
	if _, err := Compare(nil, src); err == nil {
		t.Error("nil p-code representation must be rejected")
	}
	if _, err := Compare(pc, nil); err == nil {
		t.Error("nil source representation must be rejected")
	}
}

func TestDiscrepanciesAreSorted(t *testing.T) {
	pc := pcodeRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddString("zz")
		rep.AddSymbol("beta", stomp.KindFunction)
		rep.AddSymbol("alpha", stomp.KindFunction)
	})
	src := sourceRep(func(rep *stomp.ModuleRepresentation) {
		rep.AddComment("leftover")
	})

	res, err := Compare(pc, src)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	var got []string
	for _, d := range res.Discrepancies {
		got = append(got, string(d.Category)+"/"+d.Value)
	}
	want := []string{"Function/alpha", "Function/beta", "String/zz", "Comment/leftover"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
