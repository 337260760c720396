package pair

import (
	"testing"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/primer"
)

func testConfig() config.RunConfig {
	c := config.Default()
	c.AmpliconSizeMin = 90
	c.AmpliconSizeMax = 110
	c.DimerScore = -1000 // disable the dimer pre-filter for fixture sequences
	return c
}

func TestGenerateWindowsByAmpliconSize(t *testing.T) {
	f := primer.NewFKmer(10, []string{"ACGTACGTACGTACGTACGT"})
	near := primer.NewRKmer(100, []string{"TTTTTTTTTTTTTTTTTTTT"})  // start 100 = f.MinStart() -10 + 110, the top of the start window
	far := primer.NewRKmer(500, []string{"GGGGGGGGGGGGGGGGGGGG"})   // way out of window
	cfg := testConfig()

	pairs := Generate(0, []primer.FKmer{f}, []primer.RKmer{near, far}, cfg)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair in window, got %d", len(pairs))
	}
	if pairs[0].RPrimer.Start != 100 {
		t.Errorf("expected the in-window RKmer, got start=%d", pairs[0].RPrimer.Start)
	}
	if pairs[0].Pool != -1 || pairs[0].AmpliconNumber != -1 {
		t.Error("expected unplaced pairs to carry sentinel pool/amplicon values")
	}
}

func TestGenerateSortsByEndThenRStart(t *testing.T) {
	f1 := primer.NewFKmer(10, []string{"ACGTACGTACGTACGTACGT"})
	f2 := primer.NewFKmer(12, []string{"TACGTACGTACGTACGTACG"})
	r1 := primer.NewRKmer(100, []string{"TTTTTTTTTTTTTTTTTTTT"})
	r2 := primer.NewRKmer(102, []string{"CCCCCCCCCCCCCCCCCCCC"})
	cfg := testConfig()

	pairs := Generate(0, []primer.FKmer{f1, f2}, []primer.RKmer{r1, r2}, cfg)
	for i := 1; i < len(pairs); i++ {
		if pairs[i-1].FPrimer.End > pairs[i].FPrimer.End {
			t.Fatalf("pairs not sorted by FPrimer.End: %+v", pairs)
		}
		if pairs[i-1].FPrimer.End == pairs[i].FPrimer.End && pairs[i-1].RPrimer.Start < pairs[i].RPrimer.Start {
			t.Fatalf("pairs with equal FPrimer.End not sorted by descending RPrimer.Start: %+v", pairs)
		}
	}
}

func TestGenerateExcludesDimerInteractingPairs(t *testing.T) {
	f := primer.NewFKmer(10, []string{"AAAAAAAAAAAAAAAAAAAA"})
	r := primer.NewRKmer(100, []string{"TTTTTTTTTTTTTTTTTTTT"}) // perfect complement of f
	cfg := testConfig()
	cfg.DimerScore = -1 // easy threshold to trip

	pairs := Generate(0, []primer.FKmer{f}, []primer.RKmer{r}, cfg)
	if len(pairs) != 0 {
		t.Errorf("expected the strongly complementary pair to be filtered, got %d pairs", len(pairs))
	}
}
