package panel

import (
	"testing"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/matchdb"
	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

func testConfig() config.RunConfig {
	c := config.Default()
	c.NPools = 2
	c.DimerScore = -1000 // disable the dimer gate for fixture sequences
	c.MismatchProductSize = 1
	return c
}

func emptyDB(t *testing.T) *matchdb.MatchDB {
	t.Helper()
	db, err := matchdb.Build(nil, 16)
	if err != nil {
		t.Fatalf("matchdb.Build: %v", err)
	}
	return db
}

func pair(msaIndex, fend, rstart int, fseq, rseq string) primer.Pair {
	return primer.Pair{
		MSAIndex: msaIndex,
		FPrimer:  primer.NewFKmer(fend, []string{fseq}),
		RPrimer:  primer.NewRKmer(rstart, []string{rseq}),
	}
}

func TestAddNextPrimerPairPicksHighestMarginalGain(t *testing.T) {
	cfg := testConfig()
	m := &msa.MSA{Index: 0, Cols: 1000}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, nil)

	small := pair(0, 20, 50, "AAAAAAAAAA", "TTTTTTTTTT")  // covers [10,60), 50 cols
	large := pair(0, 220, 400, "GGGGGGGGGG", "CCCCCCCCCC") // covers [210,410), 200 cols

	placed, ok := s.AddNextPrimerPair([]primer.Pair{small, large})
	if !ok {
		t.Fatal("expected a placement")
	}
	if placed.FPrimer.End != 220 {
		t.Fatalf("expected the larger-gain candidate to be chosen, got FPrimer.End=%d", placed.FPrimer.End)
	}
	if placed.Pool != 0 {
		t.Errorf("expected the first candidate placed into pool 0, got %d", placed.Pool)
	}
	if placed.AmpliconNumber != 0 {
		t.Errorf("expected amplicon number 0, got %d", placed.AmpliconNumber)
	}
}

func TestAddNextPrimerPairTieBreaksOnGCDeviation(t *testing.T) {
	cfg := testConfig()
	m := &msa.MSA{Index: 0, Cols: 1000}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, nil)

	// Both candidates cover exactly the same 50-column interval (equal
	// marginal gain), so the tie-break on GC deviation from 0.5 decides.
	// skewed has the smaller SortKey, so only the GC tie-break picks balanced.
	balanced := pair(0, 20, 50, "GCGCGATATA", "TATATCGCGC")   // 50% GC
	skewed := pair(0, 20, 50, "GGGGGGGGGG", "CCCCCCCCCC")      // 100% GC

	placed, ok := s.AddNextPrimerPair([]primer.Pair{skewed, balanced})
	if !ok {
		t.Fatal("expected a placement")
	}
	if placed.FPrimer.Seqs[0] != "GCGCGATATA" {
		t.Fatalf("expected the closer-to-50%%-GC candidate to win the tie, got %q", placed.FPrimer.Seqs[0])
	}
}

func TestAddNextPrimerPairNoOverlapConstraint(t *testing.T) {
	cfg := testConfig()
	m := &msa.MSA{Index: 0, Cols: 1000}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, nil)

	a := pair(0, 20, 300, "AAAAAAAAAA", "TTTTTTTTTT")
	if _, ok := s.AddNextPrimerPair([]primer.Pair{a}); !ok {
		t.Fatal("expected first placement to succeed")
	}

	// b's genome interval [40,510) overlaps a's [10,310), which the tiling solver would
	// reject but the panel solver must accept since it has no amplicon-
	// overlap constraint, as long as it still contributes marginal gain.
	b := pair(0, 50, 500, "GGGGGGGGGG", "CCCCCCCCCC")
	placed, ok := s.AddNextPrimerPair([]primer.Pair{b})
	if !ok {
		t.Fatal("expected overlapping candidate to be placeable in the panel solver")
	}
	if placed.Pool != 0 {
		t.Errorf("expected b to land in the same pool as a (no overlap constraint), got pool %d", placed.Pool)
	}
}

func TestAddNextPrimerPairStopsAtZeroGain(t *testing.T) {
	cfg := testConfig()
	m := &msa.MSA{Index: 0, Cols: 200}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, nil)

	full := pair(0, 20, 200, "AAAAAAAAAA", "TTTTTTTTTT")
	if _, ok := s.AddNextPrimerPair([]primer.Pair{full}); !ok {
		t.Fatal("expected first placement to cover the whole MSA")
	}

	again := pair(0, 50, 150, "GGGGGGGGGG", "CCCCCCCCCC")
	if _, ok := s.AddNextPrimerPair([]primer.Pair{again}); ok {
		t.Fatal("expected no placement once no candidate contributes positive gain")
	}
}

func TestCoverageAllMode(t *testing.T) {
	cfg := testConfig()
	m := &msa.MSA{Index: 0, Cols: 100}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, nil)

	if got := s.Coverage(0); got != 0 {
		t.Fatalf("expected 0 coverage before any placement, got %v", got)
	}

	half := pair(0, 10, 50, "AAAAAAAAAA", "TTTTTTTTTT") // covers [0,60)
	if _, ok := s.AddNextPrimerPair([]primer.Pair{half}); !ok {
		t.Fatal("expected placement")
	}
	if got := s.Coverage(0); got != 0.6 {
		t.Fatalf("expected 0.6 coverage, got %v", got)
	}
}

func TestCoverageRegionMode(t *testing.T) {
	cfg := testConfig()
	m := &msa.MSA{Index: 0, Cols: 1000}
	regions := []Region{{MSAIndex: 0, Start: 100, End: 200}}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, regions)

	if got := s.Coverage(0); got != 0 {
		t.Fatalf("expected 0 coverage before any placement, got %v", got)
	}

	// Covers [90,150), i.e. only columns [100,150) fall within the region.
	partial := pair(0, 100, 140, "AAAAAAAAAA", "TTTTTTTTTT")
	if _, ok := s.AddNextPrimerPair([]primer.Pair{partial}); !ok {
		t.Fatal("expected placement")
	}
	if got := s.Coverage(0); got != 0.5 {
		t.Fatalf("expected 0.5 coverage of the 100-column region, got %v", got)
	}

	// A candidate entirely outside the region contributes no marginal gain
	// and must not be placed.
	outside := pair(0, 700, 800, "GGGGGGGGGG", "CCCCCCCCCC")
	if _, ok := s.AddNextPrimerPair([]primer.Pair{outside}); ok {
		t.Fatal("expected out-of-region candidate to be rejected for zero gain")
	}
}

func TestCanPlaceRejectsDimerInteraction(t *testing.T) {
	cfg := testConfig()
	cfg.DimerScore = -1 // trivially easy threshold to trip on a perfect complement
	m := &msa.MSA{Index: 0, Cols: 1000}
	s := New(cfg, emptyDB(t), []*msa.MSA{m}, nil)

	a := pair(0, 20, 300, "AAAAAAAAAAAAAAAAAAAA", "GGGGGGGGGG")
	placedA, ok := s.AddNextPrimerPair([]primer.Pair{a})
	if !ok {
		t.Fatal("expected first placement to succeed")
	}

	b := pair(0, 500, 700, "TTTTTTTTTTTTTTTTTTTT", "CCCCCCCCCC")
	if s.canPlace(b, placedA.Pool) {
		t.Fatal("expected canPlace to reject a dimer-interacting pair in the same pool")
	}
}
