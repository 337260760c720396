package scheme

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/matchdb"
	"github.com/primalscheme/primalscheme/primer"
)

func testConfig() config.RunConfig {
	c := config.Default()
	c.NPools = 2
	c.MinOverlap = 5
	c.AmpliconSizeMin = 50
	c.AmpliconSizeMax = 100
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

func TestAddFirstPairFillsEmptyPoolsFirst(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, emptyDB(t))

	cand := primer.Pair{
		MSAIndex: 0,
		FPrimer:  primer.NewFKmer(10, []string{"AAAAAAAAAA"}),
		RPrimer:  primer.NewRKmer(100, []string{"TTTTTTTTTT"}),
	}

	outcome, placed := s.AddFirstPair([]primer.Pair{cand}, 0)
	if outcome != AddedFirst {
		t.Fatalf("expected AddedFirst, got %s", outcome)
	}
	if placed.Pool != 0 {
		t.Errorf("expected placement in pool 0 (first empty pool), got %d", placed.Pool)
	}
	if placed.AmpliconNumber != 0 {
		t.Errorf("expected amplicon number 0, got %d", placed.AmpliconNumber)
	}
}

func TestTryOverlapSatisfiesOverlapLaw(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, emptyDB(t))

	first := primer.Pair{
		MSAIndex: 0,
		FPrimer:  primer.NewFKmer(10, []string{"AAAAAAAAAA"}),
		RPrimer:  primer.NewRKmer(100, []string{"CCCCCCCCCC"}),
	}
	if outcome, _ := s.AddFirstPair([]primer.Pair{first}, 0); outcome != AddedFirst {
		t.Fatalf("setup: expected AddedFirst, got %s", outcome)
	}

	good := primer.Pair{ // within the overlap window
		MSAIndex: 0,
		FPrimer:  primer.NewFKmer(90, []string{"GGGGGGGGGG"}),
		RPrimer:  primer.NewRKmer(200, []string{"TTTTTTTTTT"}),
	}
	tooEarly := primer.Pair{ // fails fprimer.end > last.fprimer.end
		MSAIndex: 0,
		FPrimer:  primer.NewFKmer(5, []string{"GGGGGGGGGG"}),
		RPrimer:  primer.NewRKmer(180, []string{"TTTTTTTTTT"}),
	}
	all := []primer.Pair{tooEarly, good}

	prevLast := *s.Last(0)
	outcome, placed := s.TryOverlap(all, 0)
	if outcome != AddedOverlap {
		t.Fatalf("expected AddedOverlap, got %s", outcome)
	}
	if placed.FPrimer.End != 90 {
		t.Fatalf("expected the in-window candidate to be chosen, got FPrimer.End=%d", placed.FPrimer.End)
	}
	if placed.Pool == first.Pool {
		t.Error("overlap placement must use a pool distinct from last's")
	}

	if placed.FPrimer.End > prevLast.RPrimer.Start-cfg.MinOverlap {
		t.Error("overlap law violated: fprimer.end must leave at least min_overlap before the prior rprimer start")
	}
	if placed.RPrimer.MaxEnd() <= prevLast.RPrimer.MaxEnd() {
		t.Error("overlap law violated: the placed pair must extend the leading edge")
	}
}

func TestPoolsAreDimerFree(t *testing.T) {
	cfg := testConfig()
	cfg.DimerScore = -1 // trivially easy threshold to trip on a perfect complement
	s := New(cfg, emptyDB(t))

	a := primer.Pair{
		MSAIndex: 0,
		FPrimer:  primer.NewFKmer(10, []string{"AAAAAAAAAAAAAAAAAAAA"}),
		RPrimer:  primer.NewRKmer(200, []string{"GGGGGGGGGG"}),
	}
	if outcome, _ := s.AddFirstPair([]primer.Pair{a}, 0); outcome != AddedFirst {
		t.Fatalf("setup: expected AddedFirst, got %s", outcome)
	}

	// b's forward primer is the exact complement of a's, so it must never
	// land in a's pool.
	b := primer.Pair{
		MSAIndex: 1,
		FPrimer:  primer.NewFKmer(10, []string{"TTTTTTTTTTTTTTTTTTTT"}),
		RPrimer:  primer.NewRKmer(200, []string{"CCCCCCCCCC"}),
	}
	if s.canPlace(b, a.Pool, false) {
		t.Fatal("expected canPlace to reject a dimer-interacting pair in the same pool")
	}
}

func TestBacktrackIsIdempotentWhenNoPriorPair(t *testing.T) {
	cfg := testConfig()
	s := New(cfg, emptyDB(t))

	only := primer.Pair{
		MSAIndex: 0,
		FPrimer:  primer.NewFKmer(10, []string{"AAAAAAAAAA"}),
		RPrimer:  primer.NewRKmer(100, []string{"CCCCCCCCCC"}),
	}
	if outcome, _ := s.AddFirstPair([]primer.Pair{only}, 0); outcome != AddedFirst {
		t.Fatalf("setup: expected AddedFirst, got %s", outcome)
	}

	before := s.Pools()
	outcome := s.TryBacktrack(nil, 0)
	if outcome != NoBacktrack {
		t.Fatalf("expected NoBacktrack with nothing to backtrack behind, got %s", outcome)
	}
	after := s.Pools()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("TryBacktrack must leave state unchanged on NoBacktrack (-before +after):\n%s", diff)
	}
}
