package primer_test

import (
	"testing"

	"github.com/primalscheme/primalscheme/primer"
)

func TestNewFKmerSortsSeqs(t *testing.T) {
	fk := primer.NewFKmer(10, []string{"TTT", "AAA"})
	if fk.Seqs[0] != "AAA" || fk.Seqs[1] != "TTT" {
		t.Errorf("seqs not sorted: %v", fk.Seqs)
	}
}

func TestFKmerStarts(t *testing.T) {
	fk := primer.NewFKmer(10, []string{"AAA", "AAAA"})
	starts := fk.Starts()
	want := map[int]bool{7: true, 6: true}
	for _, s := range starts {
		if !want[s] {
			t.Errorf("unexpected start %d", s)
		}
	}
	if fk.MinStart() != 6 {
		t.Errorf("MinStart = %d, want 6", fk.MinStart())
	}
}

func TestRKmerEnds(t *testing.T) {
	rk := primer.NewRKmer(20, []string{"AAA", "AAAA"})
	if rk.MaxEnd() != 24 {
		t.Errorf("MaxEnd = %d, want 24", rk.MaxEnd())
	}
}

func TestFKmerEqual(t *testing.T) {
	a := primer.NewFKmer(10, []string{"AAA", "TTT"})
	b := primer.NewFKmer(10, []string{"TTT", "AAA"})
	if !a.Equal(b) {
		t.Error("expected equal FKmers regardless of input order")
	}
}

func TestPairStartEndAndSize(t *testing.T) {
	fk := primer.NewFKmer(100, []string{"AAAAAAAAAAAAAAAAAAAA"}) // 20bp, start 80
	rk := primer.NewRKmer(180, []string{"TTTTTTTTTTTTTTTTTTTT"}) // 20bp, end 200
	p := primer.Pair{FPrimer: fk, RPrimer: rk}
	if p.Start() != 80 {
		t.Errorf("Start = %d, want 80", p.Start())
	}
	if p.End() != 200 {
		t.Errorf("End = %d, want 200", p.End())
	}
	if p.AmpliconSize() != 120 {
		t.Errorf("AmpliconSize = %d, want 120", p.AmpliconSize())
	}
}

func TestSortPairsByEndThenRStart(t *testing.T) {
	mk := func(end, start int) primer.Pair {
		return primer.Pair{
			FPrimer: primer.NewFKmer(end, []string{"AAAAAAAAAAAAAAAAAAAA"}),
			RPrimer: primer.NewRKmer(start, []string{"TTTTTTTTTTTTTTTTTTTT"}),
		}
	}
	pairs := []primer.Pair{mk(200, 300), mk(100, 250), mk(100, 400)}
	primer.SortPairsByEndThenRStart(pairs)
	if pairs[0].FPrimer.End != 100 || pairs[0].RPrimer.Start != 400 {
		t.Errorf("unexpected order: %+v", pairs)
	}
	if pairs[2].FPrimer.End != 200 {
		t.Errorf("unexpected order: %+v", pairs)
	}
}
