package digest

import (
	"testing"

	"github.com/primalscheme/primalscheme/thermo"
)

func colsOf(rows ...string) columnBases {
	matrix := make([][]byte, len(rows))
	for i, r := range rows {
		matrix[i] = []byte(r)
	}
	return func(col int) []byte {
		if col < 0 || col >= len(matrix[0]) {
			return nil
		}
		out := make([]byte, len(matrix))
		for r := range matrix {
			out[r] = matrix[r][col]
		}
		return out
	}
}

func TestWalkLeftAcceptsSeedMeetingTmImmediately(t *testing.T) {
	row := []byte("AAAAAAAAAA")
	cfg := thermo.Config{MvConc: 50e-3, DNAConc: 15e-9, PrimerTmMin: -100} // Tm(AAAA) is about -78 C here
	res := walkLeft(row, "AAAA", 5, colsOf("AAAAAAAAAA"), 20, cfg)
	if res.err != none {
		t.Fatalf("unexpected error %v", res.err)
	}
	if len(res.seqs) != 1 || res.seqs[0] != "AAAA" {
		t.Errorf("expected the seed returned unextended, got %v", res.seqs)
	}
}

func TestWalkLeftTooFarWhenTmUnreachable(t *testing.T) {
	row := []byte("GGGGGGGGGG")
	cfg := thermo.Config{MvConc: 50e-3, DNAConc: 15e-9, PrimerTmMin: 200} // unreachable threshold
	res := walkLeft(row, "GG", 7, colsOf("GGGGGGGGGG"), 3, cfg)
	if res.err != WalksTooFar {
		t.Fatalf("expected WalksTooFar once maxWalk is exceeded, got seqs=%v err=%v", res.seqs, res.err)
	}
}

func TestWalkLeftOutOfBounds(t *testing.T) {
	row := []byte("AAAA")
	cfg := thermo.Config{MvConc: 50e-3, DNAConc: 15e-9, PrimerTmMin: 1000}
	res := walkLeft(row, "AAAA", -1, colsOf("AAAA"), 20, cfg)
	if res.err != WalksOut {
		t.Errorf("expected WalksOut, got %v", res)
	}
}

func TestWalkLeftInvalidBaseHalts(t *testing.T) {
	row := []byte("AANAAA")
	cfg := thermo.Config{MvConc: 50e-3, DNAConc: 15e-9, PrimerTmMin: 1000}
	res := walkLeft(row, "AA", 2, colsOf("AANAAA"), 20, cfg)
	if res.err != ContainsInvalidBase {
		t.Errorf("expected ContainsInvalidBase, got %v", res)
	}
}

func TestWalkLeftSkipsGapsWithoutGrowingLength(t *testing.T) {
	row := []byte("AA-AAAAA")
	// At 50 mM, Tm is about -78 C for AAAA, -53 C for AAAAA and -35 C for
	// AAAAAA, so the walk passes the gap at column 2 and stops one base later.
	cfg := thermo.Config{MvConc: 50e-3, DNAConc: 15e-9, PrimerTmMin: -40}
	res := walkLeft(row, "AAAA", 3, colsOf("AA-AAAAA"), 20, cfg)
	if res.err != none {
		t.Fatalf("unexpected error %v", res.err)
	}
	if len(res.seqs) != 1 || res.seqs[0] != "AAAAAA" {
		t.Errorf("expected three walked columns with one gap to add two bases, got %v", res.seqs)
	}
}

func TestWalkRightMirrorsWalkLeft(t *testing.T) {
	row := []byte("AAAACCCC")
	cfg := thermo.Config{MvConc: 50e-3, DNAConc: 15e-9, PrimerTmMin: -100} // Tm(AAAA) is about -78 C here
	res := walkRight(row, "AAAA", 4, colsOf("AAAACCCC"), 20, cfg)
	if res.err != none {
		t.Fatalf("unexpected error %v", res.err)
	}
	if len(res.seqs) != 1 || res.seqs[0] != "AAAA" {
		t.Errorf("expected the seed returned unextended, got %v", res.seqs)
	}
}
