/*
Package panel implements the panel solver: the region-coverage variant of
the tiling scheme solver. Instead of tiling a whole genome with overlapping
amplicons, it greedily picks, across every MSA, the PrimerPair whose
amplicon covers the most previously-uncovered ground in its MSA's coverage
bitmap, subject to the same dimer and mispriming placement gates the tiling
solver (package scheme) uses — but with no amplicon-overlap constraint,
since panel amplicons are free to overlap each other.
*/
package panel

import (
	"math"
	"sort"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/matchdb"
	"github.com/primalscheme/primalscheme/mispriming"
	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
	"github.com/primalscheme/primalscheme/thermo"
)

// Region is a requested coverage target within one MSA's column space.
// Start/End are alignment columns, half-open like every other interval in
// this codebase.
type Region struct {
	MSAIndex int
	Chrom    string
	Start    int
	End      int
}

// pool mirrors scheme's internal pool bookkeeping: accepted pairs plus the
// union of their MatchDB match tuples.
type pool struct {
	pairs   []primer.Pair
	matches []matchdb.Match
}

// Solver is the panel solver's state: one coverage bitmap per MSA (either
// the full genome in ALL mode, or the union of that MSA's requested
// Regions), the pools, and the config/MatchDB it was built with.
type Solver struct {
	cfg config.RunConfig
	db  *matchdb.MatchDB

	pools       []pool
	covered     map[int][]bool // msaIndex -> per-column covered-or-out-of-scope bitmap
	targetTotal map[int]int    // msaIndex -> number of columns actually in scope
	placed      int
}

// New constructs a Solver. regions is empty for ALL mode, where every MSA's
// full length is the coverage target; otherwise only the given regions
// count toward coverage.
func New(cfg config.RunConfig, db *matchdb.MatchDB, msas []*msa.MSA, regions []Region) *Solver {
	s := &Solver{
		cfg:         cfg,
		db:          db,
		pools:       make([]pool, cfg.NPools),
		covered:     make(map[int][]bool),
		targetTotal: make(map[int]int),
	}
	for _, m := range msas {
		s.covered[m.Index] = make([]bool, m.Cols)
		s.targetTotal[m.Index] = m.Cols
	}
	if len(regions) == 0 {
		return s
	}
	// Region mode: everything starts "covered" outside the requested
	// windows, so those columns never contribute marginal gain and are
	// excluded from the Coverage() denominator.
	for idx, bitmap := range s.covered {
		inAnyRegion := make([]bool, len(bitmap))
		for _, r := range regions {
			if r.MSAIndex != idx {
				continue
			}
			for c := r.Start; c < r.End && c < len(inAnyRegion); c++ {
				inAnyRegion[c] = true
			}
		}
		total := 0
		for c := range bitmap {
			bitmap[c] = !inAnyRegion[c]
			if inAnyRegion[c] {
				total++
			}
		}
		s.targetTotal[idx] = total
	}
	return s
}

// Pools returns every pool's accepted pairs in acceptance order.
func (s *Solver) Pools() [][]primer.Pair {
	out := make([][]primer.Pair, len(s.pools))
	for i, p := range s.pools {
		out[i] = append([]primer.Pair(nil), p.pairs...)
	}
	return out
}

// marginalGain returns the number of currently-uncovered columns p's
// amplicon interval would newly cover in its MSA.
func (s *Solver) marginalGain(p primer.Pair) int {
	bitmap := s.covered[p.MSAIndex]
	gain := 0
	start, end := p.Start(), p.End()
	if start < 0 {
		start = 0
	}
	if end > len(bitmap) {
		end = len(bitmap)
	}
	for c := start; c < end; c++ {
		if !bitmap[c] {
			gain++
		}
	}
	return gain
}

// markCovered flips every column of p's amplicon interval to covered.
func (s *Solver) markCovered(p primer.Pair) {
	bitmap := s.covered[p.MSAIndex]
	start, end := p.Start(), p.End()
	if start < 0 {
		start = 0
	}
	if end > len(bitmap) {
		end = len(bitmap)
	}
	for c := start; c < end; c++ {
		bitmap[c] = true
	}
}

// gcDeviation is the mean absolute deviation of p's oligo sequences' GC
// content from 0.5, the panel solver's tie-break criterion.
func gcDeviation(p primer.Pair) float64 {
	seqs := p.AllSeqs()
	if len(seqs) == 0 {
		return math.Inf(1)
	}
	total := 0.0
	for _, s := range seqs {
		total += math.Abs(thermo.GCContent(s) - 0.5)
	}
	return total / float64(len(seqs))
}

func (s *Solver) matchesFor(p primer.Pair) []matchdb.Match {
	var out []matchdb.Match
	out = append(out, s.db.FindFKmer(p.FPrimer, p.MSAIndex, s.cfg.MismatchFuzzy, true)...)
	out = append(out, s.db.FindRKmer(p.RPrimer, p.MSAIndex, s.cfg.MismatchFuzzy, true)...)
	return out
}

func (s *Solver) canPlace(p primer.Pair, poolIdx int) bool {
	for _, other := range s.pools[poolIdx].pairs {
		if thermo.DimerInteract(p.AllSeqs(), other.AllSeqs(), s.cfg.DimerScore) {
			return false
		}
	}
	return !mispriming.PairsInteract(s.matchesFor(p), s.pools[poolIdx].matches, s.cfg.MismatchProductSize)
}

func (s *Solver) place(p primer.Pair, poolIdx int) primer.Pair {
	p.Pool = poolIdx
	p.AmpliconNumber = s.placed
	s.placed++
	matches := s.matchesFor(p)
	s.pools[poolIdx].pairs = append(s.pools[poolIdx].pairs, p)
	s.pools[poolIdx].matches = append(s.pools[poolIdx].matches, matches...)
	s.markCovered(p)
	return p
}

// AddNextPrimerPair evaluates every candidate in candidates (typically the
// pooled output of pair.Generate across every MSA) and places the one with
// the highest marginal coverage gain, breaking ties by lower mean
// GC-deviation from 0.5 and then by the pair's sorted oligo strings for
// determinism. A candidate that no pool accepts is passed over for the next
// one in that order. It returns false once no candidate with positive gain
// is accepted by any pool.
func (s *Solver) AddNextPrimerPair(candidates []primer.Pair) (primer.Pair, bool) {
	ranked := append([]primer.Pair(nil), candidates...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].SortKey() < ranked[j].SortKey() })
	sort.SliceStable(ranked, func(i, j int) bool {
		gi, gj := s.marginalGain(ranked[i]), s.marginalGain(ranked[j])
		if gi != gj {
			return gi > gj
		}
		return gcDeviation(ranked[i]) < gcDeviation(ranked[j])
	})

	for _, cand := range ranked {
		if s.marginalGain(cand) <= 0 {
			break // ranked is sorted by descending gain; nothing after this helps either
		}
		for poolIdx := range s.pools {
			if s.canPlace(cand, poolIdx) {
				return s.place(cand, poolIdx), true
			}
		}
	}
	return primer.Pair{}, false
}

// Run repeatedly calls AddNextPrimerPair until maxAmplicons is reached (0
// means unbounded) or no candidate yields positive gain, returning every
// pair placed in order.
func (s *Solver) Run(candidates []primer.Pair, maxAmplicons int) []primer.Pair {
	var placed []primer.Pair
	for maxAmplicons == 0 || len(placed) < maxAmplicons {
		p, ok := s.AddNextPrimerPair(candidates)
		if !ok {
			break
		}
		placed = append(placed, p)
	}
	return placed
}

// Coverage returns the fraction of msaIndex's in-scope columns (the full
// genome in ALL mode, or the requested regions otherwise) that have been
// covered by a placed amplicon so far. Out-of-scope columns (region mode
// only) are excluded from both the numerator and the denominator.
func (s *Solver) Coverage(msaIndex int) float64 {
	total := s.targetTotal[msaIndex]
	if total == 0 {
		return 0
	}
	bitmap := s.covered[msaIndex]
	covered := 0
	for _, b := range bitmap {
		if b {
			covered++
		}
	}
	// bitmap's true count includes out-of-scope columns pre-marked true in
	// region mode; subtract them back out using the total tracked above.
	outOfScope := len(bitmap) - total
	return float64(covered-outOfScope) / float64(total)
}
