package scheme

import "github.com/primalscheme/primalscheme/primer"

// AddFirstPair chooses the leftmost-acceptable candidate for a fresh start
// on msaIndex: candidates are tried in the order given (the pair
// generator's own (fprimer.end asc, -rprimer.start) order), and the first
// one that is placeable wins. A candidate is placeable if any pool is still
// empty (placed into the lowest-indexed empty pool), or, failing that, it
// passes the dimer and mispriming gates against the first pool (in index
// order) it is checked against.
func (s *Scheme) AddFirstPair(candidates []primer.Pair, msaIndex int) (Outcome, *primer.Pair) {
	for _, cand := range candidates {
		if cand.MSAIndex != msaIndex {
			continue
		}
		if poolIdx, ok := s.firstAcceptablePool(cand); ok {
			placed := s.place(cand, poolIdx)
			return AddedFirst, &placed
		}
	}
	return NoFirst, nil
}

// firstAcceptablePool implements AddFirstPair's placement preference: any
// empty pool beats a non-empty one, and among non-empty pools the first one
// (in index order) that the candidate is compatible with wins.
func (s *Scheme) firstAcceptablePool(cand primer.Pair) (int, bool) {
	for i, p := range s.pools {
		if len(p.pairs) == 0 {
			return i, true
		}
	}
	for i := range s.pools {
		if s.canPlace(cand, i, false) {
			return i, true
		}
	}
	return 0, false
}
