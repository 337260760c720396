package scheme

import "github.com/primalscheme/primalscheme/primer"

// overlapWindow filters allPairs to those the tiling overlap rule allows to
// follow last: strictly past last's forward primer, leaving at least
// minOverlap bases before last's reverse primer anchor, and reaching at
// least minOverlap bases past last's own rightmost extent.
func overlapWindow(allPairs []primer.Pair, last primer.Pair, msaIndex, minOverlap int) []primer.Pair {
	lastRightmost := last.RPrimer.MaxEnd()
	var out []primer.Pair
	for _, p := range allPairs {
		if p.MSAIndex != msaIndex {
			continue
		}
		if p.FPrimer.End <= last.FPrimer.End {
			continue
		}
		if p.FPrimer.End > last.RPrimer.Start-minOverlap {
			continue
		}
		if p.RPrimer.MaxEnd() < lastRightmost+minOverlap {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TryOverlap ranks every pair in the overlap window by overlap score
// (highest first, ties on sorted oligo strings) and places the first one
// that fits a pool distinct from last's: no same-MSA genome overlap with
// that pool's members, dimer-free, and mispriming-free.
func (s *Scheme) TryOverlap(allPairs []primer.Pair, msaIndex int) (Outcome, *primer.Pair) {
	last := s.Last(msaIndex)
	if last == nil {
		return NoOverlap, nil
	}

	candidates := overlapWindow(allPairs, *last, msaIndex, s.cfg.MinOverlap)
	targetLeadingEdge := s.LeadingEdge(msaIndex)
	rankByScore(candidates, func(p primer.Pair) float64 {
		return overlapScore(p, s.cfg.MinOverlap, s.cfg.AmpliconSizeMax, targetLeadingEdge)
	})

	for _, cand := range candidates {
		for poolIdx := range s.pools {
			if poolIdx == last.Pool {
				continue
			}
			if s.canPlace(cand, poolIdx, true) {
				placed := s.place(cand, poolIdx)
				return AddedOverlap, &placed
			}
		}
	}
	return NoOverlap, nil
}

// walkWindow filters allPairs to those try_walk may consider: strictly past
// last's reverse primer anchor less minOverlap, i.e. a gap is tolerated
// where try_overlap requires none.
func walkWindow(allPairs []primer.Pair, last primer.Pair, msaIndex, minOverlap int) []primer.Pair {
	var out []primer.Pair
	for _, p := range allPairs {
		if p.MSAIndex != msaIndex {
			continue
		}
		if p.FPrimer.End > last.RPrimer.Start-minOverlap {
			out = append(out, p)
		}
	}
	return out
}

// TryWalk is invoked once try_overlap (and, if enabled, try_backtrack) have
// failed: it tolerates a coverage gap, ranks the walk window by walk score,
// and allows placement into any pool including last's own.
func (s *Scheme) TryWalk(allPairs []primer.Pair, msaIndex int) (Outcome, *primer.Pair) {
	last := s.Last(msaIndex)
	if last == nil {
		return NoWalk, nil
	}

	candidates := walkWindow(allPairs, *last, msaIndex, s.cfg.MinOverlap)
	lastRightmost := last.RPrimer.MaxEnd()
	rankByScore(candidates, func(p primer.Pair) float64 {
		return walkScore(p, lastRightmost)
	})

	for _, cand := range candidates {
		for poolIdx := range s.pools {
			if s.canPlace(cand, poolIdx, false) {
				placed := s.place(cand, poolIdx)
				return AddedWalk, &placed
			}
		}
	}
	return NoWalk, nil
}

// TryBacktrack pops the current last pair, looks for a different
// replacement in the same (widened, min_overlap=1) overlap window relative
// to the pair before it, and — if a replacement both installs and lets
// try_overlap succeed again — keeps both. Any failed attempt undoes itself
// completely, and if nothing works the original last is restored unchanged,
// satisfying the backtrack-idempotence invariant.
func (s *Scheme) TryBacktrack(allPairs []primer.Pair, msaIndex int) Outcome {
	original, ok := s.popLast(msaIndex)
	if !ok {
		return NoBacktrack
	}

	priorLast := s.Last(msaIndex)
	if priorLast == nil {
		s.pushBack(original)
		return NoBacktrack
	}

	candidates := overlapWindow(allPairs, *priorLast, msaIndex, 1)
	candidates = excludePair(candidates, original)
	targetLeadingEdge := s.LeadingEdge(msaIndex)
	rankByScore(candidates, func(p primer.Pair) float64 {
		return overlapScore(p, s.cfg.MinOverlap-1, s.cfg.AmpliconSizeMax, targetLeadingEdge)
	})

	for _, cand := range candidates {
		for poolIdx := range s.pools {
			if poolIdx == priorLast.Pool {
				continue
			}
			if !s.canPlace(cand, poolIdx, true) {
				continue
			}
			s.place(cand, poolIdx)
			if outcome, _ := s.TryOverlap(allPairs, msaIndex); outcome == AddedOverlap {
				return AddedBacktrack
			}
			s.popLast(msaIndex) // recovery failed: undo the replacement, try the next candidate
			s.ampliconCounter--
		}
	}

	s.pushBack(original)
	return NoBacktrack
}

// pushBack restores a popped pair exactly as place() would have installed
// it, reusing its already-assigned pool and amplicon number rather than
// minting new ones, so a failed backtrack leaves state bitwise identical to
// before TryBacktrack was called.
func (s *Scheme) pushBack(p primer.Pair) {
	matches := s.matchesFor(p)
	s.pools[p.Pool].pairs = append(s.pools[p.Pool].pairs, p)
	s.pools[p.Pool].matches = append(s.pools[p.Pool].matches, matches...)
	s.stacks[p.MSAIndex] = append(s.stacks[p.MSAIndex], p)
}

func excludePair(pairs []primer.Pair, exclude primer.Pair) []primer.Pair {
	var out []primer.Pair
	for _, p := range pairs {
		if p.FPrimer.Equal(exclude.FPrimer) && p.RPrimer.Equal(exclude.RPrimer) {
			continue
		}
		out = append(out, p)
	}
	return out
}
