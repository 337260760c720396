package scheme

import (
	"context"

	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

// circularZone is how close to the genome's edge an anchor must be to be
// considered for the wraparound pair, per §4.G.
const circularZone = 200

// TryCircular is invoked once tiling has reached the genome end and every
// other placement strategy has failed: it looks for an FKmer within
// circularZone bases of the last accepted pair's 3' end, and an RKmer
// within circularZone bases of the first accepted pair's 5' end, forms
// every cross-pair between them, dimer-prescreens the Cartesian product in
// parallel (§5's second parallel region), and places the smallest-degenerate
// surviving pair that clears the usual pool gates.
func (s *Scheme) TryCircular(ctx context.Context, m *msa.MSA, fkmers []primer.FKmer, rkmers []primer.RKmer, msaIndex int) (Outcome, *primer.Pair) {
	last := s.Last(msaIndex)
	first := s.First(msaIndex)
	if last == nil || first == nil {
		return NoCircular, nil
	}

	lastEdge := last.End()
	firstEdge := first.Start()

	var endFKmers []primer.FKmer
	for _, fk := range fkmers {
		if abs(fk.End-lastEdge) <= circularZone && fk.End > lastEdge {
			endFKmers = append(endFKmers, fk)
		}
	}
	var startRKmers []primer.RKmer
	for _, rk := range rkmers {
		if abs(rk.Start-firstEdge) <= circularZone && rk.Start < firstEdge {
			startRKmers = append(startRKmers, rk)
		}
	}

	if len(endFKmers) == 0 || len(startRKmers) == 0 {
		return NoCircular, nil
	}

	survives := dimerPrescreenParallel(ctx, endFKmers, startRKmers, s.cfg.DimerScore)

	var candidates []primer.Pair
	for i, fk := range endFKmers {
		for j, rk := range startRKmers {
			if !survives[i][j] {
				continue
			}
			candidates = append(candidates, primer.Pair{
				FPrimer:        fk,
				RPrimer:        rk,
				MSAIndex:       msaIndex,
				AmpliconNumber: -1,
				Pool:           -1,
				Circular:       true,
			})
		}
	}
	if len(candidates) == 0 {
		return NoCircular, nil
	}

	sortBySortKey(candidates)
	rankByScore(candidates, func(p primer.Pair) float64 {
		// Smallest-degenerate wins: negate the count so rankByScore's
		// descending sort picks the fewest total oligos first.
		return -float64(len(p.AllSeqs()))
	})

	for _, cand := range candidates {
		for poolIdx := range s.pools {
			if s.canPlace(cand, poolIdx, false) {
				placed := s.place(cand, poolIdx)
				return AddedCircular, &placed
			}
		}
	}
	return NoCircular, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
