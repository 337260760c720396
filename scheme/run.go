package scheme

import (
	"context"

	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

// RunMSA drives one MSA's tiling state machine to completion: add_first,
// then repeatedly try_overlap (preferred), falling back to try_backtrack
// (if enabled), then try_walk, then try_circular (if enabled), terminating
// when nothing further can be placed or the leading edge has reached the
// MSA's length. It returns the terminal outcome for diagnostics; a
// terminal NoFirst means nothing was placed for this MSA at all, which is
// non-fatal per the spec's error-handling policy — the caller simply moves
// on to the next MSA.
func RunMSA(ctx context.Context, s *Scheme, m *msa.MSA, allPairs []primer.Pair, fkmers []primer.FKmer, rkmers []primer.RKmer) Outcome {
	firstCandidates := make([]primer.Pair, 0, len(allPairs))
	for _, p := range allPairs {
		if p.MSAIndex == m.Index {
			firstCandidates = append(firstCandidates, p)
		}
	}

	outcome, _ := s.AddFirstPair(firstCandidates, m.Index)
	if outcome != AddedFirst {
		return outcome
	}

	for {
		if ctx.Err() != nil {
			return outcome
		}
		if s.LeadingEdge(m.Index) >= m.Cols {
			return outcome
		}

		if o, _ := s.TryOverlap(allPairs, m.Index); o == AddedOverlap {
			outcome = o
			continue
		}

		if s.cfg.Backtrack {
			if o := s.TryBacktrack(allPairs, m.Index); o == AddedBacktrack {
				outcome = o
				continue
			}
		}

		if o, _ := s.TryWalk(allPairs, m.Index); o == AddedWalk {
			outcome = o
			continue
		}

		if s.cfg.Circular {
			if o, _ := s.TryCircular(ctx, m, fkmers, rkmers, m.Index); o == AddedCircular {
				return o
			}
		}
		return NoOverlap
	}
}
