/*
Package scheme implements the tiling scheme solver: the stateful,
incremental, backtracking greedy placer that assigns PrimerPairs to pools.
State lives entirely in the Scheme value the caller owns — pool contents,
pool match-tuple unions, and a per-MSA stack of accepted pairs — mirroring
the "no global mutable state" design note carried through from digest and
pair. Every placement decision consults the thermo dimer oracle and the
mispriming detector but otherwise only compares against what this Scheme
itself has already accepted, so two independent Scheme values never
interfere, the same way two independent digest.Digest calls over different
MSAs never share state.
*/
package scheme

import (
	"context"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/matchdb"
	"github.com/primalscheme/primalscheme/mispriming"
	"github.com/primalscheme/primalscheme/primer"
	"github.com/primalscheme/primalscheme/thermo"
)

// Outcome names one of the solver's expected control-flow results, per the
// spec's error-handling policy that solver NO_* outcomes are ordinary
// signals driving the state machine, not errors.
type Outcome int

const (
	NoOutcome Outcome = iota
	AddedFirst
	AddedOverlap
	AddedWalk
	AddedBacktrack
	AddedCircular
	NoFirst
	NoOverlap
	NoWalk
	NoBacktrack
	NoCircular
)

func (o Outcome) String() string {
	switch o {
	case AddedFirst:
		return "ADDED_FIRST"
	case AddedOverlap:
		return "ADDED_OVERLAP"
	case AddedWalk:
		return "ADDED_WALK"
	case AddedBacktrack:
		return "ADDED_BACKTRACK"
	case AddedCircular:
		return "ADDED_CIRCULAR"
	case NoFirst:
		return "NO_FIRST"
	case NoOverlap:
		return "NO_OVERLAP"
	case NoWalk:
		return "NO_WALK"
	case NoBacktrack:
		return "NO_BACKTRACK"
	case NoCircular:
		return "NO_CIRCULAR"
	default:
		return "NONE"
	}
}

// pool is one PCR pool's accumulated state: the ordered pairs accepted into
// it and the union of their MatchDB match tuples, kept denormalized so
// PairsInteract never has to re-derive it from the pair list on the hot
// path.
type pool struct {
	pairs   []primer.Pair
	matches []matchdb.Match
}

// Scheme is the tiling solver's state: pools, the stack of pairs accepted
// per MSA in insertion order, and the immutable config/MatchDB it was
// constructed with.
type Scheme struct {
	cfg   config.RunConfig
	db    *matchdb.MatchDB
	pools []pool

	// stacks holds, per msaIndex, every pair accepted for that MSA in
	// insertion order. The last element is "last" in the spec's state
	// machine; the first is used by TryCircular to find the wraparound
	// partner.
	stacks map[int][]primer.Pair

	ampliconCounter int
}

// New constructs an empty Scheme with cfg.NPools pools.
func New(cfg config.RunConfig, db *matchdb.MatchDB) *Scheme {
	return &Scheme{
		cfg:    cfg,
		db:     db,
		pools:  make([]pool, cfg.NPools),
		stacks: make(map[int][]primer.Pair),
	}
}

// Pools returns every pool's accepted pairs, in acceptance order.
func (s *Scheme) Pools() [][]primer.Pair {
	out := make([][]primer.Pair, len(s.pools))
	for i, p := range s.pools {
		out[i] = append([]primer.Pair(nil), p.pairs...)
	}
	return out
}

// Last returns the most recently accepted pair for msaIndex, or nil if none
// has been accepted yet.
func (s *Scheme) Last(msaIndex int) *primer.Pair {
	stack := s.stacks[msaIndex]
	if len(stack) == 0 {
		return nil
	}
	last := stack[len(stack)-1]
	return &last
}

// First returns the first accepted pair for msaIndex, used by TryCircular
// to find the wraparound partner, or nil if none has been accepted.
func (s *Scheme) First(msaIndex int) *primer.Pair {
	stack := s.stacks[msaIndex]
	if len(stack) == 0 {
		return nil
	}
	first := stack[0]
	return &first
}

// LeadingEdge returns the rightmost genome coordinate reached by any pair
// accepted for msaIndex so far, or -1 if none has been accepted.
func (s *Scheme) LeadingEdge(msaIndex int) int {
	best := -1
	for _, p := range s.stacks[msaIndex] {
		if e := p.RPrimer.MaxEnd(); e > best {
			best = e
		}
	}
	return best
}

// matchesFor computes the MatchDB tuples a candidate pair contributes: its
// FKmer's 3' suffix hits plus its RKmer's 5' prefix hits, with each kmer's
// trivially expected self-hit removed.
func (s *Scheme) matchesFor(p primer.Pair) []matchdb.Match {
	var out []matchdb.Match
	out = append(out, s.db.FindFKmer(p.FPrimer, p.MSAIndex, s.cfg.MismatchFuzzy, true)...)
	out = append(out, s.db.FindRKmer(p.RPrimer, p.MSAIndex, s.cfg.MismatchFuzzy, true)...)
	return out
}

// dimerFree reports whether p shares no dimer interaction with any pair
// already accepted into pool poolIdx.
func (s *Scheme) dimerFree(p primer.Pair, poolIdx int) bool {
	for _, other := range s.pools[poolIdx].pairs {
		if thermo.DimerInteract(p.AllSeqs(), other.AllSeqs(), s.cfg.DimerScore) {
			return false
		}
	}
	return true
}

// misprimingFree reports whether placing p into poolIdx would form no new
// mispriming product against that pool's existing match-tuple union.
func (s *Scheme) misprimingFree(p primer.Pair, poolIdx int, newMatches []matchdb.Match) bool {
	return !mispriming.PairsInteract(newMatches, s.pools[poolIdx].matches, s.cfg.MismatchProductSize)
}

// overlapsSameMSA reports whether p's genome interval overlaps any pair
// already in poolIdx from the same MSA — the extra constraint try_overlap
// and try_backtrack apply (§4.G constraint (a)) that AddFirstPair and
// try_walk do not.
func (s *Scheme) overlapsSameMSA(p primer.Pair, poolIdx int) bool {
	for _, other := range s.pools[poolIdx].pairs {
		if other.MSAIndex != p.MSAIndex {
			continue
		}
		if p.Start() < other.End() && other.Start() < p.End() {
			return true
		}
	}
	return false
}

// canPlace runs every pool-membership gate that applies regardless of which
// solver operation is placing p: dimer-free and mispriming-free against
// poolIdx. requireNoOverlap additionally vetoes a same-MSA genome overlap,
// as try_overlap and try_backtrack require.
func (s *Scheme) canPlace(p primer.Pair, poolIdx int, requireNoOverlap bool) bool {
	if requireNoOverlap && s.overlapsSameMSA(p, poolIdx) {
		return false
	}
	if !s.dimerFree(p, poolIdx) {
		return false
	}
	return s.misprimingFree(p, poolIdx, s.matchesFor(p))
}

// place installs p into poolIdx, assigning its amplicon number and pool,
// and returns the finalized pair.
func (s *Scheme) place(p primer.Pair, poolIdx int) primer.Pair {
	p.Pool = poolIdx
	p.AmpliconNumber = s.ampliconCounter
	s.ampliconCounter++

	matches := s.matchesFor(p)
	s.pools[poolIdx].pairs = append(s.pools[poolIdx].pairs, p)
	s.pools[poolIdx].matches = append(s.pools[poolIdx].matches, matches...)
	s.stacks[p.MSAIndex] = append(s.stacks[p.MSAIndex], p)
	return p
}

// popLast removes and returns the most recently accepted pair for msaIndex
// from both its pool and its MSA stack. It is the undo primitive
// try_backtrack builds on; callers are responsible for restoring state if
// backtracking ultimately fails.
func (s *Scheme) popLast(msaIndex int) (primer.Pair, bool) {
	stack := s.stacks[msaIndex]
	if len(stack) == 0 {
		return primer.Pair{}, false
	}
	last := stack[len(stack)-1]
	s.stacks[msaIndex] = stack[:len(stack)-1]

	poolPairs := s.pools[last.Pool].pairs
	for i := len(poolPairs) - 1; i >= 0; i-- {
		if poolPairs[i].AmpliconNumber == last.AmpliconNumber {
			s.pools[last.Pool].pairs = append(poolPairs[:i], poolPairs[i+1:]...)
			break
		}
	}
	// Recompute the pool's match union from its remaining members, rather
	// than trying to subtract last's contribution tuple-by-tuple: other
	// pairs may have contributed the same tuple, and dedup-by-subtraction
	// would be its own source of bugs.
	s.pools[last.Pool].matches = s.poolMatchUnion(last.Pool)
	return last, true
}

func (s *Scheme) poolMatchUnion(poolIdx int) []matchdb.Match {
	var out []matchdb.Match
	for _, p := range s.pools[poolIdx].pairs {
		out = append(out, s.matchesFor(p)...)
	}
	return out
}

// sortBySortKey breaks remaining ties in a candidate ranking on the sorted
// sequence of each pair's oligo strings, per §9's hash-ordering contract.
func sortBySortKey(pairs []primer.Pair) {
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].SortKey() < pairs[j].SortKey() })
}

// rankByScore stable-sorts pairs descending by score(pair), with ties
// already broken by the caller's prior SortKey ordering (sort.SliceStable
// preserves that order among equal scores).
func rankByScore(pairs []primer.Pair, score func(primer.Pair) float64) {
	sortBySortKey(pairs)
	sort.SliceStable(pairs, func(i, j int) bool { return score(pairs[i]) > score(pairs[j]) })
}

// dimerPrescreenParallel runs the Cartesian dimer check fkmers x rkmers
// concurrently, the circular-pair pre-screening parallel region named in
// §5. Each worker owns a disjoint slice of the fkmer axis; no shared
// mutable state exists between them beyond the read-only inputs and each
// worker's own output slot.
func dimerPrescreenParallel(ctx context.Context, fkmers []primer.FKmer, rkmers []primer.RKmer, threshold float64) [][]bool {
	survives := make([][]bool, len(fkmers))
	for i := range survives {
		survives[i] = make([]bool, len(rkmers))
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	group, _ := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, fk := range fkmers {
		i, fk := i, fk
		group.Go(func() error {
			for j, rk := range rkmers {
				survives[i][j] = !thermo.DimerInteract(fk.Seqs, rk.Seqs, threshold)
			}
			return nil
		})
	}
	_ = group.Wait() // workers never return an error
	return survives
}

// overlapScore is the §4.G overlap ranking formula: the squared,
// size-normalized forward extension past targetLeadingEdge, divided by the
// square root of the pair's total degeneracy so that highly degenerate
// primer sets are mildly penalized relative to equally-advancing specific
// ones.
func overlapScore(p primer.Pair, minOverlap, ampliconSizeMax, targetLeadingEdge int) float64 {
	extension := float64(p.RPrimer.Start-minOverlap-targetLeadingEdge) / float64(ampliconSizeMax)
	return (extension * extension) / math.Sqrt(float64(len(p.AllSeqs())))
}

// walkScore is the §4.G walk ranking formula.
func walkScore(p primer.Pair, lastRightmost int) float64 {
	return float64(p.FPrimer.End-lastRightmost) * math.Sqrt(float64(len(p.AllSeqs())))
}
