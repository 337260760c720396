/*
Package primer defines the core data model shared across digestion, pairing
and the scheme solvers: degenerate forward/reverse primer anchors and the
primer pairs built from them. PrimerPair references its kmers by value, not
by pointer into some shared arena, so the data model has no cyclic
references — it is handed around immutably once the digestion engine
produces it, mirroring the "no global mutable state" design note.
*/
package primer

import "sort"

// FKmer is a degenerate forward primer anchored at column End (exclusive):
// every string in Seqs is a candidate primer ending at that column.
type FKmer struct {
	End  int
	Seqs []string
}

// NewFKmer sorts seqs deterministically (the spec's tie-break contract) and
// returns the FKmer.
func NewFKmer(end int, seqs []string) FKmer {
	sorted := append([]string(nil), seqs...)
	sort.Strings(sorted)
	return FKmer{End: end, Seqs: sorted}
}

// Starts returns, for every sequence, the column at which it begins.
func (f FKmer) Starts() []int {
	out := make([]int, len(f.Seqs))
	for i, s := range f.Seqs {
		out[i] = f.End - len(s)
	}
	return out
}

// MinStart returns the leftmost start column across Seqs.
func (f FKmer) MinStart() int {
	starts := f.Starts()
	min := starts[0]
	for _, s := range starts[1:] {
		if s < min {
			min = s
		}
	}
	return min
}

// Equal implements the spec's FKmer equality: (end, sorted(seqs)) match.
// Seqs is always kept sorted by NewFKmer, so a direct compare suffices.
func (f FKmer) Equal(other FKmer) bool {
	if f.End != other.End || len(f.Seqs) != len(other.Seqs) {
		return false
	}
	for i := range f.Seqs {
		if f.Seqs[i] != other.Seqs[i] {
			return false
		}
	}
	return true
}

// RKmer is a degenerate reverse primer anchored at column Start (inclusive);
// Seqs are stored in primer (reverse-complement) orientation.
type RKmer struct {
	Start int
	Seqs  []string
}

// NewRKmer sorts seqs deterministically and returns the RKmer.
func NewRKmer(start int, seqs []string) RKmer {
	sorted := append([]string(nil), seqs...)
	sort.Strings(sorted)
	return RKmer{Start: start, Seqs: sorted}
}

// Ends returns, for every sequence, the column at which its binding site
// ends on the forward strand.
func (r RKmer) Ends() []int {
	out := make([]int, len(r.Seqs))
	for i, s := range r.Seqs {
		out[i] = r.Start + len(s)
	}
	return out
}

// MaxEnd returns the rightmost end column across Seqs.
func (r RKmer) MaxEnd() int {
	ends := r.Ends()
	max := ends[0]
	for _, e := range ends[1:] {
		if e > max {
			max = e
		}
	}
	return max
}

func (r RKmer) Equal(other RKmer) bool {
	if r.Start != other.Start || len(r.Seqs) != len(other.Seqs) {
		return false
	}
	for i := range r.Seqs {
		if r.Seqs[i] != other.Seqs[i] {
			return false
		}
	}
	return true
}

// Pair references one FKmer and one RKmer from the same MSA, with
// bookkeeping assigned once it is placed by a scheme solver.
type Pair struct {
	FPrimer        FKmer
	RPrimer        RKmer
	MSAIndex       int
	AmpliconNumber int
	Pool           int // 0-based
	// Circular marks the designated wraparound pair, the one case where
	// FPrimer.End > RPrimer.Start is expected rather than an invariant
	// violation.
	Circular bool
}

// Start is the leftmost genome coordinate covered by the pair's forward
// primer set.
func (p Pair) Start() int { return p.FPrimer.MinStart() }

// End is the rightmost genome coordinate covered by the pair's reverse
// primer set.
func (p Pair) End() int { return p.RPrimer.MaxEnd() }

// AmpliconSize returns End-Start, meaningless (and not size-gated) for a
// circular pair since it wraps the origin.
func (p Pair) AmpliconSize() int { return p.End() - p.Start() }

// AllSeqs returns every concrete oligo sequence carried by the pair
// (forward primer set followed by reverse primer set), already sorted
// within each set.
func (p Pair) AllSeqs() []string {
	out := make([]string, 0, len(p.FPrimer.Seqs)+len(p.RPrimer.Seqs))
	out = append(out, p.FPrimer.Seqs...)
	out = append(out, p.RPrimer.Seqs...)
	return out
}

// SortKey is the deterministic tie-break key required throughout §4: the
// sorted sequence of a pair's oligo strings, joined so two pairs' keys
// compare consistently regardless of set sizes.
func (p Pair) SortKey() string {
	seqs := append([]string(nil), p.AllSeqs()...)
	sort.Strings(seqs)
	key := ""
	for _, s := range seqs {
		key += s + "|"
	}
	return key
}

// SortPairsByEndThenRStart sorts pairs by (fprimer.end asc, -rprimer.start)
// as required by the pair generator's output contract, breaking remaining
// ties on SortKey for determinism.
func SortPairsByEndThenRStart(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.FPrimer.End != b.FPrimer.End {
			return a.FPrimer.End < b.FPrimer.End
		}
		if a.RPrimer.Start != b.RPrimer.Start {
			return a.RPrimer.Start > b.RPrimer.Start
		}
		return a.SortKey() < b.SortKey()
	})
}
