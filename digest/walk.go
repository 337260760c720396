/*
walk.go implements the bounded depth-first walk used to build both FKmer
and RKmer candidate strings for one MSA row. The legacy implementation
expressed this as recursive, exception-terminated per-row walks; here it is
an explicit loop over a small set of active candidate strings, each step
bounded by primer_max_walk, with a tagged-variant return (ok branches vs. a
single ErrorKind) instead of a thrown exception. Every candidate's melting
temperature is checked before it is extended further, so a seed already at
primer_size_min is accepted outright if it already clears primer_tm_min.
*/
package digest

import (
	"github.com/primalscheme/primalscheme/alphabet"
	"github.com/primalscheme/primalscheme/thermo"
)

// columnBases returns the byte at col across every row, used to resolve a
// truncated (empty) row by majority rule mid-walk, and to bounds-check the
// walk (a nil slice means the column is out of range).
type columnBases func(col int) []byte

// walkResult is the per-row outcome of one directional walk: either a set
// of successful concrete strings, or the single error that stopped it.
type walkResult struct {
	seqs []string
	err  ErrorKind
}

// walkLeft grows seed (already the ungapped, gap-stripped suffix ending at
// column end) leftward one alignment column at a time. A candidate stops
// growing and becomes a result the moment its melting temperature reaches
// tmCfg.PrimerTmMin; candidates that never clear it before running off the
// alignment's edge or exceeding maxWalk fail the whole row.
//
// row is the specific MSA row being walked; cols resolves the full
// alignment column (all rows) so an empty/truncated entry in row can fall
// back to the majority base.
func walkLeft(row []byte, seed string, nextCol int, cols columnBases, maxWalk int, tmCfg thermo.Config) walkResult {
	active := alphabet.ExpandAmbiguities([]string{seed})
	if len(active) == 0 {
		return walkResult{err: ContainsInvalidBase}
	}
	var results []string
	steps := 0

	for len(active) > 0 {
		var pending []string
		for _, seq := range active {
			if thermo.MeltingTemp(seq, tmCfg) >= tmCfg.PrimerTmMin {
				results = append(results, seq)
				continue
			}
			pending = append(pending, seq)
		}
		if len(pending) == 0 {
			break
		}
		if nextCol < 0 {
			return walkResult{err: WalksOut}
		}
		if steps >= maxWalk {
			return walkResult{err: WalksTooFar}
		}

		base := rowBase(row, nextCol, cols)
		var next []string
		sawInvalid := false
		for _, seq := range pending {
			if base == '-' {
				next = append(next, seq)
				continue
			}
			expanded := alphabet.ExpandAmbiguities([]string{string(base)})
			if len(expanded) == 0 {
				sawInvalid = true
				continue
			}
			for _, e := range expanded {
				next = append(next, e+seq)
			}
		}
		if len(next) == 0 {
			if sawInvalid {
				return walkResult{err: ContainsInvalidBase}
			}
			break
		}
		active = next
		nextCol--
		steps++
	}

	if len(results) == 0 {
		return walkResult{err: WalksOut}
	}
	return walkResult{seqs: results}
}

// walkRight is the mirror of walkLeft for RKmer construction: it extends
// rightward from seed. The caller reverse-complements the collected
// strings into primer orientation.
func walkRight(row []byte, seed string, nextCol int, cols columnBases, maxWalk int, tmCfg thermo.Config) walkResult {
	active := alphabet.ExpandAmbiguities([]string{seed})
	if len(active) == 0 {
		return walkResult{err: ContainsInvalidBase}
	}
	var results []string
	steps := 0

	for len(active) > 0 {
		var pending []string
		for _, seq := range active {
			if thermo.MeltingTemp(seq, tmCfg) >= tmCfg.PrimerTmMin {
				results = append(results, seq)
				continue
			}
			pending = append(pending, seq)
		}
		if len(pending) == 0 {
			break
		}
		if nextCol >= len(row) || cols(nextCol) == nil {
			return walkResult{err: WalksOut}
		}
		if steps >= maxWalk {
			return walkResult{err: WalksTooFar}
		}

		base := rowBase(row, nextCol, cols)
		var next []string
		sawInvalid := false
		for _, seq := range pending {
			if base == '-' {
				next = append(next, seq)
				continue
			}
			expanded := alphabet.ExpandAmbiguities([]string{string(base)})
			if len(expanded) == 0 {
				sawInvalid = true
				continue
			}
			for _, e := range expanded {
				next = append(next, seq+e)
			}
		}
		if len(next) == 0 {
			if sawInvalid {
				return walkResult{err: ContainsInvalidBase}
			}
			break
		}
		active = next
		nextCol++
		steps++
	}

	if len(results) == 0 {
		return walkResult{err: WalksOut}
	}
	return walkResult{seqs: results}
}

// rowBase returns row[col], substituting the alignment's majority base
// (via alphabet.MostCommonBase) when row[col] is the empty/truncation
// sentinel.
func rowBase(row []byte, col int, cols columnBases) byte {
	b := row[col]
	if b != 0 {
		return b
	}
	return alphabet.MostCommonBase(cols(col))
}
