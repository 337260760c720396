/*
Package mispriming implements the spurious cross-product detector: given
the match-tuple sets of a candidate primer and of everything already
accepted in a pool, it decides whether combining them would amplify an
unintended product.

The open question recorded in the original design notes is resolved here
by naming the predicate for what it returns: PairsInteract reports true
when an interaction (and therefore a disqualifying mispriming product) is
present, not when the pair is "free" of one.
*/
package mispriming

import "github.com/primalscheme/primalscheme/matchdb"

// PairsInteract returns true iff there exists a '+' entry in one of
// newMatches/poolMatches and a '-' entry in the other sharing the same
// MSAIndex with 0 < (minusPos - plusPos) < productSize. That configuration
// describes a forward primer of one pair and a reverse primer of the other
// close enough together to amplify a spurious product.
func PairsInteract(newMatches, poolMatches []matchdb.Match, productSize int) bool {
	return crossProduct(newMatches, poolMatches, productSize) || crossProduct(poolMatches, newMatches, productSize)
}

// crossProduct checks every '+' entry in plusSet against every '-' entry in
// minusSet. Kept near-linear in the expected case because find_* pruning
// (removeExpected, k-mer specificity) keeps both sets small in practice,
// per the spec's complexity note.
func crossProduct(plusSet, minusSet []matchdb.Match, productSize int) bool {
	for _, p := range plusSet {
		if p.Strand != matchdb.Plus {
			continue
		}
		for _, m := range minusSet {
			if m.Strand != matchdb.Minus {
				continue
			}
			if m.MSAIndex != p.MSAIndex {
				continue
			}
			delta := m.Position - p.Position
			if delta > 0 && delta < productSize {
				return true
			}
		}
	}
	return false
}
