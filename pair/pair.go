/*
Package pair joins the FKmers and RKmers a digestion run produces into
candidate PrimerPairs: for each FKmer, a binary-searched window of RKmers
whose start falls within the configured amplicon size range, screened by a
self/cross dimer pre-filter before either kmer is ever handed to a solver.
*/
package pair

import (
	"sort"

	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/primer"
	"github.com/primalscheme/primalscheme/thermo"
)

// Generate builds every surviving PrimerPair between fkmers and rkmers for
// one MSA, sorted by (fprimer.end asc, -rprimer.start).
func Generate(msaIndex int, fkmers []primer.FKmer, rkmers []primer.RKmer, cfg config.RunConfig) []primer.Pair {
	sortedR := append([]primer.RKmer(nil), rkmers...)
	sort.Slice(sortedR, func(i, j int) bool { return sortedR[i].Start < sortedR[j].Start })

	starts := make([]int, len(sortedR))
	for i, r := range sortedR {
		starts[i] = r.Start
	}

	tmCfg := cfg.Thermo()
	var pairs []primer.Pair
	for _, f := range fkmers {
		lo := f.MinStart() + cfg.AmpliconSizeMin
		hi := f.MinStart() + cfg.AmpliconSizeMax
		lowIdx := sort.SearchInts(starts, lo)
		highIdx := sort.SearchInts(starts, hi+1)
		for _, r := range sortedR[lowIdx:highIdx] {
			if thermo.DimerInteract(f.Seqs, r.Seqs, tmCfg.DimerScore) {
				continue
			}
			// AmpliconNumber and Pool are unassigned until a solver places
			// the pair; -1 marks "not yet placed".
			pairs = append(pairs, primer.Pair{
				FPrimer:        f,
				RPrimer:        r,
				MSAIndex:       msaIndex,
				AmpliconNumber: -1,
				Pool:           -1,
			})
		}
	}

	primer.SortPairsByEndThenRStart(pairs)
	return pairs
}
