package digest

import "github.com/primalscheme/primalscheme/thermo"

// ErrorKind enumerates every non-fatal digestion outcome named in the
// spec. Digestion errors down-rank a column; they are never fatal to the
// run.
type ErrorKind int

const (
	none ErrorKind = iota
	WalksOut
	WalksTooFar
	ContainsInvalidBase
	GapOnSetBase
	HairpinFail
	DimerFail
	LowTM
	HighTM
	LowGC
	HighGC
	MaxHomopolymer
	NoSequences
	other
)

func (k ErrorKind) String() string {
	switch k {
	case WalksOut:
		return "WALKS_OUT"
	case WalksTooFar:
		return "WALKS_TOO_FAR"
	case ContainsInvalidBase:
		return "CONTAINS_INVALID_BASE"
	case GapOnSetBase:
		return "GAP_ON_SET_BASE"
	case HairpinFail:
		return "HAIRPIN_FAIL"
	case DimerFail:
		return "DIMER_FAIL"
	case LowTM:
		return "LOW_TM"
	case HighTM:
		return "HIGH_TM"
	case LowGC:
		return "LOW_GC"
	case HighGC:
		return "HIGH_GC"
	case MaxHomopolymer:
		return "MAX_HOMOPOLY"
	case NoSequences:
		return "NO_SEQUENCES"
	default:
		return "OTHER"
	}
}

// severityRank implements the strict-mode error hierarchy from the spec:
// INVALID_BASE > GAP_ON_SET_BASE > WALKS_OUT > RECURSION > WALKS_TOO_FAR >
// OTHER. Lower rank wins when a single column's error is chosen to
// represent the whole rejected column.
var severityRank = map[ErrorKind]int{
	ContainsInvalidBase: 0,
	GapOnSetBase:        1,
	WalksOut:            2,
	WalksTooFar:         4,
	other:               5,
}

func mostSevere(kinds []ErrorKind) ErrorKind {
	best := other
	bestRank := severityRank[other]
	for _, k := range kinds {
		rank, ok := severityRank[k]
		if !ok {
			rank = bestRank // unranked kinds (thermo-specific) never outrank the hierarchy
			continue
		}
		if rank < bestRank {
			best = k
			bestRank = rank
		}
	}
	return best
}

func fromThermo(r thermo.Result) ErrorKind {
	switch r {
	case thermo.LowTM:
		return LowTM
	case thermo.HighTM:
		return HighTM
	case thermo.LowGC:
		return LowGC
	case thermo.HighGC:
		return HighGC
	case thermo.MaxHomopolymer:
		return MaxHomopolymer
	case thermo.Hairpin:
		return HairpinFail
	default:
		return none
	}
}

// ColumnReport records the outcome of digesting one column for one
// direction (forward or reverse), for logging and for the aggregator.
type ColumnReport struct {
	Column    int
	Reverse   bool
	Accepted  bool
	Error     ErrorKind
	NumSeqs   int
	RowErrors map[int]ErrorKind
}
