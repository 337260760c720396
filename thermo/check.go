package thermo

// Result is the outcome of screening a set of concrete primer sequences
// against the thermodynamic gate. Zero value is PASS.
type Result int

const (
	PASS Result = iota
	LowTM
	HighTM
	LowGC
	HighGC
	MaxHomopolymer
	Hairpin
)

func (r Result) String() string {
	switch r {
	case PASS:
		return "PASS"
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
	case Hairpin:
		return "HAIRPIN"
	default:
		return "UNKNOWN"
	}
}

// CheckOne screens a single concrete sequence against cfg, in the priority
// order Tm, GC, homopolymer, hairpin; the first failing check is returned.
func CheckOne(seq string, cfg Config) Result {
	tm := MeltingTemp(seq, cfg)
	switch {
	case tm < cfg.PrimerTmMin:
		return LowTM
	case cfg.PrimerTmMax > 0 && tm > cfg.PrimerTmMax:
		return HighTM
	}

	gc := GCContent(seq)
	switch {
	case gc < cfg.PrimerGCMin:
		return LowGC
	case cfg.PrimerGCMax > 0 && gc > cfg.PrimerGCMax:
		return HighGC
	}

	if cfg.HomopolymerMax > 0 && LongestHomopolymer(seq) > cfg.HomopolymerMax {
		return MaxHomopolymer
	}

	if cfg.HairpinTmMax > 0 && HairpinTm(seq, cfg) >= cfg.HairpinTmMax {
		return Hairpin
	}

	return PASS
}

// CheckKmers screens every member of seqs and returns PASS only if every
// member passes; otherwise it returns the first non-PASS result found,
// scanning in the caller's order (callers are expected to pass a
// deterministically sorted slice per the spec's ordering contract).
func CheckKmers(seqs []string, cfg Config) Result {
	for _, s := range seqs {
		if r := CheckOne(s, cfg); r != PASS {
			return r
		}
	}
	return PASS
}

// DimerInteract is the provided thermodynamic primitive named in the spec:
// it returns true iff any pair of oligos from a and b is predicted to form
// a duplex with a score at or below threshold (more negative = stronger
// interaction). The scorer is a simplified complementarity proxy that
// weights runs of consecutive complementary bases and does not use the
// nearest-neighbor table of MeltingTemp: the exact primer3
// dimer model is explicitly a non-goal, so this gives the rest of the core
// a concrete, deterministic oracle to be exercised against instead of an
// external dependency.
func DimerInteract(a, b []string, threshold float64) bool {
	for _, x := range a {
		for _, y := range b {
			if dimerScore(x, y) <= threshold {
				return true
			}
		}
	}
	return false
}

// dimerScore finds the strongest contiguous complementary alignment between
// x and reverse(y): within each alignment, every complementary base adds a
// penalty of 1.5 times the length of the complementary run it extends. It
// returns the most negative score, which grows more negative with longer,
// stronger complementary runs — consistent with DimerInteract's "more
// negative = stronger" contract.
func dimerScore(x, y string) float64 {
	ry := reverseString(y)
	best := 0.0
	for offset := -(len(ry) - 1); offset < len(x); offset++ {
		score := alignedScore(x, ry, offset)
		if score < best {
			best = score
		}
	}
	return best
}

func alignedScore(x, ry string, offset int) float64 {
	comp := map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C'}
	score := 0.0
	run := 0
	for i := 0; i < len(x); i++ {
		j := i - offset
		if j < 0 || j >= len(ry) {
			run = 0
			continue
		}
		if comp[x[i]] == ry[j] {
			run++
			score -= 1.5 * float64(run)
		} else {
			run = 0
		}
	}
	return score
}

func reverseString(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = s[len(s)-1-i]
	}
	return string(out)
}
