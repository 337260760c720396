/*
Package thermo implements the thermodynamic oracle the digestion and
dimer-screening components treat as a black box: melting temperature by the
nearest-neighbor method, homopolymer and hairpin screens, GC content, and
the primer-primer dimer interaction predicate.

The melting-temperature calculation is adapted from the SantaLucia
implementation in the legacy poly primer package: the same enthalpy/entropy
nearest-neighbor table, initiation, terminal-AT and salt-correction
penalties, generalized to take its concentrations from a Config value
instead of fixed constants. The exact nearest-neighbor parameterization is
explicitly a non-goal of the spec ("any salt-corrected nearest-neighbor Tm");
what must hold is that it behaves as one coherent oracle behind the
PASS/LOW_TM/... result type.
*/
package thermo

import (
	"math"
	"strings"
)

// Config carries every thermodynamic knob named in the run configuration.
// It is passed by value into every oracle call; the package holds no
// mutable state.
type Config struct {
	MvConc   float64 // monovalent cation concentration, molar
	DvConc   float64 // divalent cation concentration, molar
	DNTPConc float64 // dNTP concentration, molar
	DNAConc  float64 // primer concentration, molar

	PrimerTmMin float64
	PrimerTmMax float64
	PrimerGCMin float64
	PrimerGCMax float64

	HomopolymerMax int
	HairpinTmMax   float64

	DimerScore float64 // threshold; more negative = stronger duplex
}

// nnThermo holds enthalpy (dH, kcal/mol) and entropy (dS, cal/mol-K) for one
// nearest-neighbor dinucleotide step.
type nnThermo struct{ H, S float64 }

var nearestNeighbor = map[string]nnThermo{
	"AA": {-7.6, -21.3}, "TT": {-7.6, -21.3},
	"AT": {-7.2, -20.4}, "TA": {-7.2, -21.3},
	"CA": {-8.5, -22.7}, "TG": {-8.5, -22.7},
	"GT": {-8.4, -22.4}, "AC": {-8.4, -22.4},
	"CT": {-7.8, -21.0}, "AG": {-7.8, -21.0},
	"GA": {-8.2, -22.2}, "TC": {-8.2, -22.2},
	"CG": {-10.6, -27.2}, "GC": {-9.8, -24.4},
	"GG": {-8.0, -19.9}, "CC": {-8.0, -19.9},
}

var initPenalty = nnThermo{0.2, -5.7}
var symmetryPenalty = nnThermo{0, -1.4}
var terminalATPenalty = nnThermo{2.2, 6.9}

const gasConstant = 1.9872 // cal / mol-K

// MeltingTemp computes the nearest-neighbor melting temperature of seq
// under cfg's salt and primer concentrations, combining monovalent and
// divalent cation contributions the way von Ahsen et al. (1999)
// approximates mixed-salt buffers.
func MeltingTemp(seq string, cfg Config) float64 {
	seq = strings.ToUpper(seq)
	if len(seq) < 2 {
		return math.NaN()
	}

	var dH, dS float64
	dH += initPenalty.H
	dS += initPenalty.S

	x := 4.0
	if seq == reverseComplementDNAOnly(seq) {
		dH += symmetryPenalty.H
		dS += symmetryPenalty.S
		x = 1
	}

	if last := seq[len(seq)-1]; last == 'A' || last == 'T' {
		dH += terminalATPenalty.H
		dS += terminalATPenalty.S
	}

	saltEffect := cfg.MvConc + cfg.DvConc*140 - cfg.DNTPConc*140
	if saltEffect <= 0 {
		saltEffect = 1e-9
	}
	dS += 0.368 * float64(len(seq)-1) * math.Log(saltEffect)

	for i := 0; i+1 < len(seq); i++ {
		step := nearestNeighbor[seq[i:i+2]]
		dH += step.H
		dS += step.S
	}

	primerConc := cfg.DNAConc
	if primerConc <= 0 {
		primerConc = 500e-9
	}
	return dH*1000/(dS+gasConstant*math.Log(primerConc/x)) - 273.15
}

// reverseComplementDNAOnly complements only A/C/G/T, without importing the
// alphabet package; the oracle only ever sees concrete A/C/G/T primer
// strings by the time it is called.
func reverseComplementDNAOnly(seq string) string {
	comp := map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C'}
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c, ok := comp[seq[len(seq)-1-i]]
		if !ok {
			return "" // not self-complementary if it isn't plain DNA
		}
		out[i] = c
	}
	return string(out)
}

// GCContent returns the fraction of G/C bases in seq.
func GCContent(seq string) float64 {
	if len(seq) == 0 {
		return 0
	}
	g, c := strings.Count(strings.ToUpper(seq), "G"), strings.Count(strings.ToUpper(seq), "C")
	return float64(g+c) / float64(len(seq))
}

// LongestHomopolymer returns the length of the longest single-base run.
func LongestHomopolymer(seq string) int {
	if len(seq) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	return best
}

// HairpinTm approximates the melting temperature of the strongest
// self-complementary hairpin stem anchored at the 5' end of seq: for every
// stem length >= 4 and every loop length >= 3 it pairs seq[:stem] with the
// stem-length block right after the loop, and scores a complementary stem
// as a duplex with MeltingTemp. Stems that do not start at position 0 are
// not considered. Returns math.Inf(-1) if no hairpin stem is
// found, so the caller's "below threshold" comparison always passes.
func HairpinTm(seq string, cfg Config) float64 {
	best := math.Inf(-1)
	n := len(seq)
	const minStem = 4
	const minLoop = 3
	for loop := minLoop; loop < n; loop++ {
		maxStem := (n - loop) / 2
		for stem := minStem; stem <= maxStem; stem++ {
			left := seq[:stem]
			rightStart := stem + loop
			right := seq[rightStart : rightStart+stem]
			if isComplementaryStem(left, right) {
				tm := MeltingTemp(left, cfg)
				if tm > best {
					best = tm
				}
			}
		}
	}
	return best
}

func isComplementaryStem(left, right string) bool {
	if len(left) != len(right) {
		return false
	}
	comp := map[byte]byte{'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C'}
	for i := 0; i < len(left); i++ {
		rc, ok := comp[right[len(right)-1-i]]
		if !ok || left[i] != rc {
			return false
		}
	}
	return true
}
