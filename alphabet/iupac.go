package alphabet

import "sort"

// IUPAC is the nucleotide alphabet accepted in an aligned MSA column: the
// four concrete bases, the eleven IUPAC ambiguity codes, and the alignment
// gap. It is built on top of the generic Alphabet encoder above so that
// callers can reuse Check for fast input validation.
var IUPAC = NewAlphabet([]string{
	"A", "C", "G", "T",
	"M", "R", "W", "S", "Y", "K", "V", "H", "D", "B", "N",
	"-",
})

// ambiguityExpansions lists the concrete A/C/G/T bases each IUPAC ambiguity
// code may stand for. Concrete bases expand to themselves. N and unknown
// symbols have no entry and are treated as invalid by ExpandAmbiguities.
var ambiguityExpansions = map[byte][]byte{
	'A': {'A'},
	'C': {'C'},
	'G': {'G'},
	'T': {'T'},
	'M': {'A', 'C'},
	'R': {'A', 'G'},
	'W': {'A', 'T'},
	'S': {'C', 'G'},
	'Y': {'C', 'T'},
	'K': {'G', 'T'},
	'V': {'A', 'C', 'G'},
	'H': {'A', 'C', 'T'},
	'D': {'A', 'G', 'T'},
	'B': {'C', 'G', 'T'},
}

// complement is the IUPAC complement table, including the self-complements
// for W, S, N and the alignment gap.
var complement = map[byte]byte{
	'A': 'T', 'T': 'A', 'C': 'G', 'G': 'C',
	'M': 'K', 'K': 'M', 'R': 'Y', 'Y': 'R',
	'V': 'B', 'B': 'V', 'H': 'D', 'D': 'H',
	'W': 'W', 'S': 'S', 'N': 'N', '-': '-',
}

// ExpandAmbiguities returns the set of fully concrete A/C/G/T strings
// obtained by replacing every IUPAC ambiguity code in each input string
// with each of its concrete bases, taking the Cartesian product across
// positions. A string containing 'N', a gap, or any symbol outside the
// IUPAC alphabet yields no expansions for that string; callers treat an
// empty result as an invalid-base error.
func ExpandAmbiguities(seqs []string) []string {
	var out []string
	for _, seq := range seqs {
		expanded := expandOne(seq)
		out = append(out, expanded...)
	}
	return out
}

func expandOne(seq string) []string {
	branches := []string{""}
	for i := 0; i < len(seq); i++ {
		bases, ok := ambiguityExpansions[upper(seq[i])]
		if !ok {
			return nil
		}
		next := make([]string, 0, len(branches)*len(bases))
		for _, b := range branches {
			for _, base := range bases {
				next = append(next, b+string(base))
			}
		}
		branches = next
	}
	return branches
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// ReverseComplement returns the reverse complement of s under the IUPAC
// complement table. Lower-case input is complemented as upper case, and a
// symbol with no defined complement becomes 'N'.
func ReverseComplement(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[len(s)-1-i]
		comp, ok := complement[upper(c)]
		if !ok {
			comp = 'N'
		}
		out[i] = comp
	}
	return string(out)
}

// baseOrder fixes the tie-break order required by the spec: A < C < G < T,
// with ambiguity codes sorted after the four concrete bases.
var baseOrder = map[byte]int{'A': 0, 'C': 1, 'G': 2, 'T': 3}

// MostCommonBase returns the majority non-gap, non-empty base in col, with
// ties broken by the fixed order A<C<G<T<other. col entries equal to 0 are
// treated as the MSA's empty/truncated-row sentinel and ignored, along with
// '-' gaps.
func MostCommonBase(col []byte) byte {
	counts := make(map[byte]int)
	for _, c := range col {
		if c == 0 || c == '-' {
			continue
		}
		counts[upper(c)]++
	}
	if len(counts) == 0 {
		return 0
	}
	type candidate struct {
		base  byte
		count int
	}
	cands := make([]candidate, 0, len(counts))
	for b, n := range counts {
		cands = append(cands, candidate{b, n})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].count != cands[j].count {
			return cands[i].count > cands[j].count
		}
		oi, oki := baseOrder[cands[i].base]
		oj, okj := baseOrder[cands[j].base]
		if oki && okj {
			return oi < oj
		}
		if oki != okj {
			return oki
		}
		return cands[i].base < cands[j].base
	})
	return cands[0].base
}
