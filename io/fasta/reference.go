package fasta

import (
	"bufio"
	"io"

	"github.com/primalscheme/primalscheme/msa"
)

// WriteReference writes each MSA's reference row (the ungapped sequence
// BuildMapping derived, keyed by the same Name used as the BED chromosome
// field) as a flat FASTA file, reusing the Build/Write idiom above.
func WriteReference(w io.Writer, msas []*msa.MSA) error {
	fastas := make([]Fasta, len(msas))
	for i, m := range msas {
		fastas[i] = Fasta{Name: m.Name, Sequence: m.RefSequence}
	}
	body, err := Build(fastas)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(body); err != nil {
		return err
	}
	return bw.Flush()
}
