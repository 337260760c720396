/*
Package fasta writes the reference FASTA that accompanies a scheme's
primer BED output: one record per MSA, keyed by the same name used as the
BED chromosome field.

MSA's own loader (package msa) parses aligned input directly into its
rows x cols matrix rather than through this package's Fasta type, since it
must preserve gap and ragged-truncation positions a flat Fasta record
cannot represent; this package only ever serializes the ungapped reference
row BuildMapping already derived.
*/
package fasta

import (
	"bytes"
	"io/ioutil"
)

// Fasta is a single FASTA record: a header Name and its Sequence.
type Fasta struct {
	Name     string `json:"name"`
	Sequence string `json:"sequence"`
}

// Build serializes fastas into FASTA-formatted bytes.
func Build(fastas []Fasta) ([]byte, error) {
	var fastaString bytes.Buffer
	for _, fasta := range fastas {
		fastaString.WriteString(">")
		fastaString.WriteString(fasta.Name)
		fastaString.WriteString("\n")
		fastaString.WriteString(fasta.Sequence)
		fastaString.WriteString("\n")
	}
	return fastaString.Bytes(), nil
}

// Write serializes fastas and writes them to path.
func Write(fastas []Fasta, path string) error {
	fastaBytes, err := Build(fastas)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, fastaBytes, 0644)
}
