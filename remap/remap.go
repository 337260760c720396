/*
Package remap re-expresses BED records produced against one MSA's
reference coordinate space into another's, the "external collaborator"
the distilled spec names: given two MSAs built from the same alignment (or
two alignments sharing enough homology that both map cleanly onto it),
translate every record's (start, end) by composing from's inverse mapping
(reference coordinate to column) with to's forward mapping (column to
reference coordinate), rather than re-deriving an alignment from scratch.
*/
package remap

import (
	"fmt"

	"github.com/primalscheme/primalscheme/bed"
	"github.com/primalscheme/primalscheme/msa"
)

// Translate re-expresses every record in records from from's reference
// coordinate space into to's. from and to must have the same alignment
// width (they are the same alignment mapped against two different
// reference rows); a record whose columns are all gapped in to's reference
// is an error, since it has no destination coordinate.
func Translate(records []bed.BedRecord, from, to *msa.MSA) ([]bed.BedRecord, error) {
	if from.Cols != to.Cols {
		return nil, fmt.Errorf("remap: alignment width mismatch: from has %d columns, to has %d", from.Cols, to.Cols)
	}

	fromColOf := invertMapping(from.MappingArray)

	out := make([]bed.BedRecord, 0, len(records))
	for _, rec := range records {
		startCol, ok := fromColOf[rec.Start]
		if !ok {
			return nil, fmt.Errorf("remap: record %s start %d has no column in the source mapping", rec.Name, rec.Start)
		}
		// End is exclusive: its column is the one whose reference
		// coordinate is End-1.
		endCol, ok := fromColOf[rec.End-1]
		if !ok {
			return nil, fmt.Errorf("remap: record %s end %d has no column in the source mapping", rec.Name, rec.End)
		}

		newStart, newEnd, ok := bed.MapInterval(to, startCol, endCol+1)
		if !ok {
			return nil, fmt.Errorf("remap: record %s maps to a fully gapped region in the destination reference", rec.Name)
		}

		translated := rec
		translated.Chrom = to.Name
		translated.Start = newStart
		translated.End = newEnd
		out = append(out, translated)
	}
	return out, nil
}

// invertMapping builds reference-coordinate -> alignment-column, the
// inverse of MappingArray (which goes column -> reference coordinate).
func invertMapping(mapping []int) map[int]int {
	inv := make(map[int]int, len(mapping))
	for col, refCoord := range mapping {
		if refCoord >= 0 {
			inv[refCoord] = col
		}
	}
	return inv
}

