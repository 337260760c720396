package remap

import (
	"testing"

	"github.com/primalscheme/primalscheme/bed"
	"github.com/primalscheme/primalscheme/msa"
)

func TestTranslateIdentityMapping(t *testing.T) {
	from := &msa.MSA{Name: "refA", Index: 0, Cols: 20}
	to := &msa.MSA{Name: "refB", Index: 1, Cols: 20}
	from.MappingArray = make([]int, 20)
	to.MappingArray = make([]int, 20)
	for c := 0; c < 20; c++ {
		from.MappingArray[c] = c
		to.MappingArray[c] = c
	}

	records := []bed.BedRecord{{Chrom: "refA", Start: 5, End: 10, Name: "refA_1_LEFT"}}
	out, err := Translate(records, from, to)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out[0].Chrom != "refB" || out[0].Start != 5 || out[0].End != 10 {
		t.Fatalf("identity mapping should preserve coordinates, got %+v", out[0])
	}
}

func TestTranslateShiftedReference(t *testing.T) {
	// to's reference has a 3-column insertion (gap in from) at the start,
	// so every column maps 3 further along.
	from := &msa.MSA{Name: "refA", Index: 0, Cols: 10}
	to := &msa.MSA{Name: "refB", Index: 1, Cols: 10}
	from.MappingArray = []int{-1, -1, -1, 0, 1, 2, 3, 4, 5, 6}
	to.MappingArray = []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	records := []bed.BedRecord{{Chrom: "refA", Start: 0, End: 3, Name: "refA_1_LEFT"}}
	out, err := Translate(records, from, to)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out[0].Start != 3 || out[0].End != 6 {
		t.Fatalf("expected shifted coordinates [3,6), got [%d,%d)", out[0].Start, out[0].End)
	}
}

func TestTranslateRejectsWidthMismatch(t *testing.T) {
	from := &msa.MSA{Cols: 10, MappingArray: make([]int, 10)}
	to := &msa.MSA{Cols: 12, MappingArray: make([]int, 12)}
	if _, err := Translate(nil, from, to); err == nil {
		t.Fatal("expected an error for mismatched alignment widths")
	}
}

func TestTranslateRejectsFullyGappedDestination(t *testing.T) {
	from := &msa.MSA{Name: "refA", Cols: 5, MappingArray: []int{0, 1, 2, 3, 4}}
	to := &msa.MSA{Name: "refB", Cols: 5, MappingArray: []int{-1, -1, -1, -1, -1}}

	records := []bed.BedRecord{{Chrom: "refA", Start: 1, End: 3, Name: "refA_1_LEFT"}}
	if _, err := Translate(records, from, to); err == nil {
		t.Fatal("expected an error when the destination reference has no bases in range")
	}
}
