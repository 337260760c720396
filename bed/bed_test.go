package bed

import (
	"bytes"
	"sort"
	"testing"

	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

func testMSA() *msa.MSA {
	m := &msa.MSA{
		Name:  "testgenome",
		Index: 0,
		Cols:  20,
	}
	// Identity mapping: column c maps to reference coordinate c. No gaps.
	m.MappingArray = make([]int, m.Cols)
	for c := range m.MappingArray {
		m.MappingArray[c] = c
	}
	return m
}

func testPair() primer.Pair {
	return primer.Pair{
		MSAIndex:       0,
		FPrimer:        primer.NewFKmer(10, []string{"AAAAAAAAAA", "AAAAAAAAAC"}),
		RPrimer:        primer.NewRKmer(15, []string{"GGGGG"}),
		AmpliconNumber: 3,
		Pool:           1,
	}
}

func TestWritePrimerBEDNameFormat(t *testing.T) {
	pairs := []primer.Pair{testPair()}
	msas := []*msa.MSA{testMSA()}

	var buf bytes.Buffer
	if err := WritePrimerBED(&buf, pairs, msas); err != nil {
		t.Fatalf("WritePrimerBED: %v", err)
	}

	records, err := ParsePrimerBED(&buf)
	if err != nil {
		t.Fatalf("ParsePrimerBED: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (2 forward alts + 1 reverse), got %d", len(records))
	}

	var names []string
	for _, r := range records {
		names = append(names, r.Name)
	}
	sort.Strings(names)
	want := []string{"testgenome_3_LEFT", "testgenome_3_LEFT_1", "testgenome_3_RIGHT"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("name[%d] = %q, want %q", i, names[i], n)
		}
	}
}

func TestWritePrimerBEDRoundTrip(t *testing.T) {
	pairs := []primer.Pair{testPair()}
	msas := []*msa.MSA{testMSA()}

	var buf bytes.Buffer
	if err := WritePrimerBED(&buf, pairs, msas); err != nil {
		t.Fatalf("WritePrimerBED: %v", err)
	}
	original, err := ParsePrimerBED(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParsePrimerBED (first pass): %v", err)
	}

	// BedRecord isn't a primer.Pair, so the round trip under test is
	// parse -> parse again of the same bytes: verify the multiset of
	// (chrom,start,end,name,pool,strand,sequence) is stable.
	reparsed, err := ParsePrimerBED(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParsePrimerBED (second pass): %v", err)
	}
	if len(reparsed) != len(original) {
		t.Fatalf("round trip changed record count: %d vs %d", len(original), len(reparsed))
	}
	type key struct {
		chrom, name, seq string
		start, end, pool int
		strand           byte
	}
	toKey := func(r BedRecord) key {
		return key{r.Chrom, r.Name, r.Sequence, r.Start, r.End, r.Pool, r.Strand}
	}
	seen := make(map[key]int)
	for _, r := range original {
		seen[toKey(r)]++
	}
	for _, r := range reparsed {
		seen[toKey(r)]--
	}
	for k, count := range seen {
		if count != 0 {
			t.Errorf("record multiset mismatch for %+v: off by %d", k, count)
		}
	}
}

func TestParsePrimerBEDRejectsBadName(t *testing.T) {
	bad := "chrom1\t10\t20\tnotavalidname\t1\t+\tAAAA\n"
	if _, err := ParsePrimerBED(bytes.NewReader([]byte(bad))); err == nil {
		t.Fatal("expected an error for a name not matching chrom_amplicon_SIDE[_alt]")
	}
}

func TestParsePrimerBEDPoolIsZeroBasedInternally(t *testing.T) {
	line := "chrom1\t10\t20\tchrom1_1_LEFT\t1\t+\tAAAA\n"
	records, err := ParsePrimerBED(bytes.NewReader([]byte(line)))
	if err != nil {
		t.Fatalf("ParsePrimerBED: %v", err)
	}
	if records[0].Pool != 0 {
		t.Fatalf("expected on-disk pool 1 to become internal pool 0, got %d", records[0].Pool)
	}
}

func TestWriteAmpliconBED(t *testing.T) {
	pairs := []primer.Pair{testPair()}
	msas := []*msa.MSA{testMSA()}

	var buf bytes.Buffer
	if err := WriteAmpliconBED(&buf, pairs, msas); err != nil {
		t.Fatalf("WriteAmpliconBED: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected non-empty amplicon BED output")
	}
}
