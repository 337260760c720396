/*
Package bed reads and writes the primer and amplicon BED files that are the
scheme solvers' externally-visible output, adapted from the teacher's
io/fasta Build/Write idiom: an in-memory step (buildPrimerRecords) produces
the records, and WritePrimerBED writes them to an io.Writer.

A primer BED row carries one more column than the standard six: the
concrete oligo sequence, so that a round trip through disk reproduces the
full record rather than just its genomic interval.
*/
package bed

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

// nameExp validates and decomposes a primer BED name field: chromosome,
// amplicon number, side (LEFT/RIGHT, or the shorthand L/R), and an optional
// alt-sequence suffix for degenerate primers with more than one concrete
// oligo.
var nameExp = regexp.MustCompile(`^([A-Za-z0-9]+)_(\d+)_(LEFT|RIGHT|L|R)(?:_(\d+))?$`)

// BedRecord is one row of a primer BED file, 0-based internally regardless
// of the 1-based pool numbers a BED file shows on disk.
type BedRecord struct {
	Chrom    string
	Start    int
	End      int
	Name     string
	Pool     int // 0-based
	Strand   byte
	Sequence string

	AmpliconNumber int
	Side           string // "LEFT" or "RIGHT"
	Alt            int    // 0 for the first oligo of a degenerate primer, 1.. for the rest
}

// ParsePrimerBED reads a tab-separated primer BED and validates every name
// field against nameExp, rejecting any row that doesn't follow the
// chrom_amplicon_SIDE[_alt] convention this package writes.
func ParsePrimerBED(r io.Reader) ([]BedRecord, error) {
	var out []BedRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 7 {
			return nil, fmt.Errorf("bed: line %d: expected 7 tab-separated fields, got %d", lineNo, len(fields))
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, fmt.Errorf("bed: line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseRecord(fields []string) (BedRecord, error) {
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return BedRecord{}, fmt.Errorf("invalid start %q: %w", fields[1], err)
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return BedRecord{}, fmt.Errorf("invalid end %q: %w", fields[2], err)
	}
	name := fields[3]
	m := nameExp.FindStringSubmatch(name)
	if m == nil {
		return BedRecord{}, fmt.Errorf("name %q does not match chrom_amplicon_SIDE[_alt]", name)
	}
	amplicon, err := strconv.Atoi(m[2])
	if err != nil {
		return BedRecord{}, fmt.Errorf("invalid amplicon number in name %q: %w", name, err)
	}
	alt := 0
	if m[4] != "" {
		alt, err = strconv.Atoi(m[4])
		if err != nil {
			return BedRecord{}, fmt.Errorf("invalid alt suffix in name %q: %w", name, err)
		}
	}
	side := normalizeSide(m[3])

	pool1Based, err := strconv.Atoi(fields[4])
	if err != nil {
		return BedRecord{}, fmt.Errorf("invalid pool %q: %w", fields[4], err)
	}
	if pool1Based < 1 {
		return BedRecord{}, fmt.Errorf("pool must be 1-based and >= 1, got %d", pool1Based)
	}

	strandField := fields[5]
	if strandField != "+" && strandField != "-" {
		return BedRecord{}, fmt.Errorf("invalid strand %q", strandField)
	}

	return BedRecord{
		Chrom:          m[1],
		Start:          start,
		End:            end,
		Name:           name,
		Pool:           pool1Based - 1,
		Strand:         strandField[0],
		Sequence:       fields[6],
		AmpliconNumber: amplicon,
		Side:           side,
		Alt:            alt,
	}, nil
}

func normalizeSide(raw string) string {
	switch raw {
	case "LEFT", "L":
		return "LEFT"
	case "RIGHT", "R":
		return "RIGHT"
	default:
		return raw
	}
}

// WritePrimerBED writes one row per concrete oligo sequence across pairs,
// decomposing each pair's degenerate FPrimer/RPrimer sets into individually
// named alt rows, translating each oligo's alignment-column interval into
// its MSA's reference coordinate space via MappingArray.
func WritePrimerBED(w io.Writer, pairs []primer.Pair, msas []*msa.MSA) error {
	records, err := buildPrimerRecords(pairs, msas)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%d\t%c\t%s\n",
			rec.Chrom, rec.Start, rec.End, rec.Name, rec.Pool+1, rec.Strand, rec.Sequence); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func buildPrimerRecords(pairs []primer.Pair, msas []*msa.MSA) ([]BedRecord, error) {
	byIndex := make(map[int]*msa.MSA, len(msas))
	for _, m := range msas {
		byIndex[m.Index] = m
	}

	var out []BedRecord
	for _, p := range pairs {
		m, ok := byIndex[p.MSAIndex]
		if !ok {
			return nil, fmt.Errorf("bed: pair references unknown msa index %d", p.MSAIndex)
		}
		fRecs, err := fPrimerRecords(p, m)
		if err != nil {
			return nil, err
		}
		rRecs, err := rPrimerRecords(p, m)
		if err != nil {
			return nil, err
		}
		out = append(out, fRecs...)
		out = append(out, rRecs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Chrom != out[j].Chrom {
			return out[i].Chrom < out[j].Chrom
		}
		if out[i].AmpliconNumber != out[j].AmpliconNumber {
			return out[i].AmpliconNumber < out[j].AmpliconNumber
		}
		return out[i].Strand < out[j].Strand
	})
	return out, nil
}

func fPrimerRecords(p primer.Pair, m *msa.MSA) ([]BedRecord, error) {
	out := make([]BedRecord, 0, len(p.FPrimer.Seqs))
	for alt, seq := range p.FPrimer.Seqs {
		start := p.FPrimer.End - len(seq)
		refStart, refEnd, ok := MapInterval(m, start, p.FPrimer.End)
		if !ok {
			return nil, fmt.Errorf("bed: forward primer at msa %d column %d maps to no reference coordinates", m.Index, start)
		}
		out = append(out, BedRecord{
			Chrom:          m.Name,
			Start:          refStart,
			End:            refEnd,
			Name:           primerName(m.Name, p.AmpliconNumber, "LEFT", alt),
			Pool:           p.Pool,
			Strand:         '+',
			Sequence:       seq,
			AmpliconNumber: p.AmpliconNumber,
			Side:           "LEFT",
			Alt:            alt,
		})
	}
	return out, nil
}

func rPrimerRecords(p primer.Pair, m *msa.MSA) ([]BedRecord, error) {
	out := make([]BedRecord, 0, len(p.RPrimer.Seqs))
	for alt, seq := range p.RPrimer.Seqs {
		end := p.RPrimer.Start + len(seq)
		refStart, refEnd, ok := MapInterval(m, p.RPrimer.Start, end)
		if !ok {
			return nil, fmt.Errorf("bed: reverse primer at msa %d column %d maps to no reference coordinates", m.Index, p.RPrimer.Start)
		}
		out = append(out, BedRecord{
			Chrom:          m.Name,
			Start:          refStart,
			End:            refEnd,
			Name:           primerName(m.Name, p.AmpliconNumber, "RIGHT", alt),
			Pool:           p.Pool,
			Strand:         '-',
			Sequence:       seq,
			AmpliconNumber: p.AmpliconNumber,
			Side:           "RIGHT",
			Alt:            alt,
		})
	}
	return out, nil
}

func primerName(chrom string, amplicon int, side string, alt int) string {
	if alt == 0 {
		return fmt.Sprintf("%s_%d_%s", chrom, amplicon, side)
	}
	return fmt.Sprintf("%s_%d_%s_%d", chrom, amplicon, side, alt)
}

// MapInterval translates an alignment-column half-open interval [start,end)
// into the MSA's reference coordinate space: the first non-gap column at or
// after start gives refStart, the last non-gap column before end gives
// refEnd (exclusive). ok is false if the interval covers no reference base
// at all (every column in range is a gap or truncation).
func MapInterval(m *msa.MSA, start, end int) (refStart, refEnd int, ok bool) {
	if start < 0 {
		start = 0
	}
	if end > len(m.MappingArray) {
		end = len(m.MappingArray)
	}
	refStart, refEnd = -1, -1
	for c := start; c < end; c++ {
		if m.MappingArray[c] < 0 {
			continue
		}
		if refStart == -1 {
			refStart = m.MappingArray[c]
		}
		refEnd = m.MappingArray[c] + 1
	}
	if refStart == -1 {
		return 0, 0, false
	}
	return refStart, refEnd, true
}

// WriteAmpliconBED writes one row per pair spanning its full genomic
// amplicon interval (forward primer's leftmost base through reverse
// primer's rightmost base), rather than one row per primer.
func WriteAmpliconBED(w io.Writer, pairs []primer.Pair, msas []*msa.MSA) error {
	byIndex := make(map[int]*msa.MSA, len(msas))
	for _, m := range msas {
		byIndex[m.Index] = m
	}

	type ampliconRow struct {
		chrom string
		start int
		end   int
		name  string
		pool  int
	}
	var rows []ampliconRow
	for _, p := range pairs {
		m, ok := byIndex[p.MSAIndex]
		if !ok {
			return fmt.Errorf("bed: pair references unknown msa index %d", p.MSAIndex)
		}
		refStart, refEnd, ok := MapInterval(m, p.Start(), p.End())
		if !ok {
			return fmt.Errorf("bed: amplicon %d on %s maps to no reference coordinates", p.AmpliconNumber, m.Name)
		}
		rows = append(rows, ampliconRow{
			chrom: m.Name,
			start: refStart,
			end:   refEnd,
			name:  fmt.Sprintf("%s_%d", m.Name, p.AmpliconNumber),
			pool:  p.Pool,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].chrom != rows[j].chrom {
			return rows[i].chrom < rows[j].chrom
		}
		return rows[i].start < rows[j].start
	})

	bw := bufio.NewWriter(w)
	for _, row := range rows {
		if _, err := fmt.Fprintf(bw, "%s\t%d\t%d\t%s\t%d\n", row.chrom, row.start, row.end, row.name, row.pool+1); err != nil {
			return err
		}
	}
	return bw.Flush()
}
