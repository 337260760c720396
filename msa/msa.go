/*
Package msa loads aligned FASTA files into the rectangular character matrix
the rest of the core operates on, and derives the column mapping used to
re-express alignment coordinates in a chosen row's coordinate system.

The parser is adapted from poly's io/fasta scanner loop: a buffered line
scanner assembling multi-line records into a single sequence string. Unlike
a generic FASTA reader, this one must preserve position information for
every column (including trailing truncated positions in ragged records):
rows shorter than the longest are zero-padded on the right, so the digestion
engine always sees a rectangular matrix.
*/
package msa

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/primalscheme/primalscheme/alphabet"
)

// MSA is a multiple sequence alignment: a rows x cols character matrix plus
// bookkeeping needed to re-express column coordinates against one chosen
// reference row.
type MSA struct {
	// Name identifies the MSA, derived from its source file name, used as
	// the BED chromosome field.
	Name string
	// Index is this MSA's position among the MSAs loaded in one run; it is
	// the msa_index referenced throughout PrimerPair, MatchDB and Scheme.
	Index int
	// RowNames holds each row's FASTA header, in row order.
	RowNames []string
	// Rows is the rows x cols byte matrix. '-' marks an alignment gap, 0
	// marks a truncated (ragged) trailing position absent from that row.
	Rows [][]byte
	// Cols is the alignment width; every row has exactly this length.
	Cols int

	// MappingArray maps column index to the 0-based coordinate of the
	// reference row chosen by Mode, or -1 if that column is a gap in the
	// reference row. Built by BuildMapping.
	MappingArray []int
	// RefIndex is the row used to build MappingArray.
	RefIndex int
	// RefSequence is the ungapped sequence of the reference row, used for
	// FASTA output and coordinate translation.
	RefSequence string
}

// MappingMode selects how MSA columns are mapped back onto a single
// reference sequence.
type MappingMode string

const (
	// MappingFirst uses the first row of the MSA as the reference.
	MappingFirst MappingMode = "first"
	// MappingConsensus builds a synthetic reference from the majority base
	// at every column (via alphabet.MostCommonBase), skipping columns
	// where every row is gapped.
	MappingConsensus MappingMode = "consensus"
)

// Load parses one or more aligned FASTA files into MSAs, in the order given,
// assigning each a sequential Index. Rows of differing length are not
// rejected: rows shorter than the alignment are zero-padded on the
// right and treated as the '' truncation sentinel described in the spec.
func Load(paths []string, mode MappingMode) ([]*MSA, error) {
	msas := make([]*MSA, 0, len(paths))
	for i, path := range paths {
		m, err := loadOne(path, i)
		if err != nil {
			return nil, fmt.Errorf("msa: loading %s: %w", path, err)
		}
		if err := m.BuildMapping(mode); err != nil {
			return nil, fmt.Errorf("msa: mapping %s: %w", path, err)
		}
		msas = append(msas, m)
	}
	return msas, nil
}

func loadOne(path string, index int) (*MSA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, seqs, err := parseFasta(f)
	if err != nil {
		return nil, err
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("no records found")
	}

	maxLen := 0
	for _, s := range seqs {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	rows := make([][]byte, len(seqs))
	for i, s := range seqs {
		row := make([]byte, maxLen)
		copy(row, []byte(strings.ToUpper(s)))
		// Truncated rows keep their trailing bytes as the zero sentinel,
		// matching the spec's '' truncation symbol.
		rows[i] = row
	}

	for i, row := range rows {
		for c, b := range row {
			if b == 0 {
				continue
			}
			if alphabet.IUPAC.Check(string(b)) != -1 {
				return nil, fmt.Errorf("row %d (%s) column %d: invalid base %q", i, names[i], c, b)
			}
		}
	}

	return &MSA{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Index:    index,
		RowNames: names,
		Rows:     rows,
		Cols:     maxLen,
	}, nil
}

func parseFasta(r io.Reader) ([]string, []string, error) {
	var names []string
	var seqs []string
	var cur strings.Builder
	started := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case len(line) == 0:
			continue
		case line[0] == ';':
			continue
		case line[0] == '>':
			if started {
				seqs = append(seqs, cur.String())
				cur.Reset()
			}
			names = append(names, strings.TrimSpace(line[1:]))
			started = true
		default:
			cur.WriteString(strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	if started {
		seqs = append(seqs, cur.String())
	}
	return names, seqs, nil
}

// BuildMapping populates MappingArray, RefIndex and RefSequence according
// to mode.
func (m *MSA) BuildMapping(mode MappingMode) error {
	switch mode {
	case MappingFirst, "":
		return m.buildMappingFromRow(0)
	case MappingConsensus:
		return m.buildConsensusMapping()
	default:
		return fmt.Errorf("unknown mapping mode %q", mode)
	}
}

func (m *MSA) buildMappingFromRow(rowIdx int) error {
	if rowIdx < 0 || rowIdx >= len(m.Rows) {
		return fmt.Errorf("reference row %d out of range", rowIdx)
	}
	m.RefIndex = rowIdx
	row := m.Rows[rowIdx]
	mapping := make([]int, m.Cols)
	var ref strings.Builder
	refCol := 0
	for c, b := range row {
		if b == '-' || b == 0 {
			mapping[c] = -1
			continue
		}
		mapping[c] = refCol
		ref.WriteByte(b)
		refCol++
	}
	m.MappingArray = mapping
	m.RefSequence = ref.String()
	return nil
}

// buildConsensusMapping synthesizes a reference from the per-column
// majority base and maps every non-gap-consensus column onto it.
func (m *MSA) buildConsensusMapping() error {
	m.RefIndex = -1
	mapping := make([]int, m.Cols)
	var ref strings.Builder
	refCol := 0
	for c := 0; c < m.Cols; c++ {
		col := make([]byte, len(m.Rows))
		for r := range m.Rows {
			col[r] = m.Rows[r][c]
		}
		base := alphabet.MostCommonBase(col)
		if base == 0 {
			mapping[c] = -1
			continue
		}
		mapping[c] = refCol
		ref.WriteByte(base)
		refCol++
	}
	m.MappingArray = mapping
	m.RefSequence = ref.String()
	return nil
}

// Column returns every row's byte at col, in row order.
func (m *MSA) Column(col int) []byte {
	out := make([]byte, len(m.Rows))
	for r, row := range m.Rows {
		out[r] = row[col]
	}
	return out
}

// UngapSuffix returns MSA[row, start:end) with gaps and truncation
// sentinels removed, in original column order.
func UngapSuffix(row []byte, start, end int) string {
	var b strings.Builder
	for c := start; c < end; c++ {
		ch := row[c]
		if ch == '-' || ch == 0 {
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}
