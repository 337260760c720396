/*
Package matchdb implements the persistent k-mer match index used to detect
spurious cross-products (mispriming) between primers placed in the same
pool. It is built once from every input MSA and is read-only thereafter.

Keys are canonical forward-strand k-mer strings rather than the 2-bit packed
codes unikmer uses internally (github.com/shenwei356/unikmer), because the
fuzzy lookup in Find needs to enumerate single-substitution neighbors of an
arbitrary query string; packing would only pay for itself at k > 32 or at
index sizes this index does not need to reach. Windows are stored as
they appear on the forward strand, with no 2-bit encoding.

For very large entry counts the index can be snapshotted to disk and
reopened with a memory-mapped reader (github.com/edsrzf/mmap-go, the same
library unikmer's sibling search tool uses for multi-gigabyte k-mer
databases) instead of re-streaming every input FASTA on every run.
*/
package matchdb

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
	"lukechampine.com/blake3"

	"github.com/primalscheme/primalscheme/alphabet"
	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
)

// Strand is the orientation a match was observed on.
type Strand byte

const (
	Plus  Strand = '+'
	Minus Strand = '-'
)

// Match is one stored (or queried) occurrence of a k-mer.
type Match struct {
	MSAIndex int
	Position int
	Strand   Strand
}

// MatchDB is the read-only, once-built k-mer index over every input MSA
// row. The zero value is not usable; construct with Build or Load.
type MatchDB struct {
	k       int
	entries map[string][]Match
}

// K returns the index's k-mer length.
func (db *MatchDB) K() int { return db.k }

// Build streams every row of every MSA and inserts every valid k-length
// ungapped window as a '+' strand match. Windows containing N are dropped;
// internal gaps are removed and the window is extended rightward to
// restore length k when possible, matching the digestion engine's own
// "strip gaps, extend" convention for turning an alignment slice into a
// concrete oligo candidate.
func Build(msas []*msa.MSA, k int) (*MatchDB, error) {
	db := &MatchDB{k: k, entries: make(map[string][]Match)}
	for _, m := range msas {
		for _, row := range m.Rows {
			insertRowWindows(db, m.Index, row, k)
		}
	}
	return db, nil
}

func insertRowWindows(db *MatchDB, msaIndex int, row []byte, k int) {
	n := len(row)
	for start := 0; start < n; start++ {
		if row[start] == '-' || row[start] == 0 {
			continue
		}
		window, ok := extractWindow(row, start, k)
		if !ok {
			continue
		}
		db.insert(window, Match{MSAIndex: msaIndex, Position: start, Strand: Plus})
	}
}

// extractWindow reads forward from start, skipping internal gaps, until it
// has collected k ungapped bases or runs off the end of the row. Returns
// ok=false if the window contains N, hits a truncation sentinel, or the
// row ends before k bases are collected.
func extractWindow(row []byte, start, k int) (string, bool) {
	out := make([]byte, 0, k)
	for c := start; c < len(row) && len(out) < k; c++ {
		b := row[c]
		switch b {
		case '-':
			continue
		case 0:
			return "", false
		case 'N', 'n':
			return "", false
		default:
			out = append(out, b)
		}
	}
	if len(out) != k {
		return "", false
	}
	return string(out), true
}

func (db *MatchDB) insert(kmer string, m Match) {
	for _, existing := range db.entries[kmer] {
		if existing == m {
			return
		}
	}
	db.entries[kmer] = append(db.entries[kmer], m)
}

// Find returns every stored match for seq on '+', plus every stored match
// for its reverse complement relabeled '-'. If fuzzy, seq (and its reverse
// complement) are expanded to every single-substitution neighbor before
// lookup, per the spec's ±1 substitution fuzzy match contract.
func (db *MatchDB) Find(seq string, fuzzy bool) []Match {
	var out []Match
	out = append(out, db.lookup(seq, Plus, fuzzy)...)
	out = append(out, db.lookup(alphabet.ReverseComplement(seq), Minus, fuzzy)...)
	return out
}

func (db *MatchDB) lookup(seq string, strand Strand, fuzzy bool) []Match {
	queries := []string{seq}
	if fuzzy {
		queries = append(queries, substitutionNeighbors(seq)...)
	}
	var out []Match
	seen := make(map[Match]bool)
	for _, q := range queries {
		for _, m := range db.entries[q] {
			relabeled := Match{MSAIndex: m.MSAIndex, Position: m.Position, Strand: strand}
			if !seen[relabeled] {
				seen[relabeled] = true
				out = append(out, relabeled)
			}
		}
	}
	return out
}

func substitutionNeighbors(seq string) []string {
	bases := []byte{'A', 'C', 'G', 'T'}
	var out []string
	for i := 0; i < len(seq); i++ {
		for _, b := range bases {
			if b == seq[i] {
				continue
			}
			neighbor := []byte(seq)
			neighbor[i] = b
			out = append(out, string(neighbor))
		}
	}
	return out
}

// FindFKmer queries the 3'-end k-length suffix of each string in fk.Seqs.
// With removeExpected, the trivially expected hit at (msaIndex, fk.End-k,
// '+') is removed from the result, since every forward primer necessarily
// matches its own binding site.
func (db *MatchDB) FindFKmer(fk primer.FKmer, msaIndex int, fuzzy, removeExpected bool) []Match {
	var out []Match
	for _, s := range fk.Seqs {
		if len(s) < db.k {
			continue
		}
		suffix := s[len(s)-db.k:]
		out = append(out, db.Find(suffix, fuzzy)...)
	}
	if removeExpected {
		expected := Match{MSAIndex: msaIndex, Position: fk.End - db.k, Strand: Plus}
		out = removeMatch(out, expected)
	}
	return dedupe(out)
}

// FindRKmer queries the 5'-end k-length prefix of each string in rk.Seqs.
// With removeExpected, (msaIndex, rk.Start, '-') is removed.
func (db *MatchDB) FindRKmer(rk primer.RKmer, msaIndex int, fuzzy, removeExpected bool) []Match {
	var out []Match
	for _, s := range rk.Seqs {
		if len(s) < db.k {
			continue
		}
		prefix := s[:db.k]
		out = append(out, db.Find(prefix, fuzzy)...)
	}
	if removeExpected {
		expected := Match{MSAIndex: msaIndex, Position: rk.Start, Strand: Minus}
		out = removeMatch(out, expected)
	}
	return dedupe(out)
}

func removeMatch(matches []Match, target Match) []Match {
	out := matches[:0]
	for _, m := range matches {
		if m != target {
			out = append(out, m)
		}
	}
	return out
}

func dedupe(matches []Match) []Match {
	if len(matches) < 2 {
		return matches
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.MSAIndex != b.MSAIndex {
			return a.MSAIndex < b.MSAIndex
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Strand < b.Strand
	})
	out := matches[:1]
	for _, m := range matches[1:] {
		if m != out[len(out)-1] {
			out = append(out, m)
		}
	}
	return out
}

// --- on-disk snapshot -------------------------------------------------
//
// The on-disk format is a flat sequence of records:
//   uint16 keyLen | key bytes | uint32 matchCount | matchCount * (uint16 msaIndex, uint32 position, byte strand)
// preceded by a 4-byte magic and a uint32 k. It is written in one pass by
// Dump and read back by Load through a memory-mapped view, for reuse
// across processes without re-paying the page-in cost.

var magic = [4]byte{'P', 'M', 'D', '1'}

// checksumSize is the trailing blake3-256 digest Dump appends over the
// magic+k+records body, letting Load detect a truncated or corrupted
// snapshot before trusting any of its entries. blake3 rather than the
// crypto/md5 runstate.Manifest uses: the snapshot is an internal cache
// keyed by content identity, not an artifact compared against an external
// tool's own checksum convention, so the faster identity hash is the
// better fit here.
const checksumSize = 32

// Dump writes db to path in the flat record format described above,
// followed by a blake3-256 checksum of everything written before it.
func (db *MatchDB) Dump(path string) error {
	var body bytes.Buffer
	if _, err := body.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(&body, binary.LittleEndian, uint32(db.k)); err != nil {
		return err
	}

	keys := make([]string, 0, len(db.entries))
	for k := range db.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		matches := db.entries[key]
		if err := binary.Write(&body, binary.LittleEndian, uint16(len(key))); err != nil {
			return err
		}
		if _, err := body.WriteString(key); err != nil {
			return err
		}
		if err := binary.Write(&body, binary.LittleEndian, uint32(len(matches))); err != nil {
			return err
		}
		for _, m := range matches {
			if err := binary.Write(&body, binary.LittleEndian, uint16(m.MSAIndex)); err != nil {
				return err
			}
			if err := binary.Write(&body, binary.LittleEndian, uint32(m.Position)); err != nil {
				return err
			}
			if err := body.WriteByte(byte(m.Strand)); err != nil {
				return err
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	sum := blake3.Sum256(body.Bytes())
	if _, err := w.Write(sum[:]); err != nil {
		return err
	}
	return w.Flush()
}

// Load memory-maps path read-only and parses its records into a fresh
// MatchDB. The mapping is closed once parsing completes; callers that need
// to reopen very large snapshots repeatedly benefit from the OS page cache
// warmed by the mmap pass rather than from holding the mapping open, since
// queries here are plain map lookups.
func Load(path string) (*MatchDB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer m.Unmap()

	return parseSnapshot(m)
}

func parseSnapshot(buf []byte) (*MatchDB, error) {
	if len(buf) < 8+checksumSize || buf[0] != magic[0] || buf[1] != magic[1] || buf[2] != magic[2] || buf[3] != magic[3] {
		return nil, fmt.Errorf("matchdb: bad magic")
	}
	body := buf[:len(buf)-checksumSize]
	wantSum := buf[len(buf)-checksumSize:]
	gotSum := blake3.Sum256(body)
	if !bytes.Equal(gotSum[:], wantSum) {
		return nil, fmt.Errorf("matchdb: checksum mismatch, snapshot is corrupt or truncated")
	}

	k := int(binary.LittleEndian.Uint32(body[4:8]))
	db := &MatchDB{k: k, entries: make(map[string][]Match)}

	buf = body
	pos := 8
	for pos < len(buf) {
		if pos+2 > len(buf) {
			return nil, fmt.Errorf("matchdb: truncated key length")
		}
		keyLen := int(binary.LittleEndian.Uint16(buf[pos : pos+2]))
		pos += 2
		if pos+keyLen > len(buf) {
			return nil, fmt.Errorf("matchdb: truncated key")
		}
		key := string(buf[pos : pos+keyLen])
		pos += keyLen

		if pos+4 > len(buf) {
			return nil, fmt.Errorf("matchdb: truncated match count")
		}
		count := int(binary.LittleEndian.Uint32(buf[pos : pos+4]))
		pos += 4

		matches := make([]Match, count)
		for i := 0; i < count; i++ {
			if pos+7 > len(buf) {
				return nil, fmt.Errorf("matchdb: truncated match record")
			}
			msaIndex := int(binary.LittleEndian.Uint16(buf[pos : pos+2]))
			position := int(binary.LittleEndian.Uint32(buf[pos+2 : pos+6]))
			strand := Strand(buf[pos+6])
			pos += 7
			matches[i] = Match{MSAIndex: msaIndex, Position: position, Strand: strand}
		}
		db.entries[key] = matches
	}
	return db, nil
}
