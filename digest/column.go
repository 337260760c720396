/*
column.go aggregates the per-row walk results for a single anchor column
into the FKmer or RKmer the rest of the core consumes, applying the
min_base_freq/ignore_n frequency policy and the thermo/self-dimer gate.
*/
package digest

import (
	"sort"

	"github.com/primalscheme/primalscheme/alphabet"
	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/primer"
	"github.com/primalscheme/primalscheme/thermo"
)

// ForwardColumn digests the FKmer anchored at end (exclusive) for m. It
// returns the accepted FKmer and a report, or a nil FKmer with a non-nil
// report describing why the column was rejected.
func ForwardColumn(m *msa.MSA, end int, cfg config.RunConfig) (*primer.FKmer, ColumnReport) {
	report := ColumnReport{Column: end, RowErrors: make(map[int]ErrorKind)}

	anchorCol := m.Column(end - 1)
	for r, b := range anchorCol {
		if b == '-' {
			report.RowErrors[r] = GapOnSetBase
		}
	}

	lmin := cfg.PrimerSizeMin
	tmCfg := cfg.Thermo()
	cols := columnBases(m.Column)

	seqRows := make(map[string]map[int]bool)
	for r, row := range m.Rows {
		if _, bad := report.RowErrors[r]; bad {
			continue
		}
		start := end - lmin
		if start < 0 {
			report.RowErrors[r] = WalksOut
			continue
		}
		seed := msa.UngapSuffix(row, start, end)
		if len(seed) < lmin {
			report.RowErrors[r] = WalksOut
			continue
		}
		res := walkLeft(row, seed, start-1, cols, cfg.PrimerMaxWalk, tmCfg)
		if res.err != none {
			report.RowErrors[r] = res.err
			continue
		}
		for _, s := range res.seqs {
			if seqRows[s] == nil {
				seqRows[s] = make(map[int]bool)
			}
			seqRows[s][r] = true
		}
	}

	seqs, ok := aggregate(seqRows, report.RowErrors, len(m.Rows), cfg)
	if !ok {
		report.Accepted = false
		report.Error = resolveColumnError(report.RowErrors, cfg)
		return nil, report
	}

	if r := thermo.CheckKmers(seqs, tmCfg); r != thermo.PASS {
		report.Accepted = false
		report.Error = fromThermo(r)
		return nil, report
	}
	if thermo.DimerInteract(seqs, seqs, tmCfg.DimerScore) {
		report.Accepted = false
		report.Error = DimerFail
		return nil, report
	}

	if cfg.ReduceKmers {
		seqs = ReduceKmers(seqs)
	}

	fk := primer.NewFKmer(end, seqs)
	report.Accepted = true
	report.NumSeqs = len(fk.Seqs)
	return &fk, report
}

// ReverseColumn digests the RKmer anchored at start (inclusive) for m.
func ReverseColumn(m *msa.MSA, start int, cfg config.RunConfig) (*primer.RKmer, ColumnReport) {
	report := ColumnReport{Column: start, Reverse: true, RowErrors: make(map[int]ErrorKind)}

	anchorCol := m.Column(start)
	for r, b := range anchorCol {
		if b == '-' {
			report.RowErrors[r] = GapOnSetBase
		}
	}

	lmin := cfg.PrimerSizeMin
	tmCfg := cfg.Thermo()
	cols := columnBases(m.Column)

	seqRows := make(map[string]map[int]bool)
	for r, row := range m.Rows {
		if _, bad := report.RowErrors[r]; bad {
			continue
		}
		end := start + lmin
		if end > m.Cols {
			report.RowErrors[r] = WalksOut
			continue
		}
		seed := msa.UngapSuffix(row, start, end)
		if len(seed) < lmin {
			report.RowErrors[r] = WalksOut
			continue
		}
		res := walkRight(row, seed, end, cols, cfg.PrimerMaxWalk, tmCfg)
		if res.err != none {
			report.RowErrors[r] = res.err
			continue
		}
		for _, s := range res.seqs {
			if seqRows[s] == nil {
				seqRows[s] = make(map[int]bool)
			}
			seqRows[s][r] = true
		}
	}

	seqs, ok := aggregate(seqRows, report.RowErrors, len(m.Rows), cfg)
	if !ok {
		report.Accepted = false
		report.Error = resolveColumnError(report.RowErrors, cfg)
		return nil, report
	}

	// RKmer.Seqs are stored in primer (reverse-complement) orientation.
	// The walk checked Tm on the forward-strand template strings; the gate
	// below recomputes it on the primer-orientation strings, where the
	// terminal A/T penalty can differ, so a walked string can still fail
	// here with LowTM.
	rcSeqs := make([]string, len(seqs))
	for i, s := range seqs {
		rcSeqs[i] = alphabet.ReverseComplement(s)
	}

	if r := thermo.CheckKmers(rcSeqs, tmCfg); r != thermo.PASS {
		report.Accepted = false
		report.Error = fromThermo(r)
		return nil, report
	}
	if thermo.DimerInteract(rcSeqs, rcSeqs, tmCfg.DimerScore) {
		report.Accepted = false
		report.Error = DimerFail
		return nil, report
	}

	if cfg.ReduceKmers {
		rcSeqs = ReduceKmers(rcSeqs)
	}

	rk := primer.NewRKmer(start, rcSeqs)
	report.Accepted = true
	report.NumSeqs = len(rk.Seqs)
	return &rk, report
}

// aggregate applies the min_base_freq / ignore_n policy described in the
// spec: strict mode (min_base_freq==0) rejects the whole column if any row
// errored; permissive mode drops low-frequency strings (and, with
// ignore_n, discards invalid-base rows from the denominator first).
func aggregate(seqRows map[string]map[int]bool, rowErrors map[int]ErrorKind, totalRows int, cfg config.RunConfig) ([]string, bool) {
	if cfg.MinBaseFreq == 0 {
		if len(rowErrors) > 0 {
			return nil, false
		}
		if len(seqRows) == 0 {
			return nil, false
		}
		return sortedKeys(seqRows), true
	}

	denom := totalRows
	if cfg.IgnoreN {
		for _, e := range rowErrors {
			if e == ContainsInvalidBase {
				denom--
			}
		}
	} else if len(rowErrors) > 0 {
		// Non-N row errors still count against the denominator and can
		// still veto retained strings' share; they are never themselves
		// a candidate string, so they only dilute the total.
	}
	if denom <= 0 {
		return nil, false
	}

	var kept []string
	for s, rows := range seqRows {
		share := float64(len(rows)) / float64(denom)
		if share >= cfg.MinBaseFreq {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	sort.Strings(kept)
	return kept, true
}

func sortedKeys(seqRows map[string]map[int]bool) []string {
	out := make([]string, 0, len(seqRows))
	for s := range seqRows {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func resolveColumnError(rowErrors map[int]ErrorKind, cfg config.RunConfig) ErrorKind {
	if len(rowErrors) == 0 {
		return NoSequences
	}
	kinds := make([]ErrorKind, 0, len(rowErrors))
	for _, e := range rowErrors {
		kinds = append(kinds, e)
	}
	return mostSevere(kinds)
}
