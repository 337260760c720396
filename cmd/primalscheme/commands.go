package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/primalscheme/primalscheme/bed"
	"github.com/primalscheme/primalscheme/config"
	"github.com/primalscheme/primalscheme/digest"
	"github.com/primalscheme/primalscheme/io/fasta"
	"github.com/primalscheme/primalscheme/matchdb"
	"github.com/primalscheme/primalscheme/msa"
	"github.com/primalscheme/primalscheme/pair"
	"github.com/primalscheme/primalscheme/panel"
	"github.com/primalscheme/primalscheme/primer"
	"github.com/primalscheme/primalscheme/remap"
	"github.com/primalscheme/primalscheme/runstate"
	"github.com/primalscheme/primalscheme/scheme"
)

// loadConfig resolves a RunConfig from an optional JSON file layered over
// config.Default(), then applies the CLI's own pool-count/high-GC
// overrides before finalizing and validating it — mirroring the spec's
// error-handling policy that configuration problems abort before any
// digestion work starts.
func loadConfig(c *cli.Context) (config.RunConfig, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		body, err := os.ReadFile(path)
		if err != nil {
			return config.RunConfig{}, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(body, &cfg); err != nil {
			return config.RunConfig{}, fmt.Errorf("parsing config: %w", err)
		}
	}
	if c.IsSet("high-gc") {
		cfg.HighGC = c.Bool("high-gc")
	}
	if c.IsSet("pools") {
		cfg.NPools = c.Int("pools")
	}
	if err := cfg.Finalize(); err != nil {
		return config.RunConfig{}, err
	}
	return cfg, nil
}

func loadMSAs(c *cli.Context, cfg config.RunConfig) ([]*msa.MSA, error) {
	paths := c.StringSlice("msa")
	if len(paths) == 0 {
		return nil, fmt.Errorf("at least one -msa input is required")
	}
	return msa.Load(paths, msa.MappingMode(cfg.Mapping))
}

// digestAndPair runs the digestion engine and pair generator for one MSA,
// the per-MSA preparation both scheme.RunMSA and panel.Solver build their
// candidate lists from.
func digestAndPair(ctx context.Context, m *msa.MSA, cfg config.RunConfig) (digest.Result, []primer.Pair, error) {
	result, err := digest.Digest(ctx, m, cfg)
	if err != nil {
		return digest.Result{}, nil, err
	}
	pairs := pair.Generate(m.Index, result.FKmers, result.RKmers, cfg)
	return result, pairs, nil
}

func writeOutputs(outdir string, cfg config.RunConfig, msas []*msa.MSA, pairs []primer.Pair) error {
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return err
	}

	primerBEDPath := filepath.Join(outdir, "primer.bed")
	ampliconBEDPath := filepath.Join(outdir, "amplicon.bed")
	referenceFASTAPath := filepath.Join(outdir, "reference.fasta")

	if err := writeFile(primerBEDPath, func(w *os.File) error { return bed.WritePrimerBED(w, pairs, msas) }); err != nil {
		return fmt.Errorf("writing primer bed: %w", err)
	}
	if err := writeFile(ampliconBEDPath, func(w *os.File) error { return bed.WriteAmpliconBED(w, pairs, msas) }); err != nil {
		return fmt.Errorf("writing amplicon bed: %w", err)
	}
	if err := writeFile(referenceFASTAPath, func(w *os.File) error { return fasta.WriteReference(w, msas) }); err != nil {
		return fmt.Errorf("writing reference fasta: %w", err)
	}
	if err := runstate.Persist(outdir, cfg, primerBEDPath, referenceFASTAPath, msas, pairs); err != nil {
		return fmt.Errorf("persisting run state: %w", err)
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func tilingCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	msas, err := loadMSAs(c, cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := matchdb.Build(msas, cfg.MismatchKmerSize)
	if err != nil {
		return fmt.Errorf("building match index: %w", err)
	}

	s := scheme.New(cfg, db)
	for _, m := range msas {
		result, pairs, err := digestAndPair(ctx, m, cfg)
		if err != nil {
			return err
		}
		outcome := scheme.RunMSA(ctx, s, m, pairs, result.FKmers, result.RKmers)
		fmt.Fprintf(c.App.Writer, "%s: %s\n", m.Name, outcome)
	}

	var placed []primer.Pair
	for _, poolPairs := range s.Pools() {
		placed = append(placed, poolPairs...)
	}
	return writeOutputs(c.String("outdir"), cfg, msas, placed)
}

func panelCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	msas, err := loadMSAs(c, cfg)
	if err != nil {
		return err
	}

	var regions []panel.Region
	if path := c.String("regions"); path != "" {
		regions, err = loadRegions(path, msas)
		if err != nil {
			return fmt.Errorf("loading regions: %w", err)
		}
	}

	ctx := context.Background()
	db, err := matchdb.Build(msas, cfg.MismatchKmerSize)
	if err != nil {
		return fmt.Errorf("building match index: %w", err)
	}

	var candidates []primer.Pair
	for _, m := range msas {
		_, pairs, err := digestAndPair(ctx, m, cfg)
		if err != nil {
			return err
		}
		candidates = append(candidates, pairs...)
	}

	s := panel.New(cfg, db, msas, regions)
	placed := s.Run(candidates, c.Int("max-amplicons"))
	for _, m := range msas {
		fmt.Fprintf(c.App.Writer, "%s: coverage %.1f%%\n", m.Name, s.Coverage(m.Index)*100)
	}

	return writeOutputs(c.String("outdir"), cfg, msas, placed)
}

// loadRegions parses a plain 3-column BED (chrom, start, end in reference
// coordinates) and translates each row into the alignment-column space of
// the matching MSA via its MappingArray, the inverse of the direction
// bed.MapInterval runs in.
func loadRegions(path string, msas []*msa.MSA) ([]panel.Region, error) {
	byName := make(map[string]*msa.MSA, len(msas))
	for _, m := range msas {
		byName[m.Name] = m
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var regions []panel.Region
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, fmt.Errorf("region bed: expected at least 3 tab-separated fields, got %d", len(fields))
		}
		m, ok := byName[fields[0]]
		if !ok {
			return nil, fmt.Errorf("region bed: chromosome %q does not match any loaded msa", fields[0])
		}
		refStart, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("region bed: invalid start %q: %w", fields[1], err)
		}
		refEnd, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, fmt.Errorf("region bed: invalid end %q: %w", fields[2], err)
		}
		colStart, colEnd := refRangeToColumns(m, refStart, refEnd)
		regions = append(regions, panel.Region{MSAIndex: m.Index, Chrom: m.Name, Start: colStart, End: colEnd})
	}
	return regions, scanner.Err()
}

func refRangeToColumns(m *msa.MSA, refStart, refEnd int) (colStart, colEnd int) {
	colStart, colEnd = m.Cols, m.Cols
	for c, refCoord := range m.MappingArray {
		if refCoord >= refStart {
			colStart = c
			break
		}
	}
	for c, refCoord := range m.MappingArray {
		if refCoord >= refEnd {
			colEnd = c
			break
		}
	}
	return colStart, colEnd
}

func validateCommand(c *cli.Context) error {
	body, err := os.ReadFile(c.String("config"))
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	cfg := config.Default()
	if err := json.Unmarshal(body, &cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if bedPath := c.String("bed"); bedPath != "" {
		f, err := os.Open(bedPath)
		if err != nil {
			return fmt.Errorf("opening bed: %w", err)
		}
		defer f.Close()
		records, err := bed.ParsePrimerBED(f)
		if err != nil {
			return fmt.Errorf("invalid primer bed: %w", err)
		}
		for _, rec := range records {
			if rec.Pool >= cfg.NPools {
				return fmt.Errorf("invalid configuration: bed record %s references pool %d but config only has %d pools", rec.Name, rec.Pool+1, cfg.NPools)
			}
		}
	}

	fmt.Fprintln(c.App.Writer, "ok")
	return nil
}

func remapCommand(c *cli.Context) error {
	mode := msa.MappingMode(c.String("mapping"))

	fromMSAs, err := msa.Load([]string{c.String("from")}, mode)
	if err != nil {
		return fmt.Errorf("loading --from alignment: %w", err)
	}
	toMSAs, err := msa.Load([]string{c.String("to")}, mode)
	if err != nil {
		return fmt.Errorf("loading --to alignment: %w", err)
	}

	f, err := os.Open(c.String("bed"))
	if err != nil {
		return fmt.Errorf("opening bed: %w", err)
	}
	records, err := bed.ParsePrimerBED(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("parsing bed: %w", err)
	}

	translated, err := remap.Translate(records, fromMSAs[0], toMSAs[0])
	if err != nil {
		return fmt.Errorf("translating: %w", err)
	}

	out, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer out.Close()
	w := bufio.NewWriter(out)
	for _, rec := range translated {
		if _, err := fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%d\t%c\t%s\n",
			rec.Chrom, rec.Start, rec.End, rec.Name, rec.Pool+1, rec.Strand, rec.Sequence); err != nil {
			return err
		}
	}
	return w.Flush()
}
