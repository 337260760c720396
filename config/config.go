/*
Package config defines the immutable run configuration carried into every
call across the core, mirroring the design note that no global mutable
state is required: a RunConfig value is constructed once by the CLI layer
and threaded explicitly from there on.

Validation follows the error-handling policy in the spec: configuration
errors abort the run with a one-line diagnostic before any digestion work
starts, rather than surfacing as a deep, confusing failure partway through
a long run.
*/
package config

import (
	"fmt"

	"github.com/primalscheme/primalscheme/thermo"
)

// MappingMode mirrors msa.MappingMode without importing it, so config
// depends on thermo only and other packages can depend on it freely.
type MappingMode string

const (
	MappingFirst      MappingMode = "first"
	MappingConsensus  MappingMode = "consensus"
)

// RunConfig captures every option named in the spec's configuration
// surface (§6).
type RunConfig struct {
	NPools     int
	MinOverlap int

	AmpliconSizeMin int
	AmpliconSizeMax int

	PrimerSizeMin int
	PrimerSizeMax int

	PrimerTmMin float64
	PrimerTmMax float64
	PrimerGCMin float64
	PrimerGCMax float64

	PrimerHomopolymerMax int
	PrimerHairpinTmMax   float64
	PrimerMaxWalk        int

	DimerScore float64

	MvConc   float64
	DvConc   float64
	DNTPConc float64
	DNAConc  float64

	MismatchKmerSize    int
	MismatchFuzzy       bool
	MismatchProductSize int

	Mapping     MappingMode
	Circular    bool
	Backtrack   bool
	IgnoreN     bool
	MinBaseFreq float64
	HighGC      bool

	ReduceKmers bool

	MaxAmplicons int // panel mode only; 0 means unbounded
}

// Default returns the baseline configuration used by the reference tiling
// scheme this design is built from: ARTIC-style 400bp amplicons, two
// pools, 10bp minimum overlap.
func Default() RunConfig {
	return RunConfig{
		NPools:     2,
		MinOverlap: 10,

		AmpliconSizeMin: 380,
		AmpliconSizeMax: 420,

		PrimerSizeMin: 19,
		PrimerSizeMax: 34,

		PrimerTmMin: 59.5,
		PrimerTmMax: 62.5,
		PrimerGCMin: 0.3,
		PrimerGCMax: 0.55,

		PrimerHomopolymerMax: 5,
		PrimerHairpinTmMax:   50,
		PrimerMaxWalk:        80,

		DimerScore: -26,

		MvConc:   100e-3,
		DvConc:   2e-3,
		DNTPConc: 0.8e-3,
		DNAConc:  15e-9,

		MismatchFuzzy:       false,
		MismatchProductSize: 500,

		Mapping:     MappingFirst,
		Circular:    false,
		Backtrack:   true,
		IgnoreN:     false,
		MinBaseFreq: 0,
	}
}

// applyHighGC is applied by Finalize when HighGC is requested, shifting
// the GC window up to 0.4-0.65 and setting the amplicon size range to
// 300-400 the way GC-rich genomes (e.g. some bacterial targets) need. It
// overwrites these four fields whatever values they held.
func (c *RunConfig) applyHighGC() {
	c.PrimerGCMin = 0.4
	c.PrimerGCMax = 0.65
	c.AmpliconSizeMin = 300
	c.AmpliconSizeMax = 400
}

// Finalize resolves derived fields (MismatchKmerSize defaults to
// PrimerSizeMin, HighGC swaps defaults in) and validates the result.
func (c *RunConfig) Finalize() error {
	if c.HighGC {
		c.applyHighGC()
	}
	if c.MismatchKmerSize == 0 {
		c.MismatchKmerSize = c.PrimerSizeMin
	}
	return c.Validate()
}

// Validate checks the invariants the spec requires to abort a run before
// any work starts: amplicon size ordering, pool count, and a well-formed
// mapping mode.
func (c RunConfig) Validate() error {
	if c.NPools < 1 {
		return fmt.Errorf("config: n_pools must be >= 1, got %d", c.NPools)
	}
	if c.MinOverlap < 0 {
		return fmt.Errorf("config: min_overlap must be >= 0, got %d", c.MinOverlap)
	}
	if c.AmpliconSizeMin <= 0 || c.AmpliconSizeMax <= 0 || c.AmpliconSizeMin > c.AmpliconSizeMax {
		return fmt.Errorf("config: invalid amplicon size range [%d, %d]", c.AmpliconSizeMin, c.AmpliconSizeMax)
	}
	if c.PrimerSizeMin <= 0 || c.PrimerSizeMax < c.PrimerSizeMin {
		return fmt.Errorf("config: invalid primer size range [%d, %d]", c.PrimerSizeMin, c.PrimerSizeMax)
	}
	if c.PrimerMaxWalk <= 0 {
		return fmt.Errorf("config: primer_max_walk must be > 0, got %d", c.PrimerMaxWalk)
	}
	if c.MinBaseFreq < 0 || c.MinBaseFreq > 1 {
		return fmt.Errorf("config: min_base_freq must be in [0,1], got %f", c.MinBaseFreq)
	}
	switch c.Mapping {
	case MappingFirst, MappingConsensus, "":
	default:
		return fmt.Errorf("config: unknown mapping mode %q", c.Mapping)
	}
	return nil
}

// Thermo projects the primer-relevant fields of RunConfig into a
// thermo.Config, the boundary between the ambient configuration layer and
// the core thermodynamic oracle.
func (c RunConfig) Thermo() thermo.Config {
	return thermo.Config{
		MvConc:         c.MvConc,
		DvConc:         c.DvConc,
		DNTPConc:       c.DNTPConc,
		DNAConc:        c.DNAConc,
		PrimerTmMin:    c.PrimerTmMin,
		PrimerTmMax:    c.PrimerTmMax,
		PrimerGCMin:    c.PrimerGCMin,
		PrimerGCMax:    c.PrimerGCMax,
		HomopolymerMax: c.PrimerHomopolymerMax,
		HairpinTmMax:   c.PrimerHairpinTmMax,
		DimerScore:     c.DimerScore,
	}
}
