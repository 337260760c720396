package config_test

import (
	"testing"

	"github.com/primalscheme/primalscheme/config"
)

func TestDefaultValidates(t *testing.T) {
	c := config.Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidateRejectsBadAmpliconRange(t *testing.T) {
	c := config.Default()
	c.AmpliconSizeMin = 500
	c.AmpliconSizeMax = 400
	if err := c.Validate(); err == nil {
		t.Error("expected error for inverted amplicon size range")
	}
}

func TestValidateRejectsZeroPools(t *testing.T) {
	c := config.Default()
	c.NPools = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for n_pools = 0")
	}
}

func TestValidateRejectsUnknownMapping(t *testing.T) {
	c := config.Default()
	c.Mapping = "nonsense"
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown mapping mode")
	}
}

func TestFinalizeDefaultsMismatchKmerSize(t *testing.T) {
	c := config.Default()
	if err := c.Finalize(); err != nil {
		t.Fatal(err)
	}
	if c.MismatchKmerSize != c.PrimerSizeMin {
		t.Errorf("MismatchKmerSize = %d, want %d", c.MismatchKmerSize, c.PrimerSizeMin)
	}
}

func TestFinalizeHighGCOverridesDefaults(t *testing.T) {
	c := config.Default()
	c.HighGC = true
	if err := c.Finalize(); err != nil {
		t.Fatal(err)
	}
	if c.PrimerGCMax <= 0.55 {
		t.Errorf("expected widened GC max under high_gc, got %f", c.PrimerGCMax)
	}
}
