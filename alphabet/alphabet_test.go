package alphabet_test

import (
	"testing"

	"github.com/primalscheme/primalscheme/alphabet"
)

func TestAlphabetEncode(t *testing.T) {
	a := alphabet.NewAlphabet([]string{"A", "C", "G", "T"})
	for i, symbol := range []string{"A", "C", "G", "T"} {
		code, err := a.Encode(symbol)
		if err != nil {
			t.Errorf("unexpected error encoding symbol %s: %v", symbol, err)
		}
		if int(code) != i {
			t.Errorf("incorrect encoding of symbol %s: expected %d, got %d", symbol, i, code)
		}
	}
	if _, err := a.Encode("X"); err == nil {
		t.Error("expected error for encoding symbol not in alphabet, but got nil")
	}
}

func TestAlphabetCheck(t *testing.T) {
	a := alphabet.NewAlphabet([]string{"A", "C", "G", "T"})
	if pos := a.Check("ACGT"); pos != -1 {
		t.Errorf("Check(\"ACGT\") = %d, want -1", pos)
	}
	if pos := a.Check("ACXT"); pos != 2 {
		t.Errorf("Check(\"ACXT\") = %d, want 2", pos)
	}
}
