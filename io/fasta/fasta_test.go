package fasta

import (
	"strings"
	"testing"
)

func TestBuild(t *testing.T) {
	fastas := []Fasta{
		{Name: "seq1", Sequence: "ACGT"},
		{Name: "seq2", Sequence: "TTTT"},
	}
	out, err := Build(fastas)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := ">seq1\nACGT\n>seq2\nTTTT\n"
	if string(out) != want {
		t.Fatalf("Build output = %q, want %q", out, want)
	}
}

func TestBuildEmpty(t *testing.T) {
	out, err := Build(nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output for no records, got %q", out)
	}
}

func TestBuildPreservesOrder(t *testing.T) {
	fastas := []Fasta{{Name: "b"}, {Name: "a"}, {Name: "c"}}
	out, _ := Build(fastas)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if lines[0] != ">b" || lines[2] != ">a" || lines[4] != ">c" {
		t.Fatalf("Build reordered records unexpectedly: %v", lines)
	}
}
