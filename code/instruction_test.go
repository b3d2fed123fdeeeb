package code_test

import (
	"testing"

	"github.com/pl0lang/pl0c/code"
)

func TestEmitAndPatch(t *testing.T) {
	s := code.NewStream()
	jmpIdx := s.Emit(code.JMP, 0, 0, 0)
	s.Emit(code.LIT, 0, 0, 7)
	target := s.Here()
	s.Patch(jmpIdx, target)

	if s.At(jmpIdx).M != target {
		t.Fatalf("got M=%d, want %d", s.At(jmpIdx).M, target)
	}
	if s.Len() != 2 {
		t.Fatalf("got %d instructions, want 2", s.Len())
	}
}

func TestHereTracksNextEmitIndex(t *testing.T) {
	s := code.NewStream()
	if s.Here() != 0 {
		t.Fatalf("empty stream Here() = %d, want 0", s.Here())
	}
	s.Emit(code.INC, 0, 0, 4)
	if s.Here() != 1 {
		t.Fatalf("Here() = %d, want 1", s.Here())
	}
}

func TestOprNameFlattensSubcodes(t *testing.T) {
	cases := map[int]string{
		int(code.OPRAdd): "ADD",
		int(code.OPRGtr): "GTR",
		int(code.OPROdd): "ODD",
	}
	for subcode, want := range cases {
		if got := code.OprName(subcode); got != want {
			t.Errorf("OprName(%d) = %q, want %q", subcode, got, want)
		}
	}
}
