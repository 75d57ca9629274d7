package asmtext

import (
	"strings"
	"testing"

	"github.com/oisee/superopt64/pkg/inst"
)

func TestReadInline(t *testing.T) {
	seq, err := ReadInline("add x0, x1, x2 : mov x3, x0")
	if err != nil {
		t.Fatalf("ReadInline: %v", err)
	}
	if len(seq) != 2 || seq[0].Op != inst.Add || seq[1].Op != inst.MovReg {
		t.Errorf("ReadInline = %+v", seq)
	}
}

func TestReadSequenceSkipsCommentsAndBlanks(t *testing.T) {
	text := "# header comment\n\nadd x0, x1, x2\n; another comment\nmov x3, x0\n"
	seq, err := ReadSequence(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(seq) != 2 {
		t.Fatalf("ReadSequence got %d instructions, want 2", len(seq))
	}
}

func TestWriteSequenceRoundTripsThroughReadSequence(t *testing.T) {
	seq := []inst.Instruction{
		{Op: inst.Add, Rd: inst.X0, Rn: inst.X1, Operand: inst.Imm(5)},
		{Op: inst.MovReg, Rd: inst.X2, Rn: inst.X0},
	}
	var buf strings.Builder
	if err := WriteSequence(&buf, seq); err != nil {
		t.Fatalf("WriteSequence: %v", err)
	}
	got, err := ReadSequence(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadSequence: %v", err)
	}
	if len(got) != len(seq) || got[0] != seq[0] || got[1] != seq[1] {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, seq)
	}
}

func TestWriteInlineMatchesDisassembleSeq(t *testing.T) {
	seq := []inst.Instruction{{Op: inst.MovReg, Rd: inst.X0, Rn: inst.X1}}
	if got, want := WriteInline(seq), inst.DisassembleSeq(seq); got != want {
		t.Errorf("WriteInline = %q, want %q", got, want)
	}
}
