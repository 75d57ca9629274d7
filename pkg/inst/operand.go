package inst

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// Operand is a tagged union: a register operand or an immediate operand.
// Immediates are stored as int64 to preserve the exact bit pattern supplied
// by the caller; arithmetic interprets them as two's-complement uint64.
type Operand struct {
	isImm bool
	reg   Register
	imm   int64
}

// Reg constructs a register operand.
func Reg(r Register) Operand { return Operand{reg: r} }

// Imm constructs an immediate operand.
func Imm(v int64) Operand { return Operand{isImm: true, imm: v} }

// IsImmediate reports whether the operand is an immediate.
func (o Operand) IsImmediate() bool { return o.isImm }

// Register returns the register operand's register. Only valid when
// !IsImmediate().
func (o Operand) Register() Register { return o.reg }

// Immediate returns the immediate operand's value. Only valid when
// IsImmediate().
func (o Operand) Immediate() int64 { return o.imm }

// Value resolves the operand against a register file, honoring the XZR
// invariant (reads as zero).
func (o Operand) Value(read func(Register) uint64) uint64 {
	if o.isImm {
		return uint64(o.imm)
	}
	return read(o.reg)
}

func (o Operand) String() string {
	if o.isImm {
		if o.imm < 0 {
			return "#-0x" + strconv.FormatUint(uint64(-o.imm), 16)
		}
		return "#0x" + strconv.FormatUint(uint64(o.imm), 16)
	}
	return o.reg.String()
}

// GobEncode packs the operand as a tag byte, a register byte and the
// little-endian immediate, so checkpoints can carry instructions.
func (o Operand) GobEncode() ([]byte, error) {
	b := binary.LittleEndian.AppendUint64([]byte{0, byte(o.reg)}, uint64(o.imm))
	if o.isImm {
		b[0] = 1
	}
	return b, nil
}

// GobDecode is the inverse of GobEncode.
func (o *Operand) GobDecode(b []byte) error {
	if len(b) != 10 {
		return fmt.Errorf("inst.Operand: bad gob length %d", len(b))
	}
	*o = Operand{isImm: b[0] == 1, reg: Register(b[1]), imm: int64(binary.LittleEndian.Uint64(b[2:]))}
	return nil
}
