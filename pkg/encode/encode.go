// Package encode produces 32-bit machine words for the subset of
// instructions expressible without a full ISA manual implementation
// (SPEC_FULL.md §6), and implements the bitmask-immediate search that
// pkg/inst's Encodable predicate delegates to via
// inst.RegisterBitmaskImmediateChecker. No AArch64 assembler/disassembler
// library appears anywhere in the donor corpus, so this encoder is a
// minimal, internally consistent word format rather than a byte-exact
// reproduction of the real ISA's instruction encoding.
package encode

import (
	"errors"
	"fmt"

	"github.com/oisee/superopt64/pkg/inst"
)

// ErrUnavailable wraps every reason Word declines to produce a word.
var ErrUnavailable = errors.New("encoding unavailable")

func init() {
	inst.RegisterBitmaskImmediateChecker(func(v uint64) bool {
		_, _, _, ok := BitmaskImmediate(v)
		return ok
	})
}

// Word encodes instr into a single 32-bit machine word, or returns a
// wrapped ErrUnavailable describing why it could not. Word accepts only
// instructions that pass inst.Encodable, and additionally rejects
// immediates too wide for the minimal field widths below, so some
// instructions that inst.Encodable accepts still have no Word.
func Word(instr inst.Instruction) (uint32, error) {
	if instr.Op == inst.Nop {
		return 0, fmt.Errorf("%w: Nop has no machine encoding", ErrUnavailable)
	}
	if !inst.Encodable(instr) {
		return 0, fmt.Errorf("%w: instruction fails the encodability check", ErrUnavailable)
	}

	base := uint32(instr.Op)<<27 | uint32(instr.Rd&0x3F)<<21

	switch inst.Catalog[instr.Op].Shape {
	case inst.ShapeRdRn:
		return base | uint32(instr.Rn&0x3F), nil

	case inst.ShapeRdImm:
		v := instr.Operand.Immediate()
		if !fitsSigned(v, 21) {
			return 0, fmt.Errorf("%w: immediate %d exceeds the minimal encoder's 21-bit field", ErrUnavailable, v)
		}
		return base | encodeSigned(v, 21), nil

	case inst.ShapeRdRnOperand, inst.ShapeRnOperand:
		payload, err := encodeRnOperand(instr.Rn, instr.Operand)
		if err != nil {
			return 0, err
		}
		return base | payload, nil

	case inst.ShapeRdRnRm:
		return base | uint32(instr.Rn&0x3F)<<6 | uint32(instr.Rm&0x3F), nil

	case inst.ShapeCsel:
		return base | uint32(instr.Rn&0x3F)<<15 | uint32(instr.Rm&0x3F)<<9 | uint32(instr.Cond)<<5, nil

	default:
		return 0, fmt.Errorf("%w: unsupported shape", ErrUnavailable)
	}
}

// encodeRnOperand packs Rn and a register-or-immediate Operand into the
// 21-bit field shared by the RdRnOperand and RnOperand shapes: Rn in the
// top 6 bits, a flag bit, then 14 bits of register-or-signed-immediate.
func encodeRnOperand(rn inst.Register, operand inst.Operand) (uint32, error) {
	payload := uint32(rn&0x3F) << 15
	if operand.IsImmediate() {
		v := operand.Immediate()
		if !fitsSigned(v, 14) {
			return 0, fmt.Errorf("%w: immediate %d exceeds the minimal encoder's 14-bit operand field", ErrUnavailable, v)
		}
		payload |= 1 << 14
		payload |= encodeSigned(v, 14)
	} else {
		payload |= uint32(operand.Register() & 0x3F)
	}
	return payload, nil
}

func fitsSigned(v int64, bitWidth int) bool {
	lo := -(int64(1) << uint(bitWidth-1))
	hi := int64(1)<<uint(bitWidth-1) - 1
	return v >= lo && v <= hi
}

func encodeSigned(v int64, bitWidth int) uint32 {
	m := uint32(1)<<uint(bitWidth) - 1
	return uint32(v) & m
}
