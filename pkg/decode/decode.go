// Package decode converts textual instructions into inst.Instruction
// values, generalized from the donor CLI's parseSingleInstruction /
// parseImmediate (cmd/z80opt/main.go). Unlike the donor's single-pattern
// match (Z80 mnemonics encode their own operand shape, e.g. "LD A,n"), this
// ISA reuses mnemonics across shapes (MovReg/MovImm both print "mov"), so
// decoding tries every opcode sharing the mnemonic until one matches the
// supplied operand count and kinds.
package decode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oisee/superopt64/pkg/inst"
)

// Decode parses a single instruction, e.g. "add x0, x1, #5" or
// "csel x2, x0, x1, eq".
func Decode(text string) (inst.Instruction, error) {
	text = strings.TrimSpace(text)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return inst.Instruction{}, fmt.Errorf("empty instruction")
	}
	mnemonic := strings.ToLower(fields[0])
	if mnemonic == "nop" {
		return inst.Instruction{Op: inst.Nop}, nil
	}

	rest := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
	var operands []string
	if rest != "" {
		for _, p := range strings.Split(rest, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				operands = append(operands, p)
			}
		}
	}

	var lastErr error
	for _, op := range candidatesForMnemonic(mnemonic) {
		instr, err := decodeWithShape(op, operands)
		if err == nil {
			return instr, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	return inst.Instruction{}, fmt.Errorf("cannot decode %q: %w", text, lastErr)
}

func candidatesForMnemonic(mnemonic string) []inst.OpCode {
	var out []inst.OpCode
	for _, op := range inst.AllOps() {
		if inst.Catalog[op].Mnemonic == mnemonic {
			out = append(out, op)
		}
	}
	return out
}

func decodeWithShape(op inst.OpCode, ops []string) (inst.Instruction, error) {
	shape := inst.Catalog[op].Shape
	need := func(n int) error {
		if len(ops) != n {
			return fmt.Errorf("%s expects %d operands, got %d", inst.Catalog[op].Mnemonic, n, len(ops))
		}
		return nil
	}

	switch shape {
	case inst.ShapeRdRn:
		if err := need(2); err != nil {
			return inst.Instruction{}, err
		}
		rd, rn, err := parseTwoRegs(ops)
		if err != nil {
			return inst.Instruction{}, err
		}
		return inst.Instruction{Op: op, Rd: rd, Rn: rn}, nil

	case inst.ShapeRdImm:
		if err := need(2); err != nil {
			return inst.Instruction{}, err
		}
		rd, ok := inst.ParseRegister(ops[0])
		if !ok {
			return inst.Instruction{}, fmt.Errorf("bad register %q", ops[0])
		}
		v, err := parseImmediate(ops[1])
		if err != nil {
			return inst.Instruction{}, err
		}
		return inst.Instruction{Op: op, Rd: rd, Operand: inst.Imm(v)}, nil

	case inst.ShapeRdRnOperand:
		if err := need(3); err != nil {
			return inst.Instruction{}, err
		}
		rd, ok := inst.ParseRegister(ops[0])
		if !ok {
			return inst.Instruction{}, fmt.Errorf("bad register %q", ops[0])
		}
		rn, ok := inst.ParseRegister(ops[1])
		if !ok {
			return inst.Instruction{}, fmt.Errorf("bad register %q", ops[1])
		}
		operand, err := parseOperand(ops[2])
		if err != nil {
			return inst.Instruction{}, err
		}
		return inst.Instruction{Op: op, Rd: rd, Rn: rn, Operand: operand}, nil

	case inst.ShapeRdRnRm:
		if err := need(3); err != nil {
			return inst.Instruction{}, err
		}
		rd, ok1 := inst.ParseRegister(ops[0])
		rn, ok2 := inst.ParseRegister(ops[1])
		rm, ok3 := inst.ParseRegister(ops[2])
		if !ok1 || !ok2 || !ok3 {
			return inst.Instruction{}, fmt.Errorf("bad register in %v", ops)
		}
		return inst.Instruction{Op: op, Rd: rd, Rn: rn, Rm: rm}, nil

	case inst.ShapeRnOperand:
		if err := need(2); err != nil {
			return inst.Instruction{}, err
		}
		rn, ok := inst.ParseRegister(ops[0])
		if !ok {
			return inst.Instruction{}, fmt.Errorf("bad register %q", ops[0])
		}
		operand, err := parseOperand(ops[1])
		if err != nil {
			return inst.Instruction{}, err
		}
		return inst.Instruction{Op: op, Rn: rn, Operand: operand}, nil

	case inst.ShapeCsel:
		if err := need(4); err != nil {
			return inst.Instruction{}, err
		}
		rd, ok1 := inst.ParseRegister(ops[0])
		rn, ok2 := inst.ParseRegister(ops[1])
		rm, ok3 := inst.ParseRegister(ops[2])
		if !ok1 || !ok2 || !ok3 {
			return inst.Instruction{}, fmt.Errorf("bad register in %v", ops)
		}
		cond, ok := inst.ParseCondition(ops[3])
		if !ok {
			return inst.Instruction{}, fmt.Errorf("bad condition %q", ops[3])
		}
		return inst.Instruction{Op: op, Rd: rd, Rn: rn, Rm: rm, Cond: cond}, nil

	default:
		return inst.Instruction{}, fmt.Errorf("unsupported shape for %s", inst.Catalog[op].Mnemonic)
	}
}

func parseTwoRegs(ops []string) (inst.Register, inst.Register, error) {
	a, ok1 := inst.ParseRegister(ops[0])
	b, ok2 := inst.ParseRegister(ops[1])
	if !ok1 || !ok2 {
		return 0, 0, fmt.Errorf("bad register in %v", ops)
	}
	return a, b, nil
}

// parseOperand parses either a register or an immediate (reg|imm).
func parseOperand(tok string) (inst.Operand, error) {
	if strings.HasPrefix(tok, "#") {
		v, err := parseImmediate(tok)
		if err != nil {
			return inst.Operand{}, err
		}
		return inst.Imm(v), nil
	}
	if r, ok := inst.ParseRegister(tok); ok {
		return inst.Reg(r), nil
	}
	v, err := parseImmediate(tok)
	if err != nil {
		return inst.Operand{}, fmt.Errorf("bad operand %q", tok)
	}
	return inst.Imm(v), nil
}

// parseImmediate accepts "#123", "#0x7B", "-5", or "0x7B".
func parseImmediate(tok string) (int64, error) {
	tok = strings.TrimPrefix(tok, "#")
	neg := false
	if strings.HasPrefix(tok, "-") {
		neg = true
		tok = tok[1:]
	}
	var v int64
	var err error
	if strings.HasPrefix(strings.ToLower(tok), "0x") {
		u, perr := strconv.ParseUint(tok[2:], 16, 64)
		v, err = int64(u), perr
	} else {
		v, err = strconv.ParseInt(tok, 10, 64)
	}
	if err != nil {
		return 0, fmt.Errorf("bad immediate %q: %w", tok, err)
	}
	if neg {
		v = -v
	}
	return v, nil
}
