package inst

import "strconv"

// CostMetric selects which per-opcode cost table a sequence is measured
// against.
type CostMetric int

const (
	InstructionCount CostMetric = iota
	Latency
	CodeSize
	CostMetricCount
)

func (m CostMetric) String() string {
	switch m {
	case InstructionCount:
		return "instruction_count"
	case Latency:
		return "latency"
	case CodeSize:
		return "code_size"
	default:
		return "unknown"
	}
}

// ParseCostMetric maps a configuration string to a CostMetric.
func ParseCostMetric(s string) (CostMetric, bool) {
	switch s {
	case "instruction_count":
		return InstructionCount, true
	case "latency":
		return Latency, true
	case "code_size":
		return CodeSize, true
	default:
		return 0, false
	}
}

// Shape classifies an opcode's operand layout, used by the enumerator and
// the symbolic synthesizer's template stage to know which slots to fill.
type Shape int

const (
	ShapeRdRn        Shape = iota // MovReg
	ShapeRdImm                    // MovImm
	ShapeRdRnOperand              // Add, Sub, And, Orr, Eor, Lsl, Lsr, Asr
	ShapeRdRnRm                   // Mul, Sdiv, Udiv
	ShapeRnOperand                // Cmp, Cmn, Tst
	ShapeCsel                     // Csel, Csinc, Csinv, Csneg
	ShapeNone                     // Nop
)

// Info carries the static per-opcode metadata the rest of the module reads.
type Info struct {
	Mnemonic string
	Shape    Shape
	ByteSize int
	Cost     [CostMetricCount]int
}

// Catalog is indexed by OpCode.
var Catalog [OpCodeCount]Info

func init() {
	reg := func(op OpCode, mnemonic string, shape Shape, latency int) {
		Catalog[op] = Info{
			Mnemonic: mnemonic,
			Shape:    shape,
			ByteSize: 4,
			Cost: [CostMetricCount]int{
				InstructionCount: 1,
				Latency:          latency,
				CodeSize:         4,
			},
		}
	}
	reg(MovReg, "mov", ShapeRdRn, 1)
	reg(MovImm, "mov", ShapeRdImm, 1)
	reg(Add, "add", ShapeRdRnOperand, 1)
	reg(Sub, "sub", ShapeRdRnOperand, 1)
	reg(Mul, "mul", ShapeRdRnRm, 4)
	reg(Sdiv, "sdiv", ShapeRdRnRm, 4)
	reg(Udiv, "udiv", ShapeRdRnRm, 4)
	reg(And, "and", ShapeRdRnOperand, 1)
	reg(Orr, "orr", ShapeRdRnOperand, 1)
	reg(Eor, "eor", ShapeRdRnOperand, 1)
	reg(Lsl, "lsl", ShapeRdRnOperand, 1)
	reg(Lsr, "lsr", ShapeRdRnOperand, 1)
	reg(Asr, "asr", ShapeRdRnOperand, 1)
	reg(Cmp, "cmp", ShapeRnOperand, 1)
	reg(Cmn, "cmn", ShapeRnOperand, 1)
	reg(Tst, "tst", ShapeRnOperand, 1)
	reg(Csel, "csel", ShapeCsel, 1)
	reg(Csinc, "csinc", ShapeCsel, 1)
	reg(Csinv, "csinv", ShapeCsel, 1)
	reg(Csneg, "csneg", ShapeCsel, 1)
	Catalog[Nop] = Info{Mnemonic: "nop", Shape: ShapeNone, ByteSize: 0, Cost: [CostMetricCount]int{}}
}

// AllOps returns the 20 real opcodes, excluding Nop.
func AllOps() []OpCode {
	ops := make([]OpCode, 0, OpCodeCount-1)
	for op := OpCode(0); op < Nop; op++ {
		ops = append(ops, op)
	}
	return ops
}

// SeqCost sums the per-instruction cost of seq under metric.
func SeqCost(seq []Instruction, metric CostMetric) int {
	total := 0
	for _, in := range seq {
		total += Catalog[in.Op].Cost[metric]
	}
	return total
}

// SeqByteSize sums the encoded byte size of seq (4 bytes per real
// instruction, 0 for Nop).
func SeqByteSize(seq []Instruction) int {
	total := 0
	for _, in := range seq {
		total += Catalog[in.Op].ByteSize
	}
	return total
}

// Disassemble renders instr in a canonical textual form.
func Disassemble(instr Instruction) string {
	info := Catalog[instr.Op]
	switch info.Shape {
	case ShapeRdRn:
		return info.Mnemonic + " " + instr.Rd.String() + ", " + instr.Rn.String()
	case ShapeRdImm:
		return info.Mnemonic + " " + instr.Rd.String() + ", " + instr.Operand.String()
	case ShapeRdRnOperand:
		return info.Mnemonic + " " + instr.Rd.String() + ", " + instr.Rn.String() + ", " + instr.Operand.String()
	case ShapeRdRnRm:
		return info.Mnemonic + " " + instr.Rd.String() + ", " + instr.Rn.String() + ", " + instr.Rm.String()
	case ShapeRnOperand:
		return info.Mnemonic + " " + instr.Rn.String() + ", " + instr.Operand.String()
	case ShapeCsel:
		return info.Mnemonic + " " + instr.Rd.String() + ", " + instr.Rn.String() + ", " + instr.Rm.String() + ", " + instr.Cond.String()
	case ShapeNone:
		return info.Mnemonic
	default:
		return "?" + strconv.Itoa(int(instr.Op))
	}
}

// DisassembleSeq renders a sequence as a ` : `-joined line.
func DisassembleSeq(seq []Instruction) string {
	s := ""
	for i, in := range seq {
		if i > 0 {
			s += " : "
		}
		s += Disassemble(in)
	}
	return s
}
