package inst

// BitmaskImmediateFunc reports whether v has a valid ISA "bitmask
// immediate" encoding (a rotated repeating bit pattern — SPEC_FULL.md §9).
// The real search lives in package encode; it registers itself here via
// RegisterBitmaskImmediateChecker to avoid inst depending on encode. If no
// encoder has registered, logical immediates are conservatively rejected
// (never over-accepted), which only narrows the search space.
var BitmaskImmediateFunc func(v uint64) bool

// RegisterBitmaskImmediateChecker lets package encode supply the real
// bitmask-immediate predicate without inst importing encode.
func RegisterBitmaskImmediateChecker(f func(v uint64) bool) {
	BitmaskImmediateFunc = f
}

// Encodable reports whether instr can be emitted as a single ISA word,
// per the encodability rules in SPEC_FULL.md §4.1. Failing encodability is
// not an error: it filters candidates during search.
func Encodable(instr Instruction) bool {
	switch instr.Op {
	case Nop:
		return false
	case Lsl, Lsr, Asr:
		if instr.Operand.IsImmediate() {
			amt := instr.Operand.Immediate()
			return amt >= 0 && amt <= 63
		}
		return true
	case Add, Sub:
		if instr.Operand.IsImmediate() {
			return fitsArithImmediate(instr.Operand.Immediate())
		}
		return true
	case And, Orr, Eor:
		if instr.Operand.IsImmediate() {
			return bitmaskImmediateOK(instr.Operand.Immediate())
		}
		return true
	case Cmp, Cmn:
		if instr.Operand.IsImmediate() {
			return fitsArithImmediate(instr.Operand.Immediate())
		}
		return true
	case Tst:
		// Tst does not admit an immediate in the minimal encoder.
		return !instr.Operand.IsImmediate()
	default:
		return true
	}
}

// fitsArithImmediate reports whether v fits the 12-bit unsigned field
// (with an optional 12-bit shift, i.e. v or v>>12 fits in 12 bits and the
// low 12 bits are zero in the shifted case).
func fitsArithImmediate(v int64) bool {
	if v < 0 {
		return false
	}
	u := uint64(v)
	if u < (1 << 12) {
		return true
	}
	if u&0xFFF == 0 && (u>>12) < (1<<12) {
		return true
	}
	return false
}

func bitmaskImmediateOK(v int64) bool {
	if BitmaskImmediateFunc != nil {
		return BitmaskImmediateFunc(uint64(v))
	}
	return false
}
