// Package symb implements the symbolic interpreter: a small hash-consed
// term algebra that mirrors the concrete interpreter (pkg/cpu) exactly, but
// over symbolic values instead of concrete 64-bit words. It exists because
// no bit-vector SMT solver library is reachable from this module's
// dependency corpus (see DESIGN.md); the term DAG's canonical-form
// comparison is the fast-path substitute for a solver's `unsat` check, and
// package equiv falls back to concrete sweeps when canonicalization alone
// is inconclusive.
package symb

import "github.com/oisee/superopt64/pkg/inst"

// Kind identifies the shape of a Term node.
type Kind int

const (
	KInput Kind = iota // a register's initial symbolic value
	KConst             // a 64-bit constant

	KAdd
	KSub
	KMul
	KSdiv
	KUdiv
	KAnd
	KOr
	KXor
	KShl
	KLshr
	KAshr
	KNeg
	KNot
	KIte // value-typed: Ite(cond, then, else)

	// Boolean-valued (one-bit) nodes, used for flags and conditions.
	KBoolConst
	KBit63        // high bit of a value term
	KIsZero       // value term == 0
	KUCarryAdd    // unsigned carry out of a+b
	KUGE          // unsigned a >= b (Cmp's C flag)
	KSOverflowAdd // signed overflow of a+b
	KSOverflowSub // signed overflow of a-b
	KBoolAnd
	KBoolOr
	KBoolNot
	KBoolEq // equality of two boolean terms (used for N==V)
)

// Term is a node in the symbolic expression DAG. Two structurally
// identical terms built through the same Builder are the same *Term
// (hash-consed), so equivalence of canonical forms is a pointer
// comparison.
type Term struct {
	Kind     Kind
	Const    uint64
	Reg      uint8 // valid when Kind == KInput
	Children [3]*Term
	NumKids  int
}

// key is the interning key: everything that determines node identity.
type key struct {
	kind    Kind
	cst     uint64
	reg     uint8
	kids    [3]*Term
	numKids int
}

// Builder interns Term nodes so structurally identical subterms share one
// pointer. A Builder is scoped to a single equivalence-check call; it is
// not safe for concurrent use (callers hold one Builder per worker, per
// SPEC_FULL.md §5's "private solver context" rule).
type Builder struct {
	table map[key]*Term
}

// NewBuilder creates an empty, ready-to-use Builder.
func NewBuilder() *Builder {
	return &Builder{table: make(map[key]*Term)}
}

func (b *Builder) intern(k key) *Term {
	if t, ok := b.table[k]; ok {
		return t
	}
	t := &Term{Kind: k.kind, Const: k.cst, Reg: k.reg, Children: k.kids, NumKids: k.numKids}
	b.table[k] = t
	return t
}

// Input returns the symbolic constant seeding register reg.
func (b *Builder) Input(reg uint8) *Term {
	return b.intern(key{kind: KInput, reg: reg})
}

// FlagInput returns the fresh symbolic input for condition flag index i (0=N,
// 1=Z, 2=C, 3=V): the live-in flags are unconstrained at the start of a
// translated sequence, exactly like a live-in register, rather than fixed to
// false (SPEC_FULL.md §3's concrete state includes the four flags, so a
// translated window must treat them as free inputs too). Reuses the KInput
// leaf space, offset past the register id range so flag and register inputs
// never collide.
func (b *Builder) FlagInput(i uint8) *Term {
	return b.intern(key{kind: KInput, reg: uint8(inst.RegisterCount) + i})
}

// Const returns a constant term.
func (b *Builder) Const(v uint64) *Term {
	return b.intern(key{kind: KConst, cst: v})
}

func (b *Builder) bin(k Kind, x, y *Term) *Term {
	return b.intern(key{kind: k, kids: [3]*Term{x, y}, numKids: 2})
}

func (b *Builder) un(k Kind, x *Term) *Term {
	return b.intern(key{kind: k, kids: [3]*Term{x}, numKids: 1})
}

func (b *Builder) Add(x, y *Term) *Term  { return b.bin(KAdd, x, y) }
func (b *Builder) Sub(x, y *Term) *Term  { return b.bin(KSub, x, y) }
func (b *Builder) Mul(x, y *Term) *Term  { return b.bin(KMul, x, y) }
func (b *Builder) And(x, y *Term) *Term  { return b.bin(KAnd, x, y) }
func (b *Builder) Or(x, y *Term) *Term   { return b.bin(KOr, x, y) }
func (b *Builder) Xor(x, y *Term) *Term  { return b.bin(KXor, x, y) }
func (b *Builder) Shl(x, y *Term) *Term  { return b.bin(KShl, x, y) }
func (b *Builder) Lshr(x, y *Term) *Term { return b.bin(KLshr, x, y) }
func (b *Builder) Ashr(x, y *Term) *Term { return b.bin(KAshr, x, y) }
func (b *Builder) Neg(x *Term) *Term     { return b.un(KNeg, x) }
func (b *Builder) Not(x *Term) *Term     { return b.un(KNot, x) }

// Sdiv builds a division term that is structurally guarded (at
// construction time, not at the call site) to the ISA-defined edge cases:
// division by zero yields 0; MIN/-1 yields MIN (SPEC_FULL.md §9).
func (b *Builder) Sdiv(x, y *Term) *Term {
	raw := b.bin(KSdiv, x, y)
	isZero := b.un(KIsZero, y)
	minC := b.Const(1 << 63)
	negOne := b.Const(^uint64(0))
	isMinOverNegOne := b.BoolAnd(b.BoolEqTerm(x, minC), b.BoolEqTerm(y, negOne))
	guarded := b.Ite(isMinOverNegOne, minC, raw)
	return b.Ite(isZero, b.Const(0), guarded)
}

// Udiv builds a division term guarded so that division by zero yields 0.
func (b *Builder) Udiv(x, y *Term) *Term {
	raw := b.bin(KUdiv, x, y)
	isZero := b.un(KIsZero, y)
	return b.Ite(isZero, b.Const(0), raw)
}

// BoolEqTerm returns a boolean term for value-term equality, built from
// IsZero(Xor(x,y)) so it reuses the same node kinds rather than adding a
// new value-equality kind.
func (b *Builder) BoolEqTerm(x, y *Term) *Term {
	return b.un(KIsZero, b.Xor(x, y))
}

// Ite builds a value-typed if-then-else over a boolean condition term.
func (b *Builder) Ite(cond, then, els *Term) *Term {
	return b.intern(key{kind: KIte, kids: [3]*Term{cond, then, els}, numKids: 3})
}

func (b *Builder) BoolConst(v bool) *Term {
	c := uint64(0)
	if v {
		c = 1
	}
	return b.intern(key{kind: KBoolConst, cst: c})
}

func (b *Builder) Bit63(x *Term) *Term     { return b.un(KBit63, x) }
func (b *Builder) IsZero(x *Term) *Term    { return b.un(KIsZero, x) }
func (b *Builder) UCarryAdd(x, y *Term) *Term { return b.bin(KUCarryAdd, x, y) }
func (b *Builder) UGE(x, y *Term) *Term    { return b.bin(KUGE, x, y) }

// SOverflowAdd/SOverflowSub also take the result term, since the standard
// bit-vector formulas reference the operands and the result together.
func (b *Builder) SOverflowAdd(x, y, result *Term) *Term {
	return b.intern(key{kind: KSOverflowAdd, kids: [3]*Term{x, y, result}, numKids: 3})
}
func (b *Builder) SOverflowSub(x, y, result *Term) *Term {
	return b.intern(key{kind: KSOverflowSub, kids: [3]*Term{x, y, result}, numKids: 3})
}

func (b *Builder) BoolAnd(x, y *Term) *Term { return b.bin(KBoolAnd, x, y) }
func (b *Builder) BoolOr(x, y *Term) *Term  { return b.bin(KBoolOr, x, y) }
func (b *Builder) BoolNot(x *Term) *Term    { return b.un(KBoolNot, x) }
func (b *Builder) BoolEq(x, y *Term) *Term  { return b.bin(KBoolEq, x, y) }
