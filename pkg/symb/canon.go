package symb

import "fmt"

// commutative reports whether kind's two children may be freely reordered
// without changing the term's value.
func commutative(k Kind) bool {
	switch k {
	case KAdd, KMul, KAnd, KOr, KXor, KBoolAnd, KBoolOr, KBoolEq:
		return true
	default:
		return false
	}
}

// sig computes (and memoizes) a structural signature for t, with
// commutative operands normalized into a stable order. Two terms with
// the same value-equivalent shape (up to commutative reordering and
// hash-consing) produce the same signature.
func sig(cache map[*Term]string, t *Term) string {
	if t == nil {
		return ""
	}
	if s, ok := cache[t]; ok {
		return s
	}
	var s string
	switch t.Kind {
	case KInput:
		s = fmt.Sprintf("in%d", t.Reg)
	case KConst, KBoolConst:
		s = fmt.Sprintf("c%d:%d", t.Kind, t.Const)
	default:
		kids := make([]string, t.NumKids)
		for i := 0; i < t.NumKids; i++ {
			kids[i] = sig(cache, t.Children[i])
		}
		if t.NumKids == 2 && commutative(t.Kind) && kids[0] > kids[1] {
			kids[0], kids[1] = kids[1], kids[0]
		}
		s = fmt.Sprintf("k%d(", t.Kind)
		for _, k := range kids {
			s += k + ","
		}
		s += ")"
	}
	cache[t] = s
	return s
}

// Canonicalize rewrites t into a normal form: constants folded,
// commutative operand pairs ordered canonically, and a handful of
// algebraic identities collapsed (x-x, x^x, x&x, x|x, double negation,
// Ite with identical arms). The result is built through b, so two terms
// that canonicalize to the same normal form are the same *Term pointer —
// this is the fast-path equivalence proof in package equiv: if it holds
// for every live-out register, no concrete sweep is needed.
func Canonicalize(b *Builder, t *Term) *Term {
	return canon(b, make(map[*Term]*Term), t)
}

func canon(b *Builder, memo map[*Term]*Term, t *Term) *Term {
	if t == nil {
		return nil
	}
	if c, ok := memo[t]; ok {
		return c
	}
	var result *Term
	switch t.Kind {
	case KInput, KConst, KBoolConst:
		result = t
	case KAdd, KSub, KMul, KAnd, KOr, KXor, KShl, KLshr, KAshr, KUGE, KUCarryAdd:
		x := canon(b, memo, t.Children[0])
		y := canon(b, memo, t.Children[1])
		result = canonBinary(b, t.Kind, x, y)
	case KNeg, KNot, KBit63, KIsZero:
		x := canon(b, memo, t.Children[0])
		result = canonUnary(b, t.Kind, x)
	case KSdiv, KUdiv:
		// Already guarded at construction via Ite; canonicalize children
		// of the raw node shape is not attempted further here — the
		// surrounding Ite (built by Builder.Sdiv/Udiv) is what gets
		// canonicalized by the KIte case below.
		x := canon(b, memo, t.Children[0])
		y := canon(b, memo, t.Children[1])
		result = b.bin(t.Kind, x, y)
	case KSOverflowAdd, KSOverflowSub:
		x := canon(b, memo, t.Children[0])
		y := canon(b, memo, t.Children[1])
		z := canon(b, memo, t.Children[2])
		result = b.intern(key{kind: t.Kind, kids: [3]*Term{x, y, z}, numKids: 3})
	case KIte:
		cond := canon(b, memo, t.Children[0])
		then := canon(b, memo, t.Children[1])
		els := canon(b, memo, t.Children[2])
		if then == els {
			result = then
		} else if cond.Kind == KBoolConst {
			if cond.Const == 1 {
				result = then
			} else {
				result = els
			}
		} else {
			result = b.Ite(cond, then, els)
		}
	case KBoolAnd, KBoolOr, KBoolEq:
		x := canon(b, memo, t.Children[0])
		y := canon(b, memo, t.Children[1])
		result = canonBoolBinary(b, t.Kind, x, y)
	case KBoolNot:
		x := canon(b, memo, t.Children[0])
		if x.Kind == KBoolNot {
			result = x.Children[0]
		} else {
			result = b.un(KBoolNot, x)
		}
	default:
		result = t
	}
	memo[t] = result
	return result
}

func canonBinary(b *Builder, k Kind, x, y *Term) *Term {
	if commutative(k) {
		sigCache := make(map[*Term]string)
		if sig(sigCache, x) > sig(sigCache, y) {
			x, y = y, x
		}
	}
	if x.Kind == KConst && y.Kind == KConst {
		if v, ok := foldConst(k, x.Const, y.Const); ok {
			return b.Const(v)
		}
	}
	switch k {
	case KSub, KXor:
		if x == y {
			return b.Const(0)
		}
	case KAnd, KOr:
		if x == y {
			return x
		}
	}
	return b.bin(k, x, y)
}

func canonUnary(b *Builder, k Kind, x *Term) *Term {
	if k == KNot && x.Kind == KNot {
		return x.Children[0]
	}
	if x.Kind == KConst {
		switch k {
		case KNeg:
			return b.Const(uint64(-int64(x.Const)))
		case KNot:
			return b.Const(^x.Const)
		case KBit63:
			return b.BoolConst(x.Const>>63 == 1)
		case KIsZero:
			return b.BoolConst(x.Const == 0)
		}
	}
	return b.un(k, x)
}

func canonBoolBinary(b *Builder, k Kind, x, y *Term) *Term {
	if commutative(k) {
		sigCache := make(map[*Term]string)
		if sig(sigCache, x) > sig(sigCache, y) {
			x, y = y, x
		}
	}
	if k == KBoolEq && x == y {
		return b.BoolConst(true)
	}
	return b.bin(k, x, y)
}

func foldConst(k Kind, a, b uint64) (uint64, bool) {
	switch k {
	case KAdd:
		return a + b, true
	case KSub:
		return a - b, true
	case KMul:
		return a * b, true
	case KAnd:
		return a & b, true
	case KOr:
		return a | b, true
	case KXor:
		return a ^ b, true
	case KShl:
		return a << (b % 64), true
	case KLshr:
		return a >> (b % 64), true
	case KAshr:
		return uint64(int64(a) >> (b % 64)), true
	default:
		return 0, false
	}
}
