package encode

import "testing"

func TestBitmaskImmediateRejectsZeroAndAllOnes(t *testing.T) {
	if _, _, _, ok := BitmaskImmediate(0); ok {
		t.Error("BitmaskImmediate(0) = ok, want false")
	}
	if _, _, _, ok := BitmaskImmediate(^uint64(0)); ok {
		t.Error("BitmaskImmediate(all-ones) = ok, want false")
	}
}

func TestBitmaskImmediateAcceptsRepeatingPattern(t *testing.T) {
	// 0x0101010101010101: one bit set per byte, period 8.
	v := uint64(0x0101010101010101)
	_, _, _, ok := BitmaskImmediate(v)
	if !ok {
		t.Errorf("BitmaskImmediate(%#x) = not ok, want a valid encoding", v)
	}
}

func TestBitmaskImmediateAcceptsContiguousRun(t *testing.T) {
	// 0x00000000000000FF: a single contiguous run of 8 ones, period 64.
	_, _, _, ok := BitmaskImmediate(0xFF)
	if !ok {
		t.Error("BitmaskImmediate(0xFF) = not ok, want a valid encoding")
	}
}

func TestBitmaskImmediateRejectsNonPeriodicValue(t *testing.T) {
	_, _, _, ok := BitmaskImmediate(0x123456789ABCDEF0)
	if ok {
		t.Error("BitmaskImmediate(non-periodic) = ok, want false")
	}
}

func TestContiguousLowOnes(t *testing.T) {
	cases := []struct {
		x    uint64
		size int
		want bool
	}{
		{0b0111, 4, true},
		{0b0000, 4, false},
		{0b1111, 4, false},
		{0b0101, 4, false},
	}
	for _, c := range cases {
		if got := contiguousLowOnes(c.x, c.size); got != c.want {
			t.Errorf("contiguousLowOnes(%#b, %d) = %v, want %v", c.x, c.size, got, c.want)
		}
	}
}
