package simd

import "math/bits"

// prefixXor computes, for every bit i of x, the XOR of bits [0,i] of x
// (inclusive), using the classic parallel-prefix doubling trick: each
// step XORs in a left-shifted copy of the accumulator, doubling the run of
// bits with a correct prefix each time. BMI2 hardware reaches the same
// answer with pdep+carry arithmetic; both compute the inclusive running
// parity of the quote-byte mask.
func prefixXor(x uint64) uint64 {
	x ^= x << 1
	x ^= x << 2
	x ^= x << 4
	x ^= x << 8
	x ^= x << 16
	x ^= x << 32
	return x
}

// QuoteMask computes, for one 64-byte chunk's quote-byte bitmask qq, the
// mask of byte positions that lie *outside* a quoted field (1=outside,
// usable as a delimiter/newline), given the quote parity carried in from
// all prior chunks (pc: 0 if chunk starts outside quotes, 1 if inside).
// It also returns the parity to carry into the next chunk.
//
// This is bit-for-bit equivalent to toggling a boolean on every quote
// byte and recording the post-toggle state at each position (dsv's
// scalar scanRange): QuoteMask(qq, pc)'s bit i equals NOT(pc XOR
// prefixXor(qq)_i), which is exactly the running "outside quotes" state
// after processing byte i when starting from pc.
func QuoteMask(qq uint64, pc uint8) (mask uint64, nextPc uint8) {
	px := prefixXor(qq)
	if pc == 1 {
		mask = px
	} else {
		mask = ^px
	}
	nextPc = pc ^ (uint8(bits.OnesCount64(qq)) & 1)
	return mask, nextPc
}
