package bitv

// Builder appends bits one at a time during a single forward scan over
// source bytes, then freezes into an immutable *BitVector. This is the
// shape every format scanner uses: push IB/BP bits as it walks the byte
// stream, then hand the frozen vector to the rank/select directory.
type Builder struct {
	words []uint64
	n     int
}

// NewBuilder returns an empty Builder, optionally pre-sizing its backing
// store for an expected bit length.
func NewBuilder(expectedBits int) *Builder {
	b := &Builder{}
	if expectedBits > 0 {
		b.words = make([]uint64, 0, wordCount(expectedBits))
	}
	return b
}

// Len returns the number of bits appended so far.
func (b *Builder) Len() int { return b.n }

// Push appends a single bit.
func (b *Builder) Push(bit bool) {
	wordIdx := b.n / 64
	if wordIdx >= len(b.words) {
		b.words = append(b.words, 0)
	}
	if bit {
		b.words[wordIdx] |= uint64(1) << (uint(b.n) % 64)
	}
	b.n++
}

// PushN appends count copies of bit.
func (b *Builder) PushN(bit bool, count int) {
	for i := 0; i < count; i++ {
		b.Push(bit)
	}
}

// SetAt sets bit i (which must already exist, i.e. i < Len()) without
// moving the write cursor. Used by scanners that know a position's bit
// value only after a lookahead.
func (b *Builder) SetAt(i int, bit bool) {
	wordIdx := i / 64
	mask := uint64(1) << (uint(i) % 64)
	if bit {
		b.words[wordIdx] |= mask
	} else {
		b.words[wordIdx] &^= mask
	}
}

// Freeze finalizes the builder into a BitVector with the default select
// sample rate.
func (b *Builder) Freeze() *BitVector {
	return New(b.words, b.n)
}

// FreezeWithOptions finalizes the builder into a BitVector using a custom
// select sample rate.
func (b *Builder) FreezeWithOptions(sampleRate int) *BitVector {
	return NewWithOptions(b.words, b.n, sampleRate)
}
