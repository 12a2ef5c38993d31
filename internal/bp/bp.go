// Package bp implements the balanced-parentheses specialization of the
// bit-vector layer: a bit-vector whose bits are 1=open, 0=close, with
// find_close/find_open/enclose and tree-child navigation built on top of
// a block-local, bit-at-a-time excess scan plus a pioneer-style far-match
// index for pairs whose partner crosses a block boundary.
package bp

import (
	"fmt"

	"github.com/succinctly/semidx/internal/bitv"
)

// DefaultBlockSize is the number of bits per pioneer block, overridable
// for tests that want to exercise cross-block jumps on small sequences.
const DefaultBlockSize = 256

// BP is a balanced-parentheses sequence with O(1) rank/select (inherited
// from bitv.BitVector) and find_close/find_open/enclose.
type BP struct {
	bits      *bitv.BitVector
	blockSize int

	// farMatch[i] holds the matching position for position i when that
	// match lies outside i's block, or -1 otherwise. Built once, in full,
	// at construction time by a single stack-based pass: a safe
	// superset of the classic "pioneer" subset (every cross-block pair is
	// recorded, not just the block's deepest pioneer), trading a little
	// extra space for an implementation we can reason about without
	// instrumented test runs. The in-block excess scan is still tried
	// first and handles the common (same-block) case without touching
	// this array.
	farMatch []int32

	// parentOpen[i] (only meaningful when bit i is an open) holds the
	// position of the innermost enclosing open, or -1 at the root.
	parentOpen []int32
}

// Build constructs a BP from a word slice and bit length using the
// default block size.
func Build(words []uint64, n int) *BP {
	return BuildWithBlockSize(words, n, DefaultBlockSize)
}

// BuildWithBlockSize constructs a BP with an explicit pioneer block size.
func BuildWithBlockSize(words []uint64, n int, blockSize int) *BP {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	bv := bitv.New(words, n)
	bpv := &BP{bits: bv, blockSize: blockSize}
	bpv.buildFarMatchAndParents()
	return bpv
}

// FromBuilder freezes a bitv.Builder (used by scanners that push BP bits
// incrementally) into a BP.
func FromBuilder(b *bitv.Builder, blockSize int) *BP {
	frozen := b.Freeze()
	return BuildWithBlockSize(frozen.Words(), frozen.Len(), blockSize)
}

func (bpv *BP) buildFarMatchAndParents() {
	n := bpv.bits.Len()
	bpv.farMatch = make([]int32, n)
	bpv.parentOpen = make([]int32, n)
	for i := range bpv.farMatch {
		bpv.farMatch[i] = -1
		bpv.parentOpen[i] = -1
	}

	stack := make([]int, 0, 64)
	for i := 0; i < n; i++ {
		if bpv.bits.Get(i) {
			if len(stack) > 0 {
				bpv.parentOpen[i] = int32(stack[len(stack)-1])
			}
			stack = append(stack, i)
		} else {
			if len(stack) == 0 {
				panic(fmt.Sprintf("bp: unbalanced sequence, unmatched close at %d", i))
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if open/bpv.blockSize != i/bpv.blockSize {
				bpv.farMatch[open] = int32(i)
				bpv.farMatch[i] = int32(open)
			}
		}
	}
	if len(stack) != 0 {
		panic("bp: unbalanced sequence, unmatched opens remain")
	}
}

// Len returns the number of bits in the sequence.
func (bpv *BP) Len() int { return bpv.bits.Len() }

// IsOpen reports whether the bit at position i is an open parenthesis.
func (bpv *BP) IsOpen(i int) bool { return bpv.bits.Get(i) }

// Rank1 / Select1 delegate to the underlying bit-vector.
func (bpv *BP) Rank1(i int) int    { return bpv.bits.Rank1(i) }
func (bpv *BP) Select1(k int) int  { return bpv.bits.Select1(k) }
func (bpv *BP) CountOnes() int     { return bpv.bits.CountOnes() }
func (bpv *BP) Bits() *bitv.BitVector { return bpv.bits }

// Excess returns 2*rank1(i) - i, the nesting depth at position i.
func (bpv *BP) Excess(i int) int {
	return 2*bpv.bits.Rank1(i) - i
}

// FindClose returns the smallest j > i with excess(j+1) = excess(i), given
// bit[i] = 1. Searches the local block first (bit-at-a-time excess scan);
// falls back to the precomputed far-match index for cross-block pairs.
func (bpv *BP) FindClose(i int) int {
	if !bpv.bits.Get(i) {
		panic(fmt.Sprintf("bp: FindClose(%d) called on a close paren", i))
	}
	blockEnd := (i/bpv.blockSize + 1) * bpv.blockSize
	if blockEnd > bpv.bits.Len() {
		blockEnd = bpv.bits.Len()
	}
	if j, ok := bpv.scanCloseInRange(i, blockEnd); ok {
		return j
	}
	if m := bpv.farMatch[i]; m >= 0 {
		return int(m)
	}
	panic(fmt.Sprintf("bp: FindClose(%d) has no match (malformed sequence)", i))
}

// FindOpen returns the dual of FindClose: the largest j < i with
// excess(j) = excess(i+1), given bit[i] = 0.
func (bpv *BP) FindOpen(i int) int {
	if bpv.bits.Get(i) {
		panic(fmt.Sprintf("bp: FindOpen(%d) called on an open paren", i))
	}
	blockStart := (i / bpv.blockSize) * bpv.blockSize
	if j, ok := bpv.scanOpenInRange(i, blockStart); ok {
		return j
	}
	if m := bpv.farMatch[i]; m >= 0 {
		return int(m)
	}
	panic(fmt.Sprintf("bp: FindOpen(%d) has no match (malformed sequence)", i))
}

// scanCloseInRange scans forward one bit at a time from i+1 up to (not
// including) limit, looking for the position where excess first returns
// to excess(i). It does not use a word-parallel (broadword) scan.
func (bpv *BP) scanCloseInRange(i, limit int) (int, bool) {
	target := bpv.Excess(i)
	excess := target + 1 // = Excess(i+1); bit[i] is always an open.
	for j := i + 1; j < limit; j++ {
		if bpv.bits.Get(j) {
			excess++
		} else {
			excess--
		}
		if excess == target {
			return j, true
		}
	}
	return 0, false
}

// scanOpenInRange scans backward from i-1 down to (and including) start,
// looking for the position whose excess (at the position itself, open's
// contribution included) equals excess(i+1).
func (bpv *BP) scanOpenInRange(i, start int) (int, bool) {
	target := bpv.Excess(i + 1)
	for j := i - 1; j >= start; j-- {
		if bpv.Excess(j) == target && bpv.bits.Get(j) {
			return j, true
		}
	}
	return 0, false
}

// Enclose returns the position of the opening parenthesis of the
// innermost pair enclosing the pair opened at i, or -1 at the root. i
// must be an open position.
func (bpv *BP) Enclose(i int) int {
	if !bpv.bits.Get(i) {
		panic(fmt.Sprintf("bp: Enclose(%d) called on a close paren", i))
	}
	return int(bpv.parentOpen[i])
}

// FirstChild returns the BP position of the first child of the node
// opened at p, or -1 if the node has no children.
func (bpv *BP) FirstChild(p int) int {
	if p+1 < bpv.bits.Len() && bpv.bits.Get(p+1) {
		return p + 1
	}
	return -1
}

// NextSibling returns the BP position of the sibling following the node
// opened at p, or -1 if p is the last child of its parent.
func (bpv *BP) NextSibling(p int) int {
	close := bpv.FindClose(p)
	next := close + 1
	if next < bpv.bits.Len() && bpv.bits.Get(next) {
		return next
	}
	return -1
}

// ChildCount returns the number of direct children of the node opened at
// p. Counted by sibling-chasing (O(children)), not by a raw popcount over
// BP[p+1:close(p)]: that range's popcount includes every open at every
// depth of the subtree, not just the immediate children, so it only
// coincides with child count when children are themselves childless
// (e.g. an array of scalars).
func (bpv *BP) ChildCount(p int) int {
	count := 0
	c := bpv.FirstChild(p)
	for c != -1 {
		count++
		c = bpv.NextSibling(c)
	}
	return count
}

// Children returns the BP positions of all direct children of the node
// opened at p, in order. O(children).
func (bpv *BP) Children(p int) []int {
	var out []int
	c := bpv.FirstChild(p)
	for c != -1 {
		out = append(out, c)
		c = bpv.NextSibling(c)
	}
	return out
}
