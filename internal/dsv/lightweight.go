package dsv

import (
	"math/bits"

	"github.com/succinctly/semidx/internal/bitv"
)

// lightweightRank is a cumulative-popcount-per-word index: no L1/L2
// superblock directory, just rank[w] = total 1-bits in words[0:w). Rank1
// is a single array lookup plus a partial-word popcount; Select1 binary
// searches the rank array. Cheaper to build than bitv.BitVector, slower
// at scale.
type lightweightRank struct {
	words   []uint64
	rank    []uint32 // len(words)+1; rank[0]=0
	textLen int
}

func buildLightweightRank(b *bitv.Builder, textLen int) *lightweightRank {
	frozen := b.Freeze()
	words := frozen.Words()
	rank := make([]uint32, len(words)+1)
	var cumulative uint32
	for i, w := range words {
		cumulative += uint32(bits.OnesCount64(w))
		rank[i+1] = cumulative
	}
	return &lightweightRank{words: words, rank: rank, textLen: textLen}
}

func (lr *lightweightRank) CountOnes() int {
	if len(lr.rank) == 0 {
		return 0
	}
	return int(lr.rank[len(lr.rank)-1])
}

func (lr *lightweightRank) Rank1(i int) int {
	if i <= 0 {
		return 0
	}
	if i >= lr.textLen {
		return lr.CountOnes()
	}
	wordIdx := i / 64
	bitIdx := uint(i % 64)
	cumulative := int(lr.rank[wordIdx])
	if wordIdx < len(lr.words) {
		mask := uint64(1)<<bitIdx - 1
		cumulative += bits.OnesCount64(lr.words[wordIdx] & mask)
	}
	return cumulative
}

// Select1 returns the position of the (k+1)-th 1-bit (0-indexed), or -1.
func (lr *lightweightRank) Select1(k int) int {
	total := lr.CountOnes()
	if k < 0 || k >= total {
		return -1
	}
	target := uint32(k + 1)

	// Binary search for the first word whose cumulative rank >= target.
	lo, hi := 0, len(lr.rank)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if lr.rank[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	wordIdx := lo - 1
	if wordIdx < 0 {
		wordIdx = 0
	}
	if wordIdx >= len(lr.words) {
		return -1
	}

	rankBefore := int(lr.rank[wordIdx])
	remaining := uint32(k - rankBefore)
	bitPos := selectInWord(lr.words[wordIdx], remaining)
	result := wordIdx*64 + bitPos
	if result < lr.textLen {
		return result
	}
	return -1
}

// selectInWord finds the position of the k-th (0-indexed) set bit in w via
// a trailing-zero/clear-lowest-bit loop (no byte-table lookup: this index
// trades the bitv package's LUT-accelerated select for simplicity,
// consistent with "lightweight" meaning less precomputed structure, not
// just less space).
func selectInWord(w uint64, k uint32) int {
	for {
		if w == 0 {
			return 64
		}
		t := bits.TrailingZeros64(w)
		if k == 0 {
			return t
		}
		k--
		w &= w - 1
	}
}
