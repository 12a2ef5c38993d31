package bitv

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankMatchesNaiveCumulative(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	b := NewBuilder(0)
	const n = 5000
	naive := make([]int, n+1)
	for i := 0; i < n; i++ {
		bit := r.Intn(3) == 0
		b.Push(bit)
		naive[i+1] = naive[i]
		if bit {
			naive[i+1]++
		}
	}
	bv := b.Freeze()
	require.Equal(t, n, bv.Len())
	for i := 0; i <= n; i++ {
		require.Equal(t, naive[i], bv.Rank1(i), "rank1(%d)", i)
	}
}

func TestRankSelectDuality(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	b := NewBuilder(0)
	const n = 20000
	for i := 0; i < n; i++ {
		b.Push(r.Intn(4) == 0)
	}
	bv := b.Freeze()
	for k := 0; k < bv.CountOnes(); k++ {
		pos := bv.Select1(k)
		require.GreaterOrEqual(t, pos, 0)
		require.True(t, bv.Get(pos), "bit at select1(%d)=%d must be 1", k, pos)
		require.Equal(t, k, bv.Rank1(pos), "rank1(select1(%d)) must equal %d", k, k)
	}
}

func TestRankMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(99))
	b := NewBuilder(0)
	for i := 0; i < 3000; i++ {
		b.Push(r.Intn(2) == 0)
	}
	bv := b.Freeze()
	prev := 0
	for i := 0; i <= bv.Len(); i++ {
		cur := bv.Rank1(i)
		require.GreaterOrEqual(t, cur, prev)
		require.LessOrEqual(t, cur-prev, 1)
		prev = cur
	}
}

func TestSelectOutOfRange(t *testing.T) {
	b := NewBuilder(0)
	b.Push(true)
	b.Push(false)
	bv := b.Freeze()
	require.Equal(t, -1, bv.Select1(1))
	require.Equal(t, -1, bv.Select1(-1))
}

func TestEmptyBitVector(t *testing.T) {
	bv := NewBuilder(0).Freeze()
	require.Equal(t, 0, bv.Len())
	require.Equal(t, 0, bv.CountOnes())
	require.Equal(t, 0, bv.Rank1(0))
	require.Equal(t, -1, bv.Select1(0))
}

func TestSelectInByteTable(t *testing.T) {
	for b := 0; b < 256; b++ {
		pop := 0
		for pos := 0; pos < 8; pos++ {
			if (b>>uint(pos))&1 == 1 {
				pop++
			}
		}
		for k := uint32(0); k < 8; k++ {
			pos := selectInByte(byte(b), k)
			if int(k) < pop {
				require.Equal(t, uint32(1), (uint32(b)>>pos)&1)
			} else {
				require.Equal(t, uint32(8), pos)
			}
		}
	}
}

func TestSelect0(t *testing.T) {
	b := NewBuilder(0)
	bits := []bool{true, false, false, true, false, true, false, false}
	for _, v := range bits {
		b.Push(v)
	}
	bv := b.Freeze()
	// 0-bits at positions 1,2,4,6,7
	require.Equal(t, 1, bv.Select0(0))
	require.Equal(t, 2, bv.Select0(1))
	require.Equal(t, 4, bv.Select0(2))
	require.Equal(t, 6, bv.Select0(3))
	require.Equal(t, 7, bv.Select0(4))
	require.Equal(t, -1, bv.Select0(5))
}

func TestCrossSuperblockBoundary(t *testing.T) {
	// 256 words (more than one L1 superblock of 128 words) of a single
	// set bit each.
	b := NewBuilder(0)
	for w := 0; w < 256; w++ {
		b.Push(true)
		b.PushN(false, 63)
	}
	bv := b.Freeze()
	require.Equal(t, 256, bv.CountOnes())
	require.Equal(t, 128, bv.Rank1(128*64))
	require.Equal(t, 256, bv.Rank1(256*64))
	require.Equal(t, 128*64, bv.Select1(128))
}
