package dsv

import (
	"github.com/succinctly/semidx/internal/bitv"
	"github.com/succinctly/semidx/internal/simd"
)

// scanRangeSIMD produces the identical markers/newlines bit-vectors as
// scanRange, but computes the quote-parity mask 64 bytes at a time via
// simd.QuoteMask instead of toggling a boolean per byte. Used by Build
// when simd.Selected indicates a vectorized tier is available; scanRange
// remains the scalar reference both for architectures without it and for
// the bit-for-bit equivalence tests.
func scanRangeSIMD(src []byte, cfg Config) (markers, newlines *bitv.Builder) {
	markers = bitv.NewBuilder(len(src))
	newlines = bitv.NewBuilder(len(src))

	var pc uint8
	n := len(src)
	for off := 0; off < n; off += simd.CSVChunkBytes {
		end := off + simd.CSVChunkBytes
		if end > n {
			end = n
		}
		chunk := src[off:end]

		var qq, mk, nl uint64
		for i, b := range chunk {
			if b == cfg.Quote {
				qq |= 1 << uint(i)
			}
			if b == cfg.Delimiter {
				mk |= 1 << uint(i)
			}
			if b == cfg.Newline {
				nl |= 1 << uint(i)
			}
		}

		quoteMask, nextPc := simd.QuoteMask(qq, pc)
		pc = nextPc

		filteredMarkers := (nl | mk) & quoteMask
		filteredNewlines := nl & quoteMask

		for i := range chunk {
			markers.Push(filteredMarkers&(1<<uint(i)) != 0)
			newlines.Push(filteredNewlines&(1<<uint(i)) != 0)
		}
	}
	return markers, newlines
}
