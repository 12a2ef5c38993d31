package jsonidx

import (
	"github.com/succinctly/semidx/internal/bitv"
	"github.com/succinctly/semidx/internal/simd"
)

// byteTransition converts one row of transitionTable into a 4-state
// simd.Transition map.
func byteTransition(b byte) simd.Transition {
	var t simd.Transition
	for s := state(0); s < numStates; s++ {
		t[s] = uint8(transitionTable[b][s])
	}
	return t
}

// scanChunked decouples state resolution from emission: each
// simd.JSONChunkBytes-wide chunk's composite transition is computed
// independently of every other chunk (the embarrassingly-parallel step a
// vpshufb reduction tree performs in hardware), then a single cheap pass
// over the (much smaller) sequence of per-chunk composites resolves each
// chunk's actual starting state, after which phi/IB/BP emission for each
// chunk only needs its own resolved start state. Emission itself stays
// sequential (there is no Go intrinsic for emitting 16 lanes' IB bits at
// once), but the byte-for-byte output is identical to scanScalar
// (TestScanChunkedMatchesScalar).
func scanChunked(src []byte) scanResult {
	n := len(src)
	numChunks := (n + simd.JSONChunkBytes - 1) / simd.JSONChunkBytes
	composites := make([]simd.Transition, numChunks)
	for c := 0; c < numChunks; c++ {
		start := c * simd.JSONChunkBytes
		end := start + simd.JSONChunkBytes
		if end > n {
			end = n
		}
		trans := make([]simd.Transition, 0, simd.JSONChunkBytes)
		for _, b := range src[start:end] {
			trans = append(trans, byteTransition(b))
		}
		composites[c] = simd.ComposeChunk(trans)
	}

	chunkStart := make([]state, numChunks)
	st := stateTop
	for c := 0; c < numChunks; c++ {
		chunkStart[c] = st
		st = state(composites[c].Apply(uint8(st)))
	}

	res := scanResult{
		ib:        bitv.NewBuilder(n),
		bpBuilder: bitv.NewBuilder(n / 2),
	}
	for c := 0; c < numChunks; c++ {
		start := c * simd.JSONChunkBytes
		end := start + simd.JSONChunkBytes
		if end > n {
			end = n
		}
		cst := chunkStart[c]
		for i := start; i < end; i++ {
			b := src[i]
			p := phiTable[b][cst]
			next := transitionTable[b][cst]

			res.ib.Push(p.ib)
			if p.bpClose {
				res.pushEvent(false, i, kindNone)
			}
			if p.bpOpen {
				res.pushEvent(true, i, p.kind)
			}
			if p.bpClose2 {
				res.pushEvent(false, i, kindNone)
			}
			cst = next
		}
	}

	if st == stateInValue {
		res.pushEvent(false, n, kindNone)
	}

	return res
}
