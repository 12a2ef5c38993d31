package jsonidx

import (
	"github.com/succinctly/semidx/internal/bitv"
	"github.com/succinctly/semidx/internal/bp"
	"github.com/succinctly/semidx/internal/simd"
)

// scanResult holds the raw artifacts produced by a single pass over the
// source bytes, before BP's pioneer-excess index is frozen.
type scanResult struct {
	ib        *bitv.Builder
	bpBuilder *bitv.Builder
	offsets   []int32 // per BP position: source byte offset of the event
	kinds     []nodeKind
}

// pushEvent appends one BP bit (open or close) plus its source offset and
// (for opens) node kind, keeping all three slices position-aligned.
func (r *scanResult) pushEvent(bit bool, offset int, kind nodeKind) {
	r.bpBuilder.Push(bit)
	r.offsets = append(r.offsets, int32(offset))
	r.kinds = append(r.kinds, kind)
}

// scanScalar performs the byte-streaming table-driven scan: sequentially,
// phi = phiTable[byte][state]; state = transitionTable[byte][state]; emit
// IB/BP bits. The per-byte work is two array lookups plus a handful of
// conditional pushes.
func scanScalar(src []byte) scanResult {
	res := scanResult{
		ib:        bitv.NewBuilder(len(src)),
		bpBuilder: bitv.NewBuilder(len(src) / 2),
	}

	st := stateTop
	for i, b := range src {
		p := phiTable[b][st]
		next := transitionTable[b][st]

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

		st = next
	}

	// EOF while still inside an unterminated value run: close it so BP
	// stays balanced. There is no terminating byte to attribute the close
	// to, so it is pinned to len(src) (one past the last value byte,
	// matching the exclusive-end convention RawBytes uses for number/
	// bool/null nodes).
	if st == stateInValue {
		res.pushEvent(false, len(src), kindNone)
	}

	return res
}

// Build scans src and constructs a JSON semi-index: IB (dense, one bit per
// source byte) plus BP (balanced parens over structural/primitive open-
// close events) with its pioneer-excess find_close/find_open index, and
// the per-BP-position source-offset / node-kind side tables.
func Build(src []byte) *Index {
	var res scanResult
	if simd.Selected == simd.LevelScalar {
		res = scanScalar(src)
	} else {
		res = scanChunked(src)
	}
	ibv := res.ib.Freeze()
	bpFrozen := res.bpBuilder.Freeze()
	bpTree := bp.BuildWithBlockSize(bpFrozen.Words(), bpFrozen.Len(), bp.DefaultBlockSize)

	return &Index{
		src:     src,
		ib:      ibv,
		bp:      bpTree,
		offsets: res.offsets,
		kinds:   res.kinds,
	}
}
