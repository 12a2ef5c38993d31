package yamlidx

import (
	"github.com/succinctly/semidx/internal/bitv"
	"github.com/succinctly/semidx/internal/bp"
	"github.com/succinctly/semidx/internal/cursor"
)

// Index is a built, immutable semi-index over one YAML document's bytes:
// IB/BP from the oracle scan, a parallel container-type bitvector TY, and
// the comment/anchor/tag sidecars. Every document is wrapped in a virtual
// root node (kindDocument) so path expressions uniformly address the
// actual top-level value as `.[0]`; see oracle.go's parse().
type Index struct {
	src []byte
	ib  *bitv.BitVector
	bp  *bp.BP
	ty  *bitv.BitVector

	offsets []int32
	kinds   []nodeKind

	comments *CommentIndex
	tags     []TagEntry
	anchors  *anchorTable
	docBP    int
}

// Build scans src with the indentation/flow oracle and constructs a YAML
// semi-index. Unlike jsonidx/dsv, construction can fail (tab indentation,
// unclosed quotes, multiple documents, a key without a value marker, ...);
// see ErrorKind for the full taxonomy.
func Build(src []byte) (*Index, error) {
	return newParser(src).parse()
}

// Root returns a cursor over the virtual document wrapper (always a
// sequence of length 1; Root().Index(0) is the document's actual content).
func (idx *Index) Root() cursor.Cursor {
	return yamlCursor{idx: idx, pos: idx.docBP}
}

// IB exposes the interest-bit vector.
func (idx *Index) IB() *bitv.BitVector { return idx.ib }

// BP exposes the balanced-parenthesis tree directly.
func (idx *Index) BP() *bp.BP { return idx.bp }

// TY exposes the per-container-open type bitvector (0=mapping,
// 1=sequence). Cursor navigation uses the richer kinds[] side table
// directly and does not need to consult TY; it is exposed for callers
// that want the succinct representation alone.
func (idx *Index) TY() *bitv.BitVector { return idx.ty }

// Comments returns the sparse comment sidecar.
func (idx *Index) Comments() *CommentIndex { return idx.comments }

// Tags returns the explicit-tag sidecar, in the order tags were parsed.
func (idx *Index) Tags() []TagEntry { return idx.tags }

// Locate resolves a byte offset to the BP position of the innermost node
// whose span contains it, by linear scan over BP opens. Comparing against
// each node's own [start,end) span rather than key text proximity is what
// makes an offset inside "age" in "name: Alice\nage: 30\n..." resolve
// under `.[0].age`, not `.[0].name`.
func (idx *Index) Locate(offset int) (cursor.Cursor, bool) {
	best := -1
	bestSpan := 1 << 62
	for pos := 0; pos < idx.bp.Len(); pos++ {
		if !idx.bp.IsOpen(pos) {
			continue
		}
		c := yamlCursor{idx: idx, pos: pos}
		start, end := c.span()
		if offset >= start && offset < end {
			span := end - start
			if span < bestSpan {
				best, bestSpan = pos, span
			}
		}
	}
	if best < 0 {
		return nil, false
	}
	return yamlCursor{idx: idx, pos: best}, true
}
