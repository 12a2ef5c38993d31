// Package jsonidx implements a succinct semi-index over JSON text: a
// table-driven PFSM scan produces an interest-bit vector (IB) and a
// balanced-parenthesis tree (BP) over the document's structural and
// primitive-value events, giving O(1)/O(children) navigation without a
// full parse or DOM.
package jsonidx

import (
	"fmt"

	"github.com/succinctly/semidx/internal/bitv"
	"github.com/succinctly/semidx/internal/bp"
	"github.com/succinctly/semidx/internal/cursor"
)

// Index is a built, immutable semi-index over one JSON document's bytes.
type Index struct {
	src []byte
	ib  *bitv.BitVector
	bp  *bp.BP

	// offsets and kinds are aligned 1:1 with BP positions: offsets[p] is
	// the source byte offset that produced the event at BP position p;
	// kinds[p] is the node kind when p is an open, kindNone otherwise.
	offsets []int32
	kinds   []nodeKind
}

// Root returns a cursor over the document's single top-level value. Panics
// if the document contains no value at all (an empty or all-whitespace
// input); callers are expected to have run Validate first on untrusted
// input.
func (idx *Index) Root() cursor.Cursor {
	if idx.bp.Len() == 0 {
		panic("jsonidx: Root of an empty document")
	}
	return jsonCursor{idx: idx, pos: 0}
}

// IB exposes the interest-bit vector for callers that want raw rank/select
// access (e.g. byte-offset-to-node resolution during a YAML-style cross
// reference, or tooling built on top of this package).
func (idx *Index) IB() *bitv.BitVector { return idx.ib }

// BP exposes the balanced-parenthesis tree directly.
func (idx *Index) BP() *bp.BP { return idx.bp }

func nodeKindToCursorKind(k nodeKind) cursor.Kind {
	switch k {
	case kindObject:
		return cursor.KindObject
	case kindArray:
		return cursor.KindArray
	case kindString:
		return cursor.KindString
	case kindNumber:
		return cursor.KindNumber
	case kindBool:
		return cursor.KindBool
	case kindNull:
		return cursor.KindNull
	default:
		return cursor.KindError
	}
}

// jsonCursor is a position into an Index: a BP position that is always an
// open event. Safe to copy.
type jsonCursor struct {
	idx *Index
	pos int
}

var _ cursor.Cursor = jsonCursor{}

func (c jsonCursor) kind() nodeKind { return c.idx.kinds[c.pos] }

func (c jsonCursor) Kind() cursor.Kind { return nodeKindToCursorKind(c.kind()) }

// span returns the [start,end) byte range of this node's raw source text.
// Composite (object/array) and string nodes include their own closing
// delimiter; number/bool/null nodes do not have one (their "close" event
// is attributed to the byte that ends the value, which belongs to the
// next token) so the span stops right before it.
func (c jsonCursor) span() (int, int) {
	start := int(c.idx.offsets[c.pos])
	closePos := c.idx.bp.FindClose(c.pos)
	closeOff := int(c.idx.offsets[closePos])

	switch c.kind() {
	case kindObject, kindArray, kindString:
		return start, closeOff + 1
	default:
		return start, closeOff
	}
}

func (c jsonCursor) RawBytes() []byte {
	start, end := c.span()
	return c.idx.src[start:end]
}

// children returns cursors for this node's direct BP children, in source
// order. O(children) via bp.Children's FirstChild/NextSibling walk.
func (c jsonCursor) children() []jsonCursor {
	positions := c.idx.bp.Children(c.pos)
	out := make([]jsonCursor, len(positions))
	for i, p := range positions {
		out[i] = jsonCursor{idx: c.idx, pos: p}
	}
	return out
}

func (c jsonCursor) Field(name string) (cursor.Cursor, bool) {
	if c.kind() != kindObject {
		return nil, false
	}
	kids := c.children()
	for i := 0; i+1 < len(kids); i += 2 {
		key, ok := kids[i].AsString()
		if ok && key == name {
			return kids[i+1], true
		}
	}
	return nil, false
}

func (c jsonCursor) Index(i int) (cursor.Cursor, bool) {
	if c.kind() != kindArray {
		return nil, false
	}
	kids := c.children()
	if i < 0 || i >= len(kids) {
		return nil, false
	}
	return kids[i], true
}

func (c jsonCursor) Keys() []string {
	if c.kind() != kindObject {
		return nil
	}
	kids := c.children()
	out := make([]string, 0, len(kids)/2)
	for i := 0; i+1 < len(kids); i += 2 {
		key, ok := kids[i].AsString()
		if ok {
			out = append(out, key)
		}
	}
	return out
}

func (c jsonCursor) Count() int {
	switch c.kind() {
	case kindArray:
		return len(c.children())
	case kindObject:
		return len(c.children()) / 2
	default:
		return 0
	}
}

// Children returns value nodes in source order: for an array, every
// element; for an object, every value (keys are reached via Field, not as
// siblings, since they are not themselves addressable nodes of interest to
// a generic tree walk). Scalars return nil.
func (c jsonCursor) Children() []cursor.Cursor {
	kids := c.children()
	switch c.kind() {
	case kindArray:
		out := make([]cursor.Cursor, len(kids))
		for i, k := range kids {
			out[i] = k
		}
		return out
	case kindObject:
		out := make([]cursor.Cursor, 0, len(kids)/2)
		for i := 1; i < len(kids); i += 2 {
			out = append(out, kids[i])
		}
		return out
	default:
		return nil
	}
}

func (c jsonCursor) AsString() (string, bool) {
	if c.kind() != kindString {
		return "", false
	}
	raw := c.RawBytes()
	if len(raw) < 2 {
		return "", false
	}
	inner := raw[1 : len(raw)-1]
	return unescapeJSONString(inner), true
}

func (c jsonCursor) AsInt64() (int64, bool) {
	if c.kind() != kindNumber {
		return 0, false
	}
	return parseInt64(c.RawBytes())
}

func (c jsonCursor) AsFloat64() (float64, bool) {
	if c.kind() != kindNumber {
		return 0, false
	}
	return parseFloat64(c.RawBytes())
}

func (c jsonCursor) String() string {
	return fmt.Sprintf("jsonCursor{pos=%d, kind=%s}", c.pos, c.Kind())
}
