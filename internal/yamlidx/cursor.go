package yamlidx

import (
	"bytes"
	"fmt"

	"github.com/succinctly/semidx/internal/cursor"
)

func nodeKindToCursorKind(k nodeKind) cursor.Kind {
	switch k {
	case kindDocument, kindSequence:
		return cursor.KindArray
	case kindMapping:
		return cursor.KindObject
	case kindKey, kindString:
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

// yamlCursor is a position into an Index: a BP position that is always an
// open event. Safe to copy.
type yamlCursor struct {
	idx *Index
	pos int
}

var _ cursor.Cursor = yamlCursor{}

func (c yamlCursor) kind() nodeKind { return c.idx.kinds[c.pos] }

// resolveAlias follows an alias node to the anchor it names, repeating if
// the target is itself an alias. Cycles are not detected; a cyclic alias
// chain will not terminate.
func (c yamlCursor) resolveAlias() yamlCursor {
	for c.kind() == kindAlias {
		name := string(c.RawBytes()[1:]) // drop leading '*'
		target, ok := c.idx.anchors.resolve(name)
		if !ok {
			return c
		}
		c = yamlCursor{idx: c.idx, pos: target}
	}
	return c
}

func (c yamlCursor) Kind() cursor.Kind {
	return nodeKindToCursorKind(c.resolveAlias().kind())
}

// span returns the [start,end) byte range of this node's raw source text,
// as recorded directly by the oracle at open/close time (see oracle.go's
// openNode/closeNode) rather than reconstructed from IB rank/select.
func (c yamlCursor) span() (int, int) {
	start := int(c.idx.offsets[c.pos])
	closePos := c.idx.bp.FindClose(c.pos)
	end := int(c.idx.offsets[closePos])
	if end < start {
		end = start
	}
	return start, end
}

func (c yamlCursor) RawBytes() []byte {
	start, end := c.span()
	return c.idx.src[start:end]
}

// children returns cursors for this node's direct BP children, in source
// order, resolving through an alias first.
func (c yamlCursor) children() []yamlCursor {
	target := c.resolveAlias()
	positions := c.idx.bp.Children(target.pos)
	out := make([]yamlCursor, len(positions))
	for i, p := range positions {
		out[i] = yamlCursor{idx: c.idx, pos: p}
	}
	return out
}

func (c yamlCursor) Field(name string) (cursor.Cursor, bool) {
	target := c.resolveAlias()
	if target.kind() != kindMapping {
		return nil, false
	}
	kids := target.children()
	for i := 0; i+1 < len(kids); i += 2 {
		key, ok := kids[i].AsString()
		if ok && key == name {
			return kids[i+1], true
		}
	}
	return nil, false
}

func (c yamlCursor) Index(i int) (cursor.Cursor, bool) {
	target := c.resolveAlias()
	switch target.kind() {
	case kindDocument, kindSequence:
		kids := target.children()
		if i < 0 || i >= len(kids) {
			return nil, false
		}
		return kids[i], true
	default:
		return nil, false
	}
}

func (c yamlCursor) Keys() []string {
	target := c.resolveAlias()
	if target.kind() != kindMapping {
		return nil
	}
	kids := target.children()
	out := make([]string, 0, len(kids)/2)
	for i := 0; i+1 < len(kids); i += 2 {
		key, ok := kids[i].AsString()
		if ok {
			out = append(out, key)
		}
	}
	return out
}

func (c yamlCursor) Count() int {
	target := c.resolveAlias()
	switch target.kind() {
	case kindDocument, kindSequence:
		return len(target.children())
	case kindMapping:
		return len(target.children()) / 2
	default:
		return 0
	}
}

// Children returns value nodes in source order: for a sequence/document,
// every element; for a mapping, every value (keys are reached via Field/
// Keys, not as siblings in a generic tree walk, matching jsonidx).
func (c yamlCursor) Children() []cursor.Cursor {
	target := c.resolveAlias()
	kids := target.children()
	switch target.kind() {
	case kindDocument, kindSequence:
		out := make([]cursor.Cursor, len(kids))
		for i, k := range kids {
			out[i] = k
		}
		return out
	case kindMapping:
		out := make([]cursor.Cursor, 0, len(kids)/2)
		for i := 1; i < len(kids); i += 2 {
			out = append(out, kids[i])
		}
		return out
	default:
		return nil
	}
}

func (c yamlCursor) AsString() (string, bool) {
	target := c.resolveAlias()
	if target.kind() != kindString && target.kind() != kindKey {
		return "", false
	}
	raw := bytes.TrimRight(target.RawBytes(), " ")
	switch {
	case len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"':
		return unescapeDoubleQuoted(raw[1 : len(raw)-1]), true
	case len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'':
		return unescapeSingleQuoted(raw[1 : len(raw)-1]), true
	default:
		return string(raw), true
	}
}

func (c yamlCursor) AsInt64() (int64, bool) {
	target := c.resolveAlias()
	if target.kind() != kindNumber {
		return 0, false
	}
	return parseScalarInt64(bytes.TrimRight(target.RawBytes(), " "))
}

func (c yamlCursor) AsFloat64() (float64, bool) {
	target := c.resolveAlias()
	if target.kind() != kindNumber {
		return 0, false
	}
	return parseScalarFloat64(bytes.TrimRight(target.RawBytes(), " "))
}

func (c yamlCursor) String() string {
	return fmt.Sprintf("yamlCursor{pos=%d, kind=%s}", c.pos, c.Kind())
}
