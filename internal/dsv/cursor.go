package dsv

import "github.com/succinctly/semidx/internal/cursor"

// dsvCursor is a position into an Index: either the root (row=-1,
// field=-1, an array of rows), a row (field=-1, an array of fields), or a
// field (a string leaf). Safe to copy.
type dsvCursor struct {
	idx   *Index
	kind  cursor.Kind
	row   int
	field int
}

var _ cursor.Cursor = dsvCursor{}

func (c dsvCursor) Kind() cursor.Kind { return c.kind }

func (c dsvCursor) dataRowIndex() int {
	if c.idx.cfg.HasHeader {
		return c.row + 1
	}
	return c.row
}

func (c dsvCursor) RawBytes() []byte {
	switch {
	case c.kind == cursor.KindString:
		span := c.rowFields()[c.field]
		return c.idx.src[span.start:span.end]
	case c.field == -1 && c.row >= 0:
		r := c.idx.rowSpan(c.dataRowIndex())
		return c.idx.src[r.start:r.end]
	default:
		return c.idx.src
	}
}

func (c dsvCursor) Field(name string) (cursor.Cursor, bool) {
	if c.kind != cursor.KindArray || c.row < 0 || c.idx.headerOf == nil {
		return nil, false
	}
	i, ok := c.idx.headerOf[name]
	if !ok {
		return nil, false
	}
	return c.Index(i)
}

func (c dsvCursor) Index(i int) (cursor.Cursor, bool) {
	switch {
	case c.kind == cursor.KindArray && c.row < 0:
		if i < 0 || i >= c.idx.RowCount() {
			return nil, false
		}
		return dsvCursor{idx: c.idx, kind: cursor.KindArray, row: i, field: -1}, true
	case c.kind == cursor.KindArray && c.row >= 0:
		fields := c.rowFields()
		if i < 0 || i >= len(fields) {
			return nil, false
		}
		return dsvCursor{idx: c.idx, kind: cursor.KindString, row: c.row, field: i}, true
	default:
		return nil, false
	}
}

func (c dsvCursor) rowFields() []fieldSpan {
	r := c.idx.rowSpan(c.dataRowIndex())
	return c.idx.fieldsInRange(r.start, r.end)
}

// Keys returns the header row's column names for a row cursor (nil if
// cfg.HasHeader is false); nil for root and field cursors, since DSV has
// no object-shaped node.
func (c dsvCursor) Keys() []string {
	if c.kind == cursor.KindArray && c.row >= 0 {
		return c.idx.Headers()
	}
	return nil
}

func (c dsvCursor) Count() int {
	switch {
	case c.kind == cursor.KindArray && c.row < 0:
		return c.idx.RowCount()
	case c.kind == cursor.KindArray && c.row >= 0:
		return len(c.rowFields())
	default:
		return 0
	}
}

func (c dsvCursor) Children() []cursor.Cursor {
	n := c.Count()
	out := make([]cursor.Cursor, 0, n)
	for i := 0; i < n; i++ {
		child, ok := c.Index(i)
		if ok {
			out = append(out, child)
		}
	}
	return out
}

func (c dsvCursor) AsString() (string, bool) {
	if c.kind != cursor.KindString {
		return "", false
	}
	return unquoteField(c.RawBytes(), c.idx.cfg), true
}

func (c dsvCursor) AsInt64() (int64, bool) {
	if c.kind != cursor.KindString {
		return 0, false
	}
	return parseFieldInt64(c.RawBytes())
}

func (c dsvCursor) AsFloat64() (float64, bool) {
	if c.kind != cursor.KindString {
		return 0, false
	}
	return parseFieldFloat64(c.RawBytes())
}
