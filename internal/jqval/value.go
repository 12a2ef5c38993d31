// Package jqval provides a polymorphic value that is lazy by default: a
// thin wrapper over any format's cursor.Cursor, promoted to a materialized
// variant only when a computation actually needs one. Pass-through access
// (field lookup, iteration, re-emission) never allocates or parses a
// number; arithmetic and construction do.
package jqval

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/succinctly/semidx/internal/cursor"
)

// Kind discriminates Value's tagged union.
type Kind int

const (
	KindCursor Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	// KindRawNumber holds a number's exact source lexeme (e.g. "4e4")
	// without parsing it; only touched when the caller asks for a
	// numeric or JSON-text view.
	KindRawNumber
	KindString
	KindArray
	KindObject
)

// member is one key/value pair of an Object, in insertion order.
type member struct {
	key string
	val Value
}

// Value is a jq-style dynamic value: either a lazy Cursor reference into
// a semi-index, or one of the materialized variants constructed during
// evaluation. Safe to copy.
type Value struct {
	kind    Kind
	cursor  cursor.Cursor
	b       bool
	i       int64
	f       float64
	raw     []byte
	s       string
	arr     []Value
	members []member
}

func Null() Value           { return Value{kind: KindNull} }
func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func Int(n int64) Value     { return Value{kind: KindInt, i: n} }
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }
func String(s string) Value { return Value{kind: KindString, s: s} }

// RawNumber wraps a number's exact source bytes, preserving lexeme
// formatting (e.g. "4e4" stays "4e4") until a caller forces numeric
// conversion via AsInt64/AsFloat64.
func RawNumber(src []byte) Value { return Value{kind: KindRawNumber, raw: src} }

func Array(values []Value) Value { return Value{kind: KindArray, arr: values} }

func EmptyObject() Value { return Value{kind: KindObject} }
func EmptyArray() Value  { return Value{kind: KindArray} }

// Set inserts or overwrites a key on an object value in place.
func (v *Value) Set(key string, val Value) {
	for i, m := range v.members {
		if m.key == key {
			v.members[i].val = val
			return
		}
	}
	v.members = append(v.members, member{key: key, val: val})
}

// FromCursor wraps a navigation cursor as a lazy Value.
func FromCursor(c cursor.Cursor) Value { return Value{kind: KindCursor, cursor: c} }

// Kind returns the discriminant, resolving a cursor's own Kind() when
// this value is lazy.
func (v Value) Kind() Kind {
	if v.kind == KindCursor {
		switch v.cursor.Kind() {
		case cursor.KindNull:
			return KindNull
		case cursor.KindBool:
			return KindBool
		case cursor.KindNumber:
			return KindRawNumber
		case cursor.KindString:
			return KindString
		case cursor.KindArray:
			return KindArray
		case cursor.KindObject:
			return KindObject
		default:
			return KindNull
		}
	}
	return v.kind
}

func (v Value) IsCursor() bool { return v.kind == KindCursor }

// IsNull reports whether this value is JSON null.
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// IsTruthy follows jq's rule: only null and false are falsy.
func (v Value) IsTruthy() bool {
	switch v.Kind() {
	case KindNull:
		return false
	case KindBool:
		b, _ := v.AsBool()
		return b
	default:
		return true
	}
}

// TypeName returns jq's type-name vocabulary, used in error messages.
func (v Value) TypeName() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindInt, KindFloat, KindRawNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

func (v Value) AsBool() (bool, bool) {
	switch v.kind {
	case KindBool:
		return v.b, true
	case KindCursor:
		if v.cursor.Kind() != cursor.KindBool {
			return false, false
		}
		raw := v.cursor.RawBytes()
		return len(raw) > 0 && raw[0] == 't', true
	default:
		return false, false
	}
}

// AsInt64 forces numeric parsing of a RawNumber or Cursor number, or
// truncates a Float with no fractional part.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == math.Trunc(v.f) {
			return int64(v.f), true
		}
		return 0, false
	case KindRawNumber:
		n, err := strconv.ParseInt(string(v.raw), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	case KindCursor:
		return v.cursor.AsInt64()
	default:
		return 0, false
	}
}

func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	case KindRawNumber:
		f, err := strconv.ParseFloat(string(v.raw), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case KindCursor:
		return v.cursor.AsFloat64()
	default:
		return 0, false
	}
}

func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindString:
		return v.s, true
	case KindCursor:
		return v.cursor.AsString()
	default:
		return "", false
	}
}

// Length mirrors jq's length builtin: 0 for null, rune count for
// strings, element/key count for arrays/objects, not-ok otherwise.
func (v Value) Length() (int, bool) {
	switch v.Kind() {
	case KindNull:
		return 0, true
	case KindString:
		s, ok := v.AsString()
		if !ok {
			return 0, false
		}
		return len([]rune(s)), true
	case KindArray:
		if v.kind == KindCursor {
			return v.cursor.Count(), true
		}
		return len(v.arr), true
	case KindObject:
		if v.kind == KindCursor {
			return v.cursor.Count(), true
		}
		return len(v.members), true
	default:
		return 0, false
	}
}

// RawBytes returns the lazy source slice backing this value, if any:
// zero-copy re-emission for pass-through queries. ok is false for
// materialized, non-RawNumber values.
func (v Value) RawBytes() ([]byte, bool) {
	switch v.kind {
	case KindCursor:
		return v.cursor.RawBytes(), true
	case KindRawNumber:
		return v.raw, true
	default:
		return nil, false
	}
}

// Index looks up the i-th element of an array value.
func (v Value) Index(i int) (Value, bool) {
	switch v.kind {
	case KindCursor:
		c, ok := v.cursor.Index(i)
		if !ok {
			return Value{}, false
		}
		return FromCursor(c), true
	case KindArray:
		if i < 0 || i >= len(v.arr) {
			return Value{}, false
		}
		return v.arr[i], true
	default:
		return Value{}, false
	}
}

// Field looks up a named member of an object value.
func (v Value) Field(name string) (Value, bool) {
	switch v.kind {
	case KindCursor:
		c, ok := v.cursor.Field(name)
		if !ok {
			return Value{}, false
		}
		return FromCursor(c), true
	case KindObject:
		for _, m := range v.members {
			if m.key == name {
				return m.val, true
			}
		}
		return Value{}, false
	default:
		return Value{}, false
	}
}

// Materialize recursively copies a cursor-backed value into plain Go
// values (numbers parsed via AsInt64/AsFloat64, falling back to Float),
// detaching it from the underlying source bytes and index.
func (v Value) Materialize() Value {
	switch v.kind {
	case KindCursor:
		switch v.cursor.Kind() {
		case cursor.KindNull:
			return Null()
		case cursor.KindBool:
			b, _ := v.AsBool()
			return Bool(b)
		case cursor.KindNumber:
			if n, ok := v.cursor.AsInt64(); ok {
				return Int(n)
			}
			f, _ := v.cursor.AsFloat64()
			return Float(f)
		case cursor.KindString:
			s, _ := v.AsString()
			return String(s)
		case cursor.KindArray:
			children := v.cursor.Children()
			out := make([]Value, len(children))
			for i, c := range children {
				out[i] = FromCursor(c).Materialize()
			}
			return Array(out)
		case cursor.KindObject:
			return v.materializeObject()
		default:
			return Null()
		}
	case KindArray:
		out := make([]Value, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Materialize()
		}
		return Array(out)
	case KindObject:
		out := Value{kind: KindObject}
		for _, m := range v.members {
			out.Set(m.key, m.val.Materialize())
		}
		return out
	default:
		return v
	}
}

// materializeObject walks an object cursor's Keys() (source order) and
// resolves each one via Field, rather than Children(): Children() on an
// object cursor yields only value nodes (see jsonidx's jsonCursor.Children), so
// Keys()+Field() is the only way to recover a (name, value) pairing.
func (v Value) materializeObject() Value {
	out := Value{kind: KindObject}
	for _, key := range v.cursor.Keys() {
		child, ok := v.cursor.Field(key)
		if !ok {
			continue
		}
		out.Set(key, FromCursor(child).Materialize())
	}
	return out
}

// WriteJSON serializes v to b, writing a cursor or RawNumber value's
// original source bytes verbatim to preserve lexeme formatting (e.g.
// "4e4" is never renormalized to "40000").
func (v Value) WriteJSON(b *strings.Builder) {
	switch v.kind {
	case KindCursor:
		raw := v.cursor.RawBytes()
		if len(raw) > 0 {
			b.Write(raw)
			return
		}
		v.Materialize().WriteJSON(b)
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if v.b {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			b.WriteString("null")
		} else {
			b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	case KindRawNumber:
		b.Write(v.raw)
	case KindString:
		writeJSONString(b, v.s)
	case KindArray:
		b.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				b.WriteByte(',')
			}
			e.WriteJSON(b)
		}
		b.WriteByte(']')
	case KindObject:
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, m.key)
			b.WriteByte(':')
			m.val.WriteJSON(b)
		}
		b.WriteByte('}')
	}
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

// ToJSONString renders v as a JSON document.
func (v Value) ToJSONString() string {
	var b strings.Builder
	v.WriteJSON(&b)
	return b.String()
}
