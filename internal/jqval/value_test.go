package jqval

import (
	"testing"

	"github.com/succinctly/semidx/internal/jsonidx"
)

func TestMaterializedScalars(t *testing.T) {
	if !Null().IsNull() {
		t.Error("Null().IsNull() = false")
	}
	if Null().IsTruthy() {
		t.Error("null should be falsy")
	}
	if Bool(false).IsTruthy() {
		t.Error("false should be falsy")
	}
	if !Int(0).IsTruthy() {
		t.Error("0 should be truthy in jq")
	}
	if n, ok := Int(42).AsInt64(); !ok || n != 42 {
		t.Errorf("Int(42).AsInt64() = %d,%v", n, ok)
	}
	if f, ok := Float(1.5).AsFloat64(); !ok || f != 1.5 {
		t.Errorf("Float(1.5).AsFloat64() = %f,%v", f, ok)
	}
}

func TestRawNumberPreservesLexeme(t *testing.T) {
	v := RawNumber([]byte("4e4"))
	f, ok := v.AsFloat64()
	if !ok || f != 40000.0 {
		t.Fatalf("AsFloat64() = %f,%v want 40000,true", f, ok)
	}
	raw, ok := v.RawBytes()
	if !ok || string(raw) != "4e4" {
		t.Fatalf("RawBytes() = %q,%v want 4e4,true", raw, ok)
	}
	if v.ToJSONString() != "4e4" {
		t.Errorf("ToJSONString() = %q, want 4e4 (not renormalized to 40000)", v.ToJSONString())
	}
}

func TestArrayAndObjectConstruction(t *testing.T) {
	arr := Array([]Value{Int(1), Int(2), Int(3)})
	n, ok := arr.Length()
	if !ok || n != 3 {
		t.Fatalf("Length() = %d,%v want 3,true", n, ok)
	}
	v, ok := arr.Index(1)
	if !ok {
		t.Fatal("Index(1) failed")
	}
	if i, _ := v.AsInt64(); i != 2 {
		t.Errorf("arr[1] = %d, want 2", i)
	}

	obj := EmptyObject()
	obj.Set("name", String("Alice"))
	obj.Set("age", Int(30))
	s, ok := obj.Field("name")
	if !ok {
		t.Fatal("Field(name) failed")
	}
	if str, _ := s.AsString(); str != "Alice" {
		t.Errorf("name = %q, want Alice", str)
	}
	if obj.ToJSONString() != `{"name":"Alice","age":30}` {
		t.Errorf("ToJSONString() = %s", obj.ToJSONString())
	}
}

func TestFromCursorLazyNavigation(t *testing.T) {
	idx := jsonidx.Build([]byte(`{"users":[{"name":"Alice","age":30}]}`))
	root := FromCursor(idx.Root())
	if !root.IsCursor() {
		t.Error("FromCursor should be lazy")
	}
	if root.Kind() != KindObject {
		t.Errorf("Kind() = %v, want KindObject", root.Kind())
	}

	users, ok := root.Field("users")
	if !ok {
		t.Fatal("Field(users) failed")
	}
	n, ok := users.Length()
	if !ok || n != 1 {
		t.Fatalf("users length = %d,%v want 1,true", n, ok)
	}

	alice, ok := users.Index(0)
	if !ok {
		t.Fatal("Index(0) failed")
	}
	name, ok := alice.Field("name")
	if !ok {
		t.Fatal("Field(name) failed")
	}
	s, ok := name.AsString()
	if !ok || s != "Alice" {
		t.Errorf("name = %q,%v want Alice,true", s, ok)
	}
}

func TestMaterializePreservesStructure(t *testing.T) {
	idx := jsonidx.Build([]byte(`{"a":1,"b":[true,null,"x"]}`))
	m := FromCursor(idx.Root()).Materialize()
	if m.IsCursor() {
		t.Error("Materialize should detach from the cursor")
	}
	a, ok := m.Field("a")
	if !ok {
		t.Fatal("Field(a) failed after materialize")
	}
	if n, _ := a.AsInt64(); n != 1 {
		t.Errorf("a = %d, want 1", n)
	}
	b, ok := m.Field("b")
	if !ok {
		t.Fatal("Field(b) failed after materialize")
	}
	if n, _ := b.Length(); n != 3 {
		t.Errorf("b length = %d, want 3", n)
	}
}

func TestWriteJSONRoundTripsRawBytes(t *testing.T) {
	src := []byte(`{"x":4e4,"y":[1,2,3]}`)
	idx := jsonidx.Build(src)
	root := FromCursor(idx.Root())
	if root.ToJSONString() != string(src) {
		t.Errorf("ToJSONString() = %s, want %s (raw-byte passthrough)", root.ToJSONString(), src)
	}
}
