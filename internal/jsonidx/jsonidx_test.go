package jsonidx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNestedNavigation(t *testing.T) {
	src := []byte(`{"users":[{"name":"Alice","age":30},{"name":"Bob","age":25}]}`)
	idx := Build(src)
	root := idx.Root()

	require.Equal(t, 1, root.Count())

	users, ok := root.Field("users")
	require.True(t, ok)
	require.Equal(t, 2, users.Count())

	u0, ok := users.Index(0)
	require.True(t, ok)
	name, ok := u0.Field("name")
	require.True(t, ok)
	s, ok := name.AsString()
	require.True(t, ok)
	require.Equal(t, "Alice", s)

	u1, ok := users.Index(1)
	require.True(t, ok)
	age, ok := u1.Field("age")
	require.True(t, ok)
	n, ok := age.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 25, n)
}

func TestNumberLexemePreservation(t *testing.T) {
	src := []byte(`{"x":4e4}`)
	idx := Build(src)
	x, ok := idx.Root().Field("x")
	require.True(t, ok)
	require.Equal(t, "4e4", string(x.RawBytes()))
	f, ok := x.AsFloat64()
	require.True(t, ok)
	require.Equal(t, 40000.0, f)
}

// TestValueAdjacentToStructuralByte audits the PFSM's InValue handling of
// a value token butted against a structural byte with no intervening
// whitespace, across every closing context.
func TestValueAdjacentToStructuralByte(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"bool then comma", `[true,false]`},
		{"number then close brace", `{"a":1}`},
		{"number then close bracket", `[1,2,3]`},
		{"null then comma", `[null,1]`},
		{"nested close immediately after number", `{"a":{"b":1}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, Validate([]byte(tc.src)))
			idx := Build([]byte(tc.src))
			root := idx.Root()
			require.NotNil(t, root)
		})
	}
}

func TestValidateAcceptsValid(t *testing.T) {
	for _, s := range []string{
		`null`, `true`, `false`, `{}`, `[]`,
		`{"key": "value"}`, `[1, 2, 3]`,
		`{"arr": [1, {"nested": true}]}`,
		`"hello\nworld"`, `"A"`, `"😀"`,
		`0`, `-0`, `3.14159`, `1e10`, `1e+10`, `-1.23e-45`,
	} {
		require.NoError(t, Validate([]byte(s)), "expected %q to be valid", s)
	}
}

func TestValidateRejectsInvalid(t *testing.T) {
	cases := []struct {
		src  string
		kind ErrorKind
	}{
		{``, ErrUnexpectedEOF},
		{`null extra`, ErrTrailingContent},
		{`{"key": "value",}`, ErrUnexpectedCharacter},
		{`[1, 2, 3,]`, ErrUnexpectedCharacter},
		{`01`, ErrLeadingZero},
		{`+1`, ErrLeadingPlus},
		{`1.`, ErrInvalidNumber},
		{`1e`, ErrInvalidNumber},
		{`"\q"`, ErrInvalidEscape},
		{`"\uD83D"`, ErrUnpairedSurrogate},
		{"\"hello\x00world\"", ErrControlCharacter},
		{`"unclosed`, ErrUnclosedString},
		{`nul`, ErrInvalidKeyword},
	}
	for _, tc := range cases {
		err := Validate([]byte(tc.src))
		require.Error(t, err, "expected %q to be rejected", tc.src)
		ve, ok := err.(*ValidationError)
		require.True(t, ok)
		require.Equal(t, tc.kind, ve.Kind, "for input %q", tc.src)
	}
}

func TestChildrenAndArrayIndex(t *testing.T) {
	src := []byte(`[10,20,30]`)
	idx := Build(src)
	root := idx.Root()
	require.Equal(t, 3, root.Count())
	kids := root.Children()
	require.Len(t, kids, 3)
	v, ok := kids[1].AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 20, v)
}

func TestScalarRootDocument(t *testing.T) {
	idx := Build([]byte(`42`))
	root := idx.Root()
	require.Equal(t, "42", string(root.RawBytes()))
	n, ok := root.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 42, n)
}
