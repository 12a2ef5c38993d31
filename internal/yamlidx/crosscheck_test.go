package yamlidx

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/succinctly/semidx/internal/cursor"
)

// materialize walks a cursor into plain Go values so the semi-index view
// can be diffed against what a full YAML decoder produces from the same
// bytes.
func materialize(t *testing.T, c cursor.Cursor) any {
	t.Helper()
	switch c.Kind() {
	case cursor.KindObject:
		out := make(map[string]any, c.Count())
		for _, k := range c.Keys() {
			v, ok := c.Field(k)
			require.True(t, ok, "Field(%q) vanished between Keys() and lookup", k)
			out[k] = materialize(t, v)
		}
		return out
	case cursor.KindArray:
		kids := c.Children()
		out := make([]any, len(kids))
		for i, k := range kids {
			out[i] = materialize(t, k)
		}
		return out
	case cursor.KindString:
		s, ok := c.AsString()
		require.True(t, ok)
		return s
	case cursor.KindNumber:
		if n, ok := c.AsInt64(); ok {
			return n
		}
		f, ok := c.AsFloat64()
		require.True(t, ok, "number node %q parses as neither int nor float", c.RawBytes())
		return f
	case cursor.KindBool:
		return strings.TrimSpace(string(c.RawBytes())) == "true"
	case cursor.KindNull:
		return nil
	default:
		t.Fatalf("unexpected node kind %v", c.Kind())
		return nil
	}
}

// normalize rewrites yaml.v3's decoded shapes (int, map[string]interface{})
// into the shapes materialize produces (int64, map[string]any) so cmp.Diff
// compares values, not decoder type choices.
func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalize(e)
		}
		return out
	default:
		return v
	}
}

// TestCursorAgreesWithYAMLDecoder cross-checks the oracle scanner's cursor
// view against gopkg.in/yaml.v3 decoding the same document in full. The
// decoder is a test-only reference; production paths never import it.
func TestCursorAgreesWithYAMLDecoder(t *testing.T) {
	fixtures := []struct {
		name string
		src  string
	}{
		{
			name: "block mapping with nested sequence",
			src:  "name: Alice\nage: 30\ntags:\n  - admin\n  - ops\n",
		},
		{
			name: "nested block mappings",
			src:  "outer:\n  inner:\n    x: 1\n    y: two\nz: 3\n",
		},
		{
			name: "flow containers",
			src:  "point: {x: 1, y: 2}\nlist: [1, 2, 3]\n",
		},
		{
			name: "mixed scalar kinds",
			src:  "s: hello\ni: 42\nf: 0.5\nb: true\nn: null\n",
		},
		{
			name: "double quoted escapes",
			src:  "msg: \"line1\\nline2\"\n",
		},
		{
			name: "sequence of mappings",
			src:  "- name: a\n  v: 1\n- name: b\n  v: 2\n",
		},
		{
			name: "compact nested sequence",
			src:  "- name: a\n  v: 1\n- - x\n  - y\n",
		},
	}

	for _, fx := range fixtures {
		t.Run(fx.name, func(t *testing.T) {
			idx, err := Build([]byte(fx.src))
			require.NoError(t, err)
			doc, ok := idx.Root().Index(0)
			require.True(t, ok)
			got := materialize(t, doc)

			var want any
			require.NoError(t, yamlv3.Unmarshal([]byte(fx.src), &want))

			if diff := cmp.Diff(normalize(want), got); diff != "" {
				t.Errorf("cursor view disagrees with yaml.v3 decoder (-want +got):\n%s", diff)
			}
		})
	}
}
