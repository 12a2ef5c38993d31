package dsv

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQuotedDelimiter(t *testing.T) {
	src := []byte("a,b,c\n\"x,y\",z,w\n")
	idx := Build(src, Default())

	require.Equal(t, 2, idx.RowCount())
	require.Equal(t, 2, idx.newlines.CountOnes())

	root := idx.Root()
	row0, ok := root.Index(0)
	require.True(t, ok)
	require.Equal(t, 3, row0.Count())
	for i, want := range []string{"a", "b", "c"} {
		f, ok := row0.Index(i)
		require.True(t, ok)
		s, ok := f.AsString()
		require.True(t, ok)
		require.Equal(t, want, s)
	}

	row1, ok := root.Index(1)
	require.True(t, ok)
	require.Equal(t, 3, row1.Count())
	for i, want := range []string{"x,y", "z", "w"} {
		f, ok := row1.Index(i)
		require.True(t, ok)
		s, ok := f.AsString()
		require.True(t, ok)
		require.Equal(t, want, s)
	}
}

func TestTSVConfig(t *testing.T) {
	src := []byte("a\tb\tc\n")
	idx := Build(src, TSV())
	require.Equal(t, 1, idx.RowCount())
	row0, _ := idx.Root().Index(0)
	require.Equal(t, 3, row0.Count())
}

func TestHeaderRow(t *testing.T) {
	src := []byte("name,age\nAlice,30\nBob,25\n")
	cfg := Default().WithHeader(true)
	idx := Build(src, cfg)

	require.Equal(t, []string{"name", "age"}, idx.Headers())
	require.Equal(t, 2, idx.RowCount())

	row0, ok := idx.Root().Index(0)
	require.True(t, ok)
	f, ok := row0.Field("age")
	require.True(t, ok)
	n, ok := f.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 30, n)
}

func TestLightweightIndexMatchesFull(t *testing.T) {
	src := []byte("a,b\nc,d\ne,f\n\"g,h\",i\n")
	full := Build(src, Default())
	lw := Build(src, Default().WithLightweight(true))

	require.Equal(t, full.RowCount(), lw.RowCount())
	require.Equal(t, full.markers.CountOnes(), lw.markers.CountOnes())
}

func TestBuildParallelMatchesScalar(t *testing.T) {
	var sb strings.Builder
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		if r.Float64() < 0.3 {
			sb.WriteString("\"")
			sb.WriteString("field,with\nembedded stuff")
			sb.WriteString("\"")
		} else {
			sb.WriteString("plainfield")
		}
		if (i+1)%4 == 0 {
			sb.WriteString("\n")
		} else {
			sb.WriteString(",")
		}
	}
	data := []byte(sb.String())

	scalar := Build(data, Default())
	parallel := BuildParallel(data, Default().WithWorkers(4))

	require.Equal(t, scalar.markers.CountOnes(), parallel.markers.CountOnes())
	require.Equal(t, scalar.newlines.CountOnes(), parallel.newlines.CountOnes())
	for i := 0; i < scalar.markers.CountOnes(); i++ {
		require.Equal(t, scalar.markers.Select1(i), parallel.markers.Select1(i), "marker %d", i)
	}
}

func TestEmptyInput(t *testing.T) {
	idx := Build([]byte{}, Default())
	require.Equal(t, 0, idx.RowCount())
}
