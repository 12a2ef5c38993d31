package dsv

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/succinctly/semidx/internal/bitv"
)

// TestScanRangeSIMDMatchesScalar is the DSV instance of the "chunked ≡
// scalar" property: scanRangeSIMD must produce bit-for-bit identical
// markers/newlines output to the scalar reference scanRange, regardless of
// which tier simd.Selected picked for this process.
func TestScanRangeSIMDMatchesScalar(t *testing.T) {
	cfg := Default()

	cases := []string{
		"a,b,c\n\"x,y\",z,w\n",
		"",
		",",
		"\"\"\n",
		"\"a\"\"b\",c\n",
		strings.Repeat("field1,field2,\"quoted,value\"\n", 5),
	}
	for _, src := range cases {
		wantM, wantN := scanRange([]byte(src), cfg)
		gotM, gotN := scanRangeSIMD([]byte(src), cfg)
		requireSameBits(t, wantM, gotM)
		requireSameBits(t, wantN, gotN)
	}

	rng := rand.New(rand.NewSource(1))
	src := randomQuotedCSV(rng, 1<<20, 0.3)
	wantM, wantN := scanRange(src, cfg)
	gotM, gotN := scanRangeSIMD(src, cfg)
	requireSameBits(t, wantM, gotM)
	requireSameBits(t, wantN, gotN)
}

func requireSameBits(t *testing.T, want, got *bitv.Builder) {
	t.Helper()
	wantBV, gotBV := want.Freeze(), got.Freeze()
	require.Equal(t, wantBV.Len(), gotBV.Len())
	for i := 0; i < wantBV.Len(); i++ {
		require.Equalf(t, wantBV.Get(i), gotBV.Get(i), "bit %d differs", i)
	}
}

// randomQuotedCSV generates a pseudo-random CSV blob with the given
// approximate fraction of fields wrapped in quotes (with embedded
// delimiters, newlines, and doubled-quote escapes), for the SIMD
// equivalence fuzz check.
func randomQuotedCSV(rng *rand.Rand, targetBytes int, quotedFrac float64) []byte {
	var sb strings.Builder
	words := []string{"alpha", "beta", "gamma", "delta,inner", "line\nbreak", `has"quote`, "plain"}
	for sb.Len() < targetBytes {
		fieldsPerRow := 3 + rng.Intn(4)
		for i := 0; i < fieldsPerRow; i++ {
			if i > 0 {
				sb.WriteByte(',')
			}
			w := words[rng.Intn(len(words))]
			if rng.Float64() < quotedFrac || strings.ContainsAny(w, ",\n\"") {
				sb.WriteByte('"')
				sb.WriteString(strings.ReplaceAll(w, `"`, `""`))
				sb.WriteByte('"')
			} else {
				sb.WriteString(w)
			}
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
