package dsv

import (
	"bytes"
	"runtime"
	"sync"

	"github.com/succinctly/semidx/internal/bitv"
	"github.com/succinctly/semidx/internal/cursor"
	"github.com/succinctly/semidx/internal/simd"
)

// rankSelect is the common surface both the full bitv.BitVector and the
// Lightweight cumulative-rank index expose; Index talks to markers/
// newlines only through this so Build and BuildParallel don't need to
// branch on cfg.Lightweight anywhere except construction.
type rankSelect interface {
	Rank1(i int) int
	Select1(k int) int
	CountOnes() int
}

// Index is a built, immutable semi-index over one delimiter-separated
// document's bytes.
type Index struct {
	src      []byte
	cfg      Config
	markers  rankSelect
	newlines rankSelect
	headers  []string
	headerOf map[string]int
}

func freezeMarkers(b *bitv.Builder, textLen int, cfg Config) rankSelect {
	if cfg.Lightweight {
		return buildLightweightRank(b, textLen)
	}
	if cfg.SelectSampleRate > 0 {
		return b.FreezeWithOptions(cfg.SelectSampleRate)
	}
	return b.Freeze()
}

// Build scans src in a single pass and constructs a DSV semi-index.
// When the process selected a vectorized tier at startup (simd.Selected),
// the quote-parity mask is computed 64 bytes at a time via scanRangeSIMD
// instead of toggling a boolean per byte; both produce bit-identical
// markers/newlines (see TestScanRangeSIMDMatchesScalar).
func Build(src []byte, cfg Config) *Index {
	var markersB, newlinesB *bitv.Builder
	if simd.Selected == simd.LevelScalar {
		markersB, newlinesB = scanRange(src, cfg)
	} else {
		markersB, newlinesB = scanRangeSIMD(src, cfg)
	}
	idx := &Index{
		src:      src,
		cfg:      cfg,
		markers:  freezeMarkers(markersB, len(src), cfg),
		newlines: freezeMarkers(newlinesB, len(src), cfg),
	}
	idx.loadHeader()
	return idx
}

// BuildParallel scans src using one goroutine per chunk, splitting only at
// byte offsets known to lie outside any quoted field (found via
// findSafeRecordBoundary).
// Each worker's sub-scan is independent (the boundary search guarantees
// every chunk starts with inQuote=false) and results are concatenated in
// order.
func BuildParallel(src []byte, cfg Config) *Index {
	workers := cfg.Workers
	explicit := workers > 0
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 2 || (!explicit && len(src) < 1<<20) {
		return Build(src, cfg)
	}

	boundaries := make([]int, workers+1)
	boundaries[0] = 0
	boundaries[workers] = len(src)
	chunkSize := len(src) / workers
	for i := 1; i < workers; i++ {
		hint := i * chunkSize
		if hint < len(src) {
			boundaries[i] = findSafeRecordBoundary(src, hint, cfg)
		} else {
			boundaries[i] = len(src)
		}
	}

	type chunkResult struct {
		markers, newlines *bitv.Builder
	}
	results := make([]chunkResult, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		start, end := boundaries[i], boundaries[i+1]
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(i, start, end int) {
			defer wg.Done()
			var m, n *bitv.Builder
			if simd.Selected == simd.LevelScalar {
				m, n = scanRange(src[start:end], cfg)
			} else {
				m, n = scanRangeSIMD(src[start:end], cfg)
			}
			results[i] = chunkResult{markers: m, newlines: n}
		}(i, start, end)
	}
	wg.Wait()

	mergedMarkers := bitv.NewBuilder(len(src))
	mergedNewlines := bitv.NewBuilder(len(src))
	for i := 0; i < workers; i++ {
		r := results[i]
		if r.markers == nil {
			continue
		}
		appendBuilder(mergedMarkers, r.markers)
		appendBuilder(mergedNewlines, r.newlines)
	}

	idx := &Index{
		src:      src,
		cfg:      cfg,
		markers:  freezeMarkers(mergedMarkers, len(src), cfg),
		newlines: freezeMarkers(mergedNewlines, len(src), cfg),
	}
	idx.loadHeader()
	return idx
}

// appendBuilder copies every bit of src onto the end of dst. Bit-at-a-time
// rather than a word-level splice: chunk boundaries fall at arbitrary byte
// (hence arbitrary bit) offsets, and the traffic here is a one-time merge
// at build time, not a per-query hot path.
func appendBuilder(dst, src *bitv.Builder) {
	frozen := src.Freeze()
	for i := 0; i < frozen.Len(); i++ {
		dst.Push(frozen.Get(i))
	}
}

// findSafeRecordBoundary returns the position just after the first newline
// at or after hint that lies outside any quoted field, i.e. a position
// guaranteed to begin outside a quoted field. Quote state at hint is the
// parity of every quote byte in data[:hint], the same unconditional
// toggling scanRange applies.
func findSafeRecordBoundary(data []byte, hint int, cfg Config) int {
	if hint >= len(data) {
		return len(data)
	}
	inQuote := bytes.Count(data[:hint], []byte{cfg.Quote})%2 == 1
	for i := hint; i < len(data); i++ {
		switch data[i] {
		case cfg.Quote:
			inQuote = !inQuote
		case cfg.Newline:
			if !inQuote {
				return i + 1
			}
		}
	}
	return len(data)
}

func (idx *Index) loadHeader() {
	if !idx.cfg.HasHeader || idx.newlines.CountOnes() == 0 {
		return
	}
	row := idx.rowSpan(0)
	fields := idx.fieldsInRange(row.start, row.end)
	idx.headers = make([]string, len(fields))
	idx.headerOf = make(map[string]int, len(fields))
	for i, f := range fields {
		name := unquoteField(idx.src[f.start:f.end], idx.cfg)
		idx.headers[i] = name
		idx.headerOf[name] = i
	}
}

// RowCount returns the number of records (newline count).
func (idx *Index) RowCount() int {
	n := idx.newlines.CountOnes()
	if idx.cfg.HasHeader && n > 0 {
		n--
	}
	return n
}

// Headers returns the parsed header row, or nil if cfg.HasHeader is false.
func (idx *Index) Headers() []string { return idx.headers }

type fieldSpan struct{ start, end int } // [start,end) raw bytes, delimiter excluded

type rowSpanT struct{ start, end int } // [start,end) raw bytes, trailing newline excluded

func (idx *Index) rowSpan(r int) rowSpanT {
	start := 0
	if r > 0 {
		start = idx.newlines.Select1(r-1) + 1
	}
	end := idx.newlines.Select1(r)
	if end < 0 {
		end = len(idx.src)
	}
	return rowSpanT{start: start, end: end}
}

// fieldsInRange returns each field's [start,end) span within [rowStart,
// rowEnd), splitting on markers (delimiters; the row's own trailing
// newline marker, if any, is outside rowEnd and never consulted here).
func (idx *Index) fieldsInRange(rowStart, rowEnd int) []fieldSpan {
	var out []fieldSpan
	fieldStart := rowStart
	k := idx.markers.Rank1(rowStart)
	total := idx.markers.CountOnes()
	for k < total {
		pos := idx.markers.Select1(k)
		if pos < 0 || pos >= rowEnd {
			break
		}
		out = append(out, fieldSpan{start: fieldStart, end: pos})
		fieldStart = pos + 1
		k++
	}
	out = append(out, fieldSpan{start: fieldStart, end: rowEnd})
	return out
}

// unquoteField strips a field's surrounding quotes (if present) and
// collapses doubled quotes.
func unquoteField(raw []byte, cfg Config) string {
	if len(raw) >= 2 && raw[0] == cfg.Quote && raw[len(raw)-1] == cfg.Quote {
		inner := raw[1 : len(raw)-1]
		doubled := []byte{cfg.Quote, cfg.Quote}
		single := []byte{cfg.Quote}
		if bytes.Contains(inner, doubled) {
			inner = bytes.ReplaceAll(inner, doubled, single)
		}
		return string(inner)
	}
	return string(raw)
}

// Root returns a cursor over the document as an array of rows (or, if
// cfg.HasHeader is set, an array of rows *after* the header).
func (idx *Index) Root() cursor.Cursor {
	return dsvCursor{idx: idx, kind: cursor.KindArray, row: -1, field: -1}
}
