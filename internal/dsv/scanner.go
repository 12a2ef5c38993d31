package dsv

import "github.com/succinctly/semidx/internal/bitv"

// scanRange runs the quote-aware marker scan over src[0:len(src)], assuming
// the scan starts outside any quoted field (the caller is responsible for
// that precondition; BuildParallel only calls this on chunks that begin
// right after a newline that lies outside any quoted field).
//
// Quote toggling is unconditional on every quote byte: a doubled quote
// ("") inside a quoted field toggles twice and nets out correctly for
// escaping, but this also means an unbalanced quote byte anywhere flips
// the state for the rest of the chunk. Garbage in, garbage out: the
// scan indexes whatever bytes it is given.
func scanRange(src []byte, cfg Config) (markers, newlines *bitv.Builder) {
	markers = bitv.NewBuilder(len(src))
	newlines = bitv.NewBuilder(len(src))

	inQuote := false
	for _, b := range src {
		if b == cfg.Quote {
			inQuote = !inQuote
		}
		isDelim := b == cfg.Delimiter
		isNL := b == cfg.Newline
		if !inQuote && (isDelim || isNL) {
			markers.Push(true)
		} else {
			markers.Push(false)
		}
		if !inQuote && isNL {
			newlines.Push(true)
		} else {
			newlines.Push(false)
		}
	}
	return markers, newlines
}
