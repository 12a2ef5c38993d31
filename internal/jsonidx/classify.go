package jsonidx

// nodeKind tags what a BP-open event represents, stored alongside the
// open's source offset so the cursor can discriminate without re-reading
// the bytes.
type nodeKind uint8

const (
	kindNone nodeKind = iota
	kindObject
	kindArray
	kindString
	kindNumber
	kindBool
	kindNull
)

// isValueContinuation reports whether b can continue a number or literal
// token once InValue has started (digits, sign/exponent/decimal bytes for
// numbers, and the lowercase run of true/false/null).
func isValueContinuation(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == '.' || b == '+' || b == '-' || b == 'e' || b == 'E':
		return true
	case b >= 'a' && b <= 'z':
		return true
	default:
		return false
	}
}

func isValueStart(b byte) bool {
	switch {
	case b >= '0' && b <= '9':
		return true
	case b == '-':
		return true
	case b == 't' || b == 'f' || b == 'n':
		return true
	default:
		return false
	}
}

func valueStartKind(b byte) nodeKind {
	switch {
	case b == 't' || b == 'f':
		return kindBool
	case b == 'n':
		return kindNull
	default:
		return kindNumber
	}
}

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// classifyTop computes the (next state, phi) pair for byte b as seen from
// the "expecting a value or structural byte" context. It is also the
// basis classify(b, stateInValue) builds on when a value run ends.
func classifyTop(b byte) (state, phi) {
	switch {
	case b == '{':
		return stateTop, phi{ib: true, bpOpen: true, kind: kindObject}
	case b == '[':
		return stateTop, phi{ib: true, bpOpen: true, kind: kindArray}
	case b == '}' || b == ']':
		return stateTop, phi{ib: true, bpClose: true}
	case b == ',' || b == ':':
		return stateTop, phi{ib: true}
	case b == '"':
		return stateInString, phi{ib: true, bpOpen: true, kind: kindString}
	case isValueStart(b):
		return stateInValue, phi{ib: true, bpOpen: true, kind: valueStartKind(b)}
	case isWhitespace(b):
		return stateTop, phi{}
	default:
		// Construction never fails on byte content; an unexpected byte
		// outside any value is simply inert here. The separate strict
		// validator is what rejects it.
		return stateTop, phi{}
	}
}

// classify is the single per-(byte,state) rule table builder run once at
// init to populate transitionTable/phiTable. It is not on the scan hot
// path itself (the generated tables are).
func classify(b byte, s state) (state, phi) {
	switch s {
	case stateTop:
		return classifyTop(b)

	case stateInString:
		switch b {
		case '"':
			return stateTop, phi{bpClose: true}
		case '\\':
			return stateInEscape, phi{}
		default:
			return stateInString, phi{}
		}

	case stateInEscape:
		return stateInString, phi{}

	case stateInValue:
		if isValueContinuation(b) {
			return stateInValue, phi{}
		}
		// The value run ends here; this byte also carries whatever its
		// own top-level meaning is ("true," with no whitespace ends the
		// keyword and is itself a structural comma). A composite close
		// ('}'/']') on this same byte becomes a *second* close
		// (bpClose2), since bpClose here already accounts for ending
		// the value.
		next, top := classifyTop(b)
		return next, phi{
			ib:       top.ib,
			bpOpen:   top.bpOpen,
			bpClose:  true,
			bpClose2: top.bpClose,
			kind:     top.kind,
		}

	default:
		return stateTop, phi{}
	}
}
