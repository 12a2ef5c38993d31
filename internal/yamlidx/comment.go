package yamlidx

import "sort"

// CommentKind is the attachment of a comment relative to its owning node:
// a comment alone on its own line attaches as Head to the next node the
// oracle opens, whatever that node's indentation; a trailing comment
// on a value's own line attaches as Line; a blank line between a comment
// and the next node breaks Head attachment, downgrading the comment to a
// dangling Foot of the innermost open block container (or of the virtual
// document root when none is open). Comments left over at the end of the
// input attach as Foot to the virtual document root; a comment after the
// last sibling of a nested block is not attached to that block.
type CommentKind uint8

const (
	CommentHead CommentKind = iota
	CommentLine
	CommentFoot
)

// CommentEntry is one comment, sparse-indexed by the BP position of the
// node it attaches to.
type CommentEntry struct {
	NodeBP int
	Start  int
	End    int
	Kind   CommentKind
}

// Text returns the comment's raw bytes, including the leading '#'.
func (e CommentEntry) Text(src []byte) []byte { return src[e.Start:e.End] }

// TextContent returns the comment text with the leading '#' and one
// optional following space stripped.
func (e CommentEntry) TextContent(src []byte) []byte {
	raw := e.Text(src)
	if len(raw) == 0 {
		return raw
	}
	rest := raw
	if rest[0] == '#' {
		rest = rest[1:]
	}
	if len(rest) > 0 && rest[0] == ' ' {
		rest = rest[1:]
	}
	return rest
}

// commentSuperblockThreshold: below this many entries a binary search over
// the sorted slice is fast enough that a superblock index isn't worth
// building.
const commentSuperblockThreshold = 100

const commentSuperblockSize = 64

// CommentIndex is a sparse, BP-position-sorted store of comments, with an
// optional superblock index (built only once entries exceeds
// commentSuperblockThreshold) for O(1) approximate lookup before a short
// linear scan.
type CommentIndex struct {
	entries    []CommentEntry
	superblock []int32
	maxBP      int
}

func newCommentIndex() *CommentIndex {
	return &CommentIndex{}
}

func (ci *CommentIndex) push(e CommentEntry) {
	ci.entries = append(ci.entries, e)
	if e.NodeBP > ci.maxBP {
		ci.maxBP = e.NodeBP
	}
}

// finalize sorts entries by BP position and, if warranted, builds the
// superblock index. Called once after the oracle finishes scanning.
func (ci *CommentIndex) finalize() {
	sort.SliceStable(ci.entries, func(i, j int) bool {
		return ci.entries[i].NodeBP < ci.entries[j].NodeBP
	})
	if len(ci.entries) > commentSuperblockThreshold {
		ci.buildSuperblock()
	}
}

func (ci *CommentIndex) buildSuperblock() {
	numSuperblocks := ci.maxBP/commentSuperblockSize + 2
	idx := make([]int32, numSuperblocks+1)
	entryIdx := 0
	for sb := 0; sb < numSuperblocks; sb++ {
		start := int32(sb * commentSuperblockSize)
		for entryIdx < len(ci.entries) && int32(ci.entries[entryIdx].NodeBP) < start {
			entryIdx++
		}
		idx[sb] = int32(entryIdx)
	}
	idx[numSuperblocks] = int32(len(ci.entries))
	ci.superblock = idx
}

// findRange returns the [start,end) slice bounds of entries for bpPos.
func (ci *CommentIndex) findRange(bpPos int) (int, int) {
	if len(ci.entries) == 0 {
		return 0, 0
	}
	lo, hi := 0, len(ci.entries)
	if ci.superblock != nil {
		sb := bpPos / commentSuperblockSize
		if sb < len(ci.superblock) {
			lo = int(ci.superblock[sb])
		} else {
			lo = len(ci.entries)
		}
		if sb+1 < len(ci.superblock) {
			hi = int(ci.superblock[sb+1])
		} else {
			hi = len(ci.entries)
		}
	}
	slice := ci.entries[lo:hi]
	first := sort.Search(len(slice), func(i int) bool { return slice[i].NodeBP >= bpPos })
	last := first
	for last < len(slice) && slice[last].NodeBP == bpPos {
		last++
	}
	return lo + first, lo + last
}

// Get returns all comments attached to bpPos, in source order.
func (ci *CommentIndex) Get(bpPos int) []CommentEntry {
	start, end := ci.findRange(bpPos)
	return ci.entries[start:end]
}

// GetKind returns the first comment of the given kind attached to bpPos,
// or false if none exists.
func (ci *CommentIndex) GetKind(bpPos int, kind CommentKind) (CommentEntry, bool) {
	for _, e := range ci.Get(bpPos) {
		if e.Kind == kind {
			return e, true
		}
	}
	return CommentEntry{}, false
}

// Len returns the total number of comments recorded.
func (ci *CommentIndex) Len() int { return len(ci.entries) }

// TagEntry records an explicit YAML tag (`!foo`, `!!str`, ...) attached to
// the node opened at BP position NodeBP. Tags are recorded and skipped by
// the oracle; no schema resolution is applied to them.
type TagEntry struct {
	NodeBP int
	Start  int
	End    int
}

// Text returns the tag's raw bytes (including the leading '!').
func (e TagEntry) Text(src []byte) []byte { return src[e.Start:e.End] }
