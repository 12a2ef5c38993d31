package jsonidx

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/succinctly/semidx/internal/blob"
	"github.com/succinctly/semidx/internal/bp"
)

// SaveTo serializes idx's IB and BP bit-vectors plus the offsets/kinds
// side tables to w via internal/blob's versioned binary format. src is
// not written; LoadIndex takes it back from the caller, since a
// semi-index never owns a copy of the source bytes it was built over.
func (idx *Index) SaveTo(w io.Writer) error {
	if err := blob.WriteBitVector(w, idx.ib); err != nil {
		return fmt.Errorf("jsonidx: writing IB: %w", err)
	}
	if err := blob.WriteBitVector(w, idx.bp.Bits()); err != nil {
		return fmt.Errorf("jsonidx: writing BP: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, int64(len(idx.offsets))); err != nil {
		return fmt.Errorf("jsonidx: writing offsets length: %w", err)
	}
	if err := binary.Write(w, binary.BigEndian, idx.offsets); err != nil {
		return fmt.Errorf("jsonidx: writing offsets: %w", err)
	}
	kinds := make([]uint8, len(idx.kinds))
	for i, k := range idx.kinds {
		kinds[i] = uint8(k)
	}
	if err := binary.Write(w, binary.BigEndian, kinds); err != nil {
		return fmt.Errorf("jsonidx: writing kinds: %w", err)
	}
	return nil
}

// LoadIndex reconstructs an Index previously written by SaveTo. src must
// be the exact same byte slice (or an identical copy) the index was
// originally built over: RawBytes/AsString/AsInt64/etc. read offsets
// into it directly, and LoadIndex has no way to verify that the caller
// supplied a matching source.
func LoadIndex(r io.Reader, src []byte) (*Index, error) {
	ib, err := blob.ReadBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("jsonidx: reading IB: %w", err)
	}
	bpBits, err := blob.ReadBitVector(r)
	if err != nil {
		return nil, fmt.Errorf("jsonidx: reading BP: %w", err)
	}
	bpTree := bp.BuildWithBlockSize(bpBits.Words(), bpBits.Len(), bp.DefaultBlockSize)

	var offsetLen int64
	if err := binary.Read(r, binary.BigEndian, &offsetLen); err != nil {
		return nil, fmt.Errorf("jsonidx: reading offsets length: %w", err)
	}
	offsets := make([]int32, offsetLen)
	if err := binary.Read(r, binary.BigEndian, offsets); err != nil {
		return nil, fmt.Errorf("jsonidx: reading offsets: %w", err)
	}
	rawKinds := make([]uint8, offsetLen)
	if err := binary.Read(r, binary.BigEndian, rawKinds); err != nil {
		return nil, fmt.Errorf("jsonidx: reading kinds: %w", err)
	}
	kinds := make([]nodeKind, offsetLen)
	for i, k := range rawKinds {
		kinds[i] = nodeKind(k)
	}

	return &Index{
		src:     src,
		ib:      ib,
		bp:      bpTree,
		offsets: offsets,
		kinds:   kinds,
	}, nil
}
