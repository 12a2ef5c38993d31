// Package blob implements the optional versioned binary serialization of
// a built semi-index's bit-vectors: magic, version, n_bits, words, the
// L1/L2 rank directories, and the select sample index, LZ4-compressed.
// There is no forward/backward compatibility guarantee: a version
// mismatch on load is a hard error.
package blob

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/succinctly/semidx/internal/bitv"
)

// Magic is the fixed 4-byte header every blob starts with.
const Magic = "SIDX"

// Version is the current on-disk format version. Bumped whenever the
// field layout below changes; ReadBitVector rejects any other value.
const Version uint32 = 1

// ErrVersionMismatch is returned when a blob's version field does not
// match the version this build understands.
var ErrVersionMismatch = errors.New("blob: version mismatch")

// ErrBadMagic is returned when a blob does not start with Magic.
var ErrBadMagic = errors.New("blob: bad magic header")

// WriteBitVector serializes bv's full rank/select directory (n_bits,
// words, L1, L2, sample_index) to w, LZ4-compressing the payload as a
// single block; the per-field framing below is what lets a reader recover
// field boundaries after decompression.
func WriteBitVector(w io.Writer, bv *bitv.BitVector) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.BigEndian, Version); err != nil {
		return err
	}

	var raw bytes.Buffer
	writeUint64Slice := func(s []uint64) error {
		if err := binary.Write(&raw, binary.BigEndian, int64(len(s))); err != nil {
			return err
		}
		return binary.Write(&raw, binary.BigEndian, s)
	}
	writeUint32Slice := func(s []uint32) error {
		if err := binary.Write(&raw, binary.BigEndian, int64(len(s))); err != nil {
			return err
		}
		return binary.Write(&raw, binary.BigEndian, s)
	}
	writeUint16Slice := func(s []uint16) error {
		if err := binary.Write(&raw, binary.BigEndian, int64(len(s))); err != nil {
			return err
		}
		return binary.Write(&raw, binary.BigEndian, s)
	}

	if err := binary.Write(&raw, binary.BigEndian, int64(bv.Len())); err != nil {
		return err
	}
	if err := binary.Write(&raw, binary.BigEndian, int64(bv.SampleRate())); err != nil {
		return err
	}
	if err := writeUint64Slice(bv.Words()); err != nil {
		return err
	}
	if err := writeUint32Slice(bv.L1Directory()); err != nil {
		return err
	}
	if err := writeUint16Slice(bv.L2Directory()); err != nil {
		return err
	}
	if err := writeUint32Slice(bv.Samples()); err != nil {
		return err
	}

	var comp bytes.Buffer
	lw := lz4.NewWriter(&comp)
	if _, err := lw.Write(raw.Bytes()); err != nil {
		return err
	}
	if err := lw.Close(); err != nil {
		return err
	}

	if err := binary.Write(w, binary.BigEndian, int64(comp.Len())); err != nil {
		return err
	}
	_, err := w.Write(comp.Bytes())
	return err
}

// ReadBitVector reconstructs a BitVector previously written by
// WriteBitVector, trusting the serialized L1/L2/sample_index verbatim
// (bitv.FromParts) rather than rebuilding them from the word slice.
func ReadBitVector(r io.Reader) (*bitv.BitVector, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("blob: reading magic: %w", err)
	}
	if string(magic) != Magic {
		return nil, ErrBadMagic
	}

	var version uint32
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return nil, fmt.Errorf("blob: reading version: %w", err)
	}
	if version != Version {
		return nil, fmt.Errorf("%w: blob is v%d, this build reads v%d", ErrVersionMismatch, version, Version)
	}

	var compLen int64
	if err := binary.Read(r, binary.BigEndian, &compLen); err != nil {
		return nil, fmt.Errorf("blob: reading block length: %w", err)
	}
	comp := make([]byte, compLen)
	if _, err := io.ReadFull(r, comp); err != nil {
		return nil, fmt.Errorf("blob: reading compressed block: %w", err)
	}

	lr := lz4.NewReader(bytes.NewReader(comp))
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, lr); err != nil {
		return nil, fmt.Errorf("blob: decompressing block: %w", err)
	}
	body := bytes.NewReader(raw.Bytes())

	readInt64 := func() (int64, error) {
		var v int64
		err := binary.Read(body, binary.BigEndian, &v)
		return v, err
	}

	nBits, err := readInt64()
	if err != nil {
		return nil, fmt.Errorf("blob: reading n_bits: %w", err)
	}
	sampleRate, err := readInt64()
	if err != nil {
		return nil, fmt.Errorf("blob: reading sample_rate: %w", err)
	}

	wordLen, err := readInt64()
	if err != nil {
		return nil, fmt.Errorf("blob: reading words length: %w", err)
	}
	words := make([]uint64, wordLen)
	if err := binary.Read(body, binary.BigEndian, words); err != nil {
		return nil, fmt.Errorf("blob: reading words: %w", err)
	}

	l1Len, err := readInt64()
	if err != nil {
		return nil, fmt.Errorf("blob: reading L1 length: %w", err)
	}
	l1 := make([]uint32, l1Len)
	if err := binary.Read(body, binary.BigEndian, l1); err != nil {
		return nil, fmt.Errorf("blob: reading L1: %w", err)
	}

	l2Len, err := readInt64()
	if err != nil {
		return nil, fmt.Errorf("blob: reading L2 length: %w", err)
	}
	l2 := make([]uint16, l2Len)
	if err := binary.Read(body, binary.BigEndian, l2); err != nil {
		return nil, fmt.Errorf("blob: reading L2: %w", err)
	}

	sampleLen, err := readInt64()
	if err != nil {
		return nil, fmt.Errorf("blob: reading sample_index length: %w", err)
	}
	samples := make([]uint32, sampleLen)
	if err := binary.Read(body, binary.BigEndian, samples); err != nil {
		return nil, fmt.Errorf("blob: reading sample_index: %w", err)
	}

	return bitv.FromParts(words, int(nBits), l1, l2, int(sampleRate), samples), nil
}
