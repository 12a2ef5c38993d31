// Package srcfile provides an optional mmap-backed byte source for large
// documents. A semi-index only ever reads its source bytes, so a
// read-only memory map avoids copying multi-gigabyte files into the heap
// before scanning them.
package srcfile

import "os"

// Source is a closeable byte slice: either a memory-mapped file (Close
// unmaps it) or a plain in-memory read (Close is a no-op).
type Source struct {
	Bytes  []byte
	mapped bool
}

// Open mmaps path read-only. On platforms without a native mmap
// implementation wired here it falls back to reading the whole file into
// memory.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, mapped, err := mmapFile(f)
	if err != nil {
		return nil, err
	}
	return &Source{Bytes: data, mapped: mapped}, nil
}

// Close unmaps the file if it was memory-mapped; a no-op otherwise.
func (s *Source) Close() error {
	if !s.mapped {
		return nil
	}
	s.mapped = false
	return munmapFile(s.Bytes)
}
