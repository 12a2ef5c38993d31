//go:build !linux && !darwin

package srcfile

import (
	"io"
	"os"
)

// mmapFile falls back to reading the whole file into memory on platforms
// without a wired mmap syscall path.
func mmapFile(f *os.File) (data []byte, mapped bool, err error) {
	data, err = io.ReadAll(f)
	return data, false, err
}

func munmapFile(data []byte) error {
	return nil
}
