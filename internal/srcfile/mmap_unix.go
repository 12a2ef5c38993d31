//go:build linux || darwin

package srcfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapFile memory-maps f read-only via golang.org/x/sys/unix.
func mmapFile(f *os.File) (data []byte, mapped bool, err error) {
	st, err := f.Stat()
	if err != nil {
		return nil, false, err
	}
	size := st.Size()
	if size == 0 {
		return []byte{}, false, nil
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func munmapFile(data []byte) error {
	return unix.Munmap(data)
}
