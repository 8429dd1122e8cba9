//go:build linux

// File: file/file_linux.go
// Author: momentics <momentics@gmail.com>

package file

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

func openDirect(path string, flags int, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flags|unix.O_DIRECT, mode)
}

func queryAlignment(f *os.File) DMAAlignment {
	// A statx(2) call could report the exact logical/physical block size
	// per-filesystem; DefaultDMAAlignment matches the common NVMe and
	// blockdev case without it.
	return DefaultDMAAlignment
}

func preadAt(f *os.File, buf []byte, off int64) (int, error) {
	return unix.Pread(int(f.Fd()), buf, off)
}

func pwriteAt(f *os.File, buf []byte, off int64) (int, error) {
	return unix.Pwrite(int(f.Fd()), buf, off)
}

func isEINVAL(err error) bool {
	return errors.Is(err, unix.EINVAL)
}

func statfsType(path string) string {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return "unknown"
	}
	return fmt.Sprintf("0x%x", uint64(st.Type))
}
