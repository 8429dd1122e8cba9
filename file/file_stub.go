//go:build !linux

// File: file/file_stub.go
// Author: momentics <momentics@gmail.com>
//
// Non-Linux platforms have no portable O_DIRECT equivalent reachable
// without cgo; this backend falls back to ordinary buffered I/O and
// reports no alignment requirement.

package file

import "os"

func openDirect(path string, flags int, mode os.FileMode) (*os.File, error) {
	return os.OpenFile(path, flags, mode)
}

func queryAlignment(f *os.File) DMAAlignment {
	return NoAlignment
}

func preadAt(f *os.File, buf []byte, off int64) (int, error) {
	return f.ReadAt(buf, off)
}

func pwriteAt(f *os.File, buf []byte, off int64) (int, error) {
	return f.WriteAt(buf, off)
}

func isEINVAL(err error) bool { return false }

func statfsType(path string) string { return "unknown" }
