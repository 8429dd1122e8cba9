// File: file/directory.go
// Author: momentics <momentics@gmail.com>
//
// Filesystem metadata operations from spec.md §6's File API that are
// not tied to a DMA-capable handle, each returning a future rather than
// blocking the calling reactor.

package file

import (
	"os"

	"github.com/momentics/corereactor/future"
)

// FileType classifies a path for the Stat operation.
type FileType int

const (
	FileTypeNotFound FileType = iota
	FileTypeRegular
	FileTypeDirectory
	FileTypeOther
)

// OpenDirectory opens path for directory-entry iteration.
func OpenDirectory(sched future.Scheduler, path string) *future.Future[*os.File] {
	return future.Apply(sched, func() (*os.File, error) {
		return os.Open(path)
	})
}

// MakeDirectory creates path, failing if it already exists.
func MakeDirectory(sched future.Scheduler, path string) *future.Future[struct{}] {
	return future.Apply(sched, func() (struct{}, error) {
		return struct{}{}, os.Mkdir(path, 0o755)
	})
}

// TouchDirectory creates path and any missing parents, succeeding if it
// already exists.
func TouchDirectory(sched future.Scheduler, path string) *future.Future[struct{}] {
	return future.Apply(sched, func() (struct{}, error) {
		return struct{}{}, os.MkdirAll(path, 0o755)
	})
}

// Stat classifies the file at path.
func Stat(sched future.Scheduler, path string) *future.Future[FileType] {
	return future.Apply(sched, func() (FileType, error) {
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return FileTypeNotFound, nil
		}
		if err != nil {
			return FileTypeNotFound, err
		}
		switch {
		case info.IsDir():
			return FileTypeDirectory, nil
		case info.Mode().IsRegular():
			return FileTypeRegular, nil
		default:
			return FileTypeOther, nil
		}
	})
}

// Size reports the logical size of the file at path.
func Size(sched future.Scheduler, path string) *future.Future[int64] {
	return future.Apply(sched, func() (int64, error) {
		info, err := os.Stat(path)
		if err != nil {
			return 0, err
		}
		return info.Size(), nil
	})
}

// Exists reports whether path names an existing filesystem entry.
func Exists(sched future.Scheduler, path string) *future.Future[bool] {
	return future.Apply(sched, func() (bool, error) {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return true, nil
	})
}

// FileSystemAt reports an identifier for the filesystem backing path
// (its statfs type on Linux, "unknown" elsewhere). Nothing in this
// module derives DMA alignment from it.
func FileSystemAt(sched future.Scheduler, path string) *future.Future[string] {
	return future.Apply(sched, func() (string, error) {
		return statfsType(path), nil
	})
}

// RemoveFile deletes path.
func RemoveFile(sched future.Scheduler, path string) *future.Future[struct{}] {
	return future.Apply(sched, func() (struct{}, error) {
		return struct{}{}, os.Remove(path)
	})
}

// RenameFile renames oldpath to newpath.
func RenameFile(sched future.Scheduler, oldpath, newpath string) *future.Future[struct{}] {
	return future.Apply(sched, func() (struct{}, error) {
		return struct{}{}, os.Rename(oldpath, newpath)
	})
}

// LinkFile creates newpath as a hard link to oldpath.
func LinkFile(sched future.Scheduler, oldpath, newpath string) *future.Future[struct{}] {
	return future.Apply(sched, func() (struct{}, error) {
		return struct{}{}, os.Link(oldpath, newpath)
	})
}
