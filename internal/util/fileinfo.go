package util

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// FileInfo contains the file attributes used to decide whether a result file
// is still fresh.
type FileInfo struct {
	ModTime int64  // Last modification time (Unix seconds)
	Size    int64  // File size in bytes
	Inode   uint64 // Inode number
}

// GetFileInfo stats path. Supported on Linux and macOS.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var sys unix.Stat_t
	if err := unix.Stat(path, &sys); err != nil {
		return nil, err
	}

	return &FileInfo{
		ModTime: stat.ModTime().Unix(),
		Size:    stat.Size(),
		Inode:   uint64(sys.Ino),
	}, nil
}

// Age returns how long ago the file was modified.
func (fi *FileInfo) Age() time.Duration {
	return time.Since(time.Unix(fi.ModTime, 0))
}
