package archive

import (
	"os"
	"time"
)

// entryInfo wraps FileInfo so Name() returns a
// slash-separated path instead of the base name.
type entryInfo struct {
	os.FileInfo
	name string
}

// Name returns the path.
func (e *entryInfo) Name() string {
	return e.name
}

// withName returns info renamed to name.
func withName(info os.FileInfo, name string) os.FileInfo {
	if e, ok := info.(*entryInfo); ok {
		info = e.FileInfo
	}

	return &entryInfo{info, name}
}

// FileInfo adapts Info to os.FileInfo.
type FileInfo struct {
	Info
}

// Name returns the entry name.
func (i *FileInfo) Name() string {
	return i.Info.Name
}

// Size returns the uncompressed size recorded in the header.
func (i *FileInfo) Size() int64 {
	return i.Info.Size
}

// Mode returns the permission bits, with os.ModeDir set for directories.
func (i *FileInfo) Mode() os.FileMode {
	if i.Info.Dir {
		return i.Info.Mode | os.ModeDir
	}
	return i.Info.Mode
}

// ModTime returns the entry's modification time.
func (i *FileInfo) ModTime() time.Time {
	return i.Info.Modified
}

// IsDir reports whether the entry is a directory.
func (i *FileInfo) IsDir() bool {
	return i.Info.Dir
}

// Sys always returns nil.
func (i *FileInfo) Sys() interface{} {
	return nil
}

// Info is the header of an archive entry with no file behind it:
// generated contents passed to Archive.Add, or the rewritten
// meta-data a Transformer returns. Name is the slash-separated
// entry name within the archive.
type Info struct {
	Name     string
	Size     int64
	Mode     os.FileMode
	Modified time.Time
	Dir      bool
}

// FileInfo returns the header as an os.FileInfo.
func (i Info) FileInfo() os.FileInfo {
	return &FileInfo{i}
}
