package filesystem

import (
	"time"

	"github.com/wwsinagogogo/theia/uri"
)

// FileType classifies a resource. It is a small bitset so that symbolic links
// can combine with the file or directory bit.
type FileType uint32

const (
	// TypeUnknown is reported when the backend cannot classify the resource.
	TypeUnknown FileType = 0
	// TypeFile marks regular files.
	TypeFile FileType = 1
	// TypeDirectory marks directories.
	TypeDirectory FileType = 2
	// TypeSymbolicLink combines with TypeFile or TypeDirectory for links.
	TypeSymbolicLink FileType = 64
)

// Has reports whether t carries the given type bit.
func (t FileType) Has(bit FileType) bool {
	return t&bit == bit
}

// String returns a short log-friendly name.
func (t FileType) String() string {
	base := "unknown"
	switch {
	case t.Has(TypeFile):
		base = "file"
	case t.Has(TypeDirectory):
		base = "directory"
	}
	if t.Has(TypeSymbolicLink) {
		return base + "+symlink"
	}
	return base
}

// Stat is the metadata a provider reports for one resource. It is produced
// fresh on every Stat call and never cached inside this layer. Times are
// epoch milliseconds.
type Stat struct {
	Type  FileType
	MTime int64
	CTime int64
	Size  int64
}

// DirEntry is one (name, type) pair from a directory listing.
type DirEntry struct {
	Name string
	Type FileType
}

// FileStat is the resolved, caller-facing metadata snapshot for a resource.
// Children is populated only when a directory listing was requested and
// resolved. When metadata resolution was requested, MTime, CTime, Size and
// ETag are guaranteed to be populated.
type FileStat struct {
	Resource       uri.URI
	Name           string
	IsFile         bool
	IsDirectory    bool
	IsSymbolicLink bool
	MTime          int64
	CTime          int64
	Size           int64
	ETag           string
	Children       []*FileStat
}

// NewFileStat converts a provider Stat into a FileStat snapshot for resource.
// When withMetadata is set the etag is derived from mtime and size.
func NewFileStat(resource uri.URI, st Stat, withMetadata bool) *FileStat {
	fs := &FileStat{
		Resource:       resource,
		Name:           resource.Name(),
		IsFile:         st.Type.Has(TypeFile),
		IsDirectory:    st.Type.Has(TypeDirectory),
		IsSymbolicLink: st.Type.Has(TypeSymbolicLink),
		MTime:          st.MTime,
		CTime:          st.CTime,
		Size:           st.Size,
	}
	if withMetadata {
		fs.ETag = ETag(st.MTime, st.Size)
	}
	return fs
}

// ModTime returns the modification time as a time.Time.
func (f *FileStat) ModTime() time.Time {
	return time.UnixMilli(f.MTime)
}

// WatchOptions controls a watch registration.
type WatchOptions struct {
	// Recursive extends the watch to all descendants of the resource.
	Recursive bool
	// Excludes holds glob patterns whose matches are not reported.
	Excludes []string
}

// DeleteOptions controls a delete operation.
type DeleteOptions struct {
	// Recursive allows deleting non-empty directories. When false, deleting a
	// non-empty directory must fail rather than silently recurse.
	Recursive bool
	// UseTrash routes the deletion through the backend trash. Only honored by
	// providers advertising CapTrash.
	UseTrash bool
}

// RenameOptions controls a rename operation.
type RenameOptions struct {
	// Overwrite permits replacing an existing target. Without it, a rename
	// onto an existing resource fails with FileExists.
	Overwrite bool
}

// CopyOptions controls a provider-native folder copy.
type CopyOptions struct {
	Overwrite bool
}

// WriteFileOptions controls a whole-file write.
type WriteFileOptions struct {
	// Overwrite permits replacing existing content.
	Overwrite bool
	// Create permits creating the file when absent.
	Create bool
}

// OpenOptions controls opening a file handle.
type OpenOptions struct {
	// Create permits creating the file when absent.
	Create bool
}
