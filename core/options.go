package core

import (
	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

// ResolveOptions controls metadata resolution.
type ResolveOptions struct {
	// ResolveChildren populates Children for directories.
	ResolveChildren bool
	// ResolveMetadata guarantees mtime, ctime, size and etag are populated
	// on every returned FileStat.
	ResolveMetadata bool
}

// ReadFileOptions controls a service-level read.
type ReadFileOptions struct {
	// ETag, when set and not filesystem.ETagDisabled, makes the read fail
	// with ResultNotModifiedSince if the current content still carries the
	// same fingerprint.
	ETag string
}

// WriteOptions controls a service-level write.
type WriteOptions struct {
	// ETag, when set and not filesystem.ETagDisabled, makes the write fail
	// with ResultModifiedSince if the current content no longer carries the
	// same fingerprint. This detects, not prevents, a lost-update race.
	ETag string
	// Create permits creating the file when absent. Writes to absent files
	// without it fail with ResultNotFound.
	Create bool
}

// CreateOptions controls file and folder creation.
type CreateOptions struct {
	// Overwrite permits replacing an existing file.
	Overwrite bool
}

// DeleteOptions controls a service-level delete.
type DeleteOptions struct {
	Recursive bool
	// UseTrash routes the deletion through the backend trash; requires the
	// provider to advertise trash support.
	UseTrash bool
}

// MoveOptions controls a move.
type MoveOptions struct {
	Overwrite bool
}

// CopyOptions controls a copy.
type CopyOptions struct {
	Overwrite bool
}

// FileContent is the result of a successful read: the content plus the
// metadata snapshot it was read at, including the fingerprint a caller
// should present on a later optimistic write.
type FileContent struct {
	Resource uri.URI
	Value    []byte
	MTime    int64
	Size     int64
	ETag     string
}

// CopyRequest is one entry of a batch copy.
type CopyRequest struct {
	From      uri.URI
	To        uri.URI
	Overwrite bool
}

// CopyResult reports the outcome of one CopyRequest. Failures are recorded
// per request and never abort unrelated siblings.
type CopyResult struct {
	Request CopyRequest
	Stat    *filesystem.FileStat
	Err     error
}
