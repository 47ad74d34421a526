// Package core orchestrates registered filesystem providers: it performs
// capability-gated dispatch, optimistic-concurrency checks, error
// classification, and publishes change and operation events for the
// application layers above.
package core

import (
	"errors"
	"fmt"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

// OperationResult is the closed application-level classification of a failed
// file operation.
type OperationResult int

const (
	// ResultOther is the catch-all for unclassifiable failures.
	ResultOther OperationResult = iota
	// ResultIsDirectory signals a file operation against a directory.
	ResultIsDirectory
	// ResultNotFound signals an absent resource.
	ResultNotFound
	// ResultNotModifiedSince signals a read whose etag still matches.
	ResultNotModifiedSince
	// ResultModifiedSince signals a write against stale content.
	ResultModifiedSince
	// ResultMoveConflict signals a move or copy onto an existing target.
	ResultMoveConflict
	// ResultReadOnly signals a mutation against a read-only provider.
	ResultReadOnly
	// ResultPermissionDenied signals the backend denied access.
	ResultPermissionDenied
	// ResultTooLarge signals content above the configured file size limit.
	ResultTooLarge
	// ResultInvalidPath signals a malformed resource identifier.
	ResultInvalidPath
	// ResultExceedsMemoryLimit signals a read above the configured buffer limit.
	ResultExceedsMemoryLimit
	// ResultNotDirectory signals a directory operation against a file.
	ResultNotDirectory
)

var resultNames = map[OperationResult]string{
	ResultOther:              "Other",
	ResultIsDirectory:        "IsDirectory",
	ResultNotFound:           "NotFound",
	ResultNotModifiedSince:   "NotModifiedSince",
	ResultModifiedSince:      "ModifiedSince",
	ResultMoveConflict:       "MoveConflict",
	ResultReadOnly:           "ReadOnly",
	ResultPermissionDenied:   "PermissionDenied",
	ResultTooLarge:           "TooLarge",
	ResultInvalidPath:        "InvalidPath",
	ResultExceedsMemoryLimit: "ExceedsMemoryLimit",
	ResultNotDirectory:       "NotDirectory",
}

// String returns the result name for logs and metrics labels.
func (r OperationResult) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "Other"
}

// OperationError is a failed file operation carrying its classification, the
// affected resource, and the request options that were in effect, so a
// caller can decide on a retry policy (for example retry a ModifiedSince
// write without the etag check) without re-deriving context.
type OperationError struct {
	Result   OperationResult
	Resource uri.URI
	// Options holds the ReadFileOptions, WriteOptions, CopyOptions or similar
	// value the failing request was issued with. May be nil.
	Options any
	msg     string
	cause   error
}

// Error implements error.
func (e *OperationError) Error() string {
	msg := e.msg
	if msg == "" && e.cause != nil {
		msg = e.cause.Error()
	}
	return fmt.Sprintf("%s: %s [%s]", e.Resource, msg, e.Result)
}

// Unwrap exposes the underlying provider error.
func (e *OperationError) Unwrap() error {
	return e.cause
}

// newOperationError builds an error detected by this layer itself.
func newOperationError(result OperationResult, resource uri.URI, opts any, format string, args ...any) *OperationError {
	return &OperationError{
		Result:   result,
		Resource: resource,
		Options:  opts,
		msg:      fmt.Sprintf(format, args...),
	}
}

// wrapProviderError derives an OperationError from a failed provider call.
func wrapProviderError(err error, resource uri.URI, opts any) *OperationError {
	return &OperationError{
		Result:   Classify(err),
		Resource: resource,
		Options:  opts,
		cause:    err,
	}
}

// providerCodeResults is the fixed total mapping from provider-level codes to
// operation-level results. Codes not listed fall to ResultOther.
var providerCodeResults = map[filesystem.ErrorCode]OperationResult{
	filesystem.CodeFileNotFound:      ResultNotFound,
	filesystem.CodeFileIsADirectory:  ResultIsDirectory,
	filesystem.CodeFileNotADirectory: ResultNotDirectory,
	filesystem.CodeNoPermissions:     ResultPermissionDenied,
	filesystem.CodeFileExists:        ResultMoveConflict,
}

// Classify produces exactly one operation-level result for an arbitrary
// error. An error already carrying a result keeps it; otherwise the result
// is derived from the extracted provider-level code. Classify never fails:
// absence of information resolves to ResultOther.
func Classify(err error) OperationResult {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Result
	}
	if result, ok := providerCodeResults[filesystem.CodeOf(err)]; ok {
		return result
	}
	return ResultOther
}
