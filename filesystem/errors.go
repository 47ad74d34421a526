package filesystem

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrorCode is the closed provider-level error classification. Providers
// raise errors marked with one of these codes; the layer above derives its
// own operation-level result from them.
type ErrorCode int

const (
	// CodeUnknown is the catch-all for errors carrying no classification.
	CodeUnknown ErrorCode = iota
	// CodeFileExists signals a conflicting existing entry.
	CodeFileExists
	// CodeFileNotFound signals an absent resource.
	CodeFileNotFound
	// CodeFileNotADirectory signals a directory operation on a non-directory.
	CodeFileNotADirectory
	// CodeFileIsADirectory signals a file operation on a directory.
	CodeFileIsADirectory
	// CodeNoPermissions signals the backend denied access.
	CodeNoPermissions
	// CodeUnavailable signals the backend cannot currently serve requests.
	CodeUnavailable
)

var errorCodeNames = map[ErrorCode]string{
	CodeUnknown:           "Unknown",
	CodeFileExists:        "FileExists",
	CodeFileNotFound:      "FileNotFound",
	CodeFileNotADirectory: "FileNotADirectory",
	CodeFileIsADirectory:  "FileIsADirectory",
	CodeNoPermissions:     "NoPermissions",
	CodeUnavailable:       "Unavailable",
}

// String returns the canonical code name used in the text marker.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "Unknown"
}

// markerPattern recognizes the code marker embedded by Error below, so a
// code can be recovered from an error that crossed a boundary preserving
// only its descriptive text.
var markerPattern = regexp.MustCompile(`\(FileSystemError/([A-Za-z]+)\)`)

// ProviderError is an error carrying a provider-level code. The code is
// immutable once attached.
type ProviderError struct {
	Code  ErrorCode
	msg   string
	cause error
}

// Error renders the description followed by a recognizable marker. The
// marker is what lets CodeOf recover the code after the structured value has
// been flattened to a plain string.
func (e *ProviderError) Error() string {
	msg := e.msg
	if e.cause != nil {
		msg = e.cause.Error()
	}
	return fmt.Sprintf("%s (FileSystemError/%s)", msg, e.Code)
}

// Unwrap exposes the original error to errors.Is and errors.As.
func (e *ProviderError) Unwrap() error {
	return e.cause
}

// Mark attaches a provider-level code to err without losing the original.
// Marking a nil error returns nil.
func Mark(err error, code ErrorCode) error {
	if err == nil {
		return nil
	}
	return &ProviderError{Code: code, cause: err}
}

// NewError creates a fresh provider error with the given code.
func NewError(code ErrorCode, format string, args ...any) error {
	return &ProviderError{Code: code, msg: fmt.Sprintf(format, args...)}
}

// CodeOf recovers the provider-level code from an arbitrary error. The
// structured form wins; the text marker is the fallback for errors that
// crossed an uncontrolled boundary. Absence of information resolves to
// CodeUnknown; CodeOf never fails.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code
	}

	if m := markerPattern.FindStringSubmatch(err.Error()); m != nil {
		for code, name := range errorCodeNames {
			if name == m[1] {
				return code
			}
		}
	}

	return CodeUnknown
}
