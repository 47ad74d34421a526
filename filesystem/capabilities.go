package filesystem

import "strings"

// Capabilities is the immutable bitset a provider advertises to describe
// which optional operation groups it supports. Callers must consult the
// relevant bit (see the To* narrowing functions) before invoking a gated
// operation; they must never call-and-catch.
type Capabilities uint32

const (
	// CapNone is the empty capability set.
	CapNone Capabilities = 0

	// CapFileReadWrite gates whole-file ReadFile/WriteFile.
	CapFileReadWrite Capabilities = 1 << 1

	// CapFileOpenReadWriteClose gates handle-based positional Open/Read/Write/Close,
	// for backends that cannot buffer whole files in memory.
	CapFileOpenReadWriteClose Capabilities = 1 << 2

	// CapFileFolderCopy gates the provider-native Copy operation. When absent,
	// folder copy is emulated by the caller as recursive mkdir plus per-file
	// read and write.
	CapFileFolderCopy Capabilities = 1 << 3

	// CapUpdate indicates the provider can update file content in place,
	// preserving identity across writes.
	CapUpdate Capabilities = 1 << 4

	// CapPathCaseSensitive indicates paths are compared case sensitively on
	// this backend.
	CapPathCaseSensitive Capabilities = 1 << 10

	// CapReadonly marks a provider that rejects all mutating operations.
	CapReadonly Capabilities = 1 << 11

	// CapTrash indicates Delete honors the UseTrash option.
	CapTrash Capabilities = 1 << 12
)

// Has reports whether every bit in want is present in c.
func (c Capabilities) Has(want Capabilities) bool {
	return c&want == want
}

// String renders the set for logs, e.g. "FileReadWrite|Trash".
func (c Capabilities) String() string {
	names := []struct {
		bit  Capabilities
		name string
	}{
		{CapFileReadWrite, "FileReadWrite"},
		{CapFileOpenReadWriteClose, "FileOpenReadWriteClose"},
		{CapFileFolderCopy, "FileFolderCopy"},
		{CapUpdate, "Update"},
		{CapPathCaseSensitive, "PathCaseSensitive"},
		{CapReadonly, "Readonly"},
		{CapTrash, "Trash"},
	}

	var parts []string
	for _, n := range names {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}
