package filesystem

// Capability-gated dispatch. Each narrowing below is a pure bitwise test plus
// an interface assertion; it performs no I/O and never probes the backend.
// Calling a gated operation without narrowing first is a caller bug, not a
// runtime condition this layer recovers from.

// ToFileReadWrite narrows p to its whole-file read/write operation group.
// The second result is false when CapFileReadWrite is not advertised, even
// if the concrete type happens to implement the methods.
func ToFileReadWrite(p Provider) (FileReadWriteProvider, bool) {
	if !p.Capabilities().Has(CapFileReadWrite) {
		return nil, false
	}
	rw, ok := p.(FileReadWriteProvider)
	return rw, ok
}

// ToOpenReadWriteClose narrows p to its handle-based positional I/O group.
func ToOpenReadWriteClose(p Provider) (OpenReadWriteCloseProvider, bool) {
	if !p.Capabilities().Has(CapFileOpenReadWriteClose) {
		return nil, false
	}
	orwc, ok := p.(OpenReadWriteCloseProvider)
	return orwc, ok
}

// ToFolderCopy narrows p to its native copy operation group.
func ToFolderCopy(p Provider) (FolderCopyProvider, bool) {
	if !p.Capabilities().Has(CapFileFolderCopy) {
		return nil, false
	}
	fc, ok := p.(FolderCopyProvider)
	return fc, ok
}
