// Package filesystem defines the provider contract every storage backend
// implements, the capability bitset gating its optional operation groups, and
// the shared data model (metadata, change events, error codes, etags) that
// sits above backends and below application logic.
package filesystem

import (
	"context"

	"github.com/wwsinagogogo/theia/uri"
)

// Provider is the contract a backend implements for one or more identifier
// schemes. The methods below are mandatory for every backend regardless of
// its capability set; optional operation groups live on the narrowed
// interfaces below and must only be reached through the To* functions.
//
// A Provider instance is long-lived: constructed once per backend/scheme and
// retained for the application's lifetime. Its capability set may change over
// that lifetime (for example a backend discovering trash support after
// mounting); every such change must be announced on the capability stream.
type Provider interface {
	// Capabilities returns the current capability set.
	Capabilities() Capabilities

	// SubscribeCapabilities delivers capability-set updates. The returned
	// Disposable stops delivery.
	SubscribeCapabilities() (<-chan Capabilities, Disposable)

	// SubscribeChanges delivers raw change batches in the order the backend
	// detected them. Every mutating operation is expected to eventually
	// surface here, not necessarily synchronously with the call.
	SubscribeChanges() (<-chan FileChangesEvent, Disposable)

	// Watch registers interest in future changes under resource. Watching a
	// not-yet-created path is valid and becomes live once the path exists.
	// Disposing the returned handle stops notifications; at most one
	// in-flight notification may still arrive after disposal.
	Watch(ctx context.Context, resource uri.URI, opts WatchOptions) (Disposable, error)

	// Stat returns fresh metadata for resource. Fails with FileNotFound if
	// the resource does not exist.
	Stat(ctx context.Context, resource uri.URI) (Stat, error)

	// Mkdir creates a directory. A conflicting existing entry must surface
	// FileExists, never silently succeed; the exact merge policy for an
	// existing directory is backend-defined and must be documented by the
	// backend.
	Mkdir(ctx context.Context, resource uri.URI) error

	// ReadDir lists a directory as an ordered sequence of (name, type)
	// pairs. Fails with FileNotADirectory for non-directories and
	// FileNotFound for absent resources.
	ReadDir(ctx context.Context, resource uri.URI) ([]DirEntry, error)

	// Delete removes a resource. Fails with FileNotFound if absent. When
	// opts.Recursive is false and resource is a non-empty directory the call
	// must fail rather than silently recurse.
	Delete(ctx context.Context, resource uri.URI, opts DeleteOptions) error

	// Rename moves a resource. Fails with FileExists when the target exists
	// and opts.Overwrite is false.
	Rename(ctx context.Context, from, to uri.URI, opts RenameOptions) error
}

// FileReadWriteProvider is the CapFileReadWrite operation group: whole-file
// reads and writes for backends that can buffer content in one call.
type FileReadWriteProvider interface {
	Provider

	// ReadFile returns the full content of resource.
	ReadFile(ctx context.Context, resource uri.URI) ([]byte, error)

	// WriteFile replaces or creates the full content of resource, subject to
	// opts. Fails with FileExists when the target exists and opts.Overwrite
	// is false, and with FileNotFound when absent and opts.Create is false.
	WriteFile(ctx context.Context, resource uri.URI, content []byte, opts WriteFileOptions) error
}

// OpenReadWriteCloseProvider is the CapFileOpenReadWriteClose operation
// group: handle-based positional I/O for backends that cannot buffer whole
// files in memory.
type OpenReadWriteCloseProvider interface {
	Provider

	// Open returns a numeric handle for resource.
	Open(ctx context.Context, resource uri.URI, opts OpenOptions) (int, error)

	// Close releases a handle. It is idempotent: closing an already-closed
	// handle is not an error.
	Close(ctx context.Context, fd int) error

	// Read copies up to len(p) bytes at offset pos into p and returns the
	// number of bytes read. A short count with nil error signals end of file.
	Read(ctx context.Context, fd int, pos int64, p []byte) (int, error)

	// Write writes p at offset pos and returns the number of bytes written.
	Write(ctx context.Context, fd int, pos int64, p []byte) (int, error)
}

// FolderCopyProvider is the CapFileFolderCopy operation group: a native
// recursive copy. Callers without this capability emulate copy as recursive
// mkdir plus per-file read and write and must not call the provider.
type FolderCopyProvider interface {
	Provider

	// Copy copies from onto to, subject to opts. Fails with FileExists when
	// the target exists and opts.Overwrite is false.
	Copy(ctx context.Context, from, to uri.URI, opts CopyOptions) error
}

// ProviderBase carries the two event streams every provider needs. Backend
// implementations embed it and call EmitChanges / SetCapabilities.
type ProviderBase struct {
	caps     Capabilities
	changes  *ChangeEmitter
	capsFeed *CapabilityEmitter
}

// NewProviderBase seeds the base with the initial capability set.
func NewProviderBase(caps Capabilities) ProviderBase {
	return ProviderBase{
		caps:     caps,
		changes:  NewChangeEmitter(),
		capsFeed: NewCapabilityEmitter(),
	}
}

// Capabilities returns the current capability set.
func (b *ProviderBase) Capabilities() Capabilities {
	return b.caps
}

// SetCapabilities swaps the capability set and announces the change.
// Single-writer: backends mutate capabilities from one goroutine.
func (b *ProviderBase) SetCapabilities(caps Capabilities) {
	if b.caps == caps {
		return
	}
	b.caps = caps
	b.capsFeed.Emit(caps)
}

// SubscribeCapabilities implements Provider.
func (b *ProviderBase) SubscribeCapabilities() (<-chan Capabilities, Disposable) {
	return b.capsFeed.Subscribe()
}

// SubscribeChanges implements Provider.
func (b *ProviderBase) SubscribeChanges() (<-chan FileChangesEvent, Disposable) {
	return b.changes.Subscribe()
}

// EmitChanges publishes one change batch to all subscribers.
func (b *ProviderBase) EmitChanges(ev FileChangesEvent) {
	b.changes.Emit(ev)
}
