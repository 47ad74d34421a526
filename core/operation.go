package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

// FileOperation identifies a completed high-level mutating action.
type FileOperation int

const (
	// OpCreate marks the creation of a file or folder.
	OpCreate FileOperation = iota
	// OpDelete marks a deletion.
	OpDelete
	// OpMove marks a rename/move.
	OpMove
	// OpCopy marks a copy.
	OpCopy
)

// String returns the operation name for logs and metrics labels.
func (op FileOperation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpDelete:
		return "delete"
	case OpMove:
		return "move"
	case OpCopy:
		return "copy"
	default:
		return "unknown"
	}
}

// FileOperationEvent records one completed high-level operation together
// with the resulting metadata snapshot. Downstream consumers use it for
// cache invalidation and refresh. Target is present for Create, Move and
// Copy and absent for Delete; the constructor enforces this.
type FileOperationEvent struct {
	Resource  uri.URI
	Operation FileOperation
	Target    *filesystem.FileStat
}

// NewFileOperationEvent builds an operation event, validating the
// target-presence invariant at construction rather than at use.
func NewFileOperationEvent(op FileOperation, resource uri.URI, target *filesystem.FileStat) (FileOperationEvent, error) {
	if op == OpDelete && target != nil {
		return FileOperationEvent{}, fmt.Errorf("delete event for %s must not carry target metadata", resource)
	}
	if op != OpDelete && target == nil {
		return FileOperationEvent{}, fmt.Errorf("%s event for %s requires target metadata", op, resource)
	}
	return FileOperationEvent{Resource: resource, Operation: op, Target: target}, nil
}

// IsOperation reports whether the event records the given operation kind.
func (e FileOperationEvent) IsOperation(op FileOperation) bool {
	return e.Operation == op
}

// operationEmitter fans operation events out to independent subscribers,
// with the same delivery contract as filesystem.ChangeEmitter.
type operationEmitter struct {
	mu   sync.RWMutex
	subs map[string]chan FileOperationEvent
}

func newOperationEmitter() *operationEmitter {
	return &operationEmitter{subs: make(map[string]chan FileOperationEvent)}
}

func (e *operationEmitter) subscribe() (<-chan FileOperationEvent, filesystem.Disposable) {
	ch := make(chan FileOperationEvent, 64)
	id := uuid.NewString()

	e.mu.Lock()
	e.subs[id] = ch
	e.mu.Unlock()

	return ch, filesystem.DisposableFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, ok := e.subs[id]; ok {
			delete(e.subs, id)
			close(ch)
		}
	})
}

func (e *operationEmitter) emit(ev FileOperationEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, ch := range e.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
