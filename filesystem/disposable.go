package filesystem

import "sync"

// Disposable releases a held registration such as a watch or an event
// subscription. Dispose is idempotent and safe to call multiple times.
type Disposable interface {
	Dispose()
}

type funcDisposable struct {
	once sync.Once
	f    func()
}

func (d *funcDisposable) Dispose() {
	d.once.Do(d.f)
}

// DisposableFunc wraps f into an idempotent Disposable.
func DisposableFunc(f func()) Disposable {
	return &funcDisposable{f: f}
}

type nopDisposable struct{}

func (nopDisposable) Dispose() {}

// NopDisposable is a Disposable that does nothing.
var NopDisposable Disposable = nopDisposable{}
