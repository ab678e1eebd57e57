package provider

import "sync"

// disposable runs a cleanup function at most once.
type disposable struct {
	once sync.Once
	fn   func()
}

// NewDisposable wraps fn in a Disposable that invokes it at most once.
func NewDisposable(fn func()) Disposable {
	return &disposable{fn: fn}
}

// Dispose runs the wrapped function on the first call and nothing on
// later calls.
func (d *disposable) Dispose() {
	d.once.Do(d.fn)
}
