// Package notify implements the synchronous path-change channel. A
// Notifier invokes every subscribed observer in subscription order each
// time the root path list changes. There is no buffering and no replay
// for late subscribers.
package notify

import "sync"

// Observer receives the full ordered list of current root paths. All
// observers of one notification receive the same slice; they must not
// modify it.
type Observer func(paths []string)

// Notifier fans a path list out to subscribers. The observer list is
// snapshotted before delivery, so an observer may subscribe or
// unsubscribe re-entrantly without affecting the in-flight round.
type Notifier struct {
	mu        sync.Mutex
	nextID    uint64
	observers []entry
}

type entry struct {
	id uint64
	fn Observer
}

// Subscription identifies one Subscribe call.
type Subscription struct {
	once sync.Once
	n    *Notifier
	id   uint64
}

// Unsubscribe removes the observer. It is idempotent; further
// notifications will not reach the observer.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { s.n.remove(s.id) })
}

// New creates an empty Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Subscribe registers fn to run on every notification, after all
// previously subscribed observers.
func (n *Notifier) Subscribe(fn Observer) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	n.observers = append(n.observers, entry{id: n.nextID, fn: fn})
	return &Subscription{n: n, id: n.nextID}
}

// Notify synchronously invokes every current observer with paths, in
// subscription order. It returns when the last observer returns.
func (n *Notifier) Notify(paths []string) {
	n.mu.Lock()
	observers := make([]Observer, len(n.observers))
	for i, e := range n.observers {
		observers[i] = e.fn
	}
	n.mu.Unlock()

	for _, fn := range observers {
		fn(paths)
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, e := range n.observers {
		if e.id == id {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return
		}
	}
}
