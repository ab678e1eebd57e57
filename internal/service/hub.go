// Package service implements a versioned service exchange between
// loosely coupled components.
//
// A provider offers a named service at a concrete semantic version. A
// consumer asks for a name plus a version range and supplies an accept
// callback. Whenever an offer satisfies a consumer's range the callback
// runs with the offered service, for offers already present and for
// offers that arrive later. Either side retires by disposing its
// registration; retiring disposes every acceptance the registration
// participated in, so whatever the callback built gets torn down with
// it.
package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Disposable undoes a registration. Dispose is idempotent.
type Disposable interface {
	Dispose()
}

// AcceptFunc runs when an offer matches a consumer's version range.
// The returned Disposable, if non-nil, is disposed when the offer or
// the consumer retires.
type AcceptFunc func(service any) Disposable

// Errors returned by hub registration.
var (
	ErrEmptyName = errors.New("service name is empty")
	ErrNilAccept = errors.New("accept callback is nil")
)

type offer struct {
	id      uint64
	name    string
	version *semver.Version
	service any
}

type consumer struct {
	id     uint64
	name   string
	rng    *semver.Constraints
	accept AcceptFunc
}

// acceptKey identifies one matched offer/consumer pair.
type acceptKey struct {
	offerID    uint64
	consumerID uint64
}

// Hub matches service offers against consumers by name and version.
type Hub struct {
	mu        sync.Mutex
	nextID    uint64
	offers    []*offer
	consumers []*consumer

	// accepted holds one entry per matched pair. The entry is created
	// under the lock when the pair is claimed, before the callback
	// runs, so a concurrent Provide and Consume cannot both run the
	// same pair. The value stays nil until the callback returns.
	accepted map[acceptKey]Disposable
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		accepted: make(map[acceptKey]Disposable),
	}
}

// Provide offers a service under name at a concrete semver version.
// Every current and future consumer whose range matches is handed the
// service. The returned Disposable retires the offer and disposes the
// acceptances it produced.
func (h *Hub) Provide(name, version string, svc any) (Disposable, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q for service %s: %w", version, name, err)
	}

	o := &offer{name: name, version: v, service: svc}

	h.mu.Lock()
	h.nextID++
	o.id = h.nextID
	h.offers = append(h.offers, o)

	var matched []*consumer
	for _, c := range h.consumers {
		if c.name == o.name && c.rng.Check(o.version) {
			h.accepted[acceptKey{o.id, c.id}] = nil
			matched = append(matched, c)
		}
	}
	h.mu.Unlock()

	for _, c := range matched {
		h.runAccept(o, c)
	}

	return newRegistration(func() { h.retireOffer(o.id) }), nil
}

// Consume registers interest in a named service within a semver range
// such as "^1.0.0" or ">=1.2 <2". The accept callback runs for every
// matching offer, now and later. The returned Disposable retires the
// consumer and disposes the acceptances it produced.
func (h *Hub) Consume(name, versionRange string, accept AcceptFunc) (Disposable, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if accept == nil {
		return nil, ErrNilAccept
	}
	rng, err := semver.NewConstraint(versionRange)
	if err != nil {
		return nil, fmt.Errorf("invalid version range %q for service %s: %w", versionRange, name, err)
	}

	c := &consumer{name: name, rng: rng, accept: accept}

	h.mu.Lock()
	h.nextID++
	c.id = h.nextID
	h.consumers = append(h.consumers, c)

	var matched []*offer
	for _, o := range h.offers {
		if o.name == c.name && c.rng.Check(o.version) {
			h.accepted[acceptKey{o.id, c.id}] = nil
			matched = append(matched, o)
		}
	}
	h.mu.Unlock()

	for _, o := range matched {
		h.runAccept(o, c)
	}

	return newRegistration(func() { h.retireConsumer(c.id) }), nil
}

// runAccept invokes a consumer callback outside the lock and records
// its result. If the pair's claim disappeared while the callback ran,
// one side retired mid-flight and the result is disposed immediately.
func (h *Hub) runAccept(o *offer, c *consumer) {
	d := c.accept(o.service)

	key := acceptKey{o.id, c.id}
	h.mu.Lock()
	if _, live := h.accepted[key]; live {
		h.accepted[key] = d
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	if d != nil {
		d.Dispose()
	}
}

// retireOffer removes an offer and disposes its acceptances.
func (h *Hub) retireOffer(id uint64) {
	h.mu.Lock()
	found := false
	for i, o := range h.offers {
		if o.id == id {
			h.offers = append(h.offers[:i], h.offers[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		h.mu.Unlock()
		return
	}
	dispose := h.takeAcceptedLocked(func(k acceptKey) bool { return k.offerID == id })
	h.mu.Unlock()

	for _, d := range dispose {
		d.Dispose()
	}
}

// retireConsumer removes a consumer and disposes its acceptances.
func (h *Hub) retireConsumer(id uint64) {
	h.mu.Lock()
	found := false
	for i, c := range h.consumers {
		if c.id == id {
			h.consumers = append(h.consumers[:i], h.consumers[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		h.mu.Unlock()
		return
	}
	dispose := h.takeAcceptedLocked(func(k acceptKey) bool { return k.consumerID == id })
	h.mu.Unlock()

	for _, d := range dispose {
		d.Dispose()
	}
}

// takeAcceptedLocked removes matching acceptance entries and returns
// the non-nil disposables for invocation after the lock is released.
func (h *Hub) takeAcceptedLocked(match func(acceptKey) bool) []Disposable {
	var out []Disposable
	for key, d := range h.accepted {
		if !match(key) {
			continue
		}
		delete(h.accepted, key)
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

// registration runs its retire function at most once.
type registration struct {
	once sync.Once
	fn   func()
}

func newRegistration(fn func()) *registration {
	return &registration{fn: fn}
}

// Dispose retires the registration on the first call and does nothing
// on later calls.
func (r *registration) Dispose() {
	r.once.Do(r.fn)
}

var _ Disposable = (*registration)(nil)
