package shutdown

import (
	"errors"
	"slices"
	"sync"
)

// ErrClosed is returned by Register once Execute was called.
var ErrClosed = errors.New("shutdown is already in progress")

type entry struct {
	id       uint64
	callback func()
}

// Registry collects callbacks stopping whatever was spawned, so everything is reachable
// for shutdown from a single place. It's safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	nextID  uint64
	closed  bool
}

func NewRegistry() *Registry {
	return new(Registry)
}

// Register appends the callback and returns a function removing it again, for things
// which stopped by themselves. Deregistering is idempotent and does nothing once Execute
// was called. Register fails if shutdown has already begun, in which case the caller is
// responsible for stopping the thing it registers for by itself.
func (r *Registry) Register(callback func()) (deregister func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, entry{id: id, callback: callback})

	return func() {
		r.remove(id)
	}, nil
}

func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = slices.DeleteFunc(r.entries, func(e entry) bool {
		return e.id == id
	})
}

// Execute runs all the registered callbacks in order of registration and clears the
// registry, returning how many were run. The lock isn't held while callbacks run, so
// they may call Register (which fails) or deregister. Consecutive calls run nothing.
func (r *Registry) Execute() int {
	r.mu.Lock()
	entries := r.entries
	r.entries = nil
	r.closed = true
	r.mu.Unlock()

	for _, e := range entries {
		e.callback()
	}

	return len(entries)
}

// Len returns the number of callbacks waiting to be executed.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
