/*
Package relay contains the core logic of the chat relay.

This file defines the Roster, the process-wide registry of currently-registered
display names. It enforces name uniqueness across all live sessions.
*/
package relay

import "sync"

// Roster is the set of all currently-registered display names.
// The membership check and the insert happen inside one critical section,
// so two sessions can never register the same name.
type Roster struct {
	// mu protects names.
	mu sync.Mutex

	// names holds the registered display names.
	names map[string]struct{}
}

// NewRoster returns an empty Roster.
func NewRoster() *Roster {
	return &Roster{
		names: make(map[string]struct{}),
	}
}

// TryRegister atomically tests membership and inserts the name if absent.
// It returns whether the registration succeeded.
func (r *Roster) TryRegister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.names[name]; taken {
		return false
	}

	r.names[name] = struct{}{}
	return true
}

// Release removes a name from the roster. Releasing an absent name is a no-op.
func (r *Roster) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.names, name)
}

// Len returns the number of currently-registered names.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.names)
}
