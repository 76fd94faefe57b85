/*
Package relay contains the core logic of the chat relay.

This file defines the Directory, the process-wide mapping between live sessions and
their registered display names. It is used to compute each session's personalized
"active peers" view and to resolve a name back to a deliverable session. Every
method observes a single point-in-time view under one lock, so a roster refresh
never mixes pre- and post-mutation state.
*/
package relay

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// Directory maps live, fully-negotiated sessions to their display names.
// A session is present if and only if it completed name negotiation and
// has not yet been torn down.
type Directory struct {
	// mu protects both maps.
	mu sync.RWMutex

	// names maps each live session to its registered name.
	names map[*Session]string

	// byName is the reverse index used for unicast/multicast targeting.
	byName map[string]*Session
}

// ActiveView pairs a session with its personalized roster view
// (every registered name except the session's own).
type ActiveView struct {
	Session *Session
	Names   []string
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		names:  make(map[*Session]string),
		byName: make(map[string]*Session),
	}
}

// Insert records a session under its registered name.
func (d *Directory) Insert(s *Session, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.names[s] = name
	d.byName[name] = s
}

// Remove deletes a session and its name. Removing an absent session is a no-op.
func (d *Directory) Remove(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name, ok := d.names[s]
	if !ok {
		return
	}

	delete(d.names, s)
	// The reverse index is cleared only while it still points at s; a session
	// that re-registered the name in the meantime keeps its entry.
	if d.byName[name] == s {
		delete(d.byName, name)
	}
}

// Snapshot returns all currently-registered names, sorted for a stable order.
func (d *Directory) Snapshot() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snapshotLocked()
}

// snapshotLocked collects and sorts the registered names. Callers hold d.mu.
func (d *Directory) snapshotLocked() []string {
	names := lo.Values(d.names)
	sort.Strings(names)
	return names
}

// ViewFor returns the snapshot minus the excluded name.
func (d *Directory) ViewFor(excluded string) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.Filter(d.snapshotLocked(), func(name string, _ int) bool {
		return name != excluded
	})
}

// Views returns one personalized roster view per live session, all computed
// from the same point-in-time snapshot. It is the source for roster-refresh
// fan-out after a registration or a teardown.
func (d *Directory) Views() []ActiveView {
	d.mu.RLock()
	defer d.mu.RUnlock()

	all := d.snapshotLocked()

	views := make([]ActiveView, 0, len(d.names))
	for s, own := range d.names {
		views = append(views, ActiveView{
			Session: s,
			Names: lo.Filter(all, func(name string, _ int) bool {
				return name != own
			}),
		})
	}
	return views
}

// Resolve looks up a live session by its registered name.
func (d *Directory) Resolve(name string) (*Session, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	s, ok := d.byName[name]
	return s, ok
}

// Sessions returns every live, fully-negotiated session.
func (d *Directory) Sessions() []*Session {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return lo.Keys(d.names)
}

// Len returns the number of live, fully-negotiated sessions.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.names)
}
