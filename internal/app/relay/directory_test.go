package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectorySnapshotAndResolve(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()

	alice := newNamedSession("alice", roster, directory, nil)
	bob := newNamedSession("bob", roster, directory, nil)

	assert.Equal(t, []string{"alice", "bob"}, directory.Snapshot())
	assert.Equal(t, 2, directory.Len())

	resolved, ok := directory.Resolve("alice")
	require.True(t, ok)
	assert.Same(t, alice, resolved)

	_, ok = directory.Resolve("nobody")
	assert.False(t, ok)

	directory.Remove(bob)
	assert.Equal(t, []string{"alice"}, directory.Snapshot())

	_, ok = directory.Resolve("bob")
	assert.False(t, ok)

	// Removing an absent session is a no-op.
	directory.Remove(bob)
	assert.Equal(t, 1, directory.Len())
}

func TestDirectoryRemoveKeepsReusedName(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()

	old := newNamedSession("carol", roster, directory, nil)

	// A new connection claims the name before the old session is removed,
	// as happens when a client reconnects while its previous session is
	// still tearing down.
	roster.Release("carol")
	fresh := newNamedSession("carol", roster, directory, nil)

	directory.Remove(old)

	resolved, ok := directory.Resolve("carol")
	require.True(t, ok)
	assert.Same(t, fresh, resolved, "removal of the old session must not evict its successor")
	assert.Equal(t, []string{"carol"}, directory.Snapshot())
	assert.Equal(t, 1, directory.Len())
}

func TestDirectoryViewFor(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()

	newNamedSession("alice", roster, directory, nil)
	newNamedSession("bob", roster, directory, nil)
	newNamedSession("carol", roster, directory, nil)

	assert.Equal(t, []string{"alice", "carol"}, directory.ViewFor("bob"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, directory.ViewFor("nobody"))
}

func TestDirectoryViews(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()

	alice := newNamedSession("alice", roster, directory, nil)
	bob := newNamedSession("bob", roster, directory, nil)

	views := directory.Views()
	require.Len(t, views, 2)

	byName := make(map[*Session][]string, len(views))
	for _, view := range views {
		byName[view.Session] = view.Names
	}

	assert.Equal(t, []string{"bob"}, byName[alice], "a view never contains the session's own name")
	assert.Equal(t, []string{"alice"}, byName[bob])
}
