package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// awaitLine pops the next line the session wrote, failing the test after a timeout.
func awaitLine(t *testing.T, transport *stubTransport) string {
	t.Helper()

	select {
	case line := <-transport.out:
		return line
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound line")
		return ""
	}
}

func TestSessionNegotiation(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()
	router := NewRouter(directory)

	alice := newNamedSession("alice", roster, directory, router)
	aliceTransport := alice.transport.(*stubTransport)

	transport := newStubTransport()
	session := NewSession(transport, roster, directory, router, 8)

	done := make(chan struct{})
	go func() {
		session.Run()
		close(done)
	}()

	require.Equal(t, VerbSubmitName, awaitLine(t, transport))

	// Whitespace-only candidates are rejected and re-prompted.
	transport.in <- "   "
	require.Equal(t, VerbSubmitName, awaitLine(t, transport))

	// Taken names are rejected and re-prompted.
	transport.in <- "alice"
	require.Equal(t, VerbSubmitName, awaitLine(t, transport))

	transport.in <- "bob"
	require.Equal(t, VerbNameAccepted, awaitLine(t, transport))
	require.Equal(t, "ACTIVELIST alice", awaitLine(t, transport))

	// The already-active peer got a refreshed view including the newcomer.
	require.Equal(t, "ACTIVELIST bob", awaitLine(t, aliceTransport))

	assert.Equal(t, StateActive, session.State())
	assert.Equal(t, "bob", session.Name())
	assert.Equal(t, []string{"alice", "bob"}, directory.Snapshot())

	// Disconnect: the name is released, the directory pruned, and the
	// surviving peer receives a fresh view.
	transport.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish after transport close")
	}

	assert.Equal(t, StateClosed, session.State())
	assert.Equal(t, []string{"alice"}, directory.Snapshot())
	assert.True(t, roster.TryRegister("bob"), "name must be registrable after teardown")
	require.Equal(t, "ACTIVELIST ", awaitLine(t, aliceTransport))
}

func TestSessionEOFDuringNegotiation(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()
	router := NewRouter(directory)

	transport := newStubTransport()
	session := NewSession(transport, roster, directory, router, 8)

	done := make(chan struct{})
	go func() {
		session.Run()
		close(done)
	}()

	require.Equal(t, VerbSubmitName, awaitLine(t, transport))
	transport.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not finish after transport close")
	}

	assert.Equal(t, StateClosed, session.State())
	assert.Zero(t, roster.Len(), "no name must remain registered")
	assert.Zero(t, directory.Len())
}

func TestSessionRoutesActiveLines(t *testing.T) {
	roster := NewRoster()
	directory := NewDirectory()
	router := NewRouter(directory)

	alice := newNamedSession("alice", roster, directory, router)
	aliceTransport := alice.transport.(*stubTransport)

	transport := newStubTransport()
	session := NewSession(transport, roster, directory, router, 8)
	go session.Run()

	require.Equal(t, VerbSubmitName, awaitLine(t, transport))
	transport.in <- "bob"
	require.Equal(t, VerbNameAccepted, awaitLine(t, transport))
	require.Equal(t, "ACTIVELIST alice", awaitLine(t, transport))
	require.Equal(t, "ACTIVELIST bob", awaitLine(t, aliceTransport))

	transport.in <- "UNICAST alice hi"
	assert.Equal(t, "MESSAGE bob: hi", awaitLine(t, aliceTransport))
	assert.Equal(t, "MESSAGE bob: hi", awaitLine(t, transport))

	session.Close()
}
