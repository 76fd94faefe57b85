package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routerFixture wires a directory with three active sessions.
type routerFixture struct {
	router *Router
	alice  *Session
	bob    *Session
	carol  *Session
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	roster := NewRoster()
	directory := NewDirectory()
	router := NewRouter(directory)

	return &routerFixture{
		router: router,
		alice:  newNamedSession("alice", roster, directory, router),
		bob:    newNamedSession("bob", roster, directory, router),
		carol:  newNamedSession("carol", roster, directory, router),
	}
}

// targetsOf collects the delivery targets, asserting every rendered line matches want.
func targetsOf(t *testing.T, deliveries []Delivery, want string) map[*Session]int {
	t.Helper()

	targets := make(map[*Session]int)
	for _, d := range deliveries {
		assert.Equal(t, want, d.Line)
		targets[d.Target]++
	}
	return targets
}

func TestRouteBroadcast(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.bob, "BROADCAST hello")
	require.Len(t, deliveries, 3)

	targets := targetsOf(t, deliveries, "MESSAGE bob: hello")
	assert.Equal(t, 1, targets[f.alice])
	assert.Equal(t, 1, targets[f.bob], "broadcast includes the sender")
	assert.Equal(t, 1, targets[f.carol])
}

func TestRouteUnicast(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.bob, "UNICAST alice hi")
	require.Len(t, deliveries, 2)

	targets := targetsOf(t, deliveries, "MESSAGE bob: hi")
	assert.Equal(t, 1, targets[f.alice])
	assert.Equal(t, 1, targets[f.bob], "sender sees its own unicast once")
	assert.Zero(t, targets[f.carol])
}

func TestRouteUnicastToSelf(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.bob, "UNICAST bob note to self")
	require.Len(t, deliveries, 1)
	assert.Same(t, f.bob, deliveries[0].Target)
}

func TestRouteUnicastUnknownRecipientDropped(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.bob, "UNICAST mallory hi")
	assert.Empty(t, deliveries, "unknown unicast recipients drop the whole message")
}

func TestRouteMulticast(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.carol, "MULTICAST alice,bob lunch?")
	require.Len(t, deliveries, 3)

	targets := targetsOf(t, deliveries, "MESSAGE carol: lunch?")
	assert.Equal(t, 1, targets[f.alice])
	assert.Equal(t, 1, targets[f.bob])
	assert.Equal(t, 1, targets[f.carol], "sender sees its own multicast exactly once")
}

func TestRouteMulticastSenderInListDeduplicated(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.carol, "MULTICAST alice,carol hey")
	require.Len(t, deliveries, 2)

	targets := targetsOf(t, deliveries, "MESSAGE carol: hey")
	assert.Equal(t, 1, targets[f.alice])
	assert.Equal(t, 1, targets[f.carol])
}

func TestRouteMulticastSkipsUnknownNames(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.bob, "MULTICAST alice,mallory hi")
	require.Len(t, deliveries, 2)

	targets := targetsOf(t, deliveries, "MESSAGE bob: hi")
	assert.Equal(t, 1, targets[f.alice])
	assert.Equal(t, 1, targets[f.bob])
}

func TestRouteMulticastAllUnknownStillEchoesSender(t *testing.T) {
	f := newRouterFixture(t)

	deliveries := f.router.Route(f.bob, "MULTICAST mallory,trent hi")
	require.Len(t, deliveries, 1)
	assert.Same(t, f.bob, deliveries[0].Target)
}

func TestRouteIgnoresUnknownVerbs(t *testing.T) {
	f := newRouterFixture(t)

	assert.Empty(t, f.router.Route(f.bob, "WHISPER alice hi"))
	assert.Empty(t, f.router.Route(f.bob, "just some text"))
	assert.Empty(t, f.router.Route(f.bob, ""))
}
