package relay

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRosterRegisterAndRelease(t *testing.T) {
	roster := NewRoster()

	require.True(t, roster.TryRegister("alice"))
	require.False(t, roster.TryRegister("alice"), "duplicate registration must fail")
	require.Equal(t, 1, roster.Len())

	// Names are case-sensitive.
	require.True(t, roster.TryRegister("Alice"))

	roster.Release("alice")
	assert.True(t, roster.TryRegister("alice"), "released name must be registrable again")

	// Releasing an absent name is a no-op.
	roster.Release("nobody")
	assert.Equal(t, 2, roster.Len())
}

func TestRosterConcurrentRegistration(t *testing.T) {
	roster := NewRoster()

	const attempts = 64

	var wg sync.WaitGroup
	var successes atomic.Int32

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if roster.TryRegister("carol") {
				successes.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load(), "exactly one concurrent registration must win")
	assert.Equal(t, 1, roster.Len())
}
