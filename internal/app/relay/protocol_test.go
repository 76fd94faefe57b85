package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Command
		ok   bool
	}{
		{
			name: "broadcast with body",
			line: "BROADCAST hello everyone",
			want: Command{Mode: ModeBroadcast, Body: "hello everyone"},
			ok:   true,
		},
		{
			name: "broadcast empty body",
			line: "BROADCAST",
			want: Command{Mode: ModeBroadcast, Body: ""},
			ok:   true,
		},
		{
			name: "unicast",
			line: "UNICAST alice hi there",
			want: Command{Mode: ModeUnicast, Recipients: []string{"alice"}, Body: "hi there"},
			ok:   true,
		},
		{
			name: "unicast without recipient",
			line: "UNICAST",
			ok:   false,
		},
		{
			name: "unicast without body",
			line: "UNICAST alice",
			want: Command{Mode: ModeUnicast, Recipients: []string{"alice"}, Body: ""},
			ok:   true,
		},
		{
			name: "multicast two recipients",
			line: "MULTICAST alice,bob lunch?",
			want: Command{Mode: ModeMulticast, Recipients: []string{"alice", "bob"}, Body: "lunch?"},
			ok:   true,
		},
		{
			name: "multicast deduplicates repeated recipients",
			line: "MULTICAST alice,bob,alice hey",
			want: Command{Mode: ModeMulticast, Recipients: []string{"alice", "bob"}, Body: "hey"},
			ok:   true,
		},
		{
			name: "multicast recipient list ends at the first space",
			line: "MULTICAST alice, bob,carol hey",
			want: Command{Mode: ModeMulticast, Recipients: []string{"alice"}, Body: "bob,carol hey"},
			ok:   true,
		},
		{
			name: "multicast with only empty entries",
			line: "MULTICAST ,, hey",
			ok:   false,
		},
		{
			name: "unknown verb",
			line: "WHISPER alice hi",
			ok:   false,
		},
		{
			name: "empty line",
			line: "",
			ok:   false,
		},
		{
			name: "verb is case sensitive",
			line: "broadcast hi",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCommand(tt.line)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRenderMessage(t *testing.T) {
	assert.Equal(t, "MESSAGE bob: hi", RenderMessage("bob", "hi"))
	assert.Equal(t, "MESSAGE server: maintenance soon", RenderMessage(ServerSender, "maintenance soon"))
}

func TestRenderActiveList(t *testing.T) {
	assert.Equal(t, "ACTIVELIST alice,bob", RenderActiveList([]string{"alice", "bob"}))
	assert.Equal(t, "ACTIVELIST ", RenderActiveList(nil))
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"alice", true},
		{"Alice", true},
		{"a", true},
		{"", false},
		{" alice", false},
		{"al ice", false},
		{"al,ice", false},
		{"server", false},
		{"Server", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidName(tt.name))
		})
	}
}
