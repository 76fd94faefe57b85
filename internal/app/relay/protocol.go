/*
Package relay contains the core logic of the chat relay: session lifecycle and name
negotiation, the shared roster and directory, and message routing across the three
delivery modes (broadcast, multicast, unicast).

This file defines the line protocol: the verbs exchanged with clients, inbound
command parsing, and outbound line rendering. Inbound delivery instructions carry
an explicit mode tag followed by the recipient list and the body as separate
fields, so no fixed-offset substring parsing is needed.
*/
package relay

import (
	"strings"

	"github.com/samber/lo"
)

// Server-to-client protocol verbs.
const (
	// VerbSubmitName requests a candidate display name from the client.
	VerbSubmitName = "SUBMITNAME"

	// VerbNameAccepted acknowledges a successful name registration.
	VerbNameAccepted = "NAMEACCEPTED"

	// VerbActiveList prefixes a refreshed roster view (comma-separated names,
	// excluding the recipient's own name).
	VerbActiveList = "ACTIVELIST"

	// VerbMessage prefixes a delivered chat line, pre-rendered as "<sender>: <body>".
	VerbMessage = "MESSAGE"
)

// Client-to-server protocol verbs.
const (
	// VerbBroadcast sends the body to every active session, the sender included.
	VerbBroadcast = "BROADCAST"

	// VerbUnicast sends the body to exactly one named recipient, echoed to the sender.
	VerbUnicast = "UNICAST"

	// VerbMulticast sends the body to an explicit recipient list, echoed to the
	// sender exactly once.
	VerbMulticast = "MULTICAST"
)

// ServerSender is the reserved sender label used for server-side announcements.
// Clients cannot register it as a display name.
const ServerSender = "server"

// DeliveryMode classifies an inbound chat line.
type DeliveryMode int

const (
	// ModeInvalid marks a line that matches no known client verb. Such lines are ignored.
	ModeInvalid DeliveryMode = iota

	// ModeBroadcast delivers to every active session.
	ModeBroadcast

	// ModeUnicast delivers to a single named recipient.
	ModeUnicast

	// ModeMulticast delivers to an explicit subset of named recipients.
	ModeMulticast
)

// Command is the parsed form of one inbound chat line from an active session.
type Command struct {
	// Mode is the delivery mode selected by the line's verb.
	Mode DeliveryMode

	// Recipients holds the target names for unicast (one entry) and multicast
	// (deduplicated, order preserved). Empty for broadcast.
	Recipients []string

	// Body is the raw message text.
	Body string
}

// ParseCommand parses one inbound line from an ACTIVE session into a Command.
// The multicast recipient list is a single comma-separated field with no
// spaces; the list ends at the first space and the rest of the line is the
// body. It returns ok=false for lines that carry no recognizable delivery
// instruction; such lines are dropped by the caller.
func ParseCommand(line string) (Command, bool) {
	verb, rest, _ := strings.Cut(line, " ")

	switch verb {
	case VerbBroadcast:
		return Command{Mode: ModeBroadcast, Body: rest}, true

	case VerbUnicast:
		recipient, body, _ := strings.Cut(rest, " ")
		if recipient == "" {
			return Command{}, false
		}
		return Command{Mode: ModeUnicast, Recipients: []string{recipient}, Body: body}, true

	case VerbMulticast:
		list, body, _ := strings.Cut(rest, " ")
		recipients := lo.Uniq(lo.FilterMap(strings.Split(list, ","), func(name string, _ int) (string, bool) {
			trimmed := strings.TrimSpace(name)
			return trimmed, trimmed != ""
		}))
		if len(recipients) == 0 {
			return Command{}, false
		}
		return Command{Mode: ModeMulticast, Recipients: recipients, Body: body}, true
	}

	return Command{}, false
}

// RenderMessage renders a delivered chat line as "MESSAGE <sender>: <body>".
func RenderMessage(sender, body string) string {
	return VerbMessage + " " + sender + ": " + body
}

// RenderActiveList renders a roster view as "ACTIVELIST <a,b,c>".
func RenderActiveList(names []string) string {
	return VerbActiveList + " " + strings.Join(names, ",")
}

// ValidName reports whether a candidate display name is acceptable:
// non-empty after trimming, free of spaces and commas (both would break the
// line framing), and not the reserved server sender label.
func ValidName(name string) bool {
	if name == "" || name != strings.TrimSpace(name) {
		return false
	}
	if strings.ContainsAny(name, " ,") {
		return false
	}
	return name != ServerSender
}
