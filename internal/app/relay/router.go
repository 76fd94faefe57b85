/*
Package relay contains the core logic of the chat relay.

This file defines the Router, the stateless per-message logic that classifies an
inbound line's delivery mode and resolves the set of target sessions through the
Directory. It produces delivery instructions; actually enqueueing them on each
target's send queue is the caller's job.
*/
package relay

import (
	"github.com/rs/zerolog"

	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
)

// Delivery is one routing result: a rendered line bound for one target session.
type Delivery struct {
	Target *Session
	Line   string
}

// Router turns one inbound chat line into zero or more deliveries.
type Router struct {
	directory *Directory
	logger    zerolog.Logger
}

// NewRouter constructs a Router resolving targets against the given Directory.
func NewRouter(directory *Directory) *Router {
	return &Router{
		directory: directory,
		logger:    logx.Logger().With().Str("component", "router").Logger(),
	}
}

// Route classifies one inbound line from an active sender and resolves its targets.
//
// Broadcast delivers to every registered session, the sender included. Unicast
// delivers to the named recipient and echoes to the sender; an unknown recipient
// drops the whole message. Multicast delivers to each listed live recipient,
// silently skips unknown names, and echoes to the sender exactly once even when
// the sender lists itself. Lines with no recognizable verb yield no deliveries.
func (r *Router) Route(sender *Session, line string) []Delivery {
	cmd, ok := ParseCommand(line)
	if !ok {
		r.logger.Debug().
			Str("sender", sender.Name()).
			Msg("Ignoring line with unknown delivery verb.")
		return nil
	}

	rendered := RenderMessage(sender.Name(), cmd.Body)

	switch cmd.Mode {
	case ModeBroadcast:
		return r.routeBroadcast(rendered)

	case ModeUnicast:
		return r.routeUnicast(sender, cmd.Recipients[0], rendered)

	case ModeMulticast:
		return r.routeMulticast(sender, cmd.Recipients, rendered)
	}

	return nil
}

func (r *Router) routeBroadcast(rendered string) []Delivery {
	sessions := r.directory.Sessions()

	deliveries := make([]Delivery, 0, len(sessions))
	for _, target := range sessions {
		deliveries = append(deliveries, Delivery{Target: target, Line: rendered})
	}
	return deliveries
}

func (r *Router) routeUnicast(sender *Session, recipient, rendered string) []Delivery {
	target, ok := r.directory.Resolve(recipient)
	if !ok {
		// Unknown recipients are dropped without a reply; the peer may have
		// just disconnected.
		r.logger.Debug().
			Str("sender", sender.Name()).
			Str("recipient", recipient).
			Msg("Dropping unicast to unknown recipient.")
		return nil
	}

	if target == sender {
		return []Delivery{{Target: sender, Line: rendered}}
	}

	return []Delivery{
		{Target: target, Line: rendered},
		{Target: sender, Line: rendered},
	}
}

func (r *Router) routeMulticast(sender *Session, recipients []string, rendered string) []Delivery {
	deliveries := make([]Delivery, 0, len(recipients)+1)

	for _, recipient := range recipients {
		target, ok := r.directory.Resolve(recipient)
		if !ok {
			r.logger.Debug().
				Str("sender", sender.Name()).
				Str("recipient", recipient).
				Msg("Skipping unknown multicast recipient.")
			continue
		}

		if target == sender {
			// The sender echo below covers this entry.
			continue
		}

		deliveries = append(deliveries, Delivery{Target: target, Line: rendered})
	}

	// The sender sees its own multicast exactly once.
	return append(deliveries, Delivery{Target: sender, Line: rendered})
}
