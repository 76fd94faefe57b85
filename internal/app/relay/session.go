/*
Package relay contains the core logic of the chat relay.

This file defines the Session struct, representing one connected peer. It manages the
session's protocol state machine (name negotiation, then message routing), its
read/write pump pair, and the one-shot teardown that releases the name, prunes the
directory, and pushes a roster refresh to every surviving session.
*/
package relay

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
)

// State is the protocol state of a session.
type State int32

const (
	// StateConnected is the initial state, before the first name prompt.
	StateConnected State = iota

	// StateNegotiating means the session is looping on name prompts.
	StateNegotiating

	// StateActive means the name was accepted and inbound lines are routed.
	StateActive

	// StateClosed is terminal; teardown has run.
	StateClosed
)

// Session represents one connected peer: its transport, its negotiated display
// name, and its outbound message queue. The queue is written by any session's
// delivery path and drained by this session's write pump alone, so concurrent
// deliveries never interleave on the wire.
type Session struct {
	// id is an opaque handle used only for logging.
	id string

	// transport carries the protocol lines for this peer.
	transport Transport

	roster    *Roster
	directory *Directory
	router    *Router

	// send queues outbound lines for the write pump. Enqueueing never blocks;
	// lines are dropped when the queue is full.
	send chan string

	// done is closed to stop the write pump and refuse further enqueues.
	done     chan struct{}
	stopOnce sync.Once

	// closeOnce guarantees teardown runs exactly once regardless of exit path.
	closeOnce sync.Once

	// name is the registered display name, empty until negotiation completes.
	// Written only by the session's own goroutine before the directory insert.
	name string

	state atomic.Int32

	// structured logger with session context.
	logger zerolog.Logger
}

// NewSession constructs a session over the given transport. The session does
// nothing until Run is called.
func NewSession(transport Transport, roster *Roster, directory *Directory, router *Router, sendQueueSize int) *Session {
	id := uuid.NewString()

	sessionLogger := logx.Logger().With().
		Str("session_id", id).
		Str("remote_addr", transport.RemoteAddr()).
		Logger()

	return &Session{
		id:        id,
		transport: transport,
		roster:    roster,
		directory: directory,
		router:    router,
		send:      make(chan string, sendQueueSize),
		done:      make(chan struct{}),
		logger:    sessionLogger,
	}
}

// ID returns the session's opaque handle.
func (s *Session) ID() string {
	return s.id
}

// Name returns the registered display name, or "" while negotiating.
func (s *Session) Name() string {
	return s.name
}

// State returns the session's current protocol state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run drives the session to completion: it starts the write pump, walks the
// state machine on the read side, and finally tears the session down. It
// returns when the peer disconnects, the transport fails, or Close is called.
func (s *Session) Run() {
	defer s.teardown()

	s.state.Store(int32(StateNegotiating))
	go s.writePump()

	if !s.negotiate() {
		return
	}

	s.readLoop()
}

// Close asks the session to stop. The write pump exits and closes the
// transport, which unblocks the read side and triggers teardown inside Run.
func (s *Session) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// negotiate loops on name prompts until the peer registers a unique, valid
// name. It returns false when the peer disconnects first. On success the
// session is ACTIVE, listed in the directory, and every active session
// (this one included) has received a refreshed roster view.
func (s *Session) negotiate() bool {
	for {
		s.enqueue(VerbSubmitName)

		line, err := s.transport.ReadLine()
		if err != nil {
			s.logger.Info().Msg("Peer left during name negotiation.")
			return false
		}

		candidate := strings.TrimSpace(line)
		if !ValidName(candidate) {
			s.logger.Debug().Str("candidate", candidate).Msg("Rejected invalid name candidate.")
			continue
		}

		if !s.roster.TryRegister(candidate) {
			s.logger.Debug().Str("candidate", candidate).Msg("Name already taken, re-prompting.")
			continue
		}

		s.name = candidate
		s.enqueue(VerbNameAccepted)
		s.directory.Insert(s, candidate)
		s.state.Store(int32(StateActive))

		s.logger.Info().
			Str("name", candidate).
			Int("active_sessions", s.directory.Len()).
			Msg("Name accepted, session active.")

		s.refreshRosterViews()
		return true
	}
}

// readLoop feeds each inbound line through the router and enqueues the
// resulting deliveries until the peer disconnects or the transport fails.
func (s *Session) readLoop() {
	for {
		line, err := s.transport.ReadLine()
		if err != nil {
			s.logger.Info().Err(err).Msg("Session read loop finished.")
			return
		}

		for _, delivery := range s.router.Route(s, line) {
			delivery.Target.enqueue(delivery.Line)
		}
	}
}

// refreshRosterViews pushes a personalized ACTIVELIST line to every active
// session. All views come from one directory snapshot.
func (s *Session) refreshRosterViews() {
	for _, view := range s.directory.Views() {
		view.Session.enqueue(RenderActiveList(view.Names))
	}
}

// enqueue places one line on the session's outbound queue without blocking.
// Lines for a stopped session, or beyond the queue capacity, are dropped.
func (s *Session) enqueue(line string) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.send <- line:
	default:
		s.logger.Warn().
			Int("queue_len", len(s.send)).
			Msg("Session send queue full, dropping line.")
	}
}

// writePump drains the send queue onto the transport. It owns all transport
// writes. On exit it closes the transport, which also unblocks the read side.
func (s *Session) writePump() {
	defer func() {
		if err := s.transport.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Transport close error in write pump.")
		}
	}()

	for {
		select {
		case line := <-s.send:
			if err := s.transport.WriteLine(line); err != nil {
				s.logger.Info().Err(err).Msg("Transport write failed, stopping session.")
				return
			}

		case <-s.done:
			return
		}
	}
}

// teardown runs exactly once per session. If a name was registered it is
// released, the session leaves the directory, and every surviving session
// receives a refreshed roster view. The transport is closed unconditionally
// as the last step.
func (s *Session) teardown() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		s.stopOnce.Do(func() {
			close(s.done)
		})

		if s.name != "" {
			// Leave the directory before freeing the name: once Release runs,
			// a new connection may re-register it immediately.
			s.directory.Remove(s)
			s.roster.Release(s.name)

			s.logger.Info().
				Str("name", s.name).
				Int("active_sessions", s.directory.Len()).
				Msg("Session closed, name released.")

			s.refreshRosterViews()
		}

		if err := s.transport.Close(); err != nil {
			s.logger.Debug().Err(err).Msg("Transport close error during teardown.")
		}
	})
}
