/*
Package relay contains the core logic of the chat relay.

This file defines the Server, the composition root of the relay core. It owns the
shared roster/directory/router, accepts TCP connections (throttled per client IP),
spawns one session per connection, and coordinates graceful shutdown. Transports
from other listeners (the WebSocket endpoint) are handed in through HandleTransport.
*/
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/chamathjayasekara99/relaychat/internal/configs"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/limiter"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
)

// Server is the chat relay: shared state, the TCP accept loop, and the set of
// live sessions across all transports.
type Server struct {
	// config holds the application's read-only configuration settings.
	config *configs.AppConfig

	roster    *Roster
	directory *Directory
	router    *Router

	// connLimiter throttles connection churn per client IP.
	connLimiter *limiter.IPRateLimiter

	// mu protects sessions.
	mu sync.Mutex

	// sessions tracks every live session, negotiating ones included,
	// so shutdown can reach peers that never registered a name.
	sessions map[*Session]struct{}

	// listener is the TCP listener, nil until ListenAndServe.
	listener net.Listener

	// wg waits for all session goroutines during shutdown.
	wg sync.WaitGroup

	closed atomic.Bool

	// structured logger with server context.
	logger zerolog.Logger
}

// NewServer constructs the relay around the given configuration.
func NewServer(cfg *configs.AppConfig) *Server {
	directory := NewDirectory()

	return &Server{
		config:      cfg,
		roster:      NewRoster(),
		directory:   directory,
		router:      NewRouter(directory),
		connLimiter: limiter.NewIPRateLimiter(rate.Limit(cfg.ConnRate), cfg.ConnBurst),
		sessions:    make(map[*Session]struct{}),
		logger:      logx.Logger().With().Str("component", "relay").Logger(),
	}
}

// ListenAndServe binds the configured TCP port and serves until Shutdown.
// A bind failure is fatal to the process; there is no recovery path.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.config.ChatPort)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("relay: listening on %s: %w", addr, err)
	}

	s.logger.Info().Str("addr", addr).Msg("Chat relay listening.")
	return s.Serve(listener)
}

// Serve accepts connections from the listener until it is closed. Each accepted
// connection is throttled per client IP and then handed to its own session.
// The accept loop touches no shared relay state itself.
func (s *Server) Serve(listener net.Listener) error {
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return nil
			}
			return fmt.Errorf("relay: accept: %w", err)
		}

		remote := conn.RemoteAddr().String()
		if !s.connLimiter.Allow(remote) {
			s.logger.Warn().Str("remote_addr", remote).Msg("Connection rejected: rate limit exceeded.")
			conn.Close()
			continue
		}

		s.HandleTransport(NewTCPTransport(conn, s.config.MaxLineBytes))
	}
}

// HandleTransport starts a session over an established transport and returns
// immediately. It is the entry point for both accepted TCP connections and
// upgraded WebSocket connections.
func (s *Server) HandleTransport(transport Transport) {
	session := NewSession(transport, s.roster, s.directory, s.router, s.config.SendQueueSize)

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		transport.Close()
		return
	}
	s.sessions[session] = struct{}{}
	s.mu.Unlock()

	s.logger.Info().
		Str("session_id", session.ID()).
		Str("remote_addr", transport.RemoteAddr()).
		Msg("New connection accepted.")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		session.Run()

		s.mu.Lock()
		delete(s.sessions, session)
		s.mu.Unlock()
	}()
}

// ErrShuttingDown is returned by Announce once Shutdown has begun.
var ErrShuttingDown = errors.New("relay: shutting down")

// Announce relays a server-side broadcast to every active session, rendered
// with the reserved server sender label. It refuses during shutdown so the
// ops surface does not report success for a message nobody will receive.
func (s *Server) Announce(body string) error {
	if s.closed.Load() {
		return ErrShuttingDown
	}

	rendered := RenderMessage(ServerSender, body)

	targets := s.directory.Sessions()
	for _, target := range targets {
		target.enqueue(rendered)
	}

	s.logger.Info().Int("recipients", len(targets)).Msg("Announcement relayed.")
	return nil
}

// PeerNames returns the names of all currently-active sessions.
func (s *Server) PeerNames() []string {
	return s.directory.Snapshot()
}

// Shutdown stops accepting connections, closes every live session, and waits
// for all session goroutines to finish or the context to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info().Msg("Relay shutting down.")

	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	for session := range s.sessions {
		session.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("Relay shutdown complete.")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("relay: shutdown: %w", ctx.Err())
	}
}
