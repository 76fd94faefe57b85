/*
Package handler provides the HTTP handlers and routing setup for the relay's ops surface.

This file contains the HandleWebSocket function, which upgrades the HTTP connection to
WebSocket and hands it to the relay as a line transport. WebSocket peers then walk the
same session lifecycle as raw TCP clients: name negotiation followed by message routing,
one text frame per protocol line.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/chamathjayasekara99/relaychat/internal/app/relay"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/errs"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/limiter"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.Allow(r.RemoteAddr) {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "remote_addr", r.RemoteAddr)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		logx.Info("WebSocket connection established.", "remote_addr", conn.RemoteAddr().String())

		deps.Relay.HandleTransport(relay.NewWebSocketTransport(conn, deps.Config.MaxLineBytes))
	}
}
