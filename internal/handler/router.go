/*
Package handler provides the HTTP handlers and routing setup for the relay's ops surface.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to the ops handlers and the
WebSocket transport endpoint.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/chamathjayasekara99/relaychat/internal/pkg/limiter"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/resp"
)

const (
	// AnnounceRate and AnnounceBurst throttle server-side announcements per IP.
	AnnounceRate  = 0.2
	AnnounceBurst = 3

	// JoinRate and JoinBurst throttle WebSocket upgrades per IP.
	JoinRate  = 0.5
	JoinBurst = 5
)

// Router sets up the HTTP routing table (chi.Router) for the ops surface.
// It configures CORS and the WebSocket origin check from the allowed-origins
// list, applies global middleware, and mounts the health, peers, announce,
// and WebSocket routes.
func Router(deps *AppDeps) http.Handler {
	announceLimiter := limiter.NewIPRateLimiter(rate.Limit(AnnounceRate), AnnounceBurst)
	joinLimiter := limiter.NewIPRateLimiter(rate.Limit(JoinRate), JoinBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "relaychat",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Get("/peers", HandleListPeers(deps))

		rateLimitedAnnounce := announceLimiter.Middleware(HandleAnnounce(deps))
		api.Post("/announce", rateLimitedAnnounce.ServeHTTP)
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, joinLimiter, deps))

	return r
}
