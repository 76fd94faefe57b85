/*
Package logx provides a structured logging wrapper based on zerolog.

This file contains the middleware for the relay's ops router. It emits one log line
per completed request (method, path, status, payload size, latency) and scrubs the
caller's address before it reaches the logs. Chat traffic itself is logged by the
session layer, not here.
*/
package logx

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// anonymizeIP coarsens a remote address for logging. The port is dropped,
// the last IPv4 octet is zeroed, and the second half of an IPv6 address
// collapses to "::". Addresses that cannot be parsed log as "unknown_ip".
func anonymizeIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		remoteAddr = host
	}

	ip := net.ParseIP(remoteAddr)
	if ip == nil {
		return "unknown_ip"
	}

	if ip.IsLoopback() {
		return "127.0.0.1"
	}

	if v4 := ip.To4(); v4 != nil {
		return v4[:3].String() + ".0"
	}

	return ip.To16()[:8].String() + "::"
}

// RequestLogger returns the ops middleware that injects a request-scoped
// logger into the context and logs the request once the handler returns.
// Client errors log at warn level and server errors at error level, so a
// burst of rejected announces or origin-check failures stands out.
func RequestLogger() func(next http.Handler) http.Handler {
	base := Logger()

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			logger := base.With().
				Str("component", "ops").
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("remote_ip", anonymizeIP(r.RemoteAddr)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			r = r.WithContext(logger.WithContext(r.Context()))

			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()

			event := logger.Info()
			switch {
			case status >= 500:
				event = logger.Error()
			case status >= 400:
				event = logger.Warn()
			}

			event.
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("latency", time.Since(start)).
				Msg("Ops request completed")
		}

		return http.HandlerFunc(fn)
	}
}
