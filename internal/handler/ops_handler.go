/*
Package handler provides the HTTP handlers and routing setup for the relay's ops surface.

This file contains the ops API handlers: listing the currently-active peers and
relaying a server-side announcement to every connected session.
*/
package handler

import (
	"net/http"
	"strings"

	"github.com/chamathjayasekara99/relaychat/internal/pkg/errs"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/logx"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/req"
	"github.com/chamathjayasekara99/relaychat/internal/pkg/resp"
)

// MaxAnnounceBytes caps the length of an announcement message.
const MaxAnnounceBytes = 5000

// PeersResponse is the payload returned by the peers endpoint.
type PeersResponse struct {
	// Names lists the display names of all currently-active sessions.
	Names []string `json:"names"`

	// Count is the number of active sessions.
	Count int `json:"count"`
}

// AnnounceRequest is the body accepted by the announce endpoint.
type AnnounceRequest struct {
	// Message is the text relayed to every active session.
	Message string `json:"message"`
}

// HandleListPeers returns an HTTP HandlerFunc that reports the active roster.
func HandleListPeers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names := deps.Relay.PeerNames()

		resp.RespondSuccess(w, r, PeersResponse{
			Names: names,
			Count: len(names),
		})
	}
}

// HandleAnnounce returns an HTTP HandlerFunc that relays a server-side
// broadcast, rendered with the reserved server sender label, to every
// active session.
func HandleAnnounce(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body AnnounceRequest
		if bindErr := req.BindJSON(r, &body); bindErr != nil {
			resp.RespondError(w, r, bindErr)
			return
		}

		message := strings.TrimSpace(body.Message)
		if message == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrAnnounceEmpty))
			return
		}

		if len(message) > MaxAnnounceBytes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		if err := deps.Relay.Announce(message); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrRelayUnavailable))
			return
		}

		logx.Info("Announcement accepted.", "bytes", len(message))
		resp.RespondSuccess(w, r, nil)
	}
}
