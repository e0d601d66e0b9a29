package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/holoscan/internal/scan"
)

// SessionHandler exposes the live session.
type SessionHandler struct {
	ctl       Controller
	revealURL func() string
}

// NewSessionHandler creates a SessionHandler. revealURL may be nil.
func NewSessionHandler(ctl Controller, revealURL func() string) *SessionHandler {
	return &SessionHandler{ctl: ctl, revealURL: revealURL}
}

type sessionResponse struct {
	scan.Snapshot
	ElapsedMs int64  `json:"elapsed_ms"`
	RevealURL string `json:"reveal_url,omitempty"`
}

type primedRequest struct {
	Success *bool `json:"success"`
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
}

// Get handles GET /api/session.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap := h.ctl.Snapshot()
	resp := sessionResponse{Snapshot: snap, ElapsedMs: snap.Elapsed.Milliseconds()}
	if h.revealURL != nil {
		resp.RevealURL = h.revealURL()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Reset handles POST /api/session/reset.
func (h *SessionHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.accept(w, h.ctl.Reset())
}

// Primed handles POST /api/session/reveal/primed with {"success": bool}.
func (h *SessionHandler) Primed(w http.ResponseWriter, r *http.Request) {
	var req primedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Success == nil {
		writeError(w, http.StatusBadRequest, "success is required")
		return
	}
	h.accept(w, h.ctl.Post(scan.RevealPrimedEvent{Success: *req.Success}))
}

// Play handles POST /api/session/reveal/play.
func (h *SessionHandler) Play(w http.ResponseWriter, r *http.Request) {
	h.accept(w, h.ctl.Post(scan.RevealRequestEvent{}))
}

// accept reports queueing only; the session decides whether the event applies
// to its current phase.
func (h *SessionHandler) accept(w http.ResponseWriter, ok bool) {
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "session is not running")
		return
	}
	writeJSON(w, http.StatusAccepted, acceptedResponse{Accepted: true})
}
