// Package api holds the JSON handlers mounted under /api.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/holoscan/internal/scan"
)

// Controller is the live scan session as seen by HTTP and websocket clients.
type Controller interface {
	Snapshot() scan.Snapshot
	Post(ev scan.Event) bool
	Reset() bool
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
