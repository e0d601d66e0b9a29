// Package plugin runs external programs when a scan session reaches a
// milestone.
package plugin

import (
	"encoding/json"
	"time"
)

// Hook names a session milestone plugins can subscribe to.
type Hook string

const (
	// HookScanComplete fires when the hold completes.
	HookScanComplete Hook = "scan_complete"
	// HookRevealPending fires when the sequence has ended and the reveal is
	// being primed.
	HookRevealPending Hook = "reveal_pending"
	// HookRevealPlay fires when the user starts the reveal.
	HookRevealPlay Hook = "reveal_play"
)

// Manifest is a plugin's plugin.json.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	Description string          `json:"description"`
	Executable  string          `json:"executable"`
	Hooks       []Hook          `json:"hooks"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Handles reports whether the manifest subscribes to h.
func (m Manifest) Handles(h Hook) bool {
	for _, x := range m.Hooks {
		if x == h {
			return true
		}
	}
	return false
}

// Request is written to the plugin's stdin as JSON.
type Request struct {
	Hook      Hook            `json:"hook"`
	SessionID string          `json:"session_id"`
	At        time.Time       `json:"at"`
	Config    json.RawMessage `json:"config,omitempty"`
	Params    json.RawMessage `json:"params,omitempty"`
}

// Response is read from the plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
