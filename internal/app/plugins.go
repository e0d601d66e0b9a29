package app

import (
	"encoding/json"
	"time"

	"github.com/ayusman/holoscan/internal/plugin"
	"github.com/ayusman/holoscan/internal/scan"
)

type revealParams struct {
	URL string `json:"url,omitempty"`
}

// PluginHooks fires hook plugins at scan milestones: scan_complete when the
// hold completes, reveal_pending when the sequence ends and reveal_play on
// the user's tap. revealURL may be nil.
func PluginHooks(d *plugin.Dispatcher, revealURL func() string) scan.Hooks {
	var sessionID string

	fire := func(h plugin.Hook) {
		req := &plugin.Request{Hook: h, SessionID: sessionID, At: time.Now()}
		if revealURL != nil {
			if url := revealURL(); url != "" {
				req.Params, _ = json.Marshal(revealParams{URL: url})
			}
		}
		d.Fire(req)
	}

	return scan.Hooks{
		OnSessionStart: func(id string, _ time.Time) { sessionID = id },
		OnScanComplete: func() { fire(plugin.HookScanComplete) },
		OnPhase: func(_, to scan.Phase) {
			if to == scan.RevealPending {
				fire(plugin.HookRevealPending)
			}
		},
		OnUserRevealRequest: func() { fire(plugin.HookRevealPlay) },
	}
}
