// Command reveal-player opens the reveal video in the platform's default
// player when the user starts the reveal.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request is the plugin executor's input.
type Request struct {
	Hook      string          `json:"hook"`
	SessionID string          `json:"session_id"`
	Config    json.RawMessage `json:"config"`
	Params    json.RawMessage `json:"params"`
}

// Response is written back to the executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config comes from plugin.json; Params from the host may override URL.
type Config struct {
	URL    string `json:"url"`
	Player string `json:"player,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeError(fmt.Sprintf("failed to decode request: %v", err))
		return
	}
	if req.Hook != "reveal_play" {
		writeError(fmt.Sprintf("unsupported hook: %s", req.Hook))
		return
	}

	cfg, err := resolve(req.Config, req.Params)
	if err != nil {
		writeError(err.Error())
		return
	}

	name, args := playCommand(runtime.GOOS, cfg)
	if err := exec.Command(name, args...).Start(); err != nil {
		writeError(fmt.Sprintf("failed to start %s: %v", name, err))
		return
	}

	data, _ := json.Marshal(map[string]string{"url": cfg.URL, "player": name})
	json.NewEncoder(os.Stdout).Encode(Response{Success: true, Data: data})
}

// resolve merges manifest config with per-request params.
func resolve(config, params json.RawMessage) (Config, error) {
	var cfg Config
	if len(config) > 0 {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if len(params) > 0 {
		var over Config
		if err := json.Unmarshal(params, &over); err != nil {
			return cfg, fmt.Errorf("failed to parse params: %w", err)
		}
		if over.URL != "" {
			cfg.URL = over.URL
		}
		if over.Player != "" {
			cfg.Player = over.Player
		}
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return cfg, errors.New("url is required")
	}
	return cfg, nil
}

// playCommand picks the program that opens url on goos.
func playCommand(goos string, cfg Config) (string, []string) {
	if cfg.Player != "" {
		return cfg.Player, []string{cfg.URL}
	}
	switch goos {
	case "darwin":
		return "open", []string{cfg.URL}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", cfg.URL}
	default:
		return "xdg-open", []string{cfg.URL}
	}
}

func writeError(msg string) {
	json.NewEncoder(os.Stdout).Encode(Response{Success: false, Error: msg})
}
