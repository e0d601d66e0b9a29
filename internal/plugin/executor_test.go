package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string, hooks ...Hook) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Hooks:      hooks,
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	p := scriptPlugin(t, "ok", `echo '{"success":true,"data":{"message":"played"}}'`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{Hook: HookRevealPlay})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v, want success", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "played" {
		t.Errorf("message = %q, want played", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	p := scriptPlugin(t, "echo", `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"`)
	p.Manifest.Config = json.RawMessage(`{"url":"/media/reveal.mp4"}`)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	req := &Request{Hook: HookScanComplete, SessionID: "s1", At: at}

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var got Request
	if err := json.Unmarshal(resp.Data, &got); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if got.Hook != HookScanComplete || got.SessionID != "s1" || !got.At.Equal(at) {
		t.Errorf("echoed request = %+v", got)
	}
	if string(got.Config) != `{"url":"/media/reveal.mp4"}` {
		t.Errorf("manifest config not forwarded, got %s", got.Config)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	p := scriptPlugin(t, "slow", `exec sleep 5`)

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), p, &Request{})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr string
	}{
		{name: "invalid json", script: `echo 'not json'`, wantErr: "failed to parse plugin response"},
		{name: "non-zero exit", script: `echo 'boom' >&2
exit 3`, wantErr: "stderr: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scriptPlugin(t, "bad", tt.script)
			_, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{})
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Execute() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	p := scriptPlugin(t, "refuse", `echo '{"success":false,"error":"no player"}'`)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), p, &Request{})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success || resp.Error != "no player" {
		t.Errorf("response = %+v, want failure 'no player'", resp)
	}
}

func TestNewExecutor(t *testing.T) {
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("NewExecutor(0).Timeout() = %v, want %v", got, DefaultTimeout)
	}
	if got := NewExecutor(time.Second).Timeout(); got != time.Second {
		t.Errorf("Timeout() = %v, want 1s", got)
	}
}
