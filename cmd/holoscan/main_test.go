package main

import (
	"testing"
	"time"

	"github.com/ayusman/holoscan/internal/config"
)

func TestLocalURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080"},
		{"127.0.0.1:9000", "http://127.0.0.1:9000"},
	}
	for _, tt := range tests {
		if got := localURL(tt.addr); got != tt.want {
			t.Errorf("localURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func TestRootCmd_FlagsOverrideEnvironment(t *testing.T) {
	svc := config.Service{Addr: ":8080", HoldDuration: 5 * time.Second, PoseSource: config.SourceCamera}
	cmd := newRootCmd(svc)

	if err := cmd.ParseFlags([]string{"--addr", ":9090", "--hold", "3s", "--pose-source", "browser"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	f := cmd.Flags()
	if got, _ := f.GetString("addr"); got != ":9090" {
		t.Errorf("addr = %q, want :9090", got)
	}
	if got, _ := f.GetDuration("hold"); got != 3*time.Second {
		t.Errorf("hold = %v, want 3s", got)
	}
	if got, _ := f.GetString("pose-source"); got != config.SourceBrowser {
		t.Errorf("pose-source = %q, want browser", got)
	}
	if got, _ := f.GetInt("camera"); got != 0 {
		t.Errorf("camera = %d, want default 0", got)
	}
}

func TestRootCmd_HasVersion(t *testing.T) {
	cmd := newRootCmd(config.Service{})
	sub, _, err := cmd.Find([]string{"version"})
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if sub.Use != "version" {
		t.Errorf("got %q, want version", sub.Use)
	}
}
