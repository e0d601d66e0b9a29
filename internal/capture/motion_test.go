package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{name: "explicit", threshold: 5.0, want: 5.0},
		{name: "zero uses default", threshold: 0, want: DefaultMotionThreshold},
		{name: "negative uses default", threshold: -1, want: DefaultMotionThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if got := md.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	a := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer a.Close()
	b := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer b.Close()

	if detected, pct := md.Detect(&a); detected || pct != 0 {
		t.Errorf("first frame = (%v, %f), want (false, 0)", detected, pct)
	}
	if detected, pct := md.Detect(&b); detected {
		t.Errorf("identical frames detected motion, changePercent = %f", pct)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&black)
	detected, pct := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", pct)
	}
	if pct < 50.0 {
		t.Errorf("changePercent = %f, want > 50", pct)
	}
}

func TestMotionDetector_ResetForgetsBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	black := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&black)
	md.Reset()

	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should only set the baseline")
	}
}

func TestMotionDetector_CloseTwice(t *testing.T) {
	md := NewMotionDetector(1.0)
	md.Close()
	md.Close()
}

func TestPacer(t *testing.T) {
	p := NewPacer()
	start := time.Now()

	if p.FPS() != IdleFPS || p.Active() {
		t.Fatalf("new pacer = (%d, %v), want idle", p.FPS(), p.Active())
	}

	steps := []struct {
		name        string
		motion      bool
		at          time.Duration
		wantFPS     int
		wantChanged bool
	}{
		{name: "still", motion: false, at: 0, wantFPS: IdleFPS},
		{name: "motion wakes", motion: true, at: 100 * time.Millisecond, wantFPS: ActiveFPS, wantChanged: true},
		{name: "more motion", motion: true, at: 200 * time.Millisecond, wantFPS: ActiveFPS},
		{name: "still within timeout", motion: false, at: 2 * time.Second, wantFPS: ActiveFPS},
		{name: "timeout sleeps", motion: false, at: 2300 * time.Millisecond, wantFPS: IdleFPS, wantChanged: true},
		{name: "stays idle", motion: false, at: 5 * time.Second, wantFPS: IdleFPS},
	}

	for _, s := range steps {
		fps, changed := p.Observe(s.motion, start.Add(s.at))
		if fps != s.wantFPS || changed != s.wantChanged {
			t.Errorf("%s: Observe() = (%d, %v), want (%d, %v)", s.name, fps, changed, s.wantFPS, s.wantChanged)
		}
	}
}
