package gesture

import (
	"time"

	"github.com/ayusman/holoscan/internal/detector"
)

// Renderer receives the pose for every frame a hand is present and a Clear
// whenever it is gone.
type Renderer interface {
	Render(pose *detector.Pose)
	Clear()
}

// Accumulator tracks how long the hand has been held still without a break.
//
// Drift is measured frame to frame: the reference pose is replaced on every
// frame, stable or not. A hand that creeps slowly enough never trips the
// threshold.
type Accumulator struct {
	eval     *Evaluator
	renderer Renderer

	anchor time.Time
	last   *detector.Pose
}

// NewAccumulator creates an Accumulator. renderer may be nil.
func NewAccumulator(eval *Evaluator, renderer Renderer) *Accumulator {
	if eval == nil {
		eval = NewEvaluator(nil, 0)
	}
	return &Accumulator{
		eval:     eval,
		renderer: renderer,
	}
}

// OnFrame consumes one frame's pose (nil for no hand) captured at now and
// returns the continuous stable duration so far.
func (a *Accumulator) OnFrame(pose *detector.Pose, now time.Time) time.Duration {
	if !pose.Valid(a.eval.window) {
		a.anchor = time.Time{}
		a.last = nil
		if a.renderer != nil {
			a.renderer.Clear()
		}
		return 0
	}

	if a.renderer != nil {
		a.renderer.Render(pose)
	}

	prev := a.last
	a.last = pose

	if prev == nil {
		return 0
	}

	if !a.eval.IsStable(pose, prev) {
		a.anchor = time.Time{}
		return 0
	}

	if a.anchor.IsZero() {
		a.anchor = now
	}

	elapsed := now.Sub(a.anchor)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Stable reports whether the last frame continued a stable run.
func (a *Accumulator) Stable() bool {
	return !a.anchor.IsZero()
}

// HandPresent reports whether the last frame carried a usable pose.
func (a *Accumulator) HandPresent() bool {
	return a.last != nil
}

// Reset forgets the reference pose and any stable run.
func (a *Accumulator) Reset() {
	a.anchor = time.Time{}
	a.last = nil
}
