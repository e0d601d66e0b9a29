// Package gesture decides when a tracked hand is being held still.
package gesture

import "github.com/ayusman/holoscan/internal/detector"

// DefaultDriftThreshold is the average per-landmark displacement, in
// normalized frame units, below which two consecutive poses count as stable.
const DefaultDriftThreshold = 0.01

// DefaultWindow is the wrist plus the four finger knuckles. These points
// follow the whole hand but barely move when fingers flex.
var DefaultWindow = []int{
	detector.Wrist,
	detector.IndexMCP,
	detector.MiddleMCP,
	detector.RingMCP,
	detector.PinkyMCP,
}

// Evaluator compares consecutive poses over a fixed landmark window.
type Evaluator struct {
	window    []int
	threshold float64
}

// NewEvaluator creates an Evaluator. An empty window falls back to
// DefaultWindow and a non-positive threshold to DefaultDriftThreshold.
func NewEvaluator(window []int, threshold float64) *Evaluator {
	if len(window) == 0 {
		window = DefaultWindow
	}
	if threshold <= 0 {
		threshold = DefaultDriftThreshold
	}
	return &Evaluator{
		window:    append([]int(nil), window...),
		threshold: threshold,
	}
}

// Window returns the landmark indices drift is measured over.
func (e *Evaluator) Window() []int {
	return append([]int(nil), e.window...)
}

// Threshold returns the drift threshold.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Drift returns the mean 2D displacement across the window. ok is false when
// either pose is missing or lacks a window landmark.
func (e *Evaluator) Drift(current, previous *detector.Pose) (drift float64, ok bool) {
	if !current.Valid(e.window) || !previous.Valid(e.window) {
		return 0, false
	}

	var total float64
	for _, i := range e.window {
		total += detector.Distance2D(current.Landmarks[i], previous.Landmarks[i])
	}
	return total / float64(len(e.window)), true
}

// IsStable reports whether the hand moved less than the threshold between
// previous and current. No hand is never stable.
func (e *Evaluator) IsStable(current, previous *detector.Pose) bool {
	drift, ok := e.Drift(current, previous)
	return ok && drift < e.threshold
}
