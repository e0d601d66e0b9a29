package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	blurKernel    = 21
	diffThreshold = 25

	// DefaultMotionThreshold is the percent of changed pixels that counts as
	// motion.
	DefaultMotionThreshold = 1.0
	// DefaultIdleTimeout is how long the scene must stay still before the
	// pipeline drops back to IdleFPS.
	DefaultIdleTimeout = 2 * time.Second
)

// MotionDetector compares consecutive blurred grayscale frames.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector returns a detector that fires when more than threshold
// percent of pixels change. Non-positive thresholds use the default.
func NewMotionDetector(threshold float64) *MotionDetector {
	if threshold <= 0 {
		threshold = DefaultMotionThreshold
	}
	return &MotionDetector{threshold: threshold, prev: gocv.NewMat()}
}

// Threshold returns the configured change percentage.
func (m *MotionDetector) Threshold() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.threshold
}

// Detect reports whether frame differs from the previous one and by how much.
// The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !m.primed {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)
	gocv.Threshold(diff, &diff, diffThreshold, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(diff)) / float64(diff.Rows()*diff.Cols()) * 100
	blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset forgets the baseline.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline Mat.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	m.prev.Close()
	m.prev = gocv.NewMat()
	m.primed = false
}

// Pacer picks the capture rate from motion results. Motion switches to
// ActiveFPS at once; IdleTimeout without motion switches back.
type Pacer struct {
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewPacer returns a Pacer with the package defaults.
func NewPacer() *Pacer {
	return &Pacer{IdleFPS: IdleFPS, ActiveFPS: ActiveFPS, IdleTimeout: DefaultIdleTimeout}
}

// Active reports whether the pacer is at ActiveFPS.
func (p *Pacer) Active() bool { return p.active }

// FPS returns the current rate.
func (p *Pacer) FPS() int {
	if p.active {
		return p.ActiveFPS
	}
	return p.IdleFPS
}

// Observe records one motion result. It returns the rate to use and whether
// it changed.
func (p *Pacer) Observe(motion bool, now time.Time) (int, bool) {
	switch {
	case motion:
		p.lastMotion = now
		if !p.active {
			p.active = true
			return p.ActiveFPS, true
		}
	case p.active && now.Sub(p.lastMotion) > p.IdleTimeout:
		p.active = false
		return p.IdleFPS, true
	}
	return p.FPS(), false
}
