package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a scripted Detector for tests and camera-less demos.
// Each Detect call returns the next queued pose; once the queue is drained
// the last pose set with SetPose is repeated.
type MockDetector struct {
	mu     sync.Mutex
	pose   *Pose
	queue  []*Pose
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a MockDetector that sees no hand.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetPose sets the pose returned by Detect. nil means no hand.
func (m *MockDetector) SetPose(p *Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pose = p
}

// Queue appends poses to be returned once each before falling back to SetPose.
func (m *MockDetector) Queue(poses ...*Pose) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, poses...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted pose or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Pose, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		p := m.queue[0]
		m.queue = m.queue[1:]
		return p.Clone(), nil
	}
	return m.pose.Clone(), nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// OpenPalm returns a right hand held up with all fingers extended,
// centered in the frame.
func OpenPalm() *Pose {
	pts := []Point3D{
		Wrist: {X: 0.5, Y: 0.8},

		ThumbCMC: {X: 0.55, Y: 0.75, Z: 0.02},
		ThumbMCP: {X: 0.62, Y: 0.70, Z: 0.03},
		ThumbIP:  {X: 0.68, Y: 0.65, Z: 0.03},
		ThumbTip: {X: 0.73, Y: 0.60, Z: 0.03},

		IndexMCP: {X: 0.55, Y: 0.68},
		IndexPIP: {X: 0.57, Y: 0.55},
		IndexDIP: {X: 0.58, Y: 0.45},
		IndexTip: {X: 0.58, Y: 0.35},

		MiddleMCP: {X: 0.50, Y: 0.66},
		MiddlePIP: {X: 0.50, Y: 0.52},
		MiddleDIP: {X: 0.50, Y: 0.40},
		MiddleTip: {X: 0.50, Y: 0.28},

		RingMCP: {X: 0.45, Y: 0.68},
		RingPIP: {X: 0.43, Y: 0.55},
		RingDIP: {X: 0.42, Y: 0.45},
		RingTip: {X: 0.42, Y: 0.35},

		PinkyMCP: {X: 0.40, Y: 0.70},
		PinkyPIP: {X: 0.37, Y: 0.60},
		PinkyDIP: {X: 0.35, Y: 0.50},
		PinkyTip: {X: 0.34, Y: 0.42},
	}
	return &Pose{Landmarks: pts, Handedness: "Right", Score: 0.95}
}

// Shifted returns a copy of p with every landmark moved by (dx, dy).
func Shifted(p *Pose, dx, dy float64) *Pose {
	c := p.Clone()
	for i := range c.Landmarks {
		c.Landmarks[i].X += dx
		c.Landmarks[i].Y += dy
	}
	return c
}
