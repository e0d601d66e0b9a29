// Package detector provides hand pose types and the pose sources that produce them.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to the frame
// (0..1), Z is the model's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose is one frame's detected hand.
// Landmarks are ordered by the indices above; a pose delivered by a
// misbehaving source may carry fewer than NumLandmarks points.
type Pose struct {
	Landmarks  []Point3D `json:"landmarks"`
	Handedness string    `json:"handedness,omitempty"` // "Left" or "Right"
	Score      float64   `json:"score,omitempty"`
}

// Has reports whether the pose carries a finite landmark at index i.
func (p *Pose) Has(i int) bool {
	if p == nil || i < 0 || i >= len(p.Landmarks) {
		return false
	}
	pt := p.Landmarks[i]
	return finite(pt.X) && finite(pt.Y)
}

// Valid reports whether every index in required is present.
func (p *Pose) Valid(required []int) bool {
	if p == nil {
		return false
	}
	for _, i := range required {
		if !p.Has(i) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the pose.
func (p *Pose) Clone() *Pose {
	if p == nil {
		return nil
	}
	c := *p
	c.Landmarks = append([]Point3D(nil), p.Landmarks...)
	return &c
}

// Distance2D is the Euclidean distance between two landmarks in the image plane.
func Distance2D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
