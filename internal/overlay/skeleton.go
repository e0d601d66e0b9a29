// Package overlay draws the tracked hand over the mirrored camera feed.
package overlay

import (
	"image"
	"image/color"
	"math"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/holoscan/internal/detector"
)

// Renderer receives the current pose every frame a hand is visible.
type Renderer interface {
	Render(pose *detector.Pose)
	Clear()
}

// Connections are the landmark pairs joined by skeleton bones.
var Connections = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP},
	{detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},

	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.MiddleMCP},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.PinkyMCP},
	{detector.PinkyMCP, detector.Wrist},

	{detector.IndexMCP, detector.IndexPIP}, {detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.RingMCP, detector.RingPIP}, {detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
}

// Style controls how the skeleton looks.
type Style struct {
	Color       color.RGBA
	Thickness   int
	JointRadius int
	// PulsePeriod drives the alpha oscillation; zero disables the pulse.
	PulsePeriod time.Duration
}

// NeonStyle is the cyan glow used by the scanner.
func NeonStyle() Style {
	return Style{
		Color:       color.RGBA{R: 54, G: 210, B: 255, A: 255},
		Thickness:   3,
		JointRadius: 4,
		PulsePeriod: 500 * time.Millisecond,
	}
}

// Segment is one bone in pixel coordinates.
type Segment struct {
	A, B image.Point
}

// Skeleton keeps the latest pose and draws it on demand. Render and Clear
// come from the scan loop; Draw from the capture pipeline.
type Skeleton struct {
	style Style
	now   func() time.Time

	mu   sync.RWMutex
	pose *detector.Pose
}

// NewSkeleton creates a Skeleton with the given style.
func NewSkeleton(style Style) *Skeleton {
	return &Skeleton{style: style, now: time.Now}
}

// Render replaces the pose to draw.
func (s *Skeleton) Render(pose *detector.Pose) {
	c := pose.Clone()
	s.mu.Lock()
	s.pose = c
	s.mu.Unlock()
}

// Clear removes the pose.
func (s *Skeleton) Clear() {
	s.mu.Lock()
	s.pose = nil
	s.mu.Unlock()
}

// Pose returns a copy of the pose currently drawn, or nil.
func (s *Skeleton) Pose() *detector.Pose {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pose.Clone()
}

// Mirror flips a camera frame horizontally in place so it reads as a
// self-view.
func Mirror(frame *gocv.Mat) {
	gocv.Flip(*frame, frame, 1)
}

// Draw paints the current pose onto a frame that has already been mirrored.
func (s *Skeleton) Draw(frame *gocv.Mat) {
	pose := s.Pose()
	if pose == nil || frame == nil || frame.Empty() {
		return
	}

	w, h := frame.Cols(), frame.Rows()
	layer := frame.Clone()
	defer layer.Close()

	for _, seg := range Segments(pose, w, h) {
		gocv.Line(&layer, seg.A, seg.B, s.style.Color, s.style.Thickness)
	}
	for _, pt := range Joints(pose, w, h) {
		gocv.Circle(&layer, pt, s.style.JointRadius, s.style.Color, -1)
	}

	alpha := s.alpha()
	gocv.AddWeighted(layer, alpha, *frame, 1-alpha, 0, frame)
}

// alpha pulses between 0.75 and 0.95.
func (s *Skeleton) alpha() float64 {
	if s.style.PulsePeriod <= 0 {
		return 0.85
	}
	t := float64(s.now().UnixNano()) / float64(s.style.PulsePeriod)
	return 0.85 + math.Sin(t)*0.1
}

// Segments maps the pose's bones to mirrored pixel coordinates on a w x h
// frame. Bones with a missing endpoint are skipped.
func Segments(pose *detector.Pose, w, h int) []Segment {
	segs := make([]Segment, 0, len(Connections))
	for _, c := range Connections {
		if !pose.Has(c[0]) || !pose.Has(c[1]) {
			continue
		}
		segs = append(segs, Segment{
			A: project(pose.Landmarks[c[0]], w, h),
			B: project(pose.Landmarks[c[1]], w, h),
		})
	}
	return segs
}

// Joints maps every present landmark to mirrored pixel coordinates.
func Joints(pose *detector.Pose, w, h int) []image.Point {
	if pose == nil {
		return nil
	}
	pts := make([]image.Point, 0, len(pose.Landmarks))
	for i := range pose.Landmarks {
		if pose.Has(i) {
			pts = append(pts, project(pose.Landmarks[i], w, h))
		}
	}
	return pts
}

func project(p detector.Point3D, w, h int) image.Point {
	return image.Point{
		X: int(math.Round(float64(w) - p.X*float64(w))),
		Y: int(math.Round(p.Y * float64(h))),
	}
}
