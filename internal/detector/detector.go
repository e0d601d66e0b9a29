package detector

import "gocv.io/x/gocv"

// Detector is a pose source working on camera frames.
type Detector interface {
	// Detect analyzes a video frame and returns the most prominent hand,
	// or nil when no hand is visible.
	Detect(frame *gocv.Mat) (*Pose, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the number of hands the model tracks. Only the first is used.
	MaxHands int

	// ModelComplexity selects the landmark model variant (0 = lite, 1 = full).
	ModelComplexity int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns the single-hand settings the scan experience runs with.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		ModelComplexity: 1,
		MinConfidence:   0.6,
		MinTrackingConf: 0.6,
	}
}
