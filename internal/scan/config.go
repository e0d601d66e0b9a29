package scan

import (
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/holoscan/internal/detector"
	"github.com/ayusman/holoscan/internal/gesture"
)

// Timing defaults.
const (
	// DefaultHoldDuration is how long the hand must stay still to complete a scan.
	DefaultHoldDuration = 5 * time.Second
	// DefaultTransitionDelay separates hiding the scanner from starting the sequence.
	DefaultTransitionDelay = 600 * time.Millisecond
	// DefaultLineEntrance is the entrance animation length of each sequence line.
	DefaultLineEntrance = 800 * time.Millisecond
	// DefaultSequenceWindow is measured from sequence start to reveal.
	DefaultSequenceWindow = 4200 * time.Millisecond
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid scan config")

// Line is one scripted line of the sequence.
type Line struct {
	// Offset from sequence start at which the line enters.
	Offset time.Duration `json:"offset"`
	// Entrance is the length of the line's entrance animation.
	Entrance time.Duration `json:"entrance"`
}

// Config holds every tunable of a scan session.
type Config struct {
	// DriftThreshold is the mean landmark displacement between consecutive
	// frames, in normalized units, below which the hand counts as still.
	DriftThreshold float64
	// Window lists the landmark indices drift is measured over.
	Window []int
	// HoldDuration is the continuous stability needed to complete the scan.
	HoldDuration time.Duration
	// TransitionDelay runs from scan completion to sequence start.
	TransitionDelay time.Duration
	// Lines are the sequence lines in display order.
	Lines []Line
	// SequenceWindow runs from sequence start to RevealPending.
	SequenceWindow time.Duration
}

// DefaultConfig returns the tuning the experience ships with.
func DefaultConfig() Config {
	return Config{
		DriftThreshold:  gesture.DefaultDriftThreshold,
		Window:          append([]int(nil), gesture.DefaultWindow...),
		HoldDuration:    DefaultHoldDuration,
		TransitionDelay: DefaultTransitionDelay,
		Lines: []Line{
			{Offset: 0, Entrance: DefaultLineEntrance},
			{Offset: 1200 * time.Millisecond, Entrance: DefaultLineEntrance},
			{Offset: 2400 * time.Millisecond, Entrance: DefaultLineEntrance},
		},
		SequenceWindow: DefaultSequenceWindow,
	}
}

// Validate checks the config for values the machine cannot run with.
func (c Config) Validate() error {
	if c.DriftThreshold <= 0 {
		return fmt.Errorf("%w: drift threshold must be positive, got %g", ErrInvalidConfig, c.DriftThreshold)
	}
	if len(c.Window) == 0 {
		return fmt.Errorf("%w: stability window is empty", ErrInvalidConfig)
	}
	for _, i := range c.Window {
		if i < 0 || i >= detector.NumLandmarks {
			return fmt.Errorf("%w: landmark index %d out of range", ErrInvalidConfig, i)
		}
	}
	if c.HoldDuration <= 0 {
		return fmt.Errorf("%w: hold duration must be positive, got %s", ErrInvalidConfig, c.HoldDuration)
	}
	if c.TransitionDelay < 0 {
		return fmt.Errorf("%w: transition delay is negative", ErrInvalidConfig)
	}
	if c.SequenceWindow <= 0 {
		return fmt.Errorf("%w: sequence window must be positive, got %s", ErrInvalidConfig, c.SequenceWindow)
	}
	for n, l := range c.Lines {
		if l.Offset < 0 || l.Entrance < 0 {
			return fmt.Errorf("%w: line %d has negative timing", ErrInvalidConfig, n)
		}
		if l.Offset >= c.SequenceWindow {
			return fmt.Errorf("%w: line %d starts at %s, after the %s sequence window",
				ErrInvalidConfig, n, l.Offset, c.SequenceWindow)
		}
	}
	return nil
}
