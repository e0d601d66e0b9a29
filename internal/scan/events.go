package scan

import (
	"errors"
	"time"

	"github.com/ayusman/holoscan/internal/detector"
)

// ErrPoseSourceUnavailable means the camera or the detection pipeline could
// not be started. The session never leaves Scanning's idle state and there is
// no automatic retry.
var ErrPoseSourceUnavailable = errors.New("pose source unavailable")

// Event is an input to Machine.Handle.
type Event interface {
	event()
}

// FrameEvent carries one processed video frame. Pose is nil when no hand was
// found.
type FrameEvent struct {
	Pose *detector.Pose
	At   time.Time
}

// Timer names a scheduled transition.
type Timer int

const (
	// TimerTransition ends Transitioning.
	TimerTransition Timer = iota
	// TimerLine shows one sequence line.
	TimerLine
	// TimerSequenceEnd retires the sequence.
	TimerSequenceEnd
)

func (t Timer) String() string {
	switch t {
	case TimerTransition:
		return "transition"
	case TimerLine:
		return "line"
	case TimerSequenceEnd:
		return "sequence_end"
	default:
		return "unknown"
	}
}

// TimerEvent is delivered when a scheduled delay expires. Generation ties it
// to the session that armed it; events from an older generation are dropped.
type TimerEvent struct {
	Timer      Timer
	Line       int
	Generation uint64
}

// RevealPrimedEvent reports the outcome of priming the reveal video.
type RevealPrimedEvent struct {
	Success bool
}

// RevealRequestEvent is the user's tap on the reveal control.
type RevealRequestEvent struct{}

func (FrameEvent) event()         {}
func (TimerEvent) event()         {}
func (RevealPrimedEvent) event()  {}
func (RevealRequestEvent) event() {}

// Scheduler arms one-shot timers for the machine. The event must be handed
// back to Machine.Handle, on the goroutine that owns the machine, once delay
// has passed.
type Scheduler interface {
	Schedule(delay time.Duration, ev TimerEvent)
}

// Hooks are one-shot notifications for the presentation layer. Nil fields
// are skipped. They run on the goroutine that owns the machine and must not
// block.
type Hooks struct {
	OnPhase             func(from, to Phase)
	OnScanComplete      func()
	OnSequenceStart     func()
	OnSequenceLine      func(line int, entrance time.Duration)
	OnSequenceComplete  func()
	OnRevealPrimed      func(success bool)
	OnUserRevealRequest func()

	// Session lifecycle, called by Session only.
	OnSessionStart func(id string, at time.Time)
	OnSessionEnd   func(id string, final Phase)
}

// Chain returns Hooks that call each of hs in order.
func Chain(hs ...Hooks) Hooks {
	return Hooks{
		OnPhase: func(from, to Phase) {
			for _, h := range hs {
				if h.OnPhase != nil {
					h.OnPhase(from, to)
				}
			}
		},
		OnScanComplete: func() {
			for _, h := range hs {
				if h.OnScanComplete != nil {
					h.OnScanComplete()
				}
			}
		},
		OnSequenceStart: func() {
			for _, h := range hs {
				if h.OnSequenceStart != nil {
					h.OnSequenceStart()
				}
			}
		},
		OnSequenceLine: func(line int, entrance time.Duration) {
			for _, h := range hs {
				if h.OnSequenceLine != nil {
					h.OnSequenceLine(line, entrance)
				}
			}
		},
		OnSequenceComplete: func() {
			for _, h := range hs {
				if h.OnSequenceComplete != nil {
					h.OnSequenceComplete()
				}
			}
		},
		OnRevealPrimed: func(success bool) {
			for _, h := range hs {
				if h.OnRevealPrimed != nil {
					h.OnRevealPrimed(success)
				}
			}
		},
		OnUserRevealRequest: func() {
			for _, h := range hs {
				if h.OnUserRevealRequest != nil {
					h.OnUserRevealRequest()
				}
			}
		},
		OnSessionStart: func(id string, at time.Time) {
			for _, h := range hs {
				if h.OnSessionStart != nil {
					h.OnSessionStart(id, at)
				}
			}
		},
		OnSessionEnd: func(id string, final Phase) {
			for _, h := range hs {
				if h.OnSessionEnd != nil {
					h.OnSessionEnd(id, final)
				}
			}
		},
	}
}
