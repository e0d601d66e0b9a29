package scan

import (
	"time"

	"github.com/ayusman/holoscan/internal/gesture"
)

// Machine is the scan state machine. It is not safe for concurrent use: all
// events must come from one goroutine, which Session provides.
type Machine struct {
	cfg      Config
	hooks    Hooks
	sched    Scheduler
	renderer gesture.Renderer
	acc      *gesture.Accumulator

	phase         Phase
	elapsed       time.Duration
	awaitingInput bool
	primeResult   *bool
	generation    uint64
	dropped       int
}

// NewMachine creates a machine in Scanning. renderer may be nil.
// cfg is assumed to have passed Validate.
func NewMachine(cfg Config, hooks Hooks, sched Scheduler, renderer gesture.Renderer) *Machine {
	eval := gesture.NewEvaluator(cfg.Window, cfg.DriftThreshold)
	return &Machine{
		cfg:      cfg,
		hooks:    hooks,
		sched:    sched,
		renderer: renderer,
		acc:      gesture.NewAccumulator(eval, renderer),
		phase:    Scanning,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Elapsed returns the stable duration measured on the last frame.
func (m *Machine) Elapsed() time.Duration { return m.elapsed }

// HandPresent reports whether the last frame had a usable hand.
func (m *Machine) HandPresent() bool { return m.acc.HandPresent() }

// AwaitingInput reports whether the reveal control is showing.
func (m *Machine) AwaitingInput() bool { return m.awaitingInput }

// PrimeResult returns the priming outcome, or nil if none was reported.
func (m *Machine) PrimeResult() *bool { return m.primeResult }

// Generation identifies the current session's timers.
func (m *Machine) Generation() uint64 { return m.generation }

// Dropped counts events that arrived in a phase that does not accept them.
func (m *Machine) Dropped() int { return m.dropped }

// Reset returns the machine to Scanning and orphans every pending timer.
func (m *Machine) Reset() {
	m.generation++
	m.phase = Scanning
	m.elapsed = 0
	m.awaitingInput = false
	m.primeResult = nil
	m.dropped = 0
	m.acc.Reset()
	if m.renderer != nil {
		m.renderer.Clear()
	}
}

// Handle applies one event.
func (m *Machine) Handle(ev Event) {
	switch e := ev.(type) {
	case FrameEvent:
		m.handleFrame(e)
	case TimerEvent:
		m.handleTimer(e)
	case RevealPrimedEvent:
		m.handlePrimed(e)
	case RevealRequestEvent:
		m.handleRequest()
	default:
		m.dropped++
	}
}

func (m *Machine) handleFrame(e FrameEvent) {
	// Only Scanning listens to the camera. This guard is what makes scan
	// completion fire once.
	if m.phase != Scanning {
		m.dropped++
		return
	}

	m.elapsed = m.acc.OnFrame(e.Pose, e.At)
	if m.elapsed < m.cfg.HoldDuration {
		return
	}

	m.advance(Transitioning)
	if m.renderer != nil {
		m.renderer.Clear()
	}
	if m.hooks.OnScanComplete != nil {
		m.hooks.OnScanComplete()
	}
	m.schedule(m.cfg.TransitionDelay, TimerEvent{Timer: TimerTransition})
}

func (m *Machine) handleTimer(e TimerEvent) {
	if e.Generation != m.generation {
		m.dropped++
		return
	}

	switch {
	case e.Timer == TimerTransition && m.phase == Transitioning:
		m.startSequence()
	case e.Timer == TimerLine && m.phase == SequencePlaying:
		if e.Line < 0 || e.Line >= len(m.cfg.Lines) {
			m.dropped++
			return
		}
		if m.hooks.OnSequenceLine != nil {
			m.hooks.OnSequenceLine(e.Line, m.cfg.Lines[e.Line].Entrance)
		}
	case e.Timer == TimerSequenceEnd && m.phase == SequencePlaying:
		if m.hooks.OnSequenceComplete != nil {
			m.hooks.OnSequenceComplete()
		}
		m.advance(RevealPending)
	default:
		m.dropped++
	}
}

func (m *Machine) startSequence() {
	m.advance(SequencePlaying)
	if m.hooks.OnSequenceStart != nil {
		m.hooks.OnSequenceStart()
	}
	for i, l := range m.cfg.Lines {
		m.schedule(l.Offset, TimerEvent{Timer: TimerLine, Line: i})
	}
	m.schedule(m.cfg.SequenceWindow, TimerEvent{Timer: TimerSequenceEnd})
}

func (m *Machine) handlePrimed(e RevealPrimedEvent) {
	if m.phase != RevealPending || m.primeResult != nil {
		m.dropped++
		return
	}

	ok := e.Success
	m.primeResult = &ok
	// The control shows whatever the outcome; a failed prime just means the
	// tap has to start playback from scratch.
	m.awaitingInput = true
	if m.hooks.OnRevealPrimed != nil {
		m.hooks.OnRevealPrimed(ok)
	}
}

func (m *Machine) handleRequest() {
	if m.phase != RevealPending {
		m.dropped++
		return
	}

	m.awaitingInput = true
	if m.hooks.OnUserRevealRequest != nil {
		m.hooks.OnUserRevealRequest()
	}
	m.advance(RevealPlaying)
	m.awaitingInput = false
}

// advance moves exactly one phase forward.
func (m *Machine) advance(to Phase) {
	if to != m.phase+1 {
		return
	}
	from := m.phase
	m.phase = to
	if m.hooks.OnPhase != nil {
		m.hooks.OnPhase(from, to)
	}
}

func (m *Machine) schedule(delay time.Duration, ev TimerEvent) {
	if m.sched == nil {
		return
	}
	ev.Generation = m.generation
	m.sched.Schedule(delay, ev)
}
