package scan

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/holoscan/internal/gesture"
)

// eventBuffer bounds how many events may queue ahead of the session loop.
const eventBuffer = 64

// Snapshot is a copy of session state safe to read from any goroutine.
type Snapshot struct {
	ID            string        `json:"id"`
	Phase         Phase         `json:"phase"`
	Elapsed       time.Duration `json:"elapsed"`
	HandPresent   bool          `json:"hand_present"`
	AwaitingInput bool          `json:"awaiting_input"`
	PrimeResult   *bool         `json:"prime_result,omitempty"`
	StartedAt     time.Time     `json:"started_at"`
	Generation    uint64        `json:"generation"`
}

// AfterFunc matches time.AfterFunc. Tests swap it for a manual clock.
type AfterFunc func(d time.Duration, f func()) *time.Timer

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for session start times.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithAfterFunc replaces time.AfterFunc for timer scheduling.
func WithAfterFunc(f AfterFunc) Option {
	return func(s *Session) { s.afterFunc = f }
}

// WithRenderer attaches the overlay renderer.
func WithRenderer(r gesture.Renderer) Option {
	return func(s *Session) { s.renderer = r }
}

// WithIDGenerator replaces uuid-based session IDs.
func WithIDGenerator(f func() string) Option {
	return func(s *Session) { s.newID = f }
}

type resetEvent struct{}

func (resetEvent) event() {}

// Session is one camera-to-reveal cycle. It owns a Machine and serializes
// every event for it on the goroutine running Run.
type Session struct {
	cfg       Config
	hooks     Hooks
	renderer  gesture.Renderer
	now       func() time.Time
	afterFunc AfterFunc
	newID     func() string

	events  chan Event
	stopped chan struct{}
	running atomic.Bool

	// loop-owned
	machine *Machine
	timers  []*time.Timer
	id      string
	started time.Time

	mu          sync.RWMutex
	snap        Snapshot
	handPresent atomic.Bool
}

// NewSession validates cfg and builds a session in Scanning.
func NewSession(cfg Config, hooks Hooks, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:       cfg,
		hooks:     hooks,
		now:       time.Now,
		afterFunc: time.AfterFunc,
		newID:     uuid.NewString,
		events:    make(chan Event, eventBuffer),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.machine = NewMachine(cfg, hooks, s, s.renderer)
	s.id = s.newID()
	s.started = s.now()
	s.publish()
	return s, nil
}

// Config returns the session's configuration.
func (s *Session) Config() Config { return s.cfg }

// Run processes events until ctx is cancelled. It must be called once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	defer close(s.stopped)

	s.startHook()
	defer s.endHook()
	defer s.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-s.events:
			s.dispatch(ev)
		}
	}
}

// Post queues an event for the session loop. Frames are dropped rather than
// queued when the loop is behind; other events wait. It reports whether the
// event was accepted.
func (s *Session) Post(ev Event) bool {
	select {
	case <-s.stopped:
		return false
	default:
	}

	if _, isFrame := ev.(FrameEvent); isFrame {
		select {
		case s.events <- ev:
			return true
		case <-s.stopped:
			return false
		default:
			log.Debug().Msg("session loop busy, dropping frame")
			return false
		}
	}

	select {
	case s.events <- ev:
		return true
	case <-s.stopped:
		return false
	}
}

// Reset ends the current session and starts a new one in Scanning.
// Timers armed by the old session are stopped and their events ignored.
func (s *Session) Reset() bool {
	return s.Post(resetEvent{})
}

// Snapshot returns the state as of the last processed event.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// HandPresent is a lock-free hint for renderers running at display rate.
func (s *Session) HandPresent() bool {
	return s.handPresent.Load()
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.stopped
}

func (s *Session) dispatch(ev Event) {
	if _, ok := ev.(resetEvent); ok {
		s.reset()
	} else {
		s.machine.Handle(ev)
	}
	s.publish()
}

func (s *Session) reset() {
	s.stopTimers()
	s.endHook()
	s.machine.Reset()
	s.id = s.newID()
	s.started = s.now()
	log.Info().Str("session", s.id).Msg("scan session reset")
	s.startHook()
}

// Schedule implements Scheduler for the owned machine. It runs on the loop.
func (s *Session) Schedule(delay time.Duration, ev TimerEvent) {
	t := s.afterFunc(delay, func() {
		s.Post(ev)
	})
	if t != nil {
		s.timers = append(s.timers, t)
	}
}

func (s *Session) stopTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]
}

func (s *Session) startHook() {
	if s.hooks.OnSessionStart != nil {
		s.hooks.OnSessionStart(s.id, s.started)
	}
}

func (s *Session) endHook() {
	if s.hooks.OnSessionEnd != nil {
		s.hooks.OnSessionEnd(s.id, s.machine.Phase())
	}
}

func (s *Session) publish() {
	snap := Snapshot{
		ID:            s.id,
		Phase:         s.machine.Phase(),
		Elapsed:       s.machine.Elapsed(),
		HandPresent:   s.machine.HandPresent(),
		AwaitingInput: s.machine.AwaitingInput(),
		PrimeResult:   s.machine.PrimeResult(),
		StartedAt:     s.started,
		Generation:    s.machine.Generation(),
	}

	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	s.handPresent.Store(snap.HandPresent)
}
