package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/holoscan/internal/scan"
	"github.com/ayusman/holoscan/internal/store"
)

const journalBuffer = 64

type journalOp struct {
	name string
	fn   func(*store.Store) error
}

// Journal records sessions and their phase changes in the store. Session
// hooks only queue writes; Run performs them.
type Journal struct {
	store *store.Store
	now   func() time.Time
	ops   chan journalOp

	mu     sync.Mutex
	closed bool

	// set from hooks, which all run on the session goroutine
	sessionID string
}

// NewJournal creates a Journal writing to s.
func NewJournal(s *store.Store) *Journal {
	return &Journal{
		store: s,
		now:   time.Now,
		ops:   make(chan journalOp, journalBuffer),
	}
}

// Hooks returns the session hooks that feed the journal.
func (j *Journal) Hooks() scan.Hooks {
	return scan.Hooks{
		OnSessionStart: func(id string, at time.Time) {
			j.sessionID = id
			j.enqueue("create session", func(s *store.Store) error {
				return s.Sessions().Create(&store.Session{ID: id, StartedAt: at})
			})
		},
		OnPhase: func(from, to scan.Phase) {
			id, at := j.sessionID, j.now()
			j.enqueue("record transition", func(s *store.Store) error {
				err := s.Transitions().Record(&store.Transition{
					SessionID: id,
					From:      from.String(),
					To:        to.String(),
					At:        at,
				})
				if err != nil {
					return err
				}
				return s.Sessions().SetPhase(id, to.String(), to == scan.RevealPlaying)
			})
		},
		OnSessionEnd: func(id string, final scan.Phase) {
			at := j.now()
			j.enqueue("finish session", func(s *store.Store) error {
				return s.Sessions().Finish(id, at, final.String(), final == scan.RevealPlaying)
			})
		},
	}
}

// Run performs queued writes until Close is called and the queue is empty.
func (j *Journal) Run() {
	for op := range j.ops {
		if err := op.fn(j.store); err != nil {
			log.Error().Err(err).Str("op", op.name).Msg("journal write failed")
		}
	}
}

// Close stops accepting writes. Run returns once the backlog is written.
func (j *Journal) Close() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.closed {
		j.closed = true
		close(j.ops)
	}
}

func (j *Journal) enqueue(name string, fn func(*store.Store) error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return
	}
	select {
	case j.ops <- journalOp{name: name, fn: fn}:
	default:
		log.Warn().Str("op", name).Msg("journal queue full, dropping write")
	}
}
