package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/holoscan/internal/scan"
	"github.com/ayusman/holoscan/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestJournal_RecordsSession(t *testing.T) {
	s := newTestStore(t)
	j := NewJournal(s)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tick := base
	j.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	h := j.Hooks()
	h.OnSessionStart("abc", base)
	h.OnPhase(scan.Scanning, scan.Transitioning)
	h.OnPhase(scan.Transitioning, scan.SequencePlaying)
	h.OnPhase(scan.SequencePlaying, scan.RevealPending)
	h.OnPhase(scan.RevealPending, scan.RevealPlaying)
	h.OnSessionEnd("abc", scan.RevealPlaying)

	j.Close()
	j.Run()

	sess, err := s.Sessions().Get("abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !sess.StartedAt.Equal(base) {
		t.Errorf("got started %v, want %v", sess.StartedAt, base)
	}
	if sess.FinalPhase != "reveal_playing" || !sess.Completed {
		t.Errorf("got final %q completed %v", sess.FinalPhase, sess.Completed)
	}
	if sess.EndedAt == nil {
		t.Fatal("session was not finished")
	}

	transitions, err := s.Transitions().ListBySession("abc")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	want := []string{"transitioning", "sequence_playing", "reveal_pending", "reveal_playing"}
	if len(transitions) != len(want) {
		t.Fatalf("got %d transitions, want %d", len(transitions), len(want))
	}
	for i, tr := range transitions {
		if tr.To != want[i] {
			t.Errorf("transition %d: got %q, want %q", i, tr.To, want[i])
		}
	}
}

func TestJournal_ResetEndsIncomplete(t *testing.T) {
	s := newTestStore(t)
	j := NewJournal(s)
	h := j.Hooks()

	now := time.Now()
	h.OnSessionStart("first", now)
	h.OnPhase(scan.Scanning, scan.Transitioning)
	h.OnSessionEnd("first", scan.Transitioning)
	h.OnSessionStart("second", now.Add(time.Second))

	j.Close()
	j.Run()

	first, err := s.Sessions().Get("first")
	if err != nil {
		t.Fatalf("Get(first) error = %v", err)
	}
	if first.Completed || first.FinalPhase != "transitioning" || first.EndedAt == nil {
		t.Errorf("got %+v, want an ended incomplete session", first)
	}

	second, err := s.Sessions().Get("second")
	if err != nil {
		t.Fatalf("Get(second) error = %v", err)
	}
	if second.EndedAt != nil || second.FinalPhase != "scanning" {
		t.Errorf("got %+v, want an open session in scanning", second)
	}
}

func TestJournal_IgnoresWritesAfterClose(t *testing.T) {
	s := newTestStore(t)
	j := NewJournal(s)
	j.Close()
	j.Close()

	j.Hooks().OnSessionStart("late", time.Now())
	j.Run()

	sessions, err := s.Sessions().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}
}
