package store

import (
	"testing"
	"time"
)

func TestSessionRepository_CreateGet(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sess := &Session{ID: "s1", StartedAt: start}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := s.Sessions().Get("s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, start)
	}
	if got.FinalPhase != "scanning" {
		t.Errorf("FinalPhase = %q, want scanning", got.FinalPhase)
	}
	if got.EndedAt != nil {
		t.Errorf("EndedAt = %v, want nil for a running session", got.EndedAt)
	}
	if got.Completed {
		t.Error("new session should not be completed")
	}
}

func TestSessionRepository_SetPhaseAndFinish(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := s.Sessions()

	if err := repo.Create(&Session{ID: "s1", StartedAt: start}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := repo.SetPhase("s1", "reveal_pending", false); err != nil {
		t.Fatalf("SetPhase() error = %v", err)
	}

	got, _ := repo.Get("s1")
	if got.FinalPhase != "reveal_pending" {
		t.Errorf("FinalPhase = %q, want reveal_pending", got.FinalPhase)
	}

	end := start.Add(20 * time.Second)
	if err := repo.Finish("s1", end, "reveal_playing", true); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	got, _ = repo.Get("s1")
	if got.EndedAt == nil || !got.EndedAt.Equal(end) {
		t.Errorf("EndedAt = %v, want %v", got.EndedAt, end)
	}
	if got.FinalPhase != "reveal_playing" || !got.Completed {
		t.Errorf("got (%q, %v), want (reveal_playing, true)", got.FinalPhase, got.Completed)
	}
}

func TestSessionRepository_ListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.Sessions().Create(&Session{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	all, err := s.Sessions().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "c" || all[2].ID != "a" {
		t.Errorf("List(0) order = %v, want c b a", ids(all))
	}

	two, err := s.Sessions().List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(two) != 2 || two[0].ID != "c" {
		t.Errorf("List(2) = %v, want c b", ids(two))
	}
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.Sessions().Create(&Session{ID: "s1", StartedAt: now})
	s.Transitions().Record(&Transition{SessionID: "s1", From: "scanning", To: "transitioning", At: now})

	if err := s.Sessions().Delete("s1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	ts, err := s.Transitions().ListBySession("s1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(ts) != 0 {
		t.Errorf("transitions left after delete: %d", len(ts))
	}
}

func ids(ss []*Session) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.ID
	}
	return out
}
