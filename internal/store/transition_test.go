package store

import (
	"testing"
	"time"
)

func TestTransitionRepository_RecordInOrder(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Sessions().Create(&Session{ID: "s1", StartedAt: base})
	s.Sessions().Create(&Session{ID: "s2", StartedAt: base})

	path := []string{"scanning", "transitioning", "sequence_playing", "reveal_pending", "reveal_playing"}
	for i := 1; i < len(path); i++ {
		tr := &Transition{SessionID: "s1", From: path[i-1], To: path[i], At: base.Add(time.Duration(i) * time.Second)}
		if err := s.Transitions().Record(tr); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if tr.ID == 0 {
			t.Error("Record() should set the ID")
		}
	}
	s.Transitions().Record(&Transition{SessionID: "s2", From: "scanning", To: "transitioning", At: base})

	got, err := s.Transitions().ListBySession("s1")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != len(path)-1 {
		t.Fatalf("got %d transitions, want %d", len(got), len(path)-1)
	}
	for i, tr := range got {
		if tr.From != path[i] || tr.To != path[i+1] {
			t.Errorf("transition %d = %s->%s, want %s->%s", i, tr.From, tr.To, path[i], path[i+1])
		}
		if want := base.Add(time.Duration(i+1) * time.Second); !tr.At.Equal(want) {
			t.Errorf("transition %d at %v, want %v", i, tr.At, want)
		}
	}
}
