package store

import (
	"database/sql"
	"time"
)

// Transition is one recorded phase change.
type Transition struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	At        time.Time `json:"at"`
}

// TransitionRepository reads and writes phase transitions.
type TransitionRepository struct {
	db *sql.DB
}

// Transitions returns the transition repository for this store.
func (s *Store) Transitions() *TransitionRepository {
	return &TransitionRepository{db: s.db}
}

// Record appends a transition and sets its ID.
func (r *TransitionRepository) Record(t *Transition) error {
	result, err := r.db.Exec(
		`INSERT INTO phase_transitions (session_id, from_phase, to_phase, at) VALUES (?, ?, ?, ?)`,
		t.SessionID, t.From, t.To, t.At.UTC(),
	)
	if err != nil {
		return err
	}
	t.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's transitions in the order they happened.
func (r *TransitionRepository) ListBySession(sessionID string) ([]*Transition, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, from_phase, to_phase, at
		 FROM phase_transitions WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Transition
	for rows.Next() {
		t := &Transition{}
		if err := rows.Scan(&t.ID, &t.SessionID, &t.From, &t.To, &t.At); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
