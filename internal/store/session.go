package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is one recorded scan session.
type Session struct {
	ID         string     `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	FinalPhase string     `json:"final_phase"`
	// Completed is set once the session reached the reveal.
	Completed bool `json:"completed"`
}

// SessionRepository reads and writes sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session that has just started.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.FinalPhase == "" {
		sess.FinalPhase = "scanning"
	}
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, final_phase, completed) VALUES (?, ?, ?, ?)`,
		sess.ID, sess.StartedAt.UTC(), sess.FinalPhase, sess.Completed,
	)
	return err
}

// Get retrieves a session by ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, started_at, ended_at, final_phase, completed FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// List returns the most recent sessions first. limit <= 0 means no limit.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, started_at, ended_at, final_phase, completed
		 FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// SetPhase records the latest phase reached by a running session.
func (r *SessionRepository) SetPhase(id, phase string, completed bool) error {
	return r.exec(
		`UPDATE sessions SET final_phase = ?, completed = ? WHERE id = ?`,
		phase, completed, id,
	)
}

// Finish stamps the end time and final phase.
func (r *SessionRepository) Finish(id string, endedAt time.Time, finalPhase string, completed bool) error {
	return r.exec(
		`UPDATE sessions SET ended_at = ?, final_phase = ?, completed = ? WHERE id = ?`,
		endedAt.UTC(), finalPhase, completed, id,
	)
}

// Delete removes a session and its transitions.
func (r *SessionRepository) Delete(id string) error {
	return r.exec(`DELETE FROM sessions WHERE id = ?`, id)
}

func (r *SessionRepository) exec(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	var completed int
	if err := row.Scan(&sess.ID, &sess.StartedAt, &ended, &sess.FinalPhase, &completed); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	sess.Completed = completed != 0
	return sess, nil
}
