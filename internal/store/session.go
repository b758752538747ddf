package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session is one recorded performance run.
type Session struct {
	ID        string
	ProfileID string // empty when no profile was active
	StartedAt time.Time
	EndedAt   time.Time // zero while the session is still running
}

// SessionEvent is one note transition captured during a session.
type SessionEvent struct {
	ID          int64
	SessionID   string
	Slot        string
	Instrument  string
	Active      bool
	Note        string
	Velocity    float64
	TimestampMs int64
}

// SessionRepository provides storage for recorded sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new running session.
func (r *SessionRepository) Create(sess *Session) error {
	var profileID any
	if sess.ProfileID != "" {
		profileID = sess.ProfileID
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, profile_id, started_at) VALUES (?, ?, ?)`,
		sess.ID, profileID, sess.StartedAt,
	)
	return err
}

// End marks a session as finished.
func (r *SessionRepository) End(id string, endedAt time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET ended_at = ? WHERE id = ?`, endedAt, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var profileID sql.NullString
	var endedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, profile_id, started_at, ended_at FROM sessions WHERE id = ?`, id,
	).Scan(&sess.ID, &profileID, &sess.StartedAt, &endedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.ProfileID = profileID.String
	if endedAt.Valid {
		sess.EndedAt = endedAt.Time
	}
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, profile_id, started_at, ended_at FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var profileID sql.NullString
		var endedAt sql.NullTime

		if err := rows.Scan(&sess.ID, &profileID, &sess.StartedAt, &endedAt); err != nil {
			return nil, err
		}
		sess.ProfileID = profileID.String
		if endedAt.Valid {
			sess.EndedAt = endedAt.Time
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and, via cascade, its recorded events.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendEvents stores a batch of note transitions for a session in one
// transaction. Sustained continuations should be filtered by the caller;
// only transitions are worth keeping.
func (r *SessionRepository) AppendEvents(sessionID string, events []SessionEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO session_events (session_id, slot, instrument, active, note, velocity, timestamp_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		active := 0
		if e.Active {
			active = 1
		}
		if _, err := stmt.Exec(sessionID, e.Slot, e.Instrument, active, e.Note, e.Velocity, e.TimestampMs); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Events retrieves the recorded transitions of a session in time order.
func (r *SessionRepository) Events(sessionID string) ([]SessionEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, slot, instrument, active, note, velocity, timestamp_ms
		 FROM session_events WHERE session_id = ? ORDER BY timestamp_ms, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []SessionEvent
	for rows.Next() {
		var e SessionEvent
		var active int
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Slot, &e.Instrument, &active, &e.Note, &e.Velocity, &e.TimestampMs); err != nil {
			return nil, err
		}
		e.Active = active != 0
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
