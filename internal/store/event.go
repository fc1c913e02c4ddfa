package store

import (
	"database/sql"
	"time"
)

// EventKind classifies a journal entry.
type EventKind string

const (
	// EventStroke is a completed pen or eraser stroke; detail is the tool.
	EventStroke EventKind = "stroke"
	// EventColour is a colour change; detail is the colour name.
	EventColour EventKind = "colour"
	// EventClear is a canvas clear; detail is "voice" or "gesture".
	EventClear EventKind = "clear"
	// EventVoice is a transcript taken by the dispatcher.
	EventVoice EventKind = "voice"
	// EventExit records why the session ended.
	EventExit EventKind = "exit"
)

// Event is one journal entry.
type Event struct {
	ID        int64
	SessionID string
	Kind      EventKind
	Detail    string
	CreatedAt time.Time
}

// EventRepository provides access to session events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append inserts an event, stamping it when CreatedAt is unset.
func (r *EventRepository) Append(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO events (session_id, kind, detail, created_at) VALUES (?, ?, ?, ?)`,
		e.SessionID, string(e.Kind), e.Detail, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's events in insertion order.
func (r *EventRepository) ListBySession(sessionID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, kind, detail, created_at
		 FROM events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByKind tallies a session's events.
func (r *EventRepository) CountByKind(sessionID string) (map[EventKind]int, error) {
	rows, err := r.db.Query(
		`SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[EventKind(kind)] = n
	}
	return counts, rows.Err()
}
