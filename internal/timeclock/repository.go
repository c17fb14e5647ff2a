package timeclock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists time entries. The table is insert-only: entries are an audit
// trail and are never updated or deleted.
type Store struct {
	db DB
}

// NewStore creates a time entry store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Insert records a clock action. Callers validate the action first; the store
// does not re-check sequencing.
func (s *Store) Insert(ctx context.Context, barberID string, kind EntryKind, ts time.Time, note string) (*TimeEntry, error) {
	entry := &TimeEntry{
		ID:        uuid.NewString(),
		BarberID:  barberID,
		Kind:      kind,
		Timestamp: ts,
		Note:      note,
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO time_entries (id, barber_id, kind, ts, note)
		VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.BarberID, string(entry.Kind), entry.Timestamp, entry.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("timeclock: insert entry: %w", err)
	}
	return entry, nil
}

// ListForBarberOn returns one barber's entries for the calendar day containing
// ts, ordered by timestamp ascending.
func (s *Store) ListForBarberOn(ctx context.Context, barberID string, ts time.Time) ([]TimeEntry, error) {
	dayStart := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := s.db.Query(ctx, `
		SELECT id, barber_id, kind, ts, note
		FROM time_entries
		WHERE barber_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts ASC, id ASC`,
		barberID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("timeclock: list for barber: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListBetween returns all barbers' entries in [start, end), ordered by
// timestamp ascending.
func (s *Store) ListBetween(ctx context.Context, start, end time.Time) ([]TimeEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, barber_id, kind, ts, note
		FROM time_entries
		WHERE ts >= $1 AND ts < $2
		ORDER BY ts ASC, id ASC`,
		start, end)
	if err != nil {
		return nil, fmt.Errorf("timeclock: list between: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows pgx.Rows) ([]TimeEntry, error) {
	var entries []TimeEntry
	for rows.Next() {
		var e TimeEntry
		var kind string
		if err := rows.Scan(&e.ID, &e.BarberID, &kind, &e.Timestamp, &e.Note); err != nil {
			return nil, fmt.Errorf("timeclock: scan entry: %w", err)
		}
		e.Kind = EntryKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("timeclock: iterate entries: %w", err)
	}
	return entries, nil
}
