package booking

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

// Store provides persistence for appointments.
type Store struct {
	db DB
}

// NewStore creates an appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const appointmentColumns = `id, barber_id, client_name, client_phone, service, scheduled_at, status, deposit_cents, reminder_sent, created_at, updated_at`

// Create inserts a new appointment row.
func (s *Store) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.Status == "" {
		a.Status = StatusPendingDeposit
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO appointments (id, barber_id, client_name, client_phone, service, scheduled_at, status, deposit_cents, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.BarberID, a.ClientName, a.ClientPhone, a.Service, a.ScheduledAt,
		string(a.Status), a.DepositCents, a.ReminderSent, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("booking: create appointment: %w", err)
	}
	return nil
}

// GetByID fetches one appointment.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1`, id)
	a, err := scanAppointment(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("booking: load appointment: %w", err)
	}
	return a, nil
}

// CountAtSlot reports existing non-cancelled appointments for a barber slot.
func (s *Store) CountAtSlot(ctx context.Context, barberID string, slot time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM appointments
		WHERE barber_id = $1 AND scheduled_at = $2 AND status <> 'cancelled'`,
		barberID, slot).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("booking: count at slot: %w", err)
	}
	return count, nil
}

// UpdateStatus transitions an appointment's status.
func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("booking: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// ListUpcoming returns non-cancelled appointments scheduled in [from, until)
// that have not had a reminder sent, oldest first.
func (s *Store) ListUpcoming(ctx context.Context, from, until time.Time, limit int) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		  AND status = 'confirmed' AND reminder_sent = FALSE
		ORDER BY scheduled_at ASC
		LIMIT $3`, from, until, limit)
	if err != nil {
		return nil, fmt.Errorf("booking: list upcoming: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListForDay returns all appointments on the calendar day containing ts.
func (s *Store) ListForDay(ctx context.Context, ts time.Time) ([]Appointment, error) {
	dayStart := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	rows, err := s.db.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		ORDER BY scheduled_at ASC`, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("booking: list for day: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// MarkReminderSent flags an appointment so it is not reminded twice.
func (s *Store) MarkReminderSent(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET reminder_sent = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("booking: mark reminder sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	if err := row.Scan(
		&a.ID, &a.BarberID, &a.ClientName, &a.ClientPhone, &a.Service,
		&a.ScheduledAt, &status, &a.DepositCents, &a.ReminderSent,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	a.Status = AppointmentStatus(status)
	return &a, nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("booking: scan appointment: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("booking: iterate appointments: %w", err)
	}
	return out, nil
}
