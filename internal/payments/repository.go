package payments

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

// Store persists payment intents and webhook idempotency markers.
type Store struct {
	db DB
}

// NewStore creates a payment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// CreateIntent persists a pending deposit for an appointment.
func (s *Store) CreateIntent(ctx context.Context, appointmentID uuid.UUID, provider string, amountCents int64) (*Payment, error) {
	now := time.Now().UTC()
	p := &Payment{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Provider:      provider,
		AmountCents:   amountCents,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO payments (id, appointment_id, provider, provider_ref, amount_cents, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.AppointmentID, p.Provider, p.ProviderRef, p.AmountCents, string(p.Status), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("payments: insert intent: %w", err)
	}
	return p, nil
}

// UpdateStatusByID transitions a payment and records the provider reference.
func (s *Store) UpdateStatusByID(ctx context.Context, id uuid.UUID, status PaymentStatus, providerRef string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE payments SET status = $2, provider_ref = $3, updated_at = $4 WHERE id = $1`,
		id, string(status), providerRef, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("payments: update by id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// GetByID fetches a payment by UUID.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, appointment_id, provider, provider_ref, amount_cents, status, created_at, updated_at
		FROM payments
		WHERE id = $1`, id)

	var p Payment
	var status string
	if err := row.Scan(&p.ID, &p.AppointmentID, &p.Provider, &p.ProviderRef,
		&p.AmountCents, &status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payments: load by id: %w", err)
	}
	p.Status = PaymentStatus(status)
	return &p, nil
}

// AlreadyProcessed reports whether a webhook event was seen before.
func (s *Store) AlreadyProcessed(ctx context.Context, provider, eventID string) (bool, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM processed_webhook_events WHERE provider = $1 AND event_id = $2`,
		provider, eventID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("payments: processed lookup: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed records a webhook event so retries are acknowledged without
// re-running side effects.
func (s *Store) MarkProcessed(ctx context.Context, provider, eventID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO processed_webhook_events (provider, event_id, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, event_id) DO NOTHING`,
		provider, eventID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("payments: mark processed: %w", err)
	}
	return nil
}
