package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores barbers in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("staff: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateBarberRequest) (*Barber, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO barbers (id, display_name, phone, email, active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.DisplayName,
		req.Phone,
		req.Email,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("staff: insert failed: %w", err)
	}

	return &Barber{
		ID:          id.String(),
		DisplayName: req.DisplayName,
		Phone:       req.Phone,
		Email:       req.Email,
		Active:      true,
		CreatedAt:   createdAt,
	}, nil
}

// GetByID fetches a barber.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Barber, error) {
	return r.getWhere(ctx, "id = $1", id)
}

// GetByPhone fetches a barber by phone number (used for OTP login).
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Barber, error) {
	return r.getWhere(ctx, "phone = $1", phone)
}

func (r *PostgresRepository) getWhere(ctx context.Context, where string, arg any) (*Barber, error) {
	query := `
		SELECT id, display_name, phone, email, active, created_at
		FROM barbers
		WHERE ` + where
	row := r.pool.QueryRow(ctx, query, arg)
	var b Barber
	if err := row.Scan(&b.ID, &b.DisplayName, &b.Phone, &b.Email, &b.Active, &b.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrBarberNotFound
		}
		return nil, fmt.Errorf("staff: select failed: %w", err)
	}
	return &b, nil
}

// List returns all barbers, active first, newest last.
func (r *PostgresRepository) List(ctx context.Context) ([]*Barber, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, display_name, phone, email, active, created_at
		FROM barbers
		ORDER BY active DESC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("staff: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Barber
	for rows.Next() {
		var b Barber
		if err := rows.Scan(&b.ID, &b.DisplayName, &b.Phone, &b.Email, &b.Active, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("staff: scan failed: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// Deactivate marks a barber inactive. Rows are never deleted so historical
// time entries keep a valid owner.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE barbers SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("staff: deactivate failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBarberNotFound
	}
	return nil
}

// DisplayNames maps barber IDs to display names.
func (r *PostgresRepository) DisplayNames(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, display_name FROM barbers`)
	if err != nil {
		return nil, fmt.Errorf("staff: display names failed: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("staff: scan failed: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
