package staff

import (
	"strings"
	"time"
)

// Barber represents a staff member who can be booked and clock shifts.
type Barber struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateBarberRequest is the body for adding a barber.
type CreateBarberRequest struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

// Validate checks required fields.
func (r *CreateBarberRequest) Validate() error {
	if strings.TrimSpace(r.DisplayName) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Phone) == "" {
		return ErrMissingPhone
	}
	return nil
}
