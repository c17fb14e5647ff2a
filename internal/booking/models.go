package booking

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus tracks the deposit-gated booking lifecycle.
type AppointmentStatus string

const (
	StatusPendingDeposit AppointmentStatus = "pending_deposit"
	StatusConfirmed      AppointmentStatus = "confirmed"
	StatusCancelled      AppointmentStatus = "cancelled"
)

// Appointment is a client's booked slot with a barber.
type Appointment struct {
	ID           uuid.UUID         `json:"id"`
	BarberID     string            `json:"barber_id"`
	ClientName   string            `json:"client_name"`
	ClientPhone  string            `json:"client_phone"`
	Service      string            `json:"service"`
	ScheduledAt  time.Time         `json:"scheduled_at"`
	Status       AppointmentStatus `json:"status"`
	DepositCents int               `json:"deposit_cents"`
	ReminderSent bool              `json:"reminder_sent"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// CreateAppointmentRequest is the body for booking a slot.
type CreateAppointmentRequest struct {
	BarberID    string    `json:"barber_id"`
	ClientName  string    `json:"client_name"`
	ClientPhone string    `json:"client_phone"`
	Service     string    `json:"service"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

var (
	// ErrMissingBarber is returned when no barber is selected
	ErrMissingBarber = errors.New("barber_id is required")

	// ErrMissingClient is returned when client name or phone is missing
	ErrMissingClient = errors.New("client name and phone are required")

	// ErrPastSlot is returned when the requested slot is in the past
	ErrPastSlot = errors.New("scheduled_at must be in the future")

	// ErrSlotTaken is returned when the barber already has that slot booked
	ErrSlotTaken = errors.New("slot already booked for this barber")

	// ErrAppointmentNotFound is returned when an appointment is not found
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Validate checks required fields against now.
func (r *CreateAppointmentRequest) Validate(now time.Time) error {
	if strings.TrimSpace(r.BarberID) == "" {
		return ErrMissingBarber
	}
	if strings.TrimSpace(r.ClientName) == "" || strings.TrimSpace(r.ClientPhone) == "" {
		return ErrMissingClient
	}
	if !r.ScheduledAt.After(now) {
		return ErrPastSlot
	}
	return nil
}
