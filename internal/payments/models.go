package payments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus tracks a deposit's lifecycle.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusSucceeded PaymentStatus = "succeeded"
	StatusRefunded  PaymentStatus = "refunded"
)

// Payment is a deposit record tied to one appointment.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	AppointmentID uuid.UUID     `json:"appointment_id"`
	Provider      string        `json:"provider"`
	ProviderRef   string        `json:"provider_ref,omitempty"`
	AmountCents   int64         `json:"amount_cents"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CheckoutParams describes the deposit to collect.
type CheckoutParams struct {
	AppointmentID uuid.UUID
	PaymentID     uuid.UUID
	AmountCents   int64
	Description   string
	ClientPhone   string
	SuccessURL    string
	CancelURL     string
}

// CheckoutResponse is the hosted payment page handed back to the client.
type CheckoutResponse struct {
	URL        string `json:"url"`
	ProviderID string `json:"provider_id"`
}

var (
	// ErrPaymentNotFound is returned when no payment row matches
	ErrPaymentNotFound = errors.New("payment not found")
)
