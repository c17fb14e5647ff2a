package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/clipperdesk/clipperdesk/internal/booking"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// CheckoutLinkCreator produces a hosted payment page for a deposit.
type CheckoutLinkCreator interface {
	CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error)
}

// AppointmentReader loads appointments for checkout validation.
type AppointmentReader interface {
	Get(ctx context.Context, id uuid.UUID) (*booking.Appointment, error)
}

// intentCreator is the store surface the checkout handler needs.
type intentCreator interface {
	CreateIntent(ctx context.Context, appointmentID uuid.UUID, provider string, amountCents int64) (*Payment, error)
}

// Handler exposes deposit checkout over HTTP.
type Handler struct {
	checkout     CheckoutLinkCreator
	appointments AppointmentReader
	store        intentCreator
	logger       *logging.Logger
}

// NewHandler creates a payments handler.
func NewHandler(checkout CheckoutLinkCreator, appointments AppointmentReader, store intentCreator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{checkout: checkout, appointments: appointments, store: store, logger: logger}
}

type checkoutRequest struct {
	AppointmentID string `json:"appointment_id"`
}

// CreateCheckout handles POST /payments/checkout.
func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	apptID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	appt, err := h.appointments.Get(r.Context(), apptID)
	if err != nil {
		if errors.Is(err, booking.ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment for checkout", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if appt.Status != booking.StatusPendingDeposit {
		http.Error(w, "appointment does not need a deposit", http.StatusConflict)
		return
	}

	intent, err := h.store.CreateIntent(r.Context(), appt.ID, "stripe", int64(appt.DepositCents))
	if err != nil {
		h.logger.Error("failed to create payment intent", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	link, err := h.checkout.CreatePaymentLink(r.Context(), CheckoutParams{
		AppointmentID: appt.ID,
		PaymentID:     intent.ID,
		AmountCents:   intent.AmountCents,
		Description:   "Deposit: " + appt.Service,
		ClientPhone:   appt.ClientPhone,
	})
	if err != nil {
		h.logger.Error("failed to create checkout link", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"payment_id":   intent.ID.String(),
		"checkout_url": link.URL,
	})
}
