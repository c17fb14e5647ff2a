package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipperdesk/clipperdesk/internal/booking"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

type fakeAppointments struct {
	appt *booking.Appointment
}

func (f *fakeAppointments) Get(ctx context.Context, id uuid.UUID) (*booking.Appointment, error) {
	if f.appt == nil || f.appt.ID != id {
		return nil, booking.ErrAppointmentNotFound
	}
	return f.appt, nil
}

type fakeIntents struct {
	created *Payment
}

func (f *fakeIntents) CreateIntent(ctx context.Context, appointmentID uuid.UUID, provider string, amountCents int64) (*Payment, error) {
	f.created = &Payment{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Provider:      provider,
		AmountCents:   amountCents,
		Status:        StatusPending,
	}
	return f.created, nil
}

type fakeCheckout struct {
	params CheckoutParams
}

func (f *fakeCheckout) CreatePaymentLink(ctx context.Context, params CheckoutParams) (*CheckoutResponse, error) {
	f.params = params
	return &CheckoutResponse{URL: "https://checkout.example.com/s1", ProviderID: "cs_1"}, nil
}

func TestCreateCheckout(t *testing.T) {
	appt := &booking.Appointment{
		ID:           uuid.New(),
		BarberID:     "barber-1",
		ClientPhone:  "+15551230009",
		Service:      "fade",
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		Status:       booking.StatusPendingDeposit,
		DepositCents: 2000,
	}
	checkout := &fakeCheckout{}
	intents := &fakeIntents{}
	handler := NewHandler(checkout, &fakeAppointments{appt: appt}, intents, logging.Default())

	body, _ := json.Marshal(checkoutRequest{AppointmentID: appt.ID.String()})
	w := httptest.NewRecorder()
	handler.CreateCheckout(w, httptest.NewRequest(http.MethodPost, "/payments/checkout", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "https://checkout.example.com/s1", resp["checkout_url"])
	assert.Equal(t, intents.created.ID.String(), resp["payment_id"])
	assert.Equal(t, appt.ID, checkout.params.AppointmentID)
	assert.Equal(t, int64(2000), checkout.params.AmountCents)
}

func TestCreateCheckout_NotFound(t *testing.T) {
	handler := NewHandler(&fakeCheckout{}, &fakeAppointments{}, &fakeIntents{}, logging.Default())

	body, _ := json.Marshal(checkoutRequest{AppointmentID: uuid.New().String()})
	w := httptest.NewRecorder()
	handler.CreateCheckout(w, httptest.NewRequest(http.MethodPost, "/payments/checkout", bytes.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCheckout_AlreadyConfirmed(t *testing.T) {
	appt := &booking.Appointment{
		ID:     uuid.New(),
		Status: booking.StatusConfirmed,
	}
	handler := NewHandler(&fakeCheckout{}, &fakeAppointments{appt: appt}, &fakeIntents{}, logging.Default())

	body, _ := json.Marshal(checkoutRequest{AppointmentID: appt.ID.String()})
	w := httptest.NewRecorder()
	handler.CreateCheckout(w, httptest.NewRequest(http.MethodPost, "/payments/checkout", bytes.NewReader(body)))
	assert.Equal(t, http.StatusConflict, w.Code)
}
