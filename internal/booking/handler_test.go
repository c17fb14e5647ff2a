package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

func newTestHandler(repo Repository) *Handler {
	svc := NewService(repo, 2000, logging.Default()).WithNow(func() time.Time { return bookNow })
	return NewHandler(svc, logging.Default())
}

func TestCreateAppointment_Created(t *testing.T) {
	repo := newFakeRepo()
	handler := newTestHandler(repo)

	body, _ := json.Marshal(CreateAppointmentRequest{
		BarberID:    "barber-1",
		ClientName:  "Dev Patel",
		ClientPhone: "+15551230009",
		Service:     "fade",
		ScheduledAt: bookNow.Add(24 * time.Hour),
	})
	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.CreateAppointment(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var appt Appointment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&appt))
	assert.Equal(t, StatusPendingDeposit, appt.Status)
	assert.Equal(t, 2000, appt.DepositCents)
}

func TestCreateAppointment_BadRequest(t *testing.T) {
	handler := newTestHandler(newFakeRepo())

	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{"))
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, _ := json.Marshal(CreateAppointmentRequest{ClientName: "X"})
	req = httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body))
	w = httptest.NewRecorder()
	handler.CreateAppointment(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAppointment_Conflict(t *testing.T) {
	repo := newFakeRepo()
	handler := newTestHandler(repo)
	slot := bookNow.Add(24 * time.Hour)

	first, _ := json.Marshal(CreateAppointmentRequest{
		BarberID: "barber-1", ClientName: "A", ClientPhone: "+1555", ScheduledAt: slot,
	})
	w := httptest.NewRecorder()
	handler.CreateAppointment(w, httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(first)))
	require.Equal(t, http.StatusCreated, w.Code)

	second, _ := json.Marshal(CreateAppointmentRequest{
		BarberID: "barber-1", ClientName: "B", ClientPhone: "+1556", ScheduledAt: slot,
	})
	w = httptest.NewRecorder()
	handler.CreateAppointment(w, httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(second)))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetAppointment(t *testing.T) {
	repo := newFakeRepo()
	handler := newTestHandler(repo)

	appt := &Appointment{
		BarberID:    "barber-1",
		ClientName:  "Dev Patel",
		ClientPhone: "+15551230009",
		ScheduledAt: bookNow.Add(time.Hour),
		Status:      StatusConfirmed,
	}
	require.NoError(t, repo.Create(context.Background(), appt))

	router := chi.NewRouter()
	router.Get("/appointments/{appointmentID}", handler.GetAppointment)

	req := httptest.NewRequest(http.MethodGet, "/appointments/"+appt.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got Appointment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, appt.ID, got.ID)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelAppointment(t *testing.T) {
	repo := newFakeRepo()
	handler := newTestHandler(repo)

	appt := &Appointment{
		BarberID:    "barber-1",
		ClientName:  "Dev Patel",
		ClientPhone: "+15551230009",
		ScheduledAt: bookNow.Add(time.Hour),
		Status:      StatusConfirmed,
	}
	require.NoError(t, repo.Create(context.Background(), appt))

	router := chi.NewRouter()
	router.Delete("/appointments/{appointmentID}", handler.CancelAppointment)

	req := httptest.NewRequest(http.MethodDelete, "/appointments/"+appt.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	got, err := repo.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestListDay(t *testing.T) {
	repo := newFakeRepo()
	handler := newTestHandler(repo)

	appt := &Appointment{
		BarberID:    "barber-1",
		ClientName:  "Dev Patel",
		ClientPhone: "+15551230009",
		ScheduledAt: time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC),
		Status:      StatusConfirmed,
	}
	require.NoError(t, repo.Create(context.Background(), appt))

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments?date=2026-03-10", nil)
	w := httptest.NewRecorder()
	handler.ListDay(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Appointments []Appointment `json:"appointments"`
		Count        int           `json:"count"`
		Date         string        `json:"date"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "2026-03-10", resp.Date)

	w = httptest.NewRecorder()
	handler.ListDay(w, httptest.NewRequest(http.MethodGet, "/admin/appointments?date=03/10/2026", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
