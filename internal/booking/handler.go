package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// Handler exposes appointment booking over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a booking handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateAppointment handles POST /appointments.
func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingBarber), errors.Is(err, ErrMissingClient), errors.Is(err, ErrPastSlot):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrSlotTaken):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			h.logger.Error("failed to book appointment", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

// GetAppointment handles GET /appointments/{appointmentID}.
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// CancelAppointment handles DELETE /appointments/{appointmentID}.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "appointmentID"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	if err := h.service.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to cancel appointment", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListDay handles GET /admin/appointments?date=2026-03-09.
func (h *Handler) ListDay(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			http.Error(w, `{"error": "invalid date, use YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		day = parsed
	}

	appts, err := h.service.Day(r.Context(), day)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"appointments": appts,
		"count":        len(appts),
		"date":         day.Format("2006-01-02"),
	})
}
