package staff

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// Handler handles HTTP requests for the barber directory.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new staff handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// CreateBarber handles POST /admin/staff.
func (h *Handler) CreateBarber(w http.ResponseWriter, r *http.Request) {
	var req CreateBarberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	barber, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrMissingPhone) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create barber", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("barber created", "id", barber.ID, "name", barber.DisplayName)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(barber)
}

// ListBarbers handles GET /admin/staff.
func (h *Handler) ListBarbers(w http.ResponseWriter, r *http.Request) {
	barbers, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list barbers", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"barbers": barbers,
		"count":   len(barbers),
	})
}

// DeactivateBarber handles DELETE /admin/staff/{barberID}.
func (h *Handler) DeactivateBarber(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "barberID")
	if id == "" {
		http.Error(w, "missing barber id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrBarberNotFound) {
			http.Error(w, "barber not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to deactivate barber", "id", id, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("barber deactivated", "id", id)
	w.WriteHeader(http.StatusNoContent)
}
