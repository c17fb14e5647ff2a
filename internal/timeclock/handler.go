package timeclock

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clipperdesk/clipperdesk/internal/http/middleware"
	"github.com/clipperdesk/clipperdesk/internal/observability/metrics"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// EntryStore is the persistence surface the handler needs.
type EntryStore interface {
	Insert(ctx context.Context, barberID string, kind EntryKind, ts time.Time, note string) (*TimeEntry, error)
	ListForBarberOn(ctx context.Context, barberID string, ts time.Time) ([]TimeEntry, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]TimeEntry, error)
}

// NameDirectory resolves barber IDs to display names for summaries.
type NameDirectory interface {
	DisplayNames(ctx context.Context) (map[string]string, error)
}

// Handler exposes the time clock over HTTP.
type Handler struct {
	store   EntryStore
	names   NameDirectory
	hub     *LiveHub
	metrics *metrics.TimeclockMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewHandler creates a time clock handler. hub and metrics may be nil.
func NewHandler(store EntryStore, names NameDirectory, hub *LiveHub, m *metrics.TimeclockMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		store:   store,
		names:   names,
		hub:     hub,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock source. Intended for tests.
func (h *Handler) WithNow(now func() time.Time) *Handler {
	if now != nil {
		h.now = now
	}
	return h
}

// ClockActionRequest is the body for POST /timeclock/clock.
type ClockActionRequest struct {
	Action EntryKind `json:"action"`
	Note   string    `json:"note,omitempty"`
}

// ClockActionResponse returns the recorded entry and the recomputed shift.
type ClockActionResponse struct {
	Entry *TimeEntry `json:"entry"`
	Shift DailyShift `json:"shift"`
}

// ClockAction handles POST /timeclock/clock: validates the proposed action
// against the barber's history for today, then records it. The validation
// read and the insert are not atomic; the UI enforces at most one in-flight
// action per barber.
func (h *Handler) ClockAction(w http.ResponseWriter, r *http.Request) {
	barberID, ok := middleware.BarberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing barber identity", http.StatusUnauthorized)
		return
	}

	var req ClockActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	now := h.now()
	history, err := h.store.ListForBarberOn(r.Context(), barberID, now)
	if err != nil {
		h.logger.Error("failed to load entries", "barber_id", barberID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	decision := ValidateClockAction(history, req.Action)
	if !decision.Valid {
		h.metrics.ObserveClockAction(string(req.Action), "rejected")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(decision)
		return
	}

	entry, err := h.store.Insert(r.Context(), barberID, req.Action, now, req.Note)
	if err != nil {
		h.logger.Error("failed to insert entry", "barber_id", barberID, "action", req.Action, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveClockAction(string(req.Action), "accepted")
	h.logger.Info("clock action recorded", "barber_id", barberID, "action", req.Action, "entry_id", entry.ID)

	shift := ParseShiftsForDay(append(history, *entry), now)
	h.hub.Broadcast(ClockEvent{
		BarberID:  barberID,
		Action:    req.Action,
		Timestamp: now,
		Status:    shift.Status,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ClockActionResponse{Entry: entry, Shift: shift})
}

// Status handles GET /timeclock/status: the barber's reconstructed shift for
// today, computed fresh on every read.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	barberID, ok := middleware.BarberIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing barber identity", http.StatusUnauthorized)
		return
	}

	now := h.now()
	entries, err := h.store.ListForBarberOn(r.Context(), barberID, now)
	if err != nil {
		h.logger.Error("failed to load entries", "barber_id", barberID, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	shift := ParseShiftsForDay(entries, now)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shift)
}

// SummariesResponse is the payload for the owner's daily report view.
type SummariesResponse struct {
	Summaries []DailySummary `json:"summaries"`
	Count     int            `json:"count"`
	Start     string         `json:"start"`
	End       string         `json:"end"`
}

// Summaries handles GET /admin/timeclock/summaries?start&end (RFC3339).
// Defaults to the last 7 days.
func (h *Handler) Summaries(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	start := now.AddDate(0, 0, -7)
	end := now

	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			http.Error(w, `{"error": "invalid start time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		start = t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			http.Error(w, `{"error": "invalid end time, use RFC3339 format"}`, http.StatusBadRequest)
			return
		}
		end = t
	}
	if start.After(end) {
		http.Error(w, `{"error": "start must not be after end"}`, http.StatusBadRequest)
		return
	}

	began := time.Now()
	entries, err := h.store.ListBetween(r.Context(), start, end)
	if err != nil {
		h.logger.Error("failed to list entries", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	names := map[string]string{}
	if h.names != nil {
		if resolved, err := h.names.DisplayNames(r.Context()); err != nil {
			h.logger.Warn("failed to resolve barber names", "error", err)
		} else {
			names = resolved
		}
	}

	summaries := CalculateDailySummaries(entries, names, now)
	h.metrics.ObserveSummaryLatency(time.Since(began).Seconds())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SummariesResponse{
		Summaries: summaries,
		Count:     len(summaries),
		Start:     start.Format(time.RFC3339),
		End:       end.Format(time.RFC3339),
	})
}
