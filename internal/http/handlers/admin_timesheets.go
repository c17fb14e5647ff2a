package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clipperdesk/clipperdesk/internal/archive"
	"github.com/clipperdesk/clipperdesk/internal/notify"
	"github.com/clipperdesk/clipperdesk/internal/timeclock"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// entryLister reads raw clock entries for a window.
type entryLister interface {
	ListBetween(ctx context.Context, start, end time.Time) ([]timeclock.TimeEntry, error)
}

// nameDirectory resolves barber IDs to display names.
type nameDirectory interface {
	DisplayNames(ctx context.Context) (map[string]string, error)
}

// TimesheetExportHandler exports a day's summaries to the archive bucket and
// optionally emails the owner a digest.
type TimesheetExportHandler struct {
	entries entryLister
	names   nameDirectory
	archive *archive.Store
	notify  *notify.Service
	logger  *logging.Logger
	now     func() time.Time
}

// NewTimesheetExportHandler creates the export handler. archive and notify may be nil.
func NewTimesheetExportHandler(entries entryLister, names nameDirectory, archiveStore *archive.Store, notifySvc *notify.Service, logger *logging.Logger) *TimesheetExportHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &TimesheetExportHandler{
		entries: entries,
		names:   names,
		archive: archiveStore,
		notify:  notifySvc,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock source. Intended for tests.
func (h *TimesheetExportHandler) WithNow(now func() time.Time) *TimesheetExportHandler {
	if now != nil {
		h.now = now
	}
	return h
}

// ExportDay handles POST /admin/timesheets/export?date=2026-03-09.
// Defaults to yesterday so the end-of-day run captures a finished day.
func (h *TimesheetExportHandler) ExportDay(w http.ResponseWriter, r *http.Request) {
	day := h.now().AddDate(0, 0, -1)
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse(timeclock.DateLayout, d)
		if err != nil {
			http.Error(w, `{"error": "invalid date, use YYYY-MM-DD"}`, http.StatusBadRequest)
			return
		}
		day = parsed
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	entries, err := h.entries.ListBetween(r.Context(), dayStart, dayEnd)
	if err != nil {
		h.logger.Error("failed to list entries for export", "error", err)
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

	summaries := timeclock.CalculateDailySummaries(entries, names, h.now())

	var s3Key string
	if h.archive.Enabled() {
		key, err := h.archive.ExportTimesheet(r.Context(), dayStart, summaries)
		if err != nil {
			h.logger.Error("timesheet export failed", "error", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		s3Key = key
	}

	if h.notify != nil {
		if err := h.notify.SendDailyTimesheet(r.Context(), dayStart, summaries); err != nil {
			h.logger.Warn("timesheet digest email failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"date":    dayStart.Format(timeclock.DateLayout),
		"barbers": len(summaries),
		"s3_key":  s3Key,
	})
}
