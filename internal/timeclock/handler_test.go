package timeclock

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipperdesk/clipperdesk/internal/http/middleware"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// memStore is an in-memory EntryStore for handler tests.
type memStore struct {
	mu      sync.Mutex
	entries []TimeEntry
	nextID  int
	fail    bool
}

func (m *memStore) Insert(_ context.Context, barberID string, kind EntryKind, ts time.Time, note string) (*TimeEntry, error) {
	if m.fail {
		return nil, assert.AnError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	entry := TimeEntry{
		ID:        "mem-" + string(rune('a'+m.nextID)),
		BarberID:  barberID,
		Kind:      kind,
		Timestamp: ts,
		Note:      note,
	}
	m.entries = append(m.entries, entry)
	return &entry, nil
}

func (m *memStore) ListForBarberOn(_ context.Context, barberID string, ts time.Time) ([]TimeEntry, error) {
	if m.fail {
		return nil, assert.AnError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	day := ts.Format(DateLayout)
	var out []TimeEntry
	for _, e := range m.entries {
		if e.BarberID == barberID && e.DateKey() == day {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *memStore) ListBetween(_ context.Context, start, end time.Time) ([]TimeEntry, error) {
	if m.fail {
		return nil, assert.AnError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []TimeEntry
	for _, e := range m.entries {
		if !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			out = append(out, e)
		}
	}
	return out, nil
}

type staticNames map[string]string

func (s staticNames) DisplayNames(context.Context) (map[string]string, error) { return s, nil }

func newTestHandler(store EntryStore, now time.Time) *Handler {
	h := NewHandler(store, staticNames{"barber-1": "Amara"}, nil, nil, logging.Default())
	return h.WithNow(func() time.Time { return now })
}

func clockRequest(t *testing.T, action EntryKind) *http.Request {
	t.Helper()
	body, err := json.Marshal(ClockActionRequest{Action: action})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/timeclock/clock", bytes.NewReader(body))
	return req.WithContext(middleware.WithBarberID(req.Context(), "barber-1"))
}

func TestClockAction_Accepted(t *testing.T) {
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	store := &memStore{}
	handler := newTestHandler(store, now)

	w := httptest.NewRecorder()
	handler.ClockAction(w, clockRequest(t, KindClockIn))

	require.Equal(t, http.StatusCreated, w.Code)
	var resp ClockActionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, KindClockIn, resp.Entry.Kind)
	assert.Equal(t, StatusInProgress, resp.Shift.Status)
	assert.Len(t, store.entries, 1)
}

func TestClockAction_RejectedDoubleClockIn(t *testing.T) {
	now := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	store := &memStore{}
	handler := newTestHandler(store, now)

	w := httptest.NewRecorder()
	handler.ClockAction(w, clockRequest(t, KindClockIn))
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	handler.ClockAction(w, clockRequest(t, KindClockIn))

	require.Equal(t, http.StatusConflict, w.Code)
	var decision ActionDecision
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decision))
	assert.False(t, decision.Valid)
	assert.Equal(t, ReasonAlreadyClockedIn, decision.Reason)
	assert.Len(t, store.entries, 1, "rejected action must not be written")
}

func TestClockAction_MissingIdentity(t *testing.T) {
	handler := newTestHandler(&memStore{}, time.Now())

	body, _ := json.Marshal(ClockActionRequest{Action: KindClockIn})
	req := httptest.NewRequest(http.MethodPost, "/timeclock/clock", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ClockAction(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClockAction_InvalidJSON(t *testing.T) {
	handler := newTestHandler(&memStore{}, time.Now())

	req := httptest.NewRequest(http.MethodPost, "/timeclock/clock", strings.NewReader("{"))
	req = req.WithContext(middleware.WithBarberID(req.Context(), "barber-1"))
	w := httptest.NewRecorder()
	handler.ClockAction(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClockAction_StoreError(t *testing.T) {
	handler := newTestHandler(&memStore{fail: true}, time.Now())

	w := httptest.NewRecorder()
	handler.ClockAction(w, clockRequest(t, KindClockIn))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestStatus_ReconstructsToday(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	store := &memStore{}
	ctx := context.Background()
	_, _ = store.Insert(ctx, "barber-1", KindClockIn, day.Add(9*time.Hour), "")
	_, _ = store.Insert(ctx, "barber-1", KindBreakStart, day.Add(12*time.Hour), "")

	handler := newTestHandler(store, day.Add(12*time.Hour+15*time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/timeclock/status", nil)
	req = req.WithContext(middleware.WithBarberID(req.Context(), "barber-1"))
	w := httptest.NewRecorder()
	handler.Status(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var shift DailyShift
	require.NoError(t, json.NewDecoder(w.Body).Decode(&shift))
	assert.Equal(t, StatusOnBreak, shift.Status)
	require.Len(t, shift.Breaks, 1)
	assert.Nil(t, shift.Breaks[0].End)
}

func TestSummaries_DefaultWindow(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	store := &memStore{}
	ctx := context.Background()
	_, _ = store.Insert(ctx, "barber-1", KindClockIn, day.Add(9*time.Hour), "")
	_, _ = store.Insert(ctx, "barber-1", KindClockOut, day.Add(17*time.Hour), "")

	handler := newTestHandler(store, day.Add(18*time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/admin/timeclock/summaries", nil)
	w := httptest.NewRecorder()
	handler.Summaries(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp SummariesResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Amara", resp.Summaries[0].BarberName)
	assert.Equal(t, 8.0, resp.Summaries[0].TotalHours)
}

func TestSummaries_BadTimeRange(t *testing.T) {
	handler := newTestHandler(&memStore{}, time.Now())

	req := httptest.NewRequest(http.MethodGet, "/admin/timeclock/summaries?start=yesterday", nil)
	w := httptest.NewRecorder()
	handler.Summaries(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSummaries_StartAfterEnd(t *testing.T) {
	handler := newTestHandler(&memStore{}, time.Now())

	req := httptest.NewRequest(http.MethodGet,
		"/admin/timeclock/summaries?start=2026-03-10T00:00:00Z&end=2026-03-09T00:00:00Z", nil)
	w := httptest.NewRecorder()
	handler.Summaries(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "start must not be after end")
}
