package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipperdesk/clipperdesk/internal/archive"
	"github.com/clipperdesk/clipperdesk/internal/timeclock"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

var exportNow = time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

type fakeEntryLister struct {
	entries []timeclock.TimeEntry
	start   time.Time
	end     time.Time
	err     error
}

func (f *fakeEntryLister) ListBetween(ctx context.Context, start, end time.Time) ([]timeclock.TimeEntry, error) {
	f.start = start
	f.end = end
	return f.entries, f.err
}

type fakeNames struct {
	names map[string]string
}

func (f *fakeNames) DisplayNames(ctx context.Context) (map[string]string, error) {
	return f.names, nil
}

type capturingS3 struct {
	key  string
	body string
}

func (c *capturingS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	c.key = *params.Key
	buf := make([]byte, 64*1024)
	n, _ := params.Body.Read(buf)
	c.body = string(buf[:n])
	return &s3.PutObjectOutput{}, nil
}

func (c *capturingS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{}, nil
}

func fullDayEntries(barberID string, day time.Time) []timeclock.TimeEntry {
	return []timeclock.TimeEntry{
		{ID: "e1", BarberID: barberID, Kind: timeclock.KindClockIn, Timestamp: day.Add(9 * time.Hour)},
		{ID: "e2", BarberID: barberID, Kind: timeclock.KindClockOut, Timestamp: day.Add(17 * time.Hour)},
	}
}

func TestExportDay(t *testing.T) {
	day := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	lister := &fakeEntryLister{entries: fullDayEntries("barber-1", day)}
	names := &fakeNames{names: map[string]string{"barber-1": "Amara Osei"}}
	s3c := &capturingS3{}
	store := archive.NewStore(s3c, "clipperdesk-archive", logging.Default())

	handler := NewTimesheetExportHandler(lister, names, store, nil, logging.Default()).
		WithNow(func() time.Time { return exportNow })

	req := httptest.NewRequest(http.MethodPost, "/admin/timesheets/export?date=2026-03-09", nil)
	rec := httptest.NewRecorder()
	handler.ExportDay(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Date    string `json:"date"`
		Barbers int    `json:"barbers"`
		S3Key   string `json:"s3_key"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2026-03-09", resp.Date)
	assert.Equal(t, 1, resp.Barbers)
	assert.Equal(t, "timesheets/v1/by-date/2026/03/09.csv", resp.S3Key)

	// The lister sees exactly the requested calendar day.
	assert.Equal(t, day, lister.start)
	assert.Equal(t, day.AddDate(0, 0, 1), lister.end)

	assert.Equal(t, resp.S3Key, s3c.key)
	assert.Contains(t, s3c.body, "Amara Osei")
	assert.Contains(t, s3c.body, "8.00")
}

func TestExportDay_DefaultsToYesterday(t *testing.T) {
	lister := &fakeEntryLister{}
	handler := NewTimesheetExportHandler(lister, &fakeNames{}, nil, nil, logging.Default()).
		WithNow(func() time.Time { return exportNow })

	req := httptest.NewRequest(http.MethodPost, "/admin/timesheets/export", nil)
	rec := httptest.NewRecorder()
	handler.ExportDay(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), lister.start)

	// Archive is not configured; no key in the response.
	assert.True(t, strings.Contains(rec.Body.String(), `"s3_key":""`))
}

func TestExportDay_BadDate(t *testing.T) {
	handler := NewTimesheetExportHandler(&fakeEntryLister{}, &fakeNames{}, nil, nil, logging.Default())

	req := httptest.NewRequest(http.MethodPost, "/admin/timesheets/export?date=March+9", nil)
	rec := httptest.NewRecorder()
	handler.ExportDay(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportDay_ListError(t *testing.T) {
	lister := &fakeEntryLister{err: assert.AnError}
	handler := NewTimesheetExportHandler(lister, &fakeNames{}, nil, nil, logging.Default()).
		WithNow(func() time.Time { return exportNow })

	req := httptest.NewRequest(http.MethodPost, "/admin/timesheets/export", nil)
	rec := httptest.NewRecorder()
	handler.ExportDay(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
