package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func historyEndingWith(kinds ...EntryKind) []TimeEntry {
	ts := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	history := make([]TimeEntry, 0, len(kinds))
	for i, k := range kinds {
		history = append(history, TimeEntry{
			BarberID:  "barber-1",
			Kind:      k,
			Timestamp: ts.Add(time.Duration(i) * time.Hour),
		})
	}
	return history
}

func TestValidateClockAction_Totality(t *testing.T) {
	lasts := [][]TimeEntry{
		nil,
		historyEndingWith(KindClockIn),
		historyEndingWith(KindClockIn, KindClockOut),
		historyEndingWith(KindClockIn, KindBreakStart),
		historyEndingWith(KindClockIn, KindBreakStart, KindBreakEnd),
	}
	actions := []EntryKind{KindClockIn, KindClockOut, KindBreakStart, KindBreakEnd}

	for _, history := range lasts {
		for _, action := range actions {
			decision := ValidateClockAction(history, action)
			if !decision.Valid {
				assert.NotEmpty(t, decision.Reason)
			}
		}
	}
}

func TestValidateClockAction_Table(t *testing.T) {
	tests := []struct {
		name    string
		history []TimeEntry
		action  EntryKind
		valid   bool
		reason  string
	}{
		{"empty clock_in", nil, KindClockIn, true, ""},
		{"empty clock_out", nil, KindClockOut, false, ReasonNotClockedIn},
		{"empty break_start", nil, KindBreakStart, false, ReasonNotClockedIn},
		{"empty break_end", nil, KindBreakEnd, false, ReasonNotOnBreak},

		{"after clock_in clock_in", historyEndingWith(KindClockIn), KindClockIn, false, ReasonAlreadyClockedIn},
		{"after clock_in clock_out", historyEndingWith(KindClockIn), KindClockOut, true, ""},
		{"after clock_in break_start", historyEndingWith(KindClockIn), KindBreakStart, true, ""},
		{"after clock_in break_end", historyEndingWith(KindClockIn), KindBreakEnd, false, ReasonNotOnBreak},

		{"after clock_out clock_in", historyEndingWith(KindClockIn, KindClockOut), KindClockIn, true, ""},
		{"after clock_out clock_out", historyEndingWith(KindClockIn, KindClockOut), KindClockOut, false, ReasonNotClockedIn},
		{"after clock_out break_start", historyEndingWith(KindClockIn, KindClockOut), KindBreakStart, false, ReasonNotClockedIn},

		{"on break clock_out", historyEndingWith(KindClockIn, KindBreakStart), KindClockOut, false, ReasonEndBreakFirst},
		{"on break break_start", historyEndingWith(KindClockIn, KindBreakStart), KindBreakStart, false, ReasonAlreadyOnBreak},
		{"on break break_end", historyEndingWith(KindClockIn, KindBreakStart), KindBreakEnd, true, ""},
		{"on break clock_in", historyEndingWith(KindClockIn, KindBreakStart), KindClockIn, false, ReasonAlreadyClockedIn},

		{"after break_end clock_out", historyEndingWith(KindClockIn, KindBreakStart, KindBreakEnd), KindClockOut, true, ""},
		{"after break_end break_start", historyEndingWith(KindClockIn, KindBreakStart, KindBreakEnd), KindBreakStart, true, ""},
		{"after break_end break_end", historyEndingWith(KindClockIn, KindBreakStart, KindBreakEnd), KindBreakEnd, false, ReasonNotOnBreak},

		{"unknown action", historyEndingWith(KindClockIn), EntryKind("lunch"), false, ReasonInvalidActionType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := ValidateClockAction(tt.history, tt.action)
			assert.Equal(t, tt.valid, decision.Valid)
			assert.Equal(t, tt.reason, decision.Reason)
		})
	}
}

func TestValidateClockAction_FullSequence(t *testing.T) {
	// A barber's day as the UI drives it: every approved action is appended
	// and the next action is validated against the grown history.
	var history []TimeEntry
	ts := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	apply := func(kind EntryKind) ActionDecision {
		decision := ValidateClockAction(history, kind)
		if decision.Valid {
			history = append(history, TimeEntry{BarberID: "barber-1", Kind: kind, Timestamp: ts})
			ts = ts.Add(30 * time.Minute)
		}
		return decision
	}

	assert.True(t, apply(KindClockIn).Valid)
	assert.Equal(t, denied(ReasonAlreadyClockedIn), apply(KindClockIn))
	assert.True(t, apply(KindBreakStart).Valid)
	assert.Equal(t, denied(ReasonEndBreakFirst), apply(KindClockOut))
	assert.True(t, apply(KindBreakEnd).Valid)
	assert.True(t, apply(KindClockOut).Valid)

	// The approved sequence parses without repair.
	shift := ParseShiftsForDay(history, ts)
	assert.Equal(t, StatusComplete, shift.Status)
	assert.Len(t, shift.Breaks, 1)
	assert.NotNil(t, shift.Breaks[0].End)
}
