package timeclock

import (
	"sort"
	"time"
)

// ShiftStatus classifies a reconstructed shift.
type ShiftStatus string

const (
	StatusComplete   ShiftStatus = "complete"
	StatusInProgress ShiftStatus = "in_progress"
	StatusOnBreak    ShiftStatus = "on_break"
	StatusIncomplete ShiftStatus = "incomplete"
)

// BreakInterval is a derived break span. End is nil only for the most recent
// break when no matching break_end has been recorded yet.
type BreakInterval struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end"`
}

// Duration measures the break against now when it is still open.
func (b BreakInterval) Duration(now time.Time) time.Duration {
	end := now
	if b.End != nil {
		end = *b.End
	}
	return end.Sub(b.Start)
}

// DailyShift is the reconstructed work period for one barber on one grouped
// day. It is never persisted; callers recompute it from entries on every read.
type DailyShift struct {
	Date        string          `json:"date"`
	ClockIn     *time.Time      `json:"clock_in"`
	ClockOut    *time.Time      `json:"clock_out"`
	Breaks      []BreakInterval `json:"breaks"`
	TotalWorked time.Duration   `json:"total_worked_ms"`
	BreakTime   time.Duration   `json:"break_time_ms"`
	NetWorked   time.Duration   `json:"net_worked_ms"`
	Status      ShiftStatus     `json:"status"`
	Entries     []TimeEntry     `json:"entries"`
}

// ParseShiftsForDay reconstructs a shift from one barber's entries for a
// single day. The input may arrive in any order; it is sorted by timestamp
// (stable, so equal instants keep their relative order). Open shifts and open
// breaks are measured against the supplied now, which is read once so the
// result is a consistent snapshot.
//
// Reconstruction is deliberately permissive: the first clock_in wins, the
// last clock_out wins, a break_start while a break is already open is
// ignored, and a break_end with no open break is ignored. The validator is
// the gate that prevents such sequences; the parser repairs whatever history
// it is handed.
func ParseShiftsForDay(entries []TimeEntry, now time.Time) DailyShift {
	if len(entries) == 0 {
		return DailyShift{Status: StatusIncomplete, Breaks: []BreakInterval{}, Entries: []TimeEntry{}}
	}

	sorted := make([]TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	shift := DailyShift{
		Date:    sorted[0].DateKey(),
		Breaks:  []BreakInterval{},
		Entries: sorted,
	}

	var openBreak *time.Time
	for i := range sorted {
		ts := sorted[i].Timestamp
		switch sorted[i].Kind {
		case KindClockIn:
			if shift.ClockIn == nil {
				t := ts
				shift.ClockIn = &t
			}
		case KindClockOut:
			t := ts
			shift.ClockOut = &t
		case KindBreakStart:
			if openBreak == nil {
				t := ts
				openBreak = &t
			}
		case KindBreakEnd:
			if openBreak != nil {
				t := ts
				shift.Breaks = append(shift.Breaks, BreakInterval{Start: *openBreak, End: &t})
				openBreak = nil
			}
		}
	}
	if openBreak != nil {
		shift.Breaks = append(shift.Breaks, BreakInterval{Start: *openBreak})
	}

	if shift.ClockIn != nil {
		end := now
		if shift.ClockOut != nil {
			end = *shift.ClockOut
		}
		shift.TotalWorked = end.Sub(*shift.ClockIn)
	}
	for _, b := range shift.Breaks {
		shift.BreakTime += b.Duration(now)
	}
	shift.NetWorked = shift.TotalWorked - shift.BreakTime
	if shift.NetWorked < 0 {
		shift.NetWorked = 0
	}

	shift.Status = classify(shift.ClockIn, shift.ClockOut, openBreakExists(shift.Breaks))
	return shift
}

func classify(clockIn, clockOut *time.Time, onBreak bool) ShiftStatus {
	switch {
	case clockIn != nil && clockOut != nil:
		return StatusComplete
	case clockIn != nil && onBreak:
		return StatusOnBreak
	case clockIn != nil:
		return StatusInProgress
	default:
		return StatusIncomplete
	}
}

func openBreakExists(breaks []BreakInterval) bool {
	for _, b := range breaks {
		if b.End == nil {
			return true
		}
	}
	return false
}
