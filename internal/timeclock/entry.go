package timeclock

import "time"

// EntryKind is one of the four discrete clock actions a barber can perform.
type EntryKind string

const (
	KindClockIn    EntryKind = "clock_in"
	KindClockOut   EntryKind = "clock_out"
	KindBreakStart EntryKind = "break_start"
	KindBreakEnd   EntryKind = "break_end"
)

// Known reports whether k is one of the four recognized actions.
func (k EntryKind) Known() bool {
	switch k {
	case KindClockIn, KindClockOut, KindBreakStart, KindBreakEnd:
		return true
	}
	return false
}

// TimeEntry is an immutable fact: one barber performed one clock action at one
// instant. Entries are insert-only; shifts are always derived fresh from them.
type TimeEntry struct {
	ID        string    `json:"id"`
	BarberID  string    `json:"barber_id"`
	Kind      EntryKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// DateLayout is the calendar-date key used when grouping entries by day.
// The timestamp's own location is kept; no timezone normalization happens,
// so a shift crossing midnight splits into two day groups.
const DateLayout = "2006-01-02"

// DateKey returns the calendar date of the entry's timestamp.
func (e TimeEntry) DateKey() string {
	return e.Timestamp.Format(DateLayout)
}
