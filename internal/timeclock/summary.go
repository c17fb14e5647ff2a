package timeclock

import (
	"sort"
	"time"
)

// Anomaly flags raised during summarization, in precedence order.
const (
	AnomalyMissingClock  = "Missing clock-in or clock-out"
	AnomalyBreakNotEnded = "Break not ended"
	AnomalyInProgress    = "Shift in progress"
	AnomalyOnBreak       = "Currently on break"
)

// DailySummary is one barber's reconstructed day enriched for reporting.
type DailySummary struct {
	BarberID   string      `json:"barber_id"`
	BarberName string      `json:"barber_name"`
	Date       string      `json:"date"`
	Shift      DailyShift  `json:"shift"`
	TotalHours float64     `json:"total_hours"`
	BreakHours float64     `json:"break_hours"`
	NetHours   float64     `json:"net_hours"`
	EntryCount int         `json:"entry_count"`
	Status     ShiftStatus `json:"status"`
	Anomaly    string      `json:"anomaly,omitempty"`
}

// GroupEntriesByBarberAndDate buckets entries by barber, then by the calendar
// date of each timestamp. Bucket contents keep insertion order; chronological
// order is established later by ParseShiftsForDay's sort.
func GroupEntriesByBarberAndDate(entries []TimeEntry) map[string]map[string][]TimeEntry {
	grouped := make(map[string]map[string][]TimeEntry)
	for _, e := range entries {
		byDate, ok := grouped[e.BarberID]
		if !ok {
			byDate = make(map[string][]TimeEntry)
			grouped[e.BarberID] = byDate
		}
		key := e.DateKey()
		byDate[key] = append(byDate[key], e)
	}
	return grouped
}

// CalculateDailySummaries reconstructs every (barber, date) bucket and flags
// anomalies. names maps barber IDs to display names; unknown IDs fall back to
// the raw ID. Output is sorted by date descending, then barber name ascending.
func CalculateDailySummaries(entries []TimeEntry, names map[string]string, now time.Time) []DailySummary {
	grouped := GroupEntriesByBarberAndDate(entries)

	summaries := make([]DailySummary, 0, len(grouped))
	for barberID, byDate := range grouped {
		name := names[barberID]
		if name == "" {
			name = barberID
		}
		for date, bucket := range byDate {
			shift := ParseShiftsForDay(bucket, now)
			summaries = append(summaries, DailySummary{
				BarberID:   barberID,
				BarberName: name,
				Date:       date,
				Shift:      shift,
				TotalHours: hours(shift.TotalWorked),
				BreakHours: hours(shift.BreakTime),
				NetHours:   hours(shift.NetWorked),
				EntryCount: len(shift.Entries),
				Status:     shift.Status,
				Anomaly:    detectAnomaly(shift),
			})
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Date != summaries[j].Date {
			return summaries[i].Date > summaries[j].Date
		}
		return summaries[i].BarberName < summaries[j].BarberName
	})
	return summaries
}

// detectAnomaly applies the reporting precedence: first match wins.
func detectAnomaly(shift DailyShift) string {
	if shift.Status == StatusIncomplete {
		return AnomalyMissingClock
	}
	if openBreakExists(shift.Breaks) {
		return AnomalyBreakNotEnded
	}
	if shift.Status == StatusInProgress {
		return AnomalyInProgress
	}
	if shift.Status == StatusOnBreak {
		return AnomalyOnBreak
	}
	return ""
}

func hours(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 3_600_000
}
