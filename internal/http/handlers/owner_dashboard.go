package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// OwnerDashboardHandler serves the owner's shop overview endpoint.
type OwnerDashboardHandler struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewOwnerDashboardHandler creates a new owner dashboard handler.
func NewOwnerDashboardHandler(db *sql.DB, logger *logging.Logger) *OwnerDashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &OwnerDashboardHandler{
		db:     db,
		logger: logger,
	}
}

// DashboardOverviewResponse contains the main dashboard metrics.
type DashboardOverviewResponse struct {
	Period       string           `json:"period"`
	Staff        StaffMetrics     `json:"staff"`
	Appointments BookingMetrics   `json:"appointments"`
	Payments     PaymentMetrics   `json:"payments"`
	Timeclock    TimeclockMetrics `json:"timeclock"`
}

// StaffMetrics contains roster counts.
type StaffMetrics struct {
	ActiveBarbers int `json:"active_barbers"`
}

// BookingMetrics contains appointment-related dashboard metrics.
type BookingMetrics struct {
	Total           int `json:"total"`
	Upcoming        int `json:"upcoming"`
	ThisWeek        int `json:"this_week"`
	PendingDeposits int `json:"pending_deposits"`
	CancelledCount  int `json:"cancelled_count"`
}

// PaymentMetrics contains deposit-related dashboard metrics.
type PaymentMetrics struct {
	TotalCollected int `json:"total_collected_cents"`
	ThisWeek       int `json:"this_week_cents"`
	PendingCount   int `json:"pending_count"`
}

// TimeclockMetrics contains clock activity for today.
type TimeclockMetrics struct {
	EntriesToday     int `json:"entries_today"`
	BarbersOnFloor   int `json:"barbers_on_floor"`
	BarbersSeenToday int `json:"barbers_seen_today"`
}

// GetDashboardOverview returns the main dashboard overview.
// GET /admin/dashboard
func (h *OwnerDashboardHandler) GetDashboardOverview(w http.ResponseWriter, r *http.Request) {
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "week"
	}

	dashboard := DashboardOverviewResponse{
		Period: period,
	}

	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	today := now.Truncate(24 * time.Hour)

	// Roster
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM barbers WHERE active = TRUE`,
	).Scan(&dashboard.Staff.ActiveBarbers)

	// Appointments
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments`,
	).Scan(&dashboard.Appointments.Total)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE scheduled_at >= $1 AND status = 'confirmed'`, now,
	).Scan(&dashboard.Appointments.Upcoming)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE created_at >= $1`, weekAgo,
	).Scan(&dashboard.Appointments.ThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE status = 'pending_deposit'`,
	).Scan(&dashboard.Appointments.PendingDeposits)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM appointments WHERE status = 'cancelled'`,
	).Scan(&dashboard.Appointments.CancelledCount)

	// Deposits
	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'succeeded'`,
	).Scan(&dashboard.Payments.TotalCollected)

	h.db.QueryRowContext(r.Context(),
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE status = 'succeeded' AND updated_at >= $1`, weekAgo,
	).Scan(&dashboard.Payments.ThisWeek)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM payments WHERE status = 'pending'`,
	).Scan(&dashboard.Payments.PendingCount)

	// Clock activity
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM time_entries WHERE ts >= $1`, today,
	).Scan(&dashboard.Timeclock.EntriesToday)

	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(DISTINCT barber_id) FROM time_entries WHERE ts >= $1`, today,
	).Scan(&dashboard.Timeclock.BarbersSeenToday)

	// On the floor: barbers whose latest entry today is not a clock_out.
	h.db.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT ON (barber_id) barber_id, kind
			FROM time_entries
			WHERE ts >= $1
			ORDER BY barber_id, ts DESC, id DESC
		) latest WHERE latest.kind <> 'clock_out'`, today,
	).Scan(&dashboard.Timeclock.BarbersOnFloor)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(dashboard)
}
