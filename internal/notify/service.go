package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/clipperdesk/clipperdesk/internal/timeclock"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// Service sends operational notifications to the shop owner.
type Service struct {
	email      EmailSender
	ownerEmail string
	shopName   string
	logger     *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, ownerEmail, shopName string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if shopName == "" {
		shopName = "ClipperDesk"
	}
	return &Service{
		email:      email,
		ownerEmail: ownerEmail,
		shopName:   shopName,
		logger:     logger,
	}
}

// SendDailyTimesheet emails the owner an end-of-day digest of every barber's
// hours, with anomalies called out up top.
func (s *Service) SendDailyTimesheet(ctx context.Context, day time.Time, summaries []timeclock.DailySummary) error {
	if s.email == nil || s.ownerEmail == "" {
		s.logger.Debug("notify: email not configured, skipping daily timesheet")
		return nil
	}

	dateStr := day.Format("Monday, January 2")

	var anomalies []string
	var lines []string
	for _, sum := range summaries {
		lines = append(lines, fmt.Sprintf("%-20s  %5.2fh worked, %5.2fh break, %5.2fh net  (%s)",
			sum.BarberName, sum.TotalHours, sum.BreakHours, sum.NetHours, sum.Status))
		if sum.Anomaly != "" {
			anomalies = append(anomalies, fmt.Sprintf("%s: %s", sum.BarberName, sum.Anomaly))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No clock activity recorded.")
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Timesheet for %s\n\n", dateStr)
	if len(anomalies) > 0 {
		body.WriteString("Needs attention:\n")
		for _, a := range anomalies {
			fmt.Fprintf(&body, "  - %s\n", a)
		}
		body.WriteString("\n")
	}
	body.WriteString("Hours:\n")
	for _, l := range lines {
		fmt.Fprintf(&body, "  %s\n", l)
	}
	fmt.Fprintf(&body, "\n— %s", s.shopName)

	subject := fmt.Sprintf("Timesheet %s", day.Format("2006-01-02"))
	if len(anomalies) > 0 {
		subject = fmt.Sprintf("Timesheet %s (%d need attention)", day.Format("2006-01-02"), len(anomalies))
	}

	msg := EmailMessage{
		To:      s.ownerEmail,
		Subject: subject,
		Body:    body.String(),
		HTML:    s.timesheetHTML(dateStr, summaries, anomalies),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: daily timesheet: %w", err)
	}
	s.logger.Info("daily timesheet sent", "to", s.ownerEmail, "date", day.Format("2006-01-02"), "barbers", len(summaries))
	return nil
}

func (s *Service) timesheetHTML(dateStr string, summaries []timeclock.DailySummary, anomalies []string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: sans-serif; max-width: 600px;">`)
	fmt.Fprintf(&b, "<h2>Timesheet for %s</h2>", dateStr)

	if len(anomalies) > 0 {
		b.WriteString(`<p style="background: #fef2f2; padding: 12px; border-radius: 8px; border-left: 4px solid #ef4444;"><strong>Needs attention</strong><br>`)
		b.WriteString(strings.Join(anomalies, "<br>"))
		b.WriteString("</p>")
	}

	b.WriteString(`<table style="border-collapse: collapse; margin: 20px 0;">`)
	b.WriteString(`<tr><th style="padding: 8px; text-align: left;">Barber</th><th style="padding: 8px;">Worked</th><th style="padding: 8px;">Break</th><th style="padding: 8px;">Net</th><th style="padding: 8px;">Status</th></tr>`)
	for _, sum := range summaries {
		fmt.Fprintf(&b, `<tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%.2fh</td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%.2fh</td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%.2fh</td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>`,
			sum.BarberName, sum.TotalHours, sum.BreakHours, sum.NetHours, sum.Status)
	}
	b.WriteString("</table>")
	fmt.Fprintf(&b, `<p style="color: #6b7280; font-size: 12px;">— %s</p></div>`, s.shopName)
	return b.String()
}
