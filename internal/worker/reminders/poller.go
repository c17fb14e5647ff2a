package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clipperdesk/clipperdesk/internal/booking"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// ReminderJob is the queue payload for one appointment reminder.
type ReminderJob struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	ClientName    string    `json:"client_name"`
	ClientPhone   string    `json:"client_phone"`
	Service       string    `json:"service"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// appointmentSource lists confirmed appointments needing a reminder.
type appointmentSource interface {
	ListUpcoming(ctx context.Context, from, until time.Time, limit int) ([]booking.Appointment, error)
}

// Poller scans for appointments entering the reminder window and enqueues
// a job for each. Sending and marking happen in the Sender so a failed
// SMS is retried on the next queue delivery.
type Poller struct {
	bookings     appointmentSource
	queue        Queue
	leadTime     time.Duration
	pollInterval time.Duration
	batchSize    int
	logger       *logging.Logger
	now          func() time.Time

	mu       sync.Mutex
	enqueued map[uuid.UUID]struct{}
}

// NewPoller creates a reminder poller.
func NewPoller(bookings appointmentSource, queue Queue, leadTime time.Duration, logger *logging.Logger) *Poller {
	if bookings == nil {
		panic("reminders: appointment source required")
	}
	if queue == nil {
		panic("reminders: queue required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if leadTime <= 0 {
		leadTime = 2 * time.Hour
	}
	return &Poller{
		bookings:     bookings,
		queue:        queue,
		leadTime:     leadTime,
		pollInterval: time.Minute,
		batchSize:    50,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
		enqueued:     make(map[uuid.UUID]struct{}),
	}
}

// WithPollInterval tunes how often the poller scans.
func (p *Poller) WithPollInterval(d time.Duration) *Poller {
	if d > 0 {
		p.pollInterval = d
	}
	return p
}

// WithBatchSize limits appointments per scan.
func (p *Poller) WithBatchSize(n int) *Poller {
	if n > 0 {
		p.batchSize = n
	}
	return p
}

// WithNow overrides the clock source. Intended for tests.
func (p *Poller) WithNow(now func() time.Time) *Poller {
	if now != nil {
		p.now = now
	}
	return p
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.logger.Info("reminder poller started", "lead_time", p.leadTime, "interval", p.pollInterval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("reminder poller stopped")
			return
		case <-ticker.C:
			if n, err := p.PollOnce(ctx); err != nil {
				p.logger.Error("reminder poll failed", "error", err)
			} else if n > 0 {
				p.logger.Info("reminders enqueued", "count", n)
			}
		}
	}
}

// PollOnce scans the reminder window once and enqueues due reminders.
// Returns the number of jobs enqueued.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	now := p.now()
	appts, err := p.bookings.ListUpcoming(ctx, now, now.Add(p.leadTime), p.batchSize)
	if err != nil {
		return 0, fmt.Errorf("reminders: list upcoming: %w", err)
	}

	enqueued := 0
	for _, appt := range appts {
		if p.alreadyEnqueued(appt.ID) {
			continue
		}
		job := ReminderJob{
			AppointmentID: appt.ID,
			ClientName:    appt.ClientName,
			ClientPhone:   appt.ClientPhone,
			Service:       appt.Service,
			ScheduledAt:   appt.ScheduledAt,
		}
		body, err := json.Marshal(job)
		if err != nil {
			p.logger.Error("failed to marshal reminder job", "error", err, "appointment_id", appt.ID)
			continue
		}
		if err := p.queue.Send(ctx, string(body)); err != nil {
			p.logger.Error("failed to enqueue reminder", "error", err, "appointment_id", appt.ID)
			continue
		}
		p.markEnqueued(appt.ID)
		enqueued++
	}
	return enqueued, nil
}

func (p *Poller) alreadyEnqueued(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.enqueued[id]
	return ok
}

func (p *Poller) markEnqueued(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enqueued[id] = struct{}{}
}
