package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clipperdesk/clipperdesk/internal/messaging"
	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

// reminderMarker flags appointments so a reminder goes out once.
type reminderMarker interface {
	MarkReminderSent(ctx context.Context, id uuid.UUID) error
}

// optOutChecker reports whether a phone declined texts.
type optOutChecker interface {
	IsOptedOut(ctx context.Context, phone string) (bool, error)
}

// Sender drains the reminder queue, texts clients, and marks appointments.
type Sender struct {
	queue    Queue
	sms      messaging.SMSSender
	bookings reminderMarker
	optOuts  optOutChecker
	shopName string
	logger   *logging.Logger
}

// NewSender creates a reminder sender.
func NewSender(queue Queue, sms messaging.SMSSender, bookings reminderMarker, optOuts optOutChecker, shopName string, logger *logging.Logger) *Sender {
	if queue == nil {
		panic("reminders: queue required")
	}
	if sms == nil {
		panic("reminders: sms sender required")
	}
	if bookings == nil {
		panic("reminders: booking marker required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Sender{
		queue:    queue,
		sms:      sms,
		bookings: bookings,
		optOuts:  optOuts,
		shopName: shopName,
		logger:   logger,
	}
}

// Run drains the queue until the context is cancelled.
func (s *Sender) Run(ctx context.Context) {
	s.logger.Info("reminder sender started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder sender stopped")
			return
		default:
		}

		msgs, err := s.queue.Receive(ctx, 10, 20)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("reminder receive failed", "error", err)
			time.Sleep(2 * time.Second)
			continue
		}
		for _, msg := range msgs {
			if err := s.ProcessMessage(ctx, msg); err != nil {
				s.logger.Error("reminder processing failed", "error", err, "message_id", msg.ID)
				continue
			}
			if err := s.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
				s.logger.Error("failed to delete reminder message", "error", err, "message_id", msg.ID)
			}
		}
	}
}

// ProcessMessage sends the reminder for one queue message.
func (s *Sender) ProcessMessage(ctx context.Context, msg QueueMessage) error {
	var job ReminderJob
	if err := json.Unmarshal([]byte(msg.Body), &job); err != nil {
		return fmt.Errorf("reminders: decode job: %w", err)
	}
	if job.AppointmentID == uuid.Nil || job.ClientPhone == "" {
		return fmt.Errorf("reminders: job missing appointment or phone")
	}

	if s.optOuts != nil {
		out, err := s.optOuts.IsOptedOut(ctx, job.ClientPhone)
		if err != nil {
			return fmt.Errorf("reminders: opt-out check: %w", err)
		}
		if out {
			s.logger.Info("reminder skipped, client opted out", "appointment_id", job.AppointmentID)
			// Still mark so the poller stops picking it up.
			return s.bookings.MarkReminderSent(ctx, job.AppointmentID)
		}
	}

	if err := s.sms.Send(ctx, messaging.OutboundSMS{
		To:      job.ClientPhone,
		Body:    s.messageBody(job),
		Purpose: "reminder",
	}); err != nil {
		return fmt.Errorf("reminders: send sms: %w", err)
	}

	if err := s.bookings.MarkReminderSent(ctx, job.AppointmentID); err != nil {
		return fmt.Errorf("reminders: mark sent: %w", err)
	}

	s.logger.Info("reminder sent", "appointment_id", job.AppointmentID, "scheduled_at", job.ScheduledAt)
	return nil
}

func (s *Sender) messageBody(job ReminderJob) string {
	name := job.ClientName
	if name == "" {
		name = "there"
	}
	when := job.ScheduledAt.Format("Mon Jan 2 at 3:04 PM")
	if job.Service != "" {
		return fmt.Sprintf("Hi %s, reminder from %s: your %s appointment is %s. Reply STOP to opt out.", name, s.shopName, job.Service, when)
	}
	return fmt.Sprintf("Hi %s, reminder from %s: your appointment is %s. Reply STOP to opt out.", name, s.shopName, when)
}
