package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clipperdesk/clipperdesk/pkg/logging"
)

var bookingTracer = otel.Tracer("clipperdesk.internal.booking")

// Repository is the persistence surface the service needs.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CountAtSlot(ctx context.Context, barberID string, slot time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status AppointmentStatus) error
	ListForDay(ctx context.Context, ts time.Time) ([]Appointment, error)
}

// Service books and transitions appointments. Appointments are created in
// pending_deposit status; the payments webhook confirms them.
type Service struct {
	repo         Repository
	depositCents int
	logger       *logging.Logger
	now          func() time.Time
}

// NewService constructs a booking service.
func NewService(repo Repository, depositCents int, logger *logging.Logger) *Service {
	if repo == nil {
		panic("booking: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:         repo,
		depositCents: depositCents,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock source. Intended for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Book validates and persists a new pending-deposit appointment.
func (s *Service) Book(ctx context.Context, req *CreateAppointmentRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.book")
	defer span.End()
	span.SetAttributes(attribute.String("clipperdesk.barber_id", req.BarberID))

	if err := req.Validate(s.now()); err != nil {
		return nil, err
	}

	taken, err := s.repo.CountAtSlot(ctx, req.BarberID, req.ScheduledAt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if taken > 0 {
		return nil, ErrSlotTaken
	}

	appt := &Appointment{
		BarberID:     req.BarberID,
		ClientName:   req.ClientName,
		ClientPhone:  req.ClientPhone,
		Service:      req.Service,
		ScheduledAt:  req.ScheduledAt,
		Status:       StatusPendingDeposit,
		DepositCents: s.depositCents,
	}
	if err := s.repo.Create(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"barber_id", appt.BarberID,
		"scheduled_at", appt.ScheduledAt,
	)
	return appt, nil
}

// Confirm marks an appointment confirmed once its deposit is captured.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) error {
	ctx, span := bookingTracer.Start(ctx, "booking.confirm")
	defer span.End()
	span.SetAttributes(attribute.String("clipperdesk.appointment_id", id.String()))

	if err := s.repo.UpdateStatus(ctx, id, StatusConfirmed); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("appointment confirmed", "appointment_id", id)
	return nil
}

// Cancel marks an appointment cancelled.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	ctx, span := bookingTracer.Start(ctx, "booking.cancel")
	defer span.End()

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		span.RecordError(err)
		return err
	}
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return nil
}

// Get loads one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// Day lists all appointments on the given calendar day.
func (s *Service) Day(ctx context.Context, ts time.Time) ([]Appointment, error) {
	return s.repo.ListForDay(ctx, ts)
}
