package reservations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quantumvibe/booking-assistant/internal/events"
	"github.com/quantumvibe/booking-assistant/internal/schedule"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

// Service layers calendar validation and event emission over the repository.
// It is the only commit path; handlers and the chat flow both go through it.
type Service struct {
	repo         Repository
	calendar     *schedule.Calendar
	outbox       events.Store
	requireEmail bool
	logger       *logging.Logger
}

// NewService constructs a reservations service. outbox may be nil when no
// confirmation consumer is configured.
func NewService(repo Repository, calendar *schedule.Calendar, outbox events.Store, requireEmail bool, logger *logging.Logger) *Service {
	if repo == nil {
		panic("reservations: repository required")
	}
	if calendar == nil {
		panic("reservations: calendar required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:         repo,
		calendar:     calendar,
		outbox:       outbox,
		requireEmail: requireEmail,
		logger:       logger,
	}
}

// Calendar exposes the slot calendar for read-only availability views.
func (s *Service) Calendar() *schedule.Calendar {
	return s.calendar
}

// RequiresEmail reports the deployment's email policy.
func (s *Service) RequiresEmail() bool {
	return s.requireEmail
}

// CheckAvailability reports whether (fecha, hora) is an offered slot with
// no existing reservation.
func (s *Service) CheckAvailability(ctx context.Context, fecha, hora string) (bool, error) {
	date, err := schedule.ParseDate(fecha)
	if err != nil {
		return false, nil
	}
	if !s.calendar.ValidateSlot(date, hora) {
		return false, nil
	}
	taken, err := s.repo.IsBooked(ctx, fecha, hora)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// Commit validates the slot against the calendar and inserts atomically.
// A retry after a transient failure re-runs the whole validation, so
// retries cannot double-book.
func (s *Service) Commit(ctx context.Context, req *CreateReservationRequest) (*Reservation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.requireEmail && strings.TrimSpace(req.Email) == "" {
		return nil, ErrMissingFields
	}
	date, err := schedule.ParseDate(req.Fecha)
	if err != nil {
		return nil, ErrInvalidSlot
	}
	if !s.calendar.ValidateSlot(date, req.Hora) {
		return nil, ErrInvalidSlot
	}

	res, err := s.repo.Commit(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reservation committed",
		"id", res.ID,
		"fecha", res.Fecha,
		"hora", res.Hora,
	)
	s.emitConfirmed(ctx, res)
	return res, nil
}

// Update applies a partial update, re-validating the calendar when the
// slot changes. The reservation's own slot never conflicts with itself.
func (s *Service) Update(ctx context.Context, id string, upd *UpdateReservationRequest) (*Reservation, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.ChangesSlot(current) {
		next := upd.Apply(current)
		date, err := schedule.ParseDate(next.Fecha)
		if err != nil {
			return nil, ErrInvalidSlot
		}
		if !s.calendar.ValidateSlot(date, next.Hora) {
			return nil, ErrInvalidSlot
		}
	}
	return s.repo.Update(ctx, id, upd)
}

// Get retrieves one reservation.
func (s *Service) Get(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every reservation.
func (s *Service) List(ctx context.Context) ([]*Reservation, error) {
	return s.repo.List(ctx)
}

// Remove deletes a reservation.
func (s *Service) Remove(ctx context.Context, id string) (bool, error) {
	return s.repo.Remove(ctx, id)
}

// emitConfirmed enqueues the confirmation event. The reservation is already
// committed; an outbox failure is logged, never propagated.
func (s *Service) emitConfirmed(ctx context.Context, res *Reservation) {
	if s.outbox == nil {
		return
	}
	evt := events.ReservationConfirmedV1{
		EventID:       uuid.NewString(),
		ReservationID: res.ID,
		Fecha:         res.Fecha,
		Hora:          res.Hora,
		NombreCliente: res.NombreCliente,
		Telefono:      res.Telefono,
		Email:         res.Email,
		Programa:      res.Programa,
		ConfirmedAt:   time.Now().UTC(),
	}
	if _, err := s.outbox.Insert(ctx, events.TypeReservationConfirmed, evt); err != nil {
		s.logger.Error("failed to enqueue confirmation event", "error", err, "reservation_id", res.ID)
	}
}
