package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/quantumvibe/booking-assistant/internal/events"
	"github.com/quantumvibe/booking-assistant/internal/schedule"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

const (
	venueAddress = "Calle José Victorino Lastarria 94, local 5, Santiago"
	venueHint    = "(A pasos de Metro Baquedano)"
	venuePhone   = "+56 9 4729 5678"
	venueTZ      = "America/Santiago"
)

// Service consumes reservation events from the outbox and sends the guest
// confirmation email. Delivery problems are reported back to the deliverer
// for retry; they never affect the committed reservation.
type Service struct {
	email  EmailSender
	logger *logging.Logger
}

func NewService(email EmailSender, logger *logging.Logger) *Service {
	if email == nil {
		panic("notify: email sender cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{email: email, logger: logger}
}

// Handle dispatches one outbox entry. Unknown event types are acknowledged
// and dropped; failing them would wedge the outbox.
func (s *Service) Handle(ctx context.Context, entry events.OutboxEntry) error {
	switch entry.Type {
	case events.TypeReservationConfirmed:
		var evt events.ReservationConfirmedV1
		if err := json.Unmarshal(entry.Payload, &evt); err != nil {
			s.logger.Error("notify: malformed reservation event", "outbox_id", entry.ID, "error", err)
			return nil
		}
		return s.sendConfirmation(ctx, evt)
	default:
		s.logger.Warn("notify: skipping unknown event type", "type", entry.Type, "outbox_id", entry.ID)
		return nil
	}
}

func (s *Service) sendConfirmation(ctx context.Context, evt events.ReservationConfirmedV1) error {
	if evt.Email == "" {
		s.logger.Info("notify: reservation has no email, skipping confirmation", "reservation_id", evt.ReservationID)
		return nil
	}

	msg, err := buildConfirmationEmail(evt)
	if err != nil {
		s.logger.Error("notify: could not build confirmation email", "reservation_id", evt.ReservationID, "error", err)
		return nil
	}

	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: confirmation for %s: %w", evt.ReservationID, err)
	}
	s.logger.Info("confirmation email queued", "reservation_id", evt.ReservationID, "to", evt.Email)
	return nil
}

func buildConfirmationEmail(evt events.ReservationConfirmedV1) (EmailMessage, error) {
	date, err := schedule.ParseDate(evt.Fecha)
	if err != nil {
		return EmailMessage{}, fmt.Errorf("invalid fecha %q: %w", evt.Fecha, err)
	}
	fechaFormateada := schedule.FormatHuman(date)
	calendarURL := calendarLink(evt, date)

	text := fmt.Sprintf(`¡Hola %s!

Tu reserva en Cápsulas QuantumVibe ha sido confirmada exitosamente.

📅 Fecha: %s
⏰ Hora: %s
🆔 Número de reserva: %s

📍 DIRECCIÓN:
%s
%s

Por favor, llega 5 minutos antes de tu hora reservada. Al llegar, llama al %s.

Para agregar esta cita a tu calendario de Google, puedes usar este enlace:
%s

¡Esperamos verte pronto para tu experiencia QuantumVibe!

Si necesitas cambiar o cancelar tu reserva, por favor contáctanos respondiendo a este correo.

Saludos cordiales,
Equipo Cápsulas QuantumVibe
`, evt.NombreCliente, fechaFormateada, evt.Hora, evt.ReservationID, venueAddress, venueHint, venuePhone, calendarURL)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #6a0dad; text-align: center;">¡Tu reserva está confirmada!</h2>
  <p>¡Hola <strong>%s</strong>!</p>
  <p>Tu reserva en Cápsulas QuantumVibe ha sido confirmada exitosamente.</p>
  <div style="background-color: #f8f8f8; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>📅 Fecha:</strong> %s</p>
    <p><strong>⏰ Hora:</strong> %s</p>
    <p><strong>🆔 Número de reserva:</strong> %s</p>
  </div>
  <div style="background-color: #f0e8ff; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <h3 style="color: #6a0dad; margin-top: 0;">📍 DIRECCIÓN:</h3>
    <p>%s<br>%s</p>
    <p><strong>Por favor, llega 5 minutos antes de tu hora reservada.</strong><br>Al llegar, llama al %s.</p>
  </div>
  <p style="text-align: center;">
    <a href="%s" style="display: inline-block; background-color: #6a0dad; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; margin: 20px 0;">Añadir a Google Calendar</a>
  </p>
  <p>¡Esperamos verte pronto para tu experiencia QuantumVibe!</p>
  <p>Saludos cordiales,<br>Equipo Cápsulas QuantumVibe</p>
</div>`, evt.NombreCliente, fechaFormateada, evt.Hora, evt.ReservationID, venueAddress, venueHint, venuePhone, calendarURL)

	return EmailMessage{
		To:      evt.Email,
		ToName:  evt.NombreCliente,
		Subject: "Confirmación de tu reserva en Cápsulas QuantumVibe",
		Body:    text,
		HTML:    html,
	}, nil
}

// calendarLink builds a Google Calendar template URL for the 40-minute
// session in the venue's timezone.
func calendarLink(evt events.ReservationConfirmedV1, date time.Time) string {
	start := date
	var hh, mm int
	if _, err := fmt.Sscanf(evt.Hora, "%d:%d", &hh, &mm); err == nil {
		start = time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, date.Location())
	}
	end := start.Add(schedule.SessionDuration)

	const stamp = "20060102T150405"
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", "Sesión Cápsulas QuantumVibe")
	q.Set("dates", start.Format(stamp)+"/"+end.Format(stamp))
	q.Set("ctz", venueTZ)
	q.Set("location", venueAddress)
	q.Set("details", "Tu sesión de 40 minutos en Cápsulas QuantumVibe. Llega 5 minutos antes y llama al "+venuePhone+" al llegar.")
	return "https://calendar.google.com/calendar/render?" + q.Encode()
}
