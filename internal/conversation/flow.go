package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quantumvibe/booking-assistant/internal/reservations"
	"github.com/quantumvibe/booking-assistant/internal/schedule"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

// Flow drives the booking dialog for one message at a time. It owns no
// state of its own; the caller passes the session's ReservationState in and
// persists whatever comes back.
type Flow struct {
	bookings *reservations.Service
	logger   *logging.Logger
	now      func() time.Time
}

func NewFlow(bookings *reservations.Service, logger *logging.Logger) *Flow {
	if bookings == nil {
		panic("conversation: bookings service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Flow{
		bookings: bookings,
		logger:   logger,
		now:      time.Now,
	}
}

// WithNow fixes the clock, for tests.
func (f *Flow) WithNow(now func() time.Time) *Flow {
	f.now = now
	return f
}

// Start opens a new booking dialog: renders upcoming availability and asks
// for the first missing fields. Returns the state to persist and the reply.
func (f *Flow) Start(ctx context.Context) (*ReservationState, string, error) {
	availability, err := f.renderAvailability(ctx)
	if err != nil {
		return nil, "", err
	}
	if availability == "" {
		return nil, "Lo siento, no hay horarios disponibles en los próximos días. Por favor, intenta más adelante o contacta directamente a nuestro equipo para opciones especiales.", nil
	}

	state := &ReservationState{Paso: StepCollectingDatetime}
	reply := fmt.Sprintf("¡Excelente elección! Estas son nuestras próximas fechas con horarios disponibles:\n\n%s\n\n¿Qué día y a qué hora te gustaría reservar tu sesión?", availability)
	return state, reply, nil
}

// Advance consumes one user message against an active dialog. A nil
// returned state means the dialog ended (commit or cancellation) and the
// stored state must be discarded.
func (f *Flow) Advance(ctx context.Context, state *ReservationState, message string) (*ReservationState, string, error) {
	if IsCancellation(message) {
		return nil, "De acuerdo, he cancelado el proceso de reserva. Si deseas agendar una sesión más adelante, aquí estaré para ayudarte.", nil
	}

	switch state.Paso {
	case StepCollectingDatetime:
		return f.advanceDatetime(ctx, state, message)
	case StepCollectingContact:
		return f.advanceContact(ctx, state, message)
	case StepConfirming:
		return f.advanceConfirming(ctx, state, message)
	default:
		// Unknown step in stored state; restart collection.
		state.Paso = StepCollectingDatetime
		return f.advanceDatetime(ctx, state, message)
	}
}

func (f *Flow) advanceDatetime(ctx context.Context, state *ReservationState, message string) (*ReservationState, string, error) {
	state.Merge(ExtractFields(message, f.now()))

	if state.Fecha != "" && state.Hora != "" {
		ok, err := f.bookings.CheckAvailability(ctx, state.Fecha, state.Hora)
		if err != nil {
			return state, "", err
		}
		if !ok {
			fecha, hora := state.Fecha, state.Hora
			state.ClearSlot()
			availability, err := f.renderAvailability(ctx)
			if err != nil {
				return state, "", err
			}
			return state, fmt.Sprintf("Lo siento, el %s a las %s no está disponible. Estas son las alternativas:\n\n%s\n\n¿Qué día y hora prefieres?", f.humanDate(fecha), hora, availability), nil
		}
		state.Paso = StepCollectingContact
		return state, f.contactPrompt(state), nil
	}

	reply, err := f.datetimePrompt(ctx, state)
	return state, reply, err
}

func (f *Flow) advanceContact(ctx context.Context, state *ReservationState, message string) (*ReservationState, string, error) {
	state.Merge(ExtractFields(message, f.now()))

	if !state.HasContact(f.bookings.RequiresEmail()) {
		return state, f.contactPrompt(state), nil
	}

	state.Paso = StepConfirming
	return state, f.summaryPrompt(state), nil
}

func (f *Flow) advanceConfirming(ctx context.Context, state *ReservationState, message string) (*ReservationState, string, error) {
	switch {
	case IsAffirmative(message):
		return f.commit(ctx, state)
	case IsNegative(message):
		state.ClearAll()
		state.Paso = StepCollectingDatetime
		availability, err := f.renderAvailability(ctx)
		if err != nil {
			return state, "", err
		}
		return state, fmt.Sprintf("Sin problema, empecemos de nuevo. Estas son nuestras próximas fechas con horarios disponibles:\n\n%s\n\n¿Qué día y a qué hora te gustaría reservar?", availability), nil
	default:
		return state, f.summaryPrompt(state), nil
	}
}

func (f *Flow) commit(ctx context.Context, state *ReservationState) (*ReservationState, string, error) {
	res, err := f.bookings.Commit(ctx, &reservations.CreateReservationRequest{
		Fecha:         state.Fecha,
		Hora:          state.Hora,
		NombreCliente: state.Nombre,
		Telefono:      state.Telefono,
		Email:         state.Email,
		Programa:      state.Programa,
	})
	if err != nil {
		if errors.Is(err, reservations.ErrSlotTaken) || errors.Is(err, reservations.ErrInvalidSlot) {
			state.ClearSlot()
			state.Paso = StepCollectingDatetime
			availability, rerr := f.renderAvailability(ctx)
			if rerr != nil {
				return state, "", rerr
			}
			return state, fmt.Sprintf("Lo siento, ese horario acaba de ser tomado. Estas son las alternativas disponibles:\n\n%s\n\n¿Qué día y hora prefieres?", availability), nil
		}
		return state, "", err
	}

	reply := fmt.Sprintf("¡Tu reserva está confirmada! 🌟\n\n%s\n\nNúmero de reserva: %s\n\nLa dirección es Calle José Victorino Lastarria 94, local 5, Santiago, a pasos de Metro Baquedano. Por favor llega 5 minutos antes de tu hora y llama al +56 9 4729 5678 al llegar. ¡Te esperamos!", f.summaryLines(state), res.ID)
	return nil, reply, nil
}

func (f *Flow) datetimePrompt(ctx context.Context, state *ReservationState) (string, error) {
	var missing []string
	if state.Fecha == "" {
		missing = append(missing, "el día (de martes a sábado)")
	}
	if state.Hora == "" {
		missing = append(missing, "la hora (10:00, 12:00, 15:00 o 17:00)")
	}

	if state.Fecha != "" && state.Hora == "" {
		day, err := f.dayOptions(ctx, state.Fecha)
		if err != nil {
			return "", err
		}
		if day != "" {
			return fmt.Sprintf("Perfecto, para el %s tenemos disponibles estos horarios: %s. ¿Cuál prefieres?", f.humanDate(state.Fecha), day), nil
		}
		fecha := state.Fecha
		state.ClearSlot()
		availability, err := f.renderAvailability(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Lo siento, el %s no tiene horarios disponibles. Estas son las alternativas:\n\n%s", f.humanDate(fecha), availability), nil
	}

	return fmt.Sprintf("Para continuar con tu reserva necesito %s. ¿Me lo puedes indicar?", strings.Join(missing, " y ")), nil
}

func (f *Flow) contactPrompt(state *ReservationState) string {
	var missing []string
	if state.Nombre == "" {
		missing = append(missing, "tu nombre completo")
	}
	if state.Telefono == "" {
		missing = append(missing, "tu número de teléfono")
	}
	if state.Email == "" && f.bookings.RequiresEmail() {
		missing = append(missing, "tu correo electrónico")
	}
	if len(missing) == 0 {
		return f.summaryPrompt(state)
	}

	suffix := ""
	if state.Email == "" && !f.bookings.RequiresEmail() {
		suffix = " Si lo deseas, también puedes dejarme tu correo electrónico (opcional)."
	}
	return fmt.Sprintf("Muy bien, tu sesión sería el %s a las %s. Para completar la reserva necesito %s.%s", f.humanDate(state.Fecha), state.Hora, strings.Join(missing, " y "), suffix)
}

func (f *Flow) summaryPrompt(state *ReservationState) string {
	return fmt.Sprintf("Estos son los datos de tu reserva:\n\n%s\n\n¿Confirmas la reserva? (sí / no)", f.summaryLines(state))
}

func (f *Flow) summaryLines(state *ReservationState) string {
	lines := []string{
		fmt.Sprintf("📅 Fecha: %s", f.humanDate(state.Fecha)),
		fmt.Sprintf("🕐 Hora: %s", state.Hora),
		fmt.Sprintf("👤 Nombre: %s", state.Nombre),
		fmt.Sprintf("📞 Teléfono: %s", state.Telefono),
	}
	if state.Email != "" {
		lines = append(lines, fmt.Sprintf("✉️ Email: %s", state.Email))
	}
	if state.Programa != "" {
		lines = append(lines, fmt.Sprintf("✨ Programa: %s", state.Programa))
	}
	return strings.Join(lines, "\n")
}

func (f *Flow) renderAvailability(ctx context.Context) (string, error) {
	days, err := f.bookings.Calendar().NextAvailableDates(ctx)
	if err != nil {
		return "", err
	}
	if len(days) == 0 {
		return "", nil
	}

	var b strings.Builder
	for i, day := range days {
		horas := make([]string, 0, len(day.Horarios))
		for _, h := range day.Horarios {
			horas = append(horas, h.Hora)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s a las %s", f.humanDate(day.Fecha), strings.Join(horas, ", "))
	}
	return b.String(), nil
}

// dayOptions lists the open times for one date, empty when none remain.
func (f *Flow) dayOptions(ctx context.Context, fecha string) (string, error) {
	date, err := schedule.ParseDate(fecha)
	if err != nil {
		return "", nil
	}
	day, err := f.bookings.Calendar().DayAvailability(ctx, date)
	if err != nil {
		return "", err
	}
	open := make([]string, 0, len(day.Horarios))
	for _, h := range day.Horarios {
		if h.Disponible {
			open = append(open, h.Hora)
		}
	}
	return strings.Join(open, ", "), nil
}

func (f *Flow) humanDate(fecha string) string {
	date, err := schedule.ParseDate(fecha)
	if err != nil {
		return fecha
	}
	return schedule.FormatHuman(date)
}
