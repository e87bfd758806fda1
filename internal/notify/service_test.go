package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quantumvibe/booking-assistant/internal/events"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func confirmedEntry(t *testing.T, evt events.ReservationConfirmedV1) events.OutboxEntry {
	t.Helper()
	payload, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return events.OutboxEntry{
		ID:      uuid.New(),
		Type:    events.TypeReservationConfirmed,
		Payload: payload,
	}
}

func sampleEvent() events.ReservationConfirmedV1 {
	return events.ReservationConfirmedV1{
		EventID:       uuid.NewString(),
		ReservationID: "res-123",
		Fecha:         "2026-07-21",
		Hora:          "10:00",
		NombreCliente: "Jane Doe",
		Telefono:      "+56947295678",
		Email:         "jane@example.com",
		ConfirmedAt:   time.Date(2026, time.July, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestHandleSendsConfirmationEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, logging.Default())

	if err := svc.Handle(context.Background(), confirmedEntry(t, sampleEvent())); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To != "jane@example.com" || msg.ToName != "Jane Doe" {
		t.Fatalf("recipient = %q %q", msg.To, msg.ToName)
	}
	if msg.Subject != "Confirmación de tu reserva en Cápsulas QuantumVibe" {
		t.Fatalf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"martes 21 de julio", "10:00", "res-123", "José Victorino Lastarria", "calendar.google.com"} {
		if !strings.Contains(msg.Body, want) {
			t.Fatalf("body missing %q:\n%s", want, msg.Body)
		}
	}
	if !strings.Contains(msg.HTML, "res-123") {
		t.Fatal("html missing reservation id")
	}
}

func TestHandleSkipsReservationsWithoutEmail(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, logging.Default())

	evt := sampleEvent()
	evt.Email = ""
	if err := svc.Handle(context.Background(), confirmedEntry(t, evt)); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent = %d, want 0", len(sender.sent))
	}
}

func TestHandleReturnsSenderErrorForRetry(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	svc := NewService(sender, logging.Default())

	err := svc.Handle(context.Background(), confirmedEntry(t, sampleEvent()))
	if err == nil {
		t.Fatal("expected error for retry")
	}
}

func TestHandleAcksUnknownTypesAndBadPayloads(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, logging.Default())

	unknown := events.OutboxEntry{ID: uuid.New(), Type: "something.else.v1", Payload: []byte(`{}`)}
	if err := svc.Handle(context.Background(), unknown); err != nil {
		t.Fatalf("unknown type: %v", err)
	}

	malformed := events.OutboxEntry{ID: uuid.New(), Type: events.TypeReservationConfirmed, Payload: []byte(`{`)}
	if err := svc.Handle(context.Background(), malformed); err != nil {
		t.Fatalf("malformed payload: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sent = %d, want 0", len(sender.sent))
	}
}

func TestCalendarLinkCoversSessionWindow(t *testing.T) {
	evt := sampleEvent()
	date, _ := time.Parse("2006-01-02", evt.Fecha)
	link := calendarLink(evt, date)

	if !strings.Contains(link, "20260721T100000%2F20260721T104000") {
		t.Fatalf("link dates wrong: %s", link)
	}
	if !strings.Contains(link, "America%2FSantiago") {
		t.Fatalf("link timezone wrong: %s", link)
	}
}
