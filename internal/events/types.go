package events

import "time"

// TypeReservationConfirmed is the outbox event emitted after a successful commit.
const TypeReservationConfirmed = "reservations.confirmed.v1"

// ReservationConfirmedV1 announces a committed reservation. Consumers send
// the confirmation email; delivery never feeds back into the commit path.
type ReservationConfirmedV1 struct {
	EventID       string    `json:"event_id"`
	ReservationID string    `json:"reservation_id"`
	Fecha         string    `json:"fecha"`
	Hora          string    `json:"hora"`
	NombreCliente string    `json:"nombre_cliente"`
	Telefono      string    `json:"telefono"`
	Email         string    `json:"email,omitempty"`
	Programa      string    `json:"programa,omitempty"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}
