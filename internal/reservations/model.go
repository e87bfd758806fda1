package reservations

import (
	"strings"
	"time"
)

// Reservation is a committed booking occupying exactly one (fecha, hora) slot.
type Reservation struct {
	ID            string    `json:"id"`
	Fecha         string    `json:"fecha"`
	Hora          string    `json:"hora"`
	NombreCliente string    `json:"nombre_cliente"`
	Telefono      string    `json:"telefono"`
	Email         string    `json:"email,omitempty"`
	Programa      string    `json:"programa,omitempty"`
	CreadaEn      time.Time `json:"creada_en"`
}

// CreateReservationRequest carries the fields needed to commit a booking.
type CreateReservationRequest struct {
	Fecha         string `json:"fecha"`
	Hora          string `json:"hora"`
	NombreCliente string `json:"nombre_cliente"`
	Telefono      string `json:"telefono"`
	Email         string `json:"email"`
	Programa      string `json:"programa"`
}

// Validate checks the always-required fields. Whether email is also
// required is deployment policy and enforced by the caller.
func (r *CreateReservationRequest) Validate() error {
	if strings.TrimSpace(r.Fecha) == "" || strings.TrimSpace(r.Hora) == "" {
		return ErrMissingFields
	}
	if strings.TrimSpace(r.NombreCliente) == "" || strings.TrimSpace(r.Telefono) == "" {
		return ErrMissingFields
	}
	return nil
}

// UpdateReservationRequest carries a partial update; nil fields keep
// their current value.
type UpdateReservationRequest struct {
	Fecha         *string `json:"fecha"`
	Hora          *string `json:"hora"`
	NombreCliente *string `json:"nombre_cliente"`
	Telefono      *string `json:"telefono"`
	Email         *string `json:"email"`
	Programa      *string `json:"programa"`
}

// ChangesSlot reports whether the update moves the reservation to a
// different (fecha, hora) than the current one.
func (u *UpdateReservationRequest) ChangesSlot(current *Reservation) bool {
	if u.Fecha != nil && *u.Fecha != current.Fecha {
		return true
	}
	if u.Hora != nil && *u.Hora != current.Hora {
		return true
	}
	return false
}

// Apply merges the update into a copy of current.
func (u *UpdateReservationRequest) Apply(current *Reservation) *Reservation {
	next := *current
	if u.Fecha != nil {
		next.Fecha = *u.Fecha
	}
	if u.Hora != nil {
		next.Hora = *u.Hora
	}
	if u.NombreCliente != nil {
		next.NombreCliente = *u.NombreCliente
	}
	if u.Telefono != nil {
		next.Telefono = *u.Telefono
	}
	if u.Email != nil {
		next.Email = *u.Email
	}
	if u.Programa != nil {
		next.Programa = *u.Programa
	}
	return &next
}
