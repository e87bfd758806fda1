package reservations

import "errors"

var (
	// ErrMissingFields is returned when a required booking field is absent.
	ErrMissingFields = errors.New("reservations: missing required fields")

	// ErrInvalidSlot is returned when the (fecha, hora) pair is outside the
	// slot calendar (wrong weekday, unknown time, or in the past).
	ErrInvalidSlot = errors.New("reservations: slot not offered by the calendar")

	// ErrSlotTaken is returned when another reservation already holds the slot.
	ErrSlotTaken = errors.New("reservations: slot already booked")

	// ErrReservationNotFound is returned when the id does not exist.
	ErrReservationNotFound = errors.New("reservations: reservation not found")
)
