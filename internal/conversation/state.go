package conversation

// Step identifies where a booking dialog currently is. A session with no
// stored state is idle; idle is never persisted.
type Step string

const (
	StepCollectingDatetime Step = "collecting_datetime"
	StepCollectingContact  Step = "collecting_contact"
	StepConfirming         Step = "confirming"
)

// ReservationState holds the fields collected so far for one session's
// booking dialog. It is owned by exactly one session and discarded on
// commit or cancellation.
type ReservationState struct {
	Paso     Step   `json:"paso"`
	Fecha    string `json:"fecha,omitempty"`
	Hora     string `json:"hora,omitempty"`
	Nombre   string `json:"nombre,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
	Programa string `json:"programa,omitempty"`
}

// Merge copies newly extracted fields into the state without overwriting
// anything already set. First write wins.
func (s *ReservationState) Merge(f ExtractedFields) {
	if s.Fecha == "" && f.Fecha != "" {
		s.Fecha = f.Fecha
	}
	if s.Hora == "" && f.Hora != "" {
		s.Hora = f.Hora
	}
	if s.Nombre == "" && f.Nombre != "" {
		s.Nombre = f.Nombre
	}
	if s.Telefono == "" && f.Telefono != "" {
		s.Telefono = f.Telefono
	}
	if s.Email == "" && f.Email != "" {
		s.Email = f.Email
	}
	if s.Programa == "" && f.Programa != "" {
		s.Programa = f.Programa
	}
}

// HasSlot reports whether both date and time have been collected.
func (s *ReservationState) HasSlot() bool {
	return s.Fecha != "" && s.Hora != ""
}

// HasContact reports whether the required contact fields are present.
// Email is only required when requireEmail is set.
func (s *ReservationState) HasContact(requireEmail bool) bool {
	if s.Nombre == "" || s.Telefono == "" {
		return false
	}
	if requireEmail && s.Email == "" {
		return false
	}
	return true
}

// ClearSlot drops the collected date and time, forcing re-selection.
func (s *ReservationState) ClearSlot() {
	s.Fecha = ""
	s.Hora = ""
}

// ClearAll drops every collected field.
func (s *ReservationState) ClearAll() {
	s.Fecha = ""
	s.Hora = ""
	s.Nombre = ""
	s.Telefono = ""
	s.Email = ""
	s.Programa = ""
}
