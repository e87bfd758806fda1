package reservations

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quantumvibe/booking-assistant/internal/schedule"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

// Handler exposes the reservation REST surface.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a reservations handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateResponse is the body for reservation creation attempts.
type CreateResponse struct {
	Exito   bool   `json:"exito"`
	ID      string `json:"id,omitempty"`
	Mensaje string `json:"mensaje"`
}

// Disponibilidad handles GET /api/disponibilidad?fecha=YYYY-MM-DD.
func (h *Handler) Disponibilidad(w http.ResponseWriter, r *http.Request) {
	fecha := r.URL.Query().Get("fecha")
	date := time.Now()
	if fecha != "" {
		parsed, err := schedule.ParseDate(fecha)
		if err != nil {
			http.Error(w, "fecha inválida, formato esperado YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	}

	day, err := h.service.Calendar().DayAvailability(r.Context(), date)
	if err != nil {
		h.logger.Error("failed to compute availability", "error", err, "fecha", fecha)
		http.Error(w, "Error al consultar disponibilidad", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, day)
}

// FechasDisponibles handles GET /api/fechas-disponibles.
func (h *Handler) FechasDisponibles(w http.ResponseWriter, r *http.Request) {
	dates, err := h.service.Calendar().NextAvailableDates(r.Context())
	if err != nil {
		h.logger.Error("failed to compute next available dates", "error", err)
		http.Error(w, "Error al obtener fechas disponibles", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, dates)
}

// CrearReserva handles POST /api/reserva.
func (h *Handler) CrearReserva(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode reservation request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Commit(r.Context(), &req)
	if err != nil {
		h.writeJSON(w, http.StatusOK, CreateResponse{Exito: false, Mensaje: commitFailureMessage(err)})
		return
	}

	h.writeJSON(w, http.StatusOK, CreateResponse{
		Exito:   true,
		ID:      res.ID,
		Mensaje: "Reserva creada exitosamente",
	})
}

// GetReserva handles GET /api/reserva/{id}.
func (h *Handler) GetReserva(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			http.Error(w, "Reserva no encontrada", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load reservation", "error", err)
		http.Error(w, "Error al consultar la reserva", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// UpdateReserva handles PUT /api/reserva/{id}.
func (h *Handler) UpdateReserva(w http.ResponseWriter, r *http.Request) {
	var upd UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.logger.Error("failed to decode update request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	res, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), &upd)
	if err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			http.Error(w, "Reserva no encontrada", http.StatusNotFound)
		case errors.Is(err, ErrSlotTaken), errors.Is(err, ErrInvalidSlot):
			h.writeJSON(w, http.StatusConflict, CreateResponse{Exito: false, Mensaje: commitFailureMessage(err)})
		default:
			h.logger.Error("failed to update reservation", "error", err)
			http.Error(w, "Error al actualizar la reserva", http.StatusInternalServerError)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// DeleteReserva handles DELETE /api/reserva/{id}.
func (h *Handler) DeleteReserva(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("failed to delete reservation", "error", err)
		http.Error(w, "Error al eliminar la reserva", http.StatusInternalServerError)
		return
	}
	if !removed {
		http.Error(w, "Reserva no encontrada", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReservas handles GET /api/reservas.
func (h *Handler) ListReservas(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list reservations", "error", err)
		http.Error(w, "Error al listar reservas", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []*Reservation{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

func commitFailureMessage(err error) string {
	switch {
	case errors.Is(err, ErrSlotTaken):
		return "El horario seleccionado no está disponible"
	case errors.Is(err, ErrInvalidSlot):
		return "El horario seleccionado no está disponible"
	case errors.Is(err, ErrMissingFields):
		return "Faltan datos requeridos para la reserva"
	default:
		return "Error al procesar la reserva"
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
