package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

// ChatRequest is the POST /chat body.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// ChatResponse carries the assistant reply.
type ChatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the chat endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Chat handles POST /chat and POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Se requiere sessionId y mensaje"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Se requiere sessionId y mensaje"})
		return
	}

	reply, err := h.service.HandleMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("chat message failed", "session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: userFacingError(err)})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}

// userFacingError maps internal failures to short, apologetic Spanish
// messages. Internal detail is never shown to the end user.
func userFacingError(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "Estamos recibiendo muchas solicitudes. Por favor, intenta de nuevo en unos minutos."
	case errors.Is(err, ErrCompletionTimeout):
		return "La solicitud tardó demasiado tiempo. Por favor, intenta de nuevo."
	case errors.Is(err, ErrNotConfigured):
		return "Error de configuración del servidor: La API key de Groq no está configurada."
	default:
		return "Lo siento, hubo un error al procesar tu mensaje. ¿Podrías intentarlo de nuevo?"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
