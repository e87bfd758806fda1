package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quantumvibe/booking-assistant/internal/conversation"
	httpmiddleware "github.com/quantumvibe/booking-assistant/internal/http/middleware"
	"github.com/quantumvibe/booking-assistant/internal/reservations"
	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ChatHandler         *conversation.Handler
	ReservationsHandler *reservations.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// Chat rate limiting per client IP; zero disables it.
	ChatRatePerSecond float64
	ChatBurst         int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/keep-alive", keepAlive)
	r.Get("/health", keepAlive)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	var limitChat func(http.Handler) http.Handler
	if cfg.ChatRatePerSecond > 0 {
		limitChat = httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatBurst)
	}
	withChatLimit := func(h http.HandlerFunc) http.Handler {
		if limitChat == nil {
			return h
		}
		return limitChat(h)
	}

	if cfg.ChatHandler != nil {
		r.Method(http.MethodPost, "/chat", withChatLimit(cfg.ChatHandler.Chat))
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.ChatHandler != nil {
			api.Method(http.MethodPost, "/chat", withChatLimit(cfg.ChatHandler.Chat))
		}
		if cfg.ReservationsHandler == nil {
			return
		}
		api.Get("/disponibilidad", cfg.ReservationsHandler.Disponibilidad)
		api.Get("/fechas-disponibles", cfg.ReservationsHandler.FechasDisponibles)
		api.Get("/reservas", cfg.ReservationsHandler.ListReservas)
		api.Post("/reserva", cfg.ReservationsHandler.CrearReserva)
		api.Route("/reserva/{id}", func(res chi.Router) {
			res.Get("/", cfg.ReservationsHandler.GetReserva)
			res.Put("/", cfg.ReservationsHandler.UpdateReserva)
			res.Delete("/", cfg.ReservationsHandler.DeleteReserva)
		})
	})

	return r
}

func keepAlive(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("I'm alive!"))
}
