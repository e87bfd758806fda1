package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/quantumvibe/booking-assistant/pkg/logging"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Service) {
	t.Helper()
	svc, _, _ := newTestService(t, false)
	h := NewHandler(svc, logging.Default())

	r := chi.NewRouter()
	r.Get("/api/disponibilidad", h.Disponibilidad)
	r.Get("/api/fechas-disponibles", h.FechasDisponibles)
	r.Post("/api/reserva", h.CrearReserva)
	r.Get("/api/reserva/{id}", h.GetReserva)
	r.Put("/api/reserva/{id}", h.UpdateReserva)
	r.Delete("/api/reserva/{id}", h.DeleteReserva)
	r.Get("/api/reservas", h.ListReservas)
	return r, svc
}

func TestDisponibilidadEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/disponibilidad?fecha=2026-07-21", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var day struct {
		Fecha    string `json:"fecha"`
		Horarios []struct {
			Hora       string `json:"hora"`
			Disponible bool   `json:"disponible"`
		} `json:"horarios"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &day); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if day.Fecha != "2026-07-21" || len(day.Horarios) != 4 {
		t.Fatalf("unexpected body: %+v", day)
	}
}

func TestDisponibilidadRejectsBadDate(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/disponibilidad?fecha=21-07-2026", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCrearReservaSuccessAndConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	body := func() *bytes.Reader {
		data, _ := json.Marshal(validRequest())
		return bytes.NewReader(data)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reserva", body()))
	var resp CreateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Exito || resp.ID == "" {
		t.Fatalf("expected success, got %+v", resp)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reserva", body()))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Exito {
		t.Fatal("expected conflict on double booking")
	}
	if resp.Mensaje != "El horario seleccionado no está disponible" {
		t.Fatalf("unexpected mensaje: %q", resp.Mensaje)
	}
}

func TestReservaCRUD(t *testing.T) {
	r, svc := newTestRouter(t)

	created, err := svc.Commit(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("seed commit failed: %v", err)
	}

	// GET
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reserva/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != created.ID || got.NombreCliente != created.NombreCliente {
		t.Fatalf("get mismatch: %+v", got)
	}

	// PUT: move to another time
	update, _ := json.Marshal(map[string]string{"hora": "15:00"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/reserva/"+created.ID, bytes.NewReader(update)))
	if rec.Code != http.StatusOK {
		t.Fatalf("put status = %d: %s", rec.Code, rec.Body.String())
	}

	// DELETE
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/reserva/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	// GET after delete -> 404
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reserva/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get-after-delete status = %d", rec.Code)
	}
}

func TestReservaNotFoundPaths(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reserva/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/reserva/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestListReservasEmpty(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reservas", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var list []*Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty array, got %v", list)
	}
}
