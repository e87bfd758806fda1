package reservations

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for reservation storage. Commit must be
// atomic with respect to concurrent commits for the same (fecha, hora):
// exactly one of two racing commits may succeed, the other gets ErrSlotTaken.
type Repository interface {
	Commit(ctx context.Context, req *CreateReservationRequest) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context) ([]*Reservation, error)
	Update(ctx context.Context, id string, upd *UpdateReservationRequest) (*Reservation, error)
	Remove(ctx context.Context, id string) (bool, error)
	IsBooked(ctx context.Context, fecha string, hora string) (bool, error)
}

// InMemoryRepository keeps reservations in process memory. A single mutex
// serializes the check-then-insert in Commit, which is the one place
// cross-session synchronization is required.
type InMemoryRepository struct {
	mu           sync.RWMutex
	reservations map[string]*Reservation
	slots        map[string]string // "fecha hora" -> reservation id
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		reservations: make(map[string]*Reservation),
		slots:        make(map[string]string),
	}
}

func slotKey(fecha, hora string) string {
	return fecha + " " + hora
}

// Commit inserts a reservation if the slot is still free.
func (r *InMemoryRepository) Commit(ctx context.Context, req *CreateReservationRequest) (*Reservation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(req.Fecha, req.Hora)
	if _, taken := r.slots[key]; taken {
		return nil, ErrSlotTaken
	}

	res := &Reservation{
		ID:            uuid.New().String(),
		Fecha:         req.Fecha,
		Hora:          req.Hora,
		NombreCliente: req.NombreCliente,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Programa:      req.Programa,
		CreadaEn:      time.Now().UTC(),
	}
	r.reservations[res.ID] = res
	r.slots[key] = res.ID
	return res, nil
}

// GetByID retrieves a reservation by id.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	copied := *res
	return &copied, nil
}

// List returns every reservation ordered by (fecha, hora).
func (r *InMemoryRepository) List(ctx context.Context) ([]*Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Reservation, 0, len(r.reservations))
	for _, res := range r.reservations {
		copied := *res
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Fecha != out[j].Fecha {
			return out[i].Fecha < out[j].Fecha
		}
		return out[i].Hora < out[j].Hora
	})
	return out, nil
}

// Update applies a partial update. When the update moves the reservation to
// another slot, the target slot must be free; the reservation's own slot is
// excluded from that check.
func (r *InMemoryRepository) Update(ctx context.Context, id string, upd *UpdateReservationRequest) (*Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}

	next := upd.Apply(current)
	if upd.ChangesSlot(current) {
		key := slotKey(next.Fecha, next.Hora)
		if owner, taken := r.slots[key]; taken && owner != id {
			return nil, ErrSlotTaken
		}
		delete(r.slots, slotKey(current.Fecha, current.Hora))
		r.slots[key] = id
	}
	r.reservations[id] = next
	copied := *next
	return &copied, nil
}

// Remove deletes a reservation, reporting whether it existed.
func (r *InMemoryRepository) Remove(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.reservations[id]
	if !ok {
		return false, nil
	}
	delete(r.reservations, id)
	delete(r.slots, slotKey(res.Fecha, res.Hora))
	return true, nil
}

// IsBooked reports whether a reservation holds the slot.
func (r *InMemoryRepository) IsBooked(ctx context.Context, fecha, hora string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.slots[slotKey(fecha, hora)]
	return taken, nil
}
