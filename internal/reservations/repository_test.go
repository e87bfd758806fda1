package reservations

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func validRequest() *CreateReservationRequest {
	return &CreateReservationRequest{
		Fecha:         "2026-07-21",
		Hora:          "10:00",
		NombreCliente: "Jane Doe",
		Telefono:      "+56947295678",
		Email:         "jane@example.com",
	}
}

func TestInMemoryCommitRoundTrip(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Commit(ctx, validRequest())
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreadaEn.IsZero() {
		t.Fatal("expected creation timestamp")
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Fecha != created.Fecha || got.Hora != created.Hora ||
		got.NombreCliente != created.NombreCliente ||
		got.Telefono != created.Telefono || got.Email != created.Email {
		t.Fatalf("round-trip mismatch: %+v vs %+v", got, created)
	}
}

func TestInMemoryCommitRejectsMissingFields(t *testing.T) {
	repo := NewInMemoryRepository()
	req := validRequest()
	req.Telefono = ""
	if _, err := repo.Commit(context.Background(), req); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
}

func TestInMemoryCommitConflict(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	if _, err := repo.Commit(ctx, validRequest()); err != nil {
		t.Fatalf("first commit failed: %v", err)
	}
	second := validRequest()
	second.NombreCliente = "Pedro Soto"
	if _, err := repo.Commit(ctx, second); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestInMemoryCommitConcurrentSameSlot(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Commit(ctx, validRequest())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("expected exactly one successful commit, got %d", successes)
	}
	if conflicts != attempts-1 {
		t.Fatalf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestInMemoryUpdateMovesSlot(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Commit(ctx, validRequest())
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	newHora := "12:00"
	updated, err := repo.Update(ctx, created.ID, &UpdateReservationRequest{Hora: &newHora})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Hora != "12:00" {
		t.Fatalf("expected moved hora, got %s", updated.Hora)
	}

	// Old slot is free again, new slot is taken.
	if taken, _ := repo.IsBooked(ctx, "2026-07-21", "10:00"); taken {
		t.Fatal("old slot should be released")
	}
	if taken, _ := repo.IsBooked(ctx, "2026-07-21", "12:00"); !taken {
		t.Fatal("new slot should be occupied")
	}
}

func TestInMemoryUpdateOwnSlotNotConflict(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Commit(ctx, validRequest())
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	// Changing only the name keeps the same slot; must not self-conflict.
	name := "Jane Smith"
	sameFecha := created.Fecha
	updated, err := repo.Update(ctx, created.ID, &UpdateReservationRequest{
		Fecha:         &sameFecha,
		NombreCliente: &name,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.NombreCliente != "Jane Smith" {
		t.Fatalf("expected updated name, got %s", updated.NombreCliente)
	}
}

func TestInMemoryUpdateConflictsWithOtherReservation(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	first, err := repo.Commit(ctx, validRequest())
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}
	second := validRequest()
	second.Hora = "12:00"
	other, err := repo.Commit(ctx, second)
	if err != nil {
		t.Fatalf("second commit failed: %v", err)
	}

	hora := first.Hora
	if _, err := repo.Update(ctx, other.ID, &UpdateReservationRequest{Hora: &hora}); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestInMemoryUpdateNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	hora := "12:00"
	if _, err := repo.Update(context.Background(), "missing", &UpdateReservationRequest{Hora: &hora}); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestInMemoryRemoveFreesSlot(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Commit(ctx, validRequest())
	if err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	removed, err := repo.Remove(ctx, created.ID)
	if err != nil || !removed {
		t.Fatalf("Remove = (%v, %v)", removed, err)
	}
	if removed, _ := repo.Remove(ctx, created.ID); removed {
		t.Fatal("second remove should report missing")
	}
	if taken, _ := repo.IsBooked(ctx, created.Fecha, created.Hora); taken {
		t.Fatal("slot should be free after removal")
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestInMemoryListOrdered(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, slot := range []struct{ fecha, hora string }{
		{"2026-07-22", "10:00"},
		{"2026-07-21", "17:00"},
		{"2026-07-21", "10:00"},
	} {
		req := validRequest()
		req.Fecha = slot.fecha
		req.Hora = slot.hora
		if _, err := repo.Commit(ctx, req); err != nil {
			t.Fatalf("commit %s %s failed: %v", slot.fecha, slot.hora, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 reservations, got %d", len(list))
	}
	want := []string{"2026-07-21 10:00", "2026-07-21 17:00", "2026-07-22 10:00"}
	for i, res := range list {
		if got := res.Fecha + " " + res.Hora; got != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, got, want[i])
		}
	}
}
