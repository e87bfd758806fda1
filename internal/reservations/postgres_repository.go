package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quantumvibe/booking-assistant/internal/schedule"
)

// uniqueViolation is the Postgres error code raised by the unique index
// on (fecha, hora); it is what makes Commit atomic across instances.
const uniqueViolation = "23505"

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores reservations in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo over a pgx pool (or a mock in tests).
func NewPostgresRepository(db db) *PostgresRepository {
	if db == nil {
		panic("reservations: pgx pool required")
	}
	return &PostgresRepository{db: db}
}

// Commit inserts a new row. The unique index on (fecha, hora) turns a
// concurrent double-booking into ErrSlotTaken instead of a second row.
func (r *PostgresRepository) Commit(ctx context.Context, req *CreateReservationRequest) (*Reservation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO reservations (id, fecha, hora, nombre_cliente, telefono, email, programa)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING creada_en
	`
	var creadaEn time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Fecha,
		req.Hora,
		req.NombreCliente,
		req.Telefono,
		req.Email,
		req.Programa,
	).Scan(&creadaEn); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("reservations: insert failed: %w", err)
	}

	return &Reservation{
		ID:            id.String(),
		Fecha:         req.Fecha,
		Hora:          req.Hora,
		NombreCliente: req.NombreCliente,
		Telefono:      req.Telefono,
		Email:         req.Email,
		Programa:      req.Programa,
		CreadaEn:      creadaEn,
	}, nil
}

// GetByID fetches a single reservation.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	query := `
		SELECT id, fecha, hora, nombre_cliente, telefono, email, programa, creada_en
		FROM reservations
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// List returns all reservations ordered chronologically.
func (r *PostgresRepository) List(ctx context.Context) ([]*Reservation, error) {
	query := `
		SELECT id, fecha, hora, nombre_cliente, telefono, email, programa, creada_en
		FROM reservations
		ORDER BY fecha, hora
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reservations: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Reservation
	for rows.Next() {
		var (
			res   Reservation
			fecha time.Time
		)
		if err := rows.Scan(
			&res.ID,
			&fecha,
			&res.Hora,
			&res.NombreCliente,
			&res.Telefono,
			&res.Email,
			&res.Programa,
			&res.CreadaEn,
		); err != nil {
			return nil, fmt.Errorf("reservations: scan failed: %w", err)
		}
		res.Fecha = schedule.FormatDate(fecha)
		out = append(out, &res)
	}
	return out, rows.Err()
}

// Update applies a partial update; moving to an occupied slot surfaces
// ErrSlotTaken through the same unique index as Commit.
func (r *PostgresRepository) Update(ctx context.Context, id string, upd *UpdateReservationRequest) (*Reservation, error) {
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := upd.Apply(current)

	query := `
		UPDATE reservations
		SET fecha = $2, hora = $3, nombre_cliente = $4, telefono = $5, email = $6, programa = $7
		WHERE id = $1
	`
	if _, err := r.db.Exec(ctx, query,
		id,
		next.Fecha,
		next.Hora,
		next.NombreCliente,
		next.Telefono,
		next.Email,
		next.Programa,
	); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlotTaken
		}
		return nil, fmt.Errorf("reservations: update failed: %w", err)
	}
	return next, nil
}

// Remove deletes a reservation, reporting whether a row existed.
func (r *PostgresRepository) Remove(ctx context.Context, id string) (bool, error) {
	ct, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("reservations: delete failed: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// IsBooked reports whether any reservation holds the slot.
func (r *PostgresRepository) IsBooked(ctx context.Context, fecha, hora string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM reservations WHERE fecha = $1 AND hora = $2)`
	if err := r.db.QueryRow(ctx, query, fecha, hora).Scan(&exists); err != nil {
		return false, fmt.Errorf("reservations: availability check failed: %w", err)
	}
	return exists, nil
}

// scanOne reads a full row. The fecha column is DATE on the wire, so it is
// scanned as time.Time and rendered back to the ISO string the model carries.
func (r *PostgresRepository) scanOne(row pgx.Row) (*Reservation, error) {
	var (
		res   Reservation
		fecha time.Time
	)
	if err := row.Scan(
		&res.ID,
		&fecha,
		&res.Hora,
		&res.NombreCliente,
		&res.Telefono,
		&res.Email,
		&res.Programa,
		&res.CreadaEn,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("reservations: select failed: %w", err)
	}
	res.Fecha = schedule.FormatDate(fecha)
	return &res, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
