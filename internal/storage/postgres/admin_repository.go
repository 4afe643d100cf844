package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateEvent(ctx context.Context, event domain.Event) error {
	const stmt = `
INSERT INTO events (id, name, starts_at, created_at)
VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, stmt, event.ID, event.Name, event.StartsAt, event.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	const query = `
SELECT id, name, starts_at, created_at
FROM events
ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(&event.ID, &event.Name, &event.StartsAt, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate events: %w", rows.Err())
	}
	return events, nil
}

func (r *AdminRepository) CreateTicketType(ctx context.Context, tt domain.TicketType) error {
	const stmt = `
INSERT INTO ticket_types (id, event_id, name, quantity, sale_start, sale_end, currency, price_cents, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.pool.Exec(ctx, stmt,
		tt.ID, tt.EventID, tt.Name, tt.Quantity, tt.SaleStart, tt.SaleEnd, tt.Currency, tt.PriceCents, tt.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("create ticket type: %w", err)
	}
	return nil
}

func (r *AdminRepository) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, eventID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return nil, domain.ErrEventNotFound
	}
	return listTicketTypesByEvent(ctx, r.pool, eventID)
}

func listTicketTypesByEvent(ctx context.Context, pool *pgxpool.Pool, eventID string) ([]domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, quantity, sale_start, sale_end, currency, price_cents, created_at
FROM ticket_types
WHERE event_id = $1
ORDER BY created_at ASC`

	rows, err := pool.Query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var types []domain.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		types = append(types, tt)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate ticket types: %w", rows.Err())
	}
	return types, nil
}
