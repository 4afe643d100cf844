package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// lockWait bounds how long a reservation blocks on the ticket-type row
// before failing with domain.ErrBusy. SET LOCAL scopes it to the tx.
const lockWait = "3s"

type RegistrationRepository struct {
	pool *pgxpool.Pool
}

func NewRegistrationRepository(pool *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: pool}
}

func (r *RegistrationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// GetTicketTypeForUpdate acquires an exclusive lock on the ticket-type row
// for the duration of the surrounding transaction. Must be called inside
// WithTx.
func (r *RegistrationRepository) GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	if _, err := r.exec(ctx, fmt.Sprintf(`SET LOCAL lock_timeout = '%s'`, lockWait)); err != nil {
		return domain.TicketType{}, fmt.Errorf("set lock timeout: %w", err)
	}

	const query = `
SELECT id, event_id, name, quantity, sale_start, sale_end, currency, price_cents, created_at
FROM ticket_types
WHERE id = $1
FOR UPDATE`

	tt, err := scanTicketType(r.queryRow(ctx, query, ticketTypeID))
	if err != nil {
		if isLockTimeout(err) {
			return domain.TicketType{}, domain.ErrBusy
		}
		if isInvalidUUID(err) {
			return domain.TicketType{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("lock ticket type: %w", err)
	}
	return tt, nil
}

func (r *RegistrationRepository) GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error) {
	const query = `
SELECT id, event_id, name, quantity, sale_start, sale_end, currency, price_cents, created_at
FROM ticket_types
WHERE id = $1`

	tt, err := scanTicketType(r.queryRow(ctx, query, ticketTypeID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.TicketType{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.TicketType{}, domain.ErrTicketTypeNotFound
		}
		return domain.TicketType{}, fmt.Errorf("get ticket type: %w", err)
	}
	return tt, nil
}

func (r *RegistrationRepository) CountRegistrations(ctx context.Context, ticketTypeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE ticket_type_id = $1`

	var count int
	if err := r.queryRow(ctx, query, ticketTypeID).Scan(&count); err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	const stmt = `
INSERT INTO registrations (id, event_id, ticket_type_id, email, name, code, attributes, email_status, payment_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.exec(ctx, stmt,
		reg.ID,
		reg.EventID,
		reg.TicketTypeID,
		reg.Email,
		reg.Name,
		reg.Code,
		reg.Attributes,
		reg.EmailStatus,
		reg.PaymentStatus,
		reg.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrTicketTypeNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("registration code collision: %w", err)
		}
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) DeleteRegistration(ctx context.Context, registrationID string) error {
	const stmt = `DELETE FROM registrations WHERE id = $1`

	tag, err := r.exec(ctx, stmt, registrationID)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRegistrationNotFound
	}
	return nil
}

func (r *RegistrationRepository) GetRegistration(ctx context.Context, registrationID string) (domain.Registration, error) {
	const query = `
SELECT id, event_id, ticket_type_id, email, name, code, attributes, email_status, payment_status, created_at
FROM registrations
WHERE id = $1`

	var reg domain.Registration
	var emailStatus, paymentStatus string
	err := r.queryRow(ctx, query, registrationID).Scan(
		&reg.ID,
		&reg.EventID,
		&reg.TicketTypeID,
		&reg.Email,
		&reg.Name,
		&reg.Code,
		&reg.Attributes,
		&emailStatus,
		&paymentStatus,
		&reg.CreatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Registration{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Registration{}, domain.ErrRegistrationNotFound
		}
		return domain.Registration{}, fmt.Errorf("get registration: %w", err)
	}
	reg.EmailStatus = domain.EmailStatus(emailStatus)
	reg.PaymentStatus = domain.PaymentStatus(paymentStatus)
	return reg, nil
}

func (r *RegistrationRepository) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	const query = `SELECT id, name, starts_at, created_at FROM events WHERE id = $1`

	var e domain.Event
	err := r.queryRow(ctx, query, eventID).Scan(&e.ID, &e.Name, &e.StartsAt, &e.CreatedAt)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if err == pgx.ErrNoRows {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *RegistrationRepository) ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error) {
	return listTicketTypesByEvent(ctx, r.pool, eventID)
}

// FindRegisteredEmails performs the batched phase-2 existence check: one
// query for the whole candidate set, keyed by normalized email.
func (r *RegistrationRepository) FindRegisteredEmails(ctx context.Context, eventID string, emails []string) (map[string]bool, error) {
	found := make(map[string]bool, len(emails))
	if len(emails) == 0 {
		return found, nil
	}

	const query = `
SELECT DISTINCT email
FROM registrations
WHERE event_id = $1 AND email = ANY($2)`

	rows, err := r.query(ctx, query, eventID, emails)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("find registered emails: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		found[email] = true
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate emails: %w", rows.Err())
	}
	return found, nil
}

func scanTicketType(row pgx.Row) (domain.TicketType, error) {
	var tt domain.TicketType
	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Quantity,
		&tt.SaleStart,
		&tt.SaleEnd,
		&tt.Currency,
		&tt.PriceCents,
		&tt.CreatedAt,
	)
	return tt, err
}

func (r *RegistrationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *RegistrationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *RegistrationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
