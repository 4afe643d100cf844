package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/babblebey/events-ting-sub003/internal/clock"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetTicketTypeForUpdate(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	CountRegistrations(ctx context.Context, ticketTypeID string) (int, error)
	CreateRegistration(ctx context.Context, reg domain.Registration) error
	DeleteRegistration(ctx context.Context, registrationID string) error
}

// Notifier receives fire-and-forget confirmation sends. Implementations
// must never fail the reservation; errors stay inside the notifier.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, reg domain.Registration, ticketType domain.TicketType)
}

// ReservationService issues registrations against ticket-type inventory.
// All writes go through the lock-recompute-insert transaction; oversell is
// structurally impossible, not merely unlikely.
type ReservationService struct {
	repo     ReservationRepository
	notifier Notifier
	clock    clock.Clock
	logger   *zap.Logger
}

func NewReservationService(repo ReservationRepository, notifier Notifier, clk clock.Clock, logger *zap.Logger) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		repo:     repo,
		notifier: notifier,
		clock:    clk,
		logger:   logger,
	}
}

type ReserveInput struct {
	TicketTypeID string
	Email        string
	Name         string
	Attributes   domain.Attributes

	// BypassAvailability is the organizer manual-add override: quantity
	// and sale-window checks are skipped, the row lock is not.
	BypassAvailability bool

	// SuppressNotification stops the post-commit confirmation send; bulk
	// import sets it when the organizer opts out of notifications.
	SuppressNotification bool
}

// Reserve issues exactly one registration for one ticket type.
//
// The ticket-type row is locked exclusively for the duration of the
// transaction, sold counts are recomputed while holding the lock, and the
// registration row is inserted before commit. Concurrent callers for the
// same ticket type serialize on the row lock; a caller that cannot acquire
// it within the bounded wait gets domain.ErrBusy and may retry.
func (s *ReservationService) Reserve(ctx context.Context, in ReserveInput) (domain.Registration, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return domain.Registration{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Registration{}, domain.ErrNameRequired
	}
	if len(name) < minNameLen || len(name) > maxNameLen {
		return domain.Registration{}, domain.ErrNameInvalid
	}

	attrs := make(domain.Attributes, len(in.Attributes))
	for k, v := range in.Attributes {
		attrs[k] = v
	}

	now := s.clock.Now()
	var (
		reg        domain.Registration
		ticketType domain.TicketType
	)

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		tt, err := s.repo.GetTicketTypeForUpdate(txCtx, in.TicketTypeID)
		if err != nil {
			return err
		}
		ticketType = tt

		sold, err := s.repo.CountRegistrations(txCtx, tt.ID)
		if err != nil {
			return err
		}

		if !in.BypassAvailability {
			if tt.Quantity-sold <= 0 {
				return domain.ErrSoldOut
			}
			if tt.SaleStart != nil && now.Before(*tt.SaleStart) {
				return domain.ErrSaleNotStarted
			}
			if tt.SaleEnd != nil && !now.Before(*tt.SaleEnd) {
				return domain.ErrSaleEnded
			}
		}

		reg = domain.Registration{
			ID:            newID(),
			EventID:       tt.EventID,
			TicketTypeID:  tt.ID,
			Email:         email,
			Name:          name,
			Code:          newRegistrationCode(),
			Attributes:    attrs,
			EmailStatus:   domain.EmailStatusActive,
			PaymentStatus: domain.PaymentStatusFree,
			CreatedAt:     now,
		}
		return s.repo.CreateRegistration(txCtx, reg)
	})
	if err != nil {
		return domain.Registration{}, err
	}

	s.logger.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("ticket_type_id", reg.TicketTypeID),
		zap.String("event_id", reg.EventID),
	)

	if s.notifier != nil && !in.SuppressNotification {
		// Outside the lock and outside the transaction; a failed send
		// never rolls back or retries the reservation.
		go s.notifier.RegistrationConfirmed(context.WithoutCancel(ctx), reg, ticketType)
	}

	return reg, nil
}

// Cancel hard-deletes a registration, freeing its inventory unit. No row
// lock is needed: only incrementing the sold count requires coordination.
// The delete still runs in a transaction so readers never observe a
// half-applied state.
func (s *ReservationService) Cancel(ctx context.Context, registrationID string) error {
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteRegistration(txCtx, registrationID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("registration cancelled", zap.String("registration_id", registrationID))
	return nil
}
