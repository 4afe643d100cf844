package app

import (
	"context"
	"time"

	"github.com/babblebey/events-ting-sub003/internal/clock"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

type AdminRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) error
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, tt domain.TicketType) error
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
}

type AdminService struct {
	repo   AdminRepository
	ledger *InventoryLedger
	clock  clock.Clock
}

func NewAdminService(repo AdminRepository, ledger *InventoryLedger, clk clock.Clock) *AdminService {
	return &AdminService{
		repo:   repo,
		ledger: ledger,
		clock:  clk,
	}
}

type CreateEventInput struct {
	Name     string
	StartsAt *time.Time
}

func (s *AdminService) CreateEvent(ctx context.Context, in CreateEventInput) (domain.Event, error) {
	if in.Name == "" {
		return domain.Event{}, domain.ErrEventNameRequired
	}
	now := s.clock.Now()
	startsAt := now
	if in.StartsAt != nil {
		startsAt = *in.StartsAt
	}

	event := domain.Event{
		ID:        newID(),
		Name:      in.Name,
		StartsAt:  startsAt,
		CreatedAt: now,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return domain.Event{}, err
	}
	return event, nil
}

func (s *AdminService) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListEvents(ctx)
}

type CreateTicketTypeInput struct {
	EventID   string
	Name      string
	Quantity  int
	SaleStart *time.Time
	SaleEnd   *time.Time
	Currency  string
}

func (s *AdminService) CreateTicketType(ctx context.Context, in CreateTicketTypeInput) (domain.TicketType, error) {
	if in.EventID == "" {
		return domain.TicketType{}, domain.ErrInvalidID
	}
	if in.Name == "" {
		return domain.TicketType{}, domain.ErrTicketNameRequired
	}
	if in.Quantity <= 0 {
		return domain.TicketType{}, domain.ErrInvalidQuantity
	}
	if in.SaleStart != nil && in.SaleEnd != nil && !in.SaleStart.Before(*in.SaleEnd) {
		return domain.TicketType{}, domain.ErrInvalidSaleWindow
	}
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	tt := domain.TicketType{
		ID:        newID(),
		EventID:   in.EventID,
		Name:      in.Name,
		Quantity:  in.Quantity,
		SaleStart: in.SaleStart,
		SaleEnd:   in.SaleEnd,
		Currency:  currency,
		// All prices are zero while payment processing is deferred.
		PriceCents: 0,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.CreateTicketType(ctx, tt); err != nil {
		return domain.TicketType{}, err
	}
	return tt, nil
}

// TicketTypeSummary pairs a ticket type with its live inventory snapshot.
type TicketTypeSummary struct {
	TicketType domain.TicketType
	Inventory  domain.Inventory
}

func (s *AdminService) ListTicketTypes(ctx context.Context, eventID string) ([]TicketTypeSummary, error) {
	if eventID == "" {
		return nil, domain.ErrInvalidID
	}
	list, err := s.repo.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	summaries := make([]TicketTypeSummary, 0, len(list))
	for _, tt := range list {
		inv, err := s.ledger.Counts(ctx, tt.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, TicketTypeSummary{TicketType: tt, Inventory: inv})
	}
	return summaries, nil
}
