package app

import (
	"context"
	"time"

	"github.com/babblebey/events-ting-sub003/internal/clock"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

type LedgerRepository interface {
	GetTicketType(ctx context.Context, ticketTypeID string) (domain.TicketType, error)
	CountRegistrations(ctx context.Context, ticketTypeID string) (int, error)
}

// InventoryLedger answers "how many units remain right now". Counts are
// re-derived from the registration table on every call, never cached
// across a reservation decision.
type InventoryLedger struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewInventoryLedger(repo LedgerRepository, clk clock.Clock) *InventoryLedger {
	return &InventoryLedger{repo: repo, clock: clk}
}

func (l *InventoryLedger) Counts(ctx context.Context, ticketTypeID string) (domain.Inventory, error) {
	tt, err := l.repo.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return domain.Inventory{}, err
	}
	sold, err := l.repo.CountRegistrations(ctx, ticketTypeID)
	if err != nil {
		return domain.Inventory{}, err
	}
	inv := domain.Inventory{
		Quantity:  tt.Quantity,
		SoldCount: sold,
		Available: tt.Quantity - sold,
	}
	inv.OnSale = inv.Available > 0 && withinSaleWindow(tt, l.clock.Now())
	return inv, nil
}

// withinSaleWindow treats an absent bound as unbounded and the upper bound
// as inclusive: a sale whose end equals now has ended.
func withinSaleWindow(tt domain.TicketType, now time.Time) bool {
	if tt.SaleStart != nil && now.Before(*tt.SaleStart) {
		return false
	}
	if tt.SaleEnd != nil && !now.Before(*tt.SaleEnd) {
		return false
	}
	return true
}
