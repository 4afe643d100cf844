package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// NopNotifier is used when no broker is configured (local runs, tests).
type NopNotifier struct {
	logger *zap.Logger
}

func NewNopNotifier(logger *zap.Logger) *NopNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NopNotifier{logger: logger}
}

func (n *NopNotifier) RegistrationConfirmed(_ context.Context, reg domain.Registration, _ domain.TicketType) {
	n.logger.Debug("confirmation skipped (notifications disabled)",
		zap.String("registration_id", reg.ID),
	)
}
