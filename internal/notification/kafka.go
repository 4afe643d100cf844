// Package notification implements the confirmation-send collaborators.
// Sends are fire-and-forget: a failure is logged and never surfaces to the
// reservation path.
package notification

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// confirmationMessage is the payload consumed by the email-delivery worker.
type confirmationMessage struct {
	RegistrationID string            `json:"registration_id"`
	EventID        string            `json:"event_id"`
	TicketTypeID   string            `json:"ticket_type_id"`
	TicketTypeName string            `json:"ticket_type_name,omitempty"`
	Email          string            `json:"email"`
	Name           string            `json:"name"`
	Code           string            `json:"code"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type KafkaNotifier struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaNotifier(brokers []string, topic string, logger *zap.Logger) *KafkaNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaNotifier{writer: writer, logger: logger}
}

func (n *KafkaNotifier) RegistrationConfirmed(ctx context.Context, reg domain.Registration, tt domain.TicketType) {
	payload, err := json.Marshal(confirmationMessage{
		RegistrationID: reg.ID,
		EventID:        reg.EventID,
		TicketTypeID:   reg.TicketTypeID,
		TicketTypeName: tt.Name,
		Email:          reg.Email,
		Name:           reg.Name,
		Code:           reg.Code,
		Attributes:     reg.Attributes,
		CreatedAt:      reg.CreatedAt,
	})
	if err != nil {
		n.logger.Error("marshal confirmation message", zap.Error(err))
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	err = n.writer.WriteMessages(sendCtx, kafka.Message{
		Key:   []byte(reg.EventID),
		Value: payload,
	})
	if err != nil {
		n.logger.Error("failed to queue confirmation",
			zap.String("registration_id", reg.ID),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("confirmation queued", zap.String("registration_id", reg.ID))
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
