package service

import (
	"context"
	"encoding/json"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/infrastructure"
	"prestado/pkg/logger"

	"github.com/google/uuid"
)

type eventPublisher struct {
	producer infrastructure.MessagePublisher
}

// publish отправляет событие в Kafka с ключом = ID займа.
// Ошибки логируются и не возвращаются: операция уже сохранена.
func (p eventPublisher) publish(ctx context.Context, event entity.LoanEvent) {
	if p.producer == nil {
		return
	}

	event.EventID = uuid.NewString()
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("event_type", event.EventType).Msg("Failed to marshal lending event")
		return
	}

	if err := p.producer.PublishMessage(ctx, event.LoanID, data); err != nil {
		logger.Warn().
			Err(err).
			Str("event_type", event.EventType).
			Str("loan_id", event.LoanID).
			Msg("Failed to publish lending event")
	}
}

func loanEvent(eventType string, loan *entity.Loan, at time.Time) entity.LoanEvent {
	return entity.LoanEvent{
		EventType:  eventType,
		LoanID:     loan.ID,
		ItemID:     loan.ItemID,
		BorrowerID: loan.BorrowerID,
		LenderID:   loan.LenderID,
		Status:     loan.Status,
		Timestamp:  at,
	}
}
