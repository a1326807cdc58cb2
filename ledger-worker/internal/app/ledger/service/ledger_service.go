package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prestado/ledger-worker/internal/app/ledger/entity"
	"prestado/ledger-worker/internal/app/ledger/repository"
	"prestado/pkg/logger"
	"prestado/pkg/metrics"

	"github.com/google/uuid"
)

// ErrInvalidEvent событие нельзя записать: повторная доставка не поможет
var ErrInvalidEvent = errors.New("invalid loan event")

var ErrLoanIDRequired = errors.New("loan id is required")

var knownEventTypes = map[string]bool{
	entity.EventLoanRequested:   true,
	entity.EventLoanStarted:     true,
	entity.EventLoanCompleted:   true,
	entity.EventReviewSubmitted: true,
}

// LedgerService записывает события займов в журнал ровно один раз
type LedgerService struct {
	repo repository.LedgerRepository
	now  func() time.Time
}

// NewLedgerService создает сервис журнала
func NewLedgerService(repo repository.LedgerRepository) *LedgerService {
	return &LedgerService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// RecordEvent проверяет событие и записывает его в журнал. Дубликат не ошибка.
func (s *LedgerService) RecordEvent(ctx context.Context, event *entity.LoanEvent) error {
	start := time.Now()

	entry, err := s.toEntry(event)
	if err != nil {
		metrics.RecordLedgerEvent("invalid", time.Since(start))
		return err
	}

	inserted, err := s.repo.Record(ctx, entry)
	if err != nil {
		metrics.RecordLedgerEvent("failed", time.Since(start))
		return err
	}

	if !inserted {
		metrics.RecordLedgerEvent("duplicate", time.Since(start))
		logger.Debug().
			Str("event_id", event.EventID).
			Str("loan_id", event.LoanID).
			Msg("Duplicate loan event skipped")
		return nil
	}

	metrics.RecordLedgerEvent("success", time.Since(start))
	logger.Info().
		Str("event_id", event.EventID).
		Str("event_type", event.EventType).
		Str("loan_id", event.LoanID).
		Bool("degraded", event.Degraded).
		Msg("Loan event recorded")

	return nil
}

// GetHistory возвращает историю займа
func (s *LedgerService) GetHistory(ctx context.Context, loanID string) ([]entity.LedgerEntry, error) {
	if loanID == "" {
		return nil, ErrLoanIDRequired
	}
	return s.repo.ListByLoanID(ctx, loanID)
}

func (s *LedgerService) toEntry(event *entity.LoanEvent) (*entity.LedgerEntry, error) {
	eventID, err := uuid.Parse(event.EventID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad event id %q", ErrInvalidEvent, event.EventID)
	}
	if !knownEventTypes[event.EventType] {
		return nil, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, event.EventType)
	}
	if event.LoanID == "" || event.ItemID == "" {
		return nil, fmt.Errorf("%w: missing loan or item id", ErrInvalidEvent)
	}

	recordedAt := s.now()
	occurredAt := event.Timestamp.UTC()
	if event.Timestamp.IsZero() {
		occurredAt = recordedAt
	}

	return &entity.LedgerEntry{
		EventID:    eventID,
		EventType:  event.EventType,
		LoanID:     event.LoanID,
		ItemID:     event.ItemID,
		BorrowerID: event.BorrowerID,
		LenderID:   event.LenderID,
		Status:     event.Status,
		Degraded:   event.Degraded,
		Rating:     event.Rating,
		OccurredAt: occurredAt,
		RecordedAt: recordedAt,
	}, nil
}
