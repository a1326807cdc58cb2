package service

import (
	"context"
	"errors"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/infrastructure"
	"prestado/lending-service/internal/app/lending/repository"
	"prestado/pkg/logger"
	"prestado/pkg/metrics"
)

const degradedEndLoanWarning = "loan completed, but item availability could not be restored"

// LoanService управляет жизненным циклом займа: pending → active → completed.
// Каждый переход принимается только из исходного статуса (compare-and-swap в MongoDB).
type LoanService struct {
	loanRepo repository.LoanRepository
	itemRepo repository.ItemRepository
	tx       repository.TxRunner
	locker   repository.ItemLocker
	events   eventPublisher
	now      func() time.Time
}

// NewLoanService создает сервис займов. kafkaProducer может быть nil, тогда события не публикуются.
func NewLoanService(
	loanRepo repository.LoanRepository,
	itemRepo repository.ItemRepository,
	tx repository.TxRunner,
	locker repository.ItemLocker,
	kafkaProducer infrastructure.MessagePublisher,
) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		itemRepo: itemRepo,
		tx:       tx,
		locker:   locker,
		events:   eventPublisher{producer: kafkaProducer},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RequestLoan создает займ в статусе pending. Доступность вещи не проверяется
// и не меняется: вещь занимается только при старте займа.
func (s *LoanService) RequestLoan(ctx context.Context, borrowerID string, req *entity.RequestLoanRequest) (*entity.Loan, error) {
	if err := validateLoanRequest(borrowerID, req); err != nil {
		metrics.RecordLoanTransition(metrics.TransitionRequest, metrics.ResultRejected)
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, persistenceError("get item", err)
	}
	if item.LenderID != req.LenderID {
		metrics.RecordLoanTransition(metrics.TransitionRequest, metrics.ResultRejected)
		return nil, ErrLenderMismatch
	}

	itemName := req.ItemName
	if itemName == "" {
		itemName = item.Name
	}

	now := s.now()
	loan := &entity.Loan{
		ItemID:           req.ItemID,
		BorrowerID:       borrowerID,
		LenderID:         req.LenderID,
		ItemName:         itemName,
		Status:           entity.LoanStatusPending,
		PlannedStartDate: req.PlannedStartDate.UTC(),
		PlannedEndDate:   req.PlannedEndDate.UTC(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.loanRepo.Create(ctx, loan); err != nil {
		metrics.RecordLoanTransition(metrics.TransitionRequest, metrics.ResultFailed)
		return nil, persistenceError("create loan", err)
	}

	metrics.RecordLoanTransition(metrics.TransitionRequest, metrics.ResultOK)
	s.events.publish(ctx, loanEvent(entity.EventLoanRequested, loan, now))

	return loan, nil
}

// StartLoan переводит займ в active и помечает вещь недоступной.
// Обе записи выполняются под блокировкой вещи как одна единица работы:
// в транзакции MongoDB, либо последовательно с компенсацией вещи,
// если статус займа изменился конкурентно.
func (s *LoanService) StartLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error) {
	loan, err := s.getParticipantLoan(ctx, loanID, actorID)
	if err != nil {
		return nil, err
	}

	if !isValidStatusTransition(loan.Status, entity.LoanStatusActive) {
		metrics.RecordLoanTransition(metrics.TransitionStart, metrics.ResultRejected)
		return nil, ErrLoanNotPending
	}

	release, err := s.lockItem(ctx, loan.ItemID)
	if err != nil {
		metrics.RecordLoanTransition(metrics.TransitionStart, metrics.ResultRejected)
		return nil, err
	}
	defer release()

	now := s.now()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.activate(ctx, loan, now)
	})
	if err != nil {
		result := metrics.ResultFailed
		if !errors.Is(err, ErrPersistence) {
			result = metrics.ResultRejected
		}
		metrics.RecordLoanTransition(metrics.TransitionStart, result)
		return nil, err
	}

	loan.Status = entity.LoanStatusActive
	loan.ActualStartDate = &now
	loan.UpdatedAt = now

	metrics.RecordLoanTransition(metrics.TransitionStart, metrics.ResultOK)
	s.events.publish(ctx, loanEvent(entity.EventLoanStarted, loan, now))

	return loan, nil
}

func (s *LoanService) activate(ctx context.Context, loan *entity.Loan, now time.Time) error {
	busy, err := s.loanRepo.HasActiveForItem(ctx, loan.ItemID)
	if err != nil {
		return persistenceError("check active loans", err)
	}
	if busy {
		return ErrItemUnavailable
	}

	if err := s.itemRepo.SetAvailability(ctx, loan.ItemID, false); err != nil {
		switch {
		case errors.Is(err, repository.ErrAvailabilityConflict):
			return ErrItemUnavailable
		case errors.Is(err, repository.ErrItemNotFound):
			return ErrItemNotFound
		default:
			return persistenceError("mark item unavailable", err)
		}
	}

	err = s.loanRepo.TransitionStatus(ctx, loan.ID, entity.LoanStatusPending, entity.LoanStatusActive, now)
	if err == nil {
		return nil
	}

	// В транзакции запись вещи откатит сама MongoDB
	if !s.tx.Transactional() {
		s.compensateItemClaim(ctx, loan)
	}

	switch {
	case errors.Is(err, repository.ErrStatusConflict):
		return ErrLoanNotPending
	case errors.Is(err, repository.ErrLoanNotFound):
		return ErrLoanNotFound
	default:
		return persistenceError("activate loan", err)
	}
}

// compensateItemClaim возвращает вещь в доступные после неудачной смены статуса.
// Если и это не удалось, расхождение исправит сверка.
func (s *LoanService) compensateItemClaim(ctx context.Context, loan *entity.Loan) {
	if err := s.itemRepo.SetAvailability(ctx, loan.ItemID, true); err != nil {
		metrics.RecordDegraded("start_loan_compensation")
		logger.Error().
			Err(err).
			Str("loan_id", loan.ID).
			Str("item_id", loan.ItemID).
			Msg("Failed to restore item availability after rejected loan start")
	}
}

// EndLoan завершает займ и возвращает вещь в доступные.
// Завершение займа - основная запись. Если после неё не удалось обновить вещь,
// займ остаётся completed, а результат помечается как Degraded.
func (s *LoanService) EndLoan(ctx context.Context, loanID, actorID string) (*entity.EndLoanResult, error) {
	if loanID == "" {
		return nil, ErrInvalidLoanData
	}

	loan, err := s.getParticipantLoan(ctx, loanID, actorID)
	if err != nil {
		return nil, err
	}
	if loan.ItemID == "" {
		return nil, ErrInvalidLoanData
	}

	if !isValidStatusTransition(loan.Status, entity.LoanStatusCompleted) {
		metrics.RecordLoanTransition(metrics.TransitionEnd, metrics.ResultRejected)
		return nil, ErrLoanNotActive
	}

	now := s.now()
	err = s.loanRepo.TransitionStatus(ctx, loan.ID, entity.LoanStatusActive, entity.LoanStatusCompleted, now)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			metrics.RecordLoanTransition(metrics.TransitionEnd, metrics.ResultRejected)
			return nil, ErrLoanNotActive
		case errors.Is(err, repository.ErrLoanNotFound):
			return nil, ErrLoanNotFound
		default:
			metrics.RecordLoanTransition(metrics.TransitionEnd, metrics.ResultFailed)
			return nil, persistenceError("complete loan", err)
		}
	}

	loan.Status = entity.LoanStatusCompleted
	loan.ActualEndDate = &now
	loan.UpdatedAt = now

	result := &entity.EndLoanResult{
		Loan: loan,
		ReviewPrompt: &entity.ReviewPrompt{
			LoanID:     loan.ID,
			LenderID:   loan.LenderID,
			ReviewerID: loan.BorrowerID,
			ItemName:   loan.ItemName,
		},
	}

	// Конфликт означает, что вещь уже доступна (например, после сверки)
	err = s.itemRepo.SetAvailability(ctx, loan.ItemID, true)
	if err != nil && !errors.Is(err, repository.ErrAvailabilityConflict) {
		result.Degraded = true
		result.Warning = degradedEndLoanWarning
		metrics.RecordDegraded("end_loan")
		logger.Warn().
			Err(err).
			Str("loan_id", loan.ID).
			Str("item_id", loan.ItemID).
			Msg("Loan completed but item availability was not restored")
	}

	metrics.RecordLoanTransition(metrics.TransitionEnd, metrics.ResultOK)

	event := loanEvent(entity.EventLoanCompleted, loan, now)
	event.Degraded = result.Degraded
	s.events.publish(ctx, event)

	return result, nil
}

// GetLoan возвращает займ участнику (заёмщику или владельцу)
func (s *LoanService) GetLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error) {
	return s.getParticipantLoan(ctx, loanID, actorID)
}

// ListLoansForBorrower возвращает займы заёмщика. Порядок не гарантируется.
func (s *LoanService) ListLoansForBorrower(ctx context.Context, borrowerID string) ([]entity.Loan, error) {
	if borrowerID == "" {
		return nil, ErrMissingIdentity
	}

	loans, err := s.loanRepo.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, persistenceError("list borrower loans", err)
	}
	return loans, nil
}

// ListLoansForLender возвращает займы вещей владельца
func (s *LoanService) ListLoansForLender(ctx context.Context, lenderID string) ([]entity.Loan, error) {
	if lenderID == "" {
		return nil, ErrMissingIdentity
	}

	loans, err := s.loanRepo.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, persistenceError("list lender loans", err)
	}
	return loans, nil
}

func (s *LoanService) getParticipantLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error) {
	if actorID == "" {
		return nil, ErrMissingIdentity
	}

	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, persistenceError("get loan", err)
	}

	if !loan.IsParticipant(actorID) {
		return nil, ErrNotParticipant
	}
	return loan, nil
}

// lockItem захватывает блокировку вещи и возвращает функцию освобождения
func (s *LoanService) lockItem(ctx context.Context, itemID string) (func(), error) {
	token, err := s.locker.Acquire(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemLocked) {
			return nil, ErrItemBusy
		}
		return nil, persistenceError("lock item", err)
	}

	return func() {
		// Блокировку нужно снять даже если запрос уже отменён
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, itemID, token); err != nil {
			logger.Warn().Err(err).Str("item_id", itemID).Msg("Failed to release item lock")
		}
	}, nil
}

func validateLoanRequest(borrowerID string, req *entity.RequestLoanRequest) error {
	if borrowerID == "" {
		return ErrMissingIdentity
	}
	if !req.PlannedStartDate.Before(req.PlannedEndDate) {
		return ErrInvalidPeriod
	}
	if borrowerID == req.LenderID {
		return ErrSelfLoan
	}
	return nil
}

// isValidStatusTransition проверяет допустимость смены статуса займа
func isValidStatusTransition(from, to entity.LoanStatus) bool {
	validTransitions := map[entity.LoanStatus][]entity.LoanStatus{
		entity.LoanStatusPending:   {entity.LoanStatusActive},
		entity.LoanStatusActive:    {entity.LoanStatusCompleted},
		entity.LoanStatusCompleted: {}, // Финальный статус
	}

	for _, status := range validTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}
