package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/repository"
	"prestado/pkg/logger"
	"prestado/pkg/metrics"
)

// ReconcileService сверяет доступность вещей с активными займами и исправляет
// остатки частично выполненных операций (деградированное завершение займа,
// неудачная компенсация при старте).
type ReconcileService struct {
	loanRepo repository.LoanRepository
	itemRepo repository.ItemRepository
	locker   repository.ItemLocker
	now      func() time.Time
}

// NewReconcileService создает сервис сверки доступности вещей
func NewReconcileService(
	loanRepo repository.LoanRepository,
	itemRepo repository.ItemRepository,
	locker repository.ItemLocker,
) *ReconcileService {
	return &ReconcileService{
		loanRepo: loanRepo,
		itemRepo: itemRepo,
		locker:   locker,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Reconcile выполняет один проход сверки:
//   - активный займ, а вещь доступна: вещь помечается недоступной;
//   - вещь недоступна без активного займа: вещь возвращается в доступные;
//   - несколько активных займов на одну вещь: только отчёт.
//
// Каждое исправление делается под блокировкой вещи с повторной проверкой.
// Занятые вещи пропускаются до следующего прохода.
func (s *ReconcileService) Reconcile(ctx context.Context) (*entity.ReconcileReport, error) {
	report := &entity.ReconcileReport{StartedAt: s.now(), Anomalies: []entity.Anomaly{}}

	active, err := s.loanRepo.ListActive(ctx)
	if err != nil {
		metrics.RecordReconcileRun("failed")
		return nil, persistenceError("list active loans", err)
	}
	report.ActiveLoans = len(active)

	loansByItem := make(map[string][]string)
	for _, loan := range active {
		loansByItem[loan.ItemID] = append(loansByItem[loan.ItemID], loan.ID)
	}

	itemIDs := make([]string, 0, len(loansByItem))
	for itemID := range loansByItem {
		itemIDs = append(itemIDs, itemID)
	}
	sort.Strings(itemIDs)

	for _, itemID := range itemIDs {
		loanIDs := loansByItem[itemID]
		if len(loanIDs) > 1 {
			report.Anomalies = append(report.Anomalies, entity.Anomaly{
				Kind:    entity.AnomalyMultipleActiveLoans,
				ItemID:  itemID,
				LoanIDs: loanIDs,
			})
			metrics.RecordReconcileAnomaly(entity.AnomalyMultipleActiveLoans, "reported")
			logger.Error().Str("item_id", itemID).Strs("loan_ids", loanIDs).Msg("Item has more than one active loan")
		}

		item, err := s.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			logger.Warn().Err(err).Str("item_id", itemID).Msg("Reconcile: failed to load item of active loan")
			continue
		}
		if !item.Availability {
			continue
		}

		anomaly := entity.Anomaly{Kind: entity.AnomalyActiveLoanItemAvailable, ItemID: itemID, LoanIDs: loanIDs}
		anomaly.Repaired = s.repair(ctx, anomaly, false)
		report.Anomalies = append(report.Anomalies, anomaly)
	}

	unavailable, err := s.itemRepo.ListUnavailable(ctx)
	if err != nil {
		metrics.RecordReconcileRun("failed")
		return nil, persistenceError("list unavailable items", err)
	}

	for _, item := range unavailable {
		if _, ok := loansByItem[item.ID]; ok {
			continue
		}

		anomaly := entity.Anomaly{Kind: entity.AnomalyItemUnavailableNoLoan, ItemID: item.ID}
		anomaly.Repaired = s.repair(ctx, anomaly, true)
		report.Anomalies = append(report.Anomalies, anomaly)
	}

	report.FinishedAt = s.now()
	metrics.RecordReconcileRun("success")

	logger.Info().
		Int("active_loans", report.ActiveLoans).
		Int("anomalies", len(report.Anomalies)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Reconciliation finished")

	return report, nil
}

// repair выставляет доступность вещи, если после захвата блокировки
// расхождение всё ещё есть
func (s *ReconcileService) repair(ctx context.Context, anomaly entity.Anomaly, available bool) bool {
	log := logger.With().Str("item_id", anomaly.ItemID).Str("kind", anomaly.Kind).Logger()

	token, err := s.locker.Acquire(ctx, anomaly.ItemID)
	if err != nil {
		if !errors.Is(err, repository.ErrItemLocked) {
			log.Warn().Err(err).Msg("Reconcile: failed to lock item")
		}
		metrics.RecordReconcileAnomaly(anomaly.Kind, "skipped")
		return false
	}
	defer func() {
		if err := s.locker.Release(ctx, anomaly.ItemID, token); err != nil {
			log.Warn().Err(err).Msg("Reconcile: failed to release item lock")
		}
	}()

	// Займ мог начаться или завершиться между выборкой и захватом блокировки
	hasActive, err := s.loanRepo.HasActiveForItem(ctx, anomaly.ItemID)
	if err != nil {
		log.Warn().Err(err).Msg("Reconcile: failed to recheck active loans")
		metrics.RecordReconcileAnomaly(anomaly.Kind, "failed")
		return false
	}
	if hasActive == available {
		metrics.RecordReconcileAnomaly(anomaly.Kind, "resolved")
		return false
	}

	err = s.itemRepo.SetAvailability(ctx, anomaly.ItemID, available)
	if err != nil && !errors.Is(err, repository.ErrAvailabilityConflict) {
		log.Error().Err(err).Msg("Reconcile: failed to repair item availability")
		metrics.RecordReconcileAnomaly(anomaly.Kind, "failed")
		return false
	}

	log.Warn().Bool("availability", available).Msg("Reconcile: item availability repaired")
	metrics.RecordReconcileAnomaly(anomaly.Kind, "repaired")
	return true
}
