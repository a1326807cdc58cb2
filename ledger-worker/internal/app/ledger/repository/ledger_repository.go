package repository

import (
	"context"
	"fmt"

	"prestado/ledger-worker/internal/app/ledger/entity"
	"prestado/pkg/metrics"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	serviceName = "ledger-worker"
	ledgerTable = "loan_ledger"
)

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository создает репозиторий журнала событий займов
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

// Record вставляет запись один раз. false означает, что событие уже записано.
func (r *ledgerRepository) Record(ctx context.Context, entry *entity.LedgerEntry) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, ledgerTable)
	defer timer.ObserveDuration()

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(entry)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return false, fmt.Errorf("failed to record ledger entry: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// ListByLoanID возвращает историю займа по времени события
func (r *ledgerRepository) ListByLoanID(ctx context.Context, loanID string) ([]entity.LedgerEntry, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, ledgerTable)
	defer timer.ObserveDuration()

	var entries []entity.LedgerEntry
	result := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("occurred_at ASC").
		Find(&entries)

	if result.Error != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to list ledger entries: %w", result.Error)
	}

	return entries, nil
}
