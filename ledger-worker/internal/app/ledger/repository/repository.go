package repository

import (
	"context"

	"prestado/ledger-worker/internal/app/ledger/entity"
)

// LedgerRepository журнал событий займов в PostgreSQL
type LedgerRepository interface {
	// Record сохраняет запись. false означает, что событие уже было записано.
	Record(ctx context.Context, entry *entity.LedgerEntry) (bool, error)

	// ListByLoanID возвращает историю займа в порядке наступления событий
	ListByLoanID(ctx context.Context, loanID string) ([]entity.LedgerEntry, error)
}
