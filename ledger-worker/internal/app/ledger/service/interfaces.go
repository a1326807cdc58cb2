package service

import (
	"context"

	"prestado/ledger-worker/internal/app/ledger/entity"
)

type LedgerServiceInterface interface {
	RecordEvent(ctx context.Context, event *entity.LoanEvent) error
	GetHistory(ctx context.Context, loanID string) ([]entity.LedgerEntry, error)
}
