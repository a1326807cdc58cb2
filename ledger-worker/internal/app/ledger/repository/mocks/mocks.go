package mocks

import (
	"context"

	"prestado/ledger-worker/internal/app/ledger/entity"

	"github.com/stretchr/testify/mock"
)

// MockLedgerRepository мок для LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *entity.LedgerEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) ListByLoanID(ctx context.Context, loanID string) ([]entity.LedgerEntry, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.LedgerEntry), args.Error(1)
}
