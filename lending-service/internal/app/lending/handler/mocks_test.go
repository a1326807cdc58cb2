package handler

import (
	"context"

	"prestado/lending-service/internal/app/lending/entity"

	"github.com/stretchr/testify/mock"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) RequestLoan(ctx context.Context, borrowerID string, req *entity.RequestLoanRequest) (*entity.Loan, error) {
	args := m.Called(ctx, borrowerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Loan), args.Error(1)
}

func (m *MockLoanService) StartLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error) {
	args := m.Called(ctx, loanID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Loan), args.Error(1)
}

func (m *MockLoanService) EndLoan(ctx context.Context, loanID, actorID string) (*entity.EndLoanResult, error) {
	args := m.Called(ctx, loanID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.EndLoanResult), args.Error(1)
}

func (m *MockLoanService) GetLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error) {
	args := m.Called(ctx, loanID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Loan), args.Error(1)
}

func (m *MockLoanService) ListLoansForBorrower(ctx context.Context, borrowerID string) ([]entity.Loan, error) {
	args := m.Called(ctx, borrowerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Loan), args.Error(1)
}

func (m *MockLoanService) ListLoansForLender(ctx context.Context, lenderID string) ([]entity.Loan, error) {
	args := m.Called(ctx, lenderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Loan), args.Error(1)
}

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitReview(ctx context.Context, reviewerID string, req *entity.SubmitReviewRequest) (*entity.Review, error) {
	args := m.Called(ctx, reviewerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

func (m *MockReviewService) GetReviewByLoan(ctx context.Context, loanID string) (*entity.Review, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Review), args.Error(1)
}

type MockReputationService struct {
	mock.Mock
}

func (m *MockReputationService) ComputeReputation(ctx context.Context, lenderID string) (*entity.Reputation, error) {
	args := m.Called(ctx, lenderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Reputation), args.Error(1)
}

func (m *MockReputationService) GetUserStats(ctx context.Context, userID string) (*entity.UserStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UserStats), args.Error(1)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) CreateItem(ctx context.Context, lenderID string, req *entity.CreateItemRequest) (*entity.Item, error) {
	args := m.Called(ctx, lenderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Item), args.Error(1)
}

func (m *MockItemService) GetItem(ctx context.Context, itemID string) (*entity.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Item), args.Error(1)
}

func (m *MockItemService) UpdateItem(ctx context.Context, itemID, ownerID string, req *entity.UpdateItemRequest) (*entity.Item, error) {
	args := m.Called(ctx, itemID, ownerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Item), args.Error(1)
}

func (m *MockItemService) DeleteItem(ctx context.Context, itemID, ownerID string) error {
	args := m.Called(ctx, itemID, ownerID)
	return args.Error(0)
}

func (m *MockItemService) ListItems(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Item), args.Error(1)
}
