package service

import (
	"context"

	"prestado/lending-service/internal/app/lending/entity"
)

type LoanServiceInterface interface {
	RequestLoan(ctx context.Context, borrowerID string, req *entity.RequestLoanRequest) (*entity.Loan, error)
	StartLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error)
	EndLoan(ctx context.Context, loanID, actorID string) (*entity.EndLoanResult, error)
	GetLoan(ctx context.Context, loanID, actorID string) (*entity.Loan, error)
	ListLoansForBorrower(ctx context.Context, borrowerID string) ([]entity.Loan, error)
	ListLoansForLender(ctx context.Context, lenderID string) ([]entity.Loan, error)
}

type ReviewServiceInterface interface {
	SubmitReview(ctx context.Context, reviewerID string, req *entity.SubmitReviewRequest) (*entity.Review, error)
	GetReviewByLoan(ctx context.Context, loanID string) (*entity.Review, error)
}

type ReputationServiceInterface interface {
	ComputeReputation(ctx context.Context, lenderID string) (*entity.Reputation, error)
	GetUserStats(ctx context.Context, userID string) (*entity.UserStats, error)
}

type ItemServiceInterface interface {
	CreateItem(ctx context.Context, lenderID string, req *entity.CreateItemRequest) (*entity.Item, error)
	GetItem(ctx context.Context, itemID string) (*entity.Item, error)
	ListItems(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error)
	UpdateItem(ctx context.Context, itemID, ownerID string, req *entity.UpdateItemRequest) (*entity.Item, error)
	DeleteItem(ctx context.Context, itemID, ownerID string) error
}

type ReconcileServiceInterface interface {
	Reconcile(ctx context.Context) (*entity.ReconcileReport, error)
}
