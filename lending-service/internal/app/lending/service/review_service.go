package service

import (
	"context"
	"errors"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/infrastructure"
	"prestado/lending-service/internal/app/lending/repository"
	"prestado/pkg/metrics"
)

// ReviewService принимает отзывы заёмщиков о владельцах по завершённым займам
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	loanRepo   repository.LoanRepository
	events     eventPublisher
	now        func() time.Time
}

// NewReviewService создает сервис отзывов с внедрением зависимостей
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	loanRepo repository.LoanRepository,
	kafkaProducer infrastructure.MessagePublisher,
) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		loanRepo:   loanRepo,
		events:     eventPublisher{producer: kafkaProducer},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SubmitReview сохраняет отзыв. Оценка проверяется до обращения к хранилищу.
// На один займ допускается один отзыв.
func (s *ReviewService) SubmitReview(ctx context.Context, reviewerID string, req *entity.SubmitReviewRequest) (*entity.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if reviewerID == "" {
		return nil, ErrMissingIdentity
	}

	loan, err := s.loanRepo.GetByID(ctx, req.LoanID)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			return nil, ErrLoanNotFound
		}
		return nil, persistenceError("get loan", err)
	}

	if loan.Status != entity.LoanStatusCompleted {
		return nil, ErrLoanNotCompleted
	}
	if loan.BorrowerID != reviewerID {
		return nil, ErrNotBorrower
	}
	if loan.LenderID != req.LenderID {
		return nil, ErrLenderMismatch
	}

	_, err = s.reviewRepo.GetByLoanID(ctx, loan.ID)
	switch {
	case err == nil:
		return nil, ErrReviewAlreadyExists
	case !errors.Is(err, repository.ErrReviewNotFound):
		return nil, persistenceError("check existing review", err)
	}

	review := &entity.Review{
		LoanID:     loan.ID,
		LenderID:   loan.LenderID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Text:       req.Text,
		CreatedAt:  s.now(),
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		// Уникальный индекс по loan_id ловит конкурентную отправку
		if errors.Is(err, repository.ErrDuplicateReview) {
			return nil, ErrReviewAlreadyExists
		}
		return nil, persistenceError("create review", err)
	}

	metrics.RecordReviewSubmitted(review.Rating)

	event := loanEvent(entity.EventReviewSubmitted, loan, review.CreatedAt)
	event.Rating = review.Rating
	s.events.publish(ctx, event)

	return review, nil
}

// GetReviewByLoan возвращает отзыв по займу
func (s *ReviewService) GetReviewByLoan(ctx context.Context, loanID string) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, persistenceError("get review", err)
	}
	return review, nil
}
