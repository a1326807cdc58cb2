package service

import (
	"context"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/repository"
)

// ReputationService считает репутацию владельца по отзывам.
// Значения не кешируются и пересчитываются при каждом запросе.
type ReputationService struct {
	reviewRepo repository.ReviewRepository
	itemRepo   repository.ItemRepository
}

// NewReputationService создает сервис репутации и статистики пользователя
func NewReputationService(reviewRepo repository.ReviewRepository, itemRepo repository.ItemRepository) *ReputationService {
	return &ReputationService{
		reviewRepo: reviewRepo,
		itemRepo:   itemRepo,
	}
}

// ComputeReputation возвращает среднюю оценку и число отзывов.
// Без отзывов - 0 и 0.
func (s *ReputationService) ComputeReputation(ctx context.Context, lenderID string) (*entity.Reputation, error) {
	if lenderID == "" {
		return nil, ErrMissingIdentity
	}

	reviews, err := s.reviewRepo.ListByLender(ctx, lenderID)
	if err != nil {
		return nil, persistenceError("list reviews", err)
	}

	reputation := &entity.Reputation{LenderID: lenderID, ReviewCount: len(reviews)}
	if len(reviews) == 0 {
		return reputation, nil
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	reputation.AverageRating = float64(sum) / float64(len(reviews))

	return reputation, nil
}

// GetUserStats собирает статистику пользователя из текущего состояния хранилища
func (s *ReputationService) GetUserStats(ctx context.Context, userID string) (*entity.UserStats, error) {
	reputation, err := s.ComputeReputation(ctx, userID)
	if err != nil {
		return nil, err
	}

	listed, err := s.itemRepo.CountByLender(ctx, userID)
	if err != nil {
		return nil, persistenceError("count items", err)
	}

	return &entity.UserStats{
		UserID:           userID,
		AverageRating:    reputation.AverageRating,
		ReviewCount:      reputation.ReviewCount,
		ListedItemsCount: listed,
	}, nil
}
