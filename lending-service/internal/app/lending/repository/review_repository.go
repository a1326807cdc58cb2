package repository

import (
	"context"
	"errors"
	"fmt"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/pkg/metrics"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reviewsCollection = "reviews"

type reviewRepository struct {
	collection *mongo.Collection
}

// NewReviewRepository создает репозиторий отзывов в коллекции reviews
func NewReviewRepository(db *mongo.Database) ReviewRepository {
	return &reviewRepository{collection: db.Collection(reviewsCollection)}
}

// EnsureIndexes создает уникальный индекс по loan_id (один отзыв на займ)
// и индекс по lender_id для подсчёта репутации
func (r *reviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "loan_id", Value: 1}},
			Options: options.Index().SetName("loan_id_uniq").SetUnique(true),
		},
		{Keys: bson.D{{Key: "lender_id", Value: 1}}, Options: options.Index().SetName("lender_id_idx")},
	})
	if err != nil {
		return fmt.Errorf("failed to create review indexes: %w", err)
	}
	return nil
}

// Create сохраняет отзыв. Повтор по loan_id возвращает ErrDuplicateReview.
func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, reviewsCollection)
	defer timer.ObserveDuration()

	if review.ID == "" {
		review.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReview
		}
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByLoanID получает отзыв по займу
func (r *reviewRepository) GetByLoanID(ctx context.Context, loanID string) (*entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	defer timer.ObserveDuration()

	var review entity.Review
	err := r.collection.FindOne(ctx, bson.M{"loan_id": loanID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrReviewNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// ListByLender возвращает все отзывы о владельце. Использует lender_id_idx.
func (r *reviewRepository) ListByLender(ctx context.Context, lenderID string) ([]entity.Review, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, reviewsCollection)
	defer timer.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"lender_id": lenderID}, opts)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]entity.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
