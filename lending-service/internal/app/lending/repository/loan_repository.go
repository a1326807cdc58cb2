package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/pkg/metrics"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const loansCollection = "loans"

type loanRepository struct {
	collection *mongo.Collection
}

// NewLoanRepository создает репозиторий займов в коллекции loans
func NewLoanRepository(db *mongo.Database) LoanRepository {
	return &loanRepository{collection: db.Collection(loansCollection)}
}

// EnsureIndexes создает индексы для выборок по участникам и активным займам вещи
func (r *loanRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "borrower_id", Value: 1}}, Options: options.Index().SetName("borrower_id_idx")},
		{Keys: bson.D{{Key: "lender_id", Value: 1}}, Options: options.Index().SetName("lender_id_idx")},
		{
			Keys:    bson.D{{Key: "item_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("item_status_idx"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create loan indexes: %w", err)
	}
	return nil
}

// Create сохраняет новый займ
func (r *loanRepository) Create(ctx context.Context, loan *entity.Loan) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, loansCollection)
	defer timer.ObserveDuration()

	if loan.ID == "" {
		loan.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, loan); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// GetByID получает займ по ID
func (r *loanRepository) GetByID(ctx context.Context, id string) (*entity.Loan, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, loansCollection)
	defer timer.ObserveDuration()

	var loan entity.Loan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&loan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrLoanNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	return &loan, nil
}

func (r *loanRepository) ListByBorrower(ctx context.Context, borrowerID string) ([]entity.Loan, error) {
	return r.find(ctx, bson.M{"borrower_id": borrowerID})
}

func (r *loanRepository) ListByLender(ctx context.Context, lenderID string) ([]entity.Loan, error) {
	return r.find(ctx, bson.M{"lender_id": lenderID})
}

// ListActive возвращает все активные займы
func (r *loanRepository) ListActive(ctx context.Context) ([]entity.Loan, error) {
	return r.find(ctx, bson.M{"status": entity.LoanStatusActive})
}

// HasActiveForItem проверяет наличие активного займа на вещь
func (r *loanRepository) HasActiveForItem(ctx context.Context, itemID string) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, loansCollection)
	defer timer.ObserveDuration()

	n, err := r.collection.CountDocuments(ctx,
		bson.M{"item_id": itemID, "status": entity.LoanStatusActive},
		options.Count().SetLimit(1),
	)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpCount)
		return false, fmt.Errorf("failed to count active loans: %w", err)
	}
	return n > 0, nil
}

// HasOpenForItem проверяет наличие займа в статусе pending или active
func (r *loanRepository) HasOpenForItem(ctx context.Context, itemID string) (bool, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, loansCollection)
	defer timer.ObserveDuration()

	filter := bson.M{
		"item_id": itemID,
		"status":  bson.M{"$in": bson.A{entity.LoanStatusPending, entity.LoanStatusActive}},
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpCount)
		return false, fmt.Errorf("failed to count open loans: %w", err)
	}
	return n > 0, nil
}

func (r *loanRepository) TransitionStatus(ctx context.Context, id string, from, to entity.LoanStatus, at time.Time) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, loansCollection)
	defer timer.ObserveDuration()

	set := bson.M{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case entity.LoanStatusActive:
		set["actual_start_date"] = at
	case entity.LoanStatusCompleted:
		set["actual_end_date"] = at
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update loan status: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check loan: %w", err)
	}
	if exists == 0 {
		return ErrLoanNotFound
	}
	return ErrStatusConflict
}

func (r *loanRepository) find(ctx context.Context, filter bson.M) ([]entity.Loan, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, loansCollection)
	defer timer.ObserveDuration()

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to find loans: %w", err)
	}
	defer cursor.Close(ctx)

	loans := make([]entity.Loan, 0)
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, fmt.Errorf("failed to decode loans: %w", err)
	}
	return loans, nil
}
