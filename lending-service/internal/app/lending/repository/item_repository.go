package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/pkg/metrics"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const itemsCollection = "items"

type itemRepository struct {
	collection *mongo.Collection
}

// NewItemRepository создает репозиторий вещей в коллекции items
func NewItemRepository(db *mongo.Database) ItemRepository {
	return &itemRepository{collection: db.Collection(itemsCollection)}
}

// EnsureIndexes создает индексы по владельцу и доступности
func (r *itemRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "lender_id", Value: 1}}, Options: options.Index().SetName("lender_id_idx")},
		{Keys: bson.D{{Key: "availability", Value: 1}}, Options: options.Index().SetName("availability_idx")},
	})
	if err != nil {
		return fmt.Errorf("failed to create item indexes: %w", err)
	}
	return nil
}

// Create сохраняет вещь, ID генерируется если не задан
func (r *itemRepository) Create(ctx context.Context, item *entity.Item) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpInsert, itemsCollection)
	defer timer.ObserveDuration()

	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpInsert)
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByID получает вещь по ID
func (r *itemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, itemsCollection)
	defer timer.ObserveDuration()

	var item entity.Item
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrItemNotFound
		}
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// List возвращает вещи по фильтрам каталога, новые первыми.
// Поиск нечувствителен к регистру и идёт по названию и категории.
func (r *itemRepository) List(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, buildItemFilter(filter), opts)
}

// ListUnavailable возвращает занятые вещи для сверки
func (r *itemRepository) ListUnavailable(ctx context.Context) ([]entity.Item, error) {
	return r.find(ctx, bson.M{"availability": false})
}

func (r *itemRepository) CountByLender(ctx context.Context, lenderID string) (int64, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpCount, itemsCollection)
	defer timer.ObserveDuration()

	n, err := r.collection.CountDocuments(ctx, bson.M{"lender_id": lenderID})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpCount)
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

// Update обновляет поля вещи через $set, availability не входит в обновление
func (r *itemRepository) Update(ctx context.Context, item *entity.Item) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, itemsCollection)
	defer timer.ObserveDuration()

	update := bson.M{"$set": bson.M{
		"name":        item.Name,
		"category":    item.Category,
		"description": item.Description,
		"location":    item.Location,
		"rating":      item.Rating,
		"image_url":   item.ImageURL,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": item.ID}, update)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update item: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Delete удаляет вещь из MongoDB
func (r *itemRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpDelete, itemsCollection)
	defer timer.ObserveDuration()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpDelete)
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// SetAvailability условно меняет флаг доступности.
// Отличает отсутствующую вещь (ErrItemNotFound) от уже выставленного значения.
func (r *itemRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpUpdate, itemsCollection)
	defer timer.ObserveDuration()

	filter := bson.M{"_id": id, "availability": !available}
	update := bson.M{"$set": bson.M{"availability": available}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpUpdate)
		return fmt.Errorf("failed to update item availability: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if exists == 0 {
		return ErrItemNotFound
	}
	return ErrAvailabilityConflict
}

func (r *itemRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]entity.Item, error) {
	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, itemsCollection)
	defer timer.ObserveDuration()

	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to find items: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]entity.Item, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

func buildItemFilter(f entity.ItemFilter) bson.M {
	filter := bson.M{}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"category": pattern},
		}
	}

	rating := bson.M{}
	if f.MinRating > 0 {
		rating["$gte"] = f.MinRating
	}
	if f.MaxRating > 0 {
		rating["$lte"] = f.MaxRating
	}
	if len(rating) > 0 {
		filter["rating"] = rating
	}

	if f.AvailableOnly {
		filter["availability"] = true
	}
	if f.LenderID != "" {
		filter["lender_id"] = f.LenderID
	}

	return filter
}
