package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/repository"
	"prestado/pkg/logger"
)

// ItemService каталог вещей. Доступность при создании всегда true,
// дальше её меняет только LoanService.
type ItemService struct {
	itemRepo repository.ItemRepository
	loanRepo repository.LoanRepository
	locker   repository.ItemLocker
	now      func() time.Time
}

// NewItemService создает сервис каталога. Займы и блокировка нужны для удаления вещи.
func NewItemService(
	itemRepo repository.ItemRepository,
	loanRepo repository.LoanRepository,
	locker repository.ItemLocker,
) *ItemService {
	return &ItemService{
		itemRepo: itemRepo,
		loanRepo: loanRepo,
		locker:   locker,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateItem размещает вещь владельца lenderID
func (s *ItemService) CreateItem(ctx context.Context, lenderID string, req *entity.CreateItemRequest) (*entity.Item, error) {
	if lenderID == "" {
		return nil, ErrMissingIdentity
	}

	name, category, err := normalizeItemNames(req.Name, req.Category, req.Rating)
	if err != nil {
		return nil, err
	}

	item := &entity.Item{
		Name:        name,
		Category:    category,
		Description: req.Description,
		Location: entity.Location{
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		},
		Availability: true,
		Rating:       req.Rating,
		LenderID:     lenderID,
		ImageURL:     req.ImageURL,
		CreatedAt:    s.now(),
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, persistenceError("create item", err)
	}
	return item, nil
}

// GetItem возвращает вещь по ID
func (s *ItemService) GetItem(ctx context.Context, itemID string) (*entity.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, persistenceError("get item", err)
	}
	return item, nil
}

// ListItems возвращает вещи по фильтрам каталога
func (s *ItemService) ListItems(ctx context.Context, filter entity.ItemFilter) ([]entity.Item, error) {
	if filter.MinRating < 0 || filter.MaxRating < 0 || filter.MinRating > 5 || filter.MaxRating > 5 {
		return nil, ErrInvalidRating
	}
	if filter.MinRating > 0 && filter.MaxRating > 0 && filter.MinRating > filter.MaxRating {
		return nil, ErrInvalidItemQuery
	}
	filter.Search = strings.TrimSpace(filter.Search)

	items, err := s.itemRepo.List(ctx, filter)
	if err != nil {
		return nil, persistenceError("list items", err)
	}
	return items, nil
}

// UpdateItem меняет описание вещи. Доступность остаётся за движком займов,
// поэтому редактирование разрешено и во время активного займа.
func (s *ItemService) UpdateItem(ctx context.Context, itemID, ownerID string, req *entity.UpdateItemRequest) (*entity.Item, error) {
	name, category, err := normalizeItemNames(req.Name, req.Category, req.Rating)
	if err != nil {
		return nil, err
	}

	item, err := s.ownedItem(ctx, itemID, ownerID)
	if err != nil {
		return nil, err
	}

	item.Name = name
	item.Category = category
	item.Description = req.Description
	item.Location = entity.Location{Latitude: req.Location.Latitude, Longitude: req.Location.Longitude}
	item.Rating = req.Rating
	item.ImageURL = req.ImageURL

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, persistenceError("update item", err)
	}
	return item, nil
}

// DeleteItem снимает вещь с каталога. Пока у вещи есть займ в статусе
// pending или active, удаление отклоняется.
func (s *ItemService) DeleteItem(ctx context.Context, itemID, ownerID string) error {
	if _, err := s.ownedItem(ctx, itemID, ownerID); err != nil {
		return err
	}

	token, err := s.locker.Acquire(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemLocked) {
			return ErrItemBusy
		}
		return persistenceError("lock item", err)
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.locker.Release(releaseCtx, itemID, token); err != nil {
			logger.Warn().Err(err).Str("item_id", itemID).Msg("Failed to release item lock")
		}
	}()

	open, err := s.loanRepo.HasOpenForItem(ctx, itemID)
	if err != nil {
		return persistenceError("check open loans", err)
	}
	if open {
		return ErrItemHasOpenLoans
	}

	if err := s.itemRepo.Delete(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return ErrItemNotFound
		}
		return persistenceError("delete item", err)
	}

	logger.Info().Str("item_id", itemID).Str("lender_id", ownerID).Msg("Item deleted")
	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, itemID, ownerID string) (*entity.Item, error) {
	if ownerID == "" {
		return nil, ErrMissingIdentity
	}

	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.LenderID != ownerID {
		return nil, ErrNotItemOwner
	}
	return item, nil
}

// normalizeItemNames обрезает пробелы до проверки на пустоту
func normalizeItemNames(name, category string, rating int) (string, string, error) {
	if rating < 1 || rating > 5 {
		return "", "", ErrInvalidRating
	}

	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if name == "" || category == "" {
		return "", "", ErrBlankItemName
	}
	return name, category, nil
}
