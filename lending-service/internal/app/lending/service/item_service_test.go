package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/repository"
	"prestado/lending-service/internal/app/lending/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type itemServiceDeps struct {
	loans  *mocks.MockLoanRepository
	locker *mocks.MockItemLocker
}

func setupItemServiceWithDeps() (*ItemService, *mocks.MockItemRepository, itemServiceDeps) {
	items := new(mocks.MockItemRepository)
	deps := itemServiceDeps{
		loans:  new(mocks.MockLoanRepository),
		locker: new(mocks.MockItemLocker),
	}
	svc := NewItemService(items, deps.loans, deps.locker)
	svc.now = func() time.Time { return fixedNow }
	return svc, items, deps
}

func setupItemService() (*ItemService, *mocks.MockItemRepository) {
	svc, items, _ := setupItemServiceWithDeps()
	return svc, items
}

func ownedItem() *entity.Item {
	return &entity.Item{
		ID:           "item-1",
		Name:         "Drill",
		Category:     "Tools",
		Availability: false,
		Rating:       4,
		LenderID:     "lender-1",
	}
}

func updateRequest() *entity.UpdateItemRequest {
	return &entity.UpdateItemRequest{
		Name:        " Hammer drill ",
		Category:    "Tools",
		Description: "With case",
		Location:    entity.LocationRequest{Latitude: -33.4, Longitude: -70.6},
		Rating:      5,
	}
}

func TestCreateItem_Success(t *testing.T) {
	svc, items := setupItemService()
	ctx := context.Background()
	items.On("Create", ctx, mock.AnythingOfType("*entity.Item")).Return(nil)

	item, err := svc.CreateItem(ctx, "lender-1", &entity.CreateItemRequest{
		Name:     " Drill ",
		Category: "Tools",
		Location: entity.LocationRequest{Latitude: -33.45, Longitude: -70.66},
		Rating:   4,
	})

	require.NoError(t, err)
	assert.Equal(t, "Drill", item.Name)
	assert.True(t, item.Availability)
	assert.Equal(t, "lender-1", item.LenderID)
	assert.Equal(t, entity.Location{Latitude: -33.45, Longitude: -70.66}, item.Location)
	assert.Equal(t, fixedNow, item.CreatedAt)
}

func TestCreateItem_RatingRequired(t *testing.T) {
	svc, items := setupItemService()

	_, err := svc.CreateItem(context.Background(), "lender-1", &entity.CreateItemRequest{Name: "Drill", Category: "Tools"})

	assert.ErrorIs(t, err, ErrValidation)
	items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateItem_RepoError(t *testing.T) {
	svc, items := setupItemService()
	ctx := context.Background()
	items.On("Create", ctx, mock.Anything).Return(errors.New("db error"))

	_, err := svc.CreateItem(ctx, "lender-1", &entity.CreateItemRequest{Name: "Drill", Category: "Tools", Rating: 3})

	assert.ErrorIs(t, err, ErrPersistence)
}

func TestGetItem_NotFound(t *testing.T) {
	svc, items := setupItemService()
	ctx := context.Background()
	items.On("GetByID", ctx, "missing").Return(nil, repository.ErrItemNotFound)

	_, err := svc.GetItem(ctx, "missing")

	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestListItems_PassesFilter(t *testing.T) {
	svc, items := setupItemService()
	ctx := context.Background()
	filter := entity.ItemFilter{Search: "drill", MinRating: 2, MaxRating: 5, AvailableOnly: true}
	items.On("List", ctx, filter).Return([]entity.Item{{ID: "item-1"}}, nil)

	result, err := svc.ListItems(ctx, entity.ItemFilter{Search: "  drill ", MinRating: 2, MaxRating: 5, AvailableOnly: true})

	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestListItems_InvalidRange(t *testing.T) {
	svc, items := setupItemService()

	_, err := svc.ListItems(context.Background(), entity.ItemFilter{MinRating: 4, MaxRating: 2})

	assert.ErrorIs(t, err, ErrValidation)
	items.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCreateItem_BlankNameRejected(t *testing.T) {
	svc, items := setupItemService()

	_, err := svc.CreateItem(context.Background(), "lender-1", &entity.CreateItemRequest{
		Name:     "   ",
		Category: "  ",
		Rating:   3,
	})

	assert.ErrorIs(t, err, ErrBlankItemName)
	assert.ErrorIs(t, err, ErrValidation)
	items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// ===================== UpdateItem =====================

func TestUpdateItem_Success(t *testing.T) {
	// Arrange
	svc, items := setupItemService()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)
	items.On("Update", ctx, mock.AnythingOfType("*entity.Item")).Return(nil)

	// Act
	item, err := svc.UpdateItem(ctx, "item-1", "lender-1", updateRequest())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Hammer drill", item.Name)
	assert.Equal(t, 5, item.Rating)
	assert.Equal(t, entity.Location{Latitude: -33.4, Longitude: -70.6}, item.Location)
	assert.False(t, item.Availability, "availability is not editable")
	items.AssertNotCalled(t, "SetAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateItem_NotOwner(t *testing.T) {
	svc, items := setupItemService()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)

	_, err := svc.UpdateItem(ctx, "item-1", "someone-else", updateRequest())

	assert.ErrorIs(t, err, ErrForbidden)
	items.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateItem_BlankNameRejected(t *testing.T) {
	svc, items := setupItemService()
	req := updateRequest()
	req.Name = "   "

	_, err := svc.UpdateItem(context.Background(), "item-1", "lender-1", req)

	assert.ErrorIs(t, err, ErrValidation)
	items.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestUpdateItem_NotFound(t *testing.T) {
	svc, items := setupItemService()
	ctx := context.Background()
	items.On("GetByID", ctx, "missing").Return(nil, repository.ErrItemNotFound)

	_, err := svc.UpdateItem(ctx, "missing", "lender-1", updateRequest())

	assert.ErrorIs(t, err, ErrNotFound)
}

// ===================== DeleteItem =====================

func TestDeleteItem_Success(t *testing.T) {
	// Arrange
	svc, items, deps := setupItemServiceWithDeps()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)
	deps.locker.On("Acquire", ctx, "item-1").Return("token", nil)
	deps.locker.On("Release", mock.Anything, "item-1", "token").Return(nil)
	deps.loans.On("HasOpenForItem", ctx, "item-1").Return(false, nil)
	items.On("Delete", ctx, "item-1").Return(nil)

	// Act
	err := svc.DeleteItem(ctx, "item-1", "lender-1")

	// Assert
	require.NoError(t, err)
	items.AssertCalled(t, "Delete", ctx, "item-1")
	deps.locker.AssertCalled(t, "Release", mock.Anything, "item-1", "token")
}

func TestDeleteItem_OpenLoansRejected(t *testing.T) {
	svc, items, deps := setupItemServiceWithDeps()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)
	deps.locker.On("Acquire", ctx, "item-1").Return("token", nil)
	deps.locker.On("Release", mock.Anything, "item-1", "token").Return(nil)
	deps.loans.On("HasOpenForItem", ctx, "item-1").Return(true, nil)

	err := svc.DeleteItem(ctx, "item-1", "lender-1")

	assert.ErrorIs(t, err, ErrConflict)
	items.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	deps.locker.AssertCalled(t, "Release", mock.Anything, "item-1", "token")
}

func TestDeleteItem_NotOwner(t *testing.T) {
	svc, items, deps := setupItemServiceWithDeps()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)

	err := svc.DeleteItem(ctx, "item-1", "someone-else")

	assert.ErrorIs(t, err, ErrForbidden)
	deps.locker.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
	items.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteItem_ItemLocked(t *testing.T) {
	svc, items, deps := setupItemServiceWithDeps()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)
	deps.locker.On("Acquire", ctx, "item-1").Return("", repository.ErrItemLocked)

	err := svc.DeleteItem(ctx, "item-1", "lender-1")

	assert.ErrorIs(t, err, ErrItemBusy)
	deps.loans.AssertNotCalled(t, "HasOpenForItem", mock.Anything, mock.Anything)
}

func TestDeleteItem_RepoError(t *testing.T) {
	svc, items, deps := setupItemServiceWithDeps()
	ctx := context.Background()
	items.On("GetByID", ctx, "item-1").Return(ownedItem(), nil)
	deps.locker.On("Acquire", ctx, "item-1").Return("token", nil)
	deps.locker.On("Release", mock.Anything, "item-1", "token").Return(nil)
	deps.loans.On("HasOpenForItem", ctx, "item-1").Return(false, errors.New("db error"))

	err := svc.DeleteItem(ctx, "item-1", "lender-1")

	assert.ErrorIs(t, err, ErrPersistence)
}
