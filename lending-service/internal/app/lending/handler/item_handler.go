package handler

import (
	"net/http"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ItemHandler struct {
	itemService service.ItemServiceInterface
	validator   *validator.Validate
}

func NewItemHandler(itemService service.ItemServiceInterface) *ItemHandler {
	return &ItemHandler{
		itemService: itemService,
		validator:   validator.New(),
	}
}

// CreateItem размещает вещь от имени текущего пользователя
func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	item, err := h.itemService.CreateItem(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Failed to create item")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// GetItem возвращает вещь по ID
func (h *ItemHandler) GetItem(c *gin.Context) {
	itemID := c.Param("item_id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Item ID is required"})
		return
	}

	item, err := h.itemService.GetItem(c.Request.Context(), itemID)
	if err != nil {
		respondError(c, err, "Failed to get item")
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateItem редактирует вещь. Доступен только владельцу.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	itemID := c.Param("item_id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Item ID is required"})
		return
	}

	var req entity.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	item, err := h.itemService.UpdateItem(c.Request.Context(), itemID, userID, &req)
	if err != nil {
		respondError(c, err, "Failed to update item")
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	itemID := c.Param("item_id")
	if itemID == "" {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Item ID is required"})
		return
	}

	if err := h.itemService.DeleteItem(c.Request.Context(), itemID, userID); err != nil {
		respondError(c, err, "Failed to delete item")
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Item deleted successfully",
	})
}

// ListItems каталог с поиском по названию/категории, диапазоном оценки и доступностью
func (h *ItemHandler) ListItems(c *gin.Context) {
	var query entity.ListItemsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	if err := h.validator.Struct(query); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	items, err := h.itemService.ListItems(c.Request.Context(), query.ToFilter())
	if err != nil {
		respondError(c, err, "Failed to list items")
		return
	}

	c.JSON(http.StatusOK, entity.ItemListResponse{
		Items: items,
		Total: len(items),
	})
}
