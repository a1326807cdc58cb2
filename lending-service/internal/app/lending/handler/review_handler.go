package handler

import (
	"net/http"

	"prestado/lending-service/internal/app/lending/entity"
	"prestado/lending-service/internal/app/lending/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
	validator     *validator.Validate
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
	}
}

// SubmitReview оставляет отзыв о владельце от имени заёмщика
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req entity.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: formatValidationError(err)})
		return
	}

	review, err := h.reviewService.SubmitReview(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err, "Failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetReviewByLoan возвращает отзыв по займу
func (h *ReviewHandler) GetReviewByLoan(c *gin.Context) {
	review, err := h.reviewService.GetReviewByLoan(c.Request.Context(), c.Param("loan_id"))
	if err != nil {
		respondError(c, err, "Failed to get review")
		return
	}

	c.JSON(http.StatusOK, review)
}
