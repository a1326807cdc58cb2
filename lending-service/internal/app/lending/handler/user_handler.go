package handler

import (
	"net/http"

	"prestado/lending-service/internal/app/lending/service"

	"github.com/gin-gonic/gin"
)

// UserHandler отдаёт репутацию и статистику пользователя. Значения
// вычисляются при каждом запросе.
type UserHandler struct {
	reputationService service.ReputationServiceInterface
}

func NewUserHandler(reputationService service.ReputationServiceInterface) *UserHandler {
	return &UserHandler{reputationService: reputationService}
}

func (h *UserHandler) GetReputation(c *gin.Context) {
	reputation, err := h.reputationService.ComputeReputation(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err, "Failed to compute reputation")
		return
	}

	c.JSON(http.StatusOK, reputation)
}

func (h *UserHandler) GetStats(c *gin.Context) {
	stats, err := h.reputationService.GetUserStats(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err, "Failed to get user stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
