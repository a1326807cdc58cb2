package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"prestado/ledger-worker/internal/app/ledger/entity"
	"prestado/ledger-worker/internal/app/ledger/service"
	"prestado/pkg/logger"
	"prestado/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "ledger-worker"

// Pinger проверка доступности хранилища (*sql.DB)
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}

type LedgerHandler struct {
	ledgerSvc service.LedgerServiceInterface
	db        Pinger
}

// NewLedgerHandler создает обработчик журнала и health check
func NewLedgerHandler(ledgerSvc service.LedgerServiceInterface, db Pinger) *LedgerHandler {
	return &LedgerHandler{
		ledgerSvc: ledgerSvc,
		db:        db,
	}
}

func (h *LedgerHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Checks:    map[string]string{"database": "healthy"},
		Timestamp: time.Now().UTC(),
	}

	if err := h.db.PingContext(ctx); err != nil {
		response.Status = "unhealthy"
		response.Checks["database"] = "unhealthy: " + err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *LedgerHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, "alive")
}

// GetHistory история займа в порядке наступления событий
func (h *LedgerHandler) GetHistory(c *gin.Context) {
	loanID := c.Param("loan_id")

	entries, err := h.ledgerSvc.GetHistory(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, service.ErrLoanIDRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error().Err(err).Str("loan_id", loanID).Msg("Failed to load loan history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load loan history"})
		return
	}

	if entries == nil {
		entries = []entity.LedgerEntry{}
	}

	c.JSON(http.StatusOK, entity.HistoryResponse{
		LoanID:  loanID,
		Entries: entries,
		Total:   len(entries),
	})
}

// SetupRoutes настраивает маршруты ledger-worker
func SetupRoutes(h *LedgerHandler) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.GET("/health", h.HealthCheck)
	router.GET("/health/liveness", h.Liveness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/loans/:loan_id/history", h.GetHistory)

	return router
}
