package handler

import (
	"net/http"

	"prestado/pkg/logger"
	"prestado/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "lending-service"

// Handlers набор обработчиков lending-service
type Handlers struct {
	Items   *ItemHandler
	Loans   *LoanHandler
	Reviews *ReviewHandler
	Users   *UserHandler
}

// SetupRoutes настраивает маршруты lending-service
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowWildcard:    true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("")
	api.Use(authMiddleware.Authenticate())
	{
		api.POST("/items", h.Items.CreateItem)
		api.GET("/items", h.Items.ListItems)
		api.GET("/items/:item_id", h.Items.GetItem)
		api.PUT("/items/:item_id", h.Items.UpdateItem)
		api.DELETE("/items/:item_id", h.Items.DeleteItem)

		api.POST("/loans", h.Loans.RequestLoan)
		api.GET("/loans", h.Loans.ListLoans)
		api.GET("/loans/:loan_id", h.Loans.GetLoan)
		api.POST("/loans/:loan_id/start", h.Loans.StartLoan)
		api.POST("/loans/:loan_id/end", h.Loans.EndLoan)

		api.POST("/reviews", h.Reviews.SubmitReview)
		api.GET("/reviews/loan/:loan_id", h.Reviews.GetReviewByLoan)

		api.GET("/users/:user_id/reputation", h.Users.GetReputation)
		api.GET("/users/:user_id/stats", h.Users.GetStats)
	}

	return router
}
