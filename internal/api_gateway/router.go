package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bank-transaction-engine/internal/api_gateway/handler"
	"github.com/bank-transaction-engine/internal/api_gateway/middleware"
	"github.com/gin-gonic/gin"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	accountHandler *handler.AccountHandler,
	transactionHandler *handler.TransactionHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Account operations
		accounts := v1.Group("/accounts")
		{
			accounts.GET("", accountHandler.List)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.GET("/:id/transactions", accountHandler.GetTransactions)
		}

		// Transaction operations
		transactions := v1.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.PATCH("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}
	}

	// POST-only routes for clients and proxies without PUT/PATCH/DELETE support
	legacy := r.Group("/api/transactions")
	{
		legacy.POST("", transactionHandler.List)
		legacy.POST("/create", transactionHandler.LegacyCreate)
		legacy.POST("/update", transactionHandler.LegacyUpdate)
		legacy.POST("/delete", transactionHandler.LegacyDelete)
		legacy.POST("/:id", transactionHandler.GetByID)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
