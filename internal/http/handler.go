package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users          service.UserService
	transactions   service.TransactionService
	analytics      service.AnalyticsService
	exports        service.ExportService
	tokens         *auth.TokenService
	guard          *auth.Guard
	db             Pinger
	logger         *logrus.Logger
	allowedOrigins []string
}

// Deps groups everything the handler needs.
type Deps struct {
	Users          service.UserService
	Transactions   service.TransactionService
	Analytics      service.AnalyticsService
	Exports        service.ExportService
	Tokens         *auth.TokenService
	Guard          *auth.Guard
	DB             Pinger
	Logger         *logrus.Logger
	AllowedOrigins []string
}

func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &Handler{
		users:          d.Users,
		transactions:   d.Transactions,
		analytics:      d.Analytics,
		exports:        d.Exports,
		tokens:         d.Tokens,
		guard:          d.Guard,
		db:             d.DB,
		logger:         d.Logger,
		allowedOrigins: d.AllowedOrigins,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(
		gin.CustomRecovery(h.recover),
		requestID(),
		requestLogger(h.logger),
		corsMiddleware(h.allowedOrigins),
	)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Personal Finance Tracker API is running!"})
	})
	router.GET("/health", h.health)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.GET("/me", h.requireAuth(), h.me)
	}

	txs := router.Group("/transactions", h.requireAuth())
	{
		txs.POST("/", h.createTransaction)
		txs.GET("/", h.listTransactions)
		txs.GET("/analytics/monthly", h.monthlyAnalytics)
		txs.GET("/analytics/categories", h.categoryAnalytics)
		txs.POST("/export", h.exportTransactions)
		txs.GET("/:id", h.getTransaction)
		txs.PUT("/:id", h.updateTransaction)
		txs.DELETE("/:id", h.deleteTransaction)
	}
}

func (h *Handler) health(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			h.logger.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *Handler) recover(c *gin.Context, recovered any) {
	h.logger.WithFields(logrus.Fields{
		"panic":      recovered,
		"request_id": c.GetString(requestIDKey),
	}).Error("panic recovered")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
