package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
)

type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type TransactionResponse struct {
	ID          int64                  `json:"id"`
	Amount      float64                `json:"amount"`
	Category    string                 `json:"category"`
	Type        domain.TransactionType `json:"type"`
	Description *string                `json:"description"`
	Date        string                 `json:"date"`
	UserID      int64                  `json:"user_id"`
}

type MonthlyTotalResponse struct {
	Month int                    `json:"month"`
	Type  domain.TransactionType `json:"type"`
	Total float64                `json:"total"`
}

type CategoryTotalResponse struct {
	Category string                 `json:"category"`
	Type     domain.TransactionType `json:"type"`
	Total    float64                `json:"total"`
}

type ExportResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Count int    `json:"count"`
}

func userToResponse(user domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func transactionToResponse(tx domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Category:    tx.Category,
		Type:        tx.Type,
		Description: tx.Description,
		Date:        tx.Date.UTC().Format(time.RFC3339Nano),
		UserID:      tx.UserID,
	}
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

func validationFailed(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
}

// writeError maps service errors onto status codes. Unknown errors are
// logged and reported without detail.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTransactionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"detail": "Transaction not found"})
	case errors.Is(err, service.ErrValidation):
		validationFailed(c, err)
	case errors.Is(err, service.ErrUserAlreadyExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": "Username or email already registered"})
	case errors.Is(err, service.ErrInvalidCredentials):
		abortUnauthorized(c, "Incorrect username or password")
	case errors.Is(err, service.ErrExportUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"detail": "Export is not configured"})
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Error("request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
