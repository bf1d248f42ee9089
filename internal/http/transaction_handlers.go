package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/service"
)

type createTransactionRequest struct {
	Amount      *float64               `json:"amount" binding:"required"`
	Category    string                 `json:"category" binding:"required"`
	Type        domain.TransactionType `json:"type" binding:"required"`
	Description *string                `json:"description"`
	Date        *time.Time             `json:"date"`
}

func (h *Handler) createTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationFailed(c, err)
		return
	}

	tx, err := h.transactions.Create(c.Request.Context(), caller(c), service.NewTransaction{
		Amount:      *req.Amount,
		Category:    req.Category,
		Type:        req.Type,
		Description: req.Description,
		Date:        req.Date,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, transactionToResponse(*tx))
}

func (h *Handler) listTransactions(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		validationFailed(c, err)
		return
	}
	limit, err := queryInt(c, "limit", service.DefaultListLimit)
	if err != nil {
		validationFailed(c, err)
		return
	}

	txs, err := h.transactions.List(c.Request.Context(), caller(c), skip, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]TransactionResponse, len(txs))
	for i := range txs {
		resp[i] = transactionToResponse(txs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getTransaction(c *gin.Context) {
	id, ok := transactionID(c)
	if !ok {
		return
	}

	tx, err := h.transactions.Get(c.Request.Context(), caller(c), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) updateTransaction(c *gin.Context) {
	id, ok := transactionID(c)
	if !ok {
		return
	}

	var patch domain.TransactionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		validationFailed(c, err)
		return
	}

	tx, err := h.transactions.Update(c.Request.Context(), caller(c), id, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, transactionToResponse(*tx))
}

func (h *Handler) deleteTransaction(c *gin.Context) {
	id, ok := transactionID(c)
	if !ok {
		return
	}

	if err := h.transactions.Delete(c.Request.Context(), caller(c), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

func (h *Handler) monthlyAnalytics(c *gin.Context) {
	year, err := queryInt(c, "year", time.Now().UTC().Year())
	if err != nil {
		validationFailed(c, err)
		return
	}

	totals, err := h.analytics.MonthlyTotals(c.Request.Context(), caller(c), year)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]MonthlyTotalResponse, len(totals))
	for i, t := range totals {
		resp[i] = MonthlyTotalResponse{Month: t.Month, Type: t.Type, Total: t.Total}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) categoryAnalytics(c *gin.Context) {
	totals, err := h.analytics.CategoryTotals(c.Request.Context(), caller(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]CategoryTotalResponse, len(totals))
	for i, t := range totals {
		resp[i] = CategoryTotalResponse{Category: t.Category, Type: t.Type, Total: t.Total}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) exportTransactions(c *gin.Context) {
	res, err := h.exports.ExportCSV(c.Request.Context(), caller(c))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExportResponse{Key: res.Key, URL: res.URL, Count: res.Count})
}

// transactionID parses the :id path parameter and writes a 422 when it is not an integer.
func transactionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		validationFailed(c, errors.New("transaction id must be an integer"))
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}
