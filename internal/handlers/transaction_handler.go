package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/pagination"
	"kopilka/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for recording a transaction.
type CreateTransactionRequest struct {
	Amount      decimal.Decimal        `json:"amount"`
	Currency    string                 `json:"currency" binding:"omitempty,iso4217"`
	Kind        models.TransactionKind `json:"kind" binding:"omitempty,transaction_kind"`
	Category    string                 `json:"category" binding:"max=100"`
	Description string                 `json:"description" binding:"max=500"`
	Merchant    string                 `json:"merchant" binding:"max=100"`
	Date        *time.Time             `json:"date"`
}

// ParseTransactionRequest carries free text for the parser.
type ParseTransactionRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// CorrectLastRequest edits the caller's most recent transaction.
type CorrectLastRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
}

// ReassignCategoryRequest moves a transaction to another category.
type ReassignCategoryRequest struct {
	Category string `json:"category" binding:"required,max=100"`
}

// CreateTransaction records a manually entered transaction.
// @Summary     Create transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.Create(householdID, optionalUserID(c), services.CreateTransactionInput{
		Amount:      req.Amount,
		Currency:    req.Currency,
		Kind:        req.Kind,
		Category:    req.Category,
		Description: req.Description,
		Merchant:    req.Merchant,
		Date:        req.Date,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ParseTransaction records a transaction described in free text.
// @Summary     Create transaction from text
// @Description Let the language model extract amount, currency, category and kind from a message
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ParseTransactionRequest true "Free text"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Parser failed"
// @Router      /transactions/parse [post]
func (h *TransactionHandler) ParseTransaction(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ParseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateFromText(c.Request.Context(), householdID, optionalUserID(c), req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// ListTransactions returns the household's transactions, newest first.
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       from_date query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       to_date   query string false "End date (RFC3339 or YYYY-MM-DD)"
// @Param       kind      query string false "expense or income"
// @Param       category  query string false "Category name"
// @Param       user_id   query int    false "Member user ID"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.List(householdID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CorrectLastTransaction edits the caller's most recent transaction.
// @Summary     Correct last transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CorrectLastRequest true "New amount and/or description"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "No transaction"
// @Router      /transactions/last [patch]
func (h *TransactionHandler) CorrectLastTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CorrectLastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if req.Amount == nil && req.Description == nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount or description is required"))
		return
	}

	transaction, err := h.transactionService.CorrectLast(householdID, userID, req.Amount, req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteLastTransaction removes the caller's most recent transaction.
// @Summary     Undo last transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Transaction "Transaction removed"
// @Failure     404 {object} ErrorResponse "No transaction"
// @Router      /transactions/last [delete]
func (h *TransactionHandler) DeleteLastTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.DeleteLast(householdID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(householdID, &userID, "DELETE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount.StringFixed(2), "category": transaction.Category})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// ReassignCategory moves a transaction to another category.
// @Summary     Reassign transaction category
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path int                     true "Transaction ID"
// @Param       request body ReassignCategoryRequest true "Category name"
// @Success     200 {object} models.Transaction "Transaction updated"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/category [put]
func (h *TransactionHandler) ReassignCategory(c *gin.Context) {
	householdID, err := getHouseholdID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReassignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.ReassignCategory(householdID, optionalUserID(c), transactionID, req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid from_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.FromDate = &t
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid to_date format, use RFC3339 or YYYY-MM-DD")
		}
		filter.ToDate = &t
	}

	if v := c.Query("kind"); v != "" {
		kind := models.TransactionKind(v)
		if !kind.Valid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid kind, must be expense or income")
		}
		filter.Kind = &kind
	}

	if v := c.Query("category"); v != "" {
		filter.Category = &v
	}

	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid user_id")
		}
		uid := uint(id)
		filter.UserID = &uid
	}

	return filter, nil
}

// parseFlexibleTime accepts RFC3339 or a bare YYYY-MM-DD date (UTC midnight).
func parseFlexibleTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, v)
}
