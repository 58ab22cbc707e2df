package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles HTTP requests for transaction operations
type TransactionHandler struct {
	transactionService service.TransactionService
	logger             *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		logger:             logger,
	}
}

// Create books a new transaction and answers 201 with the stored record
func (h *TransactionHandler) Create(c *gin.Context) {
	if txn, ok := h.create(c); ok {
		RespondCreated(c, mapTransactionToResponse(txn))
	}
}

// LegacyCreate is Create behind POST /api/transactions/create, answering 200
func (h *TransactionHandler) LegacyCreate(c *gin.Context) {
	if txn, ok := h.create(c); ok {
		RespondOK(c, mapTransactionToResponse(txn))
	}
}

func (h *TransactionHandler) create(c *gin.Context) (*transaction.Transaction, bool) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return nil, false
	}

	if !req.Amount.IsPositive() {
		RespondBadRequest(c, "amount must be greater than 0")
		return nil, false
	}

	currency := shared.Currency(strings.ToUpper(req.Currency))
	if !currency.Valid() {
		RespondBadRequest(c, "Unsupported currency: "+req.Currency)
		return nil, false
	}

	candidate := &transaction.Transaction{
		Type:            shared.TransactionType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Amount:          req.Amount,
		Currency:        currency,
		Channel:         req.Channel,
		FromAccountID:   req.FromAccountID,
		ToAccountID:     req.ToAccountID,
		Remark:          req.Remark,
		ReferenceNumber: req.ReferenceNumber,
		IdempotencyKey:  req.IdempotencyKey,
		InitiatedBy:     req.InitiatedBy,
		ApprovedBy:      req.ApprovedBy,
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), candidate)
	if err != nil {
		RespondWithFailure(c, err)
		return nil, false
	}
	return txn, true
}

// List returns one newest-first page of transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.transactionService.ListTransactions(c.Request.Context(), pagination.Page, pagination.Size)
	if err != nil {
		RespondWithFailure(c, err)
		return
	}
	RespondWithPage(c, page)
}

// GetByID retrieves transaction details by its ID, returns 404 if not found
func (h *TransactionHandler) GetByID(c *gin.Context) {
	h.get(c, c.Param("id"))
}

func (h *TransactionHandler) get(c *gin.Context, id string) {
	txn, err := h.transactionService.GetTransaction(c.Request.Context(), id)
	if err != nil {
		RespondWithFailure(c, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(txn))
}

// Update changes the remark of a pending or failed transaction
func (h *TransactionHandler) Update(c *gin.Context) {
	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.update(c, c.Param("id"), req)
}

// LegacyUpdate is Update with the id carried in the body
func (h *TransactionHandler) LegacyUpdate(c *gin.Context) {
	var req LegacyUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.update(c, req.ID, req.Transaction)
}

func (h *TransactionHandler) update(c *gin.Context, id string, req UpdateTransactionRequest) {
	txn, err := h.transactionService.UpdateTransaction(c.Request.Context(), id, transaction.RemarkPatch{Remark: req.Remark})
	if err != nil {
		RespondWithFailure(c, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(txn))
}

// Delete is always rejected by the transaction service
func (h *TransactionHandler) Delete(c *gin.Context) {
	h.delete(c, c.Param("id"))
}

// LegacyDelete is Delete with the id carried in the body
func (h *TransactionHandler) LegacyDelete(c *gin.Context) {
	var req LegacyIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	h.delete(c, req.ID)
}

func (h *TransactionHandler) delete(c *gin.Context, id string) {
	if err := h.transactionService.DeleteTransaction(c.Request.Context(), id); err != nil {
		RespondWithFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
