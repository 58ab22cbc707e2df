package handler

import (
	"errors"
	"log/slog"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles HTTP requests for account operations
type AccountHandler struct {
	accountService service.AccountService
	logger         *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		logger:         logger,
	}
}

// List returns every account ordered by id
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		RespondWithFailure(c, err)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acc := range accounts {
		responses = append(responses, mapAccountToResponse(acc))
	}
	RespondOK(c, responses)
}

// GetByID retrieves an account by its ID, returning 404 if not found
func (h *AccountHandler) GetByID(c *gin.Context) {
	id := c.Param("id")

	acc, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "account_id", id, "error", err)
		RespondWithFailure(c, err)
		return
	}

	RespondOK(c, mapAccountToResponse(acc))
}

// GetTransactions returns every transaction touching the account, newest first
func (h *AccountHandler) GetTransactions(c *gin.Context) {
	id := c.Param("id")

	txns, err := h.accountService.GetAccountTransactions(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		RespondWithFailure(c, err)
		return
	}

	RespondOK(c, mapTransactionsToResponse(txns))
}
