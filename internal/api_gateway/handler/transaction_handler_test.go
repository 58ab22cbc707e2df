package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bank-transaction-engine/internal/api_gateway/middleware"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/bank-transaction-engine/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// envelope is Response with a typed payload for decoding in tests
type envelope[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) CreateTransaction(ctx context.Context, candidate *transaction.Transaction) (*transaction.Transaction, error) {
	args := m.Called(ctx, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) UpdateTransaction(ctx context.Context, id string, patch transaction.RemarkPatch) (*transaction.Transaction, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) DeleteTransaction(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransactionService) GetTransaction(ctx context.Context, id string) (*transaction.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Transaction), args.Error(1)
}

func (m *MockTransactionService) ListTransactions(ctx context.Context, page, size int) (*transaction.Page, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transaction.Page), args.Error(1)
}

func setupTransactionRouter(svc *MockTransactionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewTransactionHandler(logger.Discard(), svc)

	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.POST("/api/v1/transactions", h.Create)
	router.GET("/api/v1/transactions", h.List)
	router.GET("/api/v1/transactions/:id", h.GetByID)
	router.PATCH("/api/v1/transactions/:id", h.Update)
	router.DELETE("/api/v1/transactions/:id", h.Delete)
	router.POST("/api/transactions/create", h.LegacyCreate)
	router.POST("/api/transactions/update", h.LegacyUpdate)
	router.POST("/api/transactions/delete", h.LegacyDelete)
	router.POST("/api/transactions/:id", h.GetByID)
	router.POST("/api/transactions", h.List)
	return router
}

func doJSON(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.CorrelationIDHeader, "corr-test")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func storedTransfer() *transaction.Transaction {
	return &transaction.Transaction{
		ID:              "TXN20240601ABCDEFGH",
		Type:            shared.TransactionTypeTransfer,
		Status:          shared.TransactionStatusCompleted,
		Amount:          decimal.RequireFromString("1000.50"),
		Currency:        shared.CurrencyCNY,
		Channel:         "ONLINE",
		Direction:       shared.DirectionOut,
		ReferenceNumber: "REF20240601093015123456",
		IdempotencyKey:  "IDM1717234215000ABCDEFGH",
		FromAccountID:   "ACC001",
		ToAccountID:     "ACC002",
		Timestamp:       time.Date(2024, 6, 1, 9, 30, 15, 0, time.UTC),
	}
}

func TestTransactionHandler_Create(t *testing.T) {
	validBody := map[string]any{
		"type":            "transfer",
		"amount":          "1000.50",
		"currency":        "cny",
		"channel":         "ONLINE",
		"from_account_id": "ACC001",
		"to_account_id":   "ACC002",
		"idempotency_key": "client-key",
	}

	tests := []struct {
		name       string
		target     string
		body       any
		setupMock  func(svc *MockTransactionService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "created",
			target: "/api/v1/transactions",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(c *transaction.Transaction) bool {
					return c.Type == shared.TransactionTypeTransfer &&
						c.Amount.Equal(decimal.RequireFromString("1000.50")) &&
						c.Currency == shared.CurrencyCNY &&
						c.FromAccountID == "ACC001" &&
						c.IdempotencyKey == "client-key"
				})).Return(storedTransfer(), nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "legacy create answers 200",
			target: "/api/transactions/create",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.Anything).Return(storedTransfer(), nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "malformed json",
			target:     "/api/v1/transactions",
			body:       `{"type":`,
			setupMock:  func(svc *MockTransactionService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "missing channel",
			target:     "/api/v1/transactions",
			body:       map[string]any{"type": "DEPOSIT", "amount": 10, "currency": "CNY", "to_account_id": "ACC001"},
			setupMock:  func(svc *MockTransactionService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "non-positive amount",
			target:     "/api/v1/transactions",
			body:       map[string]any{"type": "DEPOSIT", "amount": 0, "currency": "CNY", "channel": "ATM", "to_account_id": "ACC001"},
			setupMock:  func(svc *MockTransactionService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "unsupported currency",
			target:     "/api/v1/transactions",
			body:       map[string]any{"type": "DEPOSIT", "amount": 10, "currency": "XXX", "channel": "ATM", "to_account_id": "ACC001"},
			setupMock:  func(svc *MockTransactionService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:   "validation failure",
			target: "/api/v1/transactions",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.Anything).
					Return(nil, shared.NewValidationFailure("source and destination account must differ")).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "3000",
		},
		{
			name:   "insufficient funds",
			target: "/api/v1/transactions",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.Anything).
					Return(nil, shared.NewInsufficientFundsFailure(nil, "insufficient balance")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "2002",
		},
		{
			name:   "invalid account",
			target: "/api/v1/transactions",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.Anything).
					Return(nil, shared.NewInvalidAccountFailure(nil, "source account not found: ACC001")).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "3002",
		},
		{
			name:   "duplicate request",
			target: "/api/v1/transactions",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.Anything).
					Return(nil, shared.NewConflictFailure("duplicate transaction request")).Once()
			},
			wantStatus: http.StatusConflict,
			wantCode:   "2003",
		},
		{
			name:   "system failure",
			target: "/api/v1/transactions",
			body:   validBody,
			setupMock: func(svc *MockTransactionService) {
				svc.On("CreateTransaction", mock.Anything, mock.Anything).
					Return(nil, shared.NewSystemFailure(errors.New("disk on fire"))).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "1000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTransactionService)
			tt.setupMock(svc)
			router := setupTransactionRouter(svc)

			rr := doJSON(router, http.MethodPost, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())

			var resp envelope[TransactionResponse]
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, "corr-test", resp.CorrelationID)

			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotContains(t, resp.Error.Message, "disk on fire")
			} else {
				assert.Nil(t, resp.Error)
				assert.Equal(t, "TXN20240601ABCDEFGH", resp.Data.ID)
				assert.Equal(t, "1000.5", resp.Data.Amount)
				assert.Equal(t, "OUT", resp.Data.Direction)
				assert.Equal(t, "COMPLETED", resp.Data.Status)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestTransactionHandler_GetByID(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		result     *transaction.Transaction
		err        error
		wantStatus int
	}{
		{name: "found", method: http.MethodGet, target: "/api/v1/transactions/TXN20240601ABCDEFGH", result: storedTransfer(), wantStatus: http.StatusOK},
		{name: "legacy lookup", method: http.MethodPost, target: "/api/transactions/TXN20240601ABCDEFGH", result: storedTransfer(), wantStatus: http.StatusOK},
		{
			name:       "not found",
			method:     http.MethodGet,
			target:     "/api/v1/transactions/TXN20240601ABCDEFGH",
			err:        shared.NewNotFoundFailure(transaction.ErrTransactionNotFound{ID: "TXN20240601ABCDEFGH"}, "transaction not found"),
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockTransactionService)
			if tt.result != nil {
				svc.On("GetTransaction", mock.Anything, "TXN20240601ABCDEFGH").Return(tt.result, nil).Once()
			} else {
				svc.On("GetTransaction", mock.Anything, "TXN20240601ABCDEFGH").Return(nil, tt.err).Once()
			}
			router := setupTransactionRouter(svc)

			rr := doJSON(router, tt.method, tt.target, nil)
			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestTransactionHandler_List(t *testing.T) {
	t.Run("defaults and page info", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("ListTransactions", mock.MatchedBy(func(ctx context.Context) bool {
			return shared.CorrelationID(ctx) == "corr-test"
		}), 0, 20).Return(&transaction.Page{
			Items:    []*transaction.Transaction{storedTransfer()},
			Page:     0,
			PageSize: 20,
			Total:    41,
		}, nil).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodGet, "/api/v1/transactions", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp envelope[[]TransactionResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, 0, resp.Meta.Page)
		assert.Equal(t, 20, resp.Meta.PageSize)
		assert.Equal(t, 41, resp.Meta.Total)
		assert.Equal(t, 3, resp.Meta.MaxPage)
		assert.True(t, resp.Meta.HasNext)
		assert.False(t, resp.Meta.HasPrevious)
		svc.AssertExpectations(t)
	})

	t.Run("legacy list reads query parameters", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("ListTransactions", mock.Anything, 2, 5).Return(&transaction.Page{Page: 2, PageSize: 5, Total: 11}, nil).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodPost, "/api/transactions?page=2&size=5", nil)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp envelope[[]TransactionResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Empty(t, resp.Data)
		assert.True(t, resp.Meta.HasPrevious)
		assert.False(t, resp.Meta.HasNext)
	})

	t.Run("out of range size", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("ListTransactions", mock.Anything, 0, 500).
			Return(nil, shared.NewValidationFailure("size must be between 1 and 100")).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodGet, "/api/v1/transactions?size=500", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("non-numeric page", func(t *testing.T) {
		svc := new(MockTransactionService)
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodGet, "/api/v1/transactions?page=first", nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTransactionHandler_Update(t *testing.T) {
	remark := "corrected reference"
	withRemark := func(p transaction.RemarkPatch) bool { return p.Remark != nil && *p.Remark == remark }

	t.Run("patch", func(t *testing.T) {
		svc := new(MockTransactionService)
		updated := storedTransfer()
		updated.Status = shared.TransactionStatusPending
		updated.Remark = remark
		svc.On("UpdateTransaction", mock.Anything, "TXN20240601ABCDEFGH", mock.MatchedBy(withRemark)).Return(updated, nil).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodPatch, "/api/v1/transactions/TXN20240601ABCDEFGH", map[string]any{"remark": remark})
		require.Equal(t, http.StatusOK, rr.Code)

		var resp envelope[TransactionResponse]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, remark, resp.Data.Remark)
	})

	t.Run("legacy update carries the id in the body", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("UpdateTransaction", mock.Anything, "TXN20240601ABCDEFGH", mock.MatchedBy(withRemark)).
			Return(nil, shared.NewValidationFailure("completed transactions cannot be modified")).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodPost, "/api/transactions/update", map[string]any{
			"id":          "TXN20240601ABCDEFGH",
			"transaction": map[string]any{"remark": remark},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("absent remark is passed as nil", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("UpdateTransaction", mock.Anything, "TXN20240601ABCDEFGH", transaction.RemarkPatch{}).Return(storedTransfer(), nil).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodPatch, "/api/v1/transactions/TXN20240601ABCDEFGH", map[string]any{})
		assert.Equal(t, http.StatusOK, rr.Code)
		svc.AssertExpectations(t)
	})

	t.Run("legacy update without id", func(t *testing.T) {
		svc := new(MockTransactionService)
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodPost, "/api/transactions/update", map[string]any{"transaction": map[string]any{"remark": remark}})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestTransactionHandler_Delete(t *testing.T) {
	rejection := shared.NewValidationFailure("transaction records cannot be deleted")

	t.Run("delete is rejected", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("DeleteTransaction", mock.Anything, "TXN20240601ABCDEFGH").Return(rejection).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodDelete, "/api/v1/transactions/TXN20240601ABCDEFGH", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var resp envelope[any]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "3000", resp.Error.Code)
		assert.Equal(t, string(shared.FailureKindValidation), resp.Error.Kind)
	})

	t.Run("legacy delete is rejected", func(t *testing.T) {
		svc := new(MockTransactionService)
		svc.On("DeleteTransaction", mock.Anything, "TXN20240601ABCDEFGH").Return(rejection).Once()
		router := setupTransactionRouter(svc)

		rr := doJSON(router, http.MethodPost, "/api/transactions/delete", map[string]any{"id": "TXN20240601ABCDEFGH"})
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		svc.AssertExpectations(t)
	})
}
