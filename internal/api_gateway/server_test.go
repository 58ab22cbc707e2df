package api_gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bank-transaction-engine/internal/config"
	"github.com/bank-transaction-engine/internal/data/memory"
	"github.com/bank-transaction-engine/internal/logger"
	"github.com/bank-transaction-engine/internal/transaction_processor/components"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
	CorrelationID string `json:"correlation_id"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	minimum := decimal.RequireFromString("0.01")
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 8080},
		Limits: config.LimitConfig{MinimumTransactionAmount: &minimum},
		WorkerPool: config.WorkerPoolConfig{
			Size:               2,
			FetcherConcurrency: 2,
			SettlementWait:     2 * time.Second,
		},
	}

	ledger := memory.NewAccountLedger(log)
	require.NoError(t, memory.Seed(context.Background(), ledger, memory.NewBuiltinSource(), log))

	engine, err := components.CreateTransactionEngine(
		ledger,
		memory.NewTransactionStore(4),
		memory.NewTimeIndex(),
		components.NewLogAuditSink(log),
		components.NewLogEventPublisher(log),
		log,
		cfg,
	)
	require.NoError(t, err)
	t.Cleanup(func() { engine.PostProcessing.Shutdown(time.Second) })

	return NewServer(log, cfg, engine.Accounts, engine.Transactions)
}

func call(t *testing.T, s *Server, method, target string, body any) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	var resp apiResponse
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), rr.Body.String())
	}
	return rr.Code, resp
}

func TestServer_TransactionLifecycle(t *testing.T) {
	s := newTestServer(t)

	status, resp := call(t, s, http.MethodPost, "/api/v1/transactions", map[string]any{
		"type":            "TRANSFER",
		"amount":          1000,
		"currency":        "CNY",
		"channel":         "ONLINE",
		"from_account_id": "ACC001",
		"to_account_id":   "ACC002",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, resp.CorrelationID)

	var created struct {
		ID        string `json:"id"`
		Status    string `json:"status"`
		Direction string `json:"direction"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "COMPLETED", created.Status)
	assert.Equal(t, "OUT", created.Direction)

	status, resp = call(t, s, http.MethodGet, "/api/v1/accounts/ACC001", nil)
	require.Equal(t, http.StatusOK, status)
	var from struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &from))
	assert.Equal(t, "9000", from.Balance)

	status, _ = call(t, s, http.MethodPost, "/api/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, resp = call(t, s, http.MethodPatch, "/api/v1/transactions/"+created.ID, map[string]any{"remark": "late note"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "3000", resp.Error.Code)

	status, _ = call(t, s, http.MethodDelete, "/api/v1/transactions/"+created.ID, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, resp = call(t, s, http.MethodGet, "/api/v1/transactions?page=0&size=10", nil)
	require.Equal(t, http.StatusOK, status)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 1)

	status, resp = call(t, s, http.MethodGet, "/api/v1/accounts/ACC002/transactions", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &items))
	assert.Len(t, items, 1)
}

func TestServer_Rejections(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "withdrawal of the full balance",
			body:       map[string]any{"type": "WITHDRAWAL", "amount": 5000, "currency": "CNY", "channel": "ATM", "from_account_id": "ACC002"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "2002",
		},
		{
			name:       "self transfer",
			body:       map[string]any{"type": "TRANSFER", "amount": 1, "currency": "CNY", "channel": "ATM", "from_account_id": "ACC001", "to_account_id": "ACC001"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "3000",
		},
		{
			name:       "frozen source",
			body:       map[string]any{"type": "WITHDRAWAL", "amount": 1, "currency": "CNY", "channel": "ATM", "from_account_id": "ACC005"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "3002",
		},
		{
			name:       "unknown account",
			body:       map[string]any{"type": "DEPOSIT", "amount": 1, "currency": "CNY", "channel": "ATM", "to_account_id": "ACC999"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "3002",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := call(t, s, http.MethodPost, "/api/transactions/create", tt.body)
			require.Equal(t, tt.wantStatus, status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}
