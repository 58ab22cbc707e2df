package event

import (
	"encoding/json"
	"time"

	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
)

// Kind selects the downstream consumer of a message
type Kind string

const (
	KindRiskCheck    Kind = "RISK_CHECK"
	KindNotification Kind = "NOTIFICATION"
)

// DeliveryStatus defines message publishing states
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "PENDING"
	DeliveryStatusDelivered DeliveryStatus = "DELIVERED"
	DeliveryStatusFailed    DeliveryStatus = "FAILED"
)

// Message is a post-processing event keyed by transaction id
type Message struct {
	Kind          Kind             `json:"kind"`
	TransactionID string           `json:"transaction_id"`
	Operation     shared.Operation `json:"operation"`
	Payload       json.RawMessage  `json:"payload"`
	Status        DeliveryStatus   `json:"status"`
	Attempts      int              `json:"attempts"`
	CreatedAt     time.Time        `json:"created_at"`
	LastAttemptAt *time.Time       `json:"last_attempt_at,omitempty"`
}

func NewMessage(kind Kind, transactionID string, op shared.Operation, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Message{
		Kind:          kind,
		TransactionID: transactionID,
		Operation:     op,
		Payload:       raw,
		Status:        DeliveryStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsDelivered() {
	m.Status = DeliveryStatusDelivered
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = DeliveryStatusFailed
	now := time.Now()
	m.LastAttemptAt = &now
}

// RiskCheck is the payload of a KindRiskCheck message
type RiskCheck struct {
	TransactionID string                 `json:"transaction_id"`
	Type          shared.TransactionType `json:"type"`
	Amount        string                 `json:"amount"`
	Currency      shared.Currency        `json:"currency"`
	FromAccountID string                 `json:"from_account_id,omitempty"`
	ToAccountID   string                 `json:"to_account_id,omitempty"`
	Channel       string                 `json:"channel,omitempty"`
	LargeAmount   bool                   `json:"large_amount"`
}

func NewRiskCheck(txn *transaction.Transaction, largeAmount bool) RiskCheck {
	return RiskCheck{
		TransactionID: txn.ID,
		Type:          txn.Type,
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		FromAccountID: txn.FromAccountID,
		ToAccountID:   txn.ToAccountID,
		Channel:       txn.Channel,
		LargeAmount:   largeAmount,
	}
}

// LowBalanceAlert flags an account left below the configured threshold
type LowBalanceAlert struct {
	AccountID string `json:"account_id"`
	Balance   string `json:"balance"`
	Threshold string `json:"threshold"`
}

// Notification is the payload of a KindNotification message
type Notification struct {
	TransactionID string                   `json:"transaction_id"`
	Operation     shared.Operation         `json:"operation"`
	Type          shared.TransactionType   `json:"type"`
	Status        shared.TransactionStatus `json:"status"`
	Amount        string                   `json:"amount"`
	Currency      shared.Currency          `json:"currency"`
	Remark        string                   `json:"remark,omitempty"`
	LowBalance    []LowBalanceAlert        `json:"low_balance,omitempty"`
}

func NewNotification(txn *transaction.Transaction, op shared.Operation, alerts []LowBalanceAlert) Notification {
	return Notification{
		TransactionID: txn.ID,
		Operation:     op,
		Type:          txn.Type,
		Status:        txn.Status,
		Amount:        txn.Amount.String(),
		Currency:      txn.Currency,
		Remark:        txn.Remark,
		LowBalance:    alerts,
	}
}
