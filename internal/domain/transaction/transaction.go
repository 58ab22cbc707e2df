package transaction

import (
	"time"

	"github.com/bank-transaction-engine/internal/domain/account"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaxRemarkLength bounds the free-text remark
const MaxRemarkLength = 255

// Transaction is a single money movement between at most two accounts.
// FromAccount and ToAccount are snapshots taken when the transaction was resolved,
// never live ledger records.
type Transaction struct {
	ID              string                   `json:"id"`
	Amount          decimal.Decimal          `json:"amount"`
	Type            shared.TransactionType   `json:"type"`
	Status          shared.TransactionStatus `json:"status"`
	Currency        shared.Currency          `json:"currency"`
	Channel         string                   `json:"channel"`
	ReferenceNumber string                   `json:"-"`
	IdempotencyKey  string                   `json:"-"`
	Direction       shared.Direction         `json:"direction"`
	Remark          string                   `json:"remark,omitempty"`
	FromAccountID   string                   `json:"from_account_id,omitempty"`
	ToAccountID     string                   `json:"to_account_id,omitempty"`
	FromAccount     *account.Account         `json:"-"`
	ToAccount       *account.Account         `json:"-"`
	InitiatedBy     string                   `json:"initiated_by,omitempty"`
	ApprovedBy      string                   `json:"approved_by,omitempty"`
	Timestamp       time.Time                `json:"timestamp"`
}

// Clone returns a deep copy, including the account snapshots
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	cp := *t
	cp.FromAccount = t.FromAccount.Snapshot()
	cp.ToAccount = t.ToAccount.Snapshot()
	return &cp
}

// Editable reports whether the remark may still be changed
func (t *Transaction) Editable() bool {
	return t.Status == shared.TransactionStatusPending || t.Status == shared.TransactionStatusFailed
}

// Involves reports whether accountID is the source or destination
func (t *Transaction) Involves(accountID string) bool {
	return accountID != "" && (t.FromAccountID == accountID || t.ToAccountID == accountID)
}

// RemarkPatch carries the only field an update may change. A nil Remark leaves it untouched.
type RemarkPatch struct {
	Remark *string
}

// Page is one slice of the newest-first transaction listing
type Page struct {
	Items    []*Transaction
	Page     int
	PageSize int
	Total    int
}

// MaxPage is the number of pages needed to hold Total items
func (p Page) MaxPage() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

func (p Page) HasNext() bool {
	return p.Page < p.MaxPage()-1
}

func (p Page) HasPrevious() bool {
	return p.Page > 0
}
