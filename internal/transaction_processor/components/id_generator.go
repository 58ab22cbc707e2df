package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/bank-transaction-engine/internal/transaction_processor/service"
	"github.com/google/uuid"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// IDGeneratorImpl builds identifiers from the clock and uuid randomness
type IDGeneratorImpl struct {
	now func() time.Time
}

func NewIDGenerator() service.IDGenerator {
	return &IDGeneratorImpl{now: time.Now}
}

// TransactionID returns TXN + yyyyMMdd + 8 alphanumerics
func (g *IDGeneratorImpl) TransactionID() string {
	return "TXN" + g.now().Format("20060102") + randomSuffix(8)
}

// ReferenceNumber returns REF + yyyyMMddHHmmss + 6 alphanumerics
func (g *IDGeneratorImpl) ReferenceNumber() string {
	return "REF" + g.now().Format("20060102150405") + randomSuffix(6)
}

// IdempotencyKey returns IDM + unix millis + 8 alphanumerics
func (g *IDGeneratorImpl) IdempotencyKey() string {
	return "IDM" + strconv.FormatInt(g.now().UnixMilli(), 10) + randomSuffix(8)
}

// randomSuffix maps the random bytes of v4 uuids onto idAlphabet.
// Bytes 6 and 8 carry version and variant bits and are skipped.
func randomSuffix(n int) string {
	var b strings.Builder
	b.Grow(n)
	for b.Len() < n {
		u := uuid.New()
		for i, c := range u {
			if i == 6 || i == 8 {
				continue
			}
			if b.Len() == n {
				break
			}
			b.WriteByte(idAlphabet[int(c)%len(idAlphabet)])
		}
	}
	return b.String()
}
