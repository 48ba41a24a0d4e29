// Package ledger builds the merchant credit recorded when an escrow is released.
package ledger

import (
	"fmt"
	"time"

	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
)

// Credit is a pending increment to a merchant account and the entry recording it.
type Credit struct {
	MerchantID string
	EscrowID   string
	Amount     int64
	Entry      models.LedgerEntry
}

// EntryID is deterministic per escrow so a second credit for the same escrow collides.
func EntryID(escrowID string) string {
	return "credit#" + escrowID
}

// NewCredit validates and builds the credit for a release.
func NewCredit(merchantID, escrowID string, amount int64, at time.Time) (Credit, error) {
	if merchantID == "" || escrowID == "" {
		return Credit{}, escrowerr.Validation("ledger credit requires merchant and escrow ids")
	}
	if amount < 0 {
		return Credit{}, escrowerr.Validation("ledger credit must not be negative")
	}
	return Credit{
		MerchantID: merchantID,
		EscrowID:   escrowID,
		Amount:     amount,
		Entry: models.LedgerEntry{
			EntryID:     EntryID(escrowID),
			EscrowID:    escrowID,
			MerchantID:  merchantID,
			Credit:      amount,
			Description: fmt.Sprintf("Release of escrow %s", escrowID),
			Timestamp:   at,
		},
	}, nil
}

// Apply adds the credit to an account snapshot. Stores that cannot increment in place use it.
func (c Credit) Apply(account *models.MerchantAccount) {
	account.MerchantId = c.MerchantID
	account.AvailableBalance += c.Amount
	account.TotalEarnings += c.Amount
	account.UpdatedAt = c.Entry.Timestamp
}
