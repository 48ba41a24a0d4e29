package storage

import (
	"context"

	"github.com/chris/order-escrow/pkg/models"
)

// LedgerReader defines the interface for reading ledger data.
type LedgerReader interface {
	// GetMerchantAccount retrieves a merchant's balances.
	GetMerchantAccount(ctx context.Context, merchantID string) (*models.MerchantAccount, error)

	// ListLedgerEntries retrieves a merchant's most recent ledger entries.
	ListLedgerEntries(ctx context.Context, merchantID string, limit int32) ([]models.LedgerEntry, error)
}
