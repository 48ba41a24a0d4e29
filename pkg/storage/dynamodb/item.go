package dynamodb

import (
	"github.com/chris/order-escrow/pkg/models"
)

// escrowItem is the stored shape of an escrow. AutoReleaseAt is lifted to the
// top level so the due-for-release index can range over it.
type escrowItem struct {
	models.Escrow
	AutoReleaseAt string `dynamodbav:"auto_release_at,omitempty"`
}

func toItem(e *models.Escrow) escrowItem {
	item := escrowItem{Escrow: *e}
	if e.Timing.AutoReleaseAt != nil {
		item.AutoReleaseAt = formatKeyTime(*e.Timing.AutoReleaseAt)
	}
	return item
}

func fromItems(items []escrowItem) []models.Escrow {
	out := make([]models.Escrow, len(items))
	for i := range items {
		out[i] = items[i].Escrow
	}
	return out
}
