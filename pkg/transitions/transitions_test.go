package transitions

import (
	"fmt"
	"testing"

	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateGrid(t *testing.T) {
	legal := map[string]bool{
		"INITIATED->HELD":                 true,
		"INITIATED->REFUNDED":             true,
		"INITIATED->DISPUTE_OPEN":         true,
		"HELD->RELEASE_REQUESTED":         true,
		"HELD->REFUNDED":                  true,
		"HELD->DISPUTE_OPEN":              true,
		"RELEASE_REQUESTED->RELEASED":     true,
		"RELEASE_REQUESTED->REFUNDED":     true,
		"RELEASE_REQUESTED->DISPUTE_OPEN": true,
		"DISPUTE_OPEN->RELEASED":          true,
		"DISPUTE_OPEN->REFUNDED":          true,
	}

	for _, from := range Statuses() {
		for _, to := range Statuses() {
			key := fmt.Sprintf("%s->%s", from, to)
			t.Run(key, func(t *testing.T) {
				err := Validate(from, to)
				if legal[key] {
					assert.NoError(t, err)
					return
				}
				assert.Error(t, err)
				assert.True(t, escrowerr.IsStateConflict(err))
			})
		}
	}
}

func TestValidateUnknownStatus(t *testing.T) {
	err := Validate(models.EscrowStatus("PAUSED"), models.HELD)

	assert.True(t, escrowerr.IsStateConflict(err))
	assert.Contains(t, err.Error(), "unknown current status")
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.RELEASED))
	assert.True(t, IsTerminal(models.REFUNDED))
	assert.False(t, IsTerminal(models.DISPUTE_OPEN))
	assert.False(t, IsTerminal(models.EscrowStatus("PAUSED")))
}

func TestAllowedReturnsCopy(t *testing.T) {
	next := Allowed(models.HELD)
	next[0] = models.RELEASED

	assert.Equal(t, models.RELEASE_REQUESTED, Allowed(models.HELD)[0])
}
