package escrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/policy"
	"github.com/chris/order-escrow/pkg/storage"
	"github.com/chris/order-escrow/pkg/transitions"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	MaxLedgerEntries = 100
)

// Filter narrows an escrow listing. Zero values match everything.
type Filter struct {
	MerchantID    string
	Status        models.EscrowStatus
	PaymentMethod models.PaymentMethod
}

// PageRequest selects a window of a listing.
type PageRequest struct {
	Offset int
	Limit  int
}

// Page is one window of an escrow listing.
type Page struct {
	Items  []models.Escrow `json:"items"`
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

// GetEscrow returns an escrow the actor may see.
func (s *Service) GetEscrow(ctx context.Context, actor Actor, escrowID string) (*models.Escrow, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	e, err := s.store.GetEscrow(ctx, escrowID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, escrowerr.NotFound("escrow", escrowID)
		}
		return nil, fmt.Errorf("failed to get escrow %s: %w", escrowID, err)
	}
	if !actor.canActFor(e.MerchantId) {
		return nil, escrowerr.Unauthorized("escrow %s belongs to another merchant", escrowID)
	}
	return e, nil
}

// ListEscrows pages through escrows newest first. Merchants only ever see their own.
func (s *Service) ListEscrows(ctx context.Context, actor Actor, f Filter, pr PageRequest) (*Page, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if actor.Role == RoleMerchant {
		if f.MerchantID != "" && f.MerchantID != actor.ID {
			return nil, escrowerr.Unauthorized("merchant %s may not list escrows of merchant %s", actor.ID, f.MerchantID)
		}
		f.MerchantID = actor.ID
	}
	if f.Status != "" && !knownStatus(f.Status) {
		return nil, escrowerr.Validation("unknown escrow status %q", f.Status)
	}
	if f.PaymentMethod != "" && !policy.Valid(f.PaymentMethod) {
		return nil, escrowerr.Validation("unsupported payment method %q", f.PaymentMethod)
	}
	if pr.Offset < 0 {
		return nil, escrowerr.Validation("offset must not be negative")
	}
	switch {
	case pr.Limit < 0:
		return nil, escrowerr.Validation("limit must not be negative")
	case pr.Limit == 0:
		pr.Limit = DefaultPageLimit
	case pr.Limit > MaxPageLimit:
		pr.Limit = MaxPageLimit
	}

	items, total, err := s.store.ListEscrows(ctx, storage.ListEscrowsQuery{
		MerchantID:    f.MerchantID,
		Status:        f.Status,
		PaymentMethod: f.PaymentMethod,
		Offset:        pr.Offset,
		Limit:         pr.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list escrows: %w", err)
	}
	if items == nil {
		items = []models.Escrow{}
	}
	return &Page{Items: items, Total: total, Offset: pr.Offset, Limit: pr.Limit}, nil
}

func knownStatus(status models.EscrowStatus) bool {
	for _, s := range transitions.Statuses() {
		if s == status {
			return true
		}
	}
	return false
}

// ListDueForAutoRelease returns RELEASE_REQUESTED escrows whose auto-release time is at or before now.
func (s *Service) ListDueForAutoRelease(ctx context.Context, now time.Time) ([]models.Escrow, error) {
	due, err := s.store.ListDueForAutoRelease(ctx, now.UTC(), s.dueBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to list escrows due for auto-release: %w", err)
	}
	return due, nil
}

// GetMerchantAccount returns a merchant's balances.
func (s *Service) GetMerchantAccount(ctx context.Context, actor Actor, merchantID string) (*models.MerchantAccount, error) {
	if err := actor.requireMerchantOrPrivileged(merchantID); err != nil {
		return nil, err
	}
	account, err := s.store.GetMerchantAccount(ctx, merchantID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, escrowerr.NotFound("merchant account", merchantID)
		}
		return nil, fmt.Errorf("failed to get merchant account %s: %w", merchantID, err)
	}
	return account, nil
}

// ListLedgerEntries returns a merchant's most recent credits.
func (s *Service) ListLedgerEntries(ctx context.Context, actor Actor, merchantID string, limit int32) ([]models.LedgerEntry, error) {
	if err := actor.requireMerchantOrPrivileged(merchantID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > MaxLedgerEntries {
		limit = MaxLedgerEntries
	}
	entries, err := s.store.ListLedgerEntries(ctx, merchantID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries for merchant %s: %w", merchantID, err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}
