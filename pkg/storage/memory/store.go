// Package memory is a process-local storage backend for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
)

// Store keeps every table in maps guarded by one mutex, so each method is a single atomic unit.
type Store struct {
	mu       sync.Mutex
	escrows  map[string]models.Escrow
	byOrder  map[string]string
	orders   map[string]models.Order
	accounts map[string]models.MerchantAccount
	entries  map[string]models.LedgerEntry
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		escrows:  make(map[string]models.Escrow),
		byOrder:  make(map[string]string),
		orders:   make(map[string]models.Order),
		accounts: make(map[string]models.MerchantAccount),
		entries:  make(map[string]models.LedgerEntry),
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func cloneEscrow(e models.Escrow) *models.Escrow {
	if e.Deductions != nil {
		e.Deductions = append([]models.Deduction(nil), e.Deductions...)
	}
	return &e
}

func (s *Store) GetEscrow(_ context.Context, escrowID string) (*models.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.escrows[escrowID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneEscrow(e), nil
}

func (s *Store) GetEscrowByOrderID(_ context.Context, orderID string) (*models.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byOrder[orderID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneEscrow(s.escrows[id]), nil
}

func (s *Store) ListEscrows(_ context.Context, q storage.ListEscrowsQuery) ([]models.Escrow, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Escrow
	for _, e := range s.escrows {
		if q.Matches(&e) {
			matched = append(matched, *cloneEscrow(e))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].Id < matched[j].Id
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if q.Offset >= total {
		return []models.Escrow{}, total, nil
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < total {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total, nil
}

func (s *Store) ListDueForAutoRelease(_ context.Context, now time.Time, limit int32) ([]models.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []models.Escrow
	for _, e := range s.escrows {
		at := e.Timing.AutoReleaseAt
		if e.Status == models.RELEASE_REQUESTED && at != nil && !at.After(now) {
			due = append(due, *cloneEscrow(e))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].Timing.AutoReleaseAt.Before(*due[j].Timing.AutoReleaseAt)
	})
	if limit > 0 && len(due) > int(limit) {
		due = due[:limit]
	}
	return due, nil
}

func (s *Store) CreateEscrow(_ context.Context, escrow *models.Escrow, link *storage.OrderPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.escrows[escrow.Id]; ok {
		return storage.ErrEscrowExists
	}
	if _, ok := s.byOrder[escrow.OrderId]; ok {
		return storage.ErrEscrowExists
	}
	if stored, ok := s.orders[escrow.OrderId]; ok && stored.EscrowId != "" {
		return storage.ErrEscrowExists
	}

	s.escrows[escrow.Id] = *cloneEscrow(*escrow)
	s.byOrder[escrow.OrderId] = escrow.Id
	if link != nil {
		s.patchOrder(link)
	}
	return nil
}

// patchOrder merges an escrow write-back into the stored order. Callers hold mu.
func (s *Store) patchOrder(p *storage.OrderPatch) {
	o, ok := s.orders[p.OrderID]
	if !ok {
		o = models.Order{Id: p.OrderID}
	}
	p.Apply(&o)
	s.orders[p.OrderID] = o
}

// guard checks the status and version of the stored escrow. Callers hold mu.
func (s *Store) guard(t storage.Transition) error {
	current, ok := s.escrows[t.Escrow.Id]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Status != t.From || current.Version != t.Escrow.Version {
		return storage.ErrStatusConflict
	}
	return nil
}

// apply writes a guarded transition. Callers hold mu and have run guard.
func (s *Store) apply(t storage.Transition) {
	t.Escrow.Version++
	s.escrows[t.Escrow.Id] = *cloneEscrow(*t.Escrow)
	if t.Order != nil {
		s.patchOrder(t.Order)
	}
}

func (s *Store) TransitionEscrow(_ context.Context, t storage.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.guard(t); err != nil {
		return err
	}
	s.apply(t)
	return nil
}

func (s *Store) ReleaseEscrow(_ context.Context, r storage.ReleaseRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.guard(r.Transition); err != nil {
		return err
	}
	if _, credited := s.entries[r.Credit.Entry.EntryID]; credited {
		return storage.ErrStatusConflict
	}

	account := s.accounts[r.Credit.MerchantID]
	r.Credit.Apply(&account)
	s.accounts[r.Credit.MerchantID] = account
	s.entries[r.Credit.Entry.EntryID] = r.Credit.Entry
	s.apply(r.Transition)
	return nil
}

func (s *Store) GetOrder(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &o, nil
}

func (s *Store) SaveOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[order.Id] = *order
	return nil
}

func (s *Store) GetMerchantAccount(_ context.Context, merchantID string) (*models.MerchantAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[merchantID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &a, nil
}

func (s *Store) ListLedgerEntries(_ context.Context, merchantID string, limit int32) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LedgerEntry
	for _, e := range s.entries {
		if e.MerchantID == merchantID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}
