package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements the Storage interface on PostgreSQL. Guarded writes lock
// the escrow row with SELECT ... FOR UPDATE inside a transaction.
type Store struct {
	db *gorm.DB
}

// New creates a Store over an open connection pool.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func (s *Store) GetEscrow(ctx context.Context, escrowID string) (*models.Escrow, error) {
	return s.findEscrow(ctx, "id = ?", escrowID)
}

func (s *Store) GetEscrowByOrderID(ctx context.Context, orderID string) (*models.Escrow, error) {
	return s.findEscrow(ctx, "order_id = ?", orderID)
}

func (s *Store) findEscrow(ctx context.Context, query string, arg string) (*models.Escrow, error) {
	var row escrowModel
	if err := s.db.WithContext(ctx).Where(query, arg).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get escrow: %w", err)
	}
	e, err := toDomainEscrow(row)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) filtered(ctx context.Context, q storage.ListEscrowsQuery) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&escrowModel{})
	if q.MerchantID != "" {
		query = query.Where("merchant_id = ?", q.MerchantID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", string(q.Status))
	}
	if q.PaymentMethod != "" {
		query = query.Where("payment_method = ?", string(q.PaymentMethod))
	}
	return query
}

func (s *Store) ListEscrows(ctx context.Context, q storage.ListEscrowsQuery) ([]models.Escrow, int, error) {
	var total int64
	if err := s.filtered(ctx, q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count escrows: %w", err)
	}

	page := s.filtered(ctx, q).Order("created_at DESC").Order("id ASC").Offset(q.Offset)
	if q.Limit > 0 {
		page = page.Limit(q.Limit)
	}
	var rows []escrowModel
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list escrows: %w", err)
	}

	out := make([]models.Escrow, 0, len(rows))
	for _, row := range rows {
		e, err := toDomainEscrow(row)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, int(total), nil
}

func (s *Store) ListDueForAutoRelease(ctx context.Context, now time.Time, limit int32) ([]models.Escrow, error) {
	query := s.db.WithContext(ctx).
		Where("status = ? AND auto_release_at <= ?", string(models.RELEASE_REQUESTED), now).
		Order("auto_release_at ASC")
	if limit > 0 {
		query = query.Limit(int(limit))
	}

	var rows []escrowModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list escrows due for release: %w", err)
	}

	out := make([]models.Escrow, 0, len(rows))
	for _, row := range rows {
		e, err := toDomainEscrow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *Store) CreateEscrow(ctx context.Context, escrow *models.Escrow, link *storage.OrderPatch) error {
	row, err := toEscrowModel(escrow)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing orderModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", escrow.OrderId).Take(&existing).Error
		switch {
		case err == nil && existing.EscrowID != nil:
			return storage.ErrEscrowExists
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("lock order: %w", err)
		}

		if err := tx.Create(&row).Error; err != nil {
			if isUniqueViolation(err) {
				return storage.ErrEscrowExists
			}
			return fmt.Errorf("insert escrow: %w", err)
		}
		if link != nil {
			return patchOrder(tx, link)
		}
		return nil
	})
}

// lockForTransition locks the escrow row and checks the guard. Callers run it inside a transaction.
func lockForTransition(tx *gorm.DB, t storage.Transition) error {
	var current escrowModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", t.Escrow.Id).Take(&current).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("lock escrow: %w", err)
	}
	if current.Status != string(t.From) || current.Version != t.Escrow.Version {
		return storage.ErrStatusConflict
	}
	return nil
}

func applyTransition(tx *gorm.DB, t storage.Transition) error {
	row, err := toEscrowModel(t.Escrow)
	if err != nil {
		return err
	}
	if err := tx.Model(&escrowModel{}).Where("id = ?", row.ID).Updates(transitionColumns(row)).Error; err != nil {
		return fmt.Errorf("update escrow: %w", err)
	}
	if t.Order != nil {
		return patchOrder(tx, t.Order)
	}
	return nil
}

func (s *Store) TransitionEscrow(ctx context.Context, t storage.Transition) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForTransition(tx, t); err != nil {
			return err
		}
		return applyTransition(tx, t)
	})
	if err != nil {
		return err
	}
	t.Escrow.Version++
	return nil
}

func (s *Store) ReleaseEscrow(ctx context.Context, r storage.ReleaseRequest) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForTransition(tx, r.Transition); err != nil {
			return err
		}
		if err := applyTransition(tx, r.Transition); err != nil {
			return err
		}

		account := merchantAccountModel{
			MerchantID:       r.Credit.MerchantID,
			AvailableBalance: r.Credit.Amount,
			TotalEarnings:    r.Credit.Amount,
			UpdatedAt:        r.Credit.Entry.Timestamp,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "merchant_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"available_balance": gorm.Expr("merchant_accounts.available_balance + ?", r.Credit.Amount),
				"total_earnings":    gorm.Expr("merchant_accounts.total_earnings + ?", r.Credit.Amount),
				"updated_at":        r.Credit.Entry.Timestamp,
			}),
		}).Create(&account).Error
		if err != nil {
			return fmt.Errorf("credit merchant account: %w", err)
		}

		entry := toLedgerEntryModel(r.Credit.Entry)
		if err := tx.Create(&entry).Error; err != nil {
			if isUniqueViolation(err) {
				return storage.ErrStatusConflict
			}
			return fmt.Errorf("insert ledger entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.Escrow.Version++
	return nil
}

func saveOrder(tx *gorm.DB, order *models.Order) error {
	row := toOrderModel(order)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// patchOrder updates only the escrow-owned order columns.
func patchOrder(tx *gorm.DB, p *storage.OrderPatch) error {
	if err := tx.Model(&orderModel{}).Where("id = ?", p.OrderID).Updates(p.Columns()).Error; err != nil {
		return fmt.Errorf("patch order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var row orderModel
	if err := s.db.WithContext(ctx).Where("id = ?", orderID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o := toDomainOrder(row)
	return &o, nil
}

func (s *Store) SaveOrder(ctx context.Context, order *models.Order) error {
	return saveOrder(s.db.WithContext(ctx), order)
}

func (s *Store) GetMerchantAccount(ctx context.Context, merchantID string) (*models.MerchantAccount, error) {
	var row merchantAccountModel
	if err := s.db.WithContext(ctx).Where("merchant_id = ?", merchantID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get merchant account: %w", err)
	}
	a := toDomainAccount(row)
	return &a, nil
}

func (s *Store) ListLedgerEntries(ctx context.Context, merchantID string, limit int32) ([]models.LedgerEntry, error) {
	query := s.db.WithContext(ctx).Where("merchant_id = ?", merchantID).Order("timestamp DESC")
	if limit > 0 {
		query = query.Limit(int(limit))
	}
	var rows []ledgerEntryModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	out := make([]models.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDomainLedgerEntry(row))
	}
	return out, nil
}
