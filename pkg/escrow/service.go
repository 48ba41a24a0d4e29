// Package escrow orchestrates the escrow lifecycle: policy checks, state
// transitions, guarded persistence, ledger credit, scheduling and audit.
package escrow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/order-escrow/pkg/audit"
	"github.com/chris/order-escrow/pkg/escrowerr"
	"github.com/chris/order-escrow/pkg/fees"
	"github.com/chris/order-escrow/pkg/gateway"
	"github.com/chris/order-escrow/pkg/lock"
	"github.com/chris/order-escrow/pkg/models"
	"github.com/chris/order-escrow/pkg/policy"
	"github.com/chris/order-escrow/pkg/scheduler"
	"github.com/chris/order-escrow/pkg/storage"
	"github.com/chris/order-escrow/pkg/transitions"
)

// DefaultDueBatchSize bounds one recovery pass.
const DefaultDueBatchSize = 100

// DefaultAuditTimeout bounds how long a committed operation waits on the audit sink.
const DefaultAuditTimeout = 2 * time.Second

// Deps are the collaborators of the Service.
type Deps struct {
	Store     storage.Storage
	Locker    lock.Locker
	Scheduler scheduler.Scheduler
	Gateway   gateway.Refunder
	Audit     audit.Sink
	Fees      *fees.Calculator
	Clock     func() time.Time
	Logger    *slog.Logger
	// DueBatchSize caps ListDueForAutoRelease.
	DueBatchSize int32
	// AuditTimeout caps each audit write.
	AuditTimeout time.Duration
}

// Service is the escrow orchestrator.
type Service struct {
	store     storage.Storage
	locker    lock.Locker
	scheduler scheduler.Scheduler
	gateway   gateway.Refunder
	audit     audit.Sink
	fees      *fees.Calculator
	now       func() time.Time
	logger    *slog.Logger
	dueBatch  int32
	auditWait time.Duration
}

// New creates a Service. Store, Scheduler, Gateway and Fees are required.
func New(d Deps) (*Service, error) {
	switch {
	case d.Store == nil:
		return nil, &escrowerr.ConfigurationError{Reason: "escrow service requires a store"}
	case d.Scheduler == nil:
		return nil, &escrowerr.ConfigurationError{Reason: "escrow service requires a scheduler"}
	case d.Gateway == nil:
		return nil, &escrowerr.ConfigurationError{Reason: "escrow service requires a payment gateway"}
	case d.Fees == nil:
		return nil, &escrowerr.ConfigurationError{Reason: "escrow service requires a fee calculator"}
	}

	s := &Service{
		store:     d.Store,
		locker:    d.Locker,
		scheduler: d.Scheduler,
		gateway:   d.Gateway,
		audit:     d.Audit,
		fees:      d.Fees,
		now:       d.Clock,
		logger:    d.Logger,
		dueBatch:  d.DueBatchSize,
		auditWait: d.AuditTimeout,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.locker == nil {
		s.locker = lock.NewLocalLocker()
	}
	if s.audit == nil {
		s.audit = audit.NewLogSink(s.logger)
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.dueBatch <= 0 {
		s.dueBatch = DefaultDueBatchSize
	}
	if s.auditWait <= 0 {
		s.auditWait = DefaultAuditTimeout
	}
	return s, nil
}

var (
	_ scheduler.AutoReleaser = (*Service)(nil)
	_ scheduler.DueLister    = (*Service)(nil)
)

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

// snapshot is an escrow with its order and policy, read under the escrow lock.
// The order is read-only; changes to it go through patch, so a write never
// carries back order-service fields read before the write.
type snapshot struct {
	escrow *models.Escrow
	order  *models.Order
	patch  storage.OrderPatch
	policy policy.Policy
}

func (s *Service) load(ctx context.Context, escrowID string) (*snapshot, error) {
	e, err := s.store.GetEscrow(ctx, escrowID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, escrowerr.NotFound("escrow", escrowID)
		}
		return nil, fmt.Errorf("failed to get escrow %s: %w", escrowID, err)
	}
	o, err := s.store.GetOrder(ctx, e.OrderId)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, escrowerr.NotFound("order", e.OrderId)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", e.OrderId, err)
	}
	p, err := policy.For(e.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &snapshot{escrow: e, order: o, patch: storage.OrderPatch{OrderID: o.Id}, policy: p}, nil
}

// withEscrowLock serialises mutations of one escrow across instances.
func (s *Service) withEscrowLock(ctx context.Context, escrowID string, fn func() error) error {
	err := s.locker.WithLock(ctx, lock.EscrowKey(escrowID), fn)
	if errors.Is(err, lock.ErrNotAcquired) {
		return &escrowerr.StateConflictError{Reason: "another operation on escrow " + escrowID + " is in progress"}
	}
	return err
}

// notFinal rejects any move out of RELEASED or REFUNDED before policies run.
func notFinal(e *models.Escrow, to models.EscrowStatus) error {
	if transitions.IsTerminal(e.Status) {
		return &escrowerr.StateConflictError{From: string(e.Status), To: string(to), Reason: "escrow is final"}
	}
	return nil
}

func checkPolicy(d policy.Decision) error {
	if !d.Valid {
		return &escrowerr.ValidationError{Reason: d.Reason}
	}
	return nil
}

// transition applies a guarded write of snap and maps storage sentinels.
func (s *Service) transition(ctx context.Context, from models.EscrowStatus, snap *snapshot) error {
	if err := snap.escrow.Validate(); err != nil {
		return escrowerr.Validation("%v", err)
	}
	err := s.store.TransitionEscrow(ctx, storage.Transition{From: from, Escrow: snap.escrow, Order: snap.orderPatch()})
	return s.writeError(err, from, snap.escrow)
}

// orderPatch mirrors the escrow status onto the pending order patch.
func (snap *snapshot) orderPatch() *storage.OrderPatch {
	snap.patch.EscrowStatus = snap.escrow.Status
	snap.patch.UpdatedAt = snap.escrow.UpdatedAt
	return &snap.patch
}

func (s *Service) writeError(err error, from models.EscrowStatus, e *models.Escrow) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrStatusConflict):
		return &escrowerr.StateConflictError{From: string(from), To: string(e.Status), Reason: "escrow was modified concurrently"}
	case errors.Is(err, storage.ErrNotFound):
		return escrowerr.NotFound("escrow", e.Id)
	}
	return fmt.Errorf("failed to write escrow %s: %w", e.Id, err)
}

// record sends an audit event. The write outlives a cancelled request but is
// bounded by auditWait. Failures are logged and never returned.
func (s *Service) record(ctx context.Context, typ audit.EventType, e *models.Escrow, actor Actor, payload map[string]any) {
	event := audit.Event{
		Type:      typ,
		EscrowID:  e.Id,
		ActorID:   actor.ID,
		Payload:   payload,
		Timestamp: s.clock(),
	}
	auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.auditWait)
	defer cancel()
	if err := s.audit.Record(auditCtx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to record audit event", "type", string(typ), "escrow_id", e.Id, "error", err)
	}
}
