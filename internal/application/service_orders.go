package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookloop/order-escrow-service/internal/domain"
)

// CreateOrder pulls the full price from the consumer's allowance into escrow
// custody and registers the order as funded. No order row exists if funding
// fails.
func (s *Service) CreateOrder(ctx context.Context, actor Actor, input CreateOrderInput) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.Order{}, domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.Order{}, domain.ErrIdempotencyRequired }
	input.Provider = strings.TrimSpace(input.Provider)
	input.Consumer = strings.TrimSpace(input.Consumer)
	if input.Provider == "" || input.Consumer == "" || input.PriceTotal == 0 { return domain.Order{}, domain.ErrInvalidInput }
	if input.StartTime.IsZero() || input.EndTime.Before(input.StartTime) { return domain.Order{}, domain.ErrInvalidInput }
	requestHash := hashJSON(input)
	var cached domain.Order
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &cached); err != nil { return domain.Order{}, err } else if ok { return cached, nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return domain.Order{}, err }
	now := s.nowFn()
	if err := s.accounts.TransferFrom(ctx, input.Consumer, s.cfg.EscrowAccountID, s.cfg.EscrowAccountID, input.PriceTotal); err != nil { return domain.Order{}, err }
	order := domain.Order{Provider: input.Provider, Consumer: input.Consumer, RecordID: input.RecordID, ItemID: input.ItemID, PriceTotal: input.PriceTotal, StartTime: input.StartTime.UTC(), EndTime: input.EndTime.UTC(), Policy: domain.DefaultCancellationPolicy(), Status: domain.AllocationStatusFunded, CreatedAt: now, UpdatedAt: now}
	orderID, err := s.orders.Create(ctx, order)
	if err != nil {
		// Return the pulled funds so a failed registration leaves balances
		// exactly as before the call.
		_ = s.accounts.Transfer(ctx, s.cfg.EscrowAccountID, input.Consumer, input.PriceTotal)
		return domain.Order{}, err
	}
	order.OrderID = orderID
	if err := s.appendEntry(ctx, orderID, domain.EntryTypeLock, input.Consumer, s.cfg.EscrowAccountID, input.PriceTotal, now); err != nil { return domain.Order{}, err }
	if err := s.enqueueOrderCreated(ctx, order, actor.RequestID, now); err != nil { return domain.Order{}, err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, order)
	return order, nil
}

// SetCancellationPolicy overwrites the stored policy option. Allowed only
// while the order is funded.
func (s *Service) SetCancellationPolicy(ctx context.Context, actor Actor, input SetPolicyInput) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.Order{}, domain.ErrUnauthorized }
	if !domain.IsValidPolicyOption(input.Option) { return domain.Order{}, domain.ErrInvalidInput }
	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil { return domain.Order{}, err }
	if order.Status != domain.AllocationStatusFunded { return domain.Order{}, domain.ErrInvalidState }
	policy := domain.CancellationPolicy{Option: input.Option}
	if input.Option == domain.PolicyCancelWithNotice {
		policy.NoticeWindow = input.NoticeWindow
		if policy.NoticeWindow <= 0 { policy.NoticeWindow = s.cfg.NoticeWindow }
	}
	order.Policy = policy
	order.UpdatedAt = s.nowFn()
	if err := s.orders.Update(ctx, order); err != nil { return domain.Order{}, err }
	return order, nil
}

// Release pays the fund-pool share and keeps the remainder in escrow
// custody pending payout or a policy-gated cancellation.
func (s *Service) Release(ctx context.Context, actor Actor, orderID uint64) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.Order{}, domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.Order{}, domain.ErrIdempotencyRequired }
	requestHash := hashJSON([]any{"release", orderID})
	var cached domain.Order
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &cached); err != nil { return domain.Order{}, err } else if ok { return cached, nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return domain.Order{}, err }
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil { return domain.Order{}, err }
	if order.Status != domain.AllocationStatusFunded { return domain.Order{}, domain.ErrInvalidState }
	poolShare, remainder := domain.SplitForRelease(order.PriceTotal)
	now := s.nowFn()
	feeRecipient := ""
	if poolShare > 0 {
		feeRecipient, err = s.accounts.FeeRecipient(ctx)
		if err != nil { return domain.Order{}, err }
		if feeRecipient == "" { return domain.Order{}, domain.ErrFeeRecipientNotSet }
		if err := s.accounts.Transfer(ctx, s.cfg.EscrowAccountID, feeRecipient, poolShare); err != nil { return domain.Order{}, err }
	}
	order.AllocatedToFundPool = poolShare
	order.Status = domain.AllocationStatusReleased
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil { return domain.Order{}, err }
	if poolShare > 0 {
		if err := s.appendEntry(ctx, orderID, domain.EntryTypePoolAllocation, s.cfg.EscrowAccountID, feeRecipient, poolShare, now); err != nil { return domain.Order{}, err }
	}
	if err := s.enqueueOrderReleased(ctx, orderID, poolShare, remainder, actor.RequestID, now); err != nil { return domain.Order{}, err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, order)
	return order, nil
}

// Payout settles the escrowed remainder to the provider and closes the
// order.
func (s *Service) Payout(ctx context.Context, actor Actor, orderID uint64) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.Order{}, domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.Order{}, domain.ErrIdempotencyRequired }
	requestHash := hashJSON([]any{"payout", orderID})
	var cached domain.Order
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &cached); err != nil { return domain.Order{}, err } else if ok { return cached, nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return domain.Order{}, err }
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil { return domain.Order{}, err }
	if order.Status != domain.AllocationStatusReleased { return domain.Order{}, domain.ErrInvalidState }
	remainder := order.PriceTotal - order.AllocatedToFundPool
	now := s.nowFn()
	if remainder > 0 {
		if err := s.accounts.Transfer(ctx, s.cfg.EscrowAccountID, order.Provider, remainder); err != nil { return domain.Order{}, err }
	}
	order.Status = domain.AllocationStatusPaidOut
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil { return domain.Order{}, err }
	if remainder > 0 {
		if err := s.appendEntry(ctx, orderID, domain.EntryTypePayout, s.cfg.EscrowAccountID, order.Provider, remainder, now); err != nil { return domain.Order{}, err }
	}
	if err := s.enqueueOrderPaidOut(ctx, order, remainder, actor.RequestID, now); err != nil { return domain.Order{}, err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, order)
	return order, nil
}

// CancelHold reverses a funded order in full: the consumer gets the whole
// locked amount back and no fund-pool share is taken.
func (s *Service) CancelHold(ctx context.Context, actor Actor, orderID uint64) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.Order{}, domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.Order{}, domain.ErrIdempotencyRequired }
	requestHash := hashJSON([]any{"cancel_hold", orderID})
	var cached domain.Order
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &cached); err != nil { return domain.Order{}, err } else if ok { return cached, nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return domain.Order{}, err }
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil { return domain.Order{}, err }
	if order.Status != domain.AllocationStatusFunded { return domain.Order{}, domain.ErrInvalidState }
	now := s.nowFn()
	if err := s.accounts.Transfer(ctx, s.cfg.EscrowAccountID, order.Consumer, order.PriceTotal); err != nil { return domain.Order{}, err }
	fromStatus := order.Status
	order.Status = domain.AllocationStatusCancelled
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil { return domain.Order{}, err }
	if err := s.appendEntry(ctx, orderID, domain.EntryTypeRefund, s.cfg.EscrowAccountID, order.Consumer, order.PriceTotal, now); err != nil { return domain.Order{}, err }
	if err := s.enqueueOrderCancelled(ctx, order, order.PriceTotal, fromStatus, actor.RequestID, now); err != nil { return domain.Order{}, err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, order)
	return order, nil
}

// CancelOrder cancels a released order when the stored policy permits it at
// the current time. The pool share already paid stays with the fund pool;
// only the escrowed remainder is refunded.
func (s *Service) CancelOrder(ctx context.Context, actor Actor, orderID uint64) (domain.Order, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.Order{}, domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.Order{}, domain.ErrIdempotencyRequired }
	requestHash := hashJSON([]any{"cancel_order", orderID})
	var cached domain.Order
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &cached); err != nil { return domain.Order{}, err } else if ok { return cached, nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return domain.Order{}, err }
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil { return domain.Order{}, err }
	if order.Status != domain.AllocationStatusReleased { return domain.Order{}, domain.ErrInvalidState }
	if !domain.CanCancel(order.Policy, order.StartTime, s.nowFn()) { return domain.Order{}, domain.ErrPolicyViolation }
	remainder := order.PriceTotal - order.AllocatedToFundPool
	now := s.nowFn()
	if remainder > 0 {
		if err := s.accounts.Transfer(ctx, s.cfg.EscrowAccountID, order.Consumer, remainder); err != nil { return domain.Order{}, err }
	}
	fromStatus := order.Status
	order.Status = domain.AllocationStatusCancelled
	order.UpdatedAt = now
	if err := s.orders.Update(ctx, order); err != nil { return domain.Order{}, err }
	if remainder > 0 {
		if err := s.appendEntry(ctx, orderID, domain.EntryTypeRefund, s.cfg.EscrowAccountID, order.Consumer, remainder, now); err != nil { return domain.Order{}, err }
	}
	if err := s.enqueueOrderCancelled(ctx, order, remainder, fromStatus, actor.RequestID, now); err != nil { return domain.Order{}, err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, order)
	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, orderID uint64) (domain.Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) OrderCount(ctx context.Context) (uint64, error) {
	return s.orders.Count(ctx)
}

// OrderLedger lists the audit trail for one order, oldest first.
func (s *Service) OrderLedger(ctx context.Context, orderID uint64) ([]domain.LedgerEntry, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil { return nil, err }
	return s.ledger.ListByOrderID(ctx, orderID)
}

func (s *Service) appendEntry(ctx context.Context, orderID uint64, entryType, debit, credit string, amount uint64, now time.Time) error {
	if s.ledger == nil { return nil }
	return s.ledger.Append(ctx, domain.LedgerEntry{EntryID: uuid.NewString(), OrderID: orderID, EntryType: entryType, DebitAccount: debit, CreditAccount: credit, Amount: amount, OccurredAt: now})
}
