package application

import (
	"context"
	"strings"

	"github.com/bookloop/order-escrow-service/internal/domain"
)

// Mint increases an account balance. Authority only; total supply changes
// through no other path.
func (s *Service) Mint(ctx context.Context, actor Actor, input MintInput) (uint64, error) {
	if strings.TrimSpace(actor.SubjectID) == "" { return 0, domain.ErrUnauthorized }
	if actor.SubjectID != s.cfg.AuthoritySubject { return 0, domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return 0, domain.ErrIdempotencyRequired }
	input.AccountID = strings.TrimSpace(input.AccountID)
	if input.AccountID == "" || input.Amount == 0 { return 0, domain.ErrInvalidInput }
	requestHash := hashJSON(input)
	var cached uint64
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &cached); err != nil { return 0, err } else if ok { return cached, nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return 0, err }
	if err := s.accounts.Mint(ctx, input.AccountID, input.Amount); err != nil { return 0, err }
	balance, err := s.accounts.BalanceOf(ctx, input.AccountID)
	if err != nil { return 0, err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, balance)
	return balance, nil
}

// SetFeeRecipient rebinds the fund-pool account. Authority only; repeatable.
func (s *Service) SetFeeRecipient(ctx context.Context, actor Actor, accountID string) error {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.ErrUnauthorized }
	if actor.SubjectID != s.cfg.AuthoritySubject { return domain.ErrUnauthorized }
	accountID = strings.TrimSpace(accountID)
	if accountID == "" { return domain.ErrInvalidInput }
	return s.accounts.SetFeeRecipient(ctx, accountID)
}

func (s *Service) FeeRecipient(ctx context.Context) (string, error) {
	return s.accounts.FeeRecipient(ctx)
}

func (s *Service) BalanceOf(ctx context.Context, accountID string) (uint64, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" { return 0, domain.ErrInvalidInput }
	return s.accounts.BalanceOf(ctx, accountID)
}

// Approve sets (overwrites) the owner->spender allowance. The owner is the
// calling subject.
func (s *Service) Approve(ctx context.Context, actor Actor, input ApproveInput) error {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.ErrUnauthorized }
	input.Spender = strings.TrimSpace(input.Spender)
	if input.Spender == "" { return domain.ErrInvalidInput }
	owner := actor.SubjectID
	if strings.TrimSpace(input.Owner) != "" && input.Owner != owner { return domain.ErrUnauthorized }
	return s.accounts.SetAllowance(ctx, owner, input.Spender, input.Amount)
}

func (s *Service) Allowance(ctx context.Context, owner, spender string) (uint64, error) {
	owner = strings.TrimSpace(owner)
	spender = strings.TrimSpace(spender)
	if owner == "" || spender == "" { return 0, domain.ErrInvalidInput }
	return s.accounts.Allowance(ctx, owner, spender)
}

// Transfer is the push transfer: it debits the caller by the full amount,
// credits the fund pool the 1% share and the receiver the rest. Rejected
// outright while no fee recipient is configured.
func (s *Service) Transfer(ctx context.Context, actor Actor, input TransferInput) error {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.ErrIdempotencyRequired }
	input.To = strings.TrimSpace(input.To)
	if input.To == "" || input.Amount == 0 { return domain.ErrInvalidInput }
	from := actor.SubjectID
	if strings.TrimSpace(input.From) != "" && input.From != from { return domain.ErrUnauthorized }
	requestHash := hashJSON(input)
	var done bool
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &done); err != nil { return err } else if ok { return nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return err }
	feeRecipient, err := s.accounts.FeeRecipient(ctx)
	if err != nil { return err }
	if feeRecipient == "" { return domain.ErrFeeRecipientNotSet }
	fee := domain.FundPoolShare(input.Amount)
	if err := s.accounts.SplitTransfer(ctx, from, input.To, feeRecipient, input.Amount-fee, fee); err != nil { return err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, true)
	return nil
}

// TransferFrom is the allowance-based pull transfer. No fee split; the
// caller is the spender.
func (s *Service) TransferFrom(ctx context.Context, actor Actor, owner, to string, amount uint64) error {
	if strings.TrimSpace(actor.SubjectID) == "" { return domain.ErrUnauthorized }
	if strings.TrimSpace(actor.IdempotencyKey) == "" { return domain.ErrIdempotencyRequired }
	owner = strings.TrimSpace(owner)
	to = strings.TrimSpace(to)
	if owner == "" || to == "" || amount == 0 { return domain.ErrInvalidInput }
	requestHash := hashJSON([]any{"transfer_from", owner, to, amount})
	var done bool
	if ok, err := s.getIdempotent(ctx, actor.IdempotencyKey, requestHash, &done); err != nil { return err } else if ok { return nil }
	if err := s.reserveIdempotency(ctx, actor.IdempotencyKey, requestHash); err != nil { return err }
	if err := s.accounts.TransferFrom(ctx, owner, actor.SubjectID, to, amount); err != nil { return err }
	_ = s.completeIdempotencyJSON(ctx, actor.IdempotencyKey, 200, true)
	return nil
}
