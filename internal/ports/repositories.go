package ports

import (
	"context"
	"time"

	"github.com/bookloop/order-escrow-service/internal/domain"
)

// AccountRepository owns balances, allowances and the fee-recipient binding.
// Multi-leg movements (Transfer, SplitTransfer, TransferFrom) are atomic:
// either every leg commits or none do.
type AccountRepository interface {
	BalanceOf(ctx context.Context, accountID string) (uint64, error)
	Mint(ctx context.Context, accountID string, amount uint64) error
	// Transfer moves amount from one account to another with no fee leg.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	// SplitTransfer debits from by toAmount+feeAmount, crediting to and
	// feeTo respectively.
	SplitTransfer(ctx context.Context, from, to, feeTo string, toAmount, feeAmount uint64) error
	// TransferFrom spends the owner->spender allowance and moves amount
	// from owner to the target account with no fee leg.
	TransferFrom(ctx context.Context, owner, spender, to string, amount uint64) error
	Allowance(ctx context.Context, owner, spender string) (uint64, error)
	SetAllowance(ctx context.Context, owner, spender string, amount uint64) error
	FeeRecipient(ctx context.Context) (string, error)
	SetFeeRecipient(ctx context.Context, accountID string) error
}

// OrderRepository is the registry: the only writer of order rows. Create
// assigns sequential identifiers starting at 1 and returns the id.
type OrderRepository interface {
	Create(ctx context.Context, row domain.Order) (uint64, error)
	GetByID(ctx context.Context, orderID uint64) (domain.Order, error)
	Update(ctx context.Context, row domain.Order) error
	Count(ctx context.Context) (uint64, error)
}

type LedgerEntryRepository interface {
	Append(ctx context.Context, row domain.LedgerEntry) error
	ListByOrderID(ctx context.Context, orderID uint64) ([]domain.LedgerEntry, error)
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
