package domain

import "time"

// EscrowCustodyAccount holds locked value that is not yet owned by any
// party. Balances never go negative; total supply changes only via mint.
const EscrowCustodyAccount = "escrow_custody"

type Account struct {
	AccountID string
	Balance   uint64
}

const (
	EntryTypeLock           = "lock"
	EntryTypePoolAllocation = "pool_allocation"
	EntryTypePayout         = "payout"
	EntryTypeRefund         = "refund"
)

// LedgerEntry is one fund movement in the append-only audit trail. The
// entries for an order always sum to its price total across lock,
// pool_allocation, payout and refund legs.
type LedgerEntry struct {
	EntryID       string
	OrderID       uint64
	EntryType     string
	DebitAccount  string
	CreditAccount string
	Amount        uint64
	OccurredAt    time.Time
}
