package domain

import "time"

const (
	AllocationStatusUnfunded  = "unfunded"
	AllocationStatusFunded    = "funded"
	AllocationStatusReleased  = "released"
	AllocationStatusPaidOut   = "paid_out"
	AllocationStatusCancelled = "cancelled"
)

// Order is an escrow agreement between a provider and a consumer over a
// single locked amount. Rows are never deleted; terminal statuses
// (paid_out, cancelled) mark logical completion.
type Order struct {
	OrderID             uint64
	Provider            string
	Consumer            string
	RecordID            string
	ItemID              string
	PriceTotal          uint64
	StartTime           time.Time
	EndTime             time.Time
	Policy              CancellationPolicy
	Status              string
	AllocatedToFundPool uint64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsTerminal reports whether no further transitions exist for the order.
func (o Order) IsTerminal() bool {
	return o.Status == AllocationStatusPaidOut || o.Status == AllocationStatusCancelled
}
