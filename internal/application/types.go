package application

import (
	"time"

	"github.com/bookloop/order-escrow-service/internal/ports"
)

type Config struct {
	ServiceName          string
	AuthoritySubject     string
	EscrowAccountID      string
	NoticeWindow         time.Duration
	IdempotencyTTL       time.Duration
	OutboxFlushBatchSize int
}

type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

type MintInput struct {
	AccountID string
	Amount    uint64
}

type ApproveInput struct {
	Owner   string
	Spender string
	Amount  uint64
}

type TransferInput struct {
	From   string
	To     string
	Amount uint64
}

type CreateOrderInput struct {
	Provider   string
	Consumer   string
	RecordID   string
	ItemID     string
	PriceTotal uint64
	StartTime  time.Time
	EndTime    time.Time
}

type SetPolicyInput struct {
	OrderID      uint64
	Option       string
	NoticeWindow time.Duration
}

type Service struct {
	cfg          Config
	accounts     ports.AccountRepository
	orders       ports.OrderRepository
	ledger       ports.LedgerEntryRepository
	idempotency  ports.IdempotencyRepository
	outbox       ports.OutboxRepository
	domainEvents ports.DomainPublisher
	analytics    ports.AnalyticsPublisher
	dlq          ports.DLQPublisher
	nowFn        func() time.Time
}

type Dependencies struct {
	Config       Config
	Accounts     ports.AccountRepository
	Orders       ports.OrderRepository
	Ledger       ports.LedgerEntryRepository
	Idempotency  ports.IdempotencyRepository
	Outbox       ports.OutboxRepository
	DomainEvents ports.DomainPublisher
	Analytics    ports.AnalyticsPublisher
	DLQ          ports.DLQPublisher
}
