package memory

import (
	"context"
	"testing"
	"time"

	"github.com/bookloop/order-escrow-service/internal/domain"
	"github.com/bookloop/order-escrow-service/internal/ports"
)

func TestSplitTransferIsAtomic(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	if err := repos.Accounts.Mint(ctx, "alice", 100); err != nil { t.Fatalf("Mint: %v", err) }
	if err := repos.Accounts.SplitTransfer(ctx, "alice", "bob", "pool", 990, 10); err != domain.ErrInsufficientBalance { t.Fatalf("expected ErrInsufficientBalance, got %v", err) }
	for _, account := range []string{"bob", "pool"} {
		balance, err := repos.Accounts.BalanceOf(ctx, account)
		if err != nil { t.Fatalf("BalanceOf: %v", err) }
		if balance != 0 { t.Fatalf("%s credited %d on failed transfer", account, balance) }
	}
	if err := repos.Accounts.SplitTransfer(ctx, "alice", "bob", "pool", 90, 10); err != nil { t.Fatalf("SplitTransfer: %v", err) }
	if balance, _ := repos.Accounts.BalanceOf(ctx, "alice"); balance != 0 { t.Fatalf("alice balance = %d, want 0", balance) }
	if balance, _ := repos.Accounts.BalanceOf(ctx, "bob"); balance != 90 { t.Fatalf("bob balance = %d, want 90", balance) }
	if balance, _ := repos.Accounts.BalanceOf(ctx, "pool"); balance != 10 { t.Fatalf("pool balance = %d, want 10", balance) }
}

func TestTransferFromDecrementsAllowance(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	if err := repos.Accounts.Mint(ctx, "alice", 100); err != nil { t.Fatalf("Mint: %v", err) }
	if err := repos.Accounts.SetAllowance(ctx, "alice", "svc", 60); err != nil { t.Fatalf("SetAllowance: %v", err) }
	if err := repos.Accounts.TransferFrom(ctx, "alice", "svc", "escrow", 40); err != nil { t.Fatalf("TransferFrom: %v", err) }
	if remaining, _ := repos.Accounts.Allowance(ctx, "alice", "svc"); remaining != 20 { t.Fatalf("allowance = %d, want 20", remaining) }
	if err := repos.Accounts.TransferFrom(ctx, "alice", "svc", "escrow", 30); err != domain.ErrInsufficientAllowance { t.Fatalf("expected ErrInsufficientAllowance, got %v", err) }
	if balance, _ := repos.Accounts.BalanceOf(ctx, "escrow"); balance != 40 { t.Fatalf("escrow balance = %d, want 40", balance) }
}

func TestOrderIdentifiersAreSequential(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	for want := uint64(1); want <= 3; want++ {
		id, err := repos.Orders.Create(ctx, domain.Order{Provider: "p", Consumer: "c", PriceTotal: 10, Status: domain.AllocationStatusFunded})
		if err != nil { t.Fatalf("Create: %v", err) }
		if id != want { t.Fatalf("order id = %d, want %d", id, want) }
	}
	if _, err := repos.Orders.GetByID(ctx, 0); err != domain.ErrNotFound { t.Fatalf("GetByID(0): %v", err) }
	count, err := repos.Orders.Count(ctx)
	if err != nil { t.Fatalf("Count: %v", err) }
	if count != 3 { t.Fatalf("count = %d, want 3", count) }
}

func TestIdempotencyReserveConflictsWhileLive(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	expires := time.Now().UTC().Add(time.Hour)
	if err := repos.Idempotency.Reserve(ctx, "key-1", "hash-1", expires); err != nil { t.Fatalf("Reserve: %v", err) }
	if err := repos.Idempotency.Reserve(ctx, "key-1", "hash-1", expires); err != domain.ErrConflict { t.Fatalf("expected ErrConflict, got %v", err) }
	if err := repos.Idempotency.Complete(ctx, "key-1", 200, []byte(`{"ok":true}`), time.Now().UTC()); err != nil { t.Fatalf("Complete: %v", err) }
	rec, err := repos.Idempotency.Get(ctx, "key-1", time.Now().UTC())
	if err != nil { t.Fatalf("Get: %v", err) }
	if rec == nil || rec.ResponseCode != 200 { t.Fatalf("unexpected record: %+v", rec) }
	if rec, _ := repos.Idempotency.Get(ctx, "key-1", expires.Add(time.Minute)); rec != nil { t.Fatalf("expired record still returned") }
}

func TestOutboxMarkSentRemovesFromPending(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()
	now := time.Now().UTC()
	for _, id := range []string{"rec-1", "rec-2"} {
		if err := repos.Outbox.Enqueue(ctx, ports.OutboxRecord{RecordID: id, EventClass: domain.CanonicalEventClassAnalyticsOnly, CreatedAt: now}); err != nil { t.Fatalf("Enqueue: %v", err) }
	}
	if err := repos.Outbox.MarkSent(ctx, "rec-1", now); err != nil { t.Fatalf("MarkSent: %v", err) }
	pending, err := repos.Outbox.ListPending(ctx, 10)
	if err != nil { t.Fatalf("ListPending: %v", err) }
	if len(pending) != 1 || pending[0].RecordID != "rec-2" { t.Fatalf("unexpected pending set: %+v", pending) }
}
