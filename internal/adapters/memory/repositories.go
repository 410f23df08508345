package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bookloop/order-escrow-service/internal/domain"
	"github.com/bookloop/order-escrow-service/internal/ports"
)

type Repositories struct {
	Accounts    *AccountRepository
	Orders      *OrderRepository
	Ledger      *LedgerEntryRepository
	Idempotency *IdempotencyRepository
	Outbox      *OutboxRepository
}

func NewRepositories() *Repositories {
	return &Repositories{
		Accounts:    &AccountRepository{balances: map[string]uint64{}, allowances: map[string]uint64{}},
		Orders:      &OrderRepository{rows: map[uint64]domain.Order{}},
		Ledger:      &LedgerEntryRepository{rows: []domain.LedgerEntry{}},
		Idempotency: &IdempotencyRepository{rows: map[string]ports.IdempotencyRecord{}},
		Outbox:      &OutboxRepository{rows: map[string]ports.OutboxRecord{}, order: []string{}},
	}
}

// AccountRepository keeps balances, allowances and the fee-recipient
// binding behind one mutex so multi-leg movements commit atomically.
type AccountRepository struct {
	mu           sync.Mutex
	balances     map[string]uint64
	allowances   map[string]uint64
	feeRecipient string
}

func allowanceKey(owner, spender string) string { return owner + "\x00" + spender }

func (r *AccountRepository) BalanceOf(_ context.Context, accountID string) (uint64, error) {
	r.mu.Lock(); defer r.mu.Unlock(); return r.balances[strings.TrimSpace(accountID)], nil
}
func (r *AccountRepository) Mint(_ context.Context, accountID string, amount uint64) error {
	r.mu.Lock(); defer r.mu.Unlock(); r.balances[accountID] += amount; return nil
}
func (r *AccountRepository) Transfer(_ context.Context, from, to string, amount uint64) error {
	r.mu.Lock(); defer r.mu.Unlock()
	if r.balances[from] < amount { return domain.ErrInsufficientBalance }
	r.balances[from] -= amount; r.balances[to] += amount
	return nil
}
func (r *AccountRepository) SplitTransfer(_ context.Context, from, to, feeTo string, toAmount, feeAmount uint64) error {
	r.mu.Lock(); defer r.mu.Unlock()
	total := toAmount + feeAmount
	if r.balances[from] < total { return domain.ErrInsufficientBalance }
	r.balances[from] -= total; r.balances[to] += toAmount; r.balances[feeTo] += feeAmount
	return nil
}
func (r *AccountRepository) TransferFrom(_ context.Context, owner, spender, to string, amount uint64) error {
	r.mu.Lock(); defer r.mu.Unlock()
	key := allowanceKey(owner, spender)
	if r.allowances[key] < amount { return domain.ErrInsufficientAllowance }
	if r.balances[owner] < amount { return domain.ErrInsufficientBalance }
	r.allowances[key] -= amount; r.balances[owner] -= amount; r.balances[to] += amount
	return nil
}
func (r *AccountRepository) Allowance(_ context.Context, owner, spender string) (uint64, error) {
	r.mu.Lock(); defer r.mu.Unlock(); return r.allowances[allowanceKey(owner, spender)], nil
}
func (r *AccountRepository) SetAllowance(_ context.Context, owner, spender string, amount uint64) error {
	r.mu.Lock(); defer r.mu.Unlock(); r.allowances[allowanceKey(owner, spender)] = amount; return nil
}
func (r *AccountRepository) FeeRecipient(_ context.Context) (string, error) {
	r.mu.Lock(); defer r.mu.Unlock(); return r.feeRecipient, nil
}
func (r *AccountRepository) SetFeeRecipient(_ context.Context, accountID string) error {
	r.mu.Lock(); defer r.mu.Unlock(); r.feeRecipient = accountID; return nil
}

// OrderRepository assigns sequential identifiers starting at 1; the zero
// identifier never resolves.
type OrderRepository struct {
	mu   sync.Mutex
	seq  uint64
	rows map[uint64]domain.Order
}

func (r *OrderRepository) Create(_ context.Context, row domain.Order) (uint64, error) {
	r.mu.Lock(); defer r.mu.Unlock(); r.seq++; row.OrderID = r.seq; r.rows[r.seq] = row; return r.seq, nil
}
func (r *OrderRepository) GetByID(_ context.Context, orderID uint64) (domain.Order, error) {
	r.mu.Lock(); defer r.mu.Unlock(); row, ok := r.rows[orderID]; if !ok { return domain.Order{}, domain.ErrNotFound }; return row, nil
}
func (r *OrderRepository) Update(_ context.Context, row domain.Order) error {
	r.mu.Lock(); defer r.mu.Unlock(); if _, ok := r.rows[row.OrderID]; !ok { return domain.ErrNotFound }; r.rows[row.OrderID] = row; return nil
}
func (r *OrderRepository) Count(_ context.Context) (uint64, error) {
	r.mu.Lock(); defer r.mu.Unlock(); return r.seq, nil
}

type LedgerEntryRepository struct {
	mu   sync.Mutex
	rows []domain.LedgerEntry
}

func (r *LedgerEntryRepository) Append(_ context.Context, row domain.LedgerEntry) error { r.mu.Lock(); defer r.mu.Unlock(); r.rows = append(r.rows, row); return nil }
func (r *LedgerEntryRepository) ListByOrderID(_ context.Context, orderID uint64) ([]domain.LedgerEntry, error) {
	r.mu.Lock(); defer r.mu.Unlock(); out := make([]domain.LedgerEntry, 0)
	for _, row := range r.rows { if row.OrderID == orderID { out = append(out, row) } }
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

type IdempotencyRepository struct { mu sync.Mutex; rows map[string]ports.IdempotencyRecord }

func (r *IdempotencyRepository) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	r.mu.Lock(); defer r.mu.Unlock(); row, ok := r.rows[key]; if !ok { return nil, nil }; if now.After(row.ExpiresAt) { delete(r.rows, key); return nil, nil }; c := row; c.ResponseBody = append([]byte(nil), row.ResponseBody...); return &c, nil
}
func (r *IdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock(); defer r.mu.Unlock(); if row, ok := r.rows[key]; ok && time.Now().UTC().Before(row.ExpiresAt) { return domain.ErrConflict }; r.rows[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}; return nil
}
func (r *IdempotencyRepository) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	r.mu.Lock(); defer r.mu.Unlock(); row, ok := r.rows[key]; if !ok { return domain.ErrNotFound }; row.ResponseCode = responseCode; row.ResponseBody = append([]byte(nil), responseBody...); r.rows[key] = row; return nil
}

type OutboxRepository struct { mu sync.Mutex; rows map[string]ports.OutboxRecord; order []string }

func (r *OutboxRepository) Enqueue(_ context.Context, row ports.OutboxRecord) error { r.mu.Lock(); defer r.mu.Unlock(); if _, ok := r.rows[row.RecordID]; ok { return domain.ErrConflict }; r.rows[row.RecordID] = row; r.order = append(r.order, row.RecordID); return nil }
func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.Lock(); defer r.mu.Unlock(); if limit <= 0 { limit = 100 }; out := make([]ports.OutboxRecord, 0, limit)
	for _, id := range r.order { row, ok := r.rows[id]; if !ok || row.SentAt != nil { continue }; out = append(out, row); if len(out) >= limit { break } }
	return out, nil
}
func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error { r.mu.Lock(); defer r.mu.Unlock(); row, ok := r.rows[recordID]; if !ok { return domain.ErrNotFound }; row.SentAt = &at; r.rows[recordID] = row; return nil }
