package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/bookloop/order-escrow-service/internal/domain"
)

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" { cfg.ServiceName = "Order-Escrow-Service" }
	if cfg.AuthoritySubject == "" { cfg.AuthoritySubject = "treasury_ops" }
	if cfg.EscrowAccountID == "" { cfg.EscrowAccountID = domain.EscrowCustodyAccount }
	if cfg.NoticeWindow <= 0 { cfg.NoticeWindow = domain.DefaultNoticeWindow }
	if cfg.IdempotencyTTL <= 0 { cfg.IdempotencyTTL = 7 * 24 * time.Hour }
	if cfg.OutboxFlushBatchSize <= 0 { cfg.OutboxFlushBatchSize = 100 }
	return &Service{cfg: cfg, accounts: deps.Accounts, orders: deps.Orders, ledger: deps.Ledger, idempotency: deps.Idempotency, outbox: deps.Outbox, domainEvents: deps.DomainEvents, analytics: deps.Analytics, dlq: deps.DLQ, nowFn: func() time.Time { return time.Now().UTC() }}
}

// WithNow overrides the service clock. Cancellation policy checks are
// evaluated against this clock at call time.
func (s *Service) WithNow(nowFn func() time.Time) *Service {
	if nowFn != nil { s.nowFn = nowFn }
	return s
}

func (s *Service) getIdempotent(ctx context.Context, key, requestHash string, out any) (bool, error) {
	if s.idempotency == nil || strings.TrimSpace(key) == "" { return false, nil }
	rec, err := s.idempotency.Get(ctx, key, s.nowFn())
	if err != nil || rec == nil { return false, err }
	if rec.RequestHash != requestHash { return false, domain.ErrIdempotencyConflict }
	if len(rec.ResponseBody) == 0 { return false, nil }
	if err := json.Unmarshal(rec.ResponseBody, out); err != nil { return false, nil }
	return true, nil
}

func (s *Service) reserveIdempotency(ctx context.Context, key, requestHash string) error {
	if s.idempotency == nil { return nil }
	err := s.idempotency.Reserve(ctx, key, requestHash, s.nowFn().Add(s.cfg.IdempotencyTTL))
	if err == domain.ErrConflict { return domain.ErrIdempotencyConflict }
	return err
}

func (s *Service) completeIdempotencyJSON(ctx context.Context, key string, code int, payload any) error {
	if s.idempotency == nil || strings.TrimSpace(key) == "" { return nil }
	b, _ := json.Marshal(payload)
	return s.idempotency.Complete(ctx, key, code, b, s.nowFn())
}

func hashJSON(v any) string {
	b, _ := json.Marshal(v)
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
