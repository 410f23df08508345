package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookloop/order-escrow-service/internal/contracts"
	"github.com/bookloop/order-escrow-service/internal/domain"
	"github.com/bookloop/order-escrow-service/internal/ports"
)

func (s *Service) HandleCanonicalEvent(_ context.Context, envelope contracts.EventEnvelope) error {
	if err := validateEnvelope(envelope); err != nil {
		return err
	}
	if !domain.IsCanonicalInputEvent(envelope.EventType) {
		return domain.ErrUnsupportedEventType
	}
	return nil
}

func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil { return nil }
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil { return err }
	for _, rec := range pending {
		now := s.nowFn()
		switch rec.EventClass {
		case domain.CanonicalEventClassDomain:
			if s.domainEvents != nil {
				if err := s.domainEvents.PublishDomain(ctx, rec.Envelope); err != nil {
					if s.dlq != nil {
						n := s.nowFn()
						_ = s.dlq.PublishDLQ(ctx, contracts.DLQRecord{OriginalEvent: rec.Envelope, ErrorSummary: err.Error(), RetryCount: 1, FirstSeenAt: n, LastErrorAt: n, SourceTopic: rec.Envelope.EventType, DLQTopic: "order-escrow-service.dlq", TraceID: rec.Envelope.TraceID})
					}
					return err
				}
			}
		case domain.CanonicalEventClassAnalyticsOnly:
			if s.analytics != nil { _ = s.analytics.PublishAnalytics(ctx, rec.Envelope) }
		default:
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventClass, rec.EventClass)
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, now); err != nil { return err }
	}
	return nil
}

func (s *Service) enqueueEvent(ctx context.Context, eventType, traceID string, data any, orderID uint64, now time.Time) error {
	if s.outbox == nil { return nil }
	if !domain.IsCanonicalEmittedEvent(eventType) { return domain.ErrUnsupportedEventType }
	b, err := json.Marshal(data)
	if err != nil { return domain.ErrInvalidInput }
	if strings.TrimSpace(traceID) == "" { traceID = uuid.NewString() }
	env := contracts.EventEnvelope{EventID: uuid.NewString(), EventType: eventType, EventClass: domain.CanonicalEventClass(eventType), OccurredAt: now, PartitionKeyPath: domain.CanonicalPartitionKeyPath(eventType), PartitionKey: strconv.FormatUint(orderID, 10), SourceService: s.cfg.ServiceName, TraceID: traceID, SchemaVersion: "v1", Data: b}
	return s.outbox.Enqueue(ctx, ports.OutboxRecord{RecordID: uuid.NewString(), EventClass: env.EventClass, Envelope: env, CreatedAt: now})
}

func (s *Service) enqueueOrderCreated(ctx context.Context, order domain.Order, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderCreated, traceID, contracts.OrderCreatedPayload{OrderID: order.OrderID, Provider: order.Provider, Consumer: order.Consumer, RecordID: order.RecordID, ItemID: order.ItemID, PriceTotal: order.PriceTotal, FundedAt: now.UTC().Format(time.RFC3339)}, order.OrderID, now)
}
func (s *Service) enqueueOrderReleased(ctx context.Context, orderID, poolShare, remaining uint64, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderReleased, traceID, contracts.OrderReleasedPayload{OrderID: orderID, PoolShare: poolShare, RemainingEscrow: remaining, ReleasedAt: now.UTC().Format(time.RFC3339)}, orderID, now)
}
func (s *Service) enqueueOrderPaidOut(ctx context.Context, order domain.Order, amount uint64, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderPaidOut, traceID, contracts.OrderPaidOutPayload{OrderID: order.OrderID, Provider: order.Provider, Amount: amount, PaidAt: now.UTC().Format(time.RFC3339)}, order.OrderID, now)
}
func (s *Service) enqueueOrderCancelled(ctx context.Context, order domain.Order, refunded uint64, fromStatus, traceID string, now time.Time) error {
	return s.enqueueEvent(ctx, domain.EventOrderCancelled, traceID, contracts.OrderCancelledPayload{OrderID: order.OrderID, Consumer: order.Consumer, RefundedAmount: refunded, FromStatus: fromStatus, CancelledAt: now.UTC().Format(time.RFC3339)}, order.OrderID, now)
}

func validateEnvelope(event contracts.EventEnvelope) error {
	if strings.TrimSpace(event.EventID) == "" || strings.TrimSpace(event.EventType) == "" || event.OccurredAt.IsZero() { return domain.ErrInvalidEnvelope }
	if strings.TrimSpace(event.SourceService) == "" || strings.TrimSpace(event.TraceID) == "" || strings.TrimSpace(event.SchemaVersion) == "" { return domain.ErrInvalidEnvelope }
	if len(event.Data) == 0 { return domain.ErrInvalidEnvelope }
	return nil
}
