package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

type OrderCreatedPayload struct {
	OrderID    uint64 `json:"order_id"`
	Provider   string `json:"provider"`
	Consumer   string `json:"consumer"`
	RecordID   string `json:"record_id"`
	ItemID     string `json:"item_id"`
	PriceTotal uint64 `json:"price_total"`
	FundedAt   string `json:"funded_at"`
}

type OrderReleasedPayload struct {
	OrderID         uint64 `json:"order_id"`
	PoolShare       uint64 `json:"pool_share"`
	RemainingEscrow uint64 `json:"remaining_escrow"`
	ReleasedAt      string `json:"released_at"`
}

type OrderPaidOutPayload struct {
	OrderID  uint64 `json:"order_id"`
	Provider string `json:"provider"`
	Amount   uint64 `json:"amount"`
	PaidAt   string `json:"paid_at"`
}

type OrderCancelledPayload struct {
	OrderID        uint64 `json:"order_id"`
	Consumer       string `json:"consumer"`
	RefundedAmount uint64 `json:"refunded_amount"`
	FromStatus     string `json:"from_status"`
	CancelledAt    string `json:"cancelled_at"`
}

type DLQRecord struct {
	OriginalEvent EventEnvelope `json:"original_event"`
	ErrorSummary  string        `json:"error_summary"`
	RetryCount    int           `json:"retry_count"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastErrorAt   time.Time     `json:"last_error_at"`
	SourceTopic   string        `json:"source_topic,omitempty"`
	DLQTopic      string        `json:"dlq_topic,omitempty"`
	TraceID       string        `json:"trace_id,omitempty"`
}
