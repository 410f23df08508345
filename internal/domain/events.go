package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
	CanonicalEventClassOps           = "ops"
)

const (
	EventOrderCreated   = "escrow.order_created"
	EventOrderReleased  = "escrow.order_released"
	EventOrderPaidOut   = "escrow.order_paid_out"
	EventOrderCancelled = "escrow.order_cancelled"
)

func IsCanonicalInputEvent(string) bool { return false }

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventOrderCreated, EventOrderReleased, EventOrderPaidOut, EventOrderCancelled:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	switch eventType {
	case EventOrderPaidOut, EventOrderCancelled:
		return CanonicalEventClassDomain
	case EventOrderCreated, EventOrderReleased:
		return CanonicalEventClassAnalyticsOnly
	default:
		return ""
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	if IsCanonicalEmittedEvent(eventType) {
		return "data.order_id"
	}
	return ""
}
