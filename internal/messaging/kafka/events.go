package kafka

import "time"

// EventType определяет тип события
type EventType string

const (
	// Customer события
	EventTypeCustomerCreated EventType = "customer.created"

	// Product события
	EventTypeProductCreated   EventType = "product.created"
	EventTypeProductRestocked EventType = "product.restocked"

	// Order события
	EventTypeOrderCreated EventType = "order.created"
)

// Topics для Kafka
const (
	TopicCustomerEvents  = "crm.customer.events"
	TopicProductEvents   = "crm.product.events"
	TopicOrderEvents     = "crm.order.events"
	TopicDeadLetterQueue = "crm.dlq" // Dead Letter Queue для failed messages
)

// Kafka headers для retry логики
const (
	HeaderRetryCount    = "x-retry-count"
	HeaderOriginalTopic = "x-original-topic"
	HeaderErrorMessage  = "x-error-message"
	HeaderFailedAt      = "x-failed-at"
)

// TopicForAggregate возвращает topic для типа агрегата outbox-сообщения.
func TopicForAggregate(aggregateType string) string {
	switch aggregateType {
	case "customer":
		return TopicCustomerEvents
	case "product":
		return TopicProductEvents
	case "order":
		return TopicOrderEvents
	default:
		return TopicOrderEvents
	}
}

// CustomerEvent представляет событие клиента
type CustomerEvent struct {
	EventType  EventType              `json:"event_type"`
	CustomerID string                 `json:"customer_id"`
	Email      string                 `json:"email"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// OrderEvent представляет событие заказа
type OrderEvent struct {
	EventType  EventType              `json:"event_type"`
	OrderID    string                 `json:"order_id"`
	CustomerID string                 `json:"customer_id"`
	TotalMinor int64                  `json:"total_minor"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// NewCustomerEvent создает новое событие клиента
func NewCustomerEvent(eventType EventType, customerID, email string, metadata map[string]interface{}) *CustomerEvent {
	return &CustomerEvent{
		EventType:  eventType,
		CustomerID: customerID,
		Email:      email,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}

// NewOrderEvent создает новое событие заказа
func NewOrderEvent(eventType EventType, orderID, customerID string, totalMinor int64, metadata map[string]interface{}) *OrderEvent {
	return &OrderEvent{
		EventType:  eventType,
		OrderID:    orderID,
		CustomerID: customerID,
		TotalMinor: totalMinor,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}
}
