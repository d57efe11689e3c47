package services

import (
	"context"
	"encoding/json"
	"time"

	"inventory/internal/models"

	"github.com/rs/zerolog/log"
)

// Routing keys of the order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderReplaced      = "order.replaced"
	EventOrderItemAdded     = "order.item_added"
	EventOrderItemRemoved   = "order.item_removed"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// EventPublisher delivers an encoded event under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// ProductCacheInvalidator forgets cached product reads.
type ProductCacheInvalidator interface {
	Invalidate(ctx context.Context, productIDs ...string)
}

// OrderEvent is the body of every order event.
type OrderEvent struct {
	Type        string               `json:"type"`
	OrderID     string               `json:"order_id"`
	Status      models.PaymentStatus `json:"status"`
	TotalAmount float64              `json:"total_amount"`
	ItemCount   int                  `json:"item_count"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// publish sends the event after a commit. Failures are logged, never returned:
// the order change has already happened.
func (s *OrderService) publish(eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(OrderEvent{
		Type:        eventType,
		OrderID:     order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		OccurredAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("failed to marshal order event")
		return
	}
	if err := s.publisher.Publish(eventType, body); err != nil {
		log.Warn().Err(err).Str("order_id", order.ID).Str("event", eventType).Msg("failed to publish order event")
	}
}

func (s *OrderService) invalidate(ctx context.Context, ids []string) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	s.cache.Invalidate(ctx, ids...)
}
