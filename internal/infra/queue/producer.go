package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	EventLeadCreated = "lead.created"
	EventLeadUpdated = "lead.updated"
	EventLeadDeleted = "lead.deleted"
)

type LeadEvent struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Lead       entity.Lead `json:"lead"`
	OccurredAt time.Time   `json:"occurredAt"`
}

func NewLeadEvent(eventType string, lead entity.Lead) LeadEvent {
	return LeadEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Lead:       lead,
		OccurredAt: time.Now().UTC(),
	}
}

// RoutingKey maps "lead.created" to "k.lead.created".
func (e LeadEvent) RoutingKey() string {
	return RoutingPrefix + strings.TrimPrefix(e.Type, "lead.")
}

type RabbitMQProducer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		event.RoutingKey(),
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.ID,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}

	return nil
}

// NoopProducer drops events; used when no broker is configured.
type NoopProducer struct{}

func (NoopProducer) PublishLeadEvent(context.Context, LeadEvent) error {
	return nil
}
