package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/artisan-crm/internal/event"
)

// LeadEventProducer mirrors lead mutation events onto the broker so
// downstream consumers (the mail notifier, external CRMs) can react without
// holding a websocket open. The in-process hub stays best-effort; this is
// the durable leg.
type LeadEventProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *LeadEventProducer {
	return &LeadEventProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *LeadEventProducer) PublishLeadEvent(ctx context.Context, e event.LeadEvent) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal lead event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish lead event: %w", err)
	}

	return nil
}
