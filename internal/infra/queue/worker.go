package queue

import (
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/artisan-crm/internal/event"
)

// LeadNotifier is implemented by the mail sender.
type LeadNotifier interface {
	NotifyNewLead(e event.LeadEvent) error
}

// Worker consumes the lead-event queue and triggers notifications. It is
// fully decoupled from the database and the HTTP layer.
type Worker struct {
	Channel  *amqp.Channel
	Notifier LeadNotifier
}

func NewWorker(ch *amqp.Channel, notifier LeadNotifier) *Worker {
	return &Worker{
		Channel:  ch,
		Notifier: notifier,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("worker: failed to register consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var e event.LeadEvent
			if err := json.Unmarshal(d.Body, &e); err != nil {
				log.Printf("worker: invalid JSON, rejecting message: %s", err)
				// malformed message, reject without requeue so it hits the DLQ
				d.Nack(false, false)
				continue
			}

			if err := w.process(e); err != nil {
				log.Printf("worker: notification failed for %s: %s", e.LeadID, err)
				d.Nack(false, false)
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf("worker: waiting on queue %q", queueName)
	<-forever
}

func (w *Worker) process(e event.LeadEvent) error {
	switch e.Event {
	case event.LeadCreated:
		return w.Notifier.NotifyNewLead(e)

	case event.LeadUpdated, event.LeadDeleted:
		// consumed and acknowledged, no notification for these yet
		return nil

	default:
		log.Printf("worker: unknown event %q, acking to clear the queue", e.Event)
		return nil
	}
}
