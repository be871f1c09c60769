package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/minq3010/ticket-checkin/internal/models"
	"github.com/minq3010/ticket-checkin/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventConsumer keeps the local event replicas in sync with the event
// service so validation responses and owner screens can show event metadata.
type EventConsumer struct {
	eventRepo repository.EventRepository
}

func NewEventConsumer(eventRepo repository.EventRepository) *EventConsumer {
	return &EventConsumer{eventRepo: eventRepo}
}

func (ec *EventConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ec.handleMessage(msg)
		}
		log.Println("[EventConsumer] channel closed, stopping consumer")
	}()
}

func (ec *EventConsumer) handleMessage(msg amqp.Delivery) {
	var event models.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("[EventConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	if err := ec.eventRepo.Upsert(context.Background(), &event); err != nil {
		log.Printf("[EventConsumer] failed to upsert event %d: %v", event.ID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[EventConsumer] synced event %d: %s", event.ID, event.Name)
	msg.Ack(false)
}
