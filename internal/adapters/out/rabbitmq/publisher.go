package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// transitionExchange is the fanout exchange transition events are published to.
const transitionExchange = "order_transitions_fanout"

// transitionMessage is the wire form of a transition event.
type transitionMessage struct {
	OrderID    string    `json:"order_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// TransitionPublisher implements ports.TransitionPublisher over a RabbitMQ
// fanout exchange. Messages are persistent JSON so consumers survive broker
// restarts.
type TransitionPublisher struct {
	conn Connection
}

// NewTransitionPublisher creates a publisher over the given connection.
func NewTransitionPublisher(conn Connection) *TransitionPublisher {
	return &TransitionPublisher{conn: conn}
}

// Publish emits one transition event to the fanout exchange.
func (p *TransitionPublisher) Publish(_ context.Context, event ports.TransitionEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		transitionExchange, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	body, err := json.Marshal(transitionMessage{
		OrderID:    event.OrderID.String(),
		OldStatus:  event.OldStatus.String(),
		NewStatus:  event.NewStatus.String(),
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.Publish(transitionExchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}
