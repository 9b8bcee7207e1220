package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	exchangeName = "order_notifications"
	exchangeType = "topic"
	routingKey   = "order.confirmed"
)

// AMQPPublisher dispatches events through a RabbitMQ topic exchange for
// deployments where the mail function consumes from a queue instead of being
// invoked directly. Broker-based delivery is inherently fire-and-forget, so
// RequestResponse is rejected with ErrModeUnsupported.
type AMQPPublisher struct {
	ch *amqp.Channel
}

// SetupAMQP dials the broker, opens a channel, and declares the notification
// exchange. Retries a few times to ride out container startup ordering.
func SetupAMQP(url string) (*amqp.Connection, *AMQPPublisher, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("notify: connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("notify: open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, exchangeType, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("notify: declare exchange %q: %w", exchangeName, err)
	}

	return conn, &AMQPPublisher{ch: ch}, nil
}

var _ Dispatcher = (*AMQPPublisher)(nil)

func (p *AMQPPublisher) Dispatch(ctx context.Context, ev Event, mode Mode) error {
	if mode != FireAndForget {
		return ErrModeUnsupported
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify: marshal event for order %s: %w", ev.OrderID, err)
	}

	return p.ch.PublishWithContext(ctx,
		exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
