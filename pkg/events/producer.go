/**
 * @description
 * This package publishes payment lifecycle events to a RabbitMQ topic
 * exchange so downstream consumers (notifications, analytics) can react to
 * verified payments without coupling to this service.
 */
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange is the durable topic exchange all payment events are published to.
const Exchange = "payment.events"

// Routing keys for the events this service emits.
const (
	RoutingSubscriptionActivated = "payment.subscription.activated"
	RoutingPayPerViewCompleted   = "payment.ppv.completed"
)

// Publisher is the interface implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body interface{}) error
	Close()
}

// Producer publishes events to a RabbitMQ exchange.
type Producer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewProducer connects to RabbitMQ and declares the payment exchange.
func NewProducer(amqpURL string) (*Producer, error) {
	// Bounded dial timeout so startup does not hang indefinitely.
	conn, err := amqp.DialConfig(amqpURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // type
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Producer{conn: conn, channel: ch}, nil
}

// Publish sends a JSON message to the payment exchange with a routing key.
func (p *Producer) Publish(ctx context.Context, routingKey string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	return p.channel.PublishWithContext(ctx,
		Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         payload,
		},
	)
}

// Close shuts down the channel and connection.
func (p *Producer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NoopPublisher is a minimal publisher used when RabbitMQ is not configured.
// It lets the service run and logs events instead of failing hard.
type NoopPublisher struct {
	Logger *slog.Logger
}

func (n *NoopPublisher) Publish(ctx context.Context, routingKey string, body interface{}) error {
	if n.Logger != nil {
		n.Logger.Info("event publishing disabled, dropping event", "routing_key", routingKey)
	}
	return nil
}

func (n *NoopPublisher) Close() {}
