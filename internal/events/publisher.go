package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"
)

const queueName = "capoff_events"

// Publisher pushes write events (attempt.created, vote.cast, ...) onto a
// queue for the downstream notification pipeline. It is optional: a nil
// *Publisher is safe to call and does nothing, so the request path never
// depends on the broker being up.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func Connect(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", queueName, err)
	}

	log.Printf("Event publisher connected, queue %s declared", queueName)
	return &Publisher{conn: conn, channel: ch}, nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event publisher: %v", errs)
	}
	return nil
}

// Publish sends one event. Failures are returned but callers treat them as
// advisory; a write must never fail because the broker did.
func (p *Publisher) Publish(eventType string, data map[string]interface{}) error {
	if p == nil || p.channel == nil {
		return nil
	}

	body, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": data,
		"at":   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	err = p.channel.Publish(
		"",        // default exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// PublishAsync fires the event from a goroutine and only logs failures.
func (p *Publisher) PublishAsync(eventType string, data map[string]interface{}) {
	if p == nil {
		return
	}
	go func() {
		if err := p.Publish(eventType, data); err != nil {
			log.Printf("event publish failed: %v", err)
		}
	}()
}
