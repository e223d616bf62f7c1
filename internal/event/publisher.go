package event

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Routing keys published by the engine.
const (
	SessionCreated     = "exam.session.created"
	SessionOffline     = "exam.session.offline"
	SessionSubmitted   = "exam.session.submitted"
	SubmitFailed       = "exam.session.submit_failed"
	SessionExpired     = "exam.session.expired"
	SubjectChanged     = "exam.subject.changed"
	EntitlementBlocked = "exam.entitlement.blocked"
	SyncCompleted      = "exam.sync.completed"
)

// Publisher is implemented by anything that can fan out engine events.
type Publisher interface {
	Publish(eventType string, payload interface{}) error
}

type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	event := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	fmt.Printf("[EVENT] %s: %v\n", eventType, payload)

	// Use the event type as the routing key for topic exchange
	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
