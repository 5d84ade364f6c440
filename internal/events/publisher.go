package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shopkern/orderd/internal/order"
)

const OrderPlacedQueue = "order.placed"

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderPlacedQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", OrderPlacedQueue, err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderPlaced(ctx context.Context, o *order.Order) error {
	ev := newOrderPlaced(o, time.Now().UTC())

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}
	return p.publishJSON(ctx, OrderPlacedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
