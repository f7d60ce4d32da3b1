package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"wordduel/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher публикует события дуэлей в topic exchange с ключом user.<uid>
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher подключается к RabbitMQ и объявляет exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // args
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	log.Printf("RabbitMQ initialized, exchange %s", exchange)
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func routingKey(userID string) string {
	return "user." + userID
}

func (p *AMQPPublisher) Publish(ctx context.Context, notification models.DuelNotification) error {
	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey(notification.UserID),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// StartConsumer слушает события дуэлей и пушит их получателям через websocket
func (p *AMQPPublisher) StartConsumer(ctx context.Context, queueName string, ws *WSConnManager) error {
	q, err := p.channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := p.channel.QueueBind(q.Name, "user.*", p.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	msgs, err := p.channel.Consume(
		q.Name,
		"",
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Duel event consumer channel closed")
					return
				}
				if err := deliver(msg.Body, ws); err != nil {
					log.Println("Failed to deliver duel event:", err)
				}
			}
		}
	}()
	return nil
}

func deliver(body []byte, ws *WSConnManager) error {
	var notification models.DuelNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal duel event: %w", err)
	}
	if notification.UserID == "" {
		return fmt.Errorf("duel event %s without recipient", notification.DuelID)
	}
	return ws.Push(notification)
}

func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
