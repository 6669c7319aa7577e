package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"docintake/internal/model"
)

// UploadEventPublisher sends upload audit records to a durable queue.
type UploadEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewUploadEventPublisher(conn *amqp.Connection, queueName string) *UploadEventPublisher {
	return &UploadEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *UploadEventPublisher) Publish(ctx context.Context, record model.UploadRecord) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	if _, err := DeclareQueue(ch, p.queueName); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal upload event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         "upload." + record.Status,
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish upload event failed: %w", err)
	}
	return nil
}

// DeclareQueue declares the durable queue shared by the publisher and the worker.
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("declare queue %s failed: %w", name, err)
	}
	return q, nil
}
