package rabbitmq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// New dials the broker and declares the given durable queues, so a broker that
// accepts the connection but refuses declarations fails startup.
func New(ctx context.Context, url string, queues ...string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq failed: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	for _, q := range queues {
		if err := ctx.Err(); err != nil {
			_ = conn.Close()
			return nil, err
		}
		if _, err := DeclareQueue(ch, q); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return conn, nil
}
