package core

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

type IRabbitMQ interface {
	// Subscribe binds a fresh exclusive queue to the notification exchange.
	Subscribe(ctx context.Context, consumer string) (<-chan amqp.Delivery, error)
	IsAlive() bool
	Close() error
}
