package core

import (
	"context"

	"wildcats-food-express/internal/order/domain/dto"
)

// IPublisher broadcasts events to observers. Implementations never block the
// caller on delivery and never report delivery failures.
type IPublisher interface {
	Publish(ctx context.Context, event dto.Event)
}

// ISink is one delivery channel behind the publisher.
type ISink interface {
	Name() string
	Send(ctx context.Context, event dto.Event) error
	Close() error
}

type IRabbitMQ interface {
	ISink
	IsAlive() error
}
