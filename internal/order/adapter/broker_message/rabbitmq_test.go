package brokermessage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/config"
	"wildcats-food-express/internal/xpkg/logger"
)

func unreachable() *config.RabbitMQ {
	return &config.RabbitMQ{Host: "127.0.0.1", Port: "1", User: "guest", Password: "guest", Exchange: "order_notifications"}
}

func TestURL(t *testing.T) {
	cfg := &config.RabbitMQ{Host: "mq", Port: "5672", User: "u", Password: "p", VHost: "v"}
	assert.Equal(t, "amqp://u:p@mq:5672/v", URL(cfg))
}

func TestNewFailsWithoutBroker(t *testing.T) {
	_, err := New(context.Background(), unreachable(), logger.Nop())
	assert.ErrorIs(t, err, core.ErrRMQConn)
}

func TestNoReconnectAfterClose(t *testing.T) {
	r := newRabbitMQ(context.Background(), unreachable(), logger.Nop())
	require.NoError(t, r.Close())

	assert.ErrorIs(t, r.connect(), core.ErrMBClosed)

	done := make(chan struct{})
	go func() {
		r.reconnect(r.ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reconnect kept running after Close")
	}

	err := r.Send(context.Background(), dto.NewOrderEvent(models.Order{ID: "o-1"}))
	assert.ErrorIs(t, err, core.ErrMBClosed)
	assert.False(t, r.isReconnecting())
}
