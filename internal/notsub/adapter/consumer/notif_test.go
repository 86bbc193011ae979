package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
)

type ackRecorder struct {
	mu     sync.Mutex
	acked  []uint64
	nacked []uint64
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.acked = append(a.acked, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _, _ bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nacked = append(a.nacked, tag)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

type fakeBroker struct {
	deliveries chan amqp.Delivery
	closed     bool
}

func (f *fakeBroker) Subscribe(context.Context, string) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeBroker) IsAlive() bool { return !f.closed }

func (f *fakeBroker) Close() error {
	f.closed = true
	return nil
}

func delivery(t *testing.T, acks *ackRecorder, tag uint64, event any) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: acks, DeliveryTag: tag, Body: body}
}

func TestNotificationAcksKnownEventsAndDropsGarbage(t *testing.T) {
	acks := &ackRecorder{}
	broker := &fakeBroker{deliveries: make(chan amqp.Delivery, 4)}
	var out bytes.Buffer

	order := models.Order{ID: "o-1", StudentNumber: "2021-0001", Status: models.StatusReady, UserID: "u1"}
	broker.deliveries <- delivery(t, acks, 1, dto.NewOrderEvent(order))
	broker.deliveries <- delivery(t, acks, 2, dto.StatusChangeEvent(order))
	broker.deliveries <- delivery(t, acks, 3, map[string]string{"event": "somethingElse"})
	broker.deliveries <- amqp.Delivery{Acknowledger: acks, DeliveryTag: 4, Body: []byte("{not json")}
	close(broker.deliveries)

	n := NewNotification(context.Background(), broker, &out, logger.Nop())
	require.NoError(t, n.Run("test"))
	require.NoError(t, n.Stop(context.Background()))

	assert.ElementsMatch(t, []uint64{1, 2}, acks.acked)
	assert.ElementsMatch(t, []uint64{3, 4}, acks.nacked)
	assert.True(t, broker.closed)
	assert.Contains(t, out.String(), "Notification for order o-1: status changed to 'Ready'")
	assert.Contains(t, out.String(), "new order o-1 from 2021-0001")
}

func TestNotificationStopsOnCancel(t *testing.T) {
	broker := &fakeBroker{deliveries: make(chan amqp.Delivery)}
	ctx, cancel := context.WithCancel(context.Background())
	n := NewNotification(ctx, broker, &bytes.Buffer{}, logger.Nop())

	done := make(chan error, 1)
	go func() { done <- n.Run("test") }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
