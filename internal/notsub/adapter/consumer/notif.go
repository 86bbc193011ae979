package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"wildcats-food-express/internal/notsub/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
)

// envelope matches the order-service event shape, with data left raw until the
// event name is known.
type envelope struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

type Notification struct {
	ctx   context.Context
	mylog logger.Logger
	mb    core.IRabbitMQ
	out   io.Writer

	mu sync.Mutex
	wg sync.WaitGroup
}

func NewNotification(ctx context.Context, mb core.IRabbitMQ, out io.Writer, mylog logger.Logger) *Notification {
	return &Notification{
		ctx:   ctx,
		mb:    mb,
		out:   out,
		mylog: mylog,
	}
}

// Run consumes notifications until the context is cancelled or the delivery channel closes.
func (n *Notification) Run(consumer string) error {
	mylog := n.mylog.Action("run_notifications")

	messageBus, err := n.mb.Subscribe(n.ctx, consumer)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}
	mylog.Info("Waiting for order notifications")

	n.work(messageBus)
	return nil
}

func (n *Notification) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.mylog.Action("graceful_shutdown_started").Info("Shutting down")

	// wait for in-flight messages
	n.wg.Wait()

	if n.mb != nil {
		if err := n.mb.Close(); err != nil {
			n.mylog.Action("mb_close_failed").Error("Failed to close message broker", err)
			return fmt.Errorf("mb close: %w", err)
		}
		n.mylog.Action("mb_closed").Info("Message broker closed")
	}

	n.mylog.Action("graceful_shutdown_completed").Info("Successfully shut down")
	return nil
}

func (n *Notification) work(notifCh <-chan amqp.Delivery) {
	for {
		select {
		case <-n.ctx.Done():
			n.mylog.Action("work_shutdown").Info("Stopping message consumption due to context cancel")
			return

		case msg, ok := <-notifCh:
			if !ok {
				return
			}
			n.wg.Add(1)
			go func(msg amqp.Delivery) {
				defer n.wg.Done()
				n.handle(msg)
			}(msg)
		}
	}
}

func (n *Notification) handle(msg amqp.Delivery) {
	if err := n.processMsg(msg); err != nil {
		n.mylog.Action("process_msg").Error("Failed to process notification", err)
		// malformed events will not get better on redelivery
		if err := msg.Nack(false, false); err != nil {
			n.mylog.Action("nack").Error("Failed to nack", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		n.mylog.Action("ack").Error("Failed to ack", err)
	}
}

func (n *Notification) processMsg(msg amqp.Delivery) error {
	var ev envelope
	if err := json.Unmarshal(msg.Body, &ev); err != nil {
		return fmt.Errorf("unmarshal message: %v", err)
	}

	switch ev.Name {
	case dto.EventNewOrder:
		var o models.Order
		if err := json.Unmarshal(ev.Data, &o); err != nil {
			return fmt.Errorf("unmarshal new order: %v", err)
		}
		n.mylog.Action("notification_received").WithGroup("details").
			Info("New order placed", "order_id", o.ID, "student_number", o.StudentNumber, "total", o.TotalPrice)
		fmt.Fprintf(n.out, "Notification: new order %s from %s, %d line item(s), total %.2f.\n",
			o.ID, o.StudentNumber, len(o.MenusOrdered), o.TotalPrice)

	case dto.EventOrderStatusUpdate:
		var sc dto.StatusChange
		if err := json.Unmarshal(ev.Data, &sc); err != nil {
			return fmt.Errorf("unmarshal status change: %v", err)
		}
		n.mylog.Action("notification_received").WithGroup("details").
			Info("Received status update for order", "order_id", sc.OrderID, "new_status", sc.Status)
		fmt.Fprintf(n.out, "Notification for order %s: status changed to '%s' for student %s.\n",
			sc.OrderID, sc.Status, sc.StudentNumber)

	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownEvent, ev.Name)
	}
	return nil
}
