package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
	"wildcats-food-express/internal/xpkg/telemetry"
)

type OrderService struct {
	store     core.IStore
	publisher core.IPublisher
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	mylog     logger.Logger
}

func NewOrderService(
	store core.IStore,
	publisher core.IPublisher,
	metrics *telemetry.Metrics,
	tracer trace.Tracer,
	mylogger logger.Logger,
) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		mylog:     mylogger,
	}
}

// PlaceOrder creates a Pending order for the session user and reserves stock
// for every line item in the same transaction.
func (os *OrderService) PlaceOrder(ctx context.Context, req dto.PlaceOrderRequest) (models.Order, error) {
	mylog := os.mylog.Action("place_order")

	sess, err := sessionFrom(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if err := os.ValidateOrder(req); err != nil {
		mylog.Warn("Rejected order request", "user_id", sess.UserID, "reason", err.Error())
		return models.Order{}, err
	}

	ctx, span := os.tracer.Start(ctx, "order.place", trace.WithAttributes(
		attribute.String("user.id", sess.UserID),
		attribute.Int("order.items", len(req.MenusOrdered)),
	))
	defer span.End()

	var placed models.Order
	err = os.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		o, err := repos.Orders().Create(ctx, models.Order{
			UserID:        sess.UserID,
			UserName:      req.UserName,
			StudentNumber: req.StudentNumber,
			MenusOrdered:  req.MenusOrdered,
			TotalPrice:    req.TotalPrice,
			Status:        models.StatusPending,
		})
		if err != nil {
			return err
		}

		for _, r := range mergeReservations(req.MenusOrdered) {
			if _, err := repos.Menu().Reserve(ctx, r.ItemName, r.Quantity); err != nil {
				return fmt.Errorf("%q: %w", r.ItemName, err)
			}
		}

		placed = o
		return nil
	})
	if err != nil {
		err = storageErr(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		outcome := "failed"
		if errors.Is(err, core.ErrOutOfStock) || errors.Is(err, core.ErrItemNotFound) {
			outcome = "rejected"
			os.metrics.StockRejections.Add(ctx, 1)
			mylog.Warn("Order rejected by inventory", "user_id", sess.UserID, "reason", err.Error())
		} else {
			mylog.Error("Failed to place order", err, "user_id", sess.UserID)
		}
		os.metrics.OrdersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("status", outcome)))
		return models.Order{}, err
	}

	os.metrics.OrdersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "placed")))
	os.metrics.OrderValue.Record(ctx, placed.TotalPrice)
	span.SetAttributes(attribute.String("order.id", placed.ID))

	os.publisher.Publish(ctx, dto.NewOrderEvent(placed))

	mylog.Info("Order placed", "order_id", placed.ID, "user_id", placed.UserID, "total", placed.TotalPrice)
	return placed, nil
}

// ListOrders returns every active order to admins and only their own to everyone else.
func (os *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	sess, err := sessionFrom(ctx)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	err = os.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		if sess.IsAdmin() {
			orders, err = repos.Orders().ListAll(ctx)
		} else {
			orders, err = repos.Orders().List(ctx, sess.UserID)
		}
		return err
	})
	if err != nil {
		os.mylog.Action("list_orders").Error("Failed to list orders", err)
		return nil, storageErr(err)
	}
	return orders, nil
}

// AttachPaymentProof records the stored receipt and payment details on an active order.
func (os *OrderService) AttachPaymentProof(ctx context.Context, proof dto.PaymentProof) (models.Order, error) {
	mylog := os.mylog.Action("attach_payment")

	sess, err := sessionFrom(ctx)
	if err != nil {
		return models.Order{}, err
	}
	if strings.TrimSpace(proof.ReferenceNumber) == "" {
		return models.Order{}, fmt.Errorf("referenceNumber: %w", core.ErrFieldIsEmpty)
	}
	if proof.ReceiptPath == "" {
		return models.Order{}, fmt.Errorf("receipt: %w", core.ErrFieldIsEmpty)
	}

	var updated models.Order
	err = os.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		current, err := repos.Orders().Get(ctx, proof.OrderID)
		if err != nil {
			return err
		}
		// other users' orders are reported as missing
		if !sess.IsAdmin() && current.UserID != sess.UserID {
			return core.ErrOrderNotFound
		}
		updated, err = repos.Orders().UpdatePayment(ctx, proof.OrderID, proof.ReceiptPath, proof.ReferenceNumber, proof.AmountSent)
		return err
	})
	if err != nil {
		err = storageErr(err)
		if errors.Is(err, core.ErrOrderNotFound) {
			mylog.Warn("Payment proof for unknown order", "order_id", proof.OrderID)
			return models.Order{}, fmt.Errorf("order %s: %w", proof.OrderID, err)
		}
		mylog.Error("Failed to attach payment proof", err, "order_id", proof.OrderID)
		return models.Order{}, err
	}

	mylog.Info("Payment proof attached", "order_id", updated.ID, "reference_number", proof.ReferenceNumber)
	return updated, nil
}

// ValidateOrder checks the request shape before any storage work.
func (os *OrderService) ValidateOrder(req dto.PlaceOrderRequest) error {
	if strings.TrimSpace(req.StudentNumber) == "" {
		return fmt.Errorf("studentNumber: %w", core.ErrFieldIsEmpty)
	}
	if len(req.MenusOrdered) == 0 {
		return fmt.Errorf("menusOrdered: %w", core.ErrFieldIsEmpty)
	}
	if len(req.MenusOrdered) > core.MaxItems {
		return fmt.Errorf("%w: at most %d line items per order", core.ErrValidation, core.MaxItems)
	}
	for i, item := range req.MenusOrdered {
		if strings.TrimSpace(item.ItemName) == "" {
			return fmt.Errorf("item %d: itemName: %w", i+1, core.ErrFieldIsEmpty)
		}
		if item.Quantity < 1 || item.Quantity > core.MaxItemQty {
			return fmt.Errorf("%w: item %d: quantity %d must be in range [1, %d]", core.ErrValidation, i+1, item.Quantity, core.MaxItemQty)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %d: negative price", core.ErrValidation, i+1)
		}
	}
	if req.TotalPrice <= 0 {
		return fmt.Errorf("%w: totalPrice must be positive", core.ErrValidation)
	}
	return nil
}

// mergeReservations sums quantities per item name and sorts by name, so that
// concurrent placements lock the same rows in the same order.
func mergeReservations(items []models.LineItem) []models.LineItem {
	byName := make(map[string]int, len(items))
	for _, item := range items {
		byName[item.ItemName] += item.Quantity
	}

	out := make([]models.LineItem, 0, len(byName))
	for name, qty := range byName {
		out = append(out, models.LineItem{ItemName: name, Quantity: qty})
	}
	slices.SortFunc(out, func(a, b models.LineItem) int { return cmp.Compare(a.ItemName, b.ItemName) })
	return out
}
