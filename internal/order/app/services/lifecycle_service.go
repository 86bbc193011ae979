package services

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// StatusResult is the outcome of a status change. Order is nil when the
// order reached a terminal status and was moved to history.
type StatusResult struct {
	Order    *models.Order
	Archived bool
}

type LifecycleService struct {
	store     core.IStore
	publisher core.IPublisher
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	mylog     logger.Logger
	now       func() time.Time
}

func NewLifecycleService(
	store core.IStore,
	publisher core.IPublisher,
	metrics *telemetry.Metrics,
	tracer trace.Tracer,
	mylogger logger.Logger,
) *LifecycleService {
	return &LifecycleService{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		tracer:    tracer,
		mylog:     mylogger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetStatus moves an order to next. A terminal status archives the order and
// removes it from the active set in the same transaction.
func (ls *LifecycleService) SetStatus(ctx context.Context, orderID, next string) (StatusResult, error) {
	mylog := ls.mylog.Action("set_status").With("order_id", orderID)

	status, ok := models.ParseStatus(next)
	if !ok {
		return StatusResult{}, fmt.Errorf("%q: %w", next, core.ErrInvalidStatus)
	}

	ctx, span := ls.tracer.Start(ctx, "order.set_status", trace.WithAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	var (
		result  StatusResult
		changed models.Order
	)
	err := ls.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		current, err := repos.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransition(status) {
			return fmt.Errorf("%s -> %s: %w", current.Status, status, core.ErrInvalidTransition)
		}

		if !status.IsTerminal() {
			updated, err := repos.Orders().UpdateStatus(ctx, orderID, status)
			if err != nil {
				return err
			}
			changed = updated
			result = StatusResult{Order: &updated}
			return nil
		}

		current.Status = status
		current.UpdatedAt = ls.now()
		if err := repos.History().Append(ctx, models.HistoryOrder{Order: current, ArchivedAt: current.UpdatedAt}); err != nil {
			return err
		}
		if err := repos.Orders().Delete(ctx, orderID); err != nil {
			return err
		}
		changed = current
		result = StatusResult{Archived: true}
		return nil
	})
	if err != nil {
		err = storageErr(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, core.ErrStorage) {
			mylog.Error("Failed to change order status", err)
		} else {
			mylog.Warn("Status change rejected", "status", next, "reason", err.Error())
		}
		return StatusResult{}, err
	}

	if result.Archived {
		ls.metrics.OrdersArchived.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
	}
	ls.publisher.Publish(ctx, dto.StatusChangeEvent(changed))

	mylog.Info("Order status changed", "status", status, "archived", result.Archived)
	return result, nil
}
