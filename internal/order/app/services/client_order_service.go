package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
)

// ClientOrderService runs the counter desk. Client orders never touch menu stock.
type ClientOrderService struct {
	store    core.IStore
	mylog    logger.Logger
	priority func() int
}

func NewClientOrderService(store core.IStore, mylogger logger.Logger) *ClientOrderService {
	return &ClientOrderService{
		store:    store,
		mylog:    mylogger,
		priority: func() int { return rand.IntN(core.MaxPriorityNum) },
	}
}

func (cs *ClientOrderService) Create(ctx context.Context, req dto.ClientOrderRequest) (models.ClientOrder, error) {
	if strings.TrimSpace(req.SchoolID) == "" {
		return models.ClientOrder{}, fmt.Errorf("schoolId: %w", core.ErrFieldIsEmpty)
	}
	if len(req.Items) == 0 {
		return models.ClientOrder{}, fmt.Errorf("items: %w", core.ErrFieldIsEmpty)
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.Name) == "" {
			return models.ClientOrder{}, fmt.Errorf("item %d: name: %w", i+1, core.ErrFieldIsEmpty)
		}
		if item.Quantity < 1 {
			return models.ClientOrder{}, fmt.Errorf("%w: item %d: quantity must be positive", core.ErrValidation, i+1)
		}
	}
	if req.TotalPrice == nil {
		return models.ClientOrder{}, fmt.Errorf("totalPrice: %w", core.ErrFieldIsEmpty)
	}
	if *req.TotalPrice < 0 {
		return models.ClientOrder{}, fmt.Errorf("%w: totalPrice must not be negative", core.ErrValidation)
	}

	status := models.StatusPending
	if req.Status != "" {
		st, ok := models.ParseStatus(req.Status)
		if !ok {
			return models.ClientOrder{}, fmt.Errorf("%q: %w", req.Status, core.ErrInvalidStatus)
		}
		status = st
	}

	priority := req.PriorityNumber
	if priority <= 0 {
		priority = cs.priority()
	}

	var created models.ClientOrder
	err := cs.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		created, err = repos.ClientOrders().Create(ctx, models.ClientOrder{
			SchoolID:       req.SchoolID,
			Items:          req.Items,
			Status:         status,
			PriorityNumber: priority,
			TotalPrice:     *req.TotalPrice,
		})
		return err
	})
	if err != nil {
		cs.mylog.Action("client_order_create").Error("Failed to create client order", err, "school_id", req.SchoolID)
		return models.ClientOrder{}, storageErr(err)
	}

	cs.mylog.Action("client_order_created").Info("Client order created",
		"client_order_id", created.ID, "school_id", created.SchoolID, "priority", created.PriorityNumber)
	return created, nil
}

func (cs *ClientOrderService) List(ctx context.Context) ([]models.ClientOrder, error) {
	var orders []models.ClientOrder
	err := cs.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		var err error
		orders, err = repos.ClientOrders().List(ctx)
		return err
	})
	if err != nil {
		cs.mylog.Action("client_order_list").Error("Failed to list client orders", err)
		return nil, storageErr(err)
	}
	return orders, nil
}

// SetStatus follows the same transitions as regular orders but never archives.
func (cs *ClientOrderService) SetStatus(ctx context.Context, id, next string) (models.ClientOrder, error) {
	status, ok := models.ParseStatus(next)
	if !ok {
		return models.ClientOrder{}, fmt.Errorf("%q: %w", next, core.ErrInvalidStatus)
	}

	var updated models.ClientOrder
	err := cs.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		current, err := repos.ClientOrders().Get(ctx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransition(status) {
			return fmt.Errorf("%s -> %s: %w", current.Status, status, core.ErrInvalidTransition)
		}
		updated, err = repos.ClientOrders().UpdateStatus(ctx, id, status)
		return err
	})
	if err != nil {
		return models.ClientOrder{}, fmt.Errorf("client order %s: %w", id, storageErr(err))
	}

	cs.mylog.Action("client_order_status").Info("Client order status changed", "client_order_id", id, "status", status)
	return updated, nil
}

func (cs *ClientOrderService) Delete(ctx context.Context, id string) error {
	err := cs.store.Tx(ctx, func(ctx context.Context, repos core.IRepos) error {
		return repos.ClientOrders().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("client order %s: %w", id, storageErr(err))
	}

	cs.mylog.Action("client_order_deleted").Info("Client order deleted", "client_order_id", id)
	return nil
}
