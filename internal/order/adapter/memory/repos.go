package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/models"
)

type menuRepo struct{ *repos }

func (r *menuRepo) List(context.Context) ([]models.MenuItem, error) {
	return append([]models.MenuItem{}, r.st.menu...), nil
}

func (r *menuRepo) Get(_ context.Context, id string) (models.MenuItem, error) {
	i := r.indexByID(id)
	if i < 0 {
		return models.MenuItem{}, core.ErrItemNotFound
	}
	return r.st.menu[i], nil
}

func (r *menuRepo) Create(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	if r.indexByName(item.Name) >= 0 {
		return models.MenuItem{}, fmt.Errorf("%q: %w", item.Name, core.ErrDuplicateItem)
	}
	item.ID = uuid.NewString()
	item.CreatedAt = r.now()
	item.UpdatedAt = item.CreatedAt
	r.st.menu = append(r.st.menu, item)
	return item, nil
}

func (r *menuRepo) Update(_ context.Context, item models.MenuItem) (models.MenuItem, error) {
	i := r.indexByID(item.ID)
	if i < 0 {
		return models.MenuItem{}, core.ErrItemNotFound
	}
	if j := r.indexByName(item.Name); j >= 0 && j != i {
		return models.MenuItem{}, fmt.Errorf("%q: %w", item.Name, core.ErrDuplicateItem)
	}
	item.CreatedAt = r.st.menu[i].CreatedAt
	item.UpdatedAt = r.now()
	r.st.menu[i] = item
	return item, nil
}

func (r *menuRepo) Delete(_ context.Context, id string) (models.MenuItem, error) {
	i := r.indexByID(id)
	if i < 0 {
		return models.MenuItem{}, core.ErrItemNotFound
	}
	item := r.st.menu[i]
	r.st.menu = append(r.st.menu[:i], r.st.menu[i+1:]...)
	return item, nil
}

func (r *menuRepo) Reserve(_ context.Context, name string, quantity int) (models.MenuItem, error) {
	i := r.indexByName(name)
	if i < 0 {
		return models.MenuItem{}, core.ErrItemNotFound
	}
	if r.st.menu[i].Quantity < quantity {
		return models.MenuItem{}, core.ErrOutOfStock
	}
	r.st.menu[i].Quantity -= quantity
	r.st.menu[i].UpdatedAt = r.now()
	return r.st.menu[i], nil
}

func (r *menuRepo) Adjust(_ context.Context, id string, delta int) (models.MenuItem, error) {
	i := r.indexByID(id)
	if i < 0 {
		return models.MenuItem{}, core.ErrItemNotFound
	}
	if r.st.menu[i].Quantity+delta < 0 {
		return models.MenuItem{}, core.ErrOutOfStock
	}
	r.st.menu[i].Quantity += delta
	r.st.menu[i].UpdatedAt = r.now()
	return r.st.menu[i], nil
}

func (r *menuRepo) indexByID(id string) int {
	for i := range r.st.menu {
		if r.st.menu[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *menuRepo) indexByName(name string) int {
	for i := range r.st.menu {
		if r.st.menu[i].Name == name {
			return i
		}
	}
	return -1
}

type orderRepo struct{ *repos }

func (r *orderRepo) Create(_ context.Context, order models.Order) (models.Order, error) {
	order.ID = uuid.NewString()
	order.CreatedAt = r.now()
	order.UpdatedAt = order.CreatedAt
	r.st.orders = append(r.st.orders, order.Clone())
	return order, nil
}

func (r *orderRepo) Get(_ context.Context, id string) (models.Order, error) {
	i := r.index(id)
	if i < 0 {
		return models.Order{}, core.ErrOrderNotFound
	}
	return r.st.orders[i].Clone(), nil
}

func (r *orderRepo) List(_ context.Context, userID string) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range r.st.orders {
		if o.UserID == userID {
			out = append(out, o.Clone())
		}
	}
	return out, nil
}

func (r *orderRepo) ListAll(context.Context) ([]models.Order, error) {
	out := make([]models.Order, 0, len(r.st.orders))
	for _, o := range r.st.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, id string, status models.Status) (models.Order, error) {
	i := r.index(id)
	if i < 0 {
		return models.Order{}, core.ErrOrderNotFound
	}
	r.st.orders[i].Status = status
	r.st.orders[i].UpdatedAt = r.now()
	return r.st.orders[i].Clone(), nil
}

func (r *orderRepo) UpdatePayment(_ context.Context, id, receiptPath, referenceNumber string, amountSent float64) (models.Order, error) {
	i := r.index(id)
	if i < 0 {
		return models.Order{}, core.ErrOrderNotFound
	}
	o := &r.st.orders[i]
	o.ReceiptPath = &receiptPath
	o.ReferenceNumber = &referenceNumber
	o.AmountSent = &amountSent
	o.UpdatedAt = r.now()
	return o.Clone(), nil
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return core.ErrOrderNotFound
	}
	r.st.orders = append(r.st.orders[:i], r.st.orders[i+1:]...)
	return nil
}

func (r *orderRepo) index(id string) int {
	for i := range r.st.orders {
		if r.st.orders[i].ID == id {
			return i
		}
	}
	return -1
}

type historyRepo struct{ *repos }

func (r *historyRepo) Append(_ context.Context, order models.HistoryOrder) error {
	order.Order = order.Order.Clone()
	r.st.history = append(r.st.history, order)
	return nil
}

func (r *historyRepo) List(_ context.Context, userID string) ([]models.HistoryOrder, error) {
	out := []models.HistoryOrder{}
	for _, h := range r.st.history {
		if h.UserID == userID {
			out = append(out, models.HistoryOrder{Order: h.Order.Clone(), ArchivedAt: h.ArchivedAt})
		}
	}
	return out, nil
}

func (r *historyRepo) ListAll(context.Context) ([]models.HistoryOrder, error) {
	out := make([]models.HistoryOrder, 0, len(r.st.history))
	for _, h := range r.st.history {
		out = append(out, models.HistoryOrder{Order: h.Order.Clone(), ArchivedAt: h.ArchivedAt})
	}
	return out, nil
}

type clientOrderRepo struct{ *repos }

func (r *clientOrderRepo) Create(_ context.Context, order models.ClientOrder) (models.ClientOrder, error) {
	order.ID = uuid.NewString()
	order.CreatedAt = r.now()
	order.UpdatedAt = order.CreatedAt
	r.st.clientOrders = append(r.st.clientOrders, order.Clone())
	return order, nil
}

func (r *clientOrderRepo) Get(_ context.Context, id string) (models.ClientOrder, error) {
	i := r.index(id)
	if i < 0 {
		return models.ClientOrder{}, core.ErrOrderNotFound
	}
	return r.st.clientOrders[i].Clone(), nil
}

func (r *clientOrderRepo) List(context.Context) ([]models.ClientOrder, error) {
	out := make([]models.ClientOrder, 0, len(r.st.clientOrders))
	for _, o := range r.st.clientOrders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (r *clientOrderRepo) UpdateStatus(_ context.Context, id string, status models.Status) (models.ClientOrder, error) {
	i := r.index(id)
	if i < 0 {
		return models.ClientOrder{}, core.ErrOrderNotFound
	}
	r.st.clientOrders[i].Status = status
	r.st.clientOrders[i].UpdatedAt = r.now()
	return r.st.clientOrders[i].Clone(), nil
}

func (r *clientOrderRepo) Delete(_ context.Context, id string) error {
	i := r.index(id)
	if i < 0 {
		return core.ErrOrderNotFound
	}
	r.st.clientOrders = append(r.st.clientOrders[:i], r.st.clientOrders[i+1:]...)
	return nil
}

func (r *clientOrderRepo) index(id string) int {
	for i := range r.st.clientOrders {
		if r.st.clientOrders[i].ID == id {
			return i
		}
	}
	return -1
}
