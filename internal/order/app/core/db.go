package core

import (
	"context"

	"wildcats-food-express/internal/order/domain/models"
)

// IStore runs fn inside one storage transaction. Every write made through the
// repos handed to fn becomes visible only if fn returns nil and the commit succeeds.
type IStore interface {
	Tx(ctx context.Context, fn func(ctx context.Context, repos IRepos) error) error
	IsAlive(ctx context.Context) error
	Close() error
}

type IRepos interface {
	Menu() IMenuRepo
	Orders() IOrderRepo
	History() IHistoryRepo
	ClientOrders() IClientOrderRepo
}

// IMenuRepo is the inventory ledger.
type IMenuRepo interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (models.MenuItem, error)
	Create(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	Update(ctx context.Context, item models.MenuItem) (models.MenuItem, error)
	Delete(ctx context.Context, id string) (models.MenuItem, error)
	// Reserve decrements stock of the item called name by quantity, locking it
	// for the rest of the transaction.
	Reserve(ctx context.Context, name string, quantity int) (models.MenuItem, error)
	Adjust(ctx context.Context, id string, delta int) (models.MenuItem, error)
}

type IOrderRepo interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
	// Get locks the order for the rest of the transaction.
	Get(ctx context.Context, id string) (models.Order, error)
	List(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.Order, error)
	UpdatePayment(ctx context.Context, id, receiptPath, referenceNumber string, amountSent float64) (models.Order, error)
	Delete(ctx context.Context, id string) error
}

type IHistoryRepo interface {
	Append(ctx context.Context, order models.HistoryOrder) error
	List(ctx context.Context, userID string) ([]models.HistoryOrder, error)
	ListAll(ctx context.Context) ([]models.HistoryOrder, error)
}

type IClientOrderRepo interface {
	Create(ctx context.Context, order models.ClientOrder) (models.ClientOrder, error)
	Get(ctx context.Context, id string) (models.ClientOrder, error)
	List(ctx context.Context) ([]models.ClientOrder, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (models.ClientOrder, error)
	Delete(ctx context.Context, id string) error
}
