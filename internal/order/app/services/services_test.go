package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"wildcats-food-express/internal/order/adapter/memory"
	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/dto"
	"wildcats-food-express/internal/order/domain/models"
	"wildcats-food-express/internal/xpkg/logger"
	"wildcats-food-express/internal/xpkg/telemetry"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e dto.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []dto.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dto.Event(nil), p.events...)
}

type fixture struct {
	store     *memory.Store
	publisher *recordingPublisher
	orders    *OrderService
	lifecycle *LifecycleService
	history   *HistoryService
	inventory *InventoryService
	clients   *ClientOrderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	tracer := noop.NewTracerProvider().Tracer("test")
	metrics := telemetry.NopMetrics()
	log := logger.Nop()

	return &fixture{
		store:     store,
		publisher: pub,
		orders:    NewOrderService(store, pub, metrics, tracer, log),
		lifecycle: NewLifecycleService(store, pub, metrics, tracer, log),
		history:   NewHistoryService(store, log),
		inventory: NewInventoryService(store, log),
		clients:   NewClientOrderService(store, log),
	}
}

func (f *fixture) addItem(t *testing.T, name string, price float64, qty int) models.MenuItem {
	t.Helper()
	item, err := f.inventory.Create(context.Background(), dto.MenuItemRequest{Name: name, Price: price, Quantity: qty})
	require.NoError(t, err)
	return item
}

func (f *fixture) quantity(t *testing.T, id string) int {
	t.Helper()
	q, err := f.inventory.Quantity(context.Background(), id)
	require.NoError(t, err)
	return q
}

func asUser(id string) context.Context {
	return core.WithSession(context.Background(), core.Session{UserID: id, Role: core.RoleUser})
}

func asAdmin() context.Context {
	return core.WithSession(context.Background(), core.Session{UserID: "admin-1", Role: core.RoleAdmin})
}

func orderOf(student string, total float64, items ...models.LineItem) dto.PlaceOrderRequest {
	return dto.PlaceOrderRequest{UserName: "Juan", StudentNumber: student, MenusOrdered: items, TotalPrice: total}
}

func TestBurgerScenario(t *testing.T) {
	f := newFixture(t)
	burger := f.addItem(t, "Burger", 50, 5)

	placed, err := f.orders.PlaceOrder(asUser("u1"), orderOf("2021-0001", 150,
		models.LineItem{ItemName: "Burger", Quantity: 3, Price: 50}))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, placed.Status)
	assert.Equal(t, "u1", placed.UserID)
	assert.Nil(t, placed.ReceiptPath)
	assert.Equal(t, 2, f.quantity(t, burger.ID))

	_, err = f.orders.PlaceOrder(asUser("u2"), orderOf("2021-0002", 150,
		models.LineItem{ItemName: "Burger", Quantity: 3, Price: 50}))
	require.ErrorIs(t, err, core.ErrOutOfStock)
	assert.Contains(t, err.Error(), "Burger")
	assert.Equal(t, 2, f.quantity(t, burger.ID))

	orders, err := f.orders.ListOrders(asAdmin())
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	orders, err = f.orders.ListOrders(asUser("u1"))
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	res, err := f.lifecycle.SetStatus(context.Background(), placed.ID, "Completed")
	require.NoError(t, err)
	assert.True(t, res.Archived)
	assert.Nil(t, res.Order)

	orders, err = f.orders.ListOrders(asUser("u1"))
	require.NoError(t, err)
	assert.Empty(t, orders)

	orders, err = f.orders.ListOrders(asAdmin())
	require.NoError(t, err)
	assert.Empty(t, orders)

	history, err := f.history.QueryByUser(asUser("u1"))
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, placed.ID, history[0].ID)
	assert.Equal(t, models.StatusCompleted, history[0].Status)

	events := f.publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, dto.EventNewOrder, events[0].Name)
	assert.Equal(t, dto.EventOrderStatusUpdate, events[1].Name)
	assert.Equal(t, dto.StatusChange{
		OrderID:       placed.ID,
		StudentNumber: "2021-0001",
		Status:        models.StatusCompleted,
		UserID:        "u1",
	}, events[1].Data)
}

func TestPlaceOrderIsAtomic(t *testing.T) {
	f := newFixture(t)
	fries := f.addItem(t, "Fries", 30, 5)
	soda := f.addItem(t, "Soda", 20, 1)

	_, err := f.orders.PlaceOrder(asUser("u1"), orderOf("s1", 80,
		models.LineItem{ItemName: "Fries", Quantity: 2},
		models.LineItem{ItemName: "Soda", Quantity: 2},
	))
	require.ErrorIs(t, err, core.ErrOutOfStock)

	assert.Equal(t, 5, f.quantity(t, fries.ID))
	assert.Equal(t, 1, f.quantity(t, soda.ID))

	orders, err := f.orders.ListOrders(asAdmin())
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.publisher.Events())
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "Fries", 30, 5)

	_, err := f.orders.PlaceOrder(asUser("u1"), orderOf("s1", 30,
		models.LineItem{ItemName: "Fries", Quantity: 1},
		models.LineItem{ItemName: "Lumpia", Quantity: 1},
	))
	require.ErrorIs(t, err, core.ErrItemNotFound)
	assert.Contains(t, err.Error(), "Lumpia")
}

func TestPlaceOrderMergesRepeatedLines(t *testing.T) {
	f := newFixture(t)
	rice := f.addItem(t, "Rice", 15, 3)

	_, err := f.orders.PlaceOrder(asUser("u1"), orderOf("s1", 60,
		models.LineItem{ItemName: "Rice", Quantity: 2},
		models.LineItem{ItemName: "Rice", Quantity: 2},
	))
	require.ErrorIs(t, err, core.ErrOutOfStock)
	assert.Equal(t, 3, f.quantity(t, rice.ID))
}

func TestPlaceOrderValidation(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "Burger", 50, 3)

	tests := []struct {
		name string
		req  dto.PlaceOrderRequest
	}{
		{"no items", orderOf("s1", 50)},
		{"no student number", orderOf("", 50, models.LineItem{ItemName: "Burger", Quantity: 1})},
		{"zero quantity", orderOf("s1", 50, models.LineItem{ItemName: "Burger", Quantity: 0})},
		{"blank item name", orderOf("s1", 50, models.LineItem{ItemName: " ", Quantity: 1})},
		{"zero total", orderOf("s1", 0, models.LineItem{ItemName: "Burger", Quantity: 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.PlaceOrder(asUser("u1"), tt.req)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}

	_, err := f.orders.PlaceOrder(context.Background(), orderOf("s1", 50, models.LineItem{ItemName: "Burger", Quantity: 1}))
	assert.ErrorIs(t, err, core.ErrUnauthorized)
}

func TestConcurrentPlacementNeverOversells(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(t, "Siomai", 20, 10)

	const workers = 40
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		placed int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.PlaceOrder(asUser("u"), orderOf("s", 20,
				models.LineItem{ItemName: "Siomai", Quantity: 1 + i%2}))
			if err == nil {
				mu.Lock()
				placed += 1 + i%2
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	remaining := f.quantity(t, item.ID)
	assert.GreaterOrEqual(t, remaining, 0)
	assert.Positive(t, placed)
	assert.Equal(t, 10, placed+remaining)
}

func TestConcurrentPlacementOnLastUnit(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(t, "Turon", 15, 1)

	const workers = 20
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ok    int
		oos   int
		other []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.PlaceOrder(asUser("u"), orderOf("s", 15,
				models.LineItem{ItemName: "Turon", Quantity: 1}))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, core.ErrOutOfStock):
				oos++
			default:
				other = append(other, err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, oos)
	assert.Empty(t, other)
	assert.Equal(t, 0, f.quantity(t, item.ID))

	orders, err := f.orders.ListOrders(asAdmin())
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestConservation(t *testing.T) {
	f := newFixture(t)
	a := f.addItem(t, "A", 10, 10)
	b := f.addItem(t, "B", 10, 10)

	reqs := []dto.PlaceOrderRequest{
		orderOf("s", 10, models.LineItem{ItemName: "A", Quantity: 3}),
		orderOf("s", 10, models.LineItem{ItemName: "A", Quantity: 2}, models.LineItem{ItemName: "B", Quantity: 4}),
		orderOf("s", 10, models.LineItem{ItemName: "B", Quantity: 7}),
		orderOf("s", 10, models.LineItem{ItemName: "B", Quantity: 6}),
	}
	for _, r := range reqs {
		_, _ = f.orders.PlaceOrder(asUser("u1"), r)
	}

	orders, err := f.orders.ListOrders(asAdmin())
	require.NoError(t, err)

	reserved := map[string]int{}
	for _, o := range orders {
		for _, li := range o.MenusOrdered {
			reserved[li.ItemName] += li.Quantity
		}
	}
	assert.Equal(t, 10, f.quantity(t, a.ID)+reserved["A"])
	assert.Equal(t, 10, f.quantity(t, b.ID)+reserved["B"])
}

func TestListOrdersBySession(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "Burger", 50, 10)

	for _, u := range []string{"u1", "u1", "u2"} {
		_, err := f.orders.PlaceOrder(asUser(u), orderOf("s", 50, models.LineItem{ItemName: "Burger", Quantity: 1}))
		require.NoError(t, err)
	}

	mine, err := f.orders.ListOrders(asUser("u1"))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, o := range mine {
		assert.Equal(t, "u1", o.UserID)
	}

	all, err := f.orders.ListOrders(asAdmin())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := f.orders.ListOrders(asUser("u3"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStatusTransitions(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "Burger", 50, 10)
	placed, err := f.orders.PlaceOrder(asUser("u1"), orderOf("s", 50, models.LineItem{ItemName: "Burger", Quantity: 1}))
	require.NoError(t, err)

	_, err = f.lifecycle.SetStatus(context.Background(), placed.ID, "Delivered")
	assert.ErrorIs(t, err, core.ErrInvalidStatus)

	res, err := f.lifecycle.SetStatus(context.Background(), placed.ID, "Ready")
	require.NoError(t, err)
	require.NotNil(t, res.Order)
	assert.False(t, res.Archived)
	assert.Equal(t, models.StatusReady, res.Order.Status)

	_, err = f.lifecycle.SetStatus(context.Background(), placed.ID, "Preparing")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)
	_, err = f.lifecycle.SetStatus(context.Background(), placed.ID, "Ready")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	res, err = f.lifecycle.SetStatus(context.Background(), placed.ID, "Cancelled")
	require.NoError(t, err)
	assert.True(t, res.Archived)

	_, err = f.lifecycle.SetStatus(context.Background(), placed.ID, "Completed")
	assert.ErrorIs(t, err, core.ErrOrderNotFound)
}

func TestHistoryQueryIsRepeatable(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "Burger", 50, 10)

	for range 3 {
		o, err := f.orders.PlaceOrder(asUser("u1"), orderOf("s", 50, models.LineItem{ItemName: "Burger", Quantity: 1}))
		require.NoError(t, err)
		_, err = f.lifecycle.SetStatus(context.Background(), o.ID, "Completed")
		require.NoError(t, err)
	}
	other, err := f.orders.PlaceOrder(asUser("u2"), orderOf("s", 50, models.LineItem{ItemName: "Burger", Quantity: 1}))
	require.NoError(t, err)
	_, err = f.lifecycle.SetStatus(context.Background(), other.ID, "Cancelled")
	require.NoError(t, err)

	first, err := f.history.QueryByUser(asUser("u1"))
	require.NoError(t, err)
	second, err := f.history.QueryByUser(asUser("u1"))
	require.NoError(t, err)
	assert.Len(t, first, 3)
	assert.Equal(t, first, second)

	all, err := f.history.QueryByUser(asAdmin())
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestAttachPaymentProof(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, "Burger", 50, 10)
	placed, err := f.orders.PlaceOrder(asUser("u1"), orderOf("s", 50, models.LineItem{ItemName: "Burger", Quantity: 1}))
	require.NoError(t, err)

	proof := func(orderID, ref string) dto.PaymentProof {
		return dto.PaymentProof{OrderID: orderID, ReceiptPath: "/UploadedReceipts/x.png", ReferenceNumber: ref, AmountSent: 50}
	}

	_, err = f.orders.AttachPaymentProof(asUser("u1"), proof("missing", "R1"))
	assert.ErrorIs(t, err, core.ErrOrderNotFound)

	_, err = f.orders.AttachPaymentProof(asUser("u1"), proof(placed.ID, ""))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = f.orders.AttachPaymentProof(context.Background(), proof(placed.ID, "R1"))
	assert.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = f.orders.AttachPaymentProof(asUser("intruder"), proof(placed.ID, "R1"))
	assert.ErrorIs(t, err, core.ErrOrderNotFound)

	orders, err := f.orders.ListOrders(asUser("u1"))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].ReceiptPath, "a rejected proof leaves the order untouched")

	updated, err := f.orders.AttachPaymentProof(asUser("u1"), proof(placed.ID, "R1"))
	require.NoError(t, err)
	require.NotNil(t, updated.ReceiptPath)
	assert.Equal(t, "/UploadedReceipts/x.png", *updated.ReceiptPath)
	assert.Equal(t, 50.0, *updated.AmountSent)

	_, err = f.orders.AttachPaymentProof(asAdmin(), proof(placed.ID, "R2"))
	assert.NoError(t, err)
}

func TestInventoryAdjust(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(t, "Burger", 50, 2)

	_, err := f.inventory.Adjust(context.Background(), item.ID, -3)
	assert.ErrorIs(t, err, core.ErrOutOfStock)
	assert.Equal(t, 2, f.quantity(t, item.ID))

	got, err := f.inventory.Adjust(context.Background(), item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Quantity)

	_, err = f.inventory.Adjust(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, core.ErrItemNotFound)
}

func TestInventoryCatalog(t *testing.T) {
	f := newFixture(t)
	item := f.addItem(t, "Burger", 50, 2)

	_, err := f.inventory.Create(context.Background(), dto.MenuItemRequest{Name: "Burger", Price: 10})
	assert.ErrorIs(t, err, core.ErrDuplicateItem)

	updated, err := f.inventory.Update(context.Background(), item.ID, dto.MenuItemRequest{Name: "Cheeseburger", Price: 60, Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", updated.Name)
	assert.Equal(t, item.CreatedAt, updated.CreatedAt)

	removed, err := f.inventory.Delete(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", removed.Name)

	items, err := f.inventory.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestClientOrders(t *testing.T) {
	f := newFixture(t)
	f.clients.priority = func() int { return 42 }
	total := 120.0

	_, err := f.clients.Create(context.Background(), dto.ClientOrderRequest{Items: []models.ClientOrderItem{{Name: "Burger", Quantity: 1}}, TotalPrice: &total})
	assert.ErrorIs(t, err, core.ErrValidation)

	co, err := f.clients.Create(context.Background(), dto.ClientOrderRequest{
		SchoolID:   "2021-0001",
		Items:      []models.ClientOrderItem{{Name: "Burger", Quantity: 2, Price: 60}},
		TotalPrice: &total,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, co.Status)
	assert.Equal(t, 42, co.PriorityNumber)

	co, err = f.clients.SetStatus(context.Background(), co.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, co.Status)

	_, err = f.clients.SetStatus(context.Background(), co.ID, "Pending")
	assert.ErrorIs(t, err, core.ErrInvalidTransition)

	list, err := f.clients.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, f.clients.Delete(context.Background(), co.ID))
	assert.ErrorIs(t, f.clients.Delete(context.Background(), co.ID), core.ErrOrderNotFound)
}
