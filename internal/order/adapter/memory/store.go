package memory

import (
	"context"
	"sync"
	"time"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/models"
)

// Store keeps everything in process memory. A transaction holds the store
// mutex for its whole duration and works on a private copy that replaces the
// live state only on success, so transactions are serialized and all-or-nothing.
type Store struct {
	mu    sync.Mutex
	state *state
	now   func() time.Time
}

type state struct {
	menu         []models.MenuItem
	orders       []models.Order
	history      []models.HistoryOrder
	clientOrders []models.ClientOrder
}

func New() *Store {
	return &Store{
		state: &state{},
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, repos core.IRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, &repos{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) IsAlive(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (st *state) clone() *state {
	c := &state{
		menu:         append([]models.MenuItem(nil), st.menu...),
		orders:       make([]models.Order, len(st.orders)),
		history:      make([]models.HistoryOrder, len(st.history)),
		clientOrders: make([]models.ClientOrder, len(st.clientOrders)),
	}
	for i, o := range st.orders {
		c.orders[i] = o.Clone()
	}
	for i, h := range st.history {
		c.history[i] = models.HistoryOrder{Order: h.Order.Clone(), ArchivedAt: h.ArchivedAt}
	}
	for i, o := range st.clientOrders {
		c.clientOrders[i] = o.Clone()
	}
	return c
}

type repos struct {
	st  *state
	now func() time.Time
}

func (r *repos) Menu() core.IMenuRepo                { return &menuRepo{r} }
func (r *repos) Orders() core.IOrderRepo             { return &orderRepo{r} }
func (r *repos) History() core.IHistoryRepo          { return &historyRepo{r} }
func (r *repos) ClientOrders() core.IClientOrderRepo { return &clientOrderRepo{r} }
