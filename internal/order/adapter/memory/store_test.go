package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wildcats-food-express/internal/order/app/core"
	"wildcats-food-express/internal/order/domain/models"
)

func seed(t *testing.T, s *Store, name string, qty int) models.MenuItem {
	t.Helper()
	var item models.MenuItem
	err := s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		var err error
		item, err = r.Menu().Create(ctx, models.MenuItem{Name: name, Price: 50, Quantity: qty})
		return err
	})
	require.NoError(t, err)
	return item
}

func TestTxRollbackDiscardsWrites(t *testing.T) {
	s := New()
	item := seed(t, s, "Burger", 5)
	boom := errors.New("boom")

	err := s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		if _, err := r.Orders().Create(ctx, models.Order{UserID: "u1"}); err != nil {
			return err
		}
		if _, err := r.Menu().Reserve(ctx, "Burger", 3); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_ = s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		got, err := r.Menu().Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, got.Quantity)

		orders, err := r.Orders().ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, orders)
		return nil
	})
}

func TestReserveAndAdjust(t *testing.T) {
	s := New()
	item := seed(t, s, "Fries", 2)

	err := s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		_, err := r.Menu().Reserve(ctx, "Fries", 3)
		assert.ErrorIs(t, err, core.ErrOutOfStock)

		_, err = r.Menu().Reserve(ctx, "Nachos", 1)
		assert.ErrorIs(t, err, core.ErrItemNotFound)

		got, err := r.Menu().Reserve(ctx, "Fries", 2)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)

		_, err = r.Menu().Adjust(ctx, item.ID, -1)
		assert.ErrorIs(t, err, core.ErrOutOfStock)

		got, err = r.Menu().Adjust(ctx, item.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Quantity)

		_, err = r.Menu().Adjust(ctx, "missing", 1)
		assert.ErrorIs(t, err, core.ErrItemNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestDuplicateMenuName(t *testing.T) {
	s := New()
	seed(t, s, "Siomai", 10)

	err := s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		_, err := r.Menu().Create(ctx, models.MenuItem{Name: "Siomai"})
		return err
	})
	assert.ErrorIs(t, err, core.ErrDuplicateItem)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestReturnedOrdersDoNotAliasState(t *testing.T) {
	s := New()
	var id string
	require.NoError(t, s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		o, err := r.Orders().Create(ctx, models.Order{UserID: "u1", MenusOrdered: []models.LineItem{{ItemName: "A", Quantity: 1}}})
		id = o.ID
		return err
	}))

	require.NoError(t, s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		o, err := r.Orders().Get(ctx, id)
		require.NoError(t, err)
		o.MenusOrdered[0].Quantity = 42
		return nil
	}))

	require.NoError(t, s.Tx(context.Background(), func(ctx context.Context, r core.IRepos) error {
		o, err := r.Orders().Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, o.MenusOrdered[0].Quantity)
		return nil
	}))
}

func TestTxHonoursCancelledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.Tx(ctx, func(context.Context, core.IRepos) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
