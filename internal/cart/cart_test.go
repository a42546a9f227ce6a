package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/shopagent-core-poc/server/internal/core/error"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, 15*time.Minute)
}

func TestAddMergesQuantities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Add(ctx, "u1", Item{SKU: "6418599", Name: "MacBook Air", Price: 999, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Quantity)

	second, err := s.Add(ctx, "u1", Item{SKU: "6418599", Name: "MacBook Air", Price: 999, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, second.Quantity)
	assert.InDelta(t, 2997, second.Subtotal, 0.001)
}

func TestGetComputesTotals(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", Item{SKU: "1", Name: "TV", Price: 499.99, Quantity: 1})
	require.NoError(t, err)
	_, err = s.Add(ctx, "u1", Item{SKU: "2", Name: "Soundbar", Price: 199.99, Quantity: 2})
	require.NoError(t, err)

	cart, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, cart.ItemCount)
	assert.InDelta(t, 899.97, cart.TotalPrice, 0.001)
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", Item{SKU: "1", Name: "TV", Price: 499, Quantity: 2})
	require.NoError(t, err)

	item, err := s.UpdateQuantity(ctx, "u1", "1", 0)
	require.NoError(t, err)
	assert.Nil(t, item)

	cart, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)
}

func TestUpdateQuantityMissingItem(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateQuantity(context.Background(), "u1", "nope", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestRemoveReportsPresence(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", Item{SKU: "1", Name: "TV", Price: 499, Quantity: 1})
	require.NoError(t, err)

	removed, err := s.Remove(ctx, "u1", "1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Remove(ctx, "u1", "1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestStartCheckout(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.StartCheckout(ctx, "u1")
	require.ErrorIs(t, err, ErrEmptyCart)

	_, err = s.Add(ctx, "u1", Item{SKU: "1", Name: "TV", Price: 500, Quantity: 2})
	require.NoError(t, err)

	session, err := s.StartCheckout(ctx, "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.InDelta(t, 1000, session.TotalAmount, 0.001)
	assert.Equal(t, "created", session.Status)

	loaded, err := s.CheckoutSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, loaded.ID)
	assert.InDelta(t, session.TotalAmount, loaded.TotalAmount, 0.001)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Add(ctx, "u1", Item{SKU: "1", Name: "TV", Price: 499, Quantity: 1})
	require.NoError(t, err)
	_, err = s.Add(ctx, "u1", Item{SKU: "2", Name: "Mount", Price: 49, Quantity: 1})
	require.NoError(t, err)

	n, err := s.Clear(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cart, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)
}
