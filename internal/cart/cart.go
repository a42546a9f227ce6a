// Package cart keeps per-user shopping carts and checkout sessions in
// Redis. Cart items live in a hash keyed by SKU; checkout snapshots
// are JSON values with a one hour expiry.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errx "github.com/shopagent-core-poc/server/internal/core/error"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

const checkoutTTL = time.Hour

var ErrEmptyCart = errors.New("cart is empty")

type Item struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"image_url,omitempty"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
	AddedAt  int64   `json:"added_at,omitempty"`
}

type Cart struct {
	Items      []Item  `json:"items"`
	TotalPrice float64 `json:"total_price"`
	ItemCount  int     `json:"item_count"`
}

type CheckoutSession struct {
	ID          string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Store struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewStore wires the cart onto a Redis connection. ttl bounds how long
// an untouched cart survives; zero means forever.
func NewStore(rdb redis.Cmdable, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) cartKey(userID string) string {
	return fmt.Sprintf("cart:%s:items", userID)
}

func (s *Store) checkoutKey(sessionID string) string {
	return fmt.Sprintf("checkout:%s", sessionID)
}

// Add puts an item in the cart, merging quantities when the SKU is
// already there.
func (s *Store) Add(ctx context.Context, userID string, item Item) (*Item, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	key := s.cartKey(userID)

	existing, err := s.getItem(ctx, userID, item.SKU)
	if err != nil && !errors.Is(err, errx.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		item.Quantity += existing.Quantity
		item.AddedAt = existing.AddedAt
	} else {
		item.AddedAt = time.Now().Unix()
	}
	item.Subtotal = item.Price * float64(item.Quantity)

	b, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal cart item: %w", err)
	}
	if err := s.rdb.HSet(ctx, key, item.SKU, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Str("sku", item.SKU).Msg("failed to store cart item")
		return nil, errx.WrapRedis(err)
	}
	s.touch(ctx, key)
	logx.Info().Str("user", userID).Str("sku", item.SKU).Int("quantity", item.Quantity).Msg("cart item stored")
	return &item, nil
}

// Get loads the whole cart with recomputed totals.
func (s *Store) Get(ctx context.Context, userID string) (*Cart, error) {
	rows, err := s.rdb.HGetAll(ctx, s.cartKey(userID)).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}

	cart := &Cart{Items: make([]Item, 0, len(rows))}
	for sku, raw := range rows {
		var item Item
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, fmt.Errorf("unmarshal cart item %s: %w", sku, err)
		}
		item.Subtotal = item.Price * float64(item.Quantity)
		cart.Items = append(cart.Items, item)
		cart.TotalPrice += item.Subtotal
	}
	cart.ItemCount = len(cart.Items)
	return cart, nil
}

// UpdateQuantity sets the quantity for a SKU; zero or less removes the
// item. Errors when the SKU is not in the cart.
func (s *Store) UpdateQuantity(ctx context.Context, userID, sku string, quantity int) (*Item, error) {
	item, err := s.getItem(ctx, userID, sku)
	if err != nil {
		return nil, err
	}

	key := s.cartKey(userID)
	if quantity <= 0 {
		if err := s.rdb.HDel(ctx, key, sku).Err(); err != nil {
			return nil, errx.WrapRedis(err)
		}
		logx.Info().Str("user", userID).Str("sku", sku).Msg("cart item removed by quantity update")
		return nil, nil
	}

	item.Quantity = quantity
	item.Subtotal = item.Price * float64(quantity)
	b, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal cart item: %w", err)
	}
	if err := s.rdb.HSet(ctx, key, sku, b).Err(); err != nil {
		return nil, errx.WrapRedis(err)
	}
	s.touch(ctx, key)
	return item, nil
}

// Remove deletes a SKU from the cart. Reports whether it was present.
func (s *Store) Remove(ctx context.Context, userID, sku string) (bool, error) {
	n, err := s.rdb.HDel(ctx, s.cartKey(userID), sku).Result()
	if err != nil {
		return false, errx.WrapRedis(err)
	}
	return n > 0, nil
}

// Clear empties the cart and returns how many items were dropped.
func (s *Store) Clear(ctx context.Context, userID string) (int, error) {
	key := s.cartKey(userID)
	n, err := s.rdb.HLen(ctx, key).Result()
	if err != nil {
		return 0, errx.WrapRedis(err)
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return 0, errx.WrapRedis(err)
	}
	return int(n), nil
}

// StartCheckout snapshots the cart total into a new checkout session.
func (s *Store) StartCheckout(ctx context.Context, userID string) (*CheckoutSession, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.ItemCount == 0 {
		return nil, ErrEmptyCart
	}

	now := time.Now()
	session := &CheckoutSession{
		ID:          uuid.NewString(),
		UserID:      userID,
		TotalAmount: cart.TotalPrice,
		Status:      "created",
		CreatedAt:   now,
		ExpiresAt:   now.Add(checkoutTTL),
	}
	b, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("marshal checkout session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.checkoutKey(session.ID), b, checkoutTTL).Err(); err != nil {
		return nil, errx.WrapRedis(err)
	}
	logx.Info().Str("user", userID).Str("session", session.ID).Float64("total", session.TotalAmount).Msg("checkout session created")
	return session, nil
}

// CheckoutSession loads a session by ID; expired sessions read as not
// found because Redis drops the key.
func (s *Store) CheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	raw, err := s.rdb.Get(ctx, s.checkoutKey(sessionID)).Result()
	if err != nil {
		return nil, errx.WrapRedis(err)
	}
	var session CheckoutSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("unmarshal checkout session: %w", err)
	}
	return &session, nil
}

func (s *Store) getItem(ctx context.Context, userID, sku string) (*Item, error) {
	raw, err := s.rdb.HGet(ctx, s.cartKey(userID), sku).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errx.New(errx.ErrNotFound, http.StatusNotFound, "item not in cart")
		}
		return nil, errx.WrapRedis(err)
	}
	var item Item
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, fmt.Errorf("unmarshal cart item %s: %w", sku, err)
	}
	return &item, nil
}

func (s *Store) touch(ctx context.Context, key string) {
	if s.ttl <= 0 {
		return
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("failed to refresh cart TTL")
	}
}
