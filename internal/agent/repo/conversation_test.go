package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*RedisConversationRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisConversationRepository(rdb, 15*time.Minute), mr
}

func TestAddAndLoadHistory(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("show me laptops")))
	require.NoError(t, r.AddMessage(ctx, "c1", schema.AssistantMessage("Here are two options.", nil)))

	history, err := r.LoadHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.User, history.Messages[0].Role)
	assert.Equal(t, "show me laptops", history.Messages[0].Content)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)
}

func TestLoadHistoryEmptyConversation(t *testing.T) {
	r, _ := newTestRepo(t)

	history, err := r.LoadHistory(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, history.Messages)
}

func TestClearHistory(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("hello")))
	require.NoError(t, r.ClearHistory(ctx, "c1"))

	n, err := r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddMessageRefreshesTTL(t *testing.T) {
	r, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("first")))
	key := r.conversationKey("c1")
	assert.Equal(t, 15*time.Minute, mr.TTL(key))

	mr.FastForward(10 * time.Minute)
	require.NoError(t, r.AddMessage(ctx, "c1", schema.UserMessage("second")))
	assert.Equal(t, 15*time.Minute, mr.TTL(key), "every write restarts the session clock")

	mr.FastForward(16 * time.Minute)
	n, err := r.GetMessageCount(ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n, "idle session expires")
}
