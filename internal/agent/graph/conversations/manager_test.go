package conversations

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopagent-core-poc/server/internal/agent/model"
)

type memoryRepo struct {
	messages map[string][]*schema.Message
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{messages: make(map[string][]*schema.Message)}
}

func (r *memoryRepo) AddMessage(_ context.Context, conversationID string, msg *schema.Message) error {
	r.messages[conversationID] = append(r.messages[conversationID], msg)
	return nil
}

func (r *memoryRepo) LoadHistory(_ context.Context, conversationID string) (*model.ConversationHistory, error) {
	return &model.ConversationHistory{
		ConversationID: conversationID,
		Messages:       r.messages[conversationID],
	}, nil
}

func (r *memoryRepo) ClearHistory(_ context.Context, conversationID string) error {
	delete(r.messages, conversationID)
	return nil
}

func (r *memoryRepo) GetMessageCount(_ context.Context, conversationID string) (int, error) {
	return len(r.messages[conversationID]), nil
}

func manager(repo model.ConversationRepository, maxTurns int) *MessagesManager {
	cfg := model.ConversationConfig{}
	cfg.History.MaxTurns = maxTurns
	return NewMessagesManager(repo, cfg)
}

func TestBuildResponseContextStartsWithSystemPrompt(t *testing.T) {
	repo := newMemoryRepo()
	cm := manager(repo, 10)
	ctx := context.Background()

	require.NoError(t, cm.AppendUserMessage(ctx, "c1", "any 4k tvs on sale?"))
	require.NoError(t, cm.SaveResponse(ctx, "c1", "A few, yes."))

	messages, err := cm.BuildResponseContext(ctx, "c1", "You are a helpful assistant.")
	require.NoError(t, err)

	require.Len(t, messages, 3)
	assert.Equal(t, schema.System, messages[0].Role)
	assert.Equal(t, schema.User, messages[1].Role)
	assert.Equal(t, "any 4k tvs on sale?", messages[1].Content)
	assert.Equal(t, schema.Assistant, messages[2].Role)
}

func TestBuildResponseContextTrimsOldTurns(t *testing.T) {
	repo := newMemoryRepo()
	cm := manager(repo, 4)
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, cm.AppendUserMessage(ctx, "c1", fmt.Sprintf("question %d", i)))
		require.NoError(t, cm.SaveResponse(ctx, "c1", fmt.Sprintf("answer %d", i)))
	}

	messages, err := cm.BuildResponseContext(ctx, "c1", "prompt")
	require.NoError(t, err)

	// system prompt plus the last 4 messages
	require.Len(t, messages, 5)
	assert.Equal(t, "question 4", messages[1].Content)
	assert.Equal(t, "answer 5", messages[4].Content)
}
