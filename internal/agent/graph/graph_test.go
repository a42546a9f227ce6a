package graph

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopagent-core-poc/server/internal/agent/graph/conversations"
	"github.com/shopagent-core-poc/server/internal/agent/graph/nodes"
	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/agent/repo"
)

// scriptedModel is a ToolCallingChatModel whose answers are scripted per
// call. Once the script runs out it repeats the last entry.
type scriptedModel struct {
	script []*schema.Message
	calls  int
	bound  []*schema.ToolInfo
}

func (m *scriptedModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	idx := m.calls
	if idx >= len(m.script) {
		idx = len(m.script) - 1
	}
	m.calls++
	out := *m.script[idx]
	return &out, nil
}

func (m *scriptedModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](1)
	msg, _ := m.Generate(context.Background(), nil)
	sw.Send(msg, nil)
	sw.Close()
	return sr, nil
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	m.bound = tools
	return m, nil
}

func toolCallMessage(name string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{Function: schema.FunctionCall{Name: name, Arguments: "{}"}},
		},
	}
}

func newTestGraph(t *testing.T, chat *scriptedModel, maxRounds int) (Runner, *repo.RedisConversationRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	conversationRepo := repo.NewRedisConversationRepository(rdb, time.Minute)

	cfg := model.ConversationConfig{}
	cfg.History.MaxTurns = 10
	mm := conversations.NewMessagesManager(conversationRepo, cfg)

	runnable, err := BuildGraph(context.Background(), &GraphConfig{
		ChatModels:      &nodes.ChatModels{Chat: chat, ModelName: "scripted"},
		MessagesManager: mm,
		PromptConfig:    &model.PromptConfig{StoreName: "Best Buy", DefaultPostalCode: "55423"},
		PresentConfig:   model.PresentConfig{DisplayLimit: 8, MaxSuggestions: 3},
		MaxToolRounds:   maxRounds,
	})
	require.NoError(t, err)

	return &graphRunner{runnable: runnable}, conversationRepo
}

func TestGraphDirectAnswerWithoutTools(t *testing.T) {
	chat := &scriptedModel{script: []*schema.Message{
		schema.AssistantMessage("Happy to help with that.", nil),
	}}
	runner, conversationRepo := newTestGraph(t, chat, 3)

	result, err := runner.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-1",
		Query:          "hello",
	})
	require.NoError(t, err)

	assert.Equal(t, "Happy to help with that.", result.Message)
	assert.Equal(t, "conv-1", result.ConversationID)
	assert.Empty(t, result.Products)
	assert.Equal(t, 1, chat.calls)
	require.Len(t, chat.bound, 15)

	// Both turns ended up in the transcript.
	history, err := conversationRepo.LoadHistory(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, schema.Assistant, history.Messages[1].Role)
}

func TestGraphTerminatesWhenModelKeepsRequestingTools(t *testing.T) {
	// The model insists on a tool neither registered nor real. The
	// unknown-tool fallback keeps the loop alive until the round budget
	// runs out, at which point the run must still finish cleanly.
	chat := &scriptedModel{script: []*schema.Message{
		toolCallMessage("imaginary_tool"),
	}}
	runner, _ := newTestGraph(t, chat, 3)

	result, err := runner.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-2",
		Query:          "find me something",
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	// One model call per round plus the wrap-up call after the budget
	// was exhausted.
	assert.Equal(t, 4, chat.calls)
}

func TestGraphWrapsUpAfterRoundBudget(t *testing.T) {
	chat := &scriptedModel{script: []*schema.Message{
		toolCallMessage("imaginary_tool"),
		toolCallMessage("imaginary_tool"),
		toolCallMessage("imaginary_tool"),
		schema.AssistantMessage("Here is what I found so far.", nil),
	}}
	runner, conversationRepo := newTestGraph(t, chat, 3)

	result, err := runner.Invoke(context.Background(), model.QueryInput{
		ConversationID: "conv-3",
		Query:          "compare everything",
	})
	require.NoError(t, err)

	assert.Equal(t, "Here is what I found so far.", result.Message)
	assert.Equal(t, 4, chat.calls)

	history, err := conversationRepo.LoadHistory(context.Background(), "conv-3")
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "Here is what I found so far.", history.Messages[1].Content)
}
