package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/compose"
	logx "github.com/shopagent-core-poc/server/pkg/logger"

	"github.com/shopagent-core-poc/server/internal/agent/graph/conversations"
	"github.com/shopagent-core-poc/server/internal/agent/graph/nodes"
	"github.com/shopagent-core-poc/server/internal/agent/graph/observers"
	"github.com/shopagent-core-poc/server/internal/agent/graph/tools"
	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/agent/prefetch"
	"github.com/shopagent-core-poc/server/internal/agent/present"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Invoke(ctx context.Context, in model.QueryInput) (*model.ChatResult, error)
}

// Config holds everything needed to compose the full conversation graph end-to-end.
// This is a convenience layer over GraphConfig that also constructs ChatModels and MessagesManager.
type Config struct {
	APIKey           string
	BaseURL          string
	ChatModel        model.ChatModelConfig
	Prompt           model.PromptConfig
	Present          model.PresentConfig
	Conversation     model.ConversationConfig
	ConversationRepo model.ConversationRepository
	Catalog          tools.Catalog
	Carts            tools.Carts
	Detailer         present.Detailer
	Prefetcher       *prefetch.Prefetcher
}

// GraphConfig holds all configuration needed to build the graph
type GraphConfig struct {
	ChatModels      *nodes.ChatModels
	MessagesManager *conversations.MessagesManager
	Prefetcher      *prefetch.Prefetcher
	PromptConfig    *model.PromptConfig
	PresentConfig   model.PresentConfig
	Deps            tools.Deps
	Detailer        present.Detailer
	MaxToolRounds   int
}

// GraphBuilder handles the construction of the agent conversation graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.ChatResult]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.ChatResult]
}

func (r *graphRunner) Invoke(ctx context.Context, in model.QueryInput) (*model.ChatResult, error) {
	// Cart tools act on behalf of the conversation.
	ctx = tools.WithUserID(ctx, in.ConversationID)

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// BuildResponseGraph composes ChatModels, MessagesManager, builds the graph, and returns a Runner.
func BuildResponseGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.ConversationRepo == nil {
		return nil, fmt.Errorf("conversation repo is nil")
	}
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("catalog gateway is nil")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Chat:    cfg.ChatModel,
	})
	if err != nil {
		return nil, err
	}

	mm := conversations.NewMessagesManager(cfg.ConversationRepo, cfg.Conversation)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		ChatModels:      cms,
		MessagesManager: mm,
		Prefetcher:      cfg.Prefetcher,
		PromptConfig:    &cfg.Prompt,
		PresentConfig:   cfg.Present,
		Deps: tools.Deps{
			Catalog:           cfg.Catalog,
			Carts:             cfg.Carts,
			DefaultPostalCode: cfg.Prompt.DefaultPostalCode,
		},
		Detailer:      cfg.Detailer,
		MaxToolRounds: cfg.Conversation.Tools.MaxRounds,
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Conversation graph built successfully")
	return &graphRunner{runnable: runnable}, nil
}

// BuildGraph constructs and returns the compiled agent graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.ChatResult], error) {
	// Basic config validation
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.ChatModels == nil || config.ChatModels.Chat == nil {
		return nil, fmt.Errorf("chat model is not properly initialized")
	}
	if config.MessagesManager == nil {
		return nil, fmt.Errorf("messages manager is nil")
	}
	if config.PromptConfig == nil {
		return nil, fmt.Errorf("prompt config is nil")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.ChatResult](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	if err := builder.setupTools(ctx); err != nil {
		return nil, err
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// setupTools configures business tools and binds them to the chat model
func (b *GraphBuilder) setupTools(ctx context.Context) error {
	businessTools := tools.GetQueryTools(b.config.Deps)
	toolInfos, err := tools.GetToolInfos(ctx, businessTools)
	if err != nil {
		logx.Error().Err(err).Msg("Failed to get tool infos")
		return fmt.Errorf("failed to get tool infos: %w", err)
	}

	if err := b.config.ChatModels.BindTools(toolInfos); err != nil {
		logx.Error().Err(err).Msg("Failed to bind tools to chat model")
		return fmt.Errorf("failed to bind tools to chat model: %w", err)
	}

	toolsNode, err := compose.NewToolNode(ctx, &compose.ToolsNodeConfig{
		Tools:               businessTools,
		ExecuteSequentially: true,
		UnknownToolsHandler: func(ctx context.Context, name, input string) (string, error) {
			// Gracefully handle hallucinated or malformed tool calls (e.g., empty name)
			logx.Warn().
				Str("tool_name", name).
				Str("arguments", input).
				Msg("Unknown or invalid tool call; returning fallback result")
			return fmt.Sprintf("{\"success\":false,\"error\":\"unknown_tool\",\"name\":%q}", name), nil
		},
		ToolArgumentsHandler: sanitizeToolArguments,
	})
	if err != nil {
		logx.Error().Err(err).Msg("Failed to create tools node")
		return fmt.Errorf("failed to create tools node: %w", err)
	}

	b.graph.AddToolsNode(nodes.NodeToolExecutor, toolsNode,
		compose.WithStatePreHandler(nodes.NewToolExecutorPreHandler(b.config.MaxToolRounds)),
		compose.WithStatePostHandler(nodes.NewToolExecutorPostHandler()),
	)

	return nil
}

// sanitizeToolArguments best-effort normalizes model-produced arguments;
// it never fails hard.
func sanitizeToolArguments(ctx context.Context, name, arguments string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(arguments), &m); err != nil {
		// keep original if not JSON
		return arguments, nil
	}

	// SKU arguments arrive as numbers from some models; tools expect strings.
	for _, key := range []string{"sku", "upc", "query", "postal_code"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		switch vv := v.(type) {
		case string:
			m[key] = strings.TrimSpace(vv)
		case float64:
			m[key] = strconv.FormatInt(int64(vv), 10)
		default:
			m[key] = strings.TrimSpace(fmt.Sprint(v))
		}
	}

	if name == tools.ToolSearchProducts {
		if v, ok := m["max_results"]; ok {
			switch vv := v.(type) {
			case float64:
				m["max_results"] = clampInt(int(vv), 1, 10)
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
					m["max_results"] = clampInt(n, 1, 10)
				} else {
					delete(m, "max_results")
				}
			default:
				delete(m, "max_results")
			}
		}
	}

	b, err := json.Marshal(m)
	if err != nil {
		return arguments, nil
	}
	return string(b), nil
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeInputAssembler,
		nodes.NewInputAssemblerNode(b.config.MessagesManager, b.config.Prefetcher, b.config.PromptConfig),
		compose.WithStatePreHandler(nodes.NewInputAssemblerPreHandler()),
	)

	b.graph.AddChatModelNode(nodes.NodeChatModel,
		b.config.ChatModels.Chat,
		compose.WithStatePreHandler(nodes.NewChatModelPreHandler(b.config.MaxToolRounds)),
		compose.WithStatePostHandler(nodes.NewChatModelPostHandler(b.config.MessagesManager, b.config.ChatModels.ModelName)),
	)

	b.graph.AddLambdaNode(nodes.NodeReducer,
		nodes.NewReducerNode(b.config.Detailer, b.config.PresentConfig),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeInputAssembler},
		{nodes.NodeInputAssembler, nodes.NodeChatModel},
		{nodes.NodeToolExecutor, nodes.NodeChatModel},
		{nodes.NodeReducer, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	decisionBranch := compose.NewGraphBranch(
		nodes.NewToolRouterCondition(),
		map[string]bool{
			nodes.NodeToolExecutor: true,
			nodes.NodeReducer:      true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeChatModel, decisionBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding tool router branch")
		return fmt.Errorf("error adding tool router branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.ChatResult], error) {
	// Limit total run steps to avoid infinite loops in branching or tool retries
	maxSteps := 10 + b.config.MaxToolRounds*2
	if maxSteps < 20 {
		maxSteps = 20
	}

	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(maxSteps))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}

// clampInt returns v limited to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
