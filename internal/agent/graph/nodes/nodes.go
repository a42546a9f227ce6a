package nodes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/shopagent-core-poc/server/internal/agent/graph/conversations"
	"github.com/shopagent-core-poc/server/internal/agent/graph/prompts"
	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/agent/prefetch"
	"github.com/shopagent-core-poc/server/internal/agent/present"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// Node names used when wiring the graph.
const (
	NodeInputAssembler = "InputAssembler"
	NodeChatModel      = "ChatModel"
	NodeToolExecutor   = "ToolExecutor"
	NodeReducer        = "PresentationReducer"
)

// NewInputAssemblerPreHandler creates the pre-handler for the InputAssembler node
func NewInputAssemblerPreHandler() func(context.Context, model.QueryInput, *model.AppState) (model.QueryInput, error) {
	return func(ctx context.Context, in model.QueryInput, s *model.AppState) (model.QueryInput, error) {
		s.ConversationID = in.ConversationID
		s.Query = in.Query
		s.UserContext = in.UserContext
		// Reset per-query accumulators
		s.History = nil
		s.Products = nil
		s.ToolRounds = 0
		s.RoundLimitReached = false
		s.ToolCallIDSeq = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewInputAssemblerNode builds the node that persists the shopper's turn,
// runs the proactive prefetchers, and assembles the model input.
func NewInputAssemblerNode(
	mm *conversations.MessagesManager,
	pf *prefetch.Prefetcher,
	promptCfg *model.PromptConfig,
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, input model.QueryInput) ([]*schema.Message, error) {
		if err := mm.AppendUserMessage(ctx, input.ConversationID, input.Query); err != nil {
			return nil, fmt.Errorf("save user message: %w", err)
		}

		// Prefetched context blocks are injected into the system prompt so
		// the model can answer without spending a tool round.
		var injections []string
		var prefetched []model.Product
		if pf != nil {
			if block, products := pf.DetailBlock(ctx, input.Query); block != "" {
				injections = append(injections, block)
				prefetched = append(prefetched, products...)
			}
			if block, products := pf.ComplementaryBlock(ctx, input.Query, input.UserContext); block != "" {
				injections = append(injections, block)
				prefetched = append(prefetched, products...)
			}
		}

		if len(prefetched) > 0 {
			err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
				state.Products = append(state.Products, prefetched...)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("seed prefetched products: %w", err)
			}
		}

		systemPrompt, err := prompts.RenderSystem(ctx, *promptCfg, input.UserContext, injections)
		if err != nil {
			return nil, fmt.Errorf("render system prompt: %w", err)
		}

		messages, err := mm.BuildResponseContext(ctx, input.ConversationID, systemPrompt)
		if err != nil {
			return nil, fmt.Errorf("build response context: %w", err)
		}

		return messages, nil
	})
}

// NewChatModelPreHandler creates the pre-handler for the ChatModel node
func NewChatModelPreHandler(maxRounds int) func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, in []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		// Heuristic fix for providers that omit tool_call_id on tool results
		if len(in) > 0 {
			last := in[len(in)-1]
			if last != nil && last.Role == schema.Tool && strings.TrimSpace(last.ToolCallID) == "" {
				for i := len(state.History) - 1; i >= 0; i-- {
					msg := state.History[i]
					if msg == nil || msg.Role != schema.Assistant || len(msg.ToolCalls) == 0 {
						continue
					}
					id := msg.ToolCalls[0].ID
					if strings.TrimSpace(id) != "" {
						last.ToolCallID = id
					}
					break
				}
			}
		}

		state.History = append(state.History, in...)

		if checkAndMarkRoundLimit(state, maxRounds) {
			maxRounds = normalizeMaxRounds(maxRounds)
			wrapUp := &schema.Message{
				Role: schema.System,
				Content: fmt.Sprintf(
					"SYSTEM NOTICE: You have reached the maximum tool call limit (%d). "+
						"Please synthesize a helpful response using the information you've already gathered. "+
						"Acknowledge any limitations in your response if you couldn't complete all necessary tool calls.",
					maxRounds,
				),
			}
			state.History = append(state.History, wrapUp)
		}

		logx.Debug().Msg("AI thinking...")

		return state.History, nil
	}
}

// NewChatModelPostHandler creates the post-handler for the ChatModel node
func NewChatModelPostHandler(
	mm *conversations.MessagesManager,
	modelName string,
) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, out *schema.Message, state *model.AppState) (*schema.Message, error) {
		// Compute usage cost if available
		if model.CostEnabled() && out != nil && out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
			pricing := model.ResolvePricing(modelName)
			inC, outC, totalC := model.ComputeCost(out.ResponseMeta.Usage, pricing)
			if out.Extra == nil {
				out.Extra = map[string]any{}
			}
			out.Extra["usage_cost"] = map[string]any{
				"currency":          "USD",
				"model":             modelName,
				"prompt_tokens":     out.ResponseMeta.Usage.PromptTokens,
				"completion_tokens": out.ResponseMeta.Usage.CompletionTokens,
				"total_tokens":      out.ResponseMeta.Usage.TotalTokens,
				"input_cost":        inC,
				"output_cost":       outC,
				"total_cost":        totalC,
			}
			logx.Debug().
				Str("conversation_id", state.ConversationID).
				Str("node", NodeChatModel).
				Str("model", modelName).
				Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
				Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
				Int("total_tokens", out.ResponseMeta.Usage.TotalTokens).
				Float64("input_cost_usd", inC).
				Float64("output_cost_usd", outC).
				Float64("total_cost_usd", totalC).
				Msg("LLM usage")

			// Accumulate only total cost into state
			state.TotalCostUSD += totalC
			// Also expose running total in the message Extra for visibility
			out.Extra["usage_cost_total_usd"] = state.TotalCostUSD
		}

		// Normalize tool calls: some providers may omit tool_call IDs.
		if out != nil && len(out.ToolCalls) > 0 {
			for i := range out.ToolCalls {
				if strings.TrimSpace(out.ToolCalls[i].ID) == "" {
					state.ToolCallIDSeq++
					out.ToolCalls[i].ID = fmt.Sprintf("call_%d", state.ToolCallIDSeq)
				}
			}
		}

		state.History = append(state.History, out)

		if len(out.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(out.ToolCalls)).Msg("Calling tools")
		} else {
			logx.Debug().Msg("AI response ready")
		}

		// Save only final assistant messages (no further tool calls), or a
		// content response produced after the round budget ran out.
		if out.Role == schema.Assistant && (len(out.ToolCalls) == 0 || state.RoundLimitReached) && strings.TrimSpace(out.Content) != "" {
			if err := mm.SaveResponse(ctx, state.ConversationID, out.Content); err != nil {
				logx.Error().
					Str("conversation_id", state.ConversationID).
					Err(err).
					Msg("Error saving assistant response")
			} else {
				logx.Debug().
					Str("conversation_id", state.ConversationID).
					Msg("Saved assistant response to Redis")
			}
		}

		return out, nil
	}
}

// NewToolRouterCondition routes the model output either to the tool
// executor or, for final answers, to the presentation reducer.
func NewToolRouterCondition() func(context.Context, *schema.Message) (string, error) {
	return func(ctx context.Context, input *schema.Message) (string, error) {
		var limitReached bool
		compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			limitReached = state.RoundLimitReached
			return nil
		})

		if limitReached {
			if len(input.ToolCalls) > 0 {
				logx.Warn().Int("dropped_calls", len(input.ToolCalls)).
					Msg("Round budget exhausted, dropping pending tool calls")
			}
			return NodeReducer, nil
		}

		if len(input.ToolCalls) > 0 {
			logx.Debug().Int("tool_count", len(input.ToolCalls)).Msg("Routing to ToolExecutor")
			return NodeToolExecutor, nil
		}

		logx.Debug().Msg("No tool calls, reducing for presentation")
		return NodeReducer, nil
	}
}

// NewToolExecutorPreHandler creates the pre-handler for the ToolExecutor node
func NewToolExecutorPreHandler(maxRounds int) func(context.Context, *schema.Message, *model.AppState) (*schema.Message, error) {
	return func(ctx context.Context, in *schema.Message, state *model.AppState) (*schema.Message, error) {
		exceeded := incrementRoundAndCheck(state, maxRounds)

		logx.Debug().
			Int("tool_rounds", state.ToolRounds).
			Str("conversation_id", state.ConversationID).
			Msg("Tool execution round")

		if exceeded {
			logx.Warn().
				Int("tool_rounds", state.ToolRounds).
				Int("max_rounds", normalizeMaxRounds(maxRounds)).
				Str("conversation_id", state.ConversationID).
				Msg("Tool round budget exceeded, flagging and continuing")
		}

		return in, nil
	}
}

// toolPayload is the slice of a tool result the product accumulator
// cares about. Every tool reports success in-band; only successful
// results contribute products.
type toolPayload struct {
	Success         bool            `json:"success"`
	Products        []model.Product `json:"products"`
	Product         *model.Product  `json:"product"`
	Recommendations []model.Product `json:"recommendations"`
	AlsoBought      []model.Product `json:"also_bought"`
}

// NewToolExecutorPostHandler accumulates every product surfaced by tool
// results into state, in encounter order.
func NewToolExecutorPostHandler() func(context.Context, []*schema.Message, *model.AppState) ([]*schema.Message, error) {
	return func(ctx context.Context, out []*schema.Message, state *model.AppState) ([]*schema.Message, error) {
		for _, msg := range out {
			if msg == nil || msg.Role != schema.Tool || msg.Content == "" {
				continue
			}
			var payload toolPayload
			if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil {
				continue
			}
			if !payload.Success {
				continue
			}
			state.Products = append(state.Products, payload.Products...)
			state.Products = append(state.Products, payload.Recommendations...)
			state.Products = append(state.Products, payload.AlsoBought...)
			if payload.Product != nil {
				state.Products = append(state.Products, *payload.Product)
			}
		}
		return out, nil
	}
}

// NewReducerNode builds the terminal node that turns the final model
// message plus the accumulated products into a ChatResult.
func NewReducerNode(detailer present.Detailer, presentCfg model.PresentConfig) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, msg *schema.Message) (*model.ChatResult, error) {
		var (
			conversationID string
			accumulated    []model.Product
		)
		err := compose.ProcessState(ctx, func(_ context.Context, state *model.AppState) error {
			conversationID = state.ConversationID
			accumulated = state.Products
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to access state: %w", err)
		}

		content := ""
		if msg != nil {
			content = msg.Content
		}

		products, suggestions := present.Reduce(ctx, content, accumulated, detailer, presentCfg)

		logx.Debug().
			Str("conversation_id", conversationID).
			Int("accumulated", len(accumulated)).
			Int("displayed", len(products)).
			Int("suggestions", len(suggestions)).
			Msg("Reduced products for presentation")

		return &model.ChatResult{
			ConversationID:     conversationID,
			Message:            content,
			Products:           products,
			SuggestedQuestions: suggestions,
		}, nil
	})
}
