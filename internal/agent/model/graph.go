package model

import (
	"github.com/cloudwego/eino/schema"
)

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
//   - Do not access AppState directly from outside handlers. For persistence,
//     use repositories/services (e.g., MessagesManager).
type AppState struct {
	ConversationID    string
	Query             string
	UserContext       *UserContext
	History           []*schema.Message // mutated only inside Eino state handlers
	Products          []Product         // every product surfaced by tool results, encounter order
	ToolRounds        int               // completed model->tools round trips
	RoundLimitReached bool              // set when the round budget is exhausted
	ToolCallIDSeq     int               // local sequence to synthesize tool_call_id when provider omits

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// QueryInput represents the input for processing user queries.
type QueryInput struct {
	ConversationID string       `json:"conversation_id"`
	Query          string       `json:"query"`
	UserContext    *UserContext `json:"user_context,omitempty"`
}

// ChatResult is the final answer handed back to the caller.
type ChatResult struct {
	ConversationID     string    `json:"conversation_id"`
	Message            string    `json:"message"`
	Products           []Product `json:"products,omitempty"`
	SuggestedQuestions []string  `json:"suggested_questions,omitempty"`
}
