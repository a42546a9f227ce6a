package model

// ================ Config ================
type ConversationConfig struct {
	TTL     string `envconfig:"CONVERSATION_TTL" default:"15m"`
	History struct {
		MaxTurns int `envconfig:"CONVERSATION_HISTORY_MAX_TURNS" default:"10"`
	}
	Tools struct {
		MaxRounds int `envconfig:"CONVERSATION_TOOL_MAX_ROUNDS" default:"3"`
	}
}

type ChatModelConfig struct {
	Model       string  `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"4000"`
	Temperature float32 `envconfig:"CHAT_TEMPERATURE" default:"0.4"`
	// Thinking is disabled by default: chain-of-thought slows down
	// function-calling rounds and can produce empty responses.
	ThinkingBudget int32 `envconfig:"CHAT_THINKING_BUDGET" default:"0"`
}

type PromptConfig struct {
	StoreName         string `envconfig:"PROMPT_STORE_NAME" default:"Best Buy"`
	DefaultPostalCode string `envconfig:"PROMPT_DEFAULT_POSTAL_CODE" default:"55423"`
}

type PresentConfig struct {
	DisplayLimit   int `envconfig:"PRESENT_DISPLAY_LIMIT" default:"8"`
	MaxSuggestions int `envconfig:"PRESENT_MAX_SUGGESTIONS" default:"3"`
}
