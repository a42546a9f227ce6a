package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/shopagent-core-poc/server/internal/agent/graph"
	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/agent/prefetch"
	"github.com/shopagent-core-poc/server/internal/agent/repo"
	"github.com/shopagent-core-poc/server/internal/cart"
	"github.com/shopagent-core-poc/server/internal/catalog"
	"github.com/shopagent-core-poc/server/internal/catalog/ratelimit"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance/lexicon"
	"github.com/shopagent-core-poc/server/internal/catalog/taxonomy"
	pkgredis "github.com/shopagent-core-poc/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the agent example,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Catalog gateway
	Catalog   catalog.Config
	RateLimit ratelimit.Config

	// Optional overrides for the built-in keyword tables
	LexiconPath  string `envconfig:"RELEVANCE_LEXICON_PATH"`
	TaxonomyPath string `envconfig:"CATALOG_TAXONOMY_PATH"`

	// Agent configs
	Chat         model.ChatModelConfig
	Prompt       model.PromptConfig
	Present      model.PresentConfig
	Conversation model.ConversationConfig

	CartTTL string `envconfig:"CART_TTL" default:"24h"`
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	rdb, err := envCfg.Redis.New()
	if err != nil {
		log.Fatalf("Failed to initialise Redis client: %v", err)
	}
	defer rdb.Close()

	fmt.Println("Connected to Redis successfully")

	// ====================================================
	// Keyword tables: built-in defaults unless overridden by file
	lex := lexicon.Default()
	if envCfg.LexiconPath != "" {
		if lex, err = lexicon.LoadFile(envCfg.LexiconPath); err != nil {
			log.Fatalf("Failed to load lexicon from %s: %v", envCfg.LexiconPath, err)
		}
	}
	tables := taxonomy.Default()
	if envCfg.TaxonomyPath != "" {
		if tables, err = taxonomy.LoadFile(envCfg.TaxonomyPath); err != nil {
			log.Fatalf("Failed to load taxonomy from %s: %v", envCfg.TaxonomyPath, err)
		}
	}

	engine, err := relevance.NewEngine(lex)
	if err != nil {
		log.Fatalf("Failed to build relevance engine: %v", err)
	}

	catalogClient, err := catalog.New(envCfg.Catalog, ratelimit.New(envCfg.RateLimit), engine, tables)
	if err != nil {
		log.Fatalf("Failed to build catalog client: %v", err)
	}

	// ====================================================
	// Build graph config entirely from env
	ttl, err := time.ParseDuration(envCfg.Conversation.TTL)
	if err != nil {
		log.Fatalf("Invalid CONVERSATION_TTL '%s': %v", envCfg.Conversation.TTL, err)
	}
	cartTTL, err := time.ParseDuration(envCfg.CartTTL)
	if err != nil {
		log.Fatalf("Invalid CART_TTL '%s': %v", envCfg.CartTTL, err)
	}

	cfg := graph.Config{
		APIKey:           envCfg.APIKey,
		BaseURL:          envCfg.BaseURL,
		ChatModel:        envCfg.Chat,
		Prompt:           envCfg.Prompt,
		Present:          envCfg.Present,
		Conversation:     envCfg.Conversation,
		ConversationRepo: repo.NewRedisConversationRepository(rdb, ttl),
		Catalog:          catalogClient,
		Carts:            cart.NewStore(rdb, cartTTL),
		Detailer:         catalogClient,
		Prefetcher:       prefetch.New(catalogClient, lex),
	}

	runner, err := graph.BuildResponseGraph(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Brand search with budget",
			query:       "I'm looking for a MacBook under $1200",
		},
		{
			description: "Follow-up detail question",
			query:       "How long is the warranty on the first one?",
		},
		{
			description: "Store pickup inquiry",
			query:       "Can I pick it up in a store near me?",
		},
	}

	conversationID := "test-conversation-123451"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)
		fmt.Println("Processing...")

		response, err := runner.Invoke(ctx, model.QueryInput{
			ConversationID: conversationID,
			Query:          test.query,
		})
		if err != nil {
			log.Fatalf("Failed to invoke graph for test %d: %v", i+1, err)
		}

		fmt.Printf("Response %d: %s\n", i+1, response.Message)
		for _, p := range response.Products {
			fmt.Printf("  - %s (SKU %d) $%.2f\n", p.Name, p.SKU, p.SalePrice)
		}
		for _, q := range response.SuggestedQuestions {
			fmt.Printf("  ? %s\n", q)
		}
		fmt.Println("------------------------------------------------")

		// add slight delay between tests for readability
		time.Sleep(500 * time.Millisecond)
	}

	stats := catalogClient.QuotaStats()
	fmt.Printf("\nQuota: %d/%d calls in window, %d/%d today\n",
		stats.CallsLastWindow, stats.ShortLimit, stats.CallsToday, stats.DailyLimit)

	fmt.Println("All graph runs completed successfully!")
}
