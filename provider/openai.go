package provider

import (
	"context"
	"strings"

	"github.com/elimu-labs/mwalimu"
	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator implements Generator and Embedder using OpenAI's API.
type OpenAIGenerator struct {
	client         *openai.Client
	model          string
	embeddingModel string
	temperature    float32
	maxTokens      int
}

// OpenAIConfig holds configuration for the OpenAI generator.
type OpenAIConfig struct {
	APIKey         string  // OpenAI API key
	Model          string  // Chat model (default: "gpt-4o-mini")
	EmbeddingModel string  // Embedding model (default: "text-embedding-3-small")
	Temperature    float32 // Temperature for generation (default: 0.3)
	MaxTokens      int     // Completion token cap (default: 2000)
	BaseURL        string  // Custom base URL (optional)
}

// NewOpenAIGenerator creates a new OpenAI generator.
func NewOpenAIGenerator(cfg OpenAIConfig) *OpenAIGenerator {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	return &OpenAIGenerator{
		client:         openai.NewClientWithConfig(config),
		model:          model,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		maxTokens:      maxTokens,
	}
}

// Complete produces generated text for the assembled prompt.
func (g *OpenAIGenerator) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", &mwalimu.UpstreamError{
			Service:   "openai",
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return "", &mwalimu.UpstreamError{
			Service:   "openai",
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// Embed produces the embedding vector for a retrieval query.
func (g *OpenAIGenerator) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := g.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(g.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, &mwalimu.UpstreamError{
			Service:   "openai",
			Message:   "embedding failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Data) == 0 {
		return nil, &mwalimu.UpstreamError{
			Service:   "openai",
			Message:   "no embedding returned",
			Retryable: true,
		}
	}

	return resp.Data[0].Embedding, nil
}

func isRetryableError(err error) bool {
	// Check for common retryable conditions
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIGenerator implements Generator and Embedder
var (
	_ Generator = (*OpenAIGenerator)(nil)
	_ Embedder  = (*OpenAIGenerator)(nil)
)
