// File: internal/services/llm/openai_provider.go
package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/routelab/route-planner/retry"
)

// OpenAIProvider talks to any OpenAI-compatible endpoint. Gemini and Groq
// both expose one, so a single implementation serves every provider.
type OpenAIProvider struct {
	config *Config
	name   string
	model  string
	client *openai.Client
	policy retry.Policy
	logger Logger
}

func newOpenAIProvider(config *Config, name, apiKey, baseURL, model string, logger Logger) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL

	return &OpenAIProvider{
		config: config,
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
		policy: retry.Policy{Attempts: config.MaxRetries, Delay: config.RetryDelay},
		logger: logger,
	}
}

// NewGeminiProvider reaches Gemini through its OpenAI-compatible endpoint.
func NewGeminiProvider(config *Config, logger Logger) *OpenAIProvider {
	return newOpenAIProvider(config, "gemini", config.GeminiAPIKey, GeminiBaseURL, config.GeminiModel, logger)
}

// NewGroqProvider reaches Groq through its OpenAI-compatible endpoint.
func NewGroqProvider(config *Config, logger Logger) *OpenAIProvider {
	return newOpenAIProvider(config, "groq", config.GroqAPIKey, GroqBaseURL, config.GroqModel, logger)
}

// NewProvider picks the configured provider: Gemini first, then Groq.
func NewProvider(config *Config, logger Logger) (Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.GeminiAPIKey != "" {
		return NewGeminiProvider(config, logger), nil
	}
	return NewGroqProvider(config, logger), nil
}

func (p *OpenAIProvider) ModelName() string {
	return p.model
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	content, err := retry.DoValue(ctx, p.policy, func(ctx context.Context) (string, error) {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: p.config.Temperature,
			MaxTokens:   p.config.MaxTokens,
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return "", &LLMError{Type: ErrTypeProvider, Operation: "completion", Message: "empty completion response"}
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		p.logger.Error("completion failed", "provider", p.name, "model", p.model, "error", err)
		return "", NewProviderError("completion", "failed to create completion", err)
	}

	p.logger.Debug("completion succeeded", "provider", p.name, "model", p.model)
	return content, nil
}

func (p *OpenAIProvider) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	embedding, err := retry.DoValue(ctx, p.policy, func(ctx context.Context) ([]float32, error) {
		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(p.config.EmbeddingModel),
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return nil, &LLMError{Type: ErrTypeEmbedding, Operation: "embedding", Message: "empty embedding response"}
		}
		return resp.Data[0].Embedding, nil
	})
	if err != nil {
		p.logger.Error("embedding failed", "provider", p.name, "model", p.config.EmbeddingModel, "error", err)
		return nil, NewEmbeddingError("failed to create embedding", err)
	}
	return embedding, nil
}
