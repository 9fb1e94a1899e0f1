package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient talks to any endpoint speaking the OpenAI chat completion
// protocol. Both the openai and groq providers of the bridge pipeline are
// served by this client: groq exposes the same wire protocol behind a
// different base URL.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// OpenAIConfig configures an OpenAIClient.
type OpenAIConfig struct {
	APIKey string

	// BaseURL overrides the endpoint. Empty means api.openai.com.
	BaseURL string

	// Model is sent with every request and reported back in response
	// metadata, so it must be a pricing table key.
	Model string
}

// NewOpenAIClient creates a client for one (endpoint, model) pair.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, messages []Message, opts GenerateOptions) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
		TopP:        openai.Float(opts.TopP),
	}
	if opts.MaxOutputTokens != nil {
		params.MaxTokens = openai.Int(int64(*opts.MaxOutputTokens))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion for model %s returned no choices", c.model)
	}

	return &Response{
		Text:         completion.Choices[0].Message.Content,
		InputTokens:  int(completion.Usage.PromptTokens),
		OutputTokens: int(completion.Usage.CompletionTokens),
		// Report the configured model name, not the provider's versioned
		// alias, so cost lookup stays aligned with the pricing table.
		Metadata: map[string]string{"model": c.model},
	}, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
