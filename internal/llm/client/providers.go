package client

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"google.golang.org/genai"
)

const claudeMaxTokens = 16000

// OpenAIModelOptions configure an OpenAI-backed client.
type OpenAIModelOptions struct {
	Model string
}

func NewOpenAIClient(ctx context.Context, apiKey string, opts OpenAIModelOptions) (*LLMClient, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: apiKey,
		Model:  opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return &LLMClient{chatModel: chatModel, provider: "openai", modelName: opts.Model}, nil
}

// ClaudeModelOptions configure an Anthropic-backed client.
type ClaudeModelOptions struct {
	Model string
}

func NewClaudeClient(ctx context.Context, apiKey string, opts ClaudeModelOptions) (*LLMClient, error) {
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    apiKey,
		Model:     opts.Model,
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create claude chat model: %w", err)
	}
	return &LLMClient{chatModel: chatModel, provider: "anthropic", modelName: opts.Model}, nil
}

// GeminiModelOptions configure a Gemini-backed client.
type GeminiModelOptions struct {
	Model string
}

func NewGeminiClient(ctx context.Context, apiKey string, opts GeminiModelOptions) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: genaiClient,
		Model:  opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}
	return &LLMClient{chatModel: chatModel, provider: "gemini", modelName: opts.Model}, nil
}

// NewForProvider dispatches to the matching provider constructor.
func NewForProvider(ctx context.Context, provider, apiKey, modelName string) (*LLMClient, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(ctx, apiKey, OpenAIModelOptions{Model: modelName})
	case "anthropic":
		return NewClaudeClient(ctx, apiKey, ClaudeModelOptions{Model: modelName})
	case "gemini":
		return NewGeminiClient(ctx, apiKey, GeminiModelOptions{Model: modelName})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
