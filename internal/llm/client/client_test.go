package client

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docfoundry/internal/llm"
)

type stubChatModel struct {
	generateFunc func(ctx context.Context, input []*schema.Message) (*schema.Message, error)
	streamFunc   func(ctx context.Context, input []*schema.Message) (*schema.StreamReader[*schema.Message], error)
}

func (s *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	return s.generateFunc(ctx, input)
}

func (s *stubChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	if s.streamFunc != nil {
		return s.streamFunc(ctx, input)
	}
	return nil, errors.New("not implemented")
}

func TestGenerateShapesPromptAsUserMessage(t *testing.T) {
	var got []*schema.Message
	c := &LLMClient{
		provider:  "openai",
		modelName: "gpt-4o",
		chatModel: &stubChatModel{
			generateFunc: func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				got = input
				return schema.AssistantMessage("the answer", nil), nil
			},
		},
	}

	out, err := c.Generate(context.Background(), "the prompt")

	require.NoError(t, err)
	assert.Equal(t, "the answer", out)
	require.Len(t, got, 1)
	assert.Equal(t, schema.User, got[0].Role)
	assert.Equal(t, "the prompt", got[0].Content)
}

func TestGenerateClassifiesRateLimit(t *testing.T) {
	c := &LLMClient{
		provider: "openai",
		chatModel: &stubChatModel{
			generateFunc: func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				return nil, errors.New("429: rate limit reached on tokens per minute (TPM)")
			},
		},
	}

	_, err := c.Generate(context.Background(), "prompt")

	var rl *llm.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, llm.ScopePerMinute, rl.Scope)
}

func TestGenerateNilCompletion(t *testing.T) {
	c := &LLMClient{
		provider: "gemini",
		chatModel: &stubChatModel{
			generateFunc: func(ctx context.Context, input []*schema.Message) (*schema.Message, error) {
				return nil, nil
			},
		},
	}

	_, err := c.Generate(context.Background(), "prompt")
	assert.ErrorContains(t, err, "empty completion")
}

func TestStreamDeliversChunksInOrder(t *testing.T) {
	var got []*schema.Message
	c := &LLMClient{
		provider: "anthropic",
		chatModel: &stubChatModel{
			streamFunc: func(ctx context.Context, input []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
				got = input
				reader, writer := schema.Pipe[*schema.Message](2)
				writer.Send(schema.AssistantMessage("hel", nil), nil)
				writer.Send(schema.AssistantMessage("lo", nil), nil)
				writer.Close()
				return reader, nil
			},
		},
	}

	reader, err := c.Stream(context.Background(), "the prompt")
	require.NoError(t, err)
	defer reader.Close()

	var out strings.Builder
	for {
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		out.WriteString(msg.Content)
	}
	assert.Equal(t, "hello", out.String())
	require.Len(t, got, 1)
	assert.Equal(t, schema.User, got[0].Role)
}

func TestStreamClassifiesRateLimit(t *testing.T) {
	c := &LLMClient{
		provider: "openai",
		chatModel: &stubChatModel{
			streamFunc: func(ctx context.Context, input []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
				return nil, errors.New("429: rate limit reached on requests per day (RPD)")
			},
		},
	}

	_, err := c.Stream(context.Background(), "prompt")

	var rl *llm.RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, llm.ScopePerDay, rl.Scope)
}

func TestNewForProviderUnknown(t *testing.T) {
	_, err := NewForProvider(context.Background(), "mystery", "key", "model")
	assert.ErrorContains(t, err, "unsupported provider")
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog()

	require.NoError(t, err)
	require.NotEmpty(t, catalog)
	for _, provider := range catalog {
		assert.NotEmpty(t, provider.ID)
		assert.NotEmpty(t, provider.DefaultModel)
		assert.Contains(t, provider.Models, provider.DefaultModel)
	}
}
