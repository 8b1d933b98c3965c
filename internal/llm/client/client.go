// Package client wraps eino chat models behind the pipeline's Backend
// contract, one constructor per supported provider.
package client

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"docfoundry/internal/llm"
)

// LLMClient adapts an eino chat model to llm.Backend. Prompts arrive fully
// assembled; the client only shapes them into messages and classifies
// provider errors.
type LLMClient struct {
	chatModel model.BaseChatModel
	provider  string
	modelName string
}

func (c *LLMClient) Provider() string { return c.provider }
func (c *LLMClient) Model() string    { return c.modelName }

func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := c.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", llm.ClassifyError(err)
	}
	if out == nil {
		return "", fmt.Errorf("%s returned an empty completion", c.provider)
	}
	return out.Content, nil
}

// Stream exposes the provider's token stream for callers that want
// incremental output. The reader is finite and must be closed.
func (c *LLMClient) Stream(ctx context.Context, prompt string) (*schema.StreamReader[*schema.Message], error) {
	reader, err := c.chatModel.Stream(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return nil, llm.ClassifyError(err)
	}
	return reader, nil
}
