package llm

import (
	"context"
	"fmt"

	"github.com/revrost/go-openrouter"
)

type OpenRouterClient struct {
	client *openrouter.Client
	opts   Options
}

func NewOpenRouterClient(apiKey string, opts Options) *OpenRouterClient {
	if opts.Model == "" {
		opts.Model = "openai/gpt-4o-mini"
	}
	return &OpenRouterClient{
		client: openrouter.NewClient(apiKey),
		opts:   opts,
	}
}

func (c *OpenRouterClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	var messages []openrouter.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openrouter.ChatCompletionMessage{
			Role:    openrouter.ChatMessageRoleSystem,
			Content: openrouter.Content{Text: system},
		})
	}
	messages = append(messages, openrouter.ChatCompletionMessage{
		Role:    openrouter.ChatMessageRoleUser,
		Content: openrouter.Content{Text: prompt},
	})

	response, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content.Text, nil
}
