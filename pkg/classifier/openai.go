package classifier

import (
	"context"
	"fmt"

	"servicebot/internal/catalog"

	"github.com/sashabaranov/go-openai"
)

// ChatCompletionCreator is the minimal interface for OpenAI chat completions.
type ChatCompletionCreator interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClassifier classifies through any OpenAI-compatible chat completion
// endpoint, including Ollama's /v1 compatibility layer.
type OpenAIClassifier struct {
	client         ChatCompletionCreator
	model          string
	promptTemplate string
	catalog        *catalog.Catalog
}

// NewOpenAIClassifier creates a new classifier using an OpenAI-compatible client.
func NewOpenAIClassifier(client ChatCompletionCreator, model, promptTemplate string, cat *catalog.Catalog) *OpenAIClassifier {
	return &OpenAIClassifier{
		client:         client,
		model:          model,
		promptTemplate: promptTemplate,
		catalog:        cat,
	}
}

// NewOpenAIClient builds a go-openai client, pointing it at baseURL when set.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// Classify implements Classifier.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if c.client == nil {
		return Result{}, fmt.Errorf("%w: openai client not configured", ErrUnavailable)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(c.promptTemplate, text, c.catalog),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: openai chat completion failed: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return Result{}, fmt.Errorf("%w: no choices returned from OpenAI", ErrUnavailable)
	}

	res, err := ParseResponse(resp.Choices[0].Message.Content, c.catalog)
	if err != nil {
		return Result{}, err
	}
	res.Provider = "openai"
	res.Model = c.model
	res.PromptTokens = resp.Usage.PromptTokens
	res.CompletionTokens = resp.Usage.CompletionTokens
	return res, nil
}
