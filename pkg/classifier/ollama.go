package classifier

import (
	"context"
	"fmt"

	"servicebot/internal/catalog"
	"servicebot/internal/ollama"

	log "github.com/sirupsen/logrus"
)

// Generator is the part of the Ollama client the classifier needs.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (*ollama.GenerateResponse, error)
}

// OllamaClassifier asks a local Ollama model for a JSON categorization.
type OllamaClassifier struct {
	client         Generator
	model          string
	promptTemplate string
	catalog        *catalog.Catalog
}

// NewOllamaClassifier creates a classifier backed by Ollama's /api/generate.
func NewOllamaClassifier(client Generator, model, promptTemplate string, cat *catalog.Catalog) *OllamaClassifier {
	return &OllamaClassifier{
		client:         client,
		model:          model,
		promptTemplate: promptTemplate,
		catalog:        cat,
	}
}

// Classify implements Classifier.
func (c *OllamaClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if c.client == nil {
		return Result{}, fmt.Errorf("%w: ollama client not configured", ErrUnavailable)
	}

	log.Debugf("Sending classification request to Ollama (model %s)", c.model)
	resp, err := c.client.Generate(ctx, ollama.GenerateRequest{
		Model:  c.model,
		Prompt: BuildPrompt(c.promptTemplate, text, c.catalog),
		Format: "json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: ollama generate: %v", ErrUnavailable, err)
	}
	log.Debugf("Ollama raw response: %s", resp.Response)

	res, err := ParseResponse(resp.Response, c.catalog)
	if err != nil {
		return Result{}, err
	}
	res.Provider = "ollama"
	res.Model = resp.Model
	if res.Model == "" {
		res.Model = c.model
	}
	res.PromptTokens = resp.PromptEvalCount
	res.CompletionTokens = resp.EvalCount
	return res, nil
}
