package classifier

import (
	"context"
	"fmt"
	"strings"

	"servicebot/internal/catalog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ContentGenerator is satisfied by *genai.GenerativeModel.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier classifies with a Google Gemini model in JSON mode.
type GeminiClassifier struct {
	model          ContentGenerator
	modelName      string
	promptTemplate string
	catalog        *catalog.Catalog
	client         *genai.Client
}

// NewGeminiClassifier dials the Gemini API. Close releases the client.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName, promptTemplate string, cat *catalog.Catalog) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"

	g := newGeminiClassifier(model, modelName, promptTemplate, cat)
	g.client = client
	return g, nil
}

func newGeminiClassifier(model ContentGenerator, modelName, promptTemplate string, cat *catalog.Catalog) *GeminiClassifier {
	return &GeminiClassifier{
		model:          model,
		modelName:      modelName,
		promptTemplate: promptTemplate,
		catalog:        cat,
	}
}

// Classify implements Classifier.
func (g *GeminiClassifier) Classify(ctx context.Context, text string) (Result, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(g.promptTemplate, text, g.catalog)))
	if err != nil {
		return Result{}, fmt.Errorf("%w: gemini generate content: %w", ErrUnavailable, err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("%w: no candidates returned from Gemini", ErrUnavailable)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}

	res, err := ParseResponse(b.String(), g.catalog)
	if err != nil {
		return Result{}, err
	}
	res.Provider = "gemini"
	res.Model = g.modelName
	if resp.UsageMetadata != nil {
		res.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		res.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return res, nil
}

// Close releases the underlying Gemini client.
func (g *GeminiClassifier) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
