package summarize

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/arifsolmaz/exodigest/internal/pipeline"
)

// Generator produces text for a prompt. The Gemini client implements it;
// tests substitute a fake to keep the pipeline offline.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	Close() error
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGemini builds the production generator backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %v: %w", err, pipeline.Classify(err))
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty Gemini response: %w", pipeline.ErrMalformed)
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected Gemini part type: %w", pipeline.ErrMalformed)
	}
	return string(text), nil
}

func (g *geminiGenerator) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}
