package analyze

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

// Gemini is the shipped Completer, backed by the Gemini API. The client
// reads GEMINI_API_KEY from the environment; a .env file next to the
// process is honored.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer for the given model name.
func NewGemini(ctx context.Context, model string) (*Gemini, error) {
	_ = godotenv.Load()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Complete implements Completer.
func (g *Gemini) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
