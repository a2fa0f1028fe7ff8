package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	domai "github.com/teamkaeos/signal-analyst/internal/domain/ai"
	"github.com/teamkaeos/signal-analyst/internal/infra/ai/prompt"
)

const maxOutputTokens = 8000

// Client talks to the Gemini API. Generation is kept near-deterministic
// (low temperature) so the reply stays close to the requested JSON schema.
type Client struct {
	client *genai.Client
	Model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: cli, Model: model}, nil
}

func (c *Client) Analyze(ctx context.Context, documents string) (string, error) {
	model := c.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}

	config := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr[float32](0.1),
		TopP:              genai.Ptr[float32](0.8),
		TopK:              genai.Ptr[float32](40),
		MaxOutputTokens:   maxOutputTokens,
		SystemInstruction: genai.NewContentFromText(prompt.GetSystemPrompt(), genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, model,
		genai.Text(prompt.GetUserPrompt(documents)), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == 429 {
			return "", domai.ErrQuotaExceeded
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", domai.ErrEmptyResponse
	}
	return text, nil
}
