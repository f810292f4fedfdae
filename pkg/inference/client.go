package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/givegoa/givegoa-api/pkg/config"
)

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("inference: api key not configured")

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("inference: empty response")

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client issues schema-constrained JSON generations against the Gemini API.
type Client struct {
	models generator
}

// New builds a client. Without an API key every call fails with ErrNotConfigured.
func New(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return &Client{}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{models: client.Models}, nil
}

// Configured reports whether calls will reach the service.
func (c *Client) Configured() bool {
	return c != nil && c.models != nil
}

// GenerateJSON sends prompt to model constrained to schema and returns the raw JSON text.
func (c *Client) GenerateJSON(ctx context.Context, model, prompt string, schema *genai.Schema) ([]byte, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := c.models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	})
	if err != nil {
		return nil, fmt.Errorf("generate content with %s: %w", model, err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(text), nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
