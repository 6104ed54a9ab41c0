// Package ai adapts the generative AI service used for savings advice and voice search.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var ErrNotConfigured = errors.New("generative AI API key is not configured")

// Client generates short texts with a Gemini model
type Client struct {
	client *genai.Client
	model  string
}

// NewClient creates a Client. An empty API key yields ErrNotConfigured.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

// Generate sends prompt to the model and returns the response text
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return resp.Text(), nil
}

// Unavailable is a generator used when no API key is configured; every call fails
// so callers fall back to their default text.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}
