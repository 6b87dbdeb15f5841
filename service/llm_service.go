package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultGenAIModel is used when no model is configured
const DefaultGenAIModel = "gemini-2.0-flash"

// ErrModelUnavailable is returned by the offline completer
var ErrModelUnavailable = errors.New("language model is not configured")

// Completer turns a prompt into a single text reply
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenAICompleter answers prompts with Google's Gemini API
type GenAICompleter struct {
	client *genai.Client
	model  string
}

// NewGenAICompleter creates a new GenAICompleter
func NewGenAICompleter(ctx context.Context, apiKey, model string) (*GenAICompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultGenAIModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAICompleter{client: client, model: model}, nil
}

// Complete sends one user turn and returns the text of the first candidate
func (c *GenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("GenAI returned an empty response")
	}
	return text, nil
}

// OfflineCompleter is used when no API key is configured. Every call fails.
type OfflineCompleter struct{}

// Complete always returns ErrModelUnavailable
func (OfflineCompleter) Complete(context.Context, string) (string, error) {
	return "", ErrModelUnavailable
}
