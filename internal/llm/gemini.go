package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient is the hosted Gemini vision backend.
type GeminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int, temperature float32) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Describe sends the prompt and screenshot to Gemini and returns the raw
// response text. API failures carry their status code as a StatusError so
// rate limiting can be classified without string matching.
func (c *GeminiClient) Describe(ctx context.Context, system, userText string, imagePNG []byte) (string, error) {
	temperature := c.temperature
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:   int32(c.maxTokens),
		Temperature:       &temperature,
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(userText),
			genai.NewPartFromBytes(imagePNG, "image/png"),
		}, genai.RoleUser),
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Code: apiErr.Code, Body: apiErr.Message}
		}
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}

	return result.Text(), nil
}
