package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// VisionClient is a client for an OpenAI-compatible chat completions API that
// accepts image content parts (e.g. LM Studio).
type VisionClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewVisionClient creates a new vision chat client. The timeout bounds each
// outbound call independently of any retry loop around the client.
func NewVisionClient(baseURL, apiKey, model string, timeout time.Duration) *VisionClient {
	return &VisionClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Stream         bool          `json:"stream"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Describe sends the system prompt, the textual context, and the screenshot to
// the model and returns the raw response text.
func (c *VisionClient) Describe(ctx context.Context, system, userText string, imagePNG []byte) (string, error) {
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(imagePNG)

	payload := chatRequest{
		Model: c.model(ctx),
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: userText},
				{Type: "image_url", ImageURL: &chatImageURL{URL: dataURL}},
			}},
		},
	}

	// Ask for strict JSON if the server supports response_format. Some
	// servers reject unknown fields; retry once without it on 400/422.
	withFormat := payload
	withFormat.ResponseFormat = &struct {
		Type string `json:"type"`
	}{Type: "json_object"}

	resp, err := c.post(ctx, withFormat)
	if err != nil {
		return "", err
	}
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity {
		_ = resp.Body.Close()
		resp, err = c.post(ctx, payload)
		if err != nil {
			return "", err
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", &StatusError{
			Code:       resp.StatusCode,
			Body:       string(raw),
			RetryAfter: retryAfterSeconds(resp.Header.Get("Retry-After")),
		}
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return decodeContent(chatResp.Choices[0].Message.Content), nil
}

func (c *VisionClient) post(ctx context.Context, payload chatRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+"/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// model resolves the configured model name, auto-discovering the first model
// served by the endpoint when the name is "auto" or empty.
func (c *VisionClient) model(ctx context.Context) string {
	configured := strings.TrimSpace(c.Model)
	if configured != "" && !strings.EqualFold(configured, "auto") {
		return configured
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.BaseURL+"/models", nil)
	if err != nil {
		return "local-model"
	}
	resp, err := c.client.Do(req)
	if err != nil {
		slog.Warn("Model discovery failed", "error", err)
		return "local-model"
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("Model discovery failed", "status", resp.StatusCode)
		return "local-model"
	}

	var models struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil || len(models.Data) == 0 || models.Data[0].ID == "" {
		return "local-model"
	}

	c.Model = models.Data[0].ID
	slog.Info("Auto-selected model", "model", c.Model)
	return c.Model
}

// decodeContent handles both plain-string content and structured content
// parts; some servers return the latter.
func decodeContent(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var joined []string
		for _, part := range parts {
			if part.Type == "text" && part.Text != "" {
				joined = append(joined, part.Text)
			}
		}
		return strings.Join(joined, "\n")
	}
	return ""
}

func retryAfterSeconds(header string) float64 {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.ParseFloat(strings.TrimSpace(header), 64); err == nil && seconds > 0 {
		return seconds
	}
	return 0
}
