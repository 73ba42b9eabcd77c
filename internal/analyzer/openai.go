package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ModelConfig configures the OpenAI-compatible model client.
type ModelConfig struct {
	Endpoint   string
	APIKey     string
	ChatModel  string
	EmbedModel string
	Timeout    time.Duration
}

// OpenAIModel implements TextModel against any OpenAI-compatible API
// (chat completions plus embeddings).
type OpenAIModel struct {
	cfg        ModelConfig
	httpClient *http.Client
}

// NewOpenAIModel builds the client.
func NewOpenAIModel(cfg ModelConfig) *OpenAIModel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &OpenAIModel{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate implements TextModel using the chat completions endpoint.
func (m *OpenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    m.cfg.ChatModel,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var resp chatResponse
	if err := m.post(ctx, "/chat/completions", reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from model")
	}
	return resp.Choices[0].Message.Content, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed implements TextModel using the embeddings endpoint.
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model: m.cfg.EmbedModel,
		Input: text,
	}

	var resp embedResponse
	if err := m.post(ctx, "/embeddings", reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned from model")
	}
	return resp.Data[0].Embedding, nil
}

func (m *OpenAIModel) post(ctx context.Context, path string, payload any, out any) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(m.cfg.Endpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read model response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model api error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse model response: %w", err)
	}
	return nil
}

var _ TextModel = (*OpenAIModel)(nil)
