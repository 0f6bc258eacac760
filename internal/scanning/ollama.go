package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llava"
)

// Ollama transcribes receipts with a local vision model. Models known to read
// receipts: llava:1.6, qwen2-vl:7b and the smaller llava-phi3.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if modelName == "" {
		modelName = defaultOllamaModel
	}

	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   modelName,
		// CPU inference of a vision model takes minutes on large scans
		client: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

func (o *Ollama) ExtractText(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	reply, err := o.chat(ctx, ollamaChatRequest{
		Model:   o.model,
		Options: &ollamaOptions{Temperature: 0},
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{
				Role:    "user",
				Content: transcriptionPrompt,
				Images:  []string{base64.StdEncoding.EncodeToString(data)},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return cleanTranscript(reply.Content), nil
}

// chat posts a single non-streaming exchange to /api/chat
func (o *Ollama) chat(ctx context.Context, body ollamaChatRequest) (ollamaMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("encoding ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("building ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return ollamaMessage{}, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ollamaMessage{}, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ollamaMessage{}, fmt.Errorf("decoding ollama response: %w", err)
	}
	return out.Message, nil
}

func (o *Ollama) Close() error { return nil }
