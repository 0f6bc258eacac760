package scanning

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiTimeout      = 30 * time.Second
)

var errEmptyTranscript = errors.New("gemini returned no text")

// Gemini transcribes receipts with a hosted Gemini model
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) ExtractText(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	// ImageData takes the format name, not a MIME type
	resp, err := g.model.GenerateContent(ctx, genai.ImageData("png", data), genai.Text(transcriptionPrompt))
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", errEmptyTranscript
	}
	return cleanTranscript(text), nil
}

// candidateText joins the text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func (g *Gemini) Close() error {
	return g.client.Close()
}
