package scanning

import (
	"context"
	"fmt"
	"image"
	"strings"
)

// Extractor turns a prepared receipt image into plain text
type Extractor interface {
	// ExtractText reads all text in the image, one receipt line per line
	ExtractText(ctx context.Context, img image.Image) (string, error)
	// Close releases any resources held by the extractor
	Close() error
}

// transcriptionPrompt asks vision models for a verbatim, line-by-line copy
// systemPrompt frames a vision model as a plain OCR engine
const systemPrompt = "You are an OCR engine. You copy the text of receipts exactly as printed."

const transcriptionPrompt = `Transcribe every line of text on this receipt exactly as printed.

Rules:
- Keep the original line order, top to bottom.
- Put each printed line on its own line.
- Keep numbers, currency symbols and punctuation exactly as shown.
- Do not summarize, translate, correct or add anything.
- Return only the transcribed text.`

// Engine names accepted by NewExtractor
const (
	EngineTesseract = "tesseract"
	EngineGemini    = "gemini"
	EngineOllama    = "ollama"
)

// Config selects an OCR engine and its settings
type Config struct {
	Engine      string
	Languages   []string
	GeminiKey   string
	GeminiModel string
	OllamaURL   string
	OllamaModel string
}

// NewExtractor builds the extractor named by cfg.Engine
func NewExtractor(cfg Config) (Extractor, error) {
	switch strings.ToLower(cfg.Engine) {
	case EngineTesseract, "":
		return NewTesseract(cfg.Languages), nil
	case EngineGemini:
		g, err := NewGemini(cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return g, nil
	case EngineOllama:
		o, err := NewOllama(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, err
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown OCR engine %q: want tesseract, gemini or ollama", cfg.Engine)
	}
}
