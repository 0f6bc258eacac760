package scanning

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguages are the Tesseract language packs used when none are configured
var DefaultLanguages = []string{"eng", "hin", "mar", "tam", "tel", "kan", "ben", "guj"}

// Tesseract implements Extractor with a local Tesseract installation
type Tesseract struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// NewTesseract creates a Tesseract extractor for the given language packs
func NewTesseract(languages []string) *Tesseract {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}
	return &Tesseract{
		languages:     languages,
		clientFactory: gosseract.NewClient,
	}
}

// ExtractText runs Tesseract over the image. A client is created per call
// since gosseract clients are not safe for concurrent use.
func (t *Tesseract) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	c := t.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("setting languages: %w", err)
	}
	// Receipts are a single column of lines with varying font sizes
	if err := c.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := c.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// Close is a no-op; clients are released after every call
func (t *Tesseract) Close() error {
	return nil
}

// ParseLanguages splits a "eng+hin" or "eng,hin" list
func ParseLanguages(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == ',' || r == ' '
	})
	if len(fields) == 0 {
		return DefaultLanguages
	}
	return fields
}
