// Command receipt-scan runs receipt files through the OCR pipeline and prints
// the parsed receipts as JSON, one document per file.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"

	"github.com/zombor/fintrack-api/internal/receipt"
	"github.com/zombor/fintrack-api/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	fs := ff.NewFlagSet("receipt-scan")
	var (
		ocrEngine      = fs.StringLong("ocr-engine", scanning.EngineTesseract, "OCR engine: 'tesseract', 'gemini' or 'ollama'")
		tesseractLangs = fs.StringLong("tesseract-langs", strings.Join(scanning.DefaultLanguages, "+"), "Tesseract language packs, joined with '+'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		rawText        = fs.BoolLong("raw", "Print only the recognised text")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FINTRACK"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}
	if len(fs.GetArgs()) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: no receipt files given")
		os.Exit(2)
	}

	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	extractor, err := scanning.NewExtractor(scanning.Config{
		Engine:      *ocrEngine,
		Languages:   scanning.ParseLanguages(*tesseractLangs),
		GeminiKey:   apiKey,
		GeminiModel: *geminiModel,
		OllamaURL:   *ollamaURL,
		OllamaModel: *ollamaModel,
	})
	if err != nil {
		slog.Error("Failed to initialize OCR engine", "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	service := receipt.NewService(extractor, nil, nil, nil)
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	var failed error
	for _, path := range fs.GetArgs() {
		parsed, err := scanFile(context.Background(), service, path)
		if err != nil {
			slog.Error("Failed to scan receipt", "file", path, "error", err)
			failed = errors.Join(failed, err)
			continue
		}
		if *rawText {
			fmt.Println(parsed.RawText)
			continue
		}
		if err := encoder.Encode(parsed); err != nil {
			slog.Error("Failed to write receipt", "file", path, "error", err)
			failed = errors.Join(failed, err)
		}
	}
	if failed != nil {
		os.Exit(1)
	}
}

// scanFile reads one receipt file and runs it through the pipeline
func scanFile(ctx context.Context, service *receipt.Service, path string) (*receipt.Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return service.ProcessReceipt(ctx, filepath.Base(path), data, detectContentType(path, data))
}

// detectContentType sniffs the file, trusting the extension for formats the
// sniffer does not know
func detectContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".tif", ".tiff":
		return "image/tiff"
	}
	return http.DetectContentType(data)
}
