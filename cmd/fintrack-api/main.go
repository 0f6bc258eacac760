package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/zombor/fintrack-api/internal/accessibility"
	"github.com/zombor/fintrack-api/internal/api"
	"github.com/zombor/fintrack-api/internal/receipt"
	"github.com/zombor/fintrack-api/internal/scanning"
	"github.com/zombor/fintrack-api/internal/settings"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	decimal.MarshalJSONWithoutQuotes = true

	fs := ff.NewFlagSet("fintrack-api")
	var (
		port           = fs.IntLong("port", 8000, "HTTP server port")
		ocrEngine      = fs.StringLong("ocr-engine", scanning.EngineTesseract, "OCR engine: 'tesseract', 'gemini' or 'ollama'")
		tesseractLangs = fs.StringLong("tesseract-langs", strings.Join(scanning.DefaultLanguages, "+"), "Tesseract language packs, joined with '+'")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL      = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel    = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		dbPath         = fs.StringLong("db", "", "Database file path; enables the receipt archive and persisted settings")
		storagePath    = fs.StringLong("storage", "./receipts", "Directory for archived receipt files")
		redisURL       = fs.StringLong("redis-url", "", "Redis URL for caching OCR results (optional)")
		cacheTTL       = fs.DurationLong("cache-ttl", 24*time.Hour, "How long cached OCR results live")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		feedbackQueue  = fs.IntLong("feedback-queue", 16, "Pending haptic cues before new ones are dropped")
		voiceQueue     = fs.IntLong("voice-queue", 32, "Pending voice commands before new ones are dropped")
		recognizerCmd  = fs.StringLong("recognizer", "", "Speech recognizer command; gets the language as its last argument and prints the text")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("FINTRACK"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize OCR engine
	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	slog.Info("Initializing OCR engine...", "engine", *ocrEngine)
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

	// Initialize database, archive and settings
	var (
		archive       receipt.DB
		files         receipt.Storage
		settingsStore settings.Store = settings.NewMemoryStore()
	)
	if *dbPath != "" {
		slog.Info("Initializing database...", "path", *dbPath)
		db, err := bbolt.Open(*dbPath, 0600, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			slog.Error("Failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		boltArchive, err := receipt.NewBoltDB(db)
		if err != nil {
			slog.Error("Failed to initialize receipt archive", "error", err)
			os.Exit(1)
		}
		archive = boltArchive

		boltSettings, err := settings.NewBoltStore(db)
		if err != nil {
			slog.Error("Failed to initialize settings store", "error", err)
			os.Exit(1)
		}
		settingsStore = boltSettings

		slog.Info("Initializing storage...", "path", *storagePath)
		local, err := receipt.NewLocalStorage(*storagePath)
		if err != nil {
			slog.Error("Failed to initialize storage", "error", err)
			os.Exit(1)
		}
		files = local
	}

	// Initialize cache
	var cache receipt.Cache
	if *redisURL != "" {
		slog.Info("Initializing OCR cache...", "ttl", *cacheTTL)
		redisCache, err := receipt.NewRedisCache(ctx, *redisURL, *cacheTTL)
		if err != nil {
			slog.Error("Failed to initialize cache", "error", err)
			os.Exit(1)
		}
		defer redisCache.Close()
		cache = redisCache
	}

	// Initialize accessibility services
	speaker := accessibility.NewSystemSpeaker()
	feedback := accessibility.NewFeedback(accessibility.NewSystemVibrator(), *feedbackQueue)
	defer feedback.Close()

	var recognizer accessibility.Recognizer
	if *recognizerCmd != "" {
		commandRecognizer, err := accessibility.NewCommandRecognizer(*recognizerCmd)
		if err != nil {
			slog.Error("Failed to initialize speech recognizer", "error", err)
			os.Exit(1)
		}
		recognizer = commandRecognizer
	}
	voice := accessibility.NewVoiceCommands(recognizer, speaker, accessibility.DefaultLanguage, *voiceQueue)
	defer voice.Stop()

	// Initialize server
	basicAuth := api.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := api.NewServer(api.Services{
		Receipts:  receipt.NewService(extractor, cache, archive, files),
		Settings:  settingsStore,
		Feedback:  feedback,
		Explainer: accessibility.NewExplainer(speaker, accessibility.DefaultLanguage),
		Voice:     voice,
	}, basicAuth)

	// Restore the accessibility state of persisted settings
	if *dbPath != "" {
		if err := server.ApplySettings(ctx); err != nil {
			slog.Error("Failed to apply stored settings", "error", err)
			os.Exit(1)
		}
	}

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}
	if archive == nil {
		slog.Info("Receipt archive disabled; set --db to enable it")
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
