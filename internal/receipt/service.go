package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/fintrack-api/internal/scanning"
)

// ErrArchiveDisabled is returned by archive operations when no database is configured
var ErrArchiveDisabled = errors.New("receipt archive is not enabled")

// IDGenerator generates unique IDs for archived receipts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Service runs uploads through the OCR pipeline and manages the optional archive
type Service struct {
	preprocessor *scanning.Preprocessor
	extractor    scanning.Extractor
	cache        Cache
	db           DB
	storage      Storage
	idGenerator  IDGenerator
	timeSource   TimeSource
}

// NewService creates a Service. cache, db and storage may be nil; without db
// and storage nothing is archived.
func NewService(extractor scanning.Extractor, cache Cache, db DB, storage Storage) *Service {
	return NewServiceWithDeps(extractor, cache, db, storage, uuidGenerator{}, systemClock{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(extractor scanning.Extractor, cache Cache, db DB, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	if cache == nil {
		cache = noCache{}
	}
	if db == nil || storage == nil {
		db, storage = nil, nil
	}
	return &Service{
		preprocessor: scanning.NewPreprocessor(),
		extractor:    extractor,
		cache:        cache,
		db:           db,
		storage:      storage,
		idGenerator:  idGen,
		timeSource:   timeSrc,
	}
}

// ArchiveEnabled reports whether processed receipts are archived
func (s *Service) ArchiveEnabled() bool {
	return s.db != nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename cleans up a filename by removing special characters and truncating length
func sanitizeFilename(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	// Phones generate very long names
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "receipt"
	}

	if ext = unsafeFilenameChars.ReplaceAllString(strings.TrimPrefix(ext, "."), ""); ext != "" {
		return base + "." + ext
	}
	return base
}

// ProcessReceipt turns an uploaded receipt image into structured data. Every
// upload is archived, including repeats answered from the cache.
func (s *Service) ProcessReceipt(ctx context.Context, filename string, data []byte, contentType string) (*Receipt, error) {
	key := contentKey(data)
	receipt, ok := s.cache.Get(ctx, key)
	if ok {
		slog.Debug("Receipt cache hit", "filename", filename, "key", key)
	} else {
		now := s.timeSource.Now()
		var err error
		receipt, err = s.scan(ctx, filename, data, contentType, now)
		if err != nil {
			return nil, err
		}
		// An undated receipt is stamped with the upload time, which a later
		// upload must not inherit
		if !receipt.Date.Equal(now) {
			s.cache.Set(ctx, key, receipt)
		}
	}

	if s.ArchiveEnabled() {
		if _, err := s.archive(filename, data, contentType, receipt); err != nil {
			slog.Warn("Failed to archive receipt", "filename", filename, "error", err)
		}
	}
	return receipt, nil
}

func (s *Service) scan(ctx context.Context, filename string, data []byte, contentType string, now time.Time) (*Receipt, error) {
	img, err := s.preprocessor.Process(data, contentType)
	if err != nil {
		return nil, fmt.Errorf("preprocessing image: %w", err)
	}

	text, err := s.extractor.ExtractText(ctx, img)
	if err != nil {
		slog.Error("Failed to extract receipt text",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("extracting text: %w", err)
	}

	receipt := ParseText(text, now)
	slog.Info("Processed receipt",
		"filename", filename,
		"merchant", receipt.Merchant,
		"total", receipt.Total.String(),
		"category", receipt.Category,
		"items", len(receipt.Items),
	)
	return receipt, nil
}

func (s *Service) archive(filename string, data []byte, contentType string, receipt *Receipt) (*ArchivedReceipt, error) {
	id := s.idGenerator.Generate()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	archived := &ArchivedReceipt{
		ID:          id,
		Filename:    savedPath,
		ContentType: contentType,
		Receipt:     receipt,
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.db.SaveReceipt(archived); err != nil {
		// Don't leave orphaned files behind
		s.storage.Delete(savedPath)
		return nil, fmt.Errorf("saving receipt to database: %w", err)
	}
	return archived, nil
}

// GetReceipt retrieves an archived receipt by ID
func (s *Service) GetReceipt(id string) (*ArchivedReceipt, error) {
	if !s.ArchiveEnabled() {
		return nil, ErrArchiveDisabled
	}
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, fmt.Errorf("getting receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts returns all archived receipts
func (s *Service) ListReceipts() ([]*ArchivedReceipt, error) {
	if !s.ArchiveEnabled() {
		return nil, ErrArchiveDisabled
	}
	receipts, err := s.db.ListReceipts()
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	return receipts, nil
}

// DeleteReceipt removes an archived receipt and its file
func (s *Service) DeleteReceipt(id string) error {
	if !s.ArchiveEnabled() {
		return ErrArchiveDisabled
	}
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return fmt.Errorf("getting receipt for deletion: %w", err)
	}

	if err := s.storage.Delete(receipt.Filename); err != nil {
		// Log error but continue with database deletion
		slog.Warn("Failed to delete file", "filename", receipt.Filename, "error", err)
	}

	if err := s.db.DeleteReceipt(id); err != nil {
		return fmt.Errorf("deleting receipt from database: %w", err)
	}
	return nil
}

// GetReceiptFile retrieves the original upload of an archived receipt
func (s *Service) GetReceiptFile(id string) ([]byte, string, error) {
	if !s.ArchiveEnabled() {
		return nil, "", ErrArchiveDisabled
	}
	receipt, err := s.db.GetReceipt(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt: %w", err)
	}

	data, err := s.storage.Get(receipt.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting receipt file: %w", err)
	}

	return data, receipt.ContentType, nil
}
