package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zombor/fintrack-api/internal/categorize"
	"github.com/zombor/fintrack-api/internal/receipt"
)

// maxUploadSize bounds receipt uploads; phone photos run large
const maxUploadSize = int64(50 << 20)

// explanationTimeout bounds the spoken walkthrough after an upload
const explanationTimeout = time.Minute

// writeJSON writes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes the uniform {detail} error body
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "FinTrack API is running"})
}

// contentTypeFor returns the declared content type, guessing from the file
// extension when the client sent none
func contentTypeFor(declared, filename string) string {
	contentType := strings.ToLower(strings.TrimSpace(declared))
	if contentType != "" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// handleProcessReceipt runs an uploaded image through the OCR pipeline
func (s *Server) handleProcessReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		detail := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeError(w, http.StatusBadRequest, detail)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()

	contentType := contentTypeFor(header.Header.Get("Content-Type"), header.Filename)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "File must be an image")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing receipt: %v", err))
		return
	}

	result, err := s.receipts.ProcessReceipt(r.Context(), header.Filename, data, contentType)
	s.signal(r.Context(), err)
	if err != nil {
		slog.Error("Error processing receipt", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing receipt: %v", err))
		return
	}

	if s.currentSettings(r.Context()).VoiceExplanation {
		go s.explainReceipt()
	}

	writeJSON(w, http.StatusOK, result)
}

// explainReceipt walks the user through the result screen. It runs detached
// from the request.
func (s *Server) explainReceipt() {
	ctx, cancel := context.WithTimeout(context.Background(), explanationTimeout)
	defer cancel()

	if err := s.explainer.Explain(ctx, "receipt_upload", ""); err != nil {
		slog.Warn("Failed to explain receipt upload", "error", err)
		return
	}
	elements := []string{"merchant", "date", "total", "category"}
	if err := s.explainer.ExplainScreen(ctx, "receipt_details", elements, ""); err != nil {
		slog.Warn("Failed to explain receipt details", "error", err)
	}
}

type categorizeRequest struct {
	Merchant    string          `json:"merchant"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// handleCategorize assigns a category to a transaction
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request) {
	var req categorizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.signal(r.Context(), err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	category := categorize.Categorize(req.Merchant, req.Amount, req.Description)
	s.signal(r.Context(), nil)
	writeJSON(w, http.StatusOK, map[string]string{"category": category})
}

// handleCategories lists every category the categorizer can assign
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": categorize.AllCategories()})
}

// archiveError maps archive errors onto status codes
func archiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, receipt.ErrNotFound):
		writeError(w, http.StatusNotFound, "Receipt not found")
	case errors.Is(err, receipt.ErrArchiveDisabled):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("Error accessing receipt archive", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// handleListReceipts returns every archived receipt, newest first
func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := s.receipts.ListReceipts()
	if err != nil {
		archiveError(w, err)
		return
	}
	if receipts == nil {
		receipts = []*receipt.ArchivedReceipt{}
	}
	writeJSON(w, http.StatusOK, receipts)
}

// handleGetReceipt returns a single archived receipt
func (s *Server) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	archived, err := s.receipts.GetReceipt(r.PathValue("id"))
	if err != nil {
		archiveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, archived)
}

// handleGetReceiptFile returns the original upload of an archived receipt
func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.receipts.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		archiveError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteReceipt removes an archived receipt and its file
func (s *Server) handleDeleteReceipt(w http.ResponseWriter, r *http.Request) {
	if err := s.receipts.DeleteReceipt(r.PathValue("id")); err != nil {
		archiveError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
