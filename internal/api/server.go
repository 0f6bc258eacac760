// Package api exposes receipt OCR, tax calculation, categorization,
// settings and accessibility triggers over HTTP.
package api

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/zombor/fintrack-api/internal/accessibility"
	"github.com/zombor/fintrack-api/internal/receipt"
	"github.com/zombor/fintrack-api/internal/settings"
)

// BasicAuth holds basic authentication credentials
type BasicAuth struct {
	Username string
	Password string
}

// Services are the components the HTTP layer drives
type Services struct {
	Receipts  *receipt.Service
	Settings  settings.Store
	Feedback  *accessibility.Feedback
	Explainer *accessibility.Explainer
	Voice     *accessibility.VoiceCommands
}

// Server handles HTTP requests
type Server struct {
	receipts  *receipt.Service
	settings  settings.Store
	feedback  *accessibility.Feedback
	explainer *accessibility.Explainer
	voice     *accessibility.VoiceCommands

	validate  *validator.Validate
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// NewServer creates a new Server with default mux
func NewServer(services Services, basicAuth BasicAuth) *Server {
	return NewServerWithMux(services, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(services Services, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		receipts:  services.Receipts,
		settings:  services.Settings,
		feedback:  services.Feedback,
		explainer: services.Explainer,
		voice:     services.Voice,
		validate:  newValidator(),
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// newValidator reports fields by their JSON names and validates decimals as
// numbers
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == s.basicAuth.Username && credentials[1] == s.basicAuth.Password
}

// corsMiddleware adds CORS headers and answers preflight requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="FinTrack"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r)
	}
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// registerRoutes registers all API routes on the server's mux
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	// OCR
	s.mux.HandleFunc("POST /api/ocr/process-receipt", s.requireAuth(s.handleProcessReceipt))
	s.mux.HandleFunc("POST /api/ocr/categorize-transaction", s.requireAuth(s.handleCategorize))
	s.mux.HandleFunc("GET /api/ocr/categories", s.requireAuth(s.handleCategories))

	if s.receipts != nil && s.receipts.ArchiveEnabled() {
		s.mux.HandleFunc("GET /api/ocr/receipts/{id}/file", s.requireAuth(s.handleGetReceiptFile))
		s.mux.HandleFunc("GET /api/ocr/receipts/{id}", s.requireAuth(s.handleGetReceipt))
		s.mux.HandleFunc("DELETE /api/ocr/receipts/{id}", s.requireAuth(s.handleDeleteReceipt))
		s.mux.HandleFunc("GET /api/ocr/receipts", s.requireAuth(s.handleListReceipts))
	}

	// Tax
	s.mux.HandleFunc("POST /api/tax/income", s.requireAuth(s.handleIncomeTax))
	s.mux.HandleFunc("POST /api/tax/sales", s.requireAuth(s.handleSalesTax))
	s.mux.HandleFunc("POST /api/tax/property", s.requireAuth(s.handlePropertyTax))

	// Settings
	s.mux.HandleFunc("GET /api/settings", s.requireAuth(s.handleGetSettings))
	s.mux.HandleFunc("POST /api/settings", s.requireAuth(s.handleUpdateSettings))

	// Accessibility
	s.mux.HandleFunc("POST /api/accessibility/speak", s.requireAuth(s.handleSpeak))
	s.mux.HandleFunc("POST /api/accessibility/vibrate", s.requireAuth(s.handleVibrate))
	s.mux.HandleFunc("POST /api/accessibility/explain", s.requireAuth(s.handleExplain))
	s.mux.HandleFunc("POST /api/accessibility/voice-command", s.requireAuth(s.handleVoiceCommand))
	s.mux.HandleFunc("GET /api/accessibility/voice-commands", s.requireAuth(s.handleDrainVoiceCommands))
}

// Handler returns the mux wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// currentSettings reads a settings snapshot, falling back to the defaults
func (s *Server) currentSettings(ctx context.Context) settings.UserSettings {
	us, err := s.settings.Get(ctx)
	if err != nil {
		slog.Error("Error reading settings", "error", err)
		return settings.Defaults()
	}
	return us
}

// signal fires the haptic cue for an outcome when vibration feedback is on
func (s *Server) signal(ctx context.Context, err error) {
	if !s.currentSettings(ctx).VibrationFeedback {
		return
	}
	if err != nil {
		s.feedback.Error()
		return
	}
	s.feedback.Success()
}

// ApplySettings pushes the stored settings into the accessibility services
func (s *Server) ApplySettings(ctx context.Context) error {
	us, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	s.apply(us)
	return nil
}

func (s *Server) apply(us settings.UserSettings) {
	if us.VoiceCommands {
		s.voice.Listen()
	} else {
		s.voice.Stop()
	}
	s.explainer.SetLanguage(us.Language)
	s.voice.SetLanguage(us.Language)
	s.feedback.SetEnabled(us.VibrationFeedback)
}
