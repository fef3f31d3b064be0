package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/realitycheck/internal/domain"
	"github.com/kailas-cloud/realitycheck/internal/ingest"
	"github.com/kailas-cloud/realitycheck/internal/logger"
)

const (
	maxJSONBodyBytes = 1 << 20
	maxRetrieveK     = 50
	multipartMemory  = 8 << 20
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Services groups the use cases behind the API.
type Services struct {
	Analyze  Analyzer
	Classify Classifier
	Retrieve Retriever
	Notes    NotesUploader
	Ask      Asker
	Generate StudyGenerator
	Usage    UsageReporter
	Health   HealthChecker
}

// Options bounds request handling.
type Options struct {
	// MaxUploadBytes caps multipart bodies (notes upload, analyze with image).
	MaxUploadBytes int64
	// DefaultK is used by /v1/retrieve when k is omitted.
	DefaultK int
}

// Server serves the HTTP API.
type Server struct {
	svc           Services
	opts          Options
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(svc Services, opts Options, logger *zap.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = 5
	}
	s := &Server{svc: svc, opts: opts, logger: logger}
	// Order matters: an error may wrap several sentinels, the first match wins.
	s.errorHandlers = []errorHandler{
		tooLargeHandler,
		clientErrorHandler(domain.ErrInvalidInput, http.StatusBadRequest, CodeValidationFailed),
		clientErrorHandler(domain.ErrUnsupportedDocument, http.StatusBadRequest, CodeUnsupportedDocument),
		sentinelHandler(domain.ErrNoCorpus, http.StatusConflict, CodeNoCorpus,
			"No uploaded notes found. Upload notes first."),
		clientErrorHandler(domain.ErrUnreadableDocument, http.StatusUnprocessableEntity, CodeUnreadableDocument),
		sentinelHandler(domain.ErrProviderQuota, http.StatusTooManyRequests, CodeQuotaExceeded, ""),
		sentinelHandler(domain.ErrTransport, http.StatusGatewayTimeout, CodeProviderTimeout, ""),
		sentinelHandler(domain.ErrMalformedModelOutput, http.StatusBadGateway, CodeMalformedModelOutput,
			"Model did not return valid JSON."),
		sentinelHandler(domain.ErrMalformedResponse, http.StatusBadGateway, CodeMalformedResponse, ""),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, CodeProviderError, ""),
	}
	return s
}

// Routes registers every API route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.Analyze)
		r.Post("/classify", s.Classify)
		r.Post("/retrieve", s.Retrieve)
		r.Post("/notes", s.UploadNotes)
		r.Post("/notes/ask", s.Ask)
		r.Post("/notes/generate", s.Generate)
		r.Get("/usage", s.GetUsage)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeBadRequest, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
}

// decodeJSON reads a bounded JSON body into v. Unknown fields are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && strings.HasPrefix(mt, "multipart/")
}

// parseMultipart parses a bounded multipart body.
func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("parse multipart form: %s: %w", err.Error(), domain.ErrInvalidInput)
	}
	return nil
}

// formFile reads the named file part. ok is false when the part is absent.
func formFile(r *http.Request, name string) (ingest.File, bool, error) {
	f, hdr, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return ingest.File{}, false, nil
	}
	if err != nil {
		return ingest.File{}, false, fmt.Errorf("read %s: %s: %w", name, err.Error(), domain.ErrInvalidInput)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return ingest.File{}, false, fmt.Errorf("read %s: %w", name, err)
	}
	return ingest.File{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, true, nil
}

// setUsageHeaders reports provider usage of the request.
func setUsageHeaders(w http.ResponseWriter, u *domain.RequestUsage) {
	c := u.Snapshot()
	if c.EmbeddingCalls > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(c.EmbeddingTokens))
		w.Header().Set("X-Embedding-Calls", strconv.Itoa(c.EmbeddingCalls))
	}
	if c.ModelCalls > 0 {
		w.Header().Set("X-Model-Calls", strconv.Itoa(c.ModelCalls))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}

// sentinelHandler matches one sentinel and answers with a fixed message
// (the sentinel text when message is empty) so upstream details never leak.
func sentinelHandler(sentinel error, status int, code, message string) errorHandler {
	if message == "" {
		message = sentinel.Error()
	}
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

// clientErrorHandler matches a caller-caused sentinel and echoes the full message.
func clientErrorHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func tooLargeHandler(w http.ResponseWriter, err error) bool {
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		return false
	}
	writeError(w, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
		fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
