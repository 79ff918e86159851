// Package api serves the study assistant over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fabfab/study-agent/chat"
	"github.com/fabfab/study-agent/config"
	"github.com/fabfab/study-agent/ingestion"
	"github.com/fabfab/study-agent/knowledge"
	"github.com/fabfab/study-agent/logger"
	"github.com/fabfab/study-agent/models"
	"github.com/fabfab/study-agent/progress"
	"github.com/fabfab/study-agent/quiz"
	"github.com/fabfab/study-agent/store"
	"github.com/fabfab/study-agent/uploads"
	"github.com/fabfab/study-agent/videos"
)

// maxRequestBytes caps every request body, uploads included.
const maxRequestBytes = 50 << 20

type DocumentReader interface {
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]models.DocumentSummary, error)
}

// RelatedFinder looks up documents that share keywords with a document.
type RelatedFinder interface {
	RelatedDocuments(ctx context.Context, id string, limit int) ([]knowledge.Related, error)
}

// Services are the workflows the server exposes. Graph may be nil.
type Services struct {
	Documents DocumentReader
	Ingestion *ingestion.Service
	Graph     RelatedFinder
	Chat      *chat.Service
	Quiz      *quiz.Service
	Progress  *progress.Service
	Videos    *videos.Service
}

type Server struct {
	svc     Services
	logger  *logger.Logger
	handler http.Handler
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New constructs a Server with CORS restricted to cfg.AllowedOrigins.
func New(cfg config.Config, svc Services, log *logger.Logger) *Server {
	s := &Server{svc: svc, logger: logger.OrNop(log)}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:         300,
	})
	s.handler = c.Handler(s.limitBody(s.routes()))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("route %s %s not found", r.Method, r.URL.Path))
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	})

	router.HandleFunc("/", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api.HandleFunc("/pdfs/upload", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/pdfs", s.handleListDocuments).Methods(http.MethodGet)
	api.HandleFunc("/pdfs/{id}/content", s.handleDocumentContent).Methods(http.MethodGet)
	api.HandleFunc("/pdfs/{id}/file", s.handleDocumentFile).Methods(http.MethodGet)
	api.HandleFunc("/pdfs/{id}/related", s.handleRelated).Methods(http.MethodGet)

	api.HandleFunc("/chat/create", s.handleCreateChat).Methods(http.MethodPost)
	api.HandleFunc("/chat/user", s.handleListChats).Methods(http.MethodGet)
	api.HandleFunc("/chat/message", s.handleSendMessage).Methods(http.MethodPost)
	api.HandleFunc("/chat/{id}", s.handleGetChat).Methods(http.MethodGet)

	api.HandleFunc("/quiz/generate", s.handleGenerateQuiz).Methods(http.MethodPost)
	api.HandleFunc("/quiz/submit", s.handleSubmitQuiz).Methods(http.MethodPost)
	api.HandleFunc("/quiz/attempts/user", s.handleAttempts).Methods(http.MethodGet)
	api.HandleFunc("/quiz/{id}", s.handleGetQuiz).Methods(http.MethodGet)

	api.HandleFunc("/progress/user", s.handleProgress).Methods(http.MethodGet)

	api.HandleFunc("/videos/recommendations/bulk", s.handleBulkRecommendations).Methods(http.MethodPost)
	api.HandleFunc("/videos/recommendations/{pdfId}", s.handleRecommendations).Methods(http.MethodGet)

	return router
}

func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Study Assistant API is running"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("api error", "status", status, "error", err)
	} else {
		s.logger.Debug("api error", "status", status, "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// fail maps a service error onto its status code.
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.writeError(w, statusFor(err), err)
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, uploads.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ingestion.ErrInvalidUpload),
		errors.Is(err, quiz.ErrInvalidQuizType),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, videos.ErrNoDocuments),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: decode request: %v", errBadRequest, err)
	}

	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", errBadRequest)
	}
	return nil
}
