// Package mock provides a mock model card server for exercising mcbench
// without the real service.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ModelCard is the document served by the mock endpoint
type ModelCard struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Version          string   `json:"version"`
	Author           string   `json:"author"`
	ShortDescription string   `json:"short_description"`
	Categories       []string `json:"categories"`
	Padding          string   `json:"padding,omitempty"`
}

var searchCatalog = []string{"AlexNet", "ResNet-50", "MegaDetector", "BERT-base"}

// Server is a mock model card HTTP server
type Server struct {
	router *Router
	port   int
	delay  time.Duration
	size   int
	logger *zap.Logger
}

// Option is a functional option for Server
type Option func(*Server)

// WithPort sets the server port
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDelay adds a delay to all responses
func WithDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// WithSize pads model card bodies to size bytes
func WithSize(size int) Option {
	return func(s *Server) {
		s.size = size
	}
}

// WithLogger logs every request at info level
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new mock server
func NewServer(opts ...Option) *Server {
	s := &Server{
		router: NewRouter(),
		port:   5002,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Handle(http.MethodGet, "/modelcard/{id}", "get_modelcard", s.modelCard)
	s.router.Handle(http.MethodGet, "/modelcards/search", "search_modelcards", s.search)

	return s
}

// GetRoutes returns all registered routes
func (s *Server) GetRoutes() []*Route {
	return s.router.Routes()
}

// Handler returns the server's request handler
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleRequest)
}

// StartWithContext serves until ctx is cancelled
func (s *Server) StartWithContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("mock server starting", zap.String("addr", fmt.Sprintf("http://localhost:%d", s.port)))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-r.Context().Done():
			return
		}
	}

	route, params := s.router.Match(r.Method, r.URL.Path)
	if route == nil {
		s.logger.Info("request", zap.String("method", r.Method), zap.String("path", r.URL.Path),
			zap.Int("status", http.StatusNotFound), zap.Duration("elapsed", time.Since(start)))
		http.NotFound(w, r)
		return
	}

	query := make(map[string]string)
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}

	resp := route.Handler(params, query)
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)

	s.logger.Info("request", zap.String("method", r.Method), zap.String("path", r.URL.Path),
		zap.String("route", route.Name), zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(resp.Body)), zap.Duration("elapsed", time.Since(start)))
}

func (s *Server) modelCard(params map[string]string, _ map[string]string) *MockResponse {
	card := ModelCard{
		ID:               params["id"],
		Name:             "AlexNet",
		Version:          "1.0",
		Author:           "mcbench",
		ShortDescription: "Mock model card served for benchmarking",
		Categories:       []string{"classification", "vision"},
	}
	return jsonResponse(http.StatusOK, padTo(card, s.size))
}

func (s *Server) search(_ map[string]string, query map[string]string) *MockResponse {
	q := strings.ToLower(query["q"])
	hits := make([]ModelCard, 0)
	for i, name := range searchCatalog {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			hits = append(hits, ModelCard{ID: fmt.Sprintf("mc-%d", i+1), Name: name, Version: "1.0"})
		}
	}
	body, _ := json.Marshal(hits)
	return &MockResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: body}
}

// padTo marshals card, growing its padding field so the body is exactly
// size bytes when size is larger than the unpadded card.
func padTo(card ModelCard, size int) []byte {
	base, _ := json.Marshal(card)
	overhead := len(`,"padding":""`)
	if size <= len(base)+overhead {
		return base
	}
	card.Padding = strings.Repeat("x", size-len(base)-overhead)
	body, _ := json.Marshal(card)
	return body
}

func jsonResponse(status int, body []byte) *MockResponse {
	return &MockResponse{StatusCode: status, ContentType: "application/json", Body: body}
}
