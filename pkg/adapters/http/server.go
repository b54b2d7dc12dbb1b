package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/rulecraft"
	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/adapters/memory"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/fetch"
	"github.com/aretw0/rulecraft/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 64 << 10

// Assistant is what the HTTP transport needs from the core.
type Assistant interface {
	HandleText(ctx context.Context, userID, text string, p ports.Presenter) error
	HandleAction(ctx context.Context, userID, data string, p ports.Presenter) error
	Categories() []string
	Generate(ctx context.Context, source string, categories []string) (rulecraft.Result, error)
}

// Server exposes an Assistant as a JSON API. Every presenter call made while
// handling a request is returned in the response and pushed to the user's
// event stream.
type Server struct {
	Assistant Assistant
	Streams   *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// MessageRequest carries a free-text message.
type MessageRequest struct {
	Text string `json:"text"`
}

// ActionRequest carries an encoded button press.
type ActionRequest struct {
	Data string `json:"data"`
}

// EventsResponse lists what the assistant presented while handling a request.
type EventsResponse struct {
	Events []memory.Event `json:"events"`
}

// SynthesizeRequest asks for a configuration without a session.
type SynthesizeRequest struct {
	Source     string   `json:"source"`
	Categories []string `json:"categories"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// NewHandler creates the HTTP handler for the assistant.
func NewHandler(a Assistant, opts ...Option) http.Handler {
	s := &Server{
		Assistant: a,
		Streams:   NewStreamManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/categories", s.GetCategories)
		r.Post("/synthesize", s.Synthesize)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/messages", s.PostMessage)
			r.Post("/actions", s.PostAction)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "rulecraft-http",
		"version": strings.TrimSpace(rulecraft.Version),
	})
}

// GetCategories handles GET /v1/categories.
func (s *Server) GetCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.Assistant.Categories()
	if cats == nil {
		cats = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"categories": cats})
}

// PostMessage handles POST /v1/users/{userID}/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if !s.decode(w, r, &body) {
		return
	}
	userID := chi.URLParam(r, "userID")
	s.present(w, r, userID, func(ctx context.Context, p ports.Presenter) error {
		return s.Assistant.HandleText(ctx, userID, body.Text, p)
	})
}

// PostAction handles POST /v1/users/{userID}/actions.
func (s *Server) PostAction(w http.ResponseWriter, r *http.Request) {
	var body ActionRequest
	if !s.decode(w, r, &body) {
		return
	}
	userID := chi.URLParam(r, "userID")
	s.present(w, r, userID, func(ctx context.Context, p ports.Presenter) error {
		return s.Assistant.HandleAction(ctx, userID, body.Data, p)
	})
}

// Synthesize handles POST /v1/synthesize. The reply is the YAML document.
func (s *Server) Synthesize(w http.ResponseWriter, r *http.Request) {
	var body SynthesizeRequest
	if !s.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Source) == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "source is required")
		return
	}

	res, err := s.Assistant.Generate(r.Context(), body.Source, body.Categories)
	if err != nil {
		status, code := statusOf(err)
		s.logger.Warn("Synthesize failed", "source", body.Source, "err", err)
		s.writeError(w, status, code, rulecraft.UserMessage(err))
		return
	}

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rulecraft.DocumentName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Document); err != nil {
		s.logger.Error("Synthesize response write failed", "err", err)
	}
}

// present runs fn against a fresh recorder, broadcasts what it recorded and
// replies with it.
func (s *Server) present(w http.ResponseWriter, r *http.Request, userID string, fn func(context.Context, ports.Presenter) error) {
	if strings.TrimSpace(userID) == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "user id is required")
		return
	}

	rec := memory.NewRecorder()
	err := fn(r.Context(), rec)
	events := rec.Events()
	for _, ev := range events {
		if data, mErr := json.Marshal(ev); mErr == nil {
			s.Streams.Broadcast(userID, string(data))
		}
	}

	if err != nil {
		s.logger.Error("Request failed", "user_id", userID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "INTERNAL", rulecraft.UserMessage(err))
		return
	}
	if events == nil {
		events = []memory.Event{}
	}
	s.writeJSON(w, http.StatusOK, EventsResponse{Events: events})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "request body too large")
			return false
		}
		s.logger.Warn("Invalid request body", "path", r.URL.Path, "err", err)
		s.writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "invalid request body")
		return false
	}
	return true
}

// statusOf maps a generation failure to an HTTP status and error code.
func statusOf(err error) (int, string) {
	var (
		fe  *domain.FetchError
		mal *domain.MalformedNodeError
	)
	switch {
	case errors.As(err, &fe):
		switch fe.Code {
		case fetch.CodeTimeout:
			return http.StatusGatewayTimeout, fe.Code
		case fetch.CodeInvalidArgument:
			return http.StatusBadRequest, fe.Code
		}
		return http.StatusBadGateway, fe.Code
	case errors.As(err, &mal):
		return http.StatusUnprocessableEntity, "MALFORMED_NODE"
	case errors.Is(err, domain.ErrNotASource):
		return http.StatusBadRequest, "NOT_A_SOURCE"
	}
	return http.StatusInternalServerError, "INTERNAL"
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}
