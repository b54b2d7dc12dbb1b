package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/rulecraft"
	"github.com/aretw0/rulecraft/internal/logging"
	"github.com/aretw0/rulecraft/pkg/domain"
	"github.com/aretw0/rulecraft/pkg/rules"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Assistant is what the MCP server needs from the core.
type Assistant interface {
	Categories() []string
	Generate(ctx context.Context, source string, categories []string) (rulecraft.Result, error)
	Resolver() *rules.Resolver
	GroupList() []domain.CategoryGroup
}

// CategoriesResponse lists the selectable categories.
type CategoriesResponse struct {
	Categories []string `json:"categories" jsonschema_description:"Category display names, sorted by rule folder"`
}

// ResolveArgs names one category.
type ResolveArgs struct {
	Name string `json:"name"`
}

// ResolveResponse tells where a category's rules live.
type ResolveResponse struct {
	Name   string `json:"name" jsonschema_description:"The display name asked for"`
	Folder string `json:"folder" jsonschema_description:"Canonical rule folder after alias resolution"`
	URL    string `json:"url" jsonschema_description:"Where the rule body is fetched from"`
	Path   string `json:"path" jsonschema_description:"Local cache path used in the generated configuration"`
}

// SynthesizeArgs asks for a configuration.
type SynthesizeArgs struct {
	Source     string   `json:"source"`
	Categories []string `json:"categories"`
}

// SynthesizeResponse carries the generated document.
type SynthesizeResponse struct {
	Filename   string `json:"filename"`
	Document   string `json:"document" jsonschema_description:"The Clash configuration as YAML"`
	Nodes      int    `json:"nodes"`
	Categories int    `json:"categories"`
}

// Server exposes the assistant's stateless operations as MCP tools.
type Server struct {
	assistant Assistant
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(a Assistant, opts ...Option) *Server {
	s := &Server{
		assistant: a,
		mcpServer: server.NewMCPServer("rulecraft-mcp", strings.TrimSpace(rulecraft.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves on the given port using SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the rule categories a configuration can route."),
		mcp.WithOutputSchema[CategoriesResponse](),
	), mcp.NewStructuredToolHandler(s.handleListCategories))

	s.mcpServer.AddTool(mcp.NewTool("resolve_category",
		mcp.WithDescription("Show where a category's rule set is fetched from, after alias resolution."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Category display name, e.g. ChatGPT")),
		mcp.WithOutputSchema[ResolveResponse](),
	), mcp.NewStructuredToolHandler(s.handleResolve))

	s.mcpServer.AddTool(mcp.NewTool("synthesize_config",
		mcp.WithDescription("Fetch a node list and generate a Clash configuration routing the given categories."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Node list URL (GitHub gist or raw file)")),
		mcp.WithArray("categories", mcp.WithStringItems(), mcp.Description("Categories to route, in rule order")),
		mcp.WithOutputSchema[SynthesizeResponse](),
	), mcp.NewStructuredToolHandler(s.handleSynthesize))
}

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest, args struct{}) (CategoriesResponse, error) {
	cats := s.assistant.Categories()
	if cats == nil {
		cats = []string{}
	}
	return CategoriesResponse{Categories: cats}, nil
}

func (s *Server) handleResolve(ctx context.Context, request mcp.CallToolRequest, args ResolveArgs) (ResolveResponse, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return ResolveResponse{}, errors.New("name is required")
	}
	loc := s.assistant.Resolver().Resolve(name)
	return ResolveResponse{Name: name, Folder: loc.Folder, URL: loc.URL, Path: loc.Path}, nil
}

func (s *Server) handleSynthesize(ctx context.Context, request mcp.CallToolRequest, args SynthesizeArgs) (SynthesizeResponse, error) {
	if strings.TrimSpace(args.Source) == "" {
		return SynthesizeResponse{}, errors.New("source is required")
	}
	res, err := s.assistant.Generate(ctx, args.Source, args.Categories)
	if err != nil {
		s.logger.Warn("MCP synthesize failed", "source", args.Source, "err", err)
		return SynthesizeResponse{}, fmt.Errorf("%s: %w", rulecraft.UserMessage(err), err)
	}
	return SynthesizeResponse{
		Filename:   rulecraft.DocumentName,
		Document:   string(res.Document),
		Nodes:      res.Nodes,
		Categories: res.Categories,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("rulecraft://categories", "Rule categories",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("rulecraft://categories", s.assistant.Categories())
	})

	s.mcpServer.AddResource(mcp.NewResource("rulecraft://groups", "Category groups",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return jsonResource("rulecraft://groups", s.assistant.GroupList())
	})
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
