// Package server exposes widgets, embed snippets and content over HTTP.
package server

import (
	"context"
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"remila_sections/internal/admin"
	"remila_sections/internal/content"
	"remila_sections/internal/domain"
	embedcode "remila_sections/internal/embed"
	"remila_sections/internal/widget"
)

//go:embed assets/remila-sections.js
var bundleJS []byte

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// AdminService is the write side used by the admin routes.
type AdminService interface {
	Move(ctx context.Context, c domain.Collection, siteSlug, id string, dir admin.Direction) (bool, error)
	Upload(ctx context.Context, r io.Reader, contentType, bucket, objectPath string) (string, error)
	Delete(ctx context.Context, bucket, objectPath string) error
}

type Options struct {
	Content   *content.Client
	Widgets   *widget.Factory
	Generator *embedcode.Generator
	Admin     AdminService
	AdminKey  string
	Logger    *slog.Logger
}

type Server struct {
	content   *content.Client
	widgets   *widget.Factory
	generator *embedcode.Generator
	admin     AdminService
	adminKey  string
	logger    *slog.Logger
}

func New(opts Options) *Server {
	return &Server{
		content:   opts.Content,
		widgets:   opts.Widgets,
		generator: opts.Generator,
		admin:     opts.Admin,
		adminKey:  opts.AdminKey,
		logger:    opts.Logger.With("component", "http"),
	}
}

// Handler returns the routed, CORS-enabled handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	log := func(h http.HandlerFunc) http.HandlerFunc { return WithLogging(s.logger, h) }
	adminOnly := func(h http.HandlerFunc) http.HandlerFunc { return log(RequireAdminKey(s.adminKey, h)) }

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Data API
	mux.HandleFunc("GET /api/v1/content/{collection}", log(s.listContent))
	mux.HandleFunc("GET /api/v1/prizes", log(s.getPrizes))
	mux.HandleFunc("GET /api/v1/settings", log(s.getSettings))

	// Widgets and embeds
	mux.HandleFunc("GET /widgets/{type}", log(s.widgetFragment))
	mux.HandleFunc("GET /widgets/{type}/stream", log(s.widgetStream))
	mux.HandleFunc("GET /embed/{type}", log(s.embedDocument))
	mux.HandleFunc("POST /api/v1/embed-code", log(s.embedCode))
	mux.HandleFunc("GET /cdn/"+embedcode.BundleFile, log(s.bundle))

	// Admin
	mux.HandleFunc("POST /api/v1/admin/{collection}/{id}/move", adminOnly(s.moveItem))
	mux.HandleFunc("POST /api/v1/admin/uploads", adminOnly(s.uploadFile))
	mux.HandleFunc("DELETE /api/v1/admin/uploads", adminOnly(s.deleteFile))

	return CORS(mux)
}

func (s *Server) bundle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(bundleJS)
}
