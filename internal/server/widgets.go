package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"remila_sections/internal/mount"
	"remila_sections/internal/theme"
	"remila_sections/internal/validation"
	"remila_sections/internal/widget"
)

const (
	embedContainerID = "remila-root"
	streamHeartbeat  = 25 * time.Second
)

// widgetFragment serves GET /widgets/{type}: the widget after its first
// fetch, as an HTML fragment. The bundle swaps it into the host container.
func (s *Server) widgetFragment(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.newWidget(w, r)
	if !ok {
		return
	}
	defer inst.Unmount()

	if err := inst.Mount(r.Context()); err != nil {
		s.logger.Error("mount widget", "kind", inst.Kind(), "error", err)
	}

	var buf bytes.Buffer
	if err := inst.Render(&buf); err != nil {
		s.logger.Error("render widget", "kind", inst.Kind(), "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
}

// widgetStream serves GET /widgets/{type}/stream as server-sent events.
// Every state change is pushed as a "render" event carrying the full
// fragment. The instance lives until the client goes away.
func (s *Server) widgetStream(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.newWidget(w, r)
	if !ok {
		return
	}
	defer inst.Unmount()

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.Warn("clear write deadline", "error", err)
	}

	changed := make(chan struct{}, 1)
	inst.OnChange(func(*widget.Instance) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	if err := inst.Mount(r.Context()); err != nil {
		s.logger.Error("mount widget", "kind", inst.Kind(), "error", err)
		return
	}

	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("stream closed", "kind", inst.Kind(), "instance", inst.ID())
			return
		case <-changed:
			html, err := inst.HTML()
			if err != nil {
				s.logger.Error("render widget", "kind", inst.Kind(), "error", err)
				return
			}
			if err := writeEvent(w, "render", string(html)); err != nil {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

// newWidget builds an instance from the path and query. On failure it has
// already written the error fragment.
func (s *Server) newWidget(w http.ResponseWriter, r *http.Request) (*widget.Instance, bool) {
	kind := widget.Kind(r.PathValue("type"))
	cfg, msgs := widget.ConfigFromQuery(r.URL.Query())
	if len(msgs) > 0 {
		writeErrors(w, http.StatusBadRequest, msgs)
		return nil, false
	}

	inst, err := s.widgets.New(kind, cfg)
	if err != nil {
		var cfgErr *widget.ConfigError
		switch {
		case errors.Is(err, widget.ErrUnknownKind):
			writeErrors(w, http.StatusNotFound, widget.Validate(kind, cfg))
		case errors.As(err, &cfgErr):
			writeErrors(w, http.StatusBadRequest, cfgErr.Messages)
		default:
			s.logger.Error("create widget", "kind", kind, "error", err)
			http.Error(w, "cannot create widget", http.StatusInternalServerError)
		}
		return nil, false
	}
	return inst, true
}

type embedPage struct {
	Title       string
	ContainerID string
	Body        template.HTML
	StreamURL   string
}

// embedDocument serves GET /embed/{type}, the standalone page loaded by
// iframe embeds. The widget is composed through a mount registry exactly as
// the bundle would on a host page.
func (s *Server) embedDocument(w http.ResponseWriter, r *http.Request) {
	kind := widget.Kind(r.PathValue("type"))
	page := mount.NewPage(embedContainerID)
	root, _ := page.Element(embedContainerID)

	data := embedPage{Title: "Widget", ContainerID: embedContainerID}
	status := http.StatusOK

	cfg, msgs := embedConfig(r.URL.Query())
	switch {
	case !kind.Valid():
		status = http.StatusNotFound
		root.SetHTML(widget.ErrorsHTML(widget.Validate(kind, cfg)))
	case len(msgs) > 0:
		status = http.StatusBadRequest
		root.SetHTML(widget.ErrorsHTML(msgs))
	default:
		data.Title = kind.Title()
		registry := mount.NewRegistry(page, s.widgets, s.logger)
		if h := registry.Render(r.Context(), kind, embedContainerID, cfg); h == nil {
			status = http.StatusBadRequest
		} else if cfg.AutoRefresh || cfg.LiveUpdate {
			data.StreamURL = "/widgets/" + string(kind) + "/stream?" + fragmentQuery(cfg).Encode()
		}
		data.Body = root.HTML()
		registry.UnmountAll()
	}
	if data.Body == "" {
		data.Body = root.HTML()
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "embed", data); err != nil {
		s.logger.Error("render embed page", "kind", kind, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	writeHTML(w, status, buf.Bytes())
}

// embedSource carries the apiBaseUrl an iframe embed was generated with.
// The iframe document is rendered by this server, which is itself the data
// API, so the value is checked but never used to fetch content.
type embedSource struct {
	APIBaseURL string `json:"apiBaseUrl" validate:"omitempty,http_base_url"`
}

// embedConfig reads the iframe query: siteSlug, an optional theme object and
// an options object whose keys are widget config fields.
func embedConfig(q url.Values) (widget.Config, []string) {
	slug := q.Get("siteSlug")
	fields := map[string]any{}

	if msgs := validation.Struct(embedSource{APIBaseURL: q.Get("apiBaseUrl")}); len(msgs) > 0 {
		return widget.DefaultConfig(slug), msgs
	}

	if raw := q.Get("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return widget.DefaultConfig(slug), []string{"options must be a JSON object"}
		}
	}
	fields["siteSlug"] = slug
	if raw := q.Get("theme"); raw != "" {
		if _, err := theme.Parse(raw); err != nil {
			return widget.DefaultConfig(slug), []string{"theme must be a JSON object"}
		}
		fields["theme"] = json.RawMessage(raw)
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return widget.DefaultConfig(slug), []string{"options must be a JSON object"}
	}
	var cfg widget.Config
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return widget.DefaultConfig(slug), []string{"options do not match the widget settings"}
	}
	return cfg, nil
}

// fragmentQuery is the inverse of widget.ConfigFromQuery.
func fragmentQuery(cfg widget.Config) url.Values {
	q := url.Values{}
	q.Set("siteSlug", cfg.SiteSlug)
	if cfg.MaxItems > 0 {
		q.Set("maxItems", strconv.Itoa(cfg.MaxItems))
	}
	q.Set("showTitle", strconv.FormatBool(cfg.ShowTitle))
	q.Set("enableAnimation", strconv.FormatBool(cfg.EnableAnimation))
	if cfg.Category != "" {
		q.Set("category", cfg.Category)
	}
	if cfg.AutoRefresh {
		q.Set("autoRefresh", "true")
	}
	if cfg.RefreshInterval > 0 {
		q.Set("refreshInterval", strconv.Itoa(cfg.RefreshInterval))
	}
	if cfg.LiveUpdate {
		q.Set("liveUpdate", "true")
	}
	if cfg.Theme != nil {
		if raw, err := json.Marshal(cfg.Theme); err == nil {
			q.Set("theme", string(raw))
		}
	}
	return q
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeErrors(w http.ResponseWriter, status int, messages []string) {
	writeHTML(w, status, []byte(widget.ErrorsHTML(messages)))
}

// writeEvent writes one SSE event, splitting multi-line data.
func writeEvent(w http.ResponseWriter, event, data string) error {
	var sb strings.Builder
	sb.WriteString("event: ")
	sb.WriteString(event)
	sb.WriteByte('\n')
	for _, line := range strings.Split(data, "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	_, err := w.Write([]byte(sb.String()))
	return err
}
