// Package embed produces the copy-paste snippets that put a widget on a
// foreign page. Generation is pure: no network, no DOM, same input same
// output.
package embed

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"remila_sections/internal/theme"
	"remila_sections/internal/validation"
	"remila_sections/internal/widget"
)

type Mode string

const (
	ModeFramework Mode = "framework"
	ModeScript    Mode = "script"
	ModeIFrame    Mode = "iframe"
	ModeShortcode Mode = "shortcode"
)

func Modes() []Mode {
	return []Mode{ModeFramework, ModeScript, ModeIFrame, ModeShortcode}
}

const (
	BundleFile = "remila-sections.js"
	GlobalName = "RemilaSections"

	defaultMaxItems = 6
)

var ErrUnknownMode = errors.New("unknown embed mode")

// Config describes one widget placement.
type Config struct {
	SectionType widget.Kind    `json:"sectionType" validate:"required,oneof=news sponsors resources judges"`
	SiteSlug    string         `json:"siteSlug" validate:"required,max=100,slug"`
	APIBaseURL  string         `json:"apiBaseUrl,omitempty" validate:"omitempty,http_base_url"`
	Theme       *theme.Partial `json:"theme,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// ValidationError lists everything wrong with a Config.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "invalid embed config: " + strings.Join(e.Messages, "; ")
}

var propName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate returns nil when cfg can be turned into every snippet. Options
// the widget understands are held to the same rules the widget applies at
// mount time.
func Validate(cfg Config) []string {
	msgs := validation.Struct(cfg)
	for _, k := range sortedKeys(cfg.Options) {
		if !propName.MatchString(k) {
			msgs = append(msgs, fmt.Sprintf("options key %q is not a valid prop name", k))
		}
	}
	if cfg.SectionType.Valid() {
		wc, optMsgs := widgetConfig(cfg)
		msgs = appendNew(msgs, optMsgs...)
		msgs = appendNew(msgs, widget.Validate(cfg.SectionType, wc)...)
	}
	return msgs
}

// ContainerID is the element id used by script-tag embeds.
func ContainerID(kind widget.Kind, siteSlug string) string {
	return "remila-" + string(kind) + "-" + siteSlug
}

type Generator struct {
	PackageName  string
	CDNURL       string
	EmbedBaseURL string
}

func NewGenerator(packageName, cdnURL, embedBaseURL string) *Generator {
	return &Generator{
		PackageName:  packageName,
		CDNURL:       strings.TrimRight(cdnURL, "/"),
		EmbedBaseURL: strings.TrimRight(embedBaseURL, "/"),
	}
}

// Generate validates cfg and renders the snippet for mode.
func (g *Generator) Generate(mode Mode, cfg Config) (string, error) {
	if msgs := Validate(cfg); len(msgs) > 0 {
		return "", &ValidationError{Messages: msgs}
	}

	switch mode {
	case ModeFramework:
		return g.Framework(cfg), nil
	case ModeScript:
		return g.ScriptTag(cfg), nil
	case ModeIFrame:
		return g.IFrame(cfg), nil
	case ModeShortcode:
		return g.Shortcode(cfg), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Framework renders a component import wrapped in the theme provider.
func (g *Generator) Framework(cfg Config) string {
	component := cfg.SectionType.Component()

	var sb strings.Builder
	fmt.Fprintf(&sb, "import { ThemeProvider, %s } from '%s';\n\n", component, g.PackageName)
	fmt.Fprintf(&sb, "export default function Remila%sSection() {\n", component)
	sb.WriteString("  return (\n")
	if cfg.Theme != nil {
		fmt.Fprintf(&sb, "    <ThemeProvider theme={%s}>\n", mustJSON(cfg.Theme))
	} else {
		sb.WriteString("    <ThemeProvider>\n")
	}
	fmt.Fprintf(&sb, "      <%s\n", component)
	for _, p := range props(cfg) {
		fmt.Fprintf(&sb, "        %s\n", p)
	}
	sb.WriteString("      />\n")
	sb.WriteString("    </ThemeProvider>\n")
	sb.WriteString("  );\n")
	sb.WriteString("}\n")
	return sb.String()
}

// props orders siteSlug and apiBaseUrl first, then options by key.
func props(cfg Config) []string {
	out := []string{prop("siteSlug", cfg.SiteSlug)}
	if cfg.APIBaseURL != "" {
		out = append(out, prop("apiBaseUrl", cfg.APIBaseURL))
	}
	for _, k := range sortedKeys(cfg.Options) {
		if k == "siteSlug" || k == "apiBaseUrl" {
			continue
		}
		out = append(out, prop(k, cfg.Options[k]))
	}
	return out
}

func prop(name string, v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return name
		}
		return name + "={false}"
	case string:
		if strings.ContainsAny(val, "\"{}\\\n") {
			return name + "={" + mustJSON(val) + "}"
		}
		return name + `="` + val + `"`
	default:
		return name + "={" + mustJSON(val) + "}"
	}
}

// ScriptTag renders a container, the bundle tag and a registry call.
func (g *Generator) ScriptTag(cfg Config) string {
	id := ContainerID(cfg.SectionType, cfg.SiteSlug)

	var sb strings.Builder
	fmt.Fprintf(&sb, "<div id=\"%s\"></div>\n", id)
	fmt.Fprintf(&sb, "<script src=\"%s\"></script>\n", html.EscapeString(g.CDNURL+"/"+BundleFile))
	sb.WriteString("<script>\n")
	fmt.Fprintf(&sb, "  %s.render('%s', '%s', %s);\n", GlobalName, cfg.SectionType, id, mustJSON(renderConfig(cfg)))
	sb.WriteString("</script>\n")
	return sb.String()
}

// renderConfig flattens options next to the fixed keys. Fixed keys win.
func renderConfig(cfg Config) map[string]any {
	out := make(map[string]any, len(cfg.Options)+3)
	for k, v := range cfg.Options {
		out[k] = v
	}
	out["siteSlug"] = cfg.SiteSlug
	if cfg.APIBaseURL != "" {
		out["apiBaseUrl"] = cfg.APIBaseURL
	}
	if cfg.Theme != nil {
		out["theme"] = cfg.Theme
	}
	return out
}

// IFrameQuery is the query string an iframe embed sends to /embed/{type}.
func IFrameQuery(cfg Config) url.Values {
	q := url.Values{}
	q.Set("siteSlug", cfg.SiteSlug)
	if cfg.APIBaseURL != "" {
		q.Set("apiBaseUrl", cfg.APIBaseURL)
	}
	if cfg.Theme != nil {
		q.Set("theme", mustJSON(cfg.Theme))
	}
	if len(cfg.Options) > 0 {
		q.Set("options", mustJSON(cfg.Options))
	}
	return q
}

// IFrame renders the frame plus a listener that resizes it on messages
// from the embed origin only.
func (g *Generator) IFrame(cfg Config) string {
	id := ContainerID(cfg.SectionType, cfg.SiteSlug) + "-frame"
	src := g.EmbedBaseURL + "/embed/" + string(cfg.SectionType) + "?" + IFrameQuery(cfg).Encode()

	var sb strings.Builder
	fmt.Fprintf(&sb, "<iframe id=\"%s\" src=\"%s\" title=\"%s\" loading=\"lazy\" style=\"width:100%%;min-height:320px;border:0;\"></iframe>\n",
		id, html.EscapeString(src), html.EscapeString(cfg.SectionType.Title()))
	sb.WriteString("<script>\n")
	sb.WriteString("  window.addEventListener('message', function (event) {\n")
	fmt.Fprintf(&sb, "    if (event.origin !== %s) return;\n", mustJSON(origin(g.EmbedBaseURL)))
	sb.WriteString("    var data = event.data;\n")
	sb.WriteString("    if (!data || data.type !== 'resize') return;\n")
	fmt.Fprintf(&sb, "    var frame = document.getElementById('%s');\n", id)
	sb.WriteString("    if (frame && frame.contentWindow === event.source) frame.style.height = data.height + 'px';\n")
	sb.WriteString("  });\n")
	sb.WriteString("</script>\n")
	return sb.String()
}

func origin(base string) string {
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return base
	}
	return u.Scheme + "://" + u.Host
}

// Shortcode renders the WordPress plugin tag.
func (g *Generator) Shortcode(cfg Config) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[remila_%s site_slug=%q", cfg.SectionType, cfg.SiteSlug)
	if cfg.APIBaseURL != "" {
		fmt.Fprintf(&sb, " api_base_url=%q", cfg.APIBaseURL)
	}
	fmt.Fprintf(&sb, " max_items=\"%d\"", optInt(cfg.Options, "maxItems", defaultMaxItems))
	fmt.Fprintf(&sb, " show_title=\"%t\"", optBool(cfg.Options, "showTitle", true))
	fmt.Fprintf(&sb, " enable_animation=\"%t\"", optBool(cfg.Options, "enableAnimation", true))
	sb.WriteString("]")
	return sb.String()
}

func optInt(opts map[string]any, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func optBool(opts map[string]any, key string, def bool) bool {
	switch v := opts[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
