// Package theme merges caller-supplied widget themes over the built-in
// defaults.
package theme

import (
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

const (
	DefaultPrimary    = "#2563EB"
	DefaultSecondary  = "#7C3AED"
	DefaultBackground = "#FFFFFF"
	DefaultText       = "#1F2937"
	DefaultAccent     = "#F59E0B"
	DefaultFontFamily = "Inter, system-ui, sans-serif"
)

// Config is a fully populated theme. Extra holds keys the widgets do not
// use; they are written back out next to the known ones.
type Config struct {
	Colors     Colors         `json:"colors"`
	Typography Typography     `json:"typography"`
	Extra      map[string]any `json:"-"`
}

type Colors struct {
	Primary    string         `json:"primary"`
	Secondary  string         `json:"secondary"`
	Background string         `json:"background"`
	Text       string         `json:"text"`
	Accent     string         `json:"accent"`
	Extra      map[string]any `json:"-"`
}

type Typography struct {
	FontFamily string         `json:"fontFamily"`
	Extra      map[string]any `json:"-"`
}

// Partial is a caller override. Nil fields fall back to the defaults.
type Partial struct {
	Colors     *PartialColors     `json:"colors,omitempty"`
	Typography *PartialTypography `json:"typography,omitempty"`
	Extra      map[string]any     `json:"-"`
}

type PartialColors struct {
	Primary    *string        `json:"primary,omitempty" validate:"omitempty,hexcolor_rgb"`
	Secondary  *string        `json:"secondary,omitempty" validate:"omitempty,hexcolor_rgb"`
	Background *string        `json:"background,omitempty" validate:"omitempty,hexcolor_rgb"`
	Text       *string        `json:"text,omitempty" validate:"omitempty,hexcolor_rgb"`
	Accent     *string        `json:"accent,omitempty" validate:"omitempty,hexcolor_rgb"`
	Extra      map[string]any `json:"-"`
}

type PartialTypography struct {
	FontFamily *string        `json:"fontFamily,omitempty"`
	Extra      map[string]any `json:"-"`
}

func Default() Config {
	return Config{
		Colors: Colors{
			Primary:    DefaultPrimary,
			Secondary:  DefaultSecondary,
			Background: DefaultBackground,
			Text:       DefaultText,
			Accent:     DefaultAccent,
		},
		Typography: Typography{
			FontFamily: DefaultFontFamily,
		},
	}
}

// Normalize deep-merges p over the defaults. Sub-objects are merged field by
// field, never replaced wholesale.
func Normalize(p *Partial) Config {
	cfg := Default()
	if p == nil {
		return cfg
	}

	if c := p.Colors; c != nil {
		override(&cfg.Colors.Primary, c.Primary)
		override(&cfg.Colors.Secondary, c.Secondary)
		override(&cfg.Colors.Background, c.Background)
		override(&cfg.Colors.Text, c.Text)
		override(&cfg.Colors.Accent, c.Accent)
		cfg.Colors.Extra = copyExtra(c.Extra)
	}
	if t := p.Typography; t != nil {
		override(&cfg.Typography.FontFamily, t.FontFamily)
		cfg.Typography.Extra = copyExtra(t.Extra)
	}
	cfg.Extra = copyExtra(p.Extra)

	return cfg
}

func copyExtra(extra map[string]any) map[string]any {
	if len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func override(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// Parse decodes a JSON theme override. An empty string yields a nil partial.
func Parse(raw string) (*Partial, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var p Partial
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("decode theme: %w", err)
	}
	return &p, nil
}

// UnmarshalJSON keeps unknown top-level keys in Extra. The sub-objects
// keep their own unknown keys.
func (p *Partial) UnmarshalJSON(data []byte) error {
	type plain Partial
	var v plain
	extra, err := decodeWithExtra(data, &v, "colors", "typography")
	if err != nil {
		return err
	}
	*p = Partial(v)
	p.Extra = extra
	return nil
}

// MarshalJSON writes Extra alongside the known fields.
func (p Partial) MarshalJSON() ([]byte, error) {
	type plain Partial
	return encodeWithExtra(plain(p), p.Extra)
}

func (c *PartialColors) UnmarshalJSON(data []byte) error {
	type plain PartialColors
	var v plain
	extra, err := decodeWithExtra(data, &v, "primary", "secondary", "background", "text", "accent")
	if err != nil {
		return err
	}
	*c = PartialColors(v)
	c.Extra = extra
	return nil
}

func (c PartialColors) MarshalJSON() ([]byte, error) {
	type plain PartialColors
	return encodeWithExtra(plain(c), c.Extra)
}

func (t *PartialTypography) UnmarshalJSON(data []byte) error {
	type plain PartialTypography
	var v plain
	extra, err := decodeWithExtra(data, &v, "fontFamily")
	if err != nil {
		return err
	}
	*t = PartialTypography(v)
	t.Extra = extra
	return nil
}

func (t PartialTypography) MarshalJSON() ([]byte, error) {
	type plain PartialTypography
	return encodeWithExtra(plain(t), t.Extra)
}

func (c Config) MarshalJSON() ([]byte, error) {
	type plain Config
	return encodeWithExtra(plain(c), c.Extra)
}

func (c Colors) MarshalJSON() ([]byte, error) {
	type plain Colors
	return encodeWithExtra(plain(c), c.Extra)
}

func (t Typography) MarshalJSON() ([]byte, error) {
	type plain Typography
	return encodeWithExtra(plain(t), t.Extra)
}

// decodeWithExtra decodes data into dst and returns the object members not
// named in known, or nil when there are none.
func decodeWithExtra(data []byte, dst any, known ...string) (map[string]any, error) {
	if err := json.Unmarshal(data, dst); err != nil {
		return nil, err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// encodeWithExtra marshals v with extra merged in. Known fields win over
// extra keys of the same name.
func encodeWithExtra(v any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	out := make(map[string]any, len(extra)+len(known))
	for k, val := range extra {
		out[k] = val
	}
	for k, val := range known {
		out[k] = val
	}
	return json.Marshal(out)
}

// CSSVars renders the theme as CSS custom properties for an inline style
// attribute.
func (c Config) CSSVars() template.CSS {
	vars := map[string]string{
		"--remila-primary":     c.Colors.Primary,
		"--remila-secondary":   c.Colors.Secondary,
		"--remila-background":  c.Colors.Background,
		"--remila-text":        c.Colors.Text,
		"--remila-accent":      c.Colors.Accent,
		"--remila-font-family": c.Typography.FontFamily,
	}

	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(cssValue(vars[k]))
		sb.WriteString("; ")
	}
	return template.CSS(strings.TrimSpace(sb.String()))
}

// cssValue strips characters that could close the declaration or the
// attribute. Colors are not validated at this layer.
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\\':
			return -1
		}
		return r
	}, v)
}
