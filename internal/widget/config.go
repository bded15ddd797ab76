package widget

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"remila_sections/internal/theme"
	"remila_sections/internal/validation"
)

const DefaultRefreshInterval = 60 * time.Second

// refreshUnit scales RefreshInterval.
var refreshUnit = time.Second

// Config is what an embedding page passes to a widget.
type Config struct {
	SiteSlug        string         `json:"siteSlug" validate:"required,max=100,slug"`
	MaxItems        int            `json:"maxItems,omitempty" validate:"omitempty,min=1,max=50"`
	ShowTitle       bool           `json:"showTitle"`
	EnableAnimation bool           `json:"enableAnimation"`
	Theme           *theme.Partial `json:"theme,omitempty"`
	Category        string         `json:"category,omitempty" validate:"omitempty,max=100"`
	AutoRefresh     bool           `json:"autoRefresh,omitempty"`
	// RefreshInterval is in seconds.
	RefreshInterval int  `json:"refreshInterval,omitempty" validate:"omitempty,min=5,max=86400"`
	LiveUpdate      bool `json:"liveUpdate,omitempty"`
}

// DefaultConfig shows the title and animates, with no item cap.
func DefaultConfig(siteSlug string) Config {
	return Config{
		SiteSlug:        siteSlug,
		ShowTitle:       true,
		EnableAnimation: true,
	}
}

// UnmarshalJSON starts from DefaultConfig so omitted booleans stay on.
func (c *Config) UnmarshalJSON(data []byte) error {
	type plain Config
	p := plain(DefaultConfig(""))
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = Config(p)
	return nil
}

func (c Config) refreshEvery() time.Duration {
	if c.RefreshInterval <= 0 {
		return DefaultRefreshInterval
	}
	return time.Duration(c.RefreshInterval) * refreshUnit
}

// Validate returns human-readable problems with c for the given kind.
func Validate(kind Kind, c Config) []string {
	var msgs []string
	if !kind.Valid() {
		msgs = append(msgs, fmt.Sprintf("type must be one of: %s", kindList()))
	}
	msgs = append(msgs, validation.Struct(c)...)
	if c.Category != "" && kind.Valid() && kind != KindResources {
		msgs = append(msgs, fmt.Sprintf("category is not supported by %s widgets", kind))
	}
	return msgs
}

func kindList() string {
	names := make([]string, 0, len(kinds))
	for _, k := range Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

// ConfigFromQuery reads a widget config from URL query parameters. Values
// that cannot be parsed are reported alongside validation messages.
func ConfigFromQuery(q url.Values) (Config, []string) {
	cfg := DefaultConfig(q.Get("siteSlug"))
	cfg.Category = q.Get("category")

	var msgs []string
	intParam := func(name string, dst *int) {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				msgs = append(msgs, fmt.Sprintf("%s must be a whole number", name))
				return
			}
			*dst = n
		}
	}
	boolParam := func(name string, dst *bool) {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				msgs = append(msgs, fmt.Sprintf("%s must be true or false", name))
				return
			}
			*dst = b
		}
	}

	intParam("maxItems", &cfg.MaxItems)
	intParam("refreshInterval", &cfg.RefreshInterval)
	boolParam("showTitle", &cfg.ShowTitle)
	boolParam("enableAnimation", &cfg.EnableAnimation)
	boolParam("autoRefresh", &cfg.AutoRefresh)
	boolParam("liveUpdate", &cfg.LiveUpdate)

	if raw := q.Get("theme"); raw != "" {
		p, err := theme.Parse(raw)
		if err != nil {
			msgs = append(msgs, "theme must be a JSON object")
		} else {
			cfg.Theme = p
		}
	}

	return cfg, msgs
}
