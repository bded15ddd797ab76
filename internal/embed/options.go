package embed

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"remila_sections/internal/widget"
)

// minOptions is the lower bound of each numeric option. Inside a widget
// config zero means unset, so an explicit zero is caught here.
var minOptions = map[string]int{
	"maxItems":        1,
	"refreshInterval": 5,
}

// widgetConfig maps the options the widget understands onto a widget
// config. Other keys are passed through to the snippet untouched.
func widgetConfig(cfg Config) (widget.Config, []string) {
	wc := widget.DefaultConfig(cfg.SiteSlug)
	wc.Theme = cfg.Theme

	var msgs []string
	for _, key := range sortedKeys(cfg.Options) {
		v := cfg.Options[key]
		switch key {
		case "maxItems", "refreshInterval":
			n, ok := wholeNumber(v)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("%s must be a whole number", key))
				continue
			}
			if n < minOptions[key] && n <= 0 {
				msgs = append(msgs, fmt.Sprintf("%s must be at least %d", key, minOptions[key]))
				continue
			}
			if key == "maxItems" {
				wc.MaxItems = n
			} else {
				wc.RefreshInterval = n
			}
		case "showTitle", "enableAnimation", "autoRefresh", "liveUpdate":
			b, ok := v.(bool)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("%s must be true or false", key))
				continue
			}
			switch key {
			case "showTitle":
				wc.ShowTitle = b
			case "enableAnimation":
				wc.EnableAnimation = b
			case "autoRefresh":
				wc.AutoRefresh = b
			case "liveUpdate":
				wc.LiveUpdate = b
			}
		case "category":
			s, ok := v.(string)
			if !ok {
				msgs = append(msgs, "category must be a string")
				continue
			}
			wc.Category = s
		}
	}
	return wc, msgs
}

func wholeNumber(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func appendNew(msgs []string, more ...string) []string {
	for _, m := range more {
		if !slices.Contains(msgs, m) {
			msgs = append(msgs, m)
		}
	}
	return msgs
}
