package widget

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_UnmarshalDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, json.Unmarshal([]byte(`{"siteSlug":"acme","maxItems":4}`), &cfg))

	assert.Equal(t, "acme", cfg.SiteSlug)
	assert.Equal(t, 4, cfg.MaxItems)
	assert.True(t, cfg.ShowTitle)
	assert.True(t, cfg.EnableAnimation)

	require.NoError(t, json.Unmarshal([]byte(`{"siteSlug":"acme","showTitle":false}`), &cfg))
	assert.False(t, cfg.ShowTitle)
}

func TestConfigFromQuery(t *testing.T) {
	q := url.Values{
		"siteSlug":        {"acme"},
		"maxItems":        {"3"},
		"showTitle":       {"false"},
		"category":        {"rules"},
		"theme":           {`{"colors":{"primary":"#000"}}`},
		"liveUpdate":      {"true"},
		"refreshInterval": {"30"},
	}

	cfg, msgs := ConfigFromQuery(q)

	assert.Empty(t, msgs)
	assert.Equal(t, "acme", cfg.SiteSlug)
	assert.Equal(t, 3, cfg.MaxItems)
	assert.False(t, cfg.ShowTitle)
	assert.True(t, cfg.EnableAnimation)
	assert.Equal(t, "rules", cfg.Category)
	assert.True(t, cfg.LiveUpdate)
	assert.Equal(t, 30, cfg.RefreshInterval)
	require.NotNil(t, cfg.Theme)
	assert.Equal(t, "#000", *cfg.Theme.Colors.Primary)
}

func TestConfigFromQuery_BadValues(t *testing.T) {
	_, msgs := ConfigFromQuery(url.Values{
		"siteSlug":  {"acme"},
		"maxItems":  {"lots"},
		"showTitle": {"maybe"},
		"theme":     {"{"},
	})

	assert.ElementsMatch(t, []string{
		"maxItems must be a whole number",
		"showTitle must be true or false",
		"theme must be a JSON object",
	}, msgs)
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate(KindResources, Config{SiteSlug: "acme", Category: "rules", MaxItems: 50}))
	assert.Contains(t, Validate(KindNews, Config{SiteSlug: "acme", MaxItems: -1}), "maxItems must be at least 1")
	assert.Contains(t, Validate(KindNews, Config{SiteSlug: "acme corp"}), "siteSlug may only contain letters, digits, '-' and '_'")
	assert.Contains(t, Validate("gallery", Config{SiteSlug: "acme"}), "type must be one of: news, sponsors, resources, judges")
}

func TestKindComponents(t *testing.T) {
	assert.Equal(t, "News", KindNews.Component())
	assert.Equal(t, "SponsorCompanies", KindSponsors.Component())
	assert.Equal(t, "ResourceDownload", KindResources.Component())
	assert.Equal(t, "Judges", KindJudges.Component())
}
