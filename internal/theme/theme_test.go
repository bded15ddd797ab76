package theme

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNormalize_NilReturnsDefaults(t *testing.T) {
	assert.Equal(t, Default(), Normalize(nil))
	assert.Equal(t, Default(), Normalize(&Partial{}))
}

func TestNormalize_DeepMergesColors(t *testing.T) {
	cfg := Normalize(&Partial{
		Colors: &PartialColors{Primary: ptr("#000000"), Accent: ptr("#ff0000")},
	})

	assert.Equal(t, "#000000", cfg.Colors.Primary)
	assert.Equal(t, "#ff0000", cfg.Colors.Accent)
	assert.Equal(t, DefaultSecondary, cfg.Colors.Secondary)
	assert.Equal(t, DefaultBackground, cfg.Colors.Background)
	assert.Equal(t, DefaultText, cfg.Colors.Text)
	assert.Equal(t, DefaultFontFamily, cfg.Typography.FontFamily)
}

func TestNormalize_Typography(t *testing.T) {
	cfg := Normalize(&Partial{Typography: &PartialTypography{FontFamily: ptr("Georgia, serif")}})

	assert.Equal(t, "Georgia, serif", cfg.Typography.FontFamily)
	assert.Equal(t, Default().Colors, cfg.Colors)
}

func TestNormalize_EveryFieldCombination(t *testing.T) {
	custom := "#010203"
	// Walk all 32 subsets of the five color fields.
	for mask := 0; mask < 1<<5; mask++ {
		p := &PartialColors{}
		set := func(bit int, dst **string) {
			if mask&(1<<bit) != 0 {
				*dst = ptr(custom)
			}
		}
		set(0, &p.Primary)
		set(1, &p.Secondary)
		set(2, &p.Background)
		set(3, &p.Text)
		set(4, &p.Accent)

		cfg := Normalize(&Partial{Colors: p})
		def := Default().Colors
		check := func(bit int, got, want string) {
			if mask&(1<<bit) != 0 {
				assert.Equal(t, custom, got)
			} else {
				assert.Equal(t, want, got)
			}
		}
		check(0, cfg.Colors.Primary, def.Primary)
		check(1, cfg.Colors.Secondary, def.Secondary)
		check(2, cfg.Colors.Background, def.Background)
		check(3, cfg.Colors.Text, def.Text)
		check(4, cfg.Colors.Accent, def.Accent)
	}
}

func TestParse_KeepsUnknownFields(t *testing.T) {
	p, err := Parse(`{"colors":{"primary":"#111111"},"radius":"8px","mode":{"dark":true}}`)
	require.NoError(t, err)
	require.NotNil(t, p.Colors)
	assert.Equal(t, "#111111", *p.Colors.Primary)

	cfg := Normalize(p)
	assert.Equal(t, "8px", cfg.Extra["radius"])
	assert.Equal(t, map[string]any{"dark": true}, cfg.Extra["mode"])

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"colors":{"primary":"#111111"},"radius":"8px","mode":{"dark":true}}`, string(out))
}

func TestParse_Empty(t *testing.T) {
	p, err := Parse("  ")
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = Parse("{not json")
	assert.Error(t, err)
}

func TestCSSVars(t *testing.T) {
	cfg := Normalize(&Partial{Colors: &PartialColors{Primary: ptr("red;}</style>")}})

	css := string(cfg.CSSVars())
	assert.Contains(t, css, "--remila-primary: red/style;")
	assert.Contains(t, css, "--remila-font-family: Inter, system-ui, sans-serif;")
	assert.NotContains(t, css, "<")
}

func TestNormalize_KeepsNestedUnknownFields(t *testing.T) {
	p, err := Parse(`{"colors":{"primary":"#000000","highlight":"#ABCDEF"},"typography":{"fontSize":"18px"},"radius":"4px"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"highlight": "#ABCDEF"}, p.Colors.Extra)
	assert.Equal(t, map[string]any{"fontSize": "18px"}, p.Typography.Extra)

	cfg := Normalize(p)
	assert.Equal(t, "#000000", cfg.Colors.Primary)
	assert.Equal(t, DefaultSecondary, cfg.Colors.Secondary)
	assert.Equal(t, "#ABCDEF", cfg.Colors.Extra["highlight"])
	assert.Equal(t, DefaultFontFamily, cfg.Typography.FontFamily)
	assert.Equal(t, "18px", cfg.Typography.Extra["fontSize"])
	assert.Equal(t, "4px", cfg.Extra["radius"])

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"colors": {
			"primary": "#000000",
			"secondary": "`+DefaultSecondary+`",
			"background": "`+DefaultBackground+`",
			"text": "`+DefaultText+`",
			"accent": "`+DefaultAccent+`",
			"highlight": "#ABCDEF"
		},
		"typography": {"fontFamily": "`+DefaultFontFamily+`", "fontSize": "18px"},
		"radius": "4px"
	}`, string(out))

	round, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"colors":{"primary":"#000000","highlight":"#ABCDEF"},"typography":{"fontSize":"18px"},"radius":"4px"}`, string(round))
}

func TestNormalize_DoesNotShareExtraMaps(t *testing.T) {
	p := &Partial{Colors: &PartialColors{Extra: map[string]any{"highlight": "#ABCDEF"}}}

	cfg := Normalize(p)
	cfg.Colors.Extra["highlight"] = "#000000"

	assert.Equal(t, "#ABCDEF", p.Colors.Extra["highlight"])
}
