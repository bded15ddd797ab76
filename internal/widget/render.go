package widget

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type view struct {
	ID        string
	Kind      Kind
	Title     string
	State     State
	Cards     []Card
	Error     string
	ShowTitle bool
	Animate   bool
	Style     template.CSS
}

func (v view) Busy() bool {
	return v.State == StateIdle || v.State == StateLoading || (v.State == StateRefetching && len(v.Cards) == 0)
}

func (v view) Refetching() bool {
	return v.State == StateRefetching
}

func (v view) Failed() bool {
	return v.State == StateErrored
}

func (v view) Empty() bool {
	return len(v.Cards) == 0
}

func (i *Instance) view() view {
	i.mu.Lock()
	defer i.mu.Unlock()

	cards := make([]Card, len(i.cards))
	copy(cards, i.cards)

	return view{
		ID:        i.id,
		Kind:      i.kind,
		Title:     i.def.title,
		State:     i.state,
		Cards:     cards,
		Error:     i.errMsg,
		ShowTitle: i.cfg.ShowTitle,
		Animate:   i.cfg.EnableAnimation,
		Style:     i.theme.CSSVars(),
	}
}

// Cards returns a copy of the rows currently on display.
func (i *Instance) Cards() []Card {
	return i.view().Cards
}

// Render writes the widget's current state as an HTML fragment.
func (i *Instance) Render(w io.Writer) error {
	return templates.ExecuteTemplate(w, "widget", i.view())
}

func (i *Instance) HTML() (template.HTML, error) {
	var buf bytes.Buffer
	if err := i.Render(&buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// RenderErrors writes a panel listing configuration problems.
func RenderErrors(w io.Writer, messages []string) error {
	return templates.ExecuteTemplate(w, "errors", messages)
}

func ErrorsHTML(messages []string) template.HTML {
	var buf bytes.Buffer
	_ = RenderErrors(&buf, messages)
	return template.HTML(buf.String())
}
