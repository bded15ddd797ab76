package mount

import (
	"html/template"
	"sync"
)

// Container is a mount target. Widgets never see more of the host page.
type Container interface {
	ID() string
	SetHTML(html template.HTML)
	Clear()
}

// Document resolves container ids.
type Document interface {
	Container(id string) (Container, bool)
}

// Page is an in-memory document of named containers.
type Page struct {
	mu       sync.RWMutex
	elements map[string]*Element
	order    []string
}

func NewPage(ids ...string) *Page {
	p := &Page{elements: make(map[string]*Element)}
	for _, id := range ids {
		p.Add(id)
	}
	return p
}

// Add creates the container if it does not exist yet.
func (p *Page) Add(id string) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()

	if el, ok := p.elements[id]; ok {
		return el
	}
	el := &Element{id: id}
	p.elements[id] = el
	p.order = append(p.order, id)
	return el
}

func (p *Page) Container(id string) (Container, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	el, ok := p.elements[id]
	if !ok {
		return nil, false
	}
	return el, true
}

func (p *Page) Element(id string) (*Element, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	el, ok := p.elements[id]
	return el, ok
}

// Elements returns the containers in insertion order.
func (p *Page) Elements() []*Element {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*Element, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.elements[id])
	}
	return out
}

type Element struct {
	id   string
	mu   sync.Mutex
	html template.HTML
}

func (e *Element) ID() string {
	return e.id
}

func (e *Element) SetHTML(html template.HTML) {
	e.mu.Lock()
	e.html = html
	e.mu.Unlock()
}

func (e *Element) Clear() {
	e.SetHTML("")
}

func (e *Element) HTML() template.HTML {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.html
}
