// Package mount keeps track of which widget instance owns which container.
package mount

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"remila_sections/internal/widget"
)

// WidgetFactory builds widget instances.
type WidgetFactory interface {
	New(kind widget.Kind, cfg widget.Config) (*widget.Instance, error)
}

// Registry maps container ids to live widget instances. At most one
// instance owns a container at a time.
type Registry struct {
	doc     Document
	factory WidgetFactory
	logger  *slog.Logger

	mu      sync.Mutex
	handles map[string]*Handle
}

func NewRegistry(doc Document, factory WidgetFactory, logger *slog.Logger) *Registry {
	return &Registry{
		doc:     doc,
		factory: factory,
		logger:  logger.With("component", "mount"),
		handles: make(map[string]*Handle),
	}
}

// Handle is returned by Render and tears its instance down on Unmount.
type Handle struct {
	registry    *Registry
	containerID string
	container   Container
	instance    *widget.Instance

	mu   sync.Mutex
	dead bool
}

func (h *Handle) ContainerID() string {
	return h.containerID
}

func (h *Handle) Instance() *widget.Instance {
	return h.instance
}

// Unmount is the same as Registry.Unmount for this handle's container, but
// leaves a newer handle on the same container alone.
func (h *Handle) Unmount() {
	r := h.registry
	r.mu.Lock()
	if r.handles[h.containerID] == h {
		delete(r.handles, h.containerID)
	}
	r.mu.Unlock()

	h.teardown(true)
}

func (h *Handle) teardown(clear bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dead {
		return
	}
	h.dead = true
	h.instance.Unmount()
	if clear {
		h.container.Clear()
	}
}

// write copies the instance's current output into the container unless the
// handle has been torn down.
func (h *Handle) write(inst *widget.Instance) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.dead {
		return
	}
	html, err := inst.HTML()
	if err != nil {
		h.registry.logger.Error("render widget", "container_id", h.containerID, "error", err)
		return
	}
	h.container.SetHTML(html)
}

// Render mounts a new widget into containerID. A missing container or an
// unknown type is logged and nothing happens. An invalid config replaces
// the container's content with the validation messages. Any instance
// already in the container is torn down first.
func (r *Registry) Render(ctx context.Context, kind widget.Kind, containerID string, cfg widget.Config) *Handle {
	logger := r.logger.With("container_id", containerID, "kind", kind)

	container, ok := r.doc.Container(containerID)
	if !ok {
		logger.Warn("container not found")
		return nil
	}

	inst, err := r.factory.New(kind, cfg)
	if err != nil {
		var cfgErr *widget.ConfigError
		if !errors.As(err, &cfgErr) {
			logger.Warn("cannot render widget", "error", err)
			return nil
		}
		logger.Warn("invalid widget config", "errors", cfgErr.Messages)
		r.release(containerID, false)
		container.SetHTML(widget.ErrorsHTML(cfgErr.Messages))
		return nil
	}

	h := &Handle{
		registry:    r,
		containerID: containerID,
		container:   container,
		instance:    inst,
	}

	r.mu.Lock()
	prev := r.handles[containerID]
	r.handles[containerID] = h
	r.mu.Unlock()

	if prev != nil {
		logger.Debug("replacing mounted widget", "previous", prev.instance.ID())
		prev.teardown(false)
	}

	inst.OnChange(h.write)
	if err := inst.Mount(ctx); err != nil {
		logger.Warn("mount widget", "error", err)
	}
	return h
}

// Unmount tears down whatever is mounted in containerID. It is a no-op when
// nothing is.
func (r *Registry) Unmount(containerID string) {
	if !r.release(containerID, true) {
		r.logger.Debug("nothing mounted", "container_id", containerID)
	}
}

func (r *Registry) release(containerID string, clear bool) bool {
	r.mu.Lock()
	h, ok := r.handles[containerID]
	delete(r.handles, containerID)
	r.mu.Unlock()

	if !ok {
		return false
	}
	h.teardown(clear)
	return true
}

// Mounted reports whether containerID currently has a live instance.
func (r *Registry) Mounted(containerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[containerID]
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// UnmountAll tears down every instance, clearing their containers.
func (r *Registry) UnmountAll() {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for id, h := range r.handles {
		handles = append(handles, h)
		delete(r.handles, id)
	}
	r.mu.Unlock()

	for _, h := range handles {
		h.teardown(true)
	}
}
