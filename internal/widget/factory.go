package widget

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"remila_sections/internal/changefeed"
	"remila_sections/internal/content"
	"remila_sections/internal/theme"
)

// Factory creates widget instances that read through one content client.
type Factory struct {
	client *content.Client
	feed   changefeed.Subscriber
	logger *slog.Logger
}

// NewFactory wires instances to client. A nil feed disables live updates.
func NewFactory(client *content.Client, feed changefeed.Subscriber, logger *slog.Logger) *Factory {
	if feed == nil {
		feed = changefeed.Noop{}
	}
	return &Factory{
		client: client,
		feed:   feed,
		logger: logger.With("component", "widget"),
	}
}

// New validates cfg and returns an idle instance. The error is a
// *ConfigError when only the config is at fault.
func (f *Factory) New(kind Kind, cfg Config) (*Instance, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if msgs := Validate(kind, cfg); len(msgs) > 0 {
		return nil, &ConfigError{Messages: msgs}
	}

	id := uuid.NewString()
	return &Instance{
		id:     id,
		kind:   kind,
		def:    kinds[kind],
		client: f.client,
		feed:   f.feed,
		logger: f.logger.With("kind", kind, "instance", id),
		cfg:    cfg,
		theme:  theme.Normalize(cfg.Theme),
	}, nil
}
