package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"remila_sections/internal/changefeed"
	"remila_sections/internal/content"
	"remila_sections/internal/domain"
	"remila_sections/internal/scheduler"
	"remila_sections/internal/theme"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateErrored
	StateRefetching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	case StateRefetching:
		return "refetching"
	default:
		return "unknown"
	}
}

var (
	ErrUnknownKind = errors.New("unknown widget type")
	ErrMounted     = errors.New("widget is already mounted")
	ErrNotMounted  = errors.New("widget is not mounted")
)

// ConfigError carries every validation message for a rejected config.
type ConfigError struct {
	Messages []string
}

func (e *ConfigError) Error() string {
	return "invalid widget config: " + strings.Join(e.Messages, "; ")
}

// Instance is one mounted widget. All state changes happen under mu; the
// request sequence number discards responses that a newer fetch superseded
// or that arrive after Unmount.
type Instance struct {
	id     string
	kind   Kind
	def    kindDef
	client *content.Client
	feed   changefeed.Subscriber
	logger *slog.Logger

	mu        sync.Mutex
	cfg       Config
	theme     theme.Config
	state     State
	cards     []Card
	errMsg    string
	seq       uint64
	mounted   bool
	unmounted bool
	life      context.Context
	kill      context.CancelFunc
	stopWatch func()
	onChange  func(*Instance)

	notifyMu sync.Mutex
	inflight sync.WaitGroup
}

func (i *Instance) ID() string {
	return i.id
}

func (i *Instance) Kind() Kind {
	return i.kind
}

func (i *Instance) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

func (i *Instance) Config() Config {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cfg
}

// OnChange registers fn to run after every state transition. Calls are
// serialized.
func (i *Instance) OnChange(fn func(*Instance)) {
	i.mu.Lock()
	i.onChange = fn
	i.mu.Unlock()
}

// Mount performs the first fetch synchronously and starts auto-refresh and
// live updates when the config asks for them. They run until Unmount, even
// after ctx ends.
func (i *Instance) Mount(ctx context.Context) error {
	i.mu.Lock()
	if i.unmounted || i.mounted {
		i.mu.Unlock()
		return ErrMounted
	}
	i.mounted = true
	i.life, i.kill = context.WithCancel(context.WithoutCancel(ctx))
	token := i.begin()
	cfg := i.cfg
	i.mu.Unlock()

	i.logger.Debug("widget mounted", "site_slug", cfg.SiteSlug)
	i.notify()

	i.watch(cfg)
	_ = i.fetch(ctx, token, cfg)
	return nil
}

// Update applies a new config. A change of site, item cap or category
// starts a background refetch; the call returns before it lands.
func (i *Instance) Update(cfg Config) error {
	if msgs := Validate(i.kind, cfg); len(msgs) > 0 {
		return &ConfigError{Messages: msgs}
	}

	i.mu.Lock()
	if !i.mounted || i.unmounted {
		i.mu.Unlock()
		return ErrNotMounted
	}
	prev := i.cfg
	i.cfg = cfg
	i.theme = theme.Normalize(cfg.Theme)

	refetch := prev.SiteSlug != cfg.SiteSlug || prev.MaxItems != cfg.MaxItems || prev.Category != cfg.Category
	rewatch := prev.AutoRefresh != cfg.AutoRefresh || prev.RefreshInterval != cfg.RefreshInterval || prev.LiveUpdate != cfg.LiveUpdate

	var token uint64
	if refetch {
		token = i.begin()
	}
	life := i.life
	i.mu.Unlock()

	i.notify()

	if rewatch {
		i.watch(cfg)
	}
	if refetch {
		i.inflight.Add(1)
		go func() {
			defer i.inflight.Done()
			_ = i.fetch(life, token, cfg)
		}()
	}
	return nil
}

// Refresh refetches with the current config and waits for the result.
func (i *Instance) Refresh(ctx context.Context) error {
	i.mu.Lock()
	if !i.mounted || i.unmounted {
		i.mu.Unlock()
		return ErrNotMounted
	}
	token := i.begin()
	cfg := i.cfg
	i.mu.Unlock()

	i.notify()
	return i.fetch(ctx, token, cfg)
}

// Unmount stops background work and drops the rendered data. Fetches still
// in flight are abandoned and their results discarded. Calling it again is
// a no-op.
func (i *Instance) Unmount() {
	i.mu.Lock()
	if i.unmounted {
		i.mu.Unlock()
		return
	}
	i.unmounted = true
	i.state = StateIdle
	i.cards = nil
	i.errMsg = ""
	stop, kill := i.stopWatch, i.kill
	i.stopWatch = nil
	i.mu.Unlock()

	if stop != nil {
		stop()
	}
	if kill != nil {
		kill()
	}
	i.logger.Debug("widget unmounted")
}

// begin issues a new request token. Callers hold mu.
func (i *Instance) begin() uint64 {
	i.seq++
	switch i.state {
	case StateLoaded, StateRefetching:
		i.state = StateRefetching
	default:
		i.state = StateLoading
	}
	return i.seq
}

func (i *Instance) fetch(ctx context.Context, token uint64, cfg Config) error {
	cards, errMsg := i.def.load(ctx, i.client, domain.Query{
		Collection: i.def.collection,
		SiteSlug:   cfg.SiteSlug,
		Limit:      cfg.MaxItems,
		Category:   cfg.Category,
	})

	i.mu.Lock()
	if i.unmounted || token != i.seq {
		i.mu.Unlock()
		i.logger.Debug("discarding stale response", "token", token)
		return nil
	}
	if errMsg != "" {
		i.state = StateErrored
		i.errMsg = errMsg
		i.cards = nil
	} else {
		i.state = StateLoaded
		i.errMsg = ""
		i.cards = capCards(cards, cfg.MaxItems)
	}
	i.mu.Unlock()

	i.notify()

	if errMsg != "" {
		return fmt.Errorf("load %s: %s", i.kind, errMsg)
	}
	return nil
}

func capCards(cards []Card, maxItems int) []Card {
	if maxItems > 0 && len(cards) > maxItems {
		return cards[:maxItems]
	}
	return cards
}

// watch replaces the running auto-refresh and live-update loops with ones
// matching cfg.
func (i *Instance) watch(cfg Config) {
	i.mu.Lock()
	life := i.life
	i.mu.Unlock()

	ctx, cancel := context.WithCancel(life)
	release := func() {}

	if cfg.LiveUpdate {
		events, unsubscribe, err := i.feed.Subscribe(ctx, i.def.collection)
		if err != nil {
			i.logger.Warn("live updates unavailable", "error", err)
		} else {
			release = unsubscribe
			go i.follow(ctx, events)
		}
	}
	if cfg.AutoRefresh {
		sched := scheduler.NewScheduler(i, cfg.refreshEvery(), 0, i.logger)
		go func() { _ = sched.Start(ctx) }()
	}

	stop := func() {
		cancel()
		release()
	}

	i.mu.Lock()
	if i.unmounted {
		i.mu.Unlock()
		stop()
		return
	}
	prev := i.stopWatch
	i.stopWatch = stop
	i.mu.Unlock()

	if prev != nil {
		prev()
	}
}

func (i *Instance) follow(ctx context.Context, events <-chan domain.ChangeEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.SiteSlug != i.Config().SiteSlug {
				continue
			}
			i.logger.Debug("change received", "action", ev.Action, "item_id", ev.ItemID)
			if err := i.Refresh(ctx); err != nil && !errors.Is(err, ErrNotMounted) {
				i.logger.Warn("live refresh failed", "error", err)
			}
		}
	}
}

func (i *Instance) notify() {
	i.mu.Lock()
	fn, gone := i.onChange, i.unmounted
	i.mu.Unlock()
	if fn == nil || gone {
		return
	}

	i.notifyMu.Lock()
	defer i.notifyMu.Unlock()
	fn(i)
}
