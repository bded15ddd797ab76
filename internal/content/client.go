package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"remila_sections/internal/domain"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrMissingSiteSlug   = errors.New("site slug is required")
	ErrInvalidLimit      = errors.New("limit must not be negative")
)

// Result is what every read returns. Data is never nil: an empty slice means
// the collection has no published rows, and a failed read is recognised only
// by a non-empty Error.
type Result[T any] struct {
	Data  []T
	Error string
}

func (r Result[T]) Failed() bool {
	return r.Error != ""
}

func (r Result[T]) MarshalJSON() ([]byte, error) {
	var errField *string
	if r.Error != "" {
		errField = &r.Error
	}
	data := r.Data
	if data == nil {
		data = []T{}
	}
	return json.Marshal(struct {
		Data  []T     `json:"data"`
		Error *string `json:"error"`
	}{data, errField})
}

// PrizesResult holds both prize tables. Both lists are empty whenever Error
// is set.
type PrizesResult struct {
	Main       []domain.Prize `json:"main"`
	Additional []domain.Prize `json:"additional"`
	Error      string         `json:"-"`
}

func (r PrizesResult) MarshalJSON() ([]byte, error) {
	var errField *string
	if r.Error != "" {
		errField = &r.Error
	}
	return json.Marshal(struct {
		Main       []domain.Prize `json:"main"`
		Additional []domain.Prize `json:"additional"`
		Error      *string        `json:"error"`
	}{nonNil(r.Main), nonNil(r.Additional), errField})
}

type Client struct {
	store   Store
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient wraps store. A zero timeout leaves deadlines to the caller.
func NewClient(store Store, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		store:   store,
		timeout: timeout,
		logger:  logger.With("component", "content"),
	}
}

// List reads q.Collection for q.SiteSlug, ordered by display order and capped
// at q.Limit when positive. It never returns an error value; failures are
// reported in Result.Error.
func List[T any](ctx context.Context, c *Client, q domain.Query) Result[T] {
	if err := checkQuery(q); err != nil {
		return Result[T]{Data: []T{}, Error: err.Error()}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var rows []T
	start := time.Now()
	if err := c.store.Select(ctx, q, &rows); err != nil {
		c.logger.Warn("content read failed",
			"collection", q.Collection,
			"site_slug", q.SiteSlug,
			"error", err,
		)
		return Result[T]{Data: []T{}, Error: fmt.Sprintf("could not load %s: %v", q.Collection, err)}
	}

	c.logger.Debug("content read",
		"collection", q.Collection,
		"site_slug", q.SiteSlug,
		"rows", len(rows),
		"duration", time.Since(start),
	)

	return Result[T]{Data: nonNil(rows)}
}

func checkQuery(q domain.Query) error {
	info, ok := q.Collection.Info()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, q.Collection)
	}
	if q.SiteSlug == "" {
		return ErrMissingSiteSlug
	}
	if q.Limit < 0 {
		return ErrInvalidLimit
	}
	if q.Category != "" && !info.Category {
		return fmt.Errorf("collection %s does not support category filters", q.Collection)
	}
	return nil
}

func (c *Client) GetNews(ctx context.Context, siteSlug string, limit int) Result[domain.NewsItem] {
	return List[domain.NewsItem](ctx, c, domain.Query{Collection: domain.CollectionNews, SiteSlug: siteSlug, Limit: limit})
}

func (c *Client) GetJudges(ctx context.Context, siteSlug string, limit int) Result[domain.Judge] {
	return List[domain.Judge](ctx, c, domain.Query{Collection: domain.CollectionJudges, SiteSlug: siteSlug, Limit: limit})
}

func (c *Client) GetSponsors(ctx context.Context, siteSlug string, limit int) Result[domain.Sponsor] {
	return List[domain.Sponsor](ctx, c, domain.Query{Collection: domain.CollectionSponsors, SiteSlug: siteSlug, Limit: limit})
}

// GetResources reads downloadable resources, optionally restricted to one
// category.
func (c *Client) GetResources(ctx context.Context, siteSlug string, limit int, category string) Result[domain.Resource] {
	return List[domain.Resource](ctx, c, domain.Query{
		Collection: domain.CollectionResources,
		SiteSlug:   siteSlug,
		Limit:      limit,
		Category:   category,
	})
}

func (c *Client) GetFAQs(ctx context.Context, siteSlug string, limit int) Result[domain.FAQ] {
	return List[domain.FAQ](ctx, c, domain.Query{Collection: domain.CollectionFAQs, SiteSlug: siteSlug, Limit: limit})
}

func (c *Client) GetWorkExamples(ctx context.Context, siteSlug string, limit int) Result[domain.WorkExample] {
	return List[domain.WorkExample](ctx, c, domain.Query{Collection: domain.CollectionWorkExamples, SiteSlug: siteSlug, Limit: limit})
}

func (c *Client) GetSiteSettings(ctx context.Context, siteSlug string) Result[domain.SiteSettings] {
	return List[domain.SiteSettings](ctx, c, domain.Query{Collection: domain.CollectionSiteSettings, SiteSlug: siteSlug, Limit: 1})
}

// GetPrizes reads the main and additional prize tables concurrently. If
// either read fails the whole result fails: both lists come back empty with
// the failing read's error.
func (c *Client) GetPrizes(ctx context.Context, siteSlug string) PrizesResult {
	var main, additional Result[domain.Prize]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		main = List[domain.Prize](gctx, c, domain.Query{Collection: domain.CollectionMainPrizes, SiteSlug: siteSlug})
		if main.Failed() {
			return errors.New(main.Error)
		}
		return nil
	})
	g.Go(func() error {
		additional = List[domain.Prize](gctx, c, domain.Query{Collection: domain.CollectionAdditionalPrizes, SiteSlug: siteSlug})
		if additional.Failed() {
			return errors.New(additional.Error)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return PrizesResult{Main: []domain.Prize{}, Additional: []domain.Prize{}, Error: err.Error()}
	}

	return PrizesResult{Main: main.Data, Additional: additional.Data}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
