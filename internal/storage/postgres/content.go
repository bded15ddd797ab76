package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"remila_sections/internal/domain"
)

// columns lists what each collection's row type scans. Tables may carry
// extra bookkeeping columns that the widgets never read.
var columns = map[domain.Collection]string{
	domain.CollectionNews:             "id, site_slug, title, content, image_url, published_at, display_order, is_published",
	domain.CollectionJudges:           "id, site_slug, name, title, organization, bio, photo_url, display_order, is_published",
	domain.CollectionMainPrizes:       "id, site_slug, title, description, amount, image_url, display_order, is_published",
	domain.CollectionAdditionalPrizes: "id, site_slug, title, description, amount, image_url, display_order, is_published",
	domain.CollectionFAQs:             "id, site_slug, question, answer, display_order, is_published",
	domain.CollectionWorkExamples:     "id, site_slug, title, description, image_url, author, display_order, is_published",
	domain.CollectionSponsors:         "id, site_slug, name, description, logo_url, website_url, tier, display_order, is_published",
	domain.CollectionResources:        "id, site_slug, title, description, file_url, category, file_size, display_order, is_published",
	domain.CollectionSiteSettings:     "id, site_slug, site_name, contact_email, theme",
}

type ContentStore struct {
	db *sqlx.DB
}

func NewContentStore(db *sqlx.DB) *ContentStore {
	return &ContentStore{db: db}
}

func (s *ContentStore) Select(ctx context.Context, q domain.Query, dest any) error {
	query, args, err := buildSelect(q)
	if err != nil {
		return err
	}

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), dest, query, args...); err != nil {
		return fmt.Errorf("select %s: %w", q.Collection, err)
	}
	return nil
}

func buildSelect(q domain.Query) (string, []any, error) {
	info, ok := q.Collection.Info()
	if !ok {
		return "", nil, fmt.Errorf("unknown collection %q", q.Collection)
	}

	var sb strings.Builder
	args := []any{q.SiteSlug}

	sb.WriteString("SELECT ")
	sb.WriteString(columns[q.Collection])
	sb.WriteString(" FROM ")
	sb.WriteString(info.Table)
	sb.WriteString(" WHERE site_slug = $1")

	if info.Published {
		sb.WriteString(" AND is_published = true")
	}
	if q.Category != "" && info.Category {
		args = append(args, q.Category)
		sb.WriteString(" AND category = $" + strconv.Itoa(len(args)))
	}
	if info.Ordered {
		sb.WriteString(" ORDER BY display_order ASC, id ASC")
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}

	return sb.String(), args, nil
}
