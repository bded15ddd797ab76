//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"remila_sections/internal/domain"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(Migrate(db))
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM news")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM resources")
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM site_settings")
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}

func (s *PostgresIntegrationSuite) insertNews(site, title string, order int, published bool) string {
	var id string
	err := s.db.GetContext(s.ctx, &id, `
		INSERT INTO news (site_slug, title, content, display_order, is_published)
		VALUES ($1, $2, '', $3, $4)
		RETURNING id
	`, site, title, order, published)
	s.Require().NoError(err)
	return id
}

func (s *PostgresIntegrationSuite) newsOrder(site string) []string {
	var titles []string
	err := s.db.SelectContext(s.ctx, &titles, `SELECT title FROM news WHERE site_slug = $1 ORDER BY display_order, id`, site)
	s.Require().NoError(err)
	return titles
}

func (s *PostgresIntegrationSuite) TestMigrate_Idempotent() {
	s.NoError(Migrate(s.db))
}

func (s *PostgresIntegrationSuite) TestContentStore_SelectScopesAndOrders() {
	store := NewContentStore(s.db)

	s.insertNews("acme", "third", 3, true)
	s.insertNews("acme", "first", 1, true)
	s.insertNews("acme", "hidden", 2, false)
	s.insertNews("other", "foreign", 0, true)

	var rows []domain.NewsItem
	err := store.Select(s.ctx, domain.Query{Collection: domain.CollectionNews, SiteSlug: "acme"}, &rows)
	s.Require().NoError(err)

	s.Require().Len(rows, 2)
	s.Equal("first", rows[0].Title)
	s.Equal("third", rows[1].Title)
}

func (s *PostgresIntegrationSuite) TestContentStore_SelectLimit() {
	store := NewContentStore(s.db)
	for i := 1; i <= 10; i++ {
		s.insertNews("acme", fmt.Sprintf("n%d", i), i, true)
	}

	var rows []domain.NewsItem
	err := store.Select(s.ctx, domain.Query{Collection: domain.CollectionNews, SiteSlug: "acme", Limit: 3}, &rows)
	s.Require().NoError(err)

	s.Require().Len(rows, 3)
	for i, row := range rows {
		s.Equal(i+1, row.DisplayOrder)
	}
}

func (s *PostgresIntegrationSuite) TestContentStore_ResourceCategory() {
	store := NewContentStore(s.db)

	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO resources (site_slug, title, file_url, category, display_order, is_published)
		VALUES ('acme', 'Rules', 'https://cdn.example.com/rules.pdf', 'rules', 1, true),
		       ('acme', 'Logo', 'https://cdn.example.com/logo.zip', 'brand', 2, true)
	`)
	s.Require().NoError(err)

	var rows []domain.Resource
	err = store.Select(s.ctx, domain.Query{Collection: domain.CollectionResources, SiteSlug: "acme", Category: "brand"}, &rows)
	s.Require().NoError(err)

	s.Require().Len(rows, 1)
	s.Equal("Logo", rows[0].Title)
}

func (s *PostgresIntegrationSuite) TestContentStore_SiteSettings() {
	store := NewContentStore(s.db)

	_, err := s.db.ExecContext(s.ctx, `
		INSERT INTO site_settings (site_slug, site_name, theme)
		VALUES ('acme', 'Acme Contest', '{"colors":{"primary":"#FF0000"}}')
	`)
	s.Require().NoError(err)

	var rows []domain.SiteSettings
	err = store.Select(s.ctx, domain.Query{Collection: domain.CollectionSiteSettings, SiteSlug: "acme", Limit: 1}, &rows)
	s.Require().NoError(err)

	s.Require().Len(rows, 1)
	s.Equal("Acme Contest", rows[0].SiteName)
	s.JSONEq(`{"colors":{"primary":"#FF0000"}}`, string(rows[0].Theme))
}

func (s *PostgresIntegrationSuite) TestOrderStore_SwapInTransaction() {
	tm := NewTransactionManager(s.db)
	store := NewOrderStore(s.db)

	s.insertNews("acme", "a", 1, true)
	b := s.insertNews("acme", "b", 2, true)
	s.insertNews("acme", "c", 3, true)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		pos, err := store.Position(ctx, domain.CollectionNews, "acme", b)
		if err != nil {
			return err
		}
		nbID, nbOrder, found, err := store.Neighbour(ctx, domain.CollectionNews, "acme", pos, true)
		if err != nil || !found {
			return errors.Join(err, errors.New("no neighbour"))
		}
		if err := store.SetOrder(ctx, domain.CollectionNews, b, nbOrder); err != nil {
			return err
		}
		return store.SetOrder(ctx, domain.CollectionNews, nbID, pos)
	})
	s.Require().NoError(err)

	s.Equal([]string{"b", "a", "c"}, s.newsOrder("acme"))
}

func (s *PostgresIntegrationSuite) TestOrderStore_NormalizeBreaksTies() {
	store := NewOrderStore(s.db)

	s.insertNews("acme", "x", 5, true)
	s.insertNews("acme", "y", 5, true)
	s.insertNews("acme", "z", 9, true)

	s.Require().NoError(store.Normalize(s.ctx, domain.CollectionNews, "acme"))

	var orders []int
	err := s.db.SelectContext(s.ctx, &orders, `SELECT display_order FROM news WHERE site_slug = 'acme' ORDER BY display_order`)
	s.Require().NoError(err)
	s.Equal([]int{1, 2, 3}, orders)
}

func (s *PostgresIntegrationSuite) TestOrderStore_PositionNotFound() {
	store := NewOrderStore(s.db)

	id := s.insertNews("other", "foreign", 1, true)

	_, err := store.Position(s.ctx, domain.CollectionNews, "acme", id)
	s.ErrorIs(err, ErrItemNotFound)
}

func (s *PostgresIntegrationSuite) TestTransaction_Rollback() {
	tm := NewTransactionManager(s.db)
	s.insertNews("acme", "pre-existing", 1, true)

	err := tm.WithTransaction(s.ctx, func(ctx context.Context) error {
		exec := GetExecutor(ctx, s.db)

		_, err := exec.ExecContext(ctx, `
			INSERT INTO news (site_slug, title, display_order) VALUES ('acme', 'should-rollback', 2)
		`)
		if err != nil {
			return err
		}

		return context.Canceled
	})
	s.Error(err)

	s.Equal([]string{"pre-existing"}, s.newsOrder("acme"))
}
