package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"remila_sections/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not found")
	ErrNotOrdered   = errors.New("collection has no display order")
)

// OrderStore rewrites display_order values. Every method honours a
// transaction carried in ctx by TransactionManager.
type OrderStore struct {
	db *sqlx.DB
}

func NewOrderStore(db *sqlx.DB) *OrderStore {
	return &OrderStore{db: db}
}

func orderedTable(c domain.Collection) (string, error) {
	info, ok := c.Info()
	if !ok {
		return "", fmt.Errorf("unknown collection %q", c)
	}
	if !info.Ordered {
		return "", ErrNotOrdered
	}
	return info.Table, nil
}

// Normalize rewrites the site's display orders to 1..n, keeping the current
// order and breaking ties by id.
func (s *OrderStore) Normalize(ctx context.Context, c domain.Collection, siteSlug string) error {
	table, err := orderedTable(c)
	if err != nil {
		return err
	}

	query := `
		UPDATE ` + table + ` AS t
		SET display_order = o.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY display_order ASC, id ASC) AS rn
			FROM ` + table + `
			WHERE site_slug = $1
		) o
		WHERE t.id = o.id AND t.display_order <> o.rn`

	if _, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, siteSlug); err != nil {
		return fmt.Errorf("normalize %s: %w", c, err)
	}
	return nil
}

// Position returns the display order of one item and locks its row.
func (s *OrderStore) Position(ctx context.Context, c domain.Collection, siteSlug, id string) (int, error) {
	table, err := orderedTable(c)
	if err != nil {
		return 0, err
	}

	var order int
	query := `SELECT display_order FROM ` + table + ` WHERE id = $1 AND site_slug = $2 FOR UPDATE`
	err = sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &order, query, id, siteSlug)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrItemNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("position %s/%s: %w", c, id, err)
	}
	return order, nil
}

type neighbour struct {
	ID           string `db:"id"`
	DisplayOrder int    `db:"display_order"`
}

// Neighbour finds the item directly before (up) or after the given order.
// found is false at either end of the list.
func (s *OrderStore) Neighbour(ctx context.Context, c domain.Collection, siteSlug string, order int, up bool) (id string, nbOrder int, found bool, err error) {
	table, err := orderedTable(c)
	if err != nil {
		return "", 0, false, err
	}

	query := `SELECT id, display_order FROM ` + table + ` WHERE site_slug = $1 AND display_order > $2 ORDER BY display_order ASC, id ASC LIMIT 1 FOR UPDATE`
	if up {
		query = `SELECT id, display_order FROM ` + table + ` WHERE site_slug = $1 AND display_order < $2 ORDER BY display_order DESC, id DESC LIMIT 1 FOR UPDATE`
	}

	var nb neighbour
	err = sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &nb, query, siteSlug, order)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, false, nil
	}
	if err != nil {
		return "", 0, false, fmt.Errorf("neighbour %s: %w", c, err)
	}
	return nb.ID, nb.DisplayOrder, true, nil
}

func (s *OrderStore) SetOrder(ctx context.Context, c domain.Collection, id string, order int) error {
	table, err := orderedTable(c)
	if err != nil {
		return err
	}

	query := `UPDATE ` + table + ` SET display_order = $1 WHERE id = $2`
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, order, id)
	if err != nil {
		return fmt.Errorf("set order %s/%s: %w", c, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrItemNotFound
	}
	return nil
}
