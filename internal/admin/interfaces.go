package admin

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"io"

	"remila_sections/internal/domain"
)

type OrderStore interface {
	Normalize(ctx context.Context, c domain.Collection, siteSlug string) error
	Position(ctx context.Context, c domain.Collection, siteSlug, id string) (int, error)
	Neighbour(ctx context.Context, c domain.Collection, siteSlug string, order int, up bool) (string, int, bool, error)
	SetOrder(ctx context.Context, c domain.Collection, id string, order int) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.ChangeEvent) error
}

type ObjectStore interface {
	Upload(ctx context.Context, r io.Reader, contentType, bucket, objectPath string) (string, error)
	Delete(ctx context.Context, bucket, objectPath string) error
}
