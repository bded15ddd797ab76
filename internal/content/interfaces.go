package content

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"remila_sections/internal/domain"
)

// Store runs one read against a content backend and scans the rows into
// dest, which is a pointer to a slice of the collection's row type.
type Store interface {
	Select(ctx context.Context, q domain.Query, dest any) error
}
