package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"remila_sections/internal/domain"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

var (
	ErrInvalidDirection = errors.New("direction must be up or down")
	ErrNotOrdered       = errors.New("collection cannot be reordered")
	ErrMissingSiteSlug  = errors.New("site slug is required")
	ErrStorageDisabled  = errors.New("object storage is not configured")
	ErrOrderingDisabled = errors.New("reordering needs the postgres backend")
)

type Service struct {
	orders    OrderStore
	txManager TransactionManager
	publisher Publisher
	objects   ObjectStore
	logger    *slog.Logger
}

// NewService wires the admin operations. orders and txManager are nil on
// read-only backends; objects is nil when uploads are not configured.
func NewService(
	orders OrderStore,
	txManager TransactionManager,
	publisher Publisher,
	objects ObjectStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		orders:    orders,
		txManager: txManager,
		publisher: publisher,
		objects:   objects,
		logger:    logger.With("component", "admin"),
	}
}

// Move swaps an item's display order with its neighbour. Moving the first
// item up or the last item down changes nothing and reports false.
func (s *Service) Move(ctx context.Context, c domain.Collection, siteSlug, id string, dir Direction) (bool, error) {
	if s.orders == nil || s.txManager == nil {
		return false, ErrOrderingDisabled
	}
	if info, ok := c.Info(); !ok || !info.Ordered {
		return false, fmt.Errorf("%w: %q", ErrNotOrdered, c)
	}
	if siteSlug == "" {
		return false, ErrMissingSiteSlug
	}
	if dir != DirectionUp && dir != DirectionDown {
		return false, ErrInvalidDirection
	}

	moved := false
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Normalize(ctx, c, siteSlug); err != nil {
			return fmt.Errorf("normalize: %w", err)
		}

		pos, err := s.orders.Position(ctx, c, siteSlug, id)
		if err != nil {
			return fmt.Errorf("position: %w", err)
		}

		nbID, nbOrder, found, err := s.orders.Neighbour(ctx, c, siteSlug, pos, dir == DirectionUp)
		if err != nil {
			return fmt.Errorf("neighbour: %w", err)
		}
		if !found {
			return nil
		}

		if err := s.orders.SetOrder(ctx, c, id, nbOrder); err != nil {
			return fmt.Errorf("set order: %w", err)
		}
		if err := s.orders.SetOrder(ctx, c, nbID, pos); err != nil {
			return fmt.Errorf("set neighbour order: %w", err)
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("move %s/%s: %w", c, id, err)
	}

	if !moved {
		s.logger.Debug("item already at edge", "collection", c, "item_id", id, "direction", dir)
		return false, nil
	}

	s.logger.Info("item moved", "collection", c, "site_slug", siteSlug, "item_id", id, "direction", dir)
	s.publish(ctx, domain.ChangeEvent{
		Action:     domain.ChangeUpdate,
		Collection: c,
		SiteSlug:   siteSlug,
		ItemID:     id,
		Timestamp:  time.Now().UTC(),
	})
	return true, nil
}

// Upload stores an admin media file and returns its public URL.
func (s *Service) Upload(ctx context.Context, r io.Reader, contentType, bucket, objectPath string) (string, error) {
	if s.objects == nil {
		return "", ErrStorageDisabled
	}
	url, err := s.objects.Upload(ctx, r, contentType, bucket, objectPath)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	s.logger.Info("file uploaded", "bucket", bucket, "path", objectPath)
	return url, nil
}

func (s *Service) Delete(ctx context.Context, bucket, objectPath string) error {
	if s.objects == nil {
		return ErrStorageDisabled
	}
	if err := s.objects.Delete(ctx, bucket, objectPath); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	s.logger.Info("file deleted", "bucket", bucket, "path", objectPath)
	return nil
}

// publish failures are logged only: the database change has already been
// committed.
func (s *Service) publish(ctx context.Context, event domain.ChangeEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish change", "collection", event.Collection, "item_id", event.ItemID, "error", err)
	}
}
