// Package storage defines the persistence interface for the FAQ record store.
package storage

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// Storage defines FAQ persistence operations.
type Storage interface {
	Create(ctx context.Context, faq *models.FAQ) error
	Get(ctx context.Context, id int64) (*models.FAQ, error)
	Update(ctx context.Context, faq *models.FAQ) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter models.FAQFilter, limit, offset int) ([]*models.FAQ, int, error)

	// ListAll returns every FAQ ordered by id, for cache rebuilds.
	ListAll(ctx context.Context) ([]*models.FAQ, error)
	// SetStatus updates only the status column. This is the narrow capability
	// handed to the rebuild orchestrator for status restoration.
	SetStatus(ctx context.Context, id int64, status models.Status) error

	Tags(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]*models.CategoryCount, error)
	Stats(ctx context.Context) (*models.FAQStats, error)
	Count(ctx context.Context) (int64, error)

	Close() error
}
