// Package keyword provides keyword (BM25) search over FAQ text.
package keyword

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
)

// KeywordIndex defines keyword search operations over FAQs.
type KeywordIndex interface {
	Index(ctx context.Context, faq *models.FAQ) error
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)
	Delete(ctx context.Context, id int64) error
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	FAQID int64
	Score float64
}
