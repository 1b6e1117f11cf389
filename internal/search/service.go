package search

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vector"
	"go.uber.org/zap"
)

// Service answers similarity queries against the current cache snapshot.
// Each query is embedded twice, once with a context prefix and once bare,
// and the two result sets are fused. This compensates for weak single-query
// recall on queries with ambiguous tokenization, which hits Japanese
// particularly hard.
type Service struct {
	engine        *cache.Engine
	storage       storage.Storage
	embedder      embedding.Embedder
	defaultTopK   int
	maxTopK       int
	contextPrefix string
	logger        *zap.Logger
}

// NewService creates a retrieval service over the engine's current snapshot.
func NewService(engine *cache.Engine, store storage.Storage, embedder embedding.Embedder, defaultTopK, maxTopK int, contextPrefix string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		engine:        engine,
		storage:       store,
		embedder:      embedder,
		defaultTopK:   defaultTopK,
		maxTopK:       maxTopK,
		contextPrefix: contextPrefix,
		logger:        logger,
	}
}

// Search returns the topK most similar FAQs for the query, best first.
// Before the first successful rebuild there is no snapshot to search; that
// case returns an empty result set, not an error. topK of zero selects the
// configured default.
func (s *Service) Search(ctx context.Context, query string, topK int) (*models.SearchResponse, error) {
	start := time.Now()
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.Validationf("query must not be empty")
	}
	if topK < 0 {
		return nil, models.Validationf("top_k must not be negative")
	}
	if topK == 0 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		return nil, models.Validationf("top_k must not exceed %d", s.maxTopK)
	}

	resp := &models.SearchResponse{Query: query, Results: []*models.SearchResult{}}
	snap := s.engine.Current()
	if snap == nil || snap.Len() == 0 {
		resp.QueryTime = time.Since(start).Milliseconds()
		return resp, nil
	}

	primaryText := s.contextPrefix + query
	var (
		primary, alternate []vector.Hit
		wg                 sync.WaitGroup
		errChan            = make(chan error, 2)
	)
	run := func(text string, out *[]vector.Hit) {
		defer wg.Done()
		vec, err := s.embedder.Embed(ctx, embedding.TransformQuery, text)
		if err != nil {
			errChan <- fmt.Errorf("embed query: %w", err)
			return
		}
		hits, err := snap.Search(vec, topK)
		if err != nil {
			errChan <- fmt.Errorf("vector search: %w", err)
			return
		}
		*out = hits
	}
	wg.Add(2)
	go run(primaryText, &primary)
	go run(query, &alternate)
	wg.Wait()
	close(errChan)
	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	fused := Fuse(primary, alternate, topK)
	for i, h := range fused {
		result := &models.SearchResult{FAQID: h.FAQID, Score: h.Score, Rank: i + 1}
		if s.storage != nil {
			faq, err := s.storage.Get(ctx, h.FAQID)
			if err == nil {
				result.FAQ = faq
			} else {
				s.logger.Debug("search hit not in store", zap.Int64("faq_id", h.FAQID), zap.Error(err))
			}
		}
		resp.Results = append(resp.Results, result)
	}
	resp.QueryTime = time.Since(start).Milliseconds()
	return resp, nil
}

// Context returns the passage texts of the topK best matches joined for use
// as grounding context in an assistant prompt. It returns an empty string
// when no snapshot is available.
func (s *Service) Context(ctx context.Context, query string, topK int) (string, error) {
	resp, err := s.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	snap := s.engine.Current()
	if snap == nil {
		return "", nil
	}
	passages := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if p, ok := snap.PassageFor(r.FAQID); ok {
			passages = append(passages, p)
		}
	}
	return strings.Join(passages, "\n\n"), nil
}

// Ready reports whether a snapshot is available to search.
func (s *Service) Ready() bool {
	return s.engine.Ready()
}
