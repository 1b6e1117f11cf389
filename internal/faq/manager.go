// Package faq coordinates FAQ mutations across the record store, the change
// ledger, and the keyword index.
package faq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/ledger"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
	"go.uber.org/zap"
)

const (
	maxTags      = 10
	maxTagLength = 50
)

// Manager is the write path for FAQs. Every create or update stores the FAQ as
// pending and records the intended publication status in the ledger; the next
// successful cache rebuild restores it.
type Manager struct {
	storage      storage.Storage
	ledger       *ledger.Ledger
	keywordIndex keyword.KeywordIndex
	maxQuestion  int
	maxAnswer    int
	logger       *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets a logger for mutation events.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithLimits overrides the content length limits.
func WithLimits(maxQuestion, maxAnswer int) ManagerOption {
	return func(m *Manager) {
		if maxQuestion > 0 {
			m.maxQuestion = maxQuestion
		}
		if maxAnswer > 0 {
			m.maxAnswer = maxAnswer
		}
	}
}

// NewManager creates a FAQ manager. keywordIndex may be nil; keyword sync is
// then skipped.
func NewManager(store storage.Storage, led *ledger.Ledger, keywordIndex keyword.KeywordIndex, opts ...ManagerOption) *Manager {
	m := &Manager{
		storage:      store,
		ledger:       led,
		keywordIndex: keywordIndex,
		maxQuestion:  500,
		maxAnswer:    2000,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create validates and stores a new FAQ. The FAQ is stored as pending; the
// requested status (public when unspecified) is recorded in the ledger as the
// status to restore after the next rebuild.
func (m *Manager) Create(ctx context.Context, input *models.FAQInput) (*models.FAQ, error) {
	if err := m.validateContent(input.Question, input.Answer); err != nil {
		return nil, err
	}
	intended := input.Status
	if intended == "" {
		intended = models.StatusPublic
	}
	if !intended.Valid() {
		return nil, models.Validationf("invalid status: %s", input.Status)
	}
	tags, err := normalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	f := &models.FAQ{
		Question:  strings.TrimSpace(input.Question),
		Answer:    strings.TrimSpace(input.Answer),
		Status:    models.StatusPending,
		Category:  strings.TrimSpace(input.Category),
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.storage.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("store FAQ: %w", err)
	}
	if err := m.ledger.Record(f.ID, models.ChangeCreated, intended); err != nil {
		return nil, fmt.Errorf("record change: %w", err)
	}
	m.syncKeyword(ctx, f)
	m.logger.Info("faq created", zap.Int64("id", f.ID), zap.String("intended_status", string(intended)))
	return f, nil
}

// Update applies a partial update. The FAQ flips to pending; the ledger keeps
// the status it should return to, which is the pre-edit status unless the
// update requests a new one. Repeated edits before a rebuild merge into one
// ledger entry that preserves the earliest restore target.
func (m *Manager) Update(ctx context.Context, id int64, update *models.FAQUpdate) (*models.FAQ, error) {
	f, err := m.storage.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	intended := f.Status
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, models.Validationf("invalid status: %s", *update.Status)
		}
		intended = *update.Status
	}
	if update.Question != nil {
		f.Question = strings.TrimSpace(*update.Question)
	}
	if update.Answer != nil {
		f.Answer = strings.TrimSpace(*update.Answer)
	}
	if update.Category != nil {
		f.Category = strings.TrimSpace(*update.Category)
	}
	if update.Tags != nil {
		tags, err := normalizeTags(*update.Tags)
		if err != nil {
			return nil, err
		}
		f.Tags = tags
	}
	if err := m.validateContent(f.Question, f.Answer); err != nil {
		return nil, err
	}

	f.Status = models.StatusPending
	f.UpdatedAt = time.Now().UTC()
	if err := m.storage.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("store FAQ: %w", err)
	}
	if err := m.ledger.Record(f.ID, models.ChangeUpdated, intended); err != nil {
		return nil, fmt.Errorf("record change: %w", err)
	}
	m.syncKeyword(ctx, f)
	m.logger.Info("faq updated", zap.Int64("id", f.ID), zap.String("intended_status", string(intended)))
	return f, nil
}

// Delete removes a FAQ from the store and keyword index. The ledger keeps a
// deleted-kind entry until the next rebuild drops the FAQ from the vector cache.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	f, err := m.storage.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.storage.Delete(ctx, id); err != nil {
		return err
	}
	if err := m.ledger.Record(id, models.ChangeDeleted, f.Status); err != nil {
		return fmt.Errorf("record change: %w", err)
	}
	if m.keywordIndex != nil {
		if err := m.keywordIndex.Delete(ctx, id); err != nil {
			m.logger.Warn("keyword delete failed", zap.Int64("id", id), zap.Error(err))
		}
	}
	m.logger.Info("faq deleted", zap.Int64("id", id))
	return nil
}

// Get returns a single FAQ.
func (m *Manager) Get(ctx context.Context, id int64) (*models.FAQ, error) {
	return m.storage.Get(ctx, id)
}

// List returns a page of FAQs matching the filter.
func (m *Manager) List(ctx context.Context, filter models.FAQFilter, limit, offset int) (*models.FAQList, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		return nil, models.Validationf("limit must not exceed 100")
	}
	if offset < 0 {
		return nil, models.Validationf("offset must not be negative")
	}
	faqs, total, err := m.storage.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	return &models.FAQList{
		FAQs:    faqs,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(faqs) < total,
	}, nil
}

// Search runs keyword search over the FAQ text and hydrates the hits.
func (m *Manager) Search(ctx context.Context, query string, limit int) ([]*models.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.Validationf("query must not be empty")
	}
	if limit <= 0 {
		limit = 20
	}
	if m.keywordIndex == nil {
		return []*models.SearchResult{}, nil
	}
	hits, err := m.keywordIndex.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	results := make([]*models.SearchResult, 0, len(hits))
	for _, h := range hits {
		f, err := m.storage.Get(ctx, h.FAQID)
		if err != nil {
			m.logger.Debug("keyword hit not in store", zap.Int64("id", h.FAQID), zap.Error(err))
			continue
		}
		results = append(results, &models.SearchResult{
			FAQ:   f,
			FAQID: h.FAQID,
			Score: h.Score,
			Rank:  len(results) + 1,
		})
	}
	return results, nil
}

// Tags returns all distinct tags in use.
func (m *Manager) Tags(ctx context.Context) ([]string, error) {
	return m.storage.Tags(ctx)
}

// Categories returns all categories with their FAQ counts.
func (m *Manager) Categories(ctx context.Context) ([]*models.CategoryCount, error) {
	return m.storage.Categories(ctx)
}

// Stats summarizes the FAQ store.
func (m *Manager) Stats(ctx context.Context) (*models.FAQStats, error) {
	return m.storage.Stats(ctx)
}

// Pending returns the current change ledger contents.
func (m *Manager) Pending() *models.PendingSummary {
	return m.ledger.Summary()
}

// ClearPending discards every ledger entry without rebuilding. FAQs already
// flipped to pending stay pending until edited or rebuilt; this only drops
// the recorded restore targets.
func (m *Manager) ClearPending() (int, error) {
	n, err := m.ledger.ClearAll()
	if err != nil {
		return 0, err
	}
	m.logger.Info("pending changes cleared", zap.Int("count", n))
	return n, nil
}

// RebuildKeywordIndex re-indexes every stored FAQ, used at startup to bring
// the keyword index in line with the record store.
func (m *Manager) RebuildKeywordIndex(ctx context.Context) error {
	if m.keywordIndex == nil {
		return nil
	}
	faqs, err := m.storage.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list FAQs: %w", err)
	}
	for _, f := range faqs {
		if err := m.keywordIndex.Index(ctx, f); err != nil {
			return fmt.Errorf("index FAQ %d: %w", f.ID, err)
		}
	}
	m.logger.Info("keyword index rebuilt", zap.Int("faqs", len(faqs)))
	return nil
}

func (m *Manager) syncKeyword(ctx context.Context, f *models.FAQ) {
	if m.keywordIndex == nil {
		return
	}
	if err := m.keywordIndex.Index(ctx, f); err != nil {
		m.logger.Warn("keyword index failed", zap.Int64("id", f.ID), zap.Error(err))
	}
}

func (m *Manager) validateContent(question, answer string) error {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return models.Validationf("question must not be empty")
	}
	if answer == "" {
		return models.Validationf("answer must not be empty")
	}
	if len([]rune(question)) > m.maxQuestion {
		return models.Validationf("question exceeds %d characters", m.maxQuestion)
	}
	if len([]rune(answer)) > m.maxAnswer {
		return models.Validationf("answer exceeds %d characters", m.maxAnswer)
	}
	return nil
}

func normalizeTags(tags []string) ([]string, error) {
	if len(tags) > maxTags {
		return nil, models.Validationf("at most %d tags allowed", maxTags)
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return nil, models.Validationf("tags must not be blank")
		}
		if len([]rune(tag)) > maxTagLength {
			return nil, models.Validationf("tag exceeds %d characters", maxTagLength)
		}
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out, nil
}
