// Package cache owns the vector cache lifecycle: loading persisted snapshots,
// rebuilding from the record store, and atomically publishing the result.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/ledger"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrRebuildInProgress is returned when a rebuild is requested while one is running.
var ErrRebuildInProgress = errors.New("rebuild already in progress")

// RecordSource is the narrow view of FAQ storage the engine needs: read the
// full set and write status transitions back after a successful rebuild.
type RecordSource interface {
	ListAll(ctx context.Context) ([]*models.FAQ, error)
	SetStatus(ctx context.Context, id int64, status models.Status) error
}

// Engine rebuilds the vector cache and serves the current snapshot. At most one
// rebuild runs at a time; readers always see either the previous or the new
// snapshot, never a partial one.
type Engine struct {
	source   RecordSource
	ledger   *ledger.Ledger
	embedder embedding.Embedder
	metric   vector.Metric
	dir      string
	workers  int
	retries  int
	logger   *zap.Logger

	building atomic.Bool
	current  atomic.Pointer[vector.Snapshot]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a logger for rebuild progress and warnings.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithWorkers sets the number of concurrent embedding workers (default 4).
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithRetries sets the embedding attempt count per document before it is
// skipped and left pending (default 3).
func WithRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.retries = n
		}
	}
}

// NewEngine creates a cache engine. dir is where snapshot artifacts are persisted.
func NewEngine(source RecordSource, led *ledger.Ledger, embedder embedding.Embedder, metric vector.Metric, dir string, opts ...Option) *Engine {
	e := &Engine{
		source:   source,
		ledger:   led,
		embedder: embedder,
		metric:   metric,
		dir:      dir,
		workers:  4,
		retries:  3,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load restores a persisted snapshot from disk, if one exists and matches the
// configured model and dimension. A missing or inconsistent cache is not an
// error; the engine simply starts without a snapshot.
func (e *Engine) Load() error {
	snap, err := vector.LoadSnapshot(e.dir, e.embedder.ModelID(), e.embedder.Dimensions())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		var cerr *vector.ConsistencyError
		if errors.As(err, &cerr) {
			e.logger.Warn("ignoring persisted cache", zap.String("reason", cerr.Reason))
			return nil
		}
		return fmt.Errorf("load cache: %w", err)
	}
	e.current.Store(snap)
	e.logger.Info("cache loaded",
		zap.Int("documents", snap.Len()),
		zap.String("model", snap.Metadata().ModelID))
	return nil
}

// Current returns the active snapshot, or nil before the first successful
// build. The returned snapshot is immutable and safe for concurrent use.
func (e *Engine) Current() *vector.Snapshot {
	return e.current.Load()
}

// Ready reports whether a snapshot is available for search.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Building reports whether a rebuild is currently running.
func (e *Engine) Building() bool {
	return e.building.Load()
}

// Info describes the active cache for status endpoints.
func (e *Engine) Info() *models.CacheInfo {
	snap := e.current.Load()
	if snap == nil {
		return &models.CacheInfo{Cached: false, CacheDir: e.dir}
	}
	meta := snap.Metadata()
	return &models.CacheInfo{
		Cached:             true,
		ModelID:            meta.ModelID,
		DocumentCount:      meta.DocumentCount,
		EmbeddingDimension: meta.Dimensions,
		DistanceMetric:     string(meta.Metric),
		BuiltAt:            meta.BuiltAt,
		CacheDir:           e.dir,
	}
}

type embedResult struct {
	faqID   int64
	passage string
	vector  []float32
	err     error
}

// Rebuild embeds the current document set, builds a new snapshot, swaps it in,
// restores document statuses recorded in the ledger, and clears the consumed
// entries. With force=false, documents untouched since the current snapshot was
// built reuse their existing vectors; when there are also no pending changes
// the rebuild is skipped entirely. Per-document embedding failures are
// contained: the document is skipped, stays pending, and its ledger entry
// survives for the next cycle. Cancellation or a persistence failure leaves
// the previous snapshot serving and the ledger untouched.
func (e *Engine) Rebuild(ctx context.Context, force bool) (*models.RebuildReport, error) {
	if !e.building.CompareAndSwap(false, true) {
		return nil, ErrRebuildInProgress
	}
	defer e.building.Store(false)

	start := time.Now()
	report := &models.RebuildReport{JobID: uuid.New().String()}
	pending := e.ledger.Pending()

	if !force && len(pending) == 0 && e.current.Load() != nil {
		report.Status = models.RebuildSkipped
		report.DurationMS = time.Since(start).Milliseconds()
		e.logger.Info("rebuild skipped", zap.String("job_id", report.JobID))
		return report, nil
	}

	e.logger.Info("rebuild started",
		zap.String("job_id", report.JobID),
		zap.Bool("force", force),
		zap.Int("pending_changes", len(pending)))

	faqs, err := e.source.ListAll(ctx)
	if err != nil {
		report.Status = models.RebuildFailed
		report.Errors = append(report.Errors, err.Error())
		report.DurationMS = time.Since(start).Milliseconds()
		return report, fmt.Errorf("list documents: %w", err)
	}

	changeByID := make(map[int64]*models.PendingChange, len(pending))
	for _, ch := range pending {
		changeByID[ch.FAQID] = ch
	}

	prev := e.current.Load()
	entries := make([]vector.Entry, 0, len(faqs))
	var toEmbed []*models.FAQ
	for _, f := range faqs {
		passage := f.PassageText()
		_, changed := changeByID[f.ID]
		if !force && !changed && prev != nil {
			if vec, ok := prev.VectorFor(f.ID); ok {
				if prevPassage, _ := prev.PassageFor(f.ID); prevPassage == passage {
					entries = append(entries, vector.Entry{FAQID: f.ID, Passage: passage, Vector: vec})
					continue
				}
			}
		}
		toEmbed = append(toEmbed, f)
	}

	embedded, failed := e.embedAll(ctx, toEmbed)
	if err := ctx.Err(); err != nil {
		report.Status = models.RebuildFailed
		report.Errors = append(report.Errors, err.Error())
		report.DurationMS = time.Since(start).Milliseconds()
		e.logger.Warn("rebuild cancelled", zap.String("job_id", report.JobID))
		return report, err
	}

	failedIDs := make(map[int64]bool, len(failed))
	for _, r := range failed {
		failedIDs[r.faqID] = true
		report.Errors = append(report.Errors, fmt.Sprintf("faq %d: %v", r.faqID, r.err))
	}
	for _, r := range embedded {
		entries = append(entries, vector.Entry{FAQID: r.faqID, Passage: r.passage, Vector: r.vector})
	}

	snap, err := vector.Build(e.metric, e.embedder.ModelID(), e.embedder.Dimensions(), entries)
	if err != nil {
		report.Status = models.RebuildFailed
		report.Errors = append(report.Errors, err.Error())
		report.DurationMS = time.Since(start).Milliseconds()
		return report, fmt.Errorf("build index: %w", err)
	}

	if err := e.persist(snap); err != nil {
		report.Status = models.RebuildFailed
		report.Errors = append(report.Errors, err.Error())
		report.DurationMS = time.Since(start).Milliseconds()
		e.logger.Error("rebuild persist failed", zap.String("job_id", report.JobID), zap.Error(err))
		return report, err
	}

	// Publish. From here the rebuild is committed; status restoration and
	// ledger clearing follow, and their consumed set excludes failed docs.
	e.current.Store(snap)

	var consumed []int64
	for _, ch := range pending {
		if failedIDs[ch.FAQID] {
			continue
		}
		consumed = append(consumed, ch.FAQID)
		if ch.Kind == models.ChangeDeleted {
			continue
		}
		if ch.OriginalStatus == "" || ch.OriginalStatus == models.StatusPending {
			continue
		}
		if err := e.source.SetStatus(ctx, ch.FAQID, ch.OriginalStatus); err != nil {
			e.logger.Warn("status restore failed",
				zap.Int64("faq_id", ch.FAQID),
				zap.String("status", string(ch.OriginalStatus)),
				zap.Error(err))
			report.Errors = append(report.Errors, fmt.Sprintf("restore faq %d: %v", ch.FAQID, err))
			continue
		}
		report.StatusesRestored++
	}

	cleared, err := e.ledger.Clear(consumed)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("clear ledger: %v", err))
	}

	report.Status = models.RebuildReady
	report.DocumentsProcessed = snap.Len()
	report.DocumentsFailed = len(failed)
	report.LedgerCleared = cleared
	report.DurationMS = time.Since(start).Milliseconds()

	e.logger.Info("rebuild complete",
		zap.String("job_id", report.JobID),
		zap.Int("documents", report.DocumentsProcessed),
		zap.Int("failed", report.DocumentsFailed),
		zap.Int("statuses_restored", report.StatusesRestored),
		zap.Int("ledger_cleared", report.LedgerCleared),
		zap.Int64("duration_ms", report.DurationMS))
	return report, nil
}

// embedAll embeds the passage text of each FAQ with bounded per-document
// retries, in parallel across workers. It returns successful and failed
// results separately; a failure never aborts the other documents.
func (e *Engine) embedAll(ctx context.Context, faqs []*models.FAQ) (embedded, failed []embedResult) {
	if len(faqs) == 0 {
		return nil, nil
	}
	results := make([]embedResult, len(faqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, f := range faqs {
		i, f := i, f
		g.Go(func() error {
			passage := f.PassageText()
			var vec []float32
			var err error
			for attempt := 0; attempt < e.retries; attempt++ {
				if gctx.Err() != nil {
					err = gctx.Err()
					break
				}
				vec, err = e.embedder.Embed(gctx, embedding.TransformPassage, passage)
				if err == nil {
					break
				}
				e.logger.Debug("embedding attempt failed",
					zap.Int64("faq_id", f.ID),
					zap.Int("attempt", attempt+1),
					zap.Error(err))
			}
			results[i] = embedResult{faqID: f.ID, passage: passage, vector: vec, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.err != nil {
			failed = append(failed, r)
		} else {
			embedded = append(embedded, r)
		}
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].faqID < failed[j].faqID })
	return embedded, failed
}

// persist writes the snapshot into a staging directory and renames it over the
// live cache directory, so a crash mid-write leaves the previous artifacts intact.
func (e *Engine) persist(snap *vector.Snapshot) error {
	parent := filepath.Dir(e.dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("create cache parent dir: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".cache-build-*")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := snap.Save(staging); err != nil {
		return err
	}

	old := e.dir + ".old"
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("remove stale cache dir: %w", err)
	}

	// The ledger file lives inside the cache dir and must survive the swap.
	// SnapshotTo copies the current pending set into staging and runs the
	// rename dance under the ledger mutex, so a Record cannot slip between
	// the copy and the publish or write into a directory mid-rename.
	if err := e.ledger.SnapshotTo(staging, func() error {
		if _, err := os.Stat(e.dir); err == nil {
			if err := os.Rename(e.dir, old); err != nil {
				return fmt.Errorf("retire cache dir: %w", err)
			}
		}
		if err := os.Rename(staging, e.dir); err != nil {
			// Try to put the old dir back so the persisted state stays loadable.
			if _, statErr := os.Stat(old); statErr == nil {
				_ = os.Rename(old, e.dir)
			}
			return fmt.Errorf("publish cache dir: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	_ = os.RemoveAll(old)
	return nil
}
