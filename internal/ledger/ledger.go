// Package ledger provides the durable change ledger for the vector cache.
//
// Every FAQ mutation is recorded here until a rebuild reconciles it. The ledger
// is the only state shared between the mutation path and the rebuild path, so
// all operations go through a single mutex and every mutation is flushed to
// disk before returning.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/models"
)

const fileName = "pending_changes.json"

// Ledger is an append-or-merge log of pending changes, at most one per FAQ id.
type Ledger struct {
	path    string
	mu      sync.Mutex
	entries []*models.PendingChange // insertion order
	byID    map[int64]*models.PendingChange
	logger  *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets a logger for warnings (corrupt file recovery, etc.).
func WithLogger(l *zap.Logger) Option {
	return func(ld *Ledger) { ld.logger = l }
}

// Open loads the ledger file under dir, creating dir if needed. A corrupt file
// is discarded and the ledger starts fresh, matching the recovery behavior of
// the rest of the cache artifacts.
func Open(dir string, opts ...Option) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	l := &Ledger{
		path: filepath.Join(dir, fileName),
		byID: make(map[int64]*models.PendingChange),
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.load(); err != nil {
		if l.logger != nil {
			l.logger.Warn("ledger file unreadable, starting fresh", zap.String("path", l.path), zap.Error(err))
		}
		l.entries = nil
		l.byID = make(map[int64]*models.PendingChange)
	}
	return l, nil
}

// Record appends a pending change for id, or merges into the existing one.
// A merge overwrites the change kind but preserves the earliest original status
// seen since the last clear, so a rebuild restores the status the caller
// intended before a burst of edits, not an intermediate one.
func (l *Ledger) Record(id int64, kind models.ChangeKind, original models.Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.byID[id]; ok {
		existing.Kind = kind
		return l.persist()
	}
	change := &models.PendingChange{
		FAQID:          id,
		Kind:           kind,
		OriginalStatus: original,
		RecordedAt:     time.Now(),
	}
	l.entries = append(l.entries, change)
	l.byID[id] = change
	return l.persist()
}

// Pending returns the pending changes in insertion order.
func (l *Ledger) Pending() []*models.PendingChange {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*models.PendingChange, len(l.entries))
	for i, e := range l.entries {
		c := *e
		out[i] = &c
	}
	return out
}

// Len returns the number of pending changes.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear removes the entries for the given ids and returns how many were removed.
func (l *Ledger) Clear(ids []int64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	remove := make(map[int64]bool, len(ids))
	for _, id := range ids {
		remove[id] = true
	}
	kept := l.entries[:0]
	removed := 0
	for _, e := range l.entries {
		if remove[e.FAQID] {
			delete(l.byID, e.FAQID)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	l.entries = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, l.persist()
}

// ClearAll wipes the ledger and returns how many entries were removed.
func (l *Ledger) ClearAll() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	removed := len(l.entries)
	l.entries = nil
	l.byID = make(map[int64]*models.PendingChange)
	return removed, l.persist()
}

// Summary returns the pending set with per-kind counts.
func (l *Ledger) Summary() *models.PendingSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := map[models.ChangeKind]int{
		models.ChangeCreated: 0,
		models.ChangeUpdated: 0,
		models.ChangeDeleted: 0,
	}
	changes := make([]*models.PendingChange, len(l.entries))
	for i, e := range l.entries {
		c := *e
		changes[i] = &c
		stats[e.Kind]++
	}
	return &models.PendingSummary{
		Changes:    changes,
		Total:      len(changes),
		Stats:      stats,
		HasPending: len(changes) > 0,
	}
}

// SnapshotTo writes the current pending set into dir using the live ledger's
// file name and format, then runs publish while still holding the ledger
// mutex. The cache engine publishes a rebuilt snapshot by renaming a staging
// directory over the directory containing the ledger file; doing the copy and
// the rename under the mutex means no Record can land between them or try to
// persist while its directory is mid-rename.
func (l *Ledger) SnapshotTo(dir string, publish func() error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := l.marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, fileName), data, 0644); err != nil {
		return fmt.Errorf("write ledger snapshot: %w", err)
	}
	if publish == nil {
		return nil
	}
	return publish()
}

func (l *Ledger) load() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var entries []*models.PendingChange
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse ledger: %w", err)
	}
	l.entries = entries
	for _, e := range entries {
		l.byID[e.FAQID] = e
	}
	return nil
}

func (l *Ledger) marshal() ([]byte, error) {
	if len(l.entries) == 0 {
		return []byte("[]"), nil
	}
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ledger: %w", err)
	}
	return data, nil
}

// persist writes the ledger atomically: temp file, fsync, rename. Callers hold l.mu.
func (l *Ledger) persist() error {
	data, err := l.marshal()
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}
