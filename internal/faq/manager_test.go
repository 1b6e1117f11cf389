package faq

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/keyword"
	"github.com/hyperjump/kotae/internal/ledger"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/storage"
)

func testManager(t *testing.T) (*Manager, *ledger.Ledger, storage.Storage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "faqs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	led, err := ledger.Open(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	kw, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })
	return NewManager(store, led, kw), led, store
}

func TestCreateStoresPendingAndRecordsIntendedStatus(t *testing.T) {
	m, led, _ := testManager(t)
	ctx := context.Background()

	f, err := m.Create(ctx, &models.FAQInput{
		Question: "How do I log in?",
		Answer:   "Use your registered email address.",
		Status:   models.StatusPublic,
		Category: "account",
		Tags:     []string{"login"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID == 0 {
		t.Error("expected assigned id")
	}
	if f.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", f.Status)
	}

	pending := led.Pending()
	if len(pending) != 1 {
		t.Fatalf("ledger len = %d", len(pending))
	}
	if pending[0].FAQID != f.ID || pending[0].Kind != models.ChangeCreated {
		t.Errorf("ledger entry = %+v", pending[0])
	}
	if pending[0].OriginalStatus != models.StatusPublic {
		t.Errorf("original status = %s", pending[0].OriginalStatus)
	}
}

func TestCreateDefaultsToPublicIntent(t *testing.T) {
	m, led, _ := testManager(t)
	f, err := m.Create(context.Background(), &models.FAQInput{Question: "q?", Answer: "a."})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if led.Pending()[0].OriginalStatus != models.StatusPublic {
		t.Errorf("unspecified status should default to public intent, got %s", led.Pending()[0].OriginalStatus)
	}
	_ = f
}

func TestCreateValidation(t *testing.T) {
	m, _, _ := testManager(t)
	ctx := context.Background()
	var verr *models.ValidationError

	cases := []*models.FAQInput{
		{Question: "", Answer: "a"},
		{Question: "q", Answer: ""},
		{Question: strings.Repeat("q", 501), Answer: "a"},
		{Question: "q", Answer: strings.Repeat("a", 2001)},
		{Question: "q", Answer: "a", Status: "published"},
		{Question: "q", Answer: "a", Tags: []string{" "}},
		{Question: "q", Answer: "a", Tags: []string{strings.Repeat("t", 51)}},
		{Question: "q", Answer: "a", Tags: make([]string, 11)},
	}
	for i, input := range cases {
		if _, err := m.Create(ctx, input); !errors.As(err, &verr) {
			t.Errorf("case %d: expected ValidationError, got %v", i, err)
		}
	}
}

func TestUpdatePreservesEarliestRestoreTarget(t *testing.T) {
	m, led, store := testManager(t)
	ctx := context.Background()

	f, err := m.Create(ctx, &models.FAQInput{Question: "q?", Answer: "a.", Status: models.StatusPublic})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Simulate a completed rebuild: ledger cleared, status restored.
	if _, err := led.ClearAll(); err != nil {
		t.Fatal(err)
	}
	if err := store.SetStatus(ctx, f.ID, models.StatusPublic); err != nil {
		t.Fatal(err)
	}

	// Two edits before the next rebuild.
	newAnswer := "first edit"
	if _, err := m.Update(ctx, f.ID, &models.FAQUpdate{Answer: &newAnswer}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	private := models.StatusPrivate
	secondAnswer := "second edit"
	if _, err := m.Update(ctx, f.ID, &models.FAQUpdate{Answer: &secondAnswer, Status: &private}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	pending := led.Pending()
	if len(pending) != 1 {
		t.Fatalf("ledger len = %d, want merged single entry", len(pending))
	}
	// The restore target is the status before the first edit, not the
	// status requested by the second edit.
	if pending[0].OriginalStatus != models.StatusPublic {
		t.Errorf("original status = %s, want public", pending[0].OriginalStatus)
	}
	if pending[0].Kind != models.ChangeUpdated {
		t.Errorf("kind = %s", pending[0].Kind)
	}

	got, err := m.Get(ctx, f.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Answer != "second edit" {
		t.Errorf("answer = %q", got.Answer)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status = %s", got.Status)
	}
}

func TestUpdateNotFound(t *testing.T) {
	m, _, _ := testManager(t)
	q := "new"
	var nerr *models.NotFoundError
	if _, err := m.Update(context.Background(), 999, &models.FAQUpdate{Question: &q}); !errors.As(err, &nerr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteRecordsDeletedChange(t *testing.T) {
	m, led, store := testManager(t)
	ctx := context.Background()

	f, err := m.Create(ctx, &models.FAQInput{Question: "q?", Answer: "a."})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var nerr *models.NotFoundError
	if _, err := store.Get(ctx, f.ID); !errors.As(err, &nerr) {
		t.Errorf("expected FAQ gone from store, got %v", err)
	}
	pending := led.Pending()
	if len(pending) != 1 || pending[0].Kind != models.ChangeDeleted {
		t.Errorf("ledger = %+v", pending)
	}
	// Keyword index no longer returns it.
	results, err := m.Search(ctx, "q", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no keyword hits after delete, got %d", len(results))
	}
}

func TestKeywordSearchHydratesFAQs(t *testing.T) {
	m, _, _ := testManager(t)
	ctx := context.Background()

	if _, err := m.Create(ctx, &models.FAQInput{Question: "How are refunds handled?", Answer: "Within 30 days."}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(ctx, &models.FAQInput{Question: "Shipping times", Answer: "Two business days."}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	results, err := m.Search(ctx, "refunds", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len = %d", len(results))
	}
	if results[0].FAQ == nil || results[0].FAQ.Question != "How are refunds handled?" {
		t.Errorf("result = %+v", results[0])
	}
	if results[0].Rank != 1 {
		t.Errorf("rank = %d", results[0].Rank)
	}
}

func TestListPagination(t *testing.T) {
	m, _, _ := testManager(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.Create(ctx, &models.FAQInput{Question: "question", Answer: "answer"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := m.List(ctx, models.FAQFilter{}, 2, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.FAQs) != 2 || page.Total != 5 || !page.HasMore {
		t.Errorf("page = %+v", page)
	}

	last, err := m.List(ctx, models.FAQFilter{}, 2, 4)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(last.FAQs) != 1 || last.HasMore {
		t.Errorf("last page = %+v", last)
	}
}

func TestListFilterByStatus(t *testing.T) {
	m, _, store := testManager(t)
	ctx := context.Background()
	f, err := m.Create(ctx, &models.FAQInput{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.Create(ctx, &models.FAQInput{Question: "q2", Answer: "a2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.SetStatus(ctx, f.ID, models.StatusPublic); err != nil {
		t.Fatal(err)
	}

	page, err := m.List(ctx, models.FAQFilter{Status: models.StatusPublic}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.FAQs) != 1 || page.FAQs[0].ID != f.ID {
		t.Errorf("filtered page = %+v", page)
	}
}

func TestPendingSummary(t *testing.T) {
	m, _, _ := testManager(t)
	ctx := context.Background()
	f, err := m.Create(ctx, &models.FAQInput{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	summary := m.Pending()
	if !summary.HasPending || summary.Total != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Stats[models.ChangeDeleted] != 1 {
		t.Errorf("stats = %+v", summary.Stats)
	}
}

func TestRebuildKeywordIndex(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "faqs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	led, err := ledger.Open(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}

	// Store has content the fresh keyword index has never seen.
	seed := NewManager(store, led, nil)
	if _, err := seed.Create(context.Background(), &models.FAQInput{Question: "warranty period", Answer: "one year"}); err != nil {
		t.Fatal(err)
	}

	kw, err := keyword.NewBleveIndex("")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = kw.Close() })
	m := NewManager(store, led, kw)
	if err := m.RebuildKeywordIndex(context.Background()); err != nil {
		t.Fatalf("RebuildKeywordIndex: %v", err)
	}
	results, err := m.Search(context.Background(), "warranty", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 hit after reindex, got %d", len(results))
	}
}
