package keyword

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func testIndex(t *testing.T) *BleveIndex {
	t.Helper()
	idx, err := NewBleveIndex("")
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBleveIndex_SearchFindsAnswerText(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	faq := &models.FAQ{
		ID:       1,
		Question: "How do I reset my password?",
		Answer:   "Open settings and choose the Omnisyan account tab, then click reset.",
	}
	if err := idx.Index(ctx, faq); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := idx.Search(ctx, "Omnisyan", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected a hit for answer text")
	}
	if results[0].FAQID != 1 {
		t.Errorf("first result = %d, want 1", results[0].FAQID)
	}

	// Standard analyzer, so lowercase query matches mixed-case content.
	results2, err := idx.Search(ctx, "omnisyan", 10)
	if err != nil {
		t.Fatalf("Search lowercase: %v", err)
	}
	if len(results2) == 0 {
		t.Fatal("expected case-insensitive match")
	}
}

func TestBleveIndex_QuestionBoost(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	if err := idx.Index(ctx, &models.FAQ{ID: 1, Question: "billing cycle", Answer: "see the docs"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := idx.Index(ctx, &models.FAQ{ID: 2, Question: "something else", Answer: "about billing only"}); err != nil {
		t.Fatalf("Index: %v", err)
	}

	results, err := idx.Search(ctx, "billing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(results))
	}
	if results[0].FAQID != 1 {
		t.Errorf("question match should rank first, got %d", results[0].FAQID)
	}
}

func TestBleveIndex_SearchTags(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	faq := &models.FAQ{ID: 3, Question: "q", Answer: "a", Tags: []string{"refund", "payment"}}
	if err := idx.Index(ctx, faq); err != nil {
		t.Fatalf("Index: %v", err)
	}
	results, err := idx.Search(ctx, "refund", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].FAQID != 3 {
		t.Fatal("expected tag match")
	}
}

func TestBleveIndex_DeleteAndReindex(t *testing.T) {
	idx := testIndex(t)
	ctx := context.Background()

	faq := &models.FAQ{ID: 4, Question: "shipping time", Answer: "two days"}
	if err := idx.Index(ctx, faq); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := idx.Delete(ctx, 4); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	results, err := idx.Search(ctx, "shipping", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no hits after delete, got %d", len(results))
	}

	// Re-indexing the same id replaces the document.
	faq.Answer = "three days by boat"
	if err := idx.Index(ctx, faq); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if err := idx.Index(ctx, faq); err != nil {
		t.Fatalf("reindex twice: %v", err)
	}
	count, err := idx.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if count != 1 {
		t.Errorf("DocCount = %d, want 1", count)
	}
}

func TestBleveIndex_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bleve")
	idx, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("NewBleveIndex: %v", err)
	}
	ctx := context.Background()
	if err := idx.Index(ctx, &models.FAQ{ID: 7, Question: "invoices", Answer: "monthly"}); err != nil {
		t.Fatalf("Index: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewBleveIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	results, err := reopened.Search(ctx, "invoices", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].FAQID != 7 {
		t.Fatal("expected persisted document after reopen")
	}
}
