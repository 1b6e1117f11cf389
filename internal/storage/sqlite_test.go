package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kotae/internal/models"
)

func testStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "faqs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedFAQ(t *testing.T, store *SQLiteStorage, f *models.FAQ) *models.FAQ {
	t.Helper()
	if f.Status == "" {
		f.Status = models.StatusPending
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	if err := store.Create(context.Background(), f); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return f
}

func TestCreateAssignsID(t *testing.T) {
	store := testStorage(t)
	f := seedFAQ(t, store, &models.FAQ{Question: "q", Answer: "a"})
	if f.ID == 0 {
		t.Error("expected assigned id")
	}
	second := seedFAQ(t, store, &models.FAQ{Question: "q2", Answer: "a2"})
	if second.ID <= f.ID {
		t.Errorf("ids should increase: %d then %d", f.ID, second.ID)
	}
}

func TestGetRoundTrip(t *testing.T) {
	store := testStorage(t)
	f := seedFAQ(t, store, &models.FAQ{
		Question: "How do I log in?",
		Answer:   "Use your email.",
		Status:   models.StatusPublic,
		Category: "account",
		Tags:     []string{"login", "account"},
	})

	got, err := store.Get(context.Background(), f.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Question != f.Question || got.Answer != f.Answer || got.Status != models.StatusPublic {
		t.Errorf("got = %+v", got)
	}
	if got.Category != "account" {
		t.Errorf("category = %q", got.Category)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "login" || got.Tags[1] != "account" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestGetNotFound(t *testing.T) {
	store := testStorage(t)
	var nerr *models.NotFoundError
	if _, err := store.Get(context.Background(), 42); !errors.As(err, &nerr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()
	f := seedFAQ(t, store, &models.FAQ{Question: "q", Answer: "a"})

	f.Answer = "a new answer"
	f.Tags = []string{"changed"}
	f.UpdatedAt = time.Now().UTC()
	if err := store.Update(ctx, f); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := store.Get(ctx, f.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Answer != "a new answer" || len(got.Tags) != 1 {
		t.Errorf("got = %+v", got)
	}

	missing := &models.FAQ{ID: 999, Question: "q", Answer: "a", Status: models.StatusPending}
	var nerr *models.NotFoundError
	if err := store.Update(ctx, missing); !errors.As(err, &nerr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()
	f := seedFAQ(t, store, &models.FAQ{Question: "q", Answer: "a"})

	if err := store.Delete(ctx, f.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var nerr *models.NotFoundError
	if _, err := store.Get(ctx, f.ID); !errors.As(err, &nerr) {
		t.Errorf("expected NotFoundError after delete, got %v", err)
	}
	if err := store.Delete(ctx, f.ID); !errors.As(err, &nerr) {
		t.Errorf("double delete should be NotFoundError, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()
	seedFAQ(t, store, &models.FAQ{Question: "a", Answer: "x", Status: models.StatusPublic, Category: "billing", Tags: []string{"pay"}})
	seedFAQ(t, store, &models.FAQ{Question: "b", Answer: "y", Status: models.StatusPrivate, Category: "billing"})
	seedFAQ(t, store, &models.FAQ{Question: "c", Answer: "z", Status: models.StatusPublic, Category: "account", Tags: []string{"login", "pay"}})

	public, total, err := store.List(ctx, models.FAQFilter{Status: models.StatusPublic}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(public) != 2 {
		t.Errorf("public: total=%d len=%d", total, len(public))
	}

	billing, total, err := store.List(ctx, models.FAQFilter{Category: "billing"}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(billing) != 2 {
		t.Errorf("billing: total=%d len=%d", total, len(billing))
	}

	tagged, total, err := store.List(ctx, models.FAQFilter{Tag: "pay"}, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(tagged) != 2 {
		t.Errorf("tag pay: total=%d len=%d", total, len(tagged))
	}

	paged, total, err := store.List(ctx, models.FAQFilter{}, 2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(paged) != 1 {
		t.Errorf("page: total=%d len=%d", total, len(paged))
	}
}

func TestListAllOrdered(t *testing.T) {
	store := testStorage(t)
	for i := 0; i < 3; i++ {
		seedFAQ(t, store, &models.FAQ{Question: "q", Answer: "a"})
	}
	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Error("ListAll must be ordered by id")
		}
	}
}

func TestSetStatus(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()
	f := seedFAQ(t, store, &models.FAQ{Question: "q", Answer: "a"})

	if err := store.SetStatus(ctx, f.ID, models.StatusPublic); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	got, err := store.Get(ctx, f.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != models.StatusPublic {
		t.Errorf("status = %s", got.Status)
	}
	// Content is untouched by a status transition.
	if got.Question != "q" || got.Answer != "a" {
		t.Errorf("content changed: %+v", got)
	}

	var nerr *models.NotFoundError
	if err := store.SetStatus(ctx, 999, models.StatusPublic); !errors.As(err, &nerr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestTagsAndCategories(t *testing.T) {
	store := testStorage(t)
	ctx := context.Background()
	seedFAQ(t, store, &models.FAQ{Question: "a", Answer: "x", Category: "billing", Tags: []string{"pay", "refund"}})
	seedFAQ(t, store, &models.FAQ{Question: "b", Answer: "y", Category: "billing", Tags: []string{"pay"}})
	seedFAQ(t, store, &models.FAQ{Question: "c", Answer: "z"})

	tags, err := store.Tags(ctx)
	if err != nil {
		t.Fatalf("Tags: %v", err)
	}
	if len(tags) != 2 || tags[0] != "pay" || tags[1] != "refund" {
		t.Errorf("tags = %v", tags)
	}

	cats, err := store.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 1 || cats[0].Name != "billing" || cats[0].Count != 2 {
		t.Errorf("categories = %+v", cats)
	}
}

func TestStats(t *testing.T) {
	store := testStorage(t)
	seedFAQ(t, store, &models.FAQ{Question: "abcd", Answer: "x", Status: models.StatusPublic, Tags: []string{"t"}})
	seedFAQ(t, store, &models.FAQ{Question: "ab", Answer: "xyz", Status: models.StatusPending})

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 2 || stats.Public != 1 || stats.Pending != 1 || stats.Private != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.MaxQuestionLength != 4 || stats.WithTags != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgQuestionLength != 3 {
		t.Errorf("avg question length = %f", stats.AvgQuestionLength)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d", count)
	}
}
