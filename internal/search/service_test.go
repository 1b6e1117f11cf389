package search

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kotae/internal/cache"
	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/ledger"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

type memSource struct {
	faqs []*models.FAQ
}

func (s *memSource) ListAll(ctx context.Context) ([]*models.FAQ, error) {
	return s.faqs, nil
}

func (s *memSource) SetStatus(ctx context.Context, id int64, status models.Status) error {
	for _, f := range s.faqs {
		if f.ID == id {
			f.Status = status
			return nil
		}
	}
	return &models.NotFoundError{ID: id}
}

func builtService(t *testing.T, faqs ...*models.FAQ) *Service {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "cache")
	led, err := ledger.Open(dir)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	emb := embedding.NewMockEmbedder(16)
	engine := cache.NewEngine(&memSource{faqs: faqs}, led, emb, vector.MetricL2, dir)
	if _, err := engine.Rebuild(context.Background(), true); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	return NewService(engine, nil, emb, 5, 50, "サービスについて：", nil)
}

func TestSearchNotReadyReturnsEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	led, err := ledger.Open(dir)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	emb := embedding.NewMockEmbedder(16)
	engine := cache.NewEngine(&memSource{}, led, emb, vector.MetricL2, dir)
	svc := NewService(engine, nil, emb, 5, 50, "", nil)

	resp, err := svc.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("search before first build must not error: %v", err)
	}
	if len(resp.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(resp.Results))
	}
	if svc.Ready() {
		t.Error("Ready should be false before first build")
	}
}

func TestSearchValidation(t *testing.T) {
	svc := builtService(t, &models.FAQ{ID: 1, Question: "q", Answer: "a"})

	var verr *models.ValidationError
	if _, err := svc.Search(context.Background(), "  ", 5); !errors.As(err, &verr) {
		t.Errorf("blank query: expected ValidationError, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "q", -1); !errors.As(err, &verr) {
		t.Errorf("negative top_k: expected ValidationError, got %v", err)
	}
	if _, err := svc.Search(context.Background(), "q", 51); !errors.As(err, &verr) {
		t.Errorf("oversized top_k: expected ValidationError, got %v", err)
	}
}

func TestSearchReturnsRankedResults(t *testing.T) {
	svc := builtService(t,
		&models.FAQ{ID: 1, Question: "how do I log in", Answer: "with your email"},
		&models.FAQ{ID: 2, Question: "how do I pay", Answer: "by credit card"},
		&models.FAQ{ID: 3, Question: "how do I cancel", Answer: "from settings"},
	)

	resp, err := svc.Search(context.Background(), "how do I log in", 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len = %d", len(resp.Results))
	}
	for i, r := range resp.Results {
		if r.Rank != i+1 {
			t.Errorf("rank[%d] = %d", i, r.Rank)
		}
	}
	if resp.Results[0].Score < resp.Results[1].Score {
		t.Error("results must be ordered best score first")
	}
	if resp.Query != "how do I log in" {
		t.Errorf("query echoed = %q", resp.Query)
	}
}

func TestSearchDeterministic(t *testing.T) {
	svc := builtService(t,
		&models.FAQ{ID: 1, Question: "alpha", Answer: "a"},
		&models.FAQ{ID: 2, Question: "beta", Answer: "b"},
		&models.FAQ{ID: 3, Question: "gamma", Answer: "c"},
	)
	first, err := svc.Search(context.Background(), "alpha", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	second, err := svc.Search(context.Background(), "alpha", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(first.Results) != len(second.Results) {
		t.Fatal("result counts differ between identical searches")
	}
	for i := range first.Results {
		if first.Results[i].FAQID != second.Results[i].FAQID || first.Results[i].Score != second.Results[i].Score {
			t.Errorf("result %d differs between identical searches", i)
		}
	}
}

func TestSearchDefaultTopK(t *testing.T) {
	faqs := make([]*models.FAQ, 0, 8)
	for i := int64(1); i <= 8; i++ {
		faqs = append(faqs, &models.FAQ{ID: i, Question: "question", Answer: "answer"})
	}
	svc := builtService(t, faqs...)

	resp, err := svc.Search(context.Background(), "question", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 5 {
		t.Errorf("default top_k should yield 5 results, got %d", len(resp.Results))
	}
}

func TestContextJoinsPassages(t *testing.T) {
	svc := builtService(t,
		&models.FAQ{ID: 1, Question: "how to login", Answer: "use email"},
		&models.FAQ{ID: 2, Question: "how to pay", Answer: "by card"},
	)
	text, err := svc.Context(context.Background(), "how to login", 2)
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if text == "" {
		t.Fatal("expected non-empty context")
	}
	for _, want := range []string{"Q: how to login\nA: use email", "Q: how to pay\nA: by card"} {
		if !strings.Contains(text, want) {
			t.Errorf("context missing passage %q", want)
		}
	}
}
