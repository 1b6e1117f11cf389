package vector

import (
	"fmt"
	"sort"
	"time"
)

// Entry is one indexed document: a FAQ's passage text and its embedding.
type Entry struct {
	FAQID   int64
	Passage string
	Vector  []float32
}

// Metadata describes the build that produced a snapshot. It is persisted
// alongside the vectors and checked on load.
type Metadata struct {
	ModelID       string    `json:"model_id"`
	DocumentCount int       `json:"document_count"`
	Dimensions    int       `json:"embedding_dimension"`
	Metric        Metric    `json:"distance_metric"`
	BuiltAt       time.Time `json:"built_at"`
}

// Hit is a single search result from a snapshot.
type Hit struct {
	FAQID int64
	Score float64
}

// Snapshot is an immutable vector index over a fixed set of documents.
// It is never mutated after Build; writers publish a new snapshot instead.
type Snapshot struct {
	metric     Metric
	dimensions int
	ids        []int64
	vectors    [][]float32
	passages   []string
	byID       map[int64]int
	meta       Metadata
}

// Build constructs a snapshot from entries. With the cosine metric vectors are
// normalized on the way in. An empty entry set is valid and produces a snapshot
// that returns no results.
func Build(metric Metric, modelID string, dimensions int, entries []Entry) (*Snapshot, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	s := &Snapshot{
		metric:     metric,
		dimensions: dimensions,
		ids:        make([]int64, 0, len(entries)),
		vectors:    make([][]float32, 0, len(entries)),
		passages:   make([]string, 0, len(entries)),
		byID:       make(map[int64]int, len(entries)),
		meta: Metadata{
			ModelID:       modelID,
			DocumentCount: len(entries),
			Dimensions:    dimensions,
			Metric:        metric,
			BuiltAt:       time.Now().UTC(),
		},
	}
	for _, e := range entries {
		if len(e.Vector) != dimensions {
			return nil, fmt.Errorf("vector dimension mismatch for faq %d: got %d, expected %d", e.FAQID, len(e.Vector), dimensions)
		}
		if _, dup := s.byID[e.FAQID]; dup {
			return nil, fmt.Errorf("duplicate faq id %d", e.FAQID)
		}
		vec := make([]float32, dimensions)
		copy(vec, e.Vector)
		if metric == MetricCosine {
			vec = NormalizeL2(vec)
		}
		s.byID[e.FAQID] = len(s.ids)
		s.ids = append(s.ids, e.FAQID)
		s.vectors = append(s.vectors, vec)
		s.passages = append(s.passages, e.Passage)
	}
	return s, nil
}

// Search returns the top-k documents for the query vector, best score first.
// Ties are broken by lower FAQ id. With the cosine metric the query is
// normalized before comparison.
func (s *Snapshot) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), s.dimensions)
	}
	if k <= 0 || len(s.ids) == 0 {
		return nil, nil
	}
	q := query
	if s.metric == MetricCosine {
		q = NormalizeL2(query)
	}
	hits := make([]Hit, len(s.ids))
	for i, vec := range s.vectors {
		hits[i] = Hit{FAQID: s.ids[i], Score: s.metric.Score(q, vec)}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].FAQID < hits[j].FAQID
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// VectorFor returns the stored vector for a FAQ id, if indexed. Incremental
// rebuilds use this to reuse embeddings of unchanged documents.
func (s *Snapshot) VectorFor(faqID int64) ([]float32, bool) {
	i, ok := s.byID[faqID]
	if !ok {
		return nil, false
	}
	return s.vectors[i], true
}

// PassageFor returns the indexed passage text for a FAQ id, if indexed.
func (s *Snapshot) PassageFor(faqID int64) (string, bool) {
	i, ok := s.byID[faqID]
	if !ok {
		return "", false
	}
	return s.passages[i], true
}

// Contains reports whether a FAQ id is indexed in this snapshot.
func (s *Snapshot) Contains(faqID int64) bool {
	_, ok := s.byID[faqID]
	return ok
}

// Len returns the number of indexed documents.
func (s *Snapshot) Len() int {
	return len(s.ids)
}

// Dimensions returns the embedding dimension.
func (s *Snapshot) Dimensions() int {
	return s.dimensions
}

// Metric returns the distance metric the snapshot was built with.
func (s *Snapshot) Metric() Metric {
	return s.metric
}

// Metadata returns the build metadata.
func (s *Snapshot) Metadata() Metadata {
	return s.meta
}
