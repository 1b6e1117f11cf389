package keyword

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/hyperjump/kotae/internal/models"
)

// questionBoost weights matches in the question field over answer matches.
const questionBoost = 2.0

// indexedFAQ is the document shape stored in Bleve.
type indexedFAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
	Tags     string `json:"tags"`
}

// BleveIndex implements KeywordIndex using Bleve.
type BleveIndex struct {
	index bleve.Index
}

// NewBleveIndex creates or opens a Bleve index at path. An existing index is
// opened and reused; remove the directory to force a full re-index after a
// mapping change. An empty path creates an in-memory index.
func NewBleveIndex(path string) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so exact words
	// match regardless of case; stemming mangles Japanese and product names.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("question", textFieldMapping)
	docMapping.AddFieldMappingsAt("answer", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	im.AddDocumentMapping("faq", docMapping)
	im.DefaultType = "faq"
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory Bleve index: %w", err)
		}
		return &BleveIndex{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open Bleve index: %w", openErr)
		}
		return &BleveIndex{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	return &BleveIndex{index: index}, nil
}

// Index indexes a FAQ, replacing any previous version.
func (b *BleveIndex) Index(ctx context.Context, faq *models.FAQ) error {
	doc := &indexedFAQ{
		Question: faq.Question,
		Answer:   faq.Answer,
		Category: faq.Category,
		Tags:     strings.Join(faq.Tags, " "),
	}
	return b.index.Index(strconv.FormatInt(faq.ID, 10), doc)
}

// Search runs a match query over all fields with question matches boosted,
// returning up to limit results best first.
func (b *BleveIndex) Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error) {
	questionQuery := bleve.NewMatchQuery(query)
	questionQuery.SetField("question")
	questionQuery.SetBoost(questionBoost)

	answerQuery := bleve.NewMatchQuery(query)
	answerQuery.SetField("answer")

	categoryQuery := bleve.NewMatchQuery(query)
	categoryQuery.SetField("category")

	tagsQuery := bleve.NewMatchQuery(query)
	tagsQuery.SetField("tags")

	q := bleve.NewDisjunctionQuery(questionQuery, answerQuery, categoryQuery, tagsQuery)
	search := bleve.NewSearchRequest(q)
	search.Size = limit
	results, err := b.index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, &KeywordResult{FAQID: id, Score: hit.Score})
	}
	return out, nil
}

// Delete removes a FAQ from the index.
func (b *BleveIndex) Delete(ctx context.Context, id int64) error {
	return b.index.Delete(strconv.FormatInt(id, 10))
}

// DocCount returns the total number of FAQs in the index.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the underlying index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}
