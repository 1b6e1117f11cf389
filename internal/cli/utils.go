// Package cli provides output formatting for the kotae command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for CLI output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms\n\n", len(response.Results), response.QueryTime)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
	return nil
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "Rank: %d | Score: %.4f | ID: %d\n", result.Rank, result.Score, result.FAQID)
	if result.FAQ == nil {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "Q: %s\n", result.FAQ.Question)
	fmt.Fprintf(w, "A: %s\n", utils.Truncate(result.FAQ.Answer, 200))
	if result.FAQ.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", result.FAQ.Category)
	}
	if len(result.FAQ.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(result.FAQ.Tags, ", "))
	}
	fmt.Fprintln(w)
}

// WriteFAQ writes one FAQ to w in the given format.
func WriteFAQ(w io.Writer, f *models.FAQ, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, f)
	}
	fmt.Fprintf(w, "ID: %d [%s]\n", f.ID, f.Status)
	fmt.Fprintf(w, "Q: %s\n", f.Question)
	fmt.Fprintf(w, "A: %s\n", f.Answer)
	if f.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", f.Category)
	}
	if len(f.Tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(f.Tags, ", "))
	}
	fmt.Fprintf(w, "Updated: %s\n", f.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

// WriteFAQList writes a page of FAQs to w in the given format.
func WriteFAQList(w io.Writer, page *models.FAQList, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, page)
	}
	fmt.Fprintf(w, "\n%d FAQs (showing %d, offset %d)\n\n", page.Total, len(page.FAQs), page.Offset)
	for _, f := range page.FAQs {
		fmt.Fprintf(w, "%6d [%-7s] %s\n", f.ID, f.Status, utils.Truncate(f.Question, 70))
	}
	if page.HasMore {
		fmt.Fprintf(w, "\n... more results available (use --offset %d)\n", page.Offset+len(page.FAQs))
	}
	return nil
}

// WriteRebuildReport writes a rebuild report to w in the given format.
func WriteRebuildReport(w io.Writer, report *models.RebuildReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "Rebuild %s: %s\n", report.JobID, report.Status)
	fmt.Fprintf(w, "  documents processed: %d\n", report.DocumentsProcessed)
	fmt.Fprintf(w, "  documents failed:    %d\n", report.DocumentsFailed)
	fmt.Fprintf(w, "  statuses restored:   %d\n", report.StatusesRestored)
	fmt.Fprintf(w, "  ledger cleared:      %d\n", report.LedgerCleared)
	fmt.Fprintf(w, "  duration:            %dms\n", report.DurationMS)
	for _, e := range report.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	return nil
}

// WriteCacheInfo writes vector cache details to w in the given format.
func WriteCacheInfo(w io.Writer, info *models.CacheInfo, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, info)
	}
	if !info.Cached {
		fmt.Fprintln(w, "No vector cache loaded.")
		return nil
	}
	fmt.Fprintf(w, "Vector cache: %d documents\n", info.DocumentCount)
	fmt.Fprintf(w, "  model:     %s\n", info.ModelID)
	fmt.Fprintf(w, "  dimension: %d\n", info.EmbeddingDimension)
	fmt.Fprintf(w, "  metric:    %s\n", info.DistanceMetric)
	fmt.Fprintf(w, "  built at:  %s\n", info.BuiltAt.Format("2006-01-02 15:04:05"))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
