// Package search provides semantic FAQ retrieval with dual-query fusion.
package search

import (
	"sort"

	"github.com/hyperjump/kotae/internal/vector"
)

// Fuse merges the hit lists of the two query phrasings: candidates are unioned
// by FAQ id, each id keeps its best score across both lists, and the result is
// re-sorted best first. Equal scores order by lower FAQ id so rankings are
// reproducible. The result is truncated to topK.
func Fuse(primary, alternate []vector.Hit, topK int) []vector.Hit {
	best := make(map[int64]float64, len(primary)+len(alternate))
	for _, h := range primary {
		best[h.FAQID] = h.Score
	}
	for _, h := range alternate {
		if s, ok := best[h.FAQID]; !ok || h.Score > s {
			best[h.FAQID] = h.Score
		}
	}
	fused := make([]vector.Hit, 0, len(best))
	for id, score := range best {
		fused = append(fused, vector.Hit{FAQID: id, Score: score})
	}
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		return fused[i].FAQID < fused[j].FAQID
	})
	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}
