package models

import "time"

// ChangeKind classifies a pending mutation.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
)

// PendingChange records a mutation not yet reflected in the vector cache.
// OriginalStatus is the publication state the FAQ should return to once the
// cache covers it; for deleted FAQs it is informational only.
type PendingChange struct {
	FAQID          int64      `json:"faq_id"`
	Kind           ChangeKind `json:"change_kind"`
	OriginalStatus Status     `json:"original_status,omitempty"`
	RecordedAt     time.Time  `json:"recorded_at"`
}

// PendingSummary is the pending change set with per-kind counts.
type PendingSummary struct {
	Changes    []*PendingChange   `json:"changes"`
	Total      int                `json:"total_count"`
	Stats      map[ChangeKind]int `json:"stats"`
	HasPending bool               `json:"has_pending"`
}
