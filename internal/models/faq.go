// Package models defines core data structures for FAQs, pending changes, and search results.
package models

import "time"

// Status is the publication state of an FAQ.
type Status string

const (
	// StatusPublic marks an FAQ as visible and served to end users.
	StatusPublic Status = "public"
	// StatusPrivate marks an FAQ as hidden from end users but kept in the store.
	StatusPrivate Status = "private"
	// StatusPending marks an FAQ whose content changed but is not yet reflected
	// in the vector cache. Cleared by a successful rebuild.
	StatusPending Status = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPublic, StatusPrivate, StatusPending:
		return true
	}
	return false
}

// FAQ represents a stored question/answer pair.
type FAQ struct {
	ID        int64     `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Status    Status    `json:"status" db:"status"`
	Category  string    `json:"category" db:"category"`
	Tags      []string  `json:"tags" db:"tags"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PassageText returns the text that is embedded for this FAQ.
func (f *FAQ) PassageText() string {
	return "Q: " + f.Question + "\nA: " + f.Answer
}

// FAQInput is the input for creating an FAQ. Status is the intended publication
// state; the FAQ is stored as pending until the next cache rebuild.
type FAQInput struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Status   Status   `json:"status,omitempty"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// FAQUpdate is a partial update; nil fields are left unchanged.
type FAQUpdate struct {
	Question *string   `json:"question,omitempty"`
	Answer   *string   `json:"answer,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// FAQFilter narrows List results. Zero values mean no filtering.
type FAQFilter struct {
	Status   Status
	Category string
	Tag      string
}

// FAQList is a page of FAQs with pagination info.
type FAQList struct {
	FAQs    []*FAQ `json:"faqs"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	HasMore bool   `json:"has_more"`
}

// FAQStats summarizes the FAQ store.
type FAQStats struct {
	Total             int     `json:"total_faqs"`
	Public            int     `json:"public_faqs"`
	Private           int     `json:"private_faqs"`
	Pending           int     `json:"pending_faqs"`
	Recent            int     `json:"recent_faqs"`
	AvgQuestionLength float64 `json:"avg_question_length"`
	AvgAnswerLength   float64 `json:"avg_answer_length"`
	MaxQuestionLength int     `json:"max_question_length"`
	MaxAnswerLength   int     `json:"max_answer_length"`
	WithTags          int     `json:"faqs_with_tags"`
}

// CategoryCount is a category name with its FAQ count.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
