package models

import (
	"time"
)

// Status is the publication state of a content row
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ValidStatuses defines allowed publication statuses
var ValidStatuses = map[Status]bool{
	StatusDraft:     true,
	StatusPublished: true,
}

// Kind selects which editorial table a Content row lives in. Articles and
// recommendations share the exact same shape.
type Kind string

const (
	KindArticle        Kind = "articles"
	KindRecommendation Kind = "recommendations"
)

// Kinds lists every content kind
var Kinds = []Kind{KindArticle, KindRecommendation}

// Valid reports whether k names a known table
func (k Kind) Valid() bool {
	return k == KindArticle || k == KindRecommendation
}

// Table returns the SQL table backing the kind
func (k Kind) Table() string {
	return string(k)
}

// IDPrefix returns the prefix used for generated ids
func (k Kind) IDPrefix() string {
	if k == KindRecommendation {
		return "rec"
	}
	return "art"
}

// Content is an article or a recommendation
type Content struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Summary         *string    `json:"summary"`
	Category        *string    `json:"category"`
	Tags            *Tags      `json:"tags"`
	CoverImageURL   *string    `json:"coverImageUrl"`
	ContentMarkdown *string    `json:"contentMarkdown"`
	Address         *string    `json:"address"`
	Status          Status     `json:"status"`
	AuthorEmail     *string    `json:"authorEmail"`
	PublishedAt     *time.Time `json:"publishedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ContentSummary is the public list projection of a published Content row
type ContentSummary struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Summary       *string    `json:"summary"`
	Category      *string    `json:"category"`
	Tags          *Tags      `json:"tags"`
	CoverImageURL *string    `json:"coverImageUrl"`
	Address       *string    `json:"address"`
	PublishedAt   *time.Time `json:"publishedAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ContentInput is the create/update payload. A nil field means "not sent";
// on update it keeps the stored value.
type ContentInput struct {
	Title           *string `json:"title"`
	Summary         *string `json:"summary"`
	Category        *string `json:"category"`
	Tags            *Tags   `json:"tags"`
	CoverImageURL   *string `json:"coverImageUrl"`
	ContentMarkdown *string `json:"contentMarkdown"`
	Address         *string `json:"address"`
	Status          *Status `json:"status"`
	AuthorEmail     *string `json:"authorEmail"`
}
