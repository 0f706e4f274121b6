// Package news holds the canonical article model and the normalization step
// that turns raw per-source field maps into NewsItem records.
package news

import "time"

// NewsItem is one ingested article. ID is a pure function of (source, url),
// so re-ingesting the same article always maps to the same row.
type NewsItem struct {
	ID          string
	Title       string
	URL         string
	Summary     string
	Source      string
	PublishedAt *time.Time
	Keywords    string
	IsRelevant  bool
	Status      string
}

// Status values for NewsItem. An item starts with the empty status and is
// moved to StatusProcessed exactly once, after a successful publish.
const (
	StatusProcessed = "processed"
)

// Post is one published rewrite referencing the NewsItem it came from.
type Post struct {
	ID            string
	NewsID        string
	GeneratedText string
	PublishedAt   time.Time
	Status        string
}

// Post status values.
const (
	PostStatusNew       = "new"
	PostStatusGenerated = "generated"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)
