package news

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsbot/internal/logger"
)

// ErrNoURL marks a raw item that has no usable URL field. Such items are
// skipped; the rest of the batch continues.
var ErrNoURL = errors.New("raw item has no url")

// ClassifyFunc decides topical relevance for a title+summary pair.
type ClassifyFunc func(ctx context.Context, title, summary string) (bool, error)

// possibleDateFormats is tried in order against whichever date field the
// source provided. Exhaustion means "unknown date", never an error.
var possibleDateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999Z",
	"02.01-2006, 15:04",
}

// MakeNewsID derives the deterministic fingerprint of one article:
// sha256 over "source:url". Nothing else feeds the digest.
func MakeNewsID(source, url string) string {
	base := fmt.Sprintf("%s:%s", source, url)
	sum := sha256.Sum256([]byte(base))
	return hex.EncodeToString(sum[:])
}

// Normalize turns a raw per-source field map into a canonical NewsItem.
// Field names differ between adapters on purpose; the priority chains below
// resolve them. Relevance is computed here, once, and never recomputed.
func Normalize(ctx context.Context, sourceName string, raw map[string]any, classify ClassifyFunc) (NewsItem, error) {
	title := strings.TrimSpace(asString(raw["title"]))

	rawURL := firstString(raw, "url", "link")
	if rawURL == "" {
		return NewsItem{}, fmt.Errorf("normalize %s item: %w", sourceName, ErrNoURL)
	}
	url := strings.TrimSpace(rawURL)

	summary := strings.TrimSpace(firstString(raw, "text", "summary"))

	source := strings.TrimSpace(asString(raw["source"]))
	if source == "" {
		source = sourceName
	}

	publishedAt := normalizePublishedAt(firstValue(raw, "datetime", "published_at"))

	item := NewsItem{
		ID:          MakeNewsID(source, url),
		Title:       title,
		URL:         url,
		Summary:     summary,
		Source:      source,
		PublishedAt: publishedAt,
		Keywords:    "",
	}

	if classify != nil {
		relevant, err := classify(ctx, title, summary)
		if err != nil {
			// Classifier trouble must not fail ingestion; the item just
			// stays non-relevant.
			logger.Warn("classify failed, marking not relevant", "source", source, "url", url, "error", err)
		}
		item.IsRelevant = relevant
	}

	return item, nil
}

// normalizePublishedAt accepts whatever the adapter managed to extract:
// an already-parsed time, a string in one of the known formats, or nothing.
func normalizePublishedAt(raw any) *time.Time {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return &v
	case *time.Time:
		return v
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return nil
		}
		for _, format := range possibleDateFormats {
			if parsed, err := time.Parse(format, v); err == nil {
				return &parsed
			}
		}
		return nil
	default:
		return nil
	}
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(raw[key]); s != "" {
			return s
		}
	}
	return ""
}

func firstValue(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
