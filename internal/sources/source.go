// Package sources contains the site-specific adapters that fetch and parse
// external documents into raw field maps. Field names vary per adapter on
// purpose; the normalizer resolves them downstream.
package sources

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// RawItem is one candidate article as extracted by an adapter.
type RawItem = map[string]any

// Source fetches raw candidate articles from one external site. Fetch never
// fails: network trouble or a bad response is logged inside the adapter and
// yields an empty slice, so one broken source cannot block the others.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) []RawItem
}

var defaultHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0",
	"Accept":     "text/html",
}

func defaultClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}

// fetchDocument downloads one page and hands it to goquery.
func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return doc, nil
}

func capLimit(items []RawItem, limit int) []RawItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
