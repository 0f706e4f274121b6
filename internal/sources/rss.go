package sources

import (
	"context"
	"os"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"newsbot/internal/logger"
)

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feed list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// RSSSource pulls items from a fixed list of RSS/Atom feeds.
type RSSSource struct {
	parser *gofeed.Parser
	feeds  []string
}

func NewRSSSource(feeds []string) *RSSSource {
	return &RSSSource{parser: gofeed.NewParser(), feeds: feeds}
}

func (s *RSSSource) Name() string {
	return "rss"
}

func (s *RSSSource) Fetch(ctx context.Context, limit int) []RawItem {
	var items []RawItem
	successCount := 0

	for _, feedURL := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			logger.Warn("rss feed failed", "feed", feedURL, "error", err)
			continue // one bad feed must not block the rest
		}
		successCount++

		for _, entry := range feed.Items {
			item := RawItem{
				"title":   entry.Title,
				"link":    entry.Link,
				"summary": entry.Description,
			}
			if entry.PublishedParsed != nil {
				item["published_at"] = *entry.PublishedParsed
			}
			items = append(items, item)
		}
	}

	logger.Info("processed rss feeds", "ok", successCount, "total", len(s.feeds), "items", len(items))
	return capLimit(items, limit)
}
