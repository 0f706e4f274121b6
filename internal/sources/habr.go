package sources

import (
	"context"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"newsbot/internal/logger"
)

const (
	habrBaseURL = "https://habr.com"
	habrNewsURL = habrBaseURL + "/ru/news/"

	habrCardSelector      = "article.tm-articles-list__item"
	habrTitleLinkSelector = "a.tm-title__link"
)

// HabrSource scrapes the Habr news listing page.
type HabrSource struct {
	client  *http.Client
	listURL string
}

func NewHabrSource(client *http.Client) *HabrSource {
	if client == nil {
		client = defaultClient()
	}
	return &HabrSource{client: client, listURL: habrNewsURL}
}

func (s *HabrSource) Name() string {
	return "habr"
}

func (s *HabrSource) Fetch(ctx context.Context, limit int) []RawItem {
	doc, err := fetchDocument(ctx, s.client, s.listURL)
	if err != nil {
		logger.Warn("habr fetch failed", "error", err)
		return nil
	}

	items := parseHabrList(doc)
	logger.Info("parsed habr news items", "count", len(items))
	return capLimit(items, limit)
}

// parseHabrList extracts the cards from the listing page. A card without a
// title anchor is skipped; the rest of the page still parses.
func parseHabrList(doc *goquery.Document) []RawItem {
	var items []RawItem

	doc.Find(habrCardSelector).Each(func(i int, card *goquery.Selection) {
		titleLink := card.Find(habrTitleLinkSelector).First()
		if titleLink.Length() == 0 {
			return
		}

		title := strings.TrimSpace(titleLink.Text())
		relativeURL, _ := titleLink.Attr("href")
		if relativeURL == "" {
			return
		}

		fullURL := relativeURL
		if !strings.HasPrefix(relativeURL, "http") {
			fullURL = habrBaseURL + relativeURL
		}

		datetime, _ := card.Find("time").First().Attr("datetime")

		text := strings.TrimSpace(card.Find("p").First().Text())

		items = append(items, RawItem{
			"title":    title,
			"url":      fullURL,
			"source":   "habr",
			"datetime": datetime,
			"text":     text,
		})
	})

	return items
}
