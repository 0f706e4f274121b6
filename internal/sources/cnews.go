package sources

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsbot/internal/logger"
)

const cnewsListURL = "https://www.cnews.ru/news"

var cnewsDateExpr = regexp.MustCompile(`/(\d{4}-\d{2}-\d{2})_`)

// CNewsSource scrapes the CNews listing and opens each article to pull the
// full body text.
type CNewsSource struct {
	client  *http.Client
	listURL string
}

func NewCNewsSource(client *http.Client) *CNewsSource {
	if client == nil {
		client = defaultClient()
	}
	return &CNewsSource{client: client, listURL: cnewsListURL}
}

func (s *CNewsSource) Name() string {
	return "cnews"
}

func (s *CNewsSource) Fetch(ctx context.Context, limit int) []RawItem {
	doc, err := fetchDocument(ctx, s.client, s.listURL)
	if err != nil {
		logger.Warn("cnews fetch failed", "error", err)
		return nil
	}

	items := s.parseList(ctx, doc, limit)
	logger.Info("parsed cnews news items", "count", len(items))
	return items
}

func (s *CNewsSource) parseList(ctx context.Context, doc *goquery.Document, limit int) []RawItem {
	var items []RawItem

	doc.Find("div.allnews_item").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if limit > 0 && len(items) >= limit {
			return false
		}

		link := sel.Find("a.ani-postname").First()
		if link.Length() == 0 {
			return true
		}

		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if href == "" {
			return true
		}

		timeText := strings.TrimSpace(sel.Find(".ani-date time").Last().Text())
		if timeText == "" {
			timeText = "00:00"
		}

		items = append(items, RawItem{
			"title":        title,
			"url":          href,
			"source":       "cnews",
			"summary":      s.fetchArticleBody(ctx, href),
			"published_at": parseCNewsDate(href, timeText),
		})

		return true
	})

	return items
}

// parseCNewsDate recovers the publication timestamp from the date segment of
// the article URL plus the time cell of the listing row.
func parseCNewsDate(href, timeText string) any {
	match := cnewsDateExpr.FindStringSubmatch(href)
	if match == nil {
		return nil
	}
	parsed, err := time.Parse("2006-01-02 15:04", match[1]+" "+timeText)
	if err != nil {
		return nil
	}
	return parsed
}

// fetchArticleBody opens the article page and joins its top-level paragraphs.
// Any failure just means an empty summary for this one item.
func (s *CNewsSource) fetchArticleBody(ctx context.Context, articleURL string) string {
	doc, err := fetchDocument(ctx, s.client, articleURL)
	if err != nil {
		logger.Warn("cnews article fetch failed", "url", articleURL, "error", err)
		return ""
	}

	var paragraphs []string
	doc.Find("article.news_container > p").Each(func(i int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	return strings.Join(paragraphs, "\n")
}
