// Package storage persists news and posts in PostgreSQL. The news primary
// key is the content fingerprint, which makes the store itself the dedup
// authority: re-inserting an already-seen article is a no-op, not an error.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"newsbot/internal/logger"
	"newsbot/internal/news"
)

type Store struct {
	db *sql.DB
}

func New(connectionString string) (*Store, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("postgres store connected")
	return store, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news (
		id VARCHAR(64) PRIMARY KEY,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		source VARCHAR(100) NOT NULL,
		published_at TIMESTAMP,
		keywords TEXT,
		is_relevant BOOLEAN,
		status VARCHAR(32)
	);

	CREATE INDEX IF NOT EXISTS idx_news_pending ON news(is_relevant, status);

	CREATE TABLE IF NOT EXISTS posts (
		id VARCHAR(36) PRIMARY KEY,
		news_id VARCHAR(64) NOT NULL REFERENCES news(id) ON DELETE CASCADE,
		generated_text TEXT NOT NULL,
		published_at TIMESTAMP,
		status VARCHAR(32) NOT NULL DEFAULT 'published'
	);

	CREATE INDEX IF NOT EXISTS idx_posts_news_id ON posts(news_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// InsertNews writes one record in its own implicit transaction. A conflict
// on the fingerprint id reports inserted=false and is not an error, so one
// duplicate never disturbs its batch siblings.
func (s *Store) InsertNews(ctx context.Context, item news.NewsItem) (bool, error) {
	query := `
		INSERT INTO news (id, title, url, summary, source, published_at, keywords, is_relevant, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
		item.ID,
		item.Title,
		item.URL,
		item.Summary,
		item.Source,
		item.PublishedAt,
		item.Keywords,
		item.IsRelevant,
		nullableStatus(item.Status),
	)
	if err != nil {
		return false, fmt.Errorf("insert news %s: %w", item.ID, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}

	return rows > 0, nil
}

// NextPending returns the one relevant, not-yet-published record to publish
// next, or nil when nothing is pending. The order is deterministic: oldest
// publication date first, unknown dates last, fingerprint as tiebreak.
func (s *Store) NextPending(ctx context.Context) (*news.NewsItem, error) {
	query := `
		SELECT id, title, url, summary, source, published_at, keywords, is_relevant, status
		FROM news
		WHERE is_relevant = TRUE AND status IS NULL
		ORDER BY published_at ASC NULLS LAST, id ASC
		LIMIT 1
	`

	row := s.db.QueryRowContext(ctx, query)

	var (
		item        news.NewsItem
		publishedAt sql.NullTime
		keywords    sql.NullString
		isRelevant  sql.NullBool
		status      sql.NullString
	)

	err := row.Scan(&item.ID, &item.Title, &item.URL, &item.Summary, &item.Source,
		&publishedAt, &keywords, &isRelevant, &status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select pending news: %w", err)
	}

	if publishedAt.Valid {
		item.PublishedAt = &publishedAt.Time
	}
	item.Keywords = keywords.String
	item.IsRelevant = isRelevant.Bool
	item.Status = status.String

	return &item, nil
}

// MarkPublished flips the news status to processed and records the post in
// one transaction, returning the new post id.
func (s *Store) MarkPublished(ctx context.Context, newsID, generatedText string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE news SET status = $1 WHERE id = $2`,
		news.StatusProcessed, newsID)
	if err != nil {
		return "", fmt.Errorf("update news status: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return "", fmt.Errorf("news item not found: %s", newsID)
	}

	postID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO posts (id, news_id, generated_text, published_at, status)
		 VALUES ($1, $2, $3, $4, $5)`,
		postID, newsID, generatedText, time.Now().UTC(), news.PostStatusPublished)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit publish: %w", err)
	}

	return postID, nil
}

// Stats returns row counts for the monitoring endpoints.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)

	queries := map[string]string{
		"news_total":   `SELECT COUNT(*) FROM news`,
		"news_pending": `SELECT COUNT(*) FROM news WHERE is_relevant = TRUE AND status IS NULL`,
		"posts_total":  `SELECT COUNT(*) FROM posts`,
	}

	for name, query := range queries {
		var count int
		if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return nil, fmt.Errorf("stats %s: %w", name, err)
		}
		stats[name] = count
	}

	return stats, nil
}

// Ping reports store reachability for the health surface.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullableStatus(status string) sql.NullString {
	return sql.NullString{String: status, Valid: status != ""}
}
