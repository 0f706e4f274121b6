// Package metrics keeps process-local counters for the ingest and publish
// cycles, exposed through the monitoring endpoints.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Ingest counters
	ItemsFetched       int64
	ItemsInserted      int64
	DuplicatesSkipped  int64
	ValidationFailures int64

	// Publish counters
	PostsPublished int64
	PublishFailed  int64

	// Job status
	LastIngestRun  time.Time
	LastPublishRun time.Time
	LastErrorTime  time.Time
	LastError      string
}

var Global = &Metrics{}

func (m *Metrics) AddFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsFetched += int64(n)
}

func (m *Metrics) IncrementInserted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsInserted++
}

func (m *Metrics) IncrementDuplicates() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesSkipped++
}

func (m *Metrics) IncrementValidationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationFailures++
}

func (m *Metrics) IncrementPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PostsPublished++
}

func (m *Metrics) IncrementPublishFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishFailed++
}

func (m *Metrics) SetLastIngestRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastIngestRun = time.Now()
}

func (m *Metrics) SetLastPublishRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastPublishRun = time.Now()
}

func (m *Metrics) RecordError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastErrorTime = time.Now()
	m.LastError = err.Error()
}

// GetStats returns a snapshot for the /metrics and /health handlers.
func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	lastRun := m.LastIngestRun
	if m.LastPublishRun.After(lastRun) {
		lastRun = m.LastPublishRun
	}
	healthy := m.LastError == "" || m.LastErrorTime.Before(lastRun)

	return map[string]interface{}{
		"items_fetched":       m.ItemsFetched,
		"items_inserted":      m.ItemsInserted,
		"duplicates_skipped":  m.DuplicatesSkipped,
		"validation_failures": m.ValidationFailures,
		"posts_published":     m.PostsPublished,
		"publish_failed":      m.PublishFailed,
		"last_ingest_run":     m.LastIngestRun,
		"last_publish_run":    m.LastPublishRun,
		"last_error":          m.LastError,
		"is_healthy":          healthy,
	}
}
