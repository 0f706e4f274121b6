// Package ingest runs one fetch → normalize → classify → store cycle across
// every configured source.
package ingest

import (
	"context"
	"errors"
	"sync"

	"newsbot/internal/logger"
	"newsbot/internal/metrics"
	"newsbot/internal/news"
	"newsbot/internal/sources"
)

// Inserter is the slice of the store the ingest cycle needs.
type Inserter interface {
	InsertNews(ctx context.Context, item news.NewsItem) (bool, error)
}

type Pipeline struct {
	sources  []sources.Source
	store    Inserter
	classify news.ClassifyFunc
	limit    int
}

func NewPipeline(srcs []sources.Source, store Inserter, classify news.ClassifyFunc, limit int) *Pipeline {
	return &Pipeline{
		sources:  srcs,
		store:    store,
		classify: classify,
		limit:    limit,
	}
}

type sourceBatch struct {
	name  string
	items []sources.RawItem
}

// Run executes one ingest cycle and returns the number of newly inserted
// records. Sources fetch concurrently; each produces only a candidate list,
// so the store is the first shared boundary. Per-item problems skip that one
// item, duplicates are silent, and a second run over the same source output
// inserts nothing.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	batches := p.fetchAll(ctx)

	saved := 0
	for _, batch := range batches {
		metrics.Global.AddFetched(len(batch.items))

		for _, raw := range batch.items {
			item, err := news.Normalize(ctx, batch.name, raw, p.classify)
			if err != nil {
				if errors.Is(err, news.ErrNoURL) {
					metrics.Global.IncrementValidationFailures()
					logger.Warn("skipping item without url", "source", batch.name)
					continue
				}
				logger.Error("normalize failed", "source", batch.name, "error", err)
				continue
			}

			inserted, err := p.store.InsertNews(ctx, item)
			if err != nil {
				// One bad insert must not abort the batch; siblings already
				// committed stay committed.
				logger.Error("insert failed", "id", item.ID, "error", err)
				metrics.Global.RecordError(err)
				continue
			}

			if inserted {
				saved++
				metrics.Global.IncrementInserted()
				logger.Debug("saved news item", "id", item.ID, "source", item.Source)
			} else {
				metrics.Global.IncrementDuplicates()
				logger.Debug("news item already exists", "id", item.ID)
			}
		}
	}

	metrics.Global.SetLastIngestRun()
	logger.Info("ingest cycle done", "saved", saved)
	return saved, nil
}

// fetchAll queries every source in parallel. Adapters absorb their own
// failures, so a dead source just contributes an empty batch.
func (p *Pipeline) fetchAll(ctx context.Context) []sourceBatch {
	batches := make([]sourceBatch, len(p.sources))

	var wg sync.WaitGroup
	for i, src := range p.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()
			logger.Info("fetching news", "source", src.Name())
			batches[i] = sourceBatch{name: src.Name(), items: src.Fetch(ctx, p.limit)}
		}(i, src)
	}
	wg.Wait()

	return batches
}
