// Package publish selects one pending relevant article, rewrites it, and
// delivers it to the channel.
package publish

import (
	"context"
	"fmt"

	"newsbot/internal/logger"
	"newsbot/internal/metrics"
	"newsbot/internal/news"
)

// Outcome of one publish cycle. A failed attempt and an empty queue are
// distinct results so the scheduler can log and count them separately.
type Outcome int

const (
	Published Outcome = iota
	NothingPending
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Published:
		return "published"
	case NothingPending:
		return "nothing_pending"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Store is the slice of the persistence layer the selector needs.
type Store interface {
	NextPending(ctx context.Context) (*news.NewsItem, error)
	MarkPublished(ctx context.Context, newsID, generatedText string) (string, error)
}

// Rewriter produces replacement text for an article.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// Transport delivers final text to the destination channel.
type Transport interface {
	SendMessage(ctx context.Context, text string) error
}

type Selector struct {
	store     Store
	rewriter  Rewriter
	transport Transport
}

func NewSelector(store Store, rewriter Rewriter, transport Transport) *Selector {
	return &Selector{
		store:     store,
		rewriter:  rewriter,
		transport: transport,
	}
}

// RunOnce publishes at most one article. The record is marked processed only
// after the transport confirms delivery; any collaborator failure leaves it
// pending so the next cycle retries it.
//
// The select-then-act sequence deliberately holds no lock across the slow
// external calls, so overlapping runs can pick the same record and publish
// it twice. That at-least-once risk is accepted.
func (s *Selector) RunOnce(ctx context.Context) (Outcome, string, error) {
	item, err := s.store.NextPending(ctx)
	if err != nil {
		metrics.Global.IncrementPublishFailed()
		metrics.Global.RecordError(err)
		return Failed, "", fmt.Errorf("select pending news: %w", err)
	}
	if item == nil {
		logger.Info("no relevant news items pending")
		metrics.Global.SetLastPublishRun()
		return NothingPending, "", nil
	}

	logger.Info("rewriting news item", "id", item.ID, "title", item.Title)

	text, err := s.rewriter.Rewrite(ctx, item.Title+"\n\n"+item.Summary)
	if err != nil {
		metrics.Global.IncrementPublishFailed()
		metrics.Global.RecordError(err)
		return Failed, "", fmt.Errorf("rewrite news %s: %w", item.ID, err)
	}

	if err := s.transport.SendMessage(ctx, text); err != nil {
		metrics.Global.IncrementPublishFailed()
		metrics.Global.RecordError(err)
		return Failed, "", fmt.Errorf("deliver news %s: %w", item.ID, err)
	}

	postID, err := s.store.MarkPublished(ctx, item.ID, text)
	if err != nil {
		// Delivered but not recorded: the item stays pending and may go out
		// again next cycle.
		metrics.Global.IncrementPublishFailed()
		metrics.Global.RecordError(err)
		return Failed, "", fmt.Errorf("mark published %s: %w", item.ID, err)
	}

	metrics.Global.IncrementPublished()
	metrics.Global.SetLastPublishRun()
	logger.Info("post published", "news_id", item.ID, "post_id", postID)
	return Published, item.ID, nil
}
