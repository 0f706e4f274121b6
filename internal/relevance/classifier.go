// Package relevance decides whether an article fits the channel topic.
// The decision is two-stage: a cheap keyword containment check first, then a
// cosine-similarity comparison against a reference topic embedding.
package relevance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"newsbot/internal/logger"
)

// topicText describes the channel topic; its embedding is the reference
// vector for the similarity stage.
const topicText = `Python programming, artificial intelligence, machine learning,
deep learning, data science, neural networks`

// Embedder computes a sentence embedding for a piece of text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Classifier scores title+summary pairs. The topic embedding is computed at
// most once per process and shared by every caller.
type Classifier struct {
	embedder  Embedder
	keywords  []string
	threshold float64

	mu       sync.Mutex
	topicVec []float32
}

func NewClassifier(embedder Embedder, keywords []string, threshold float64) *Classifier {
	return &Classifier{
		embedder:  embedder,
		keywords:  keywords,
		threshold: threshold,
	}
}

// IsRelevant returns true when the text mentions a topic keyword, or, failing
// that, when its embedding sits within the similarity threshold of the topic.
// The keyword stage never touches the embedding backend, so it keeps working
// when the backend is down.
func (c *Classifier) IsRelevant(ctx context.Context, title, summary string) (bool, error) {
	text := strings.ToLower(title + " " + summary)

	for _, keyword := range c.keywords {
		if strings.Contains(text, keyword) {
			return true, nil
		}
	}

	if c.embedder == nil {
		return false, nil
	}

	topic, err := c.topicEmbedding(ctx)
	if err != nil {
		return false, err
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return false, fmt.Errorf("embed text: %w", err)
	}

	similarity := cosineSimilarity(vec, topic)
	logger.Debug("embedding similarity", "value", similarity, "threshold", c.threshold)

	return similarity >= c.threshold, nil
}

// topicEmbedding lazily computes the reference vector. A failed attempt is
// retried on the next call rather than cached forever.
func (c *Classifier) topicEmbedding(ctx context.Context) ([]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.topicVec != nil {
		return c.topicVec, nil
	}

	vec, err := c.embedder.Embed(ctx, topicText)
	if err != nil {
		return nil, fmt.Errorf("embed topic: %w", err)
	}

	c.topicVec = vec
	return vec, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
