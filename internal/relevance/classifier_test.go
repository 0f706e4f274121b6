package relevance

import (
	"context"
	"errors"
	"math"
	"testing"
)

var testKeywords = []string{
	"python",
	"ai", "artificial intelligence",
	"machine learning", "ml",
	"data science", "datascience",
	"deep learning",
}

// stubEmbedder returns canned vectors keyed by input text; unknown text gets
// the fallback vector.
type stubEmbedder struct {
	topic    []float32
	fallback []float32
	err      error
	calls    int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if text == topicText {
		return s.topic, nil
	}
	return s.fallback, nil
}

// vectorWithCosine builds a 2d vector whose cosine similarity against (1, 0)
// is exactly the given value.
func vectorWithCosine(cos float64) []float32 {
	sin := math.Sqrt(1 - cos*cos)
	return []float32{float32(cos), float32(sin)}
}

func TestKeywordShortCircuit(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("backend unavailable")}
	c := NewClassifier(emb, testKeywords, 0.35)

	relevant, err := c.IsRelevant(context.Background(), "Python 3.14 released", "faster interpreter")
	if err != nil {
		t.Fatalf("keyword hit must not touch the embedder: %v", err)
	}
	if !relevant {
		t.Fatalf("expected keyword match to be relevant")
	}
	if emb.calls != 0 {
		t.Fatalf("embedder was called %d times on keyword hit", emb.calls)
	}
}

func TestSimilarityBoundary(t *testing.T) {
	topic := []float32{1, 0, 0, 0, 0}

	// (7, 18, 5, 1, 1) has norm exactly 20, so its cosine against the topic
	// axis is exactly 7/20 = 0.35 with no rounding involved.
	atThreshold := []float32{7, 18, 5, 1, 1}

	cases := []struct {
		name string
		vec  []float32
		want bool
	}{
		{"at threshold", atThreshold, true},
		{"just below", pad(vectorWithCosine(0.349)), false},
		{"well above", pad(vectorWithCosine(0.9)), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emb := &stubEmbedder{topic: topic, fallback: tc.vec}
			c := NewClassifier(emb, testKeywords, 0.35)

			relevant, err := c.IsRelevant(context.Background(), "kernel scheduler news", "no topic words here")
			if err != nil {
				t.Fatalf("IsRelevant returned error: %v", err)
			}
			if relevant != tc.want {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, relevant)
			}
		})
	}
}

// pad extends a 2d vector to the topic's dimensionality.
func pad(v []float32) []float32 {
	return append(v, 0, 0, 0)
}

func TestTopicEmbeddingComputedOnce(t *testing.T) {
	emb := &stubEmbedder{topic: []float32{1, 0}, fallback: vectorWithCosine(0.9)}
	c := NewClassifier(emb, testKeywords, 0.35)

	for i := 0; i < 3; i++ {
		if _, err := c.IsRelevant(context.Background(), "kernel news", "nothing topical"); err != nil {
			t.Fatalf("IsRelevant returned error: %v", err)
		}
	}

	// one topic embed + three text embeds
	if emb.calls != 4 {
		t.Fatalf("expected 4 embedder calls, got %d", emb.calls)
	}
}

func TestEmbedderFailureSurfacesAsError(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("down")}
	c := NewClassifier(emb, testKeywords, 0.35)

	relevant, err := c.IsRelevant(context.Background(), "kernel news", "nothing topical")
	if err == nil {
		t.Fatalf("expected error from failing embedder")
	}
	if relevant {
		t.Fatalf("failed classification must not be relevant")
	}
}

func TestNilEmbedderIsKeywordOnly(t *testing.T) {
	c := NewClassifier(nil, testKeywords, 0.35)

	relevant, err := c.IsRelevant(context.Background(), "kernel news", "nothing topical")
	if err != nil {
		t.Fatalf("IsRelevant returned error: %v", err)
	}
	if relevant {
		t.Fatalf("no keywords and no embedder must mean not relevant")
	}
}

func TestCosineSimilarity(t *testing.T) {
	if got := cosineSimilarity([]float32{1, 0}, []float32{1, 0}); math.Abs(got-1) > 1e-9 {
		t.Errorf("identical vectors: got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Errorf("orthogonal vectors: got %v", got)
	}
	if got := cosineSimilarity(nil, []float32{1}); got != 0 {
		t.Errorf("empty vector: got %v", got)
	}
	if got := cosineSimilarity([]float32{1, 0}, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths: got %v", got)
	}
}
