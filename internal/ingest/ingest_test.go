package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"newsbot/internal/news"
	"newsbot/internal/sources"
)

type fakeSource struct {
	name  string
	items []sources.RawItem
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context, limit int) []sources.RawItem {
	if limit > 0 && len(f.items) > limit {
		return f.items[:limit]
	}
	return f.items
}

// memStore reproduces the dedup semantics of the Postgres store: inserting
// an existing fingerprint is a non-error duplicate.
type memStore struct {
	mu    sync.Mutex
	items map[string]news.NewsItem
	fail  bool
}

func newMemStore() *memStore {
	return &memStore{items: map[string]news.NewsItem{}}
}

func (m *memStore) InsertNews(ctx context.Context, item news.NewsItem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return false, errors.New("store down")
	}
	if _, ok := m.items[item.ID]; ok {
		return false, nil
	}
	m.items[item.ID] = item
	return true, nil
}

func alwaysRelevant(ctx context.Context, title, summary string) (bool, error) {
	return true, nil
}

func TestRunIngestsAndCounts(t *testing.T) {
	habr := &fakeSource{name: "habr", items: []sources.RawItem{
		{"title": "A", "url": "https://habr.com/1", "text": "python release"},
		{"title": "B", "url": "https://habr.com/2", "text": "other"},
	}}
	cnews := &fakeSource{name: "cnews", items: []sources.RawItem{
		{"title": "C", "url": "https://cnews.ru/1", "summary": "ai digest"},
	}}

	store := newMemStore()
	p := NewPipeline([]sources.Source{habr, cnews}, store, alwaysRelevant, 20)

	saved, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if saved != 3 {
		t.Fatalf("expected 3 inserted, got %d", saved)
	}
	if len(store.items) != 3 {
		t.Fatalf("store holds %d items", len(store.items))
	}
}

func TestRunIsIdempotent(t *testing.T) {
	src := &fakeSource{name: "habr", items: []sources.RawItem{
		{"title": "A", "url": "https://habr.com/1"},
		{"title": "B", "url": "https://habr.com/2"},
	}}

	store := newMemStore()
	p := NewPipeline([]sources.Source{src}, store, alwaysRelevant, 20)

	first, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first != 2 {
		t.Fatalf("first run inserted %d", first)
	}

	second, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second != 0 {
		t.Fatalf("second run over identical output must insert 0, got %d", second)
	}
}

func TestRunSkipsItemsWithoutURL(t *testing.T) {
	src := &fakeSource{name: "habr", items: []sources.RawItem{
		{"title": "no url here"},
		{"title": "B", "url": "https://habr.com/2"},
	}}

	store := newMemStore()
	p := NewPipeline([]sources.Source{src}, store, alwaysRelevant, 20)

	saved, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if saved != 1 {
		t.Fatalf("expected the valid item only, got %d", saved)
	}
}

func TestRunEmptySourceDoesNotBlockOthers(t *testing.T) {
	dead := &fakeSource{name: "cnews"} // a failed fetch yields no items
	alive := &fakeSource{name: "habr", items: []sources.RawItem{
		{"title": "A", "url": "https://habr.com/1"},
	}}

	store := newMemStore()
	p := NewPipeline([]sources.Source{dead, alive}, store, alwaysRelevant, 20)

	saved, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if saved != 1 {
		t.Fatalf("expected 1 item from the healthy source, got %d", saved)
	}
}

func TestRunStoreErrorSkipsItemOnly(t *testing.T) {
	src := &fakeSource{name: "habr", items: []sources.RawItem{
		{"title": "A", "url": "https://habr.com/1"},
	}}

	store := newMemStore()
	store.fail = true
	p := NewPipeline([]sources.Source{src}, store, alwaysRelevant, 20)

	saved, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("insert errors must not fail the cycle: %v", err)
	}
	if saved != 0 {
		t.Fatalf("expected 0 saved, got %d", saved)
	}
}

func TestRunClassifiesEagerly(t *testing.T) {
	src := &fakeSource{name: "habr", items: []sources.RawItem{
		{"title": "Python news", "url": "https://habr.com/1"},
		{"title": "Weather", "url": "https://habr.com/2"},
	}}

	store := newMemStore()
	classify := func(ctx context.Context, title, summary string) (bool, error) {
		return title == "Python news", nil
	}
	p := NewPipeline([]sources.Source{src}, store, classify, 20)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	relevant := store.items[news.MakeNewsID("habr", "https://habr.com/1")]
	irrelevant := store.items[news.MakeNewsID("habr", "https://habr.com/2")]
	if !relevant.IsRelevant {
		t.Errorf("python item must be relevant")
	}
	if irrelevant.IsRelevant {
		t.Errorf("weather item must not be relevant")
	}
}
