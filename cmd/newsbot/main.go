package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"newsbot/internal/broker"
	"newsbot/internal/config"
	"newsbot/internal/gemini"
	"newsbot/internal/ingest"
	"newsbot/internal/logger"
	"newsbot/internal/metrics"
	"newsbot/internal/publish"
	"newsbot/internal/relevance"
	"newsbot/internal/scheduler"
	"newsbot/internal/sources"
	"newsbot/internal/storage"
	"newsbot/internal/telegram"
)

type app struct {
	cfg      *config.Config
	store    *storage.Store
	broker   *broker.Client
	sched    *scheduler.Scheduler
	pipeline *ingest.Pipeline
	selector *publish.Selector
	aiClient *gemini.Client
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.close()

	a.sched.Start(ctx)
	defer a.sched.Stop()

	go a.serveHTTP()

	logger.Info("newsbot running",
		"ingest_interval", cfg.IngestInterval,
		"publish_interval", cfg.PublishInterval)

	<-ctx.Done()
	logger.Info("shutting down")
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	store, err := storage.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	brokerClient, err := broker.NewClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	aiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		return nil, err
	}

	classifier := relevance.NewClassifier(aiClient, cfg.Keywords, cfg.SimilarityThreshold)

	srcs := []sources.Source{
		sources.NewHabrSource(nil),
		sources.NewCNewsSource(nil),
	}
	if feeds, err := sources.LoadFeeds(cfg.FeedsConfigPath); err != nil {
		logger.Warn("rss feeds config not loaded, rss source disabled", "path", cfg.FeedsConfigPath, "error", err)
	} else if len(feeds) > 0 {
		srcs = append(srcs, sources.NewRSSSource(feeds))
	}

	pipeline := ingest.NewPipeline(srcs, store, classifier.IsRelevant, cfg.MaxFetchPerSource)

	transport := telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, cfg.RetryAttempts, cfg.RetryDelay)
	selector := publish.NewSelector(store, aiClient, transport)

	sched := scheduler.New()
	sched.Register("ingest", cfg.IngestInterval, func(ctx context.Context) error {
		_, err := pipeline.Run(ctx)
		return err
	})
	sched.Register("publish", cfg.PublishInterval, func(ctx context.Context) error {
		_, _, err := selector.RunOnce(ctx)
		return err
	})
	sched.Register("ping", cfg.PingInterval, brokerClient.Ping)

	return &app{
		cfg:      cfg,
		store:    store,
		broker:   brokerClient,
		sched:    sched,
		pipeline: pipeline,
		selector: selector,
		aiClient: aiClient,
	}, nil
}

func (a *app) close() {
	a.aiClient.Close()
	if err := a.broker.Close(); err != nil {
		logger.Warn("broker close failed", "error", err)
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("store close failed", "error", err)
	}
}

func (a *app) serveHTTP() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/metrics", a.metricsHandler)
	mux.HandleFunc("/news/scrape_and_save", a.scrapeHandler)
	mux.HandleFunc("/telegram/post", a.postHandler)

	logger.Info("starting http server", "addr", a.cfg.HTTPAddr)
	if err := http.ListenAndServe(a.cfg.HTTPAddr, mux); err != nil {
		logger.Error("http server error", "error", err)
	}
}

func (a *app) healthHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	brokerOK := a.broker.Ping(ctx) == nil
	storeOK := a.store.Ping(ctx) == nil

	status, code := "ok", http.StatusOK
	if !brokerOK || !storeOK {
		status, code = "error", http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status": status,
		"redis":  brokerOK,
		"db":     storeOK,
		"jobs":   a.sched.JobNames(),
	})
}

func (a *app) metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	if dbStats, err := a.store.Stats(r.Context()); err == nil {
		for k, v := range dbStats {
			stats[k] = v
		}
	}

	writeJSON(w, http.StatusOK, stats)
}

// scrapeHandler triggers one ingest cycle on demand and reports how many new
// records were inserted.
func (a *app) scrapeHandler(w http.ResponseWriter, r *http.Request) {
	saved, err := a.pipeline.Run(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": saved})
}

// postHandler triggers one publish cycle on demand.
func (a *app) postHandler(w http.ResponseWriter, r *http.Request) {
	outcome, newsID, err := a.selector.RunOnce(r.Context())

	code := http.StatusOK
	resp := map[string]interface{}{"outcome": outcome.String()}
	if newsID != "" {
		resp["news_id"] = newsID
	}
	if err != nil {
		resp["error"] = err.Error()
		code = http.StatusBadGateway
	}

	writeJSON(w, code, resp)
}

// writeJSON sets the content type before the status line so error responses
// carry it too.
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("encode response failed", "error", err)
	}
}
