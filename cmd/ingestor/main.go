// Command ingestor pulls raw listings from the scraper feed, runs them
// through the processing pipeline and persists the merged vehicles. It can
// run once (the default) or loop on an interval.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/env"
	"github.com/yourorg/vehicle-api/internal/events"
	"github.com/yourorg/vehicle-api/internal/feed"
	"github.com/yourorg/vehicle-api/internal/hydrator"
	"github.com/yourorg/vehicle-api/internal/merge"
	"github.com/yourorg/vehicle-api/internal/pipeline"
	"github.com/yourorg/vehicle-api/internal/store"
)

func main() {
	_ = godotenv.Load()

	baseURL := env.Must("FEED_BASE_URL")
	apiKey := env.Get("FEED_API_KEY", "")
	sources := splitList(env.Get("FEED_SOURCES", "cars24,cardekho,olx"))
	if len(sources) == 0 {
		log.Fatal("FEED_SOURCES resolved to an empty list")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var st *store.Store
	if dsn := env.Get("PG_DSN", ""); dsn != "" {
		var err error
		st, err = store.Open(dsn)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
		defer st.DB.Close()
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := st.Migrate(initCtx); err != nil {
			cancel()
			log.Fatalf("postgres migrate error: %v", err)
		}
		cancel()
	} else {
		log.Printf("[WARN] PG_DSN not set; ingested vehicles will not be persisted")
	}

	processor := pipeline.New()
	processor.Merger = merge.New(env.GetFloat("SIMILARITY_THRESHOLD", merge.DefaultThreshold))

	job := &hydrator.IngestJob{
		Client:    feed.NewClient(baseURL, apiKey, env.GetFloat("FEED_RPS", 2)),
		Hydrator:  &hydrator.Hydrator{Store: st, Pub: events.NewInMemory(64)},
		Processor: processor,
		Snapshot:  dataset.New(),
		Config: hydrator.IngestConfig{
			Sources:              sources,
			PageSize:             env.GetInt("FEED_PAGE_SIZE", 50),
			MaxPagesPerSource:    env.GetInt("FEED_MAX_PAGES", 5),
			Interval:             parseDuration("INGEST_INTERVAL", 0),
			PauseBetweenRequests: parseDuration("FEED_PAUSE", 200*time.Millisecond),
			RequestTimeout:       parseDuration("FEED_TIMEOUT", 10*time.Second),
			MaxPrice:             env.GetFloat("FEED_MAX_PRICE", 0),
		},
	}

	if err := job.Run(ctx); err != nil {
		log.Fatalf("ingest error: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[WARN] invalid duration in %s (%q), using %s", k, v, def)
		return def
	}
	return d
}
