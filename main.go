package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/env"
	"github.com/yourorg/vehicle-api/internal/events"
	"github.com/yourorg/vehicle-api/internal/export"
	"github.com/yourorg/vehicle-api/internal/hydrator"
	"github.com/yourorg/vehicle-api/internal/logger"
	"github.com/yourorg/vehicle-api/internal/merge"
	"github.com/yourorg/vehicle-api/internal/pipeline"
	"github.com/yourorg/vehicle-api/internal/recommend"
	"github.com/yourorg/vehicle-api/internal/redisx"
	"github.com/yourorg/vehicle-api/internal/refresh"
	"github.com/yourorg/vehicle-api/internal/search"
	"github.com/yourorg/vehicle-api/internal/store"

	httpapi "github.com/yourorg/vehicle-api/http"
	httpv1 "github.com/yourorg/vehicle-api/http/v1"
)

func main() {
	_ = godotenv.Load()

	port := env.GetInt("PORT", 4002)
	threshold := env.GetFloat("SIMILARITY_THRESHOLD", merge.DefaultThreshold)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redisx.New(env.Get("REDIS_ADDR", "localhost:6379"), env.Get("REDIS_PASSWORD", ""), env.GetInt("REDIS_DB", 0))
	{
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx); err != nil {
			log.Printf("[WARN] redis unreachable, caching degraded: %v", err)
		}
		cancel()
	}

	var st *store.Store
	if dsn := env.Get("PG_DSN", ""); dsn != "" {
		var err error
		st, err = store.Open(dsn)
		if err != nil {
			log.Fatalf("store open error: %v", err)
		}
		defer st.DB.Close()
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := st.Ping(initCtx); err != nil {
			cancel()
			log.Fatalf("postgres ping error: %v", err)
		}
		if err := st.Migrate(initCtx); err != nil {
			cancel()
			log.Fatalf("postgres migrate error: %v", err)
		}
		cancel()
	} else {
		log.Printf("[WARN] PG_DSN not set; persistence disabled")
	}

	pub := events.NewInMemory(256)
	hyd := &hydrator.Hydrator{Store: st, Pub: pub}

	snapshot := dataset.New()
	processor := pipeline.New()
	processor.Merger = merge.New(threshold)

	ranker := recommend.New(nil, env.GetInt("MAX_RECOMMENDATIONS", recommend.DefaultMaxResults))
	exporter := export.New(env.Get("EXPORT_DIR", "exports"))

	// Stale resolve entries are simply dropped; the next request rebuilds
	// them from the snapshot/store.
	refresher := refresh.New(256, 2, func(ctx context.Context, j refresh.Job) {
		if err := rdb.Del(ctx, "veh:key:"+j.VehicleKey); err != nil {
			log.Printf("[WARN] refresh drop %s: %v", j.VehicleKey, err)
		}
	})

	indexer := &search.Indexer{Pub: pub}
	go indexer.Run(ctx)

	router := BuildRouter(routerDeps{
		Process:   httpapi.ProcessDeps{Processor: processor, Snapshot: snapshot, Hydrator: hyd},
		Search:    httpapi.SearchDeps{Snapshot: snapshot},
		Recommend: httpapi.RecommendDeps{Snapshot: snapshot, Ranker: ranker, Redis: rdb, CacheTTL: 5 * time.Minute},
		Reports:   httpapi.ReportDeps{Snapshot: snapshot},
		Export:    httpapi.ExportDeps{Snapshot: snapshot, Exporter: exporter},
		Resolve: httpv1.ResolveDeps{
			Redis:       rdb,
			Store:       st,
			Snapshot:    snapshot,
			Refetch:     func(key string) { refresher.Enqueue(refresh.Job{VehicleKey: key}) },
			KnownBrands: recommend.DefaultKnownBrands(),
			CacheTTL:    time.Hour,
			StaleAfter:  5 * time.Minute,
			NegativeTTL: time.Minute,
		},
	})

	log.Printf("vehicle-api listening on :%d", port)
	if err := http.ListenAndServe(fmt.Sprintf(":%d", port), logger.Middleware(router)); err != nil {
		log.Fatal(err)
	}
}
