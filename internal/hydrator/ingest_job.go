package hydrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourorg/vehicle-api/internal/dataset"
	"github.com/yourorg/vehicle-api/internal/feed"
	"github.com/yourorg/vehicle-api/internal/pipeline"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

type IngestConfig struct {
	Sources              []string
	PageSize             int
	MaxPagesPerSource    int
	Interval             time.Duration
	PauseBetweenRequests time.Duration
	RequestTimeout       time.Duration
	Provider             string
	Endpoint             string
	MaxPrice             float64
}

// IngestJob periodically pulls raw listings from the scraper feed, runs the
// processing pipeline over each source's batch, and persists the result.
type IngestJob struct {
	Client    *feed.Client
	Hydrator  *Hydrator
	Processor *pipeline.Processor
	Snapshot  *dataset.Snapshot
	Logger    *log.Logger
	Config    IngestConfig
}

func (j *IngestJob) logf(format string, args ...any) {
	if j.Logger != nil {
		j.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (j *IngestJob) validate() error {
	if j == nil {
		return errors.New("nil ingest job")
	}
	if j.Client == nil {
		return errors.New("ingest job missing feed client")
	}
	if j.Processor == nil {
		return errors.New("ingest job missing processor")
	}
	if len(j.Config.Sources) == 0 {
		return errors.New("ingest job requires at least one source")
	}
	if j.Config.Provider == "" {
		j.Config.Provider = "scraper.feed"
	}
	if j.Config.Endpoint == "" {
		j.Config.Endpoint = "api/listings"
	}
	return nil
}

func (j *IngestJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	interval := j.Config.Interval
	if interval <= 0 {
		return j.RunOnce(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.logf("ingest job starting with interval %s (%d source(s))", interval, len(j.Config.Sources))
	if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logf("ingest job initial run error: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			j.logf("ingest job stopping: %v", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logf("ingest job iteration error: %v", err)
			}
		}
	}
}

// RunOnce walks every configured source, processes the combined batch and
// persists it. Fetch failures on one source don't stop the others; the
// processed dataset snapshot is replaced only when at least one source
// yielded listings.
func (j *IngestJob) RunOnce(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	var raws []vehicle.Listing
	var joined error
	for _, rawSource := range j.Config.Sources {
		source := strings.TrimSpace(rawSource)
		if source == "" {
			continue
		}
		listings, err := j.ingestSource(ctx, source)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, feed.ErrDailyLimitExceeded) {
				return err
			}
			joined = errors.Join(joined, err)
			continue
		}
		raws = append(raws, listings...)
	}

	if len(raws) == 0 {
		return joined
	}

	merged := j.Processor.Process(raws)
	if j.Snapshot != nil {
		j.Snapshot.Replace(merged)
	}
	if j.Hydrator.Enabled() {
		if err := j.Hydrator.WriteMerged(ctx, merged); err != nil {
			joined = errors.Join(joined, err)
		}
	}
	j.logf("ingest job persisted %d vehicles from %d raw listings", len(merged), len(raws))
	return joined
}

func (j *IngestJob) ingestSource(ctx context.Context, source string) ([]vehicle.Listing, error) {
	pageSize := j.Config.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	maxPages := j.Config.MaxPagesPerSource
	if maxPages <= 0 {
		maxPages = 5
	}
	timeout := j.Config.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pause := j.Config.PauseBetweenRequests

	var collected []vehicle.Listing
	for page := 1; page <= maxPages; page++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		raw, err := j.Client.FetchListings(reqCtx, source, pageSize, page, "", "", j.Config.MaxPrice)
		cancel()
		if err != nil {
			if errors.Is(err, feed.ErrDailyLimitExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("source %s page %d fetch: %w", source, page, err)
		}
		listings, err := feed.MapPayloadToListings(raw)
		if err != nil {
			return nil, fmt.Errorf("source %s page %d map: %w", source, page, err)
		}
		if len(listings) == 0 {
			if page == 1 {
				j.logf("ingest job source %s returned 0 listings", source)
			}
			break
		}
		if err := j.Hydrator.WriteSnapshot(ctx, j.Config.Provider, j.Config.Endpoint, raw); err != nil {
			j.logf("ingest job source %s page %d snapshot error: %v", source, page, err)
		}
		collected = append(collected, listings...)
		if len(listings) < pageSize {
			break
		}
		if pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(pause):
			}
		}
	}
	return collected, nil
}
