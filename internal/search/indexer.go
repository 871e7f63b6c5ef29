package search

import (
	"context"
	"log"
	"time"

	"github.com/yourorg/vehicle-api/internal/events"
)

// Indexer is a stub that consumes vehicle.updated events and logs them.
// Swap this with a real search-index client later.
type Indexer struct {
	Pub events.Publisher
}

func (i *Indexer) Run(ctx context.Context) {
	sub := i.Pub.SubscribeVehicleUpdated()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-sub:
			// TODO: map and upsert into the search index
			log.Printf("indexer: vehicle.updated id=%s key=%s at=%s", evt.VehicleID, evt.VehicleKey, time.Now().Format(time.RFC3339))
		}
	}
}
