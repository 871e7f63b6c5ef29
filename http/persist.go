package httpapi

import (
	"context"
	"log"

	"github.com/yourorg/vehicle-api/internal/hydrator"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// persistMerged is the write-behind hook shared by handlers that produce a
// processed batch. Persistence failures are logged, never surfaced to the
// client.
func persistMerged(ctx context.Context, hydr *hydrator.Hydrator, merged []vehicle.MergedListing) {
	if hydr == nil || !hydr.Enabled() || len(merged) == 0 {
		return
	}
	if err := hydr.WriteMerged(ctx, merged); err != nil {
		log.Printf("[WARN] persist merged batch: %v", err)
	}
}
