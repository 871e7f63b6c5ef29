package hydrator

import (
	"context"
	"errors"

	"github.com/yourorg/vehicle-api/internal/events"
	"github.com/yourorg/vehicle-api/internal/store"
	"github.com/yourorg/vehicle-api/internal/vehicle"
)

// Hydrator is the write-behind path: processed batches land in Postgres and
// a vehicle.updated event fires per record.
type Hydrator struct {
	Store *store.Store
	Pub   events.Publisher
}

func (h *Hydrator) Enabled() bool { return h != nil && h.Store != nil }

// WriteSnapshot persists one raw feed payload for replay.
func (h *Hydrator) WriteSnapshot(ctx context.Context, provider, endpoint string, raw []byte) error {
	if !h.Enabled() || len(raw) == 0 {
		return nil
	}
	return h.Store.WriteSnapshot(ctx, provider, endpoint, raw)
}

// WriteMerged upserts every merged record, continuing past per-record
// failures and joining them into one error.
func (h *Hydrator) WriteMerged(ctx context.Context, merged []vehicle.MergedListing) error {
	if !h.Enabled() {
		return nil
	}
	var joined error
	for _, m := range merged {
		res, err := h.Store.UpsertMerged(ctx, m)
		if err != nil {
			joined = errors.Join(joined, err)
			continue
		}
		if h.Pub != nil {
			h.Pub.PublishVehicleUpdated(ctx, events.VehicleUpdated{
				RowID:      res.RowID,
				VehicleKey: res.VehicleKey,
				VehicleID:  m.VehicleID,
			})
		}
	}
	return joined
}
