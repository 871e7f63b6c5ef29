package events

import (
	"context"
)

// VehicleUpdated fires whenever a merged vehicle record is (re)persisted.
type VehicleUpdated struct {
	RowID      string
	VehicleKey string
	VehicleID  string
}

type Publisher interface {
	PublishVehicleUpdated(ctx context.Context, evt VehicleUpdated)
	SubscribeVehicleUpdated() <-chan VehicleUpdated
}

type inMemory struct{ ch chan VehicleUpdated }

func NewInMemory(buffer int) Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &inMemory{ch: make(chan VehicleUpdated, buffer)}
}

// PublishVehicleUpdated drops the event when the buffer is full; consumers
// are best-effort.
func (m *inMemory) PublishVehicleUpdated(_ context.Context, evt VehicleUpdated) {
	select {
	case m.ch <- evt:
	default:
	}
}

func (m *inMemory) SubscribeVehicleUpdated() <-chan VehicleUpdated { return m.ch }
