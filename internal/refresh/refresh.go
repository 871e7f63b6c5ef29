package refresh

import (
	"context"
	"sync"
	"time"
)

// Job asks for one vehicle's cached record to be rebuilt.
type Job struct {
	VehicleKey string
}

// Refresher runs background refreshes with per-key de-duplication; a key
// already in flight is not enqueued twice.
type Refresher struct {
	ch    chan Job
	inFly sync.Map // vehicle key -> struct{}
	Do    func(ctx context.Context, j Job)
}

func New(capacity int, workerCount int, do func(ctx context.Context, j Job)) *Refresher {
	if capacity <= 0 {
		capacity = 256
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	r := &Refresher{ch: make(chan Job, capacity), Do: do}
	for i := 0; i < workerCount; i++ {
		go r.worker()
	}
	return r
}

func (r *Refresher) Enqueue(j Job) {
	if _, exists := r.inFly.LoadOrStore(j.VehicleKey, struct{}{}); exists {
		return
	}
	select {
	case r.ch <- j:
	default:
		// drop if saturated
		r.inFly.Delete(j.VehicleKey)
	}
}

func (r *Refresher) worker() {
	for j := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		func() {
			defer func() {
				r.inFly.Delete(j.VehicleKey)
				cancel()
			}()
			if r.Do != nil {
				r.Do(ctx, j)
			}
		}()
	}
}
