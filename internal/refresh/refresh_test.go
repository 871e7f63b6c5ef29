package refresh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnqueueRunsJob(t *testing.T) {
	done := make(chan string, 1)
	r := New(4, 1, func(ctx context.Context, j Job) {
		done <- j.VehicleKey
	})

	r.Enqueue(Job{VehicleKey: "maruti suzuki|swift|2020"})

	select {
	case key := <-done:
		assert.Equal(t, "maruti suzuki|swift|2020", key)
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
}

func TestEnqueueDropsWhenSaturated(t *testing.T) {
	block := make(chan struct{})
	r := New(1, 1, func(ctx context.Context, j Job) {
		<-block
	})

	// Occupy the single worker, fill the single queue slot, then overflow.
	r.Enqueue(Job{VehicleKey: "a"})
	r.Enqueue(Job{VehicleKey: "b"})
	finished := make(chan struct{})
	go func() {
		r.Enqueue(Job{VehicleKey: "c"})
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a saturated queue")
	}
	close(block)
}
