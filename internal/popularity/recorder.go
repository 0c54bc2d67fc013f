package popularity

import (
	"context"
	"fmt"

	"github.com/dkoval/milesworth/internal/kafka"
)

// Counter is the write side of the route-popularity counters.
type Counter interface {
	IncrementRoute(ctx context.Context, origin, destination string) error
}

// Recorder folds search events into per-route counters. Cache hits count
// too: a repeated search is still interest in the route.
type Recorder struct {
	counter Counter
}

func NewRecorder(counter Counter) *Recorder {
	return &Recorder{counter: counter}
}

func (r *Recorder) Record(ctx context.Context, event kafka.SearchEvent) error {
	if event.Query.Origin == "" || event.Query.Destination == "" {
		return fmt.Errorf("search event %s has empty route", event.ID)
	}
	return r.counter.IncrementRoute(ctx, event.Query.Origin, event.Query.Destination)
}
