package metrics

import (
	"context"
	"log"
	"time"

	"github.com/dkoval/milesworth/internal/repository"
)

// StartDBCollector periodically refreshes the fare row count gauge. The
// fares database is read-only, so a slow interval is plenty.
func StartDBCollector(ctx context.Context, repo repository.FlightRepository, interval time.Duration) {
	if repo == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		updateFareRows(ctx, repo)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				updateFareRows(ctx, repo)
			}
		}
	}()
}

func updateFareRows(ctx context.Context, repo repository.FlightRepository) {
	n, err := repo.CountFlights(ctx)
	if err != nil {
		log.Printf("metrics count flights: %v", err)
		return
	}
	SetFareRowCount(n)
}
