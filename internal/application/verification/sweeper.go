package verification

import (
	"context"
	"log/slog"
	"time"
)

// Sweepable is anything that can drop its expired entries.
type Sweepable interface {
	Name() string
	Sweep() int
}

// SweepAll runs one sweep over every store and returns the total removed.
func SweepAll(stores ...Sweepable) int {
	total := 0
	for _, s := range stores {
		if n := s.Sweep(); n > 0 {
			slog.Info("swept expired verification codes", "store", s.Name(), "removed", n)
			total += n
		}
	}
	return total
}

// RunSweeper sweeps stores every interval until ctx is cancelled.
// Abandoned flows are dropped even if nobody ever looks the code up again.
func RunSweeper(ctx context.Context, interval time.Duration, stores ...Sweepable) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			SweepAll(stores...)
		}
	}
}
