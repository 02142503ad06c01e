package utils

import (
	"context"
	"time"
)

// SimulateLatency attend d (latence réseau simulée) ou l'annulation du contexte
func SimulateLatency(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
