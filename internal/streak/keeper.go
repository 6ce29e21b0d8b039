// Package streak runs the background job that expires lapsed activity streaks.
package streak

import (
	"context"
	"log/slog"
	"time"
)

// Expirer resets the streak when it has lapsed and reports whether it did
type Expirer interface {
	ExpireStreak(ctx context.Context) (bool, error)
}

// Keeper periodically expires lapsed streaks
type Keeper struct {
	expirer  Expirer
	interval time.Duration
}

// NewKeeper creates a new streak worker
func NewKeeper(expirer Expirer, interval time.Duration) *Keeper {
	if interval <= 0 {
		interval = time.Hour
	}

	return &Keeper{
		expirer:  expirer,
		interval: interval,
	}
}

// Start begins the worker in a goroutine
func (k *Keeper) Start(ctx context.Context) {
	go k.run(ctx)
}

func (k *Keeper) run(ctx context.Context) {
	slog.Info("streak worker started", "interval", k.interval)

	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()

	// Run immediately on start
	k.Check(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("streak worker stopped")
			return
		case <-ticker.C:
			k.Check(ctx)
		}
	}
}

// Check runs one expiry cycle
func (k *Keeper) Check(ctx context.Context) {
	slog.Debug("running streak check")

	reset, err := k.expirer.ExpireStreak(ctx)
	if err != nil {
		slog.Error("failed to expire streak", "error", err)
		return
	}
	if reset {
		slog.Info("streak reset after inactivity")
	}
}
