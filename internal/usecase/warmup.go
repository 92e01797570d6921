package usecase

import (
	"context"
	"log/slog"
	"time"

	"CardioSense/internal/ports"
)

// Warmup keeps the remote classifier awake by probing its health endpoint on
// a schedule, so user submissions don't pay the cold-start penalty.
type Warmup struct {
	driver ports.Probe
	client ports.PredictionClient
	logger *slog.Logger
}

// NewWarmup wires the probe driver with the gateway health operation.
func NewWarmup(driver ports.Probe, client ports.PredictionClient, logger *slog.Logger) *Warmup {
	return &Warmup{driver: driver, client: client, logger: logger}
}

// Start registers the health ping with the probe driver.
func (w *Warmup) Start(ctx context.Context) error {
	if w.driver == nil || w.client == nil {
		return nil
	}

	job := func(time.Time) {
		if err := w.client.Health(ctx); err != nil {
			if w.logger != nil {
				w.logger.Warn("health probe failed", "error", err)
			}
			return
		}
		if w.logger != nil {
			w.logger.Debug("backend healthy")
		}
	}

	return w.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying probe.
func (w *Warmup) Stop(ctx context.Context) error {
	if w.driver == nil {
		return nil
	}
	return w.driver.Stop(ctx)
}
