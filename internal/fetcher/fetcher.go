// Package fetcher implements the periodic sensor poller (SPEC_FULL D1): a
// ticker-driven sweep that measures every registered sensor once per
// period and persists successful readings. Modeled after the teacher's
// services/hal/internal/core poller's ticker + jittered-wait loop,
// generalized from a single device poll to a full-fleet sweep.
package fetcher

import (
	"context"
	"log/slog"
	"time"

	"sensorgate/gateway/registry"
	"sensorgate/gateway/measure"
	"sensorgate/internal/store"
)

// Fetcher owns the registry and store handles needed to poll every
// sensor on a fixed cadence.
type Fetcher struct {
	Registry *registry.Registry
	Store    *store.Store
	Interval time.Duration
	Log      *slog.Logger
}

// Run blocks, sweeping once immediately and then once per Interval, until
// ctx is cancelled.
func (f *Fetcher) Run(ctx context.Context) {
	log := f.Log
	if log == nil {
		log = slog.Default()
	}

	ticker := time.NewTicker(f.Interval)
	defer ticker.Stop()

	f.sweep(ctx, log)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.sweep(ctx, log)
		}
	}
}

// sweep measures every (node, kind, sensor_id) triple the sensor table
// names and persists successful results. A single sensor's failure is
// logged and skipped; it never aborts the rest of the sweep.
func (f *Fetcher) sweep(ctx context.Context, log *slog.Logger) {
	sensors, err := f.Store.AllSensors()
	if err != nil {
		log.Error("fetcher: could not load sensor table", "error", err)
		return
	}

	now := time.Now().UnixMicro()
	for _, s := range sensors {
		kind, ok := measure.ParseKind(s.SensorType)
		if !ok {
			log.Warn("fetcher: unknown sensor kind in sensor table", "kind", s.SensorType)
			continue
		}
		node, err := f.Registry.GetNode(s.NodePublicID)
		if err != nil {
			log.Warn("fetcher: sensor references unknown node", "node", s.NodePublicID, "error", err)
			continue
		}
		value, err := node.Measure(ctx, kind, s.PublicID)
		if err != nil {
			log.Warn("fetcher: measure failed", "node", s.NodePublicID, "kind", kind, "sensor_id", s.PublicID, "error", err)
			continue
		}
		if err := f.Store.InsertSample(s.ID, s.SensorType, value, now); err != nil {
			log.Error("fetcher: could not persist sample", "error", err)
		}
	}
}
