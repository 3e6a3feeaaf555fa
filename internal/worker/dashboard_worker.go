package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/telesales/callops-service/internal/persistence"
	"github.com/telesales/callops-service/internal/reporting"
)

// DashboardCacheKey is where the current snapshot lives in Redis.
const DashboardCacheKey = "callops:dashboard:snapshot"

// DashboardWorker periodically recomputes the dashboard snapshot and caches
// it in Redis so the console's polling endpoint never hits the database.
type DashboardWorker struct {
	reports  *reporting.Service
	cache    *persistence.Redis
	logger   *zap.Logger
	interval time.Duration
	ttl      time.Duration
}

// NewDashboardWorker constructs the worker.
func NewDashboardWorker(reports *reporting.Service, cache *persistence.Redis, logger *zap.Logger, interval, ttl time.Duration) *DashboardWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if ttl <= 0 {
		ttl = 2 * interval
	}
	return &DashboardWorker{
		reports:  reports,
		cache:    cache,
		logger:   logger,
		interval: interval,
		ttl:      ttl,
	}
}

// Run refreshes the snapshot on a fixed interval until the context is
// cancelled. The first refresh happens immediately.
func (w *DashboardWorker) Run(ctx context.Context) {
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("dashboard worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *DashboardWorker) refresh(ctx context.Context) {
	snapshot, err := w.reports.Snapshot(ctx)
	if err != nil {
		w.logger.Warn("dashboard snapshot failed", zap.Error(err))
		return
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		w.logger.Warn("dashboard snapshot marshal failed", zap.Error(err))
		return
	}
	if err := w.cache.Client.Set(ctx, DashboardCacheKey, payload, w.ttl).Err(); err != nil {
		w.logger.Warn("dashboard snapshot cache write failed", zap.Error(err))
	}
}

// CachedSnapshot reads the latest snapshot from Redis. A cache miss falls
// back to computing one inline.
func CachedSnapshot(ctx context.Context, cache *persistence.Redis, reports *reporting.Service) (*reporting.DashboardSnapshot, error) {
	if cache != nil && cache.Client != nil {
		raw, err := cache.Client.Get(ctx, DashboardCacheKey).Bytes()
		if err == nil {
			var snapshot reporting.DashboardSnapshot
			if err := json.Unmarshal(raw, &snapshot); err == nil {
				return &snapshot, nil
			}
		}
	}
	return reports.Snapshot(ctx)
}
