package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civic-stack/complaint-service/internal/config"
	"github.com/civic-stack/complaint-service/internal/service"
)

// SLAWorker periodically sweeps active complaints past their deadline and
// marks them breached.
type SLAWorker struct {
	slaService *service.SLAService
	cfg        config.SLAMonitorConfig
	logger     *zap.Logger
	stop       chan struct{}
}

// NewSLAWorker creates the worker.
func NewSLAWorker(slaService *service.SLAService, cfg config.SLAMonitorConfig, logger *zap.Logger) *SLAWorker {
	return &SLAWorker{
		slaService: slaService,
		cfg:        cfg,
		logger:     logger,
		stop:       make(chan struct{}),
	}
}

// Start launches the sweep loop. It runs one sweep immediately, then on the
// configured interval until Stop or context cancellation.
func (w *SLAWorker) Start(ctx context.Context) {
	if !w.cfg.Enabled {
		w.logger.Info("sla monitor disabled")
		return
	}

	go func() {
		w.sweep(ctx)

		ticker := time.NewTicker(w.cfg.Interval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				w.sweep(ctx)
			case <-w.stop:
				w.logger.Info("sla monitor stopped")
				return
			case <-ctx.Done():
				w.logger.Info("sla monitor context cancelled")
				return
			}
		}
	}()
}

// Stop halts the sweep loop.
func (w *SLAWorker) Stop() {
	close(w.stop)
}

func (w *SLAWorker) sweep(ctx context.Context) {
	count, err := w.slaService.SweepBreaches(ctx, w.cfg.BatchSize)
	if err != nil {
		w.logger.Warn("sla sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		w.logger.Info("marked complaints sla-breached", zap.Int("count", count))
	}
}
