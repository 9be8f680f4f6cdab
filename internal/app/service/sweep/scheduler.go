package sweep

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/lumabill/biller/pkg/config"
)

const scanTimeout = 5 * time.Minute

// registerScheduler ties the scans to process lifecycle: a daily tick for the
// due/overdue scans and a weekly tick for cleanup. A crash mid-scan is safe;
// notification existence is the checkpoint and the next tick resumes.
func registerScheduler(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, svc *Service) {
	if cfg.Sweep.DisableScheduler {
		log.Infow("sweep scheduler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go runLoop(ctx, log, cfg, svc)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func runLoop(ctx context.Context, log *zap.SugaredLogger, cfg *cfgpkg.Config, svc *Service) {
	scanEvery := cfg.Sweep.ScanInterval
	if scanEvery <= 0 {
		scanEvery = 24 * time.Hour
	}
	cleanupEvery := cfg.Sweep.CleanupInterval
	if cleanupEvery <= 0 {
		cleanupEvery = 7 * 24 * time.Hour
	}

	scanTicker := time.NewTicker(scanEvery)
	defer scanTicker.Stop()
	cleanupTicker := time.NewTicker(cleanupEvery)
	defer cleanupTicker.Stop()

	runScans(ctx, log, svc)

	for {
		select {
		case <-ctx.Done():
			return
		case <-scanTicker.C:
			runScans(ctx, log, svc)
		case <-cleanupTicker.C:
			runCleanup(ctx, log, svc)
		}
	}
}

func runScans(ctx context.Context, log *zap.SugaredLogger, svc *Service) {
	runCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	now := time.Now()
	if n, err := svc.SweepDueSoon(runCtx, now); err != nil {
		log.Errorw("due-soon sweep failed", "err", err)
	} else {
		log.Infow("due-soon sweep completed", "notified", n)
	}
	if n, err := svc.SweepOverdue(runCtx, now); err != nil {
		log.Errorw("overdue sweep failed", "err", err)
	} else {
		log.Infow("overdue sweep completed", "notified", n)
	}
}

func runCleanup(ctx context.Context, log *zap.SugaredLogger, svc *Service) {
	runCtx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	if n, err := svc.CleanupNotifications(runCtx, time.Now()); err != nil {
		log.Errorw("notification cleanup failed", "err", err)
	} else {
		log.Infow("notification cleanup completed", "removed", n)
	}
}
