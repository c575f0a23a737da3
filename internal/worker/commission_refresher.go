// Package worker runs the periodic jobs of the API. Currently that is a
// single job: rebuilding cached coupon aggregates so a crashed
// redemption cannot leave sponsor figures stale forever.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gytx-dev/tombola-api/internal/config"
	"github.com/gytx-dev/tombola-api/internal/pkg/randutil"
	"github.com/gytx-dev/tombola-api/internal/repository"
	"github.com/gytx-dev/tombola-api/internal/repository/dao"
	"github.com/gytx-dev/tombola-api/internal/service"
)

const defaultRefreshInterval = 15 * time.Minute

type CommissionRefresher struct {
	sched       gocron.Scheduler
	tombolaRepo *repository.TombolaRepository
	svc         *service.CommissionService
	interval    time.Duration
}

func NewCommissionRefresher(db *gorm.DB, conf *config.WorkerConfig) (*CommissionRefresher, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("gocron.NewScheduler -> %w", err)
	}

	tombolaRepo := repository.NewTombolaRepository(dao.NewTombolaDAO(db))
	couponRepo := repository.NewCouponRepository(dao.NewCouponDAO(db))
	commissionRepo := repository.NewCommissionRepository(dao.NewCommissionDAO(db))

	rng := randutil.NewLocked()

	interval := defaultRefreshInterval
	if conf != nil && conf.CommissionRefreshMinutes > 0 {
		interval = time.Duration(conf.CommissionRefreshMinutes) * time.Minute
	}

	return &CommissionRefresher{
		sched:       sched,
		tombolaRepo: tombolaRepo,
		svc:         service.NewCommissionService(commissionRepo, couponRepo, tombolaRepo, rng),
		interval:    interval,
	}, nil
}

func (r *CommissionRefresher) Start() {
	_, err := r.sched.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.refresh),
	)
	if err != nil {
		zap.L().Error("failed to schedule commission refresh", zap.Error(err))

		return
	}

	r.sched.Start()
	zap.L().Info("commission refresher started", zap.Duration("interval", r.interval))
}

func (r *CommissionRefresher) Stop() {
	if err := r.sched.Shutdown(); err != nil {
		zap.L().Error("failed to stop commission refresher", zap.Error(err))
	}
}

// refresh recomputes aggregates for every active tombola. The
// recomputation is idempotent, so overlapping runs are harmless.
func (r *CommissionRefresher) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	tombolas, err := r.tombolaRepo.GetAll(ctx)
	if err != nil {
		zap.L().Error("commission refresh: listing tombolas failed", zap.Error(err))

		return
	}

	for i := range tombolas {
		if !tombolas[i].IsActive() {
			continue
		}

		if err := r.svc.RecomputeAllForTombola(ctx, tombolas[i].ID); err != nil {
			zap.L().Error("commission refresh failed",
				zap.Uint("tombola_id", tombolas[i].ID),
				zap.Error(err),
			)

			continue
		}
	}
}
