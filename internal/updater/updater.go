package updater

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"fplbot/internal/betting"
	"fplbot/internal/metrics"
)

// Refresher reloads match data. *fpl.Cache satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Sweeper settles due bets. *betting.Service satisfies it.
type Sweeper interface {
	SettleDueBets(ctx context.Context) (betting.SweepReport, error)
}

type Config struct {
	RefreshInterval time.Duration
	// SweepWithRefresh runs the settlement sweep right after each refresh.
	// Otherwise the sweep gets its own job every SweepInterval.
	SweepWithRefresh bool
	SweepInterval    time.Duration
	// Timeout bounds a single refresh or sweep.
	Timeout time.Duration
}

// Updater keeps FPL data fresh and settles bets on a schedule.
type Updater struct {
	cache   Refresher
	sweeper Sweeper
	log     *zap.Logger
	cfg     Config

	sched  gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

func New(cache Refresher, sweeper Sweeper, log *zap.Logger, cfg Config) (*Updater, error) {
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.RefreshInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Updater{
		cache:   cache,
		sweeper: sweeper,
		log:     log,
		cfg:     cfg,
		sched:   sched,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Start registers the jobs and starts the scheduler. The first refresh runs immediately.
func (u *Updater) Start() error {
	refreshTask := u.Refresh
	if u.cfg.SweepWithRefresh {
		refreshTask = u.Tick
	}

	_, err := u.sched.NewJob(
		gocron.DurationJob(u.cfg.RefreshInterval),
		gocron.NewTask(func() { refreshTask(u.ctx) }),
		gocron.WithName("fpl-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("schedule refresh: %w", err)
	}

	if !u.cfg.SweepWithRefresh {
		_, err = u.sched.NewJob(
			gocron.DurationJob(u.cfg.SweepInterval),
			gocron.NewTask(func() { u.Sweep(u.ctx) }),
			gocron.WithName("bet-sweep"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("schedule sweep: %w", err)
		}
	}

	u.sched.Start()
	u.log.Info("updater started",
		zap.Duration("refresh_interval", u.cfg.RefreshInterval),
		zap.Bool("sweep_with_refresh", u.cfg.SweepWithRefresh),
	)
	return nil
}

// Shutdown cancels running jobs and stops the scheduler.
func (u *Updater) Shutdown() error {
	u.cancel()
	return u.sched.Shutdown()
}

// Tick refreshes match data and then settles due bets. A failed refresh
// still sweeps against the last good snapshot.
func (u *Updater) Tick(ctx context.Context) {
	u.Refresh(ctx)
	u.Sweep(ctx)
}

func (u *Updater) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	if err := u.cache.Refresh(ctx); err != nil {
		metrics.FplRefreshes.WithLabelValues("error").Inc()
		u.log.Warn("fpl refresh failed", zap.Error(err))
		return
	}
	metrics.FplRefreshes.WithLabelValues("ok").Inc()
	metrics.FplLastRefresh.SetToCurrentTime()
}

func (u *Updater) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	_, err := u.sweeper.SettleDueBets(ctx)
	switch {
	case err == nil:
	case errors.Is(err, betting.ErrSweepInProgress):
		u.log.Debug("sweep skipped, previous one still running")
	default:
		u.log.Error("bet sweep failed", zap.Error(err))
	}
}
