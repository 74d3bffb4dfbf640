// Package scheduler runs the background sweeps that move time-driven
// state: subscription expiry today, more as they appear.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
)

type Config struct {
	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration
}

type Params struct {
	fx.In

	Config        Config
	Subscriptions subdomain.ISubscriptionService
	Log           *zap.Logger
}

type Scheduler struct {
	interval      time.Duration
	subscriptions subdomain.ISubscriptionService
	log           *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func New(p Params) *Scheduler {
	interval := p.Config.SweepInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		interval:      interval,
		subscriptions: p.Subscriptions,
		log:           p.Log.Named("scheduler"),
		done:          make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(runCtx)
	return nil
}

func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	n, err := s.subscriptions.ExpireDue(ctx)
	if err != nil {
		s.log.Warn("expiry sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("expiry sweep done", zap.Int("expired", n))
	}
}
