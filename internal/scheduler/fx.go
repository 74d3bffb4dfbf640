package scheduler

import (
	"context"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(
		func() Config { return Config{SweepInterval: time.Hour} },
		New,
	),
	fx.Invoke(register),
)

func register(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return s.Stop(ctx) },
	})
}
