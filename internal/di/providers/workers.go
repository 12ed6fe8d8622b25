package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/singlesjukebox/jukebox-server/internal/config"
	"github.com/singlesjukebox/jukebox-server/internal/logger"
	"github.com/singlesjukebox/jukebox-server/internal/scheduler"
	"github.com/singlesjukebox/jukebox-server/internal/service"
)

// sessionGCSpec runs the session store value-log GC at the top of every hour.
const sessionGCSpec = "0 * * * *"

// SchedulerHandle wraps the cron scheduler with shutdown capability.
type SchedulerHandle struct {
	*scheduler.Scheduler
}

// Shutdown implements do.Shutdownable.
func (h *SchedulerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Stop(ctx)
}

// ProvideScheduler registers the periodic jobs and starts them: the publish
// sweep for songs whose date has come, and session store GC.
func ProvideScheduler(i do.Injector) (*SchedulerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	publishService := do.MustInvoke[*service.PublishService](i)
	sessionHandle := do.MustInvoke[*SessionStoreHandle](i)

	sched, err := scheduler.New(cfg.Publish.Timezone, log.For("scheduler"))
	if err != nil {
		return nil, err
	}

	err = sched.Add("publish-due", cfg.Publish.Schedule, func(ctx context.Context) error {
		n, err := publishService.PublishDue(ctx)
		if n > 0 {
			log.Info("Scheduled songs published", "count", n)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	err = sched.Add("session-gc", sessionGCSpec, func(context.Context) error {
		return sessionHandle.RunGC()
	})
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Info("Scheduler started", "jobs", sched.Len())

	return &SchedulerHandle{Scheduler: sched}, nil
}
