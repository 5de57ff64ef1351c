package docs

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Resync runs a full library reload on a cron schedule. It backs up the
// watcher on mounts where change notifications are not delivered.
type Resync struct {
	c      *cron.Cron
	logger *slog.Logger
}

// NewResync parses schedule (standard 5-field cron or a descriptor such as
// "@every 10m"). An empty or "off" schedule returns nil, nil.
func NewResync(lib *Library, schedule string, logger *slog.Logger) (*Resync, error) {
	if schedule == "" || schedule == "off" {
		return nil, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if err := lib.Reload(); err != nil {
			logger.Error("scheduled docs resync failed", "error", err)
			return
		}
		logger.Debug("scheduled docs resync completed")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid docs resync schedule %q: %w", schedule, err)
	}
	return &Resync{c: c, logger: logger}, nil
}

func (r *Resync) Start() {
	r.c.Start()
	r.logger.Info("docs resync scheduled")
}

// Stop halts the schedule and waits for a running reload to finish.
func (r *Resync) Stop() {
	<-r.c.Stop().Done()
}
