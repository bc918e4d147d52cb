package bridge

import (
	"context"
	"time"

	"github.com/librescoot/audio-mixer-bridge/pkg/wire"
)

// Run drives the two periodic concerns the orchestrator owns: a fixed-
// interval full status broadcast, and a faster session-change poll that
// only broadcasts when PollSessionChange detects a difference. Run blocks
// until ctx is canceled.
func (o *Orchestrator) Run(ctx context.Context, statusInterval, sessionPollInterval time.Duration) {
	if err := o.BroadcastStatus(wire.ReasonStartup, ""); err != nil {
		o.logf("startup broadcast failed: %v", err)
	}

	statusTicker := time.NewTicker(statusInterval)
	defer statusTicker.Stop()

	pollTicker := time.NewTicker(sessionPollInterval)
	defer pollTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-statusTicker.C:
			if err := o.BroadcastStatus(wire.ReasonPeriodic, ""); err != nil {
				o.logf("periodic broadcast failed: %v", err)
			}
		case <-pollTicker.C:
			if err := o.PollSessionChange(); err != nil {
				o.logf("session poll failed: %v", err)
			}
		}
	}
}

func (o *Orchestrator) logf(format string, args ...interface{}) {
	if o.logger == nil {
		return
	}
	o.logger.Warnf(format, args...)
}
