package agent

import (
	"context"

	"streetbuilder/internal/domain/mission"
)

type collectHandler struct{}

func (collectHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	target := c.position
	if c.current != nil {
		target = *c.current
	}

	count, err := c.deps.Collector.Collect(ctx, c.cfg.Resource, target)
	c.refreshPosition()
	if err != nil {
		c.collectAttempts++
		c.logger.Printf("collect: attempt %d at %s: %v", c.collectAttempts, target, err)
		c.fail(mission.EventCollectFailed, map[string]any{"target": target, "attempt": c.collectAttempts, "reason": err.Error()})
		if c.collectAttempts <= c.cfg.CollectRetries {
			return mission.PhaseCollect
		}
		return c.collectMissed()
	}
	c.collectAttempts = 0

	if count <= 0 {
		return c.collectMissed()
	}
	c.deps.Tracker.Add(mission.GoalCollect, c.cfg.Resource, count)
	c.current = nil
	progress := c.deps.Tracker.Progress()
	c.emit(mission.EventCollected, map[string]any{"target": target, "count": count, "collected": progress.Collected, "required": progress.Required})
	if c.deps.Tracker.Completed() > 0 {
		return mission.PhaseBuild
	}
	return mission.PhaseGoto
}

func (c *Controller) collectMissed() mission.Phase {
	c.collectAttempts = 0
	c.current = nil
	if c.targets.Empty() {
		return c.rediscover()
	}
	return mission.PhaseGoto
}
