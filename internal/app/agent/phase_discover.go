package agent

import (
	"context"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type readyHandler struct{}

func (readyHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	c.deps.MapView.Refresh(ctx)
	c.logger.Printf("mission started run=%s resource=%s goal=%d", c.cfg.RunID, c.cfg.Resource, c.cfg.GoalQuantity)
	return mission.PhaseDiscover
}

type discoverHandler struct{}

func (discoverHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	verdict := c.deps.Scanner.Scan(ctx, c.position, c.radius, c.resourcePredicate())
	switch verdict.State {
	case mission.ScanScanning:
		return mission.PhaseDiscover
	case mission.ScanComplete:
		return mission.PhaseLocate
	default:
		err := &ports.ScanFailedError{Radius: c.radius, Reason: verdict.Reason}
		c.logger.Printf("discover: %v", err)
		c.fail(mission.EventScanFailed, map[string]any{"radius": c.radius, "reason": verdict.Reason})
		c.growRadius()
		return mission.PhaseDiscover
	}
}

func (c *Controller) resourcePredicate() ports.TilePredicate {
	resource := c.cfg.Resource
	excludeStreets := c.cfg.ExcludeStreets
	return func(t world.Tile) bool {
		if t.Content != resource {
			return false
		}
		return !excludeStreets || !t.IsStreet()
	}
}

// maxDroppedRounds is how many Locate rounds in a row may end with every
// target dropped before the scan is widened.
const maxDroppedRounds = 2

type locateHandler struct{}

func (locateHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	if c.roundTargets > 0 && c.roundDropped >= c.roundTargets {
		c.droppedRounds++
	} else {
		c.droppedRounds = 0
	}
	known := c.deps.MapView.Known()
	c.deps.Planner.Build(ctx, known)
	c.deps.Planner.UpdateCosts(ctx, c.position)

	candidates := c.deps.Planner.Locate(c.cfg.Resource)
	targets := make([]world.Point, 0, len(candidates))
	for _, p := range candidates {
		if tile, ok := known.At(p); ok && tile.IsStreet() {
			continue
		}
		targets = append(targets, p)
	}
	c.targets.Replace(targets)
	c.moveFailures = map[world.Point]int{}
	c.pursuit = mission.PursuitResource
	c.emit(mission.EventTargetsLocated, map[string]any{"count": len(targets), "candidates": len(candidates)})

	c.roundTargets, c.roundDropped = len(targets), 0
	if c.targets.Empty() {
		return c.rediscover()
	}
	if c.droppedRounds >= maxDroppedRounds {
		c.logger.Printf("locate: every target unreachable %d rounds running, widening scan", c.droppedRounds)
		c.droppedRounds = 0
		return c.rediscover()
	}
	return mission.PhaseGoto
}
