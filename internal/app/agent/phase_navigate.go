package agent

import (
	"context"

	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

// maxMoveFailures bounds how often one target is re-routed after a failed
// step before it is abandoned.
const maxMoveFailures = 3

type gotoHandler struct{}

func (gotoHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	if c.actions.Empty() {
		if c.targets.Empty() {
			return c.targetsExhausted()
		}
		target, _ := c.targets.Pop()
		c.current = &target

		c.deps.Planner.UpdateCosts(ctx, c.position)
		route, err := c.deps.Planner.Route(ctx, target)
		if err != nil {
			c.logger.Printf("goto: drop target %s: %v", target, err)
			c.fail(mission.EventTargetDropped, map[string]any{"target": target, "reason": err.Error()})
			c.current = nil
			c.dropTarget()
			if c.targets.Empty() {
				return c.targetsExhausted()
			}
			return mission.PhaseGoto
		}
		if len(route) == 0 {
			if err := c.deps.Mover.Move(ctx, c.cfg.OrientDirection); err != nil {
				c.logger.Printf("goto: orienting move %s: %v", c.cfg.OrientDirection, err)
			}
			c.deps.MapView.Refresh(ctx)
			c.refreshPosition()
			return c.arrived()
		}
		c.actions.Load(route)
	}

	if c.actions.Len() > 1 {
		action, _ := c.actions.Pop()
		if err := c.execute(ctx, action); err != nil {
			c.logger.Printf("goto: %s failed at %s: %v", action, c.robot.Coordinate, err)
			c.fail(mission.EventMoveFailed, map[string]any{"action": action.String(), "reason": err.Error()})
			c.actions.Clear()
			c.refreshPosition()
			if c.current != nil {
				target := *c.current
				c.current = nil
				c.moveFailures[target]++
				if c.moveFailures[target] < maxMoveFailures {
					c.targets.PushFront(target)
				} else {
					c.dropTarget()
				}
			}
			c.deps.Planner.Build(ctx, c.deps.MapView.Known())
			if c.targets.Empty() {
				return c.targetsExhausted()
			}
			return mission.PhaseGoto
		}
		c.refreshPosition()
	}

	// The last step is never taken: one tile short counts as arrived.
	if c.actions.Len() == 1 {
		c.actions.Clear()
		return c.arrived()
	}
	return mission.PhaseGoto
}

func (c *Controller) dropTarget() {
	if c.pursuit == mission.PursuitResource {
		c.roundDropped++
	}
}

func (c *Controller) execute(ctx context.Context, action mission.Action) error {
	if action.Kind == mission.ActionTeleport {
		return c.deps.Mover.Teleport(ctx, action.Target)
	}
	if err := c.deps.Mover.Move(ctx, action.Direction); err != nil {
		return err
	}
	c.deps.MapView.Refresh(ctx)
	return nil
}

func (c *Controller) arrived() mission.Phase {
	if c.pursuit == mission.PursuitSite {
		c.siteReached = true
		return mission.PhaseBuild
	}
	return mission.PhaseCollect
}

func (c *Controller) targetsExhausted() mission.Phase {
	if c.pursuit == mission.PursuitSite {
		c.logger.Printf("goto: staging site unreachable, building at %s", c.position)
		c.siteReached = true
		return mission.PhaseBuild
	}
	return mission.PhaseLocate
}

type findHandler struct{}

func (findHandler) Handle(_ context.Context, c *Controller) mission.Phase {
	site := c.position
	switch {
	case c.relocation != nil:
		site = *c.relocation
	case c.cfg.StagingPoint != nil:
		site = *c.cfg.StagingPoint
	}
	c.targets.Replace([]world.Point{site})
	c.actions.Clear()
	c.current = nil
	c.pursuit = mission.PursuitSite
	return mission.PhaseGoto
}
