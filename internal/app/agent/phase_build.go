package agent

import (
	"context"
	"errors"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type buildHandler struct{}

func (buildHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	if (c.cfg.StagingPoint != nil || c.relocation != nil) && !c.siteReached {
		return mission.PhaseFind
	}
	if c.cfg.BuildMode == mission.BuildPatterned {
		return c.buildPattern(ctx)
	}
	c.stepOntoSite(ctx)

	err := c.deps.Constructor.Build(ctx, c.cfg.BuildDirection, c.cfg.BuildLength)
	c.refreshPosition()
	switch {
	case err == nil:
		c.relocation = nil
		c.emit(mission.EventBuildCompleted, map[string]any{
			"mode":      string(mission.BuildSimple),
			"direction": string(c.cfg.BuildDirection),
			"length":    c.cfg.BuildLength,
		})
		return c.afterBuild()
	case errors.Is(err, ports.ErrMaterialShortage):
		c.logger.Printf("build: %v, back to discover", err)
		c.fail(mission.EventMaterialShortage, map[string]any{"reason": err.Error()})
		c.siteReached = false
		return c.rediscover()
	case errors.Is(err, ports.ErrBlocked):
		return c.relocate(err)
	default:
		c.logger.Printf("build: retry after %v", err)
		c.fail(mission.EventBuildFailed, map[string]any{"reason": err.Error()})
		return mission.PhaseBuild
	}
}

// relocate gives up on the current origin after a segment turned out to be
// unbuildable. The nearest untried known origin with a clear run becomes the
// new site; without one the map has to grow first.
func (c *Controller) relocate(cause error) mission.Phase {
	c.triedSites[c.position] = true
	c.siteReached = false
	site, ok := c.nextBuildSite()
	c.fail(mission.EventBuildBlocked, map[string]any{"reason": cause.Error(), "at": c.position, "relocating": ok})
	if !ok {
		c.logger.Printf("build: %v, no known site left, back to discover", cause)
		c.relocation = nil
		return c.rediscover()
	}
	c.logger.Printf("build: %v, moving to %s", cause, site)
	c.triedSites[site] = true
	c.relocation = &site
	return mission.PhaseFind
}

// nextBuildSite prefers origins whose segment is fully discovered, then the
// closest one. Segments running off the map are never picked.
func (c *Controller) nextBuildSite() (world.Point, bool) {
	known := c.deps.MapView.Known()
	dir, length := c.cfg.BuildDirection, c.cfg.BuildLength
	best, bestUnknown, found := world.Point{}, 0, false
	for _, p := range known.Points() {
		if c.triedSites[p] || !known[p].Passable || !c.inWorld(p.Add(scale(dir.Delta(), length))) {
			continue
		}
		unknown, ok := known.BuildableRun(p, dir, length)
		if !ok {
			continue
		}
		closer := p.Manhattan(c.position) < best.Manhattan(c.position)
		if !found || unknown < bestUnknown || (unknown == bestUnknown && closer) {
			best, bestUnknown, found = p, unknown, true
		}
	}
	return best, found
}

func (c *Controller) inWorld(p world.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < c.cfg.WorldSize && p.Y < c.cfg.WorldSize
}

func scale(d world.Point, n int) world.Point {
	return world.Point{X: d.X * n, Y: d.Y * n}
}

// stepOntoSite takes the last step onto a relocation site that navigation
// stopped one tile short of.
func (c *Controller) stepOntoSite(ctx context.Context) {
	if c.relocation == nil || !c.position.Adjacent(*c.relocation) {
		return
	}
	dir, _ := world.DirectionTo(c.position, *c.relocation)
	if err := c.deps.Mover.Move(ctx, dir); err != nil {
		c.logger.Printf("build: step onto %s: %v", *c.relocation, err)
		return
	}
	c.deps.MapView.Refresh(ctx)
	c.refreshPosition()
}

// buildPattern plays the whole step table in one tick. Every primitive is
// best-effort; failures are only counted.
func (c *Controller) buildPattern(ctx context.Context) mission.Phase {
	failures := 0
	for i, step := range c.cfg.Pattern {
		if step.Clear != "" {
			if err := c.deps.Constructor.Clear(ctx, step.Clear); err != nil {
				failures++
				c.logger.Printf("build: step %d clear %s: %v", i, step.Clear, err)
			}
		}
		if step.Build != "" {
			if err := c.deps.Constructor.Build(ctx, step.Build, 1); err != nil {
				failures++
				c.logger.Printf("build: step %d build %s: %v", i, step.Build, err)
			}
		}
		if step.Move != "" {
			if err := c.deps.Mover.Move(ctx, step.Move); err != nil {
				failures++
				c.logger.Printf("build: step %d move %s: %v", i, step.Move, err)
			}
		}
	}
	c.deps.MapView.Refresh(ctx)
	c.refreshPosition()
	c.emit(mission.EventBuildCompleted, map[string]any{
		"mode":     string(mission.BuildPatterned),
		"steps":    len(c.cfg.Pattern),
		"failures": failures,
	})
	return c.afterBuild()
}

func (c *Controller) afterBuild() mission.Phase {
	if len(c.cfg.Dance) > 0 {
		return mission.PhaseDance
	}
	return mission.PhaseTerminate
}

type danceHandler struct{}

func (danceHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	for _, d := range c.cfg.Dance {
		if err := c.deps.Mover.Move(ctx, d); err != nil {
			c.logger.Printf("dance: %s: %v", d, err)
		}
	}
	c.deps.MapView.Refresh(ctx)
	c.refreshPosition()
	return mission.PhaseTerminate
}

type terminateHandler struct{}

func (terminateHandler) Handle(ctx context.Context, c *Controller) mission.Phase {
	if c.terminated {
		return mission.PhaseTerminate
	}
	c.terminated = true
	progress := c.deps.Tracker.Progress()
	c.emit(mission.EventMissionCompleted, map[string]any{"collected": progress.Collected, "position": c.position})
	c.logger.Printf("mission completed run=%s ticks=%d", c.cfg.RunID, c.tick)
	if c.deps.Presenter != nil {
		c.deps.Presenter.OnTerminate(ctx, c.Snapshot())
	}
	return mission.PhaseTerminate
}
