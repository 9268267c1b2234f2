package agent

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/robot"
	"streetbuilder/internal/domain/world"
)

// Config holds the mission parameters the controller runs with; zero values
// fall back to defaults in New.
type Config struct {
	RunID          string
	WorldSize      int
	InitialRadius  int
	Resource       world.Content
	GoalQuantity   int
	ExcludeStreets bool
	CollectRetries int

	BuildMode      mission.BuildMode
	BuildDirection world.Direction
	BuildLength    int
	Pattern        []mission.BuildStep
	Dance          []world.Direction
	StagingPoint   *world.Point

	// OrientDirection is the step taken when a route comes back empty
	// because the robot already stands on its target.
	OrientDirection world.Direction
}

func (c Config) withDefaults() Config {
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.InitialRadius < 1 {
		c.InitialRadius = 1
	}
	if c.WorldSize < c.InitialRadius {
		c.WorldSize = c.InitialRadius
	}
	if c.Resource == world.ContentNone {
		c.Resource = world.ContentRock
	}
	if c.GoalQuantity < 1 {
		c.GoalQuantity = 1
	}
	if c.BuildMode == "" {
		c.BuildMode = mission.BuildSimple
	}
	if c.BuildDirection == "" {
		c.BuildDirection = world.East
	}
	if c.BuildLength < 1 {
		c.BuildLength = 1
	}
	if c.OrientDirection == "" {
		c.OrientDirection = world.North
	}
	return c
}

// Deps are the collaborators the controller drives. Metrics and Presenter
// may be nil.
type Deps struct {
	Scanner     ports.Scanner
	Planner     ports.Planner
	Collector   ports.Collector
	Constructor ports.Constructor
	Tracker     ports.ProgressTracker
	Mover       ports.Mover
	MapView     ports.MapView
	Presenter   ports.Presenter
	Metrics     ports.MissionMetrics
	Logger      *log.Logger
	Now         func() time.Time
}

// TickReport summarises one decision step for the host.
type TickReport struct {
	Tick     uint64
	From     mission.Phase
	To       mission.Phase
	Events   []mission.Event
	Snapshot mission.Snapshot
}

func (r TickReport) Changed() bool { return r.From != r.To }

// Controller is the mission state machine. It is not safe for concurrent
// use; the host calls Tick from a single goroutine.
type Controller struct {
	cfg      Config
	deps     Deps
	robot    *robot.Robot
	registry map[mission.Phase]PhaseSpec
	logger   *log.Logger

	phase    mission.Phase
	pursuit  mission.Pursuit
	targets  mission.TargetQueue
	actions  mission.ActionQueue
	current  *world.Point
	position world.Point
	radius   int

	collectAttempts int
	moveFailures    map[world.Point]int
	siteReached     bool
	relocation      *world.Point
	triedSites      map[world.Point]bool
	terminated      bool

	// Targets handed out by the last Locate and how many of them Goto
	// dropped as unreachable.
	roundTargets  int
	roundDropped  int
	droppedRounds int

	tick    uint64
	pending []mission.Event
}

func New(cfg Config, deps Deps, r *robot.Robot) *Controller {
	cfg = cfg.withDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if r == nil {
		r = robot.New(world.Point{})
	}
	return &Controller{
		cfg:      cfg,
		deps:     deps,
		robot:    r,
		registry: phaseRegistry(),
		logger:   logger,
		phase:    mission.PhaseReady,
		pursuit:  mission.PursuitResource,
		position: r.Coordinate,
		radius:   cfg.InitialRadius,

		moveFailures: map[world.Point]int{},
		triedSites:   map[world.Point]bool{},
	}
}

func (c *Controller) RunID() string { return c.cfg.RunID }

func (c *Controller) Phase() mission.Phase { return c.phase }

func (c *Controller) Terminated() bool { return c.terminated }

// Tick runs exactly one phase handler and applies at most one transition.
func (c *Controller) Tick(ctx context.Context) TickReport {
	c.tick++
	c.refreshPosition()

	from := c.phase
	next := from
	spec, ok := c.registry[from]
	if !ok {
		c.rejectTransition(from, from)
	} else {
		next = spec.Handler.Handle(ctx, c)
		if next != from && !spec.Allows(next) {
			c.rejectTransition(from, next)
			next = from
		}
	}
	if next != from {
		c.emit(mission.EventPhaseChanged, map[string]any{"from": string(from), "to": string(next)})
		if c.deps.Metrics != nil {
			c.deps.Metrics.RecordTransition(from, next)
		}
		c.phase = next
	}
	if c.deps.Metrics != nil {
		c.deps.Metrics.RecordTick(from)
	}

	snap := c.Snapshot()
	if c.deps.Presenter != nil {
		c.deps.Presenter.OnTick(ctx, snap)
	}
	events := c.pending
	c.pending = nil
	return TickReport{Tick: c.tick, From: from, To: c.phase, Events: events, Snapshot: snap}
}

// HandleEvent forwards a world notification to the presentation layer.
func (c *Controller) HandleEvent(ctx context.Context, evt world.Event) {
	if c.deps.Presenter != nil {
		c.deps.Presenter.OnEvent(ctx, evt)
	}
}

func (c *Controller) Snapshot() mission.Snapshot {
	snap := mission.Snapshot{
		RunID:      c.cfg.RunID,
		Tick:       c.tick,
		Phase:      c.phase,
		Pursuit:    c.pursuit,
		Position:   c.position,
		Radius:     c.radius,
		Targets:    c.targets.Items(),
		Actions:    c.actions.Items(),
		Energy:     c.robot.Energy.Current,
		Backpack:   map[world.Content]int{},
		Terminated: c.terminated,
	}
	if c.current != nil {
		p := *c.current
		snap.Current = &p
	}
	if c.deps.Tracker != nil {
		snap.Progress = c.deps.Tracker.Progress()
	}
	for k, v := range c.robot.Backpack.Contents {
		snap.Backpack[k] = v
	}
	return snap
}

func (c *Controller) Energy() robot.Energy { return c.robot.Energy }

func (c *Controller) SetEnergy(e robot.Energy) { c.robot.Energy = e }

func (c *Controller) Coordinate() world.Point { return c.robot.Coordinate }

func (c *Controller) SetCoordinate(p world.Point) { c.robot.Coordinate = p }

func (c *Controller) Backpack() robot.Backpack { return c.robot.Backpack }

func (c *Controller) SetBackpack(b robot.Backpack) { c.robot.Backpack = b }

func (c *Controller) refreshPosition() {
	c.position = c.robot.Coordinate
}

func (c *Controller) emit(typ mission.EventType, payload map[string]any) {
	c.pending = append(c.pending, mission.Event{
		RunID:      c.cfg.RunID,
		Tick:       c.tick,
		Type:       typ,
		Phase:      c.phase,
		OccurredAt: c.deps.Now(),
		Payload:    payload,
	})
}

func (c *Controller) fail(typ mission.EventType, payload map[string]any) {
	c.emit(typ, payload)
	if c.deps.Metrics != nil {
		c.deps.Metrics.RecordFailure(typ)
	}
}

func (c *Controller) rejectTransition(from, to mission.Phase) {
	err := &TransitionError{From: from, To: to}
	c.logger.Printf("transition rejected: %v", err)
	c.fail(mission.EventTransitionDenied, map[string]any{"from": string(from), "to": string(to)})
}

// growRadius widens the next scan, bounded by the world size.
func (c *Controller) growRadius() {
	if c.radius < c.cfg.WorldSize {
		c.radius++
	}
}

// rediscover is the fallback used whenever a later phase runs dry.
func (c *Controller) rediscover() mission.Phase {
	c.growRadius()
	return mission.PhaseDiscover
}
