package agent

import (
	"context"
	"errors"
	"time"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/robot"
	"streetbuilder/internal/domain/world"
)

var errStub = errors.New("stub failure")

type stubScanner struct {
	verdicts []mission.ScanVerdict
	radii    []int
}

func (s *stubScanner) Scan(_ context.Context, _ world.Point, radius int, _ ports.TilePredicate) mission.ScanVerdict {
	s.radii = append(s.radii, radius)
	if len(s.verdicts) == 0 {
		return mission.ScanVerdict{State: mission.ScanComplete}
	}
	v := s.verdicts[0]
	if len(s.verdicts) > 1 {
		s.verdicts = s.verdicts[1:]
	}
	return v
}

type stubPlanner struct {
	located []world.Point
	routes  map[world.Point][]mission.Action
	errs    map[world.Point]error
	builds  int
	updates []world.Point
}

func (p *stubPlanner) Build(context.Context, world.KnownMap) { p.builds++ }

func (p *stubPlanner) UpdateCosts(_ context.Context, from world.Point) {
	p.updates = append(p.updates, from)
}

func (p *stubPlanner) Locate(world.Content) []world.Point {
	return append([]world.Point(nil), p.located...)
}

func (p *stubPlanner) Route(_ context.Context, target world.Point) ([]mission.Action, error) {
	if err, ok := p.errs[target]; ok {
		return nil, err
	}
	return append([]mission.Action(nil), p.routes[target]...), nil
}

type collectResult struct {
	count int
	err   error
}

type stubCollector struct {
	results []collectResult
	targets []world.Point
}

func (c *stubCollector) Collect(_ context.Context, _ world.Content, target world.Point) (int, error) {
	c.targets = append(c.targets, target)
	if len(c.results) == 0 {
		return 0, nil
	}
	r := c.results[0]
	if len(c.results) > 1 {
		c.results = c.results[1:]
	}
	return r.count, r.err
}

type buildCall struct {
	dir    world.Direction
	length int
}

type stubConstructor struct {
	buildErrs []error
	clearErr  error
	builds    []buildCall
	clears    []world.Direction
}

func (c *stubConstructor) Build(_ context.Context, dir world.Direction, length int) error {
	c.builds = append(c.builds, buildCall{dir: dir, length: length})
	if len(c.buildErrs) == 0 {
		return nil
	}
	err := c.buildErrs[0]
	if len(c.buildErrs) > 1 {
		c.buildErrs = c.buildErrs[1:]
	}
	return err
}

func (c *stubConstructor) Clear(_ context.Context, dir world.Direction) error {
	c.clears = append(c.clears, dir)
	return c.clearErr
}

type stubTracker struct {
	required  int
	collected int
}

func (t *stubTracker) Add(_ mission.GoalType, _ world.Content, n int) { t.collected += n }

func (t *stubTracker) Completed() int {
	if t.collected >= t.required {
		return 1
	}
	return 0
}

func (t *stubTracker) Progress() mission.Progress {
	return mission.Progress{Goal: mission.GoalCollect, Content: world.ContentRock, Collected: t.collected, Required: t.required, Completed: t.Completed()}
}

type stubMover struct {
	robot     *robot.Robot
	failMoves int
	moves     []world.Direction
	teleports []world.Point
}

func (m *stubMover) Move(_ context.Context, dir world.Direction) error {
	m.moves = append(m.moves, dir)
	if m.failMoves > 0 {
		m.failMoves--
		return errStub
	}
	m.robot.Coordinate = m.robot.Coordinate.Step(dir)
	return nil
}

func (m *stubMover) Teleport(_ context.Context, to world.Point) error {
	m.teleports = append(m.teleports, to)
	m.robot.Coordinate = to
	return nil
}

type stubMapView struct {
	known     world.KnownMap
	refreshes int
}

func (v *stubMapView) Refresh(context.Context) { v.refreshes++ }

func (v *stubMapView) Known() world.KnownMap {
	if v.known == nil {
		return world.KnownMap{}
	}
	return v.known
}

type stubPresenter struct {
	ticks      int
	events     []world.Event
	terminated int
}

func (p *stubPresenter) OnTick(context.Context, mission.Snapshot) { p.ticks++ }

func (p *stubPresenter) OnEvent(_ context.Context, evt world.Event) {
	p.events = append(p.events, evt)
}

func (p *stubPresenter) OnTerminate(context.Context, mission.Snapshot) { p.terminated++ }

type stubMetrics struct {
	ticks       int
	transitions int
	failures    map[mission.EventType]int
}

func (m *stubMetrics) RecordTick(mission.Phase) { m.ticks++ }

func (m *stubMetrics) RecordTransition(mission.Phase, mission.Phase) { m.transitions++ }

func (m *stubMetrics) RecordFailure(kind mission.EventType) {
	if m.failures == nil {
		m.failures = map[mission.EventType]int{}
	}
	m.failures[kind]++
}

type fixture struct {
	ctl         *Controller
	robot       *robot.Robot
	scanner     *stubScanner
	planner     *stubPlanner
	collector   *stubCollector
	constructor *stubConstructor
	tracker     *stubTracker
	mover       *stubMover
	mapView     *stubMapView
	presenter   *stubPresenter
	metrics     *stubMetrics
}

func newFixture(cfg Config) *fixture {
	r := robot.New(world.Point{X: 10, Y: 10})
	f := &fixture{
		robot:       r,
		scanner:     &stubScanner{},
		planner:     &stubPlanner{routes: map[world.Point][]mission.Action{}, errs: map[world.Point]error{}},
		collector:   &stubCollector{},
		constructor: &stubConstructor{},
		tracker:     &stubTracker{required: 1},
		mover:       &stubMover{robot: r},
		mapView:     &stubMapView{},
		presenter:   &stubPresenter{},
		metrics:     &stubMetrics{},
	}
	if cfg.RunID == "" {
		cfg.RunID = "run-test"
	}
	if cfg.WorldSize == 0 {
		cfg.WorldSize = 16
	}
	f.ctl = New(cfg, Deps{
		Scanner:     f.scanner,
		Planner:     f.planner,
		Collector:   f.collector,
		Constructor: f.constructor,
		Tracker:     f.tracker,
		Mover:       f.mover,
		MapView:     f.mapView,
		Presenter:   f.presenter,
		Metrics:     f.metrics,
		Now:         func() time.Time { return time.Unix(1700000000, 0) },
	}, r)
	return f
}

// at forces the controller into a phase, as if earlier ticks had led there.
func (f *fixture) at(phase mission.Phase) *fixture {
	f.ctl.phase = phase
	return f
}

func hasEvent(events []mission.Event, typ mission.EventType) bool {
	for _, e := range events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func pt(row, col int) world.Point {
	return world.Point{X: col, Y: row}
}
