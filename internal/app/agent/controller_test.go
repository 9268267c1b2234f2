package agent

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/robot"
	"streetbuilder/internal/domain/world"
)

func TestPhaseRegistry_CoversEveryPhase(t *testing.T) {
	registry := phaseRegistry()
	if len(registry) != len(mission.Phases()) {
		t.Fatalf("expected %d registry entries, got %d", len(mission.Phases()), len(registry))
	}
	for _, phase := range mission.Phases() {
		spec, ok := registry[phase]
		if !ok {
			t.Fatalf("phase %q has no handler", phase)
		}
		if spec.Phase != phase {
			t.Fatalf("registry entry %q declares phase %q", phase, spec.Phase)
		}
		if spec.Handler == nil {
			t.Fatalf("phase %q has nil handler", phase)
		}
		for _, next := range spec.Successors {
			if !next.Valid() || next == phase {
				t.Fatalf("phase %q declares bad successor %q", phase, next)
			}
		}
	}
	if n := len(registry[mission.PhaseTerminate].Successors); n != 0 {
		t.Fatalf("terminate must have no successors, got %d", n)
	}
}

func TestController_ReadyMovesToDiscover(t *testing.T) {
	f := newFixture(Config{})
	report := f.ctl.Tick(context.Background())
	if report.From != mission.PhaseReady || report.To != mission.PhaseDiscover {
		t.Fatalf("expected ready->discover, got %s->%s", report.From, report.To)
	}
	if f.mapView.refreshes != 1 {
		t.Fatalf("expected initial map refresh, got %d", f.mapView.refreshes)
	}
	if !hasEvent(report.Events, mission.EventPhaseChanged) {
		t.Fatalf("expected phase_changed event, got %+v", report.Events)
	}
	if f.presenter.ticks != 1 {
		t.Fatalf("expected presenter to see the tick, got %d", f.presenter.ticks)
	}
}

func TestDiscover_Verdicts(t *testing.T) {
	cases := []struct {
		name       string
		verdict    mission.ScanVerdict
		wantPhase  mission.Phase
		wantRadius int
	}{
		{name: "scanning", verdict: mission.ScanVerdict{State: mission.ScanScanning}, wantPhase: mission.PhaseDiscover, wantRadius: 2},
		{name: "complete", verdict: mission.ScanVerdict{State: mission.ScanComplete}, wantPhase: mission.PhaseLocate, wantRadius: 2},
		{name: "failed", verdict: mission.ScanVerdict{State: mission.ScanFailed, Reason: "no energy"}, wantPhase: mission.PhaseDiscover, wantRadius: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(Config{InitialRadius: 2}).at(mission.PhaseDiscover)
			f.scanner.verdicts = []mission.ScanVerdict{tc.verdict}

			report := f.ctl.Tick(context.Background())
			if report.To != tc.wantPhase {
				t.Fatalf("expected %s, got %s", tc.wantPhase, report.To)
			}
			if f.ctl.radius != tc.wantRadius {
				t.Fatalf("expected radius %d, got %d", tc.wantRadius, f.ctl.radius)
			}
			if f.scanner.radii[0] != 2 {
				t.Fatalf("expected scan at radius 2, got %d", f.scanner.radii[0])
			}
		})
	}
}

func TestDiscover_FailureIsReportedAndRadiusCapped(t *testing.T) {
	f := newFixture(Config{InitialRadius: 3, WorldSize: 4}).at(mission.PhaseDiscover)
	f.scanner.verdicts = []mission.ScanVerdict{{State: mission.ScanFailed, Reason: "blocked"}}

	for i := 0; i < 3; i++ {
		report := f.ctl.Tick(context.Background())
		if !hasEvent(report.Events, mission.EventScanFailed) {
			t.Fatalf("tick %d: expected scan_failed event", i)
		}
	}
	if got, want := f.scanner.radii, []int{3, 4, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected radii %v, got %v", want, got)
	}
	if f.metrics.failures[mission.EventScanFailed] != 3 {
		t.Fatalf("expected 3 scan failures recorded, got %d", f.metrics.failures[mission.EventScanFailed])
	}
}

func TestDiscover_PredicateSelectsResource(t *testing.T) {
	f := newFixture(Config{ExcludeStreets: true})
	match := f.ctl.resourcePredicate()
	if !match(world.Tile{Kind: world.TileGrass, Content: world.ContentRock}) {
		t.Fatalf("expected rock on grass to match")
	}
	if match(world.Tile{Kind: world.TileStreet, Content: world.ContentRock}) {
		t.Fatalf("expected rock on street to be excluded")
	}
	if match(world.Tile{Kind: world.TileGrass, Content: world.ContentTree}) {
		t.Fatalf("expected tree not to match")
	}
}

func TestLocate_FiltersStreetsAndKeepsPlannerOrder(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseLocate)
	f.mapView.known = world.KnownMap{}
	f.mapView.known.Put(world.Tile{X: 4, Y: 3, Kind: world.TileGrass, Content: world.ContentRock})
	f.mapView.known.Put(world.Tile{X: 1, Y: 5, Kind: world.TileSand, Content: world.ContentRock})
	f.mapView.known.Put(world.Tile{X: 2, Y: 2, Kind: world.TileStreet, Content: world.ContentRock})
	f.planner.located = []world.Point{pt(3, 4), pt(5, 1), pt(2, 2)}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseGoto {
		t.Fatalf("expected goto, got %s", report.To)
	}
	if got, want := f.ctl.targets.Items(), []world.Point{pt(3, 4), pt(5, 1)}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected targets %v, got %v", want, got)
	}
	if f.planner.builds != 1 || len(f.planner.updates) != 1 || f.planner.updates[0] != f.robot.Coordinate {
		t.Fatalf("expected one build and one cost update from %v, got builds=%d updates=%v", f.robot.Coordinate, f.planner.builds, f.planner.updates)
	}
}

func TestLocate_ReplacesPreviousTargets(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseLocate)
	f.ctl.targets.Replace([]world.Point{pt(9, 9), pt(8, 8)})
	f.planner.located = []world.Point{pt(1, 1)}

	f.ctl.Tick(context.Background())
	if got := f.ctl.targets.Items(); !reflect.DeepEqual(got, []world.Point{pt(1, 1)}) {
		t.Fatalf("expected full rebuild, got %v", got)
	}
}

func TestLocate_NoCandidatesFallsBackToDiscover(t *testing.T) {
	f := newFixture(Config{InitialRadius: 2}).at(mission.PhaseLocate)
	f.mapView.known = world.KnownMap{}
	f.mapView.known.Put(world.Tile{X: 2, Y: 2, Kind: world.TileStreet, Content: world.ContentRock})
	f.planner.located = []world.Point{pt(2, 2)}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseDiscover {
		t.Fatalf("expected discover, got %s", report.To)
	}
	if f.ctl.radius != 3 {
		t.Fatalf("expected radius to grow on fallback, got %d", f.ctl.radius)
	}
}

func TestLocate_WidensScanWhenEveryTargetKeepsBeingDropped(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseLocate)
	f.planner.located = []world.Point{pt(2, 2), pt(3, 3)}
	f.planner.errs[pt(2, 2)] = ports.ErrUnreachable
	f.planner.errs[pt(3, 3)] = ports.ErrUnreachable

	want := []mission.Phase{
		mission.PhaseGoto, mission.PhaseGoto, mission.PhaseLocate,
		mission.PhaseGoto, mission.PhaseGoto, mission.PhaseLocate,
		mission.PhaseDiscover,
	}
	for i, phase := range want {
		if report := f.ctl.Tick(context.Background()); report.To != phase {
			t.Fatalf("tick %d: expected %s, got %s", i, phase, report.To)
		}
	}
	if f.ctl.radius != 2 {
		t.Fatalf("expected radius to grow once, got %d", f.ctl.radius)
	}
	if f.ctl.droppedRounds != 0 {
		t.Fatalf("expected dropped rounds reset, got %d", f.ctl.droppedRounds)
	}
}

func TestLocate_ReachableTargetResetsDroppedRounds(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseLocate)
	f.ctl.droppedRounds = 1
	f.ctl.roundTargets, f.ctl.roundDropped = 2, 1
	f.planner.located = []world.Point{pt(2, 2)}

	if report := f.ctl.Tick(context.Background()); report.To != mission.PhaseGoto {
		t.Fatalf("expected goto, got %s", report.To)
	}
	if f.ctl.droppedRounds != 0 || f.ctl.roundTargets != 1 || f.ctl.roundDropped != 0 {
		t.Fatalf("unexpected round state dropped=%d targets=%d", f.ctl.droppedRounds, f.ctl.roundTargets)
	}
}

func TestGoto_SingleQueuedActionIsDiscarded(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	f.ctl.actions.Load([]mission.Action{mission.Move(world.East)})
	before := f.robot.Coordinate

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseCollect {
		t.Fatalf("expected collect, got %s", report.To)
	}
	if len(f.mover.moves) != 0 || f.robot.Coordinate != before {
		t.Fatalf("expected no move, got moves=%v at %v", f.mover.moves, f.robot.Coordinate)
	}
	if !f.ctl.actions.Empty() {
		t.Fatalf("expected action queue to be emptied")
	}
}

func TestGoto_ExecutesOneActionPerTick(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	target := pt(10, 14)
	f.ctl.targets.Replace([]world.Point{target})
	f.planner.routes[target] = []mission.Action{
		mission.Move(world.East), mission.Move(world.East), mission.Move(world.East), mission.Move(world.East),
	}

	wantLens := []int{3, 2, 0}
	wantPhases := []mission.Phase{mission.PhaseGoto, mission.PhaseGoto, mission.PhaseCollect}
	prevLen := 0
	for i := range wantLens {
		report := f.ctl.Tick(context.Background())
		if report.To != wantPhases[i] {
			t.Fatalf("tick %d: expected %s, got %s", i, wantPhases[i], report.To)
		}
		got := f.ctl.actions.Len()
		if got != wantLens[i] {
			t.Fatalf("tick %d: expected %d queued actions, got %d", i, wantLens[i], got)
		}
		if i > 0 && got > prevLen {
			t.Fatalf("tick %d: action queue grew from %d to %d", i, prevLen, got)
		}
		prevLen = got
	}
	if len(f.mover.moves) != 3 {
		t.Fatalf("expected 3 executed moves, got %v", f.mover.moves)
	}
	if got, want := f.robot.Coordinate, pt(10, 13); got != want {
		t.Fatalf("expected robot one step short at %v, got %v", want, got)
	}
	if f.ctl.position != f.robot.Coordinate {
		t.Fatalf("expected position cache %v, got %v", f.robot.Coordinate, f.ctl.position)
	}
}

func TestGoto_TeleportAction(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	target := pt(30, 30)
	f.ctl.targets.Replace([]world.Point{target})
	f.planner.routes[target] = []mission.Action{mission.Teleport(pt(29, 28)), mission.Move(world.East), mission.Move(world.South)}

	f.ctl.Tick(context.Background())
	if len(f.mover.teleports) != 1 || f.robot.Coordinate != pt(29, 28) {
		t.Fatalf("expected teleport to (29,28), got teleports=%v at %v", f.mover.teleports, f.robot.Coordinate)
	}
}

func TestGoto_UnreachableTargetIsDropped(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	blocked, open := pt(1, 1), pt(10, 13)
	f.ctl.targets.Replace([]world.Point{blocked, open})
	f.planner.errs[blocked] = fmt.Errorf("route: %w", ports.ErrUnreachable)
	f.planner.routes[open] = []mission.Action{mission.Move(world.East), mission.Move(world.East)}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseGoto {
		t.Fatalf("expected to stay in goto, got %s", report.To)
	}
	if !hasEvent(report.Events, mission.EventTargetDropped) {
		t.Fatalf("expected target_dropped event")
	}
	if got := f.ctl.targets.Items(); !reflect.DeepEqual(got, []world.Point{open}) {
		t.Fatalf("expected dropped target not requeued, got %v", got)
	}

	report = f.ctl.Tick(context.Background())
	if report.To != mission.PhaseCollect {
		t.Fatalf("expected collect, got %s", report.To)
	}
}

func TestGoto_LastUnreachableTargetReturnsToLocate(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	f.ctl.targets.Replace([]world.Point{pt(1, 1)})
	f.planner.errs[pt(1, 1)] = ports.ErrUnreachable

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseLocate {
		t.Fatalf("expected locate, got %s", report.To)
	}
}

func TestGoto_EmptyRouteOrientsAndCollects(t *testing.T) {
	f := newFixture(Config{OrientDirection: world.West}).at(mission.PhaseGoto)
	here := f.robot.Coordinate
	f.ctl.targets.Replace([]world.Point{here})

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseCollect {
		t.Fatalf("expected collect in the same tick, got %s", report.To)
	}
	if !reflect.DeepEqual(f.mover.moves, []world.Direction{world.West}) {
		t.Fatalf("expected one orienting move west, got %v", f.mover.moves)
	}
	if f.mapView.refreshes != 1 {
		t.Fatalf("expected map refresh, got %d", f.mapView.refreshes)
	}
	if f.ctl.current == nil || *f.ctl.current != here {
		t.Fatalf("expected current target %v, got %v", here, f.ctl.current)
	}
}

func TestGoto_BothQueuesEmptyReturnsToLocate(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseLocate {
		t.Fatalf("expected locate, got %s", report.To)
	}
}

func TestGoto_MoveFailureRequeuesTarget(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	target := pt(10, 14)
	f.ctl.targets.Replace([]world.Point{target, pt(0, 0)})
	f.planner.routes[target] = []mission.Action{mission.Move(world.East), mission.Move(world.East), mission.Move(world.East)}
	f.mover.failMoves = 1

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseGoto {
		t.Fatalf("expected goto, got %s", report.To)
	}
	if !f.ctl.actions.Empty() {
		t.Fatalf("expected action queue cleared, got %v", f.ctl.actions.Items())
	}
	if got := f.ctl.targets.Items(); !reflect.DeepEqual(got, []world.Point{target, pt(0, 0)}) {
		t.Fatalf("expected target back at the front, got %v", got)
	}
	if !hasEvent(report.Events, mission.EventMoveFailed) {
		t.Fatalf("expected move_failed event")
	}
	if f.planner.builds != 1 {
		t.Fatalf("expected planner rebuild after failed move, got %d", f.planner.builds)
	}

	f.ctl.Tick(context.Background())
	if f.robot.Coordinate != pt(10, 11) {
		t.Fatalf("expected re-routed step to (10,11), got %v", f.robot.Coordinate)
	}
}

func TestGoto_RepeatedMoveFailuresAbandonTarget(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseGoto)
	target := pt(10, 14)
	f.ctl.targets.Replace([]world.Point{target})
	f.planner.routes[target] = []mission.Action{mission.Move(world.East), mission.Move(world.East)}
	f.mover.failMoves = maxMoveFailures

	var report TickReport
	for i := 0; i < maxMoveFailures; i++ {
		report = f.ctl.Tick(context.Background())
	}
	if report.To != mission.PhaseLocate {
		t.Fatalf("expected locate after abandoning target, got %s", report.To)
	}
	if !f.ctl.targets.Empty() {
		t.Fatalf("expected target abandoned, got %v", f.ctl.targets.Items())
	}
}

func TestCollect_GoalBranches(t *testing.T) {
	cases := []struct {
		name      string
		required  int
		result    collectResult
		targets   []world.Point
		wantPhase mission.Phase
		wantTotal int
	}{
		{name: "goal satisfied", required: 3, result: collectResult{count: 3}, wantPhase: mission.PhaseBuild, wantTotal: 3},
		{name: "goal pending", required: 5, result: collectResult{count: 2}, targets: []world.Point{pt(1, 1)}, wantPhase: mission.PhaseGoto, wantTotal: 2},
		{name: "goal pending empty queue", required: 5, result: collectResult{count: 2}, wantPhase: mission.PhaseGoto, wantTotal: 2},
		{name: "zero with targets", required: 1, result: collectResult{count: 0}, targets: []world.Point{pt(1, 1)}, wantPhase: mission.PhaseGoto},
		{name: "zero without targets", required: 1, result: collectResult{count: 0}, wantPhase: mission.PhaseDiscover},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(Config{}).at(mission.PhaseCollect)
			f.tracker.required = tc.required
			f.collector.results = []collectResult{tc.result}
			f.ctl.targets.Replace(tc.targets)
			current := pt(10, 12)
			f.ctl.current = &current

			report := f.ctl.Tick(context.Background())
			if report.To != tc.wantPhase {
				t.Fatalf("expected %s, got %s", tc.wantPhase, report.To)
			}
			if f.tracker.collected != tc.wantTotal {
				t.Fatalf("expected tracker total %d, got %d", tc.wantTotal, f.tracker.collected)
			}
			if f.collector.targets[0] != current {
				t.Fatalf("expected collection at %v, got %v", current, f.collector.targets[0])
			}
		})
	}
}

func TestCollect_ErrorsRetryThenFallBack(t *testing.T) {
	f := newFixture(Config{CollectRetries: 2, InitialRadius: 2}).at(mission.PhaseCollect)
	f.collector.results = []collectResult{{err: errStub}}

	want := []mission.Phase{mission.PhaseCollect, mission.PhaseCollect, mission.PhaseDiscover}
	for i, phase := range want {
		report := f.ctl.Tick(context.Background())
		if report.To != phase {
			t.Fatalf("attempt %d: expected %s, got %s", i+1, phase, report.To)
		}
	}
	if f.metrics.failures[mission.EventCollectFailed] != 3 {
		t.Fatalf("expected 3 collect failures recorded, got %d", f.metrics.failures[mission.EventCollectFailed])
	}
	if f.ctl.collectAttempts != 0 {
		t.Fatalf("expected attempts reset, got %d", f.ctl.collectAttempts)
	}
	if f.ctl.radius != 3 {
		t.Fatalf("expected radius growth on fallback, got %d", f.ctl.radius)
	}
}

func TestBuild_SimpleShortageKeepsQueues(t *testing.T) {
	f := newFixture(Config{BuildLength: 4}).at(mission.PhaseBuild)
	f.ctl.targets.Replace([]world.Point{pt(1, 1), pt(2, 2)})
	f.ctl.actions.Load([]mission.Action{mission.Move(world.East), mission.Move(world.South)})
	targets, actions := f.ctl.targets.Items(), f.ctl.actions.Items()
	f.constructor.buildErrs = []error{fmt.Errorf("lay street: %w", ports.ErrMaterialShortage)}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseDiscover {
		t.Fatalf("expected discover, got %s", report.To)
	}
	if !reflect.DeepEqual(f.ctl.targets.Items(), targets) || !reflect.DeepEqual(f.ctl.actions.Items(), actions) {
		t.Fatalf("expected queues untouched, got targets=%v actions=%v", f.ctl.targets.Items(), f.ctl.actions.Items())
	}
	if !hasEvent(report.Events, mission.EventMaterialShortage) {
		t.Fatalf("expected material_shortage event")
	}
}

func TestBuild_SimpleOutcomes(t *testing.T) {
	cases := []struct {
		name      string
		dance     []world.Direction
		err       error
		wantPhase mission.Phase
	}{
		{name: "success terminates", wantPhase: mission.PhaseTerminate},
		{name: "success dances", dance: mission.DefaultDance(), wantPhase: mission.PhaseDance},
		{name: "transient error retries in place", err: fmt.Errorf("put street: %w", ports.ErrNoEnergy), wantPhase: mission.PhaseBuild},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(Config{BuildDirection: world.South, BuildLength: 3, Dance: tc.dance}).at(mission.PhaseBuild)
			if tc.err != nil {
				f.constructor.buildErrs = []error{tc.err}
			}
			report := f.ctl.Tick(context.Background())
			if report.To != tc.wantPhase {
				t.Fatalf("expected %s, got %s", tc.wantPhase, report.To)
			}
			if got, want := f.constructor.builds, []buildCall{{dir: world.South, length: 3}}; !reflect.DeepEqual(got, want) {
				t.Fatalf("expected builds %v, got %v", want, got)
			}
		})
	}
}

func grass(row, col int) world.Tile {
	return world.Tile{X: col, Y: row, Kind: world.TileGrass, Passable: true}
}

func TestBuild_BlockedSegmentMovesToNearestClearSite(t *testing.T) {
	f := newFixture(Config{BuildLength: 2}).at(mission.PhaseBuild)
	f.mapView.known = world.KnownMap{}
	for _, tile := range []world.Tile{grass(10, 10), grass(12, 9), grass(12, 10), grass(12, 11)} {
		f.mapView.known.Put(tile)
	}
	f.mapView.known.Put(world.Tile{X: 11, Y: 10, Kind: world.TileWater})
	f.constructor.buildErrs = []error{fmt.Errorf("build east: %w", ports.ErrBlocked), nil}
	site := pt(12, 9)
	f.planner.routes[site] = []mission.Action{mission.Move(world.South), mission.Move(world.South), mission.Move(world.West)}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseFind {
		t.Fatalf("expected find, got %s", report.To)
	}
	if !hasEvent(report.Events, mission.EventBuildBlocked) || f.metrics.failures[mission.EventBuildBlocked] != 1 {
		t.Fatalf("expected build_blocked event and metric, got %+v", report.Events)
	}
	if f.ctl.relocation == nil || *f.ctl.relocation != site {
		t.Fatalf("expected relocation to %v, got %v", site, f.ctl.relocation)
	}

	want := []mission.Phase{mission.PhaseGoto, mission.PhaseGoto, mission.PhaseBuild, mission.PhaseTerminate}
	for i, phase := range want {
		if report := f.ctl.Tick(context.Background()); report.To != phase {
			t.Fatalf("tick %d: expected %s, got %s", i, phase, report.To)
		}
	}
	if f.robot.Coordinate != site {
		t.Fatalf("expected robot on the new site, got %v", f.robot.Coordinate)
	}
	if len(f.constructor.builds) != 2 {
		t.Fatalf("expected a second attempt at the new site, got %d", len(f.constructor.builds))
	}
	if f.ctl.relocation != nil {
		t.Fatalf("expected relocation cleared after success")
	}
}

func TestBuild_BlockedWithoutKnownSiteWidensScan(t *testing.T) {
	f := newFixture(Config{BuildLength: 2}).at(mission.PhaseBuild)
	f.mapView.known = world.KnownMap{}
	// Both segments would run past the east edge of the 16x16 world.
	for _, tile := range []world.Tile{grass(10, 10), grass(10, 14), grass(10, 15)} {
		f.mapView.known.Put(tile)
	}
	f.constructor.buildErrs = []error{ports.ErrBlocked}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseDiscover {
		t.Fatalf("expected discover, got %s", report.To)
	}
	if f.ctl.radius != 2 {
		t.Fatalf("expected radius 2, got %d", f.ctl.radius)
	}
	if f.ctl.relocation != nil || f.ctl.siteReached {
		t.Fatalf("expected no site pending, got relocation=%v reached=%v", f.ctl.relocation, f.ctl.siteReached)
	}
	if !f.ctl.triedSites[pt(10, 10)] {
		t.Fatalf("expected blocked origin remembered")
	}
}

func TestBuild_PatternRunsEveryStepDespiteFailures(t *testing.T) {
	pattern := mission.LoopPattern(2)
	for _, dance := range [][]world.Direction{mission.DefaultDance(), nil} {
		f := newFixture(Config{BuildMode: mission.BuildPatterned, Pattern: pattern, Dance: dance}).at(mission.PhaseBuild)
		f.constructor.clearErr = errStub
		f.constructor.buildErrs = []error{nil, errStub, nil}

		report := f.ctl.Tick(context.Background())
		want := mission.PhaseDance
		if dance == nil {
			want = mission.PhaseTerminate
		}
		if report.To != want {
			t.Fatalf("expected %s, got %s", want, report.To)
		}
		if len(f.constructor.clears) != len(pattern) || len(f.constructor.builds) != len(pattern) || len(f.mover.moves) != len(pattern) {
			t.Fatalf("expected %d of each primitive, got clears=%d builds=%d moves=%d",
				len(pattern), len(f.constructor.clears), len(f.constructor.builds), len(f.mover.moves))
		}
		if f.robot.Coordinate != pt(10, 10) {
			t.Fatalf("expected loop to close at start, got %v", f.robot.Coordinate)
		}
		var failures any
		for _, evt := range report.Events {
			if evt.Type == mission.EventBuildCompleted {
				failures = evt.Payload["failures"]
			}
		}
		if failures != len(pattern)+1 {
			t.Fatalf("expected %d failures reported, got %v", len(pattern)+1, failures)
		}
	}
}

func TestBuild_StagingSiteFlow(t *testing.T) {
	site := pt(10, 14)
	f := newFixture(Config{StagingPoint: &site}).at(mission.PhaseBuild)
	f.planner.routes[site] = []mission.Action{
		mission.Move(world.East), mission.Move(world.East), mission.Move(world.East), mission.Move(world.East),
	}

	want := []mission.Phase{
		mission.PhaseFind,
		mission.PhaseGoto,
		mission.PhaseGoto,
		mission.PhaseGoto,
		mission.PhaseBuild,
		mission.PhaseTerminate,
	}
	for i, phase := range want {
		report := f.ctl.Tick(context.Background())
		if report.To != phase {
			t.Fatalf("tick %d: expected %s, got %s", i, phase, report.To)
		}
	}
	if len(f.constructor.builds) != 1 {
		t.Fatalf("expected exactly one construction at the site, got %d", len(f.constructor.builds))
	}
	if f.robot.Coordinate != pt(10, 13) {
		t.Fatalf("expected robot next to site, got %v", f.robot.Coordinate)
	}
}

func TestBuild_ShortageAtSiteReturnsToStaging(t *testing.T) {
	site := pt(10, 10)
	f := newFixture(Config{StagingPoint: &site}).at(mission.PhaseBuild)
	f.ctl.siteReached = true
	f.constructor.buildErrs = []error{ports.ErrMaterialShortage, nil}

	if report := f.ctl.Tick(context.Background()); report.To != mission.PhaseDiscover {
		t.Fatalf("expected discover, got %s", report.To)
	}
	if f.ctl.siteReached {
		t.Fatalf("expected site to need revisiting after shortage")
	}
	f.at(mission.PhaseBuild)
	if report := f.ctl.Tick(context.Background()); report.To != mission.PhaseFind {
		t.Fatalf("expected find, got %s", report.To)
	}
}

func TestDance_MovesThenTerminates(t *testing.T) {
	f := newFixture(Config{Dance: mission.DefaultDance()}).at(mission.PhaseDance)
	f.mover.failMoves = 2

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseTerminate {
		t.Fatalf("expected terminate, got %s", report.To)
	}
	if len(f.mover.moves) != len(mission.DefaultDance()) {
		t.Fatalf("expected every dance move attempted, got %d", len(f.mover.moves))
	}
}

func TestTerminate_SignalsOnce(t *testing.T) {
	f := newFixture(Config{}).at(mission.PhaseTerminate)
	completed := 0
	for i := 0; i < 3; i++ {
		report := f.ctl.Tick(context.Background())
		if report.To != mission.PhaseTerminate {
			t.Fatalf("expected terminate to be terminal, got %s", report.To)
		}
		for _, evt := range report.Events {
			if evt.Type == mission.EventMissionCompleted {
				completed++
			}
		}
	}
	if completed != 1 || f.presenter.terminated != 1 {
		t.Fatalf("expected one completion signal, got events=%d presenter=%d", completed, f.presenter.terminated)
	}
	if !f.ctl.Terminated() {
		t.Fatalf("expected controller terminated")
	}
}

type fixedPhase mission.Phase

func (p fixedPhase) Handle(context.Context, *Controller) mission.Phase { return mission.Phase(p) }

func TestController_RejectsUndeclaredTransition(t *testing.T) {
	f := newFixture(Config{})
	f.ctl.registry[mission.PhaseReady] = PhaseSpec{
		Phase:      mission.PhaseReady,
		Successors: []mission.Phase{mission.PhaseDiscover},
		Handler:    fixedPhase(mission.PhaseBuild),
	}

	report := f.ctl.Tick(context.Background())
	if report.To != mission.PhaseReady {
		t.Fatalf("expected phase kept at ready, got %s", report.To)
	}
	if !hasEvent(report.Events, mission.EventTransitionDenied) {
		t.Fatalf("expected transition_denied event")
	}
	if f.metrics.failures[mission.EventTransitionDenied] != 1 || f.metrics.transitions != 0 {
		t.Fatalf("unexpected metrics %+v", f.metrics)
	}
}

func TestTransitionError_Unwrap(t *testing.T) {
	var err error = &TransitionError{From: mission.PhaseDance, To: mission.PhaseDiscover}
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
	var te *TransitionError
	if !errors.As(err, &te) || te.To != mission.PhaseDiscover {
		t.Fatalf("expected typed transition error, got %v", err)
	}
}

func TestController_FullMissionStaysWithinDeclaredTransitions(t *testing.T) {
	f := newFixture(Config{Dance: []world.Direction{world.North}})
	target := pt(10, 13)
	f.planner.located = []world.Point{target}
	f.planner.routes[target] = []mission.Action{mission.Move(world.East), mission.Move(world.East), mission.Move(world.East)}
	f.collector.results = []collectResult{{count: 1}}

	registry := phaseRegistry()
	var path []mission.Phase
	for i := 0; i < 20 && !f.ctl.Terminated(); i++ {
		report := f.ctl.Tick(context.Background())
		if !registry[report.From].Allows(report.To) {
			t.Fatalf("tick %d: undeclared transition %s->%s", i, report.From, report.To)
		}
		if report.Changed() {
			path = append(path, report.To)
		}
	}
	want := []mission.Phase{
		mission.PhaseDiscover,
		mission.PhaseLocate,
		mission.PhaseGoto,
		mission.PhaseCollect,
		mission.PhaseBuild,
		mission.PhaseDance,
		mission.PhaseTerminate,
	}
	if !reflect.DeepEqual(path, want) {
		t.Fatalf("expected path %v, got %v", want, path)
	}
	if !f.ctl.Terminated() {
		t.Fatalf("expected mission to terminate")
	}
}

func TestController_ForwardsEventsAndAccessors(t *testing.T) {
	f := newFixture(Config{})
	f.ctl.HandleEvent(context.Background(), world.Event{Type: world.EventMoved})
	if len(f.presenter.events) != 1 {
		t.Fatalf("expected forwarded event, got %d", len(f.presenter.events))
	}

	f.ctl.SetEnergy(robot.Energy{Current: 12, Max: 40})
	f.ctl.SetCoordinate(pt(3, 4))
	bp := robot.NewBackpack(5)
	bp.Add(world.ContentRock, 2)
	f.ctl.SetBackpack(bp)
	if f.ctl.Energy().Current != 12 || f.ctl.Coordinate() != pt(3, 4) || f.ctl.Backpack().Count(world.ContentRock) != 2 {
		t.Fatalf("accessor round trip failed: %+v %v %+v", f.ctl.Energy(), f.ctl.Coordinate(), f.ctl.Backpack())
	}
	if f.robot.Coordinate != pt(3, 4) {
		t.Fatalf("expected setters to write the shared robot")
	}
}
