package mission

import (
	"fmt"

	"streetbuilder/internal/domain/world"
)

type Phase string

const (
	PhaseReady     Phase = "ready"
	PhaseDiscover  Phase = "discover"
	PhaseLocate    Phase = "locate"
	PhaseFind      Phase = "find"
	PhaseCollect   Phase = "collect"
	PhaseBuild     Phase = "build"
	PhaseDance     Phase = "dance"
	PhaseGoto      Phase = "goto"
	PhaseTerminate Phase = "terminate"
)

// Phases lists every phase in declaration order.
func Phases() []Phase {
	return []Phase{
		PhaseReady,
		PhaseDiscover,
		PhaseLocate,
		PhaseFind,
		PhaseCollect,
		PhaseBuild,
		PhaseDance,
		PhaseGoto,
		PhaseTerminate,
	}
}

func (p Phase) Valid() bool {
	for _, known := range Phases() {
		if p == known {
			return true
		}
	}
	return false
}

type ActionKind string

const (
	ActionMove     ActionKind = "move"
	ActionTeleport ActionKind = "teleport"
)

// Action is one atomic navigation directive: a cardinal move or a teleport
// to explicit coordinates.
type Action struct {
	Kind      ActionKind      `json:"kind"`
	Direction world.Direction `json:"direction,omitempty"`
	Target    world.Point     `json:"target,omitempty"`
}

func Move(d world.Direction) Action {
	return Action{Kind: ActionMove, Direction: d}
}

func Teleport(p world.Point) Action {
	return Action{Kind: ActionTeleport, Target: p}
}

func (a Action) String() string {
	if a.Kind == ActionTeleport {
		return fmt.Sprintf("teleport%s", a.Target)
	}
	return string(a.Direction)
}

// Pursuit tells the navigation phase what the queued targets are.
type Pursuit string

const (
	PursuitResource Pursuit = "resource"
	PursuitSite     Pursuit = "site"
)

type GoalType string

const (
	GoalCollect GoalType = "collect"
)

type BuildMode string

const (
	BuildSimple    BuildMode = "simple"
	BuildPatterned BuildMode = "patterned"
)

type ScanState string

const (
	ScanScanning ScanState = "scanning"
	ScanComplete ScanState = "complete"
	ScanFailed   ScanState = "failed"
)

type ScanVerdict struct {
	State  ScanState `json:"state"`
	Reason string    `json:"reason,omitempty"`
}
