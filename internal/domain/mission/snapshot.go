package mission

import (
	"time"

	"streetbuilder/internal/domain/world"
)

type Progress struct {
	Goal      GoalType      `json:"goal"`
	Content   world.Content `json:"content"`
	Collected int           `json:"collected"`
	Required  int           `json:"required"`
	Completed int           `json:"completed"`
}

// Snapshot is a read-only view of the controller after a tick.
type Snapshot struct {
	RunID      string                `json:"run_id"`
	Tick       uint64                `json:"tick"`
	Phase      Phase                 `json:"phase"`
	Pursuit    Pursuit               `json:"pursuit"`
	Position   world.Point           `json:"position"`
	Radius     int                   `json:"radius"`
	Targets    []world.Point         `json:"targets"`
	Actions    []Action              `json:"actions"`
	Current    *world.Point          `json:"current,omitempty"`
	Progress   Progress              `json:"progress"`
	Energy     int                   `json:"energy"`
	Backpack   map[world.Content]int `json:"backpack"`
	Terminated bool                  `json:"terminated"`
}

type EventType string

const (
	EventPhaseChanged     EventType = "phase_changed"
	EventScanFailed       EventType = "scan_failed"
	EventTargetsLocated   EventType = "targets_located"
	EventTargetDropped    EventType = "target_dropped"
	EventMoveFailed       EventType = "move_failed"
	EventCollected        EventType = "collected"
	EventCollectFailed    EventType = "collect_failed"
	EventBuildCompleted   EventType = "build_completed"
	EventBuildFailed      EventType = "build_failed"
	EventBuildBlocked     EventType = "build_blocked"
	EventMaterialShortage EventType = "material_shortage"
	EventMissionCompleted EventType = "mission_completed"
	EventTransitionDenied EventType = "transition_denied"
)

// Event is a telemetry notice emitted by the controller; none of them carry
// decision logic.
type Event struct {
	RunID      string         `json:"run_id"`
	Tick       uint64         `json:"tick"`
	Type       EventType      `json:"type"`
	Phase      Phase          `json:"phase"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}
