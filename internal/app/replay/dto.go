package replay

import "streetbuilder/internal/domain/mission"

type Request struct {
	RunID        string
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
	Types        []mission.EventType
}

type Response struct {
	Events  []mission.Event `json:"events"`
	Summary Summary         `json:"summary"`
}

// Summary is rebuilt from the journal alone.
type Summary struct {
	RunID     string                    `json:"run_id"`
	LastTick  uint64                    `json:"last_tick"`
	LastPhase mission.Phase             `json:"last_phase"`
	Collected int                       `json:"collected"`
	Builds    int                       `json:"builds"`
	Failures  map[mission.EventType]int `json:"failures"`
	Completed bool                      `json:"completed"`
	Visits    map[mission.Phase]int     `json:"phase_visits"`
}
