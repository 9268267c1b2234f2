package status

import (
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type Request struct {
	RunID       string
	EventsLimit int
}

type Response struct {
	Snapshot    mission.Snapshot `json:"snapshot"`
	WorldEvents []world.Event    `json:"world_events"`
}
