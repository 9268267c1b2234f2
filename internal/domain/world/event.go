package world

import "time"

type EventType string

const (
	EventMoved               EventType = "moved"
	EventTeleported          EventType = "teleported"
	EventEnergyConsumed      EventType = "energy_consumed"
	EventEnergyRecharged     EventType = "energy_recharged"
	EventTileContentUpdated  EventType = "tile_content_updated"
	EventTileKindUpdated     EventType = "tile_kind_updated"
	EventAddedToBackpack     EventType = "added_to_backpack"
	EventRemovedFromBackpack EventType = "removed_from_backpack"
)

type Event struct {
	Type       EventType      `json:"type"`
	Tick       uint64         `json:"tick"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}
