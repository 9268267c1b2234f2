package ports

import (
	"context"

	"streetbuilder/internal/domain/mission"
)

type EventRepository interface {
	Append(ctx context.Context, events []mission.Event) error
	ListByRunID(ctx context.Context, runID string, limit int) ([]mission.Event, error)
}

type TickJournal interface {
	WriteTick(entry TickEntry) error
	Close() error
}

// TickEntry is one line of the compressed per-tick journal.
type TickEntry struct {
	RunID    string           `json:"run_id"`
	Snapshot mission.Snapshot `json:"snapshot"`
	From     mission.Phase    `json:"from"`
	To       mission.Phase    `json:"to"`
	UnixMs   int64            `json:"unix_ms"`
}
