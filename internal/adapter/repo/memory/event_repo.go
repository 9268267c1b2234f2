package memory

import (
	"context"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(ctx context.Context, events []mission.Event) error {
	defer r.store.lock(ctx)()
	for _, e := range events {
		runID := e.RunID
		if runID == "" {
			runID = "global"
		}
		r.store.events[runID] = append(r.store.events[runID], e)
	}
	return nil
}

// ListByRunID returns the newest events first.
func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]mission.Event, error) {
	defer r.store.rlock(ctx)()
	events := r.store.events[runID]
	if len(events) == 0 {
		return nil, ports.ErrNotFound
	}
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}
	out := make([]mission.Event, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}
