package status

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"streetbuilder/internal/app/ports"
)

var ErrInvalidRequest = errors.New("invalid status request")

const defaultEventsLimit = 20
const maxEventsLimit = 200

type UseCase struct {
	Source ports.SnapshotSource
}

func (u UseCase) Execute(_ context.Context, req Request) (Response, error) {
	if req.EventsLimit < 0 {
		return Response{}, ErrInvalidRequest
	}
	limit := req.EventsLimit
	if limit == 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}
	snap, ok := u.Source.Latest()
	if !ok {
		return Response{}, fmt.Errorf("no tick observed yet: %w", ports.ErrNotFound)
	}
	if runID := strings.TrimSpace(req.RunID); runID != "" && runID != snap.RunID {
		return Response{}, fmt.Errorf("run %q: %w", runID, ports.ErrNotFound)
	}
	return Response{Snapshot: snap, WorldEvents: u.Source.RecentWorldEvents(limit)}, nil
}
