package ports

import (
	"context"

	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

type Presenter interface {
	OnTick(ctx context.Context, snap mission.Snapshot)
	OnEvent(ctx context.Context, evt world.Event)
	OnTerminate(ctx context.Context, snap mission.Snapshot)
}

type SnapshotSource interface {
	Latest() (mission.Snapshot, bool)
	RecentWorldEvents(limit int) []world.Event
}
