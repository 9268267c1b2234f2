package ports

import "streetbuilder/internal/domain/mission"

type MissionMetrics interface {
	RecordTick(phase mission.Phase)
	RecordTransition(from, to mission.Phase)
	RecordFailure(kind mission.EventType)
}
