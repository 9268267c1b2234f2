package replay

import (
	"context"
	"errors"
	"strings"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"
)

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if strings.TrimSpace(req.RunID) == "" || req.Limit < 0 {
		return Response{}, ErrInvalidRequest
	}
	if req.OccurredFrom > 0 && req.OccurredTo > 0 && req.OccurredFrom > req.OccurredTo {
		return Response{}, ErrInvalidRequest
	}
	events, err := u.Events.ListByRunID(ctx, req.RunID, req.Limit)
	if err != nil {
		return Response{}, err
	}
	events = filterByTimeWindow(events, req.OccurredFrom, req.OccurredTo)
	events = filterByType(events, req.Types)
	summary := reconstruct(events)
	summary.RunID = req.RunID
	return Response{Events: events, Summary: summary}, nil
}

func filterByTimeWindow(events []mission.Event, from, to int64) []mission.Event {
	if from <= 0 && to <= 0 {
		return events
	}
	out := make([]mission.Event, 0, len(events))
	for _, evt := range events {
		ts := evt.OccurredAt.Unix()
		if from > 0 && ts < from {
			continue
		}
		if to > 0 && ts > to {
			continue
		}
		out = append(out, evt)
	}
	return out
}

func filterByType(events []mission.Event, types []mission.EventType) []mission.Event {
	if len(types) == 0 {
		return events
	}
	want := make(map[mission.EventType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	out := make([]mission.Event, 0, len(events))
	for _, evt := range events {
		if want[evt.Type] {
			out = append(out, evt)
		}
	}
	return out
}

// reconstruct folds events in any order; the journal lists newest first.
func reconstruct(events []mission.Event) Summary {
	s := Summary{
		Failures: map[mission.EventType]int{},
		Visits:   map[mission.Phase]int{},
	}
	for _, evt := range events {
		if s.LastPhase == "" || evt.Tick > s.LastTick || (evt.Tick == s.LastTick && evt.Type == mission.EventPhaseChanged) {
			s.LastTick = evt.Tick
			s.LastPhase = phaseAfter(evt)
		}
		switch evt.Type {
		case mission.EventPhaseChanged:
			s.Visits[phaseAfter(evt)]++
		case mission.EventCollected:
			s.Collected += int(num(evt.Payload["count"]))
		case mission.EventBuildCompleted:
			s.Builds++
		case mission.EventMissionCompleted:
			s.Completed = true
		case mission.EventScanFailed, mission.EventMoveFailed, mission.EventCollectFailed,
			mission.EventBuildFailed, mission.EventBuildBlocked, mission.EventMaterialShortage,
			mission.EventTransitionDenied, mission.EventTargetDropped:
			s.Failures[evt.Type]++
		}
	}
	return s
}

func phaseAfter(evt mission.Event) mission.Phase {
	if evt.Type == mission.EventPhaseChanged {
		if to, ok := evt.Payload["to"].(string); ok {
			return mission.Phase(to)
		}
	}
	return evt.Phase
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
