package gormrepo

import (
	"context"
	"encoding/json"

	"streetbuilder/internal/adapter/repo/gorm/model"
	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/mission"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, events []mission.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.MissionEvent, 0, len(events))
	for _, e := range events {
		b, _ := json.Marshal(e.Payload)
		rows = append(rows, model.MissionEvent{
			RunID:      e.RunID,
			Tick:       int64(e.Tick),
			Type:       string(e.Type),
			Phase:      string(e.Phase),
			OccurredAt: e.OccurredAt,
			Payload:    b,
		})
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&rows).Error
}

func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]mission.Event, error) {
	rows := []model.MissionEvent{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(&model.MissionEvent{RunID: runID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "tick"}, Desc: true},
				{Column: clause.Column{Name: "id"}, Desc: true},
			},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]mission.Event, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, mission.Event{
			RunID:      row.RunID,
			Tick:       uint64(row.Tick),
			Type:       mission.EventType(row.Type),
			Phase:      mission.Phase(row.Phase),
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
