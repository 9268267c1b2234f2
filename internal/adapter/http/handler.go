package httpadapter

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/app/replay"
	"streetbuilder/internal/app/status"
	"streetbuilder/internal/domain/mission"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// Handler exposes a read-only view of the running mission.
type Handler struct {
	RunID    string
	StatusUC status.UseCase
	ReplayUC replay.UseCase
	KPI      kpiSnapshotProvider

	// AllowOrigin pins CORS to one dashboard origin; empty allows any.
	AllowOrigin string
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware(h.AllowOrigin))

	api := s.Group("/api/mission")
	api.GET("/status", h.status)
	api.GET("/events", h.events)

	s.GET("/ops/kpi", h.kpi)
	s.GET("/healthz", h.healthz)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	limit, err := queryInt(ctx, "events")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "events must be an integer")
		return
	}
	resp, err := h.StatusUC.Execute(c, status.Request{
		RunID:       string(ctx.Query("run_id")),
		EventsLimit: limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) events(c context.Context, ctx *app.RequestContext) {
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", "limit must be an integer")
		return
	}
	occurredFrom, _ := strconv.ParseInt(string(ctx.Query("occurred_from")), 10, 64)
	occurredTo, _ := strconv.ParseInt(string(ctx.Query("occurred_to")), 10, 64)

	runID := strings.TrimSpace(string(ctx.Query("run_id")))
	if runID == "" {
		runID = h.RunID
	}
	resp, err := h.ReplayUC.Execute(c, replay.Request{
		RunID:        runID,
		Limit:        limit,
		OccurredFrom: occurredFrom,
		OccurredTo:   occurredTo,
		Types:        parseTypes(string(ctx.Query("type"))),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func (h Handler) healthz(_ context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]any{"ok": true, "run_id": h.RunID})
}

func queryInt(ctx *app.RequestContext, key string) (int, error) {
	raw := strings.TrimSpace(string(ctx.Query(key)))
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseTypes(raw string) []mission.EventType {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	out := []mission.EventType{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, mission.EventType(part))
		}
	}
	return out
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, replay.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
