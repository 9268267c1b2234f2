package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"streetbuilder/internal/app/agent"
	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/world"
)

var ErrTickLimit = errors.New("tick limit reached")

// Clock is the part of the world the runner drives between ticks.
type Clock interface {
	Advance()
	DrainEvents() []world.Event
}

type Controller interface {
	Tick(ctx context.Context) agent.TickReport
	HandleEvent(ctx context.Context, evt world.Event)
	Terminated() bool
	RunID() string
}

// Runner owns the tick loop. Events, TxManager and Journal are optional.
type Runner struct {
	World      Clock
	Controller Controller
	Events     ports.EventRepository
	TxManager  ports.TxManager
	Journal    ports.TickJournal
	Interval   time.Duration
	MaxTicks   int
	Logger     *log.Logger
	Now        func() time.Time

	ticks int
}

// Run ticks until the mission terminates, ctx is cancelled or MaxTicks is
// reached.
func (r *Runner) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger := r.logger()
	logger.Printf("run started run_id=%s interval=%s", r.Controller.RunID(), interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			report, err := r.Step(ctx)
			if err != nil {
				logger.Printf("tick persistence failed tick=%d err=%v", report.Tick, err)
			}
			if r.Controller.Terminated() {
				logger.Printf("run finished run_id=%s ticks=%d", r.Controller.RunID(), r.ticks)
				return nil
			}
			if r.MaxTicks > 0 && r.ticks >= r.MaxTicks {
				return fmt.Errorf("%w after %d ticks in phase %s", ErrTickLimit, r.ticks, report.To)
			}
		}
	}
}

// Step advances the world, forwards its events, runs one controller tick and
// persists the outcome.
func (r *Runner) Step(ctx context.Context) (agent.TickReport, error) {
	r.World.Advance()
	for _, evt := range r.World.DrainEvents() {
		r.Controller.HandleEvent(ctx, evt)
	}
	report := r.Controller.Tick(ctx)
	r.ticks++

	// Events raised by the tick's own actions reach the presenter in the
	// same step.
	for _, evt := range r.World.DrainEvents() {
		r.Controller.HandleEvent(ctx, evt)
	}

	var errs []error
	if err := r.appendEvents(ctx, report); err != nil {
		errs = append(errs, fmt.Errorf("append events: %w", err))
	}
	if r.Journal != nil {
		err := r.Journal.WriteTick(ports.TickEntry{
			RunID:    r.Controller.RunID(),
			Snapshot: report.Snapshot,
			From:     report.From,
			To:       report.To,
			UnixMs:   r.now().UnixMilli(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("write journal: %w", err))
		}
	}
	return report, errors.Join(errs...)
}

func (r *Runner) appendEvents(ctx context.Context, report agent.TickReport) error {
	if r.Events == nil || len(report.Events) == 0 {
		return nil
	}
	if r.TxManager == nil {
		return r.Events.Append(ctx, report.Events)
	}
	return r.TxManager.RunInTx(ctx, func(txCtx context.Context) error {
		return r.Events.Append(txCtx, report.Events)
	})
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}
