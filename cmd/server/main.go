package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"streetbuilder/internal/adapter/collect"
	"streetbuilder/internal/adapter/construct"
	"streetbuilder/internal/adapter/goal"
	httpadapter "streetbuilder/internal/adapter/http"
	metricsinmem "streetbuilder/internal/adapter/metrics/inmemory"
	"streetbuilder/internal/adapter/planner"
	"streetbuilder/internal/adapter/presenter"
	gormrepo "streetbuilder/internal/adapter/repo/gorm"
	"streetbuilder/internal/adapter/repo/memory"
	"streetbuilder/internal/adapter/scan"
	"streetbuilder/internal/adapter/ticklog"
	worldruntime "streetbuilder/internal/adapter/world/runtime"
	"streetbuilder/internal/app/agent"
	"streetbuilder/internal/app/host"
	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/app/replay"
	"streetbuilder/internal/app/status"
	"streetbuilder/internal/config"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/robot"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	cfg, err := config.FromEnv(config.Default())
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := buildApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}
	defer app.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		err := app.runner.Run(ctx)
		switch {
		case err == nil:
			log.Printf("mission %s finished", app.handler.RunID)
		case errors.Is(err, context.Canceled):
		default:
			log.Printf("mission %s stopped: %v", app.handler.RunID, err)
		}
	}()

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	app.handler.RegisterRoutes(s)

	log.Printf("streetbuilder listening on %s (run %s)", cfg.HTTPAddr, app.handler.RunID)
	s.Spin()
}

type application struct {
	runner  *host.Runner
	handler httpadapter.Handler
	closers []func() error
}

func (a *application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			log.Printf("close: %v", err)
		}
	}
}

type repos struct {
	events ports.EventRepository
	tx     ports.TxManager
	chunks worldruntime.ChunkStore
}

func buildApp(ctx context.Context, cfg config.Config) (*application, error) {
	rp, err := buildRepos(ctx, cfg)
	if err != nil {
		return nil, err
	}

	bot := robot.New(cfg.Spawn())
	rc := cfg.Runtime()
	rc.ChunkStore = rp.chunks
	rc.Logger = log.New(os.Stdout, "[world] ", log.LstdFlags)
	w := worldruntime.New(rc, bot)

	agentCfg := cfg.Agent()
	hub := presenter.NewHub(log.New(os.Stdout, "[presenter] ", log.LstdFlags), cfg.EventCapacity)
	kpi := metricsinmem.NewRecorder()
	ctl := agent.New(agentCfg, agent.Deps{
		Scanner:     scan.NewRingScanner(w),
		Planner:     planner.NewDijkstra(),
		Collector:   collect.New(w),
		Constructor: construct.New(w, agentCfg.Resource),
		Tracker: goal.NewTracker(goal.Goal{
			Type:     mission.GoalCollect,
			Content:  agentCfg.Resource,
			Required: agentCfg.GoalQuantity,
		}),
		Mover:     w,
		MapView:   w,
		Presenter: hub,
		Metrics:   kpi,
		Logger:    log.New(os.Stdout, "[mission] ", log.LstdFlags),
	}, bot)

	app := &application{
		runner: &host.Runner{
			World:      w,
			Controller: ctl,
			Events:     rp.events,
			TxManager:  rp.tx,
			Interval:   cfg.TickInterval(),
			MaxTicks:   cfg.MaxTicks,
			Logger:     log.New(os.Stdout, "[host] ", log.LstdFlags),
		},
		handler: httpadapter.Handler{
			RunID:       ctl.RunID(),
			StatusUC:    status.UseCase{Source: hub},
			ReplayUC:    replay.UseCase{Events: rp.events},
			KPI:         kpi,
			AllowOrigin: cfg.CORSOrigin,
		},
	}
	if cfg.JournalDir != "" {
		journal := ticklog.NewJournal(cfg.JournalDir, ctl.RunID())
		app.runner.Journal = journal
		app.closers = append(app.closers, journal.Close)
	}
	return app, nil
}

// buildRepos uses Postgres when a DSN is configured and falls back to the
// in-memory store otherwise.
func buildRepos(ctx context.Context, cfg config.Config) (repos, error) {
	if cfg.DSN == "" {
		store := memory.NewStore()
		return repos{
			events: memory.NewEventRepo(store),
			tx:     memory.NewTxManager(store),
			chunks: memory.NewChunkRepo(store),
		}, nil
	}
	db, err := gormrepo.OpenPostgres(cfg.DSN)
	if err != nil {
		return repos{}, err
	}
	if dir := resolveMigrationsDir(cfg.MigrationsDir); dir != "" {
		applied, err := gormrepo.ApplyMigrations(ctx, db, dir)
		if err != nil {
			return repos{}, fmt.Errorf("migrations: %w", err)
		}
		if len(applied) > 0 {
			log.Printf("applied migrations %s", strings.Join(applied, ","))
		}
	} else {
		log.Printf("no migrations dir found at %q; assuming schema is current", cfg.MigrationsDir)
	}
	return repos{
		events: gormrepo.NewEventRepo(db),
		tx:     gormrepo.NewTxManager(db),
		chunks: gormrepo.NewWorldChunkRepo(db),
	}, nil
}

func resolveMigrationsDir(configured string) string {
	if configured == "" {
		return ""
	}
	if info, err := os.Stat(configured); err == nil && info.IsDir() {
		return configured
	}
	return ""
}
