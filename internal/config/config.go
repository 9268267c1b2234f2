package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"streetbuilder/internal/adapter/world/runtime"
	"streetbuilder/internal/app/agent"
	"streetbuilder/internal/domain/mission"
	"streetbuilder/internal/domain/world"
)

var ErrInvalidConfig = errors.New("invalid config")

const (
	PatternNone   = ""
	PatternLoop   = "loop"
	PatternSpiral = "spiral"
	PatternCustom = "custom"
)

type Config struct {
	HTTPAddr       string `yaml:"http_addr"`
	CORSOrigin     string `yaml:"cors_origin"`
	DSN            string `yaml:"-"`
	MigrationsDir  string `yaml:"migrations_dir"`
	JournalDir     string `yaml:"journal_dir"`
	TickIntervalMs int    `yaml:"tick_interval_ms"`
	MaxTicks       int    `yaml:"max_ticks"`
	EventCapacity  int    `yaml:"event_capacity"`

	World   World   `yaml:"world"`
	Mission Mission `yaml:"mission"`
}

type World struct {
	Seed       int64 `yaml:"seed"`
	Size       int   `yaml:"size"`
	ChunkSize  int   `yaml:"chunk_size"`
	ViewRadius int   `yaml:"view_radius"`
	SpawnX     int   `yaml:"spawn_x"`
	SpawnY     int   `yaml:"spawn_y"`
}

type Mission struct {
	RunID           string              `yaml:"run_id"`
	InitialRadius   int                 `yaml:"initial_radius"`
	Resource        string              `yaml:"resource"`
	GoalQuantity    int                 `yaml:"goal_quantity"`
	ExcludeStreets  bool                `yaml:"exclude_streets"`
	CollectRetries  int                 `yaml:"collect_retries"`
	BuildMode       string              `yaml:"build_mode"`
	BuildDirection  string              `yaml:"build_direction"`
	BuildLength     int                 `yaml:"build_length"`
	Pattern         string              `yaml:"pattern"`
	PatternSize     int                 `yaml:"pattern_size"`
	Steps           []mission.BuildStep `yaml:"steps"`
	Dance           []world.Direction   `yaml:"dance"`
	SkipDance       bool                `yaml:"skip_dance"`
	Staging         *world.Point        `yaml:"staging"`
	OrientDirection string              `yaml:"orient_direction"`
}

func Default() Config {
	return Config{
		HTTPAddr:       ":8080",
		MigrationsDir:  "migrations",
		JournalDir:     "data/journal",
		TickIntervalMs: 200,
		EventCapacity:  256,
		World: World{
			Seed:       1,
			Size:       64,
			ChunkSize:  8,
			ViewRadius: 1,
			SpawnX:     32,
			SpawnY:     32,
		},
		Mission: Mission{
			InitialRadius:   1,
			Resource:        string(world.ContentRock),
			GoalQuantity:    5,
			ExcludeStreets:  true,
			CollectRetries:  2,
			BuildMode:       string(mission.BuildSimple),
			BuildDirection:  string(world.East),
			BuildLength:     5,
			PatternSize:     3,
			OrientDirection: string(world.North),
		},
	}
}

// Load overlays the YAML tuning file at path on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies environment overrides to base. STREETBUILDER_TUNING, when
// set, is loaded first and replaces base.
func FromEnv(base Config) (Config, error) {
	cfg := base
	if path := strings.TrimSpace(os.Getenv("STREETBUILDER_TUNING")); path != "" {
		loaded, err := Load(path)
		if err != nil {
			return base, err
		}
		cfg = loaded
	}

	cfg.HTTPAddr = stringEnv("STREETBUILDER_HTTP_ADDR", cfg.HTTPAddr)
	cfg.CORSOrigin = stringEnv("STREETBUILDER_CORS_ORIGIN", cfg.CORSOrigin)
	cfg.DSN = stringEnv("STREETBUILDER_DB_DSN", cfg.DSN)
	cfg.MigrationsDir = stringEnv("STREETBUILDER_MIGRATIONS_DIR", cfg.MigrationsDir)
	cfg.JournalDir = stringEnv("STREETBUILDER_JOURNAL_DIR", cfg.JournalDir)
	cfg.TickIntervalMs = intEnv("STREETBUILDER_TICK_MS", cfg.TickIntervalMs)
	cfg.MaxTicks = intEnv("STREETBUILDER_MAX_TICKS", cfg.MaxTicks)

	cfg.World.Seed = int64(intEnv("WORLD_SEED", int(cfg.World.Seed)))
	cfg.World.Size = intEnv("WORLD_SIZE", cfg.World.Size)
	cfg.World.SpawnX = intEnv("WORLD_SPAWN_X", cfg.World.SpawnX)
	cfg.World.SpawnY = intEnv("WORLD_SPAWN_Y", cfg.World.SpawnY)

	cfg.Mission.RunID = stringEnv("MISSION_RUN_ID", cfg.Mission.RunID)
	cfg.Mission.GoalQuantity = intEnv("MISSION_GOAL_QUANTITY", cfg.Mission.GoalQuantity)
	cfg.Mission.BuildMode = stringEnv("MISSION_BUILD_MODE", cfg.Mission.BuildMode)
	cfg.Mission.Pattern = stringEnv("MISSION_PATTERN", cfg.Mission.Pattern)
	if dance := directionsEnv("MISSION_DANCE"); len(dance) > 0 {
		cfg.Mission.Dance = dance
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("%w: tick_interval_ms must be positive", ErrInvalidConfig)
	}
	if c.World.Size <= 0 {
		return fmt.Errorf("%w: world.size must be positive", ErrInvalidConfig)
	}
	if !inWorld(c.World.Size, c.World.SpawnX, c.World.SpawnY) {
		return fmt.Errorf("%w: spawn (%d,%d) outside world of size %d", ErrInvalidConfig, c.World.SpawnX, c.World.SpawnY, c.World.Size)
	}
	m := c.Mission
	if m.InitialRadius <= 0 || m.InitialRadius > c.World.Size {
		return fmt.Errorf("%w: initial_radius must be in 1..%d", ErrInvalidConfig, c.World.Size)
	}
	if m.GoalQuantity <= 0 {
		return fmt.Errorf("%w: goal_quantity must be positive", ErrInvalidConfig)
	}
	if m.CollectRetries < 0 {
		return fmt.Errorf("%w: collect_retries must not be negative", ErrInvalidConfig)
	}
	switch world.Content(m.Resource) {
	case world.ContentRock, world.ContentTree, world.ContentBush:
	default:
		return fmt.Errorf("%w: unsupported resource %q", ErrInvalidConfig, m.Resource)
	}
	for _, d := range []string{m.BuildDirection, m.OrientDirection} {
		if !world.Direction(d).Valid() {
			return fmt.Errorf("%w: invalid direction %q", ErrInvalidConfig, d)
		}
	}
	for _, d := range m.Dance {
		if !d.Valid() {
			return fmt.Errorf("%w: invalid dance direction %q", ErrInvalidConfig, d)
		}
	}
	if m.Staging != nil && !inWorld(c.World.Size, m.Staging.X, m.Staging.Y) {
		return fmt.Errorf("%w: staging point %s outside world", ErrInvalidConfig, *m.Staging)
	}
	switch mission.BuildMode(m.BuildMode) {
	case mission.BuildSimple:
		if m.BuildLength <= 0 {
			return fmt.Errorf("%w: build_length must be positive", ErrInvalidConfig)
		}
	case mission.BuildPatterned:
		pattern, err := m.pattern()
		if err != nil {
			return err
		}
		if len(pattern) == 0 {
			return fmt.Errorf("%w: patterned build needs a non-empty pattern", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown build_mode %q", ErrInvalidConfig, m.BuildMode)
	}
	return nil
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

func (c Config) Spawn() world.Point {
	return world.Point{X: c.World.SpawnX, Y: c.World.SpawnY}
}

func (c Config) Runtime() runtime.Config {
	rc := runtime.DefaultConfig()
	rc.Seed = c.World.Seed
	rc.Size = c.World.Size
	rc.ChunkSize = c.World.ChunkSize
	rc.ViewRadius = c.World.ViewRadius
	return rc
}

// Agent converts the mission section. Call Validate first.
func (c Config) Agent() agent.Config {
	m := c.Mission
	pattern, _ := m.pattern()
	dance := m.Dance
	if m.SkipDance {
		dance = nil
	} else if len(dance) == 0 {
		dance = mission.DefaultDance()
	}
	var staging *world.Point
	if m.Staging != nil {
		p := *m.Staging
		staging = &p
	}
	return agent.Config{
		RunID:           m.RunID,
		WorldSize:       c.World.Size,
		InitialRadius:   m.InitialRadius,
		Resource:        world.Content(m.Resource),
		GoalQuantity:    m.GoalQuantity,
		ExcludeStreets:  m.ExcludeStreets,
		CollectRetries:  m.CollectRetries,
		BuildMode:       mission.BuildMode(m.BuildMode),
		BuildDirection:  world.Direction(m.BuildDirection),
		BuildLength:     m.BuildLength,
		Pattern:         pattern,
		Dance:           dance,
		StagingPoint:    staging,
		OrientDirection: world.Direction(m.OrientDirection),
	}
}

func (m Mission) pattern() ([]mission.BuildStep, error) {
	switch m.Pattern {
	case PatternNone:
		return nil, nil
	case PatternLoop:
		return mission.LoopPattern(m.PatternSize), nil
	case PatternSpiral:
		return mission.SpiralPattern(m.PatternSize), nil
	case PatternCustom:
		for i, s := range m.Steps {
			for _, d := range []world.Direction{s.Clear, s.Build, s.Move} {
				if d != "" && !d.Valid() {
					return nil, fmt.Errorf("%w: step %d has invalid direction %q", ErrInvalidConfig, i, d)
				}
			}
		}
		return append([]mission.BuildStep(nil), m.Steps...), nil
	default:
		return nil, fmt.Errorf("%w: unknown pattern %q", ErrInvalidConfig, m.Pattern)
	}
}

func inWorld(size, x, y int) bool {
	return x >= 0 && y >= 0 && x < size && y < size
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func directionsEnv(key string) []world.Direction {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	out := []world.Direction{}
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, world.Direction(part))
	}
	return out
}
