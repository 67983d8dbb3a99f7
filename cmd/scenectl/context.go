package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/nerrad567/broadcast-scenes/internal/bridges/obs"
	"github.com/nerrad567/broadcast-scenes/internal/history"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/config"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/database"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/influxdb"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/logging"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
	"github.com/nerrad567/broadcast-scenes/internal/statesync"
	"github.com/nerrad567/broadcast-scenes/internal/writerlock"
	"github.com/nerrad567/broadcast-scenes/migrations"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// sourceCLI is recorded as the trigger and audit source of CLI actions.
	sourceCLI = "cli"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

// ensureConfig loads .env and the config file once. Without --config or
// BROADCAST_CONFIG, a missing default file falls back to built-in defaults.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.configErr = fmt.Errorf("loading .env: %w", err)
			return
		}

		path, explicit := c.configPath()
		if _, err := os.Stat(path); !explicit && errors.Is(err, fs.ErrNotExist) {
			c.config, c.configErr = config.Default()
			return
		}
		c.config, c.configErr = config.Load(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() (string, bool) {
	if c.configFlag != nil {
		if p := strings.TrimSpace(*c.configFlag); p != "" {
			return p, true
		}
	}
	if p := os.Getenv("BROADCAST_CONFIG"); p != "" {
		return p, true
	}
	return defaultConfigPath, false
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// logger writes to stderr so stdout stays clean for tables and JSON.
func (c *commandContext) logger(cfg *config.Config) *logging.Logger {
	lc := cfg.Logging
	if lc.Output != "discard" {
		lc.Output = "stderr"
	}
	if lc.Level == "" || lc.Level == "info" {
		lc.Level = "warn"
	}
	lc.Format = "text"
	return logging.New(lc, version)
}

// session holds the connections one command needs.
type session struct {
	cfg      *config.Config
	log      *logging.Logger
	db       *database.DB
	obs      *obs.Client
	control  scenes.ControlClient
	cache    *statesync.Syncer
	lock     *writerlock.Lock
	influx   *influxdb.Client
	recorder *history.Recorder
}

// open connects to OBS and the history database. With write set, the
// writer lock for the OBS target is taken first.
func (c *commandContext) open(ctx context.Context, write bool) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, log: c.logger(cfg)}

	if write {
		s.lock, err = writerlock.Acquire(cfg.OBS.LockDir, cfg.OBS.URL)
		if err != nil {
			return nil, fmt.Errorf("%w (is broadcastd running against %s?)", err, cfg.OBS.URL)
		}
	}

	s.db, err = database.Open(database.FromConfig(cfg.Database))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := s.db.Migrate(ctx, migrations.FS); err != nil {
		s.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	var metrics history.Metrics
	if cfg.InfluxDB.Enabled {
		s.influx, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		metrics = s.influx
	}
	runs := history.NewSQLiteRunRepository(s.db.DB)
	s.recorder = history.NewRecorder(runs, history.NewSQLiteAuditRepository(s.db.DB), metrics, sourceCLI)
	s.recorder.SetLogger(s.log)

	s.obs, err = obs.Connect(ctx, obs.Config{
		URL:            cfg.OBS.URL,
		ConnectTimeout: config.Seconds(cfg.OBS.ConnectTimeout),
		RequestTimeout: config.Seconds(cfg.OBS.RequestTimeout),
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("connecting to OBS at %s: %w", cfg.OBS.URL, err)
	}
	s.obs.SetLogger(s.log)
	s.control = obs.TopFirst(s.obs)

	s.cache = statesync.New(s.control, statesync.Config{})
	if err := s.cache.Refresh(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("listing scenes: %w", err)
	}
	return s, nil
}

// openHistory opens only the history database.
func (c *commandContext) openHistory(ctx context.Context) (*database.DB, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	db, err := database.Open(database.FromConfig(cfg.Database))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // Error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

func (s *session) engine() *scenes.Engine {
	return newEngine(s.cfg, s.control, s.recorder, s.log)
}

// newEngine builds an engine from the generation settings. client may be
// nil for previews, which make no remote calls.
func newEngine(cfg *config.Config, client scenes.ControlClient, observer scenes.Observer, log *logging.Logger) *scenes.Engine {
	e := scenes.NewEngine(client, observer, log)
	e.SetSourceSettings(scenes.SourceSettings{
		CameraInputKind:   cfg.Generation.CameraInputKind,
		BufferingMB:       cfg.Generation.BufferingMB,
		ReconnectDelaySec: cfg.Generation.ReconnectDelaySec,
		GraphicsInputKind: cfg.Generation.GraphicsInputKind,
		GraphicsFPS:       cfg.Generation.GraphicsFPS,
	})
	e.SetDefaultFamilies(cfg.Families())
	e.UpdateConfig(cfg.Cameras, cfg.Graphics)
	return e
}

func (s *session) manager() *scenes.Manager {
	return scenes.NewManager(s.control, s.cache, s.log)
}

// Close releases whatever open acquired.
func (s *session) Close() {
	if s.obs != nil {
		s.obs.Close() //nolint:errcheck // Best effort on exit
	}
	if s.influx != nil {
		s.influx.Close() //nolint:errcheck // Flushes pending points
	}
	if s.db != nil {
		s.db.Close() //nolint:errcheck // Best effort on exit
	}
	if s.lock != nil {
		s.lock.Release() //nolint:errcheck // Best effort on exit
	}
}
