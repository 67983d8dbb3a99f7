// broadcastd is the scene service daemon.
//
// It holds the single writer lock for one OBS instance, keeps a live cache
// of its scene list, and generates and edits scenes on request from the
// REST API or the MQTT command topic. Every run and operator edit is
// recorded in SQLite.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/nerrad567/broadcast-scenes/internal/api"
	"github.com/nerrad567/broadcast-scenes/internal/bridges/obs"
	"github.com/nerrad567/broadcast-scenes/internal/events"
	"github.com/nerrad567/broadcast-scenes/internal/history"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/config"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/database"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/influxdb"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/logging"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/mqtt"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
	"github.com/nerrad567/broadcast-scenes/internal/statesync"
	"github.com/nerrad567/broadcast-scenes/internal/writerlock"
	"github.com/nerrad567/broadcast-scenes/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"

	// historySource is recorded on cleanup audit entries written by the daemon.
	historySource = "daemon"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component, blocks until ctx is cancelled, then tears
// down in reverse order through the deferred closes.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // Linear startup sequence
	log := logging.Default()
	log.Info("starting broadcastd",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	if err := loadDotEnv(); err != nil {
		return err
	}

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"production", cfg.Production.ID,
		"cameras", len(cfg.Cameras),
	)

	// Database
	db, err := database.Open(database.FromConfig(cfg.Database))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Database.Path)

	// Single writer per OBS target
	lock, err := writerlock.Acquire(cfg.OBS.LockDir, cfg.OBS.URL)
	if err != nil {
		return fmt.Errorf("acquiring writer lock: %w", err)
	}
	defer func() {
		if releaseErr := lock.Release(); releaseErr != nil {
			log.Error("error releasing writer lock", "error", releaseErr)
		}
	}()
	log.Info("writer lock held", "path", lock.Path())

	// OBS control channel
	obsClient, err := obs.Connect(ctx, obs.Config{
		URL:               cfg.OBS.URL,
		ConnectTimeout:    config.Seconds(cfg.OBS.ConnectTimeout),
		RequestTimeout:    config.Seconds(cfg.OBS.RequestTimeout),
		ReconnectInterval: config.Seconds(cfg.OBS.ReconnectInterval),
	})
	if err != nil {
		return fmt.Errorf("connecting to OBS: %w", err)
	}
	defer func() {
		log.Info("disconnecting from OBS")
		if closeErr := obsClient.Close(); closeErr != nil {
			log.Error("error closing OBS connection", "error", closeErr)
		}
	}()
	obsClient.SetLogger(log.With("component", "obs"))
	log.Info("OBS connected", "url", cfg.OBS.URL, "server_version", obsClient.Stats().ServerVersion)

	control := obs.TopFirst(obsClient)

	// Scene cache
	syncer := statesync.New(control, statesync.Config{RefreshInterval: config.Seconds(cfg.OBS.RefreshInterval)})
	syncer.SetLogger(log.With("component", "statesync"))
	syncer.Attach(obsClient)
	_ = syncer.Start(ctx) //nolint:errcheck // Logged by the syncer; the loop keeps retrying
	defer syncer.Stop()

	// Metrics (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.With("component", "mqtt"))
		mqttClient.SetOnConnect(func() { log.Info("MQTT reconnected") })
		mqttClient.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// History
	runs := history.NewSQLiteRunRepository(db.DB)
	audit := history.NewSQLiteAuditRepository(db.DB)
	var metrics history.Metrics
	if influxClient != nil {
		metrics = influxClient
	}
	recorder := history.NewRecorder(runs, audit, metrics, historySource)
	recorder.SetLogger(log.With("component", "history"))

	// Engine and manager
	hub := api.NewHub(cfg.WebSocket, log.With("component", "websocket"))
	observers := scenes.Observers{recorder, api.NewHubObserver(hub)}
	if mqttClient != nil {
		publisher := events.NewMQTTPublisher(mqttClient, cfg.Production.ID)
		publisher.SetLogger(log.With("component", "events"))
		observers = append(observers, publisher)
	}

	engine := scenes.NewEngine(control, observers, log.With("component", "scenes"))
	engine.SetSourceSettings(scenes.SourceSettings{
		CameraInputKind:   cfg.Generation.CameraInputKind,
		BufferingMB:       cfg.Generation.BufferingMB,
		ReconnectDelaySec: cfg.Generation.ReconnectDelaySec,
		GraphicsInputKind: cfg.Generation.GraphicsInputKind,
		GraphicsFPS:       cfg.Generation.GraphicsFPS,
	})
	engine.SetDefaultFamilies(cfg.Families())
	engine.UpdateConfig(cfg.Cameras, cfg.Graphics)
	if _, ok := engine.BuildGraphicsURL(); !ok {
		log.Warn("no graphics overlay URL configured; the graphics scene will fail")
	}

	manager := scenes.NewManager(control, syncer, log.With("component", "scenes"))

	// MQTT commands
	if mqttClient != nil {
		listener := events.NewCommandListener(engine)
		listener.SetLogger(log.With("component", "commands"))
		if err := listener.Start(ctx, mqttClient); err != nil {
			return fmt.Errorf("subscribing to commands: %w", err)
		}
		defer listener.Stop()
		log.Info("listening for commands", "topic", mqtt.Topics{}.GenerationCommand())
	}

	// Verify all connections are healthy
	checks := healthChecks(db, obsClient, mqttClient, influxClient)
	if err := runHealthChecks(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// API
	deps := api.Deps{
		Config:  cfg.API,
		WS:      cfg.WebSocket,
		Logger:  log.With("component", "api"),
		Engine:  engine,
		Manager: manager,
		Cache:   syncer,
		Runs:    runs,
		Audit:   audit,
		OBS:     obsClient,
		DB:      db,
		Checks:  checks,
		Hub:     hub,
		Version: version,
	}
	if mqttClient != nil {
		deps.MQTT = mqttClient
	}
	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	go hub.Run(hubCtx)
	defer stopHub()

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred closes run in reverse: API, hub, commands, syncer, MQTT,
	// InfluxDB, OBS, writer lock, database.
	return nil
}

// getConfigPath returns the configuration file path.
// Uses BROADCAST_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("BROADCAST_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadDotEnv loads .env from the working directory if present, so
// BROADCAST_* overrides can live next to the config file.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// healthChecks lists the checks for every connected component. Disabled
// components are omitted.
func healthChecks(db *database.DB, obsClient *obs.Client, mqttClient *mqtt.Client, influxClient *influxdb.Client) []api.HealthCheck {
	checks := []api.HealthCheck{
		{Name: "database", Check: db.HealthCheck},
		{Name: "obs", Check: obsClient.HealthCheck},
	}
	if mqttClient != nil {
		checks = append(checks, api.HealthCheck{Name: "mqtt", Check: mqttClient.HealthCheck})
	}
	if influxClient != nil {
		checks = append(checks, api.HealthCheck{Name: "influxdb", Check: influxClient.HealthCheck})
	}
	return checks
}

// runHealthChecks returns the first failing check.
func runHealthChecks(ctx context.Context, checks []api.HealthCheck) error {
	for _, c := range checks {
		if err := c.Check(ctx); err != nil {
			return fmt.Errorf("%s: %w", c.Name, err)
		}
	}
	return nil
}
