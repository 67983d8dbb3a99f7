package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

// Config is the root configuration structure for the broadcast scene service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Production ProductionConfig        `yaml:"production"`
	OBS        OBSConfig               `yaml:"obs"`
	Cameras    []layout.Camera         `yaml:"cameras"`
	Graphics   *layout.GraphicsOverlay `yaml:"graphics"`
	Generation GenerationConfig        `yaml:"generation"`
	Database   DatabaseConfig          `yaml:"database"`
	MQTT       MQTTConfig              `yaml:"mqtt"`
	API        APIConfig               `yaml:"api"`
	WebSocket  WebSocketConfig         `yaml:"websocket"`
	InfluxDB   InfluxDBConfig          `yaml:"influxdb"`
	Logging    LoggingConfig           `yaml:"logging"`
}

// ProductionConfig identifies the production this instance serves.
type ProductionConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// OBSConfig contains obs-websocket connection settings.
type OBSConfig struct {
	// URL is the obs-websocket endpoint, e.g. "ws://127.0.0.1:4455".
	URL string `yaml:"url"`

	// ConnectTimeout bounds dial plus handshake, in seconds.
	ConnectTimeout int `yaml:"connect_timeout"`

	// RequestTimeout bounds one request round trip, in seconds.
	RequestTimeout int `yaml:"request_timeout"`

	// ReconnectInterval is the initial reconnection delay, in seconds.
	ReconnectInterval int `yaml:"reconnect_interval"`

	// RefreshInterval is the periodic scene cache refresh, in seconds.
	RefreshInterval int `yaml:"refresh_interval"`

	// LockDir holds the single-writer lock files, one per OBS target.
	LockDir string `yaml:"lock_dir"`
}

// GenerationConfig contains input creation settings for scene generation.
type GenerationConfig struct {
	// Families restricts generation to these scene families. Empty means all.
	Families []string `yaml:"families"`

	CameraInputKind   string `yaml:"camera_input_kind"`
	BufferingMB       int    `yaml:"buffering_mb"`
	ReconnectDelaySec int    `yaml:"reconnect_delay_sec"`
	GraphicsInputKind string `yaml:"graphics_input_kind"`
	GraphicsFPS       int    `yaml:"graphics_fps"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains settings for the live event WebSocket.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: BROADCAST_SECTION_KEY
// For example: BROADCAST_OBS_URL, BROADCAST_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied. Used when no config file is given.
func Default() (*Config, error) {
	cfg := defaultConfig()
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Production: ProductionConfig{
			ID:   "production-001",
			Name: "Broadcast",
		},
		OBS: OBSConfig{
			URL:               "ws://127.0.0.1:4455",
			ConnectTimeout:    10,
			RequestTimeout:    10,
			ReconnectInterval: 2,
			RefreshInterval:   60,
			LockDir:           "./data/locks",
		},
		Generation: GenerationConfig{
			CameraInputKind:   "ffmpeg_source",
			BufferingMB:       2,
			ReconnectDelaySec: 2,
			GraphicsInputKind: "browser_source",
			GraphicsFPS:       30,
		},
		Database: DatabaseConfig{
			Path:        "./data/broadcast.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "broadcast-scenes",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 120,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: BROADCAST_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// OBS
	if v := os.Getenv("BROADCAST_OBS_URL"); v != "" {
		cfg.OBS.URL = v
	}
	if v := os.Getenv("BROADCAST_OBS_LOCK_DIR"); v != "" {
		cfg.OBS.LockDir = v
	}

	// Graphics
	if v := os.Getenv("BROADCAST_GRAPHICS_URL"); v != "" {
		if cfg.Graphics == nil {
			cfg.Graphics = &layout.GraphicsOverlay{}
		}
		cfg.Graphics.URL = v
	}

	// Database
	if v := os.Getenv("BROADCAST_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("BROADCAST_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("BROADCAST_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("BROADCAST_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("BROADCAST_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("BROADCAST_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("BROADCAST_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// Logging
	if v := os.Getenv("BROADCAST_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Production.ID == "" {
		errs = append(errs, "production.id is required")
	}

	// OBS validation
	if u, err := url.Parse(c.OBS.URL); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		errs = append(errs, "obs.url must be a ws:// or wss:// URL")
	}

	// Camera names are scene identity.
	if err := layout.CheckRoster(c.Cameras); err != nil {
		errs = append(errs, "cameras: "+err.Error())
	}

	for _, f := range c.Generation.Families {
		if _, ok := layout.ParseFamily(f); !ok {
			errs = append(errs, fmt.Sprintf("generation.families: unknown family %q", f))
		}
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Families returns the configured scene families.
func (c *Config) Families() []layout.Family {
	out := make([]layout.Family, 0, len(c.Generation.Families))
	for _, f := range c.Generation.Families {
		out = append(out, layout.Family(f))
	}
	return out
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// Seconds converts a seconds setting to a Duration.
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
