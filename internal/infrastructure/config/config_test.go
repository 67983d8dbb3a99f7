package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
production:
  id: "gym-finals"
obs:
  url: "ws://10.0.0.5:4455"
cameras:
  - id: "cam-1"
    name: "Vault"
    srt_url: "srt://10.0.0.20:9000"
    expected_apparatus: ["vault"]
  - id: "cam-2"
    name: "Beam"
    srt_url: "srt://10.0.0.21:9000"
graphics:
  url: "https://gfx.example.com/overlay"
  query_params:
    meet: "finals"
generation:
  families: ["single", "dual"]
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Production.ID != "gym-finals" {
		t.Errorf("Production.ID = %q, want %q", cfg.Production.ID, "gym-finals")
	}
	if cfg.OBS.URL != "ws://10.0.0.5:4455" {
		t.Errorf("OBS.URL = %q", cfg.OBS.URL)
	}
	if len(cfg.Cameras) != 2 || cfg.Cameras[0].Name != "Vault" || cfg.Cameras[0].ExpectedApparatus[0] != "vault" {
		t.Errorf("Cameras = %+v", cfg.Cameras)
	}
	if cfg.Graphics == nil || cfg.Graphics.QueryParams["meet"] != "finals" {
		t.Errorf("Graphics = %+v", cfg.Graphics)
	}
	if got := cfg.Families(); len(got) != 2 || got[0] != layout.FamilySingle {
		t.Errorf("Families() = %v", got)
	}

	// Unset fields keep their defaults.
	if cfg.Generation.CameraInputKind != "ffmpeg_source" {
		t.Errorf("Generation.CameraInputKind = %q, want default", cfg.Generation.CameraInputKind)
	}
	if cfg.OBS.RefreshInterval != 60 {
		t.Errorf("OBS.RefreshInterval = %d, want default 60", cfg.OBS.RefreshInterval)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
production:
  id: ""
cameras:
  - name: "Vault"
  - name: "Vault"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	// Every problem is reported at once.
	for _, want := range []string{"production.id", "duplicated"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "missing production ID", mutate: func(c *Config) { c.Production.ID = "" }, wantErr: true},
		{name: "obs url http", mutate: func(c *Config) { c.OBS.URL = "http://localhost:4455" }, wantErr: true},
		{name: "obs url no host", mutate: func(c *Config) { c.OBS.URL = "ws://" }, wantErr: true},
		{name: "obs url wss", mutate: func(c *Config) { c.OBS.URL = "wss://obs.example.com" }},
		{
			name: "camera without name",
			mutate: func(c *Config) {
				c.Cameras = []layout.Camera{{ID: "1", Name: " "}}
			},
			wantErr: true,
		},
		{
			name: "duplicate camera after trim",
			mutate: func(c *Config) {
				c.Cameras = []layout.Camera{{Name: "Vault"}, {Name: " Vault "}}
			},
			wantErr: true,
		},
		{
			name: "distinct cameras",
			mutate: func(c *Config) {
				c.Cameras = []layout.Camera{{Name: "A"}, {Name: "B"}}
			},
		},
		{name: "unknown family", mutate: func(c *Config) { c.Generation.Families = []string{"octo"} }, wantErr: true},
		{name: "known families", mutate: func(c *Config) { c.Generation.Families = []string{"quad", "graphics"} }},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: true},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: true},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: true},
		{name: "influx enabled without url", mutate: func(c *Config) { c.InfluxDB.Enabled = true }, wantErr: true},
		{
			name: "influx enabled",
			mutate: func(c *Config) {
				c.InfluxDB = InfluxDBConfig{Enabled: true, URL: "http://influx:8086", Bucket: "broadcast"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("BROADCAST_OBS_URL", "ws://obs.studio:4455")
	t.Setenv("BROADCAST_OBS_LOCK_DIR", "/run/broadcast")
	t.Setenv("BROADCAST_GRAPHICS_URL", "https://gfx.example.com")
	t.Setenv("BROADCAST_DATABASE_PATH", "/custom/path.db")
	t.Setenv("BROADCAST_MQTT_HOST", "mqtt.example.com")
	t.Setenv("BROADCAST_MQTT_USERNAME", "testuser")
	t.Setenv("BROADCAST_MQTT_PASSWORD", "testpass")
	t.Setenv("BROADCAST_API_HOST", "192.168.1.1")
	t.Setenv("BROADCAST_API_PORT", "9090")
	t.Setenv("BROADCAST_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("BROADCAST_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	checks := []struct {
		field, got, want string
	}{
		{"OBS.URL", cfg.OBS.URL, "ws://obs.studio:4455"},
		{"OBS.LockDir", cfg.OBS.LockDir, "/run/broadcast"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}

	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Graphics == nil || cfg.Graphics.URL != "https://gfx.example.com" {
		t.Errorf("Graphics = %+v", cfg.Graphics)
	}
}

func TestApplyEnvOverrides_BadPortIgnored(t *testing.T) {
	cfg := defaultConfig()
	t.Setenv("BROADCAST_API_PORT", "not-a-port")
	applyEnvOverrides(cfg)
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
}

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if cfg.Production.ID == "" {
		t.Error("default config should have non-empty Production.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("default config should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("default API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Graphics != nil {
		t.Errorf("default Graphics = %+v, want nil", cfg.Graphics)
	}
}

func TestConfig_ValidateRosterMatchesLayout(t *testing.T) {
	tests := []struct {
		name    string
		cameras []layout.Camera
	}{
		{"empty roster", nil},
		{"distinct", []layout.Camera{{Name: "Vault"}, {Name: "Beam"}}},
		{"blank name", []layout.Camera{{Name: "Vault"}, {Name: "\t"}}},
		{"duplicate", []layout.Camera{{Name: "Beam"}, {Name: "Beam"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Cameras = tt.cameras

			rosterErr := layout.CheckRoster(tt.cameras)
			err := cfg.Validate()
			if (err != nil) != (rosterErr != nil) {
				t.Fatalf("Validate() error = %v, CheckRoster() error = %v", err, rosterErr)
			}
			if rosterErr != nil && !strings.Contains(err.Error(), "cameras: "+rosterErr.Error()) {
				t.Errorf("Validate() error %q does not carry %q", err, rosterErr)
			}
		})
	}
}
