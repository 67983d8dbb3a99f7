package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemMetrics represents the complete system metrics response.
type SystemMetrics struct {
	Timestamp     string           `json:"timestamp"`
	Version       string           `json:"version"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	Runtime       RuntimeMetrics   `json:"runtime"`
	WebSocket     WSMetrics        `json:"websocket"`
	MQTT          MQTTMetrics      `json:"mqtt"`
	OBS           *OBSMetrics      `json:"obs,omitempty"`
	Scenes        SceneMetrics     `json:"scenes"`
	Database      *DatabaseMetrics `json:"database,omitempty"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains WebSocket hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// MQTTMetrics contains MQTT client statistics.
type MQTTMetrics struct {
	Connected bool `json:"connected"`
}

// OBSMetrics contains control channel statistics.
type OBSMetrics struct {
	Connected       bool   `json:"connected"`
	Reconnecting    bool   `json:"reconnecting"`
	ServerVersion   string `json:"server_version,omitempty"`
	RequestsTotal   uint64 `json:"requests_total"`
	RequestErrors   uint64 `json:"request_errors"`
	EventsRx        uint64 `json:"events_rx"`
	EventsDropped   uint64 `json:"events_dropped"`
	ReconnectsTotal uint64 `json:"reconnects_total"`
}

// SceneMetrics describes the cached listing and this session's output.
type SceneMetrics struct {
	Cached              int    `json:"cached"`
	Generated           int    `json:"generated"`
	CurrentProgramScene string `json:"current_program_scene,omitempty"`
	CacheUpdatedAt      string `json:"cache_updated_at,omitempty"`
}

// DatabaseMetrics contains database connection pool statistics.
type DatabaseMetrics struct {
	OpenConnections int   `json:"open_connections"`
	InUse           int   `json:"in_use"`
	Idle            int   `json:"idle"`
	WaitCount       int64 `json:"wait_count"`
}

// handleMetrics returns runtime and connection statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := SystemMetrics{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Scenes: SceneMetrics{
			Generated: len(s.engine.GeneratedScenes()),
		},
	}

	if s.mqtt != nil {
		metrics.MQTT.Connected = s.mqtt.IsConnected()
	}

	if s.obs != nil {
		st := s.obs.Stats()
		metrics.OBS = &OBSMetrics{
			Connected:       st.Connected,
			Reconnecting:    st.Reconnecting,
			ServerVersion:   st.ServerVersion,
			RequestsTotal:   st.RequestsTotal,
			RequestErrors:   st.RequestErrors,
			EventsRx:        st.EventsRx,
			EventsDropped:   st.EventsDropped,
			ReconnectsTotal: st.ReconnectsTotal,
		}
	}

	if s.cache != nil {
		if st := s.cache.State(); st != nil {
			metrics.Scenes.Cached = len(st.Scenes)
			metrics.Scenes.CurrentProgramScene = st.CurrentProgramScene
			metrics.Scenes.CacheUpdatedAt = st.UpdatedAt.UTC().Format(time.RFC3339)
		}
	}

	if s.db != nil {
		dbStats := s.db.Stats()
		metrics.Database = &DatabaseMetrics{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
		}
	}

	writeJSON(w, http.StatusOK, metrics)
}
