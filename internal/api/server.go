package api

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/bridges/obs"
	"github.com/nerrad567/broadcast-scenes/internal/history"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/config"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/logging"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// OBSStatus reports control channel statistics. *obs.Client implements it.
type OBSStatus interface {
	Stats() obs.Stats
}

// MQTTStatus reports broker connectivity. *mqtt.Client implements it.
type MQTTStatus interface {
	IsConnected() bool
}

// DBStatus reports connection pool statistics. *database.DB implements it.
type DBStatus interface {
	Stats() sql.DBStats
}

// HealthCheck is one named component checked by GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Engine  *scenes.Engine
	Manager *scenes.Manager
	Cache   scenes.StateCache // optional: adds program scene and freshness to listings

	Runs  history.RunRepository   // optional: GET /generation/runs
	Audit history.AuditRepository // optional: GET /audit and CRUD audit entries

	OBS    OBSStatus // optional
	MQTT   MQTTStatus
	DB     DBStatus
	Checks []HealthCheck

	// Hub, when set, is used instead of creating one. The daemon creates the
	// hub first so the engine can broadcast through a HubObserver.
	Hub *Hub

	Version string
}

// Server is the HTTP API server.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	engine    *scenes.Engine
	manager   *scenes.Manager
	cache     scenes.StateCache
	runs      history.RunRepository
	auditRepo history.AuditRepository
	auditCh   chan *history.AuditLog
	obs       OBSStatus
	mqtt      MQTTStatus
	db        DBStatus
	checks    []HealthCheck
	version   string
	startTime time.Time

	server      *http.Server
	listener    net.Listener
	hub         *Hub
	externalHub bool
	cancel      context.CancelFunc
	done        chan struct{} // closed when the audit drain goroutine exits
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("scene engine is required")
	}
	if deps.Manager == nil {
		return nil, fmt.Errorf("scene manager is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		engine:    deps.Engine,
		manager:   deps.Manager,
		cache:     deps.Cache,
		runs:      deps.Runs,
		auditRepo: deps.Audit,
		obs:       deps.OBS,
		mqtt:      deps.MQTT,
		db:        deps.DB,
		checks:    deps.Checks,
		version:   deps.Version,
		startTime: time.Now(),
	}
	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.WS, deps.Logger)
	}
	if s.auditRepo != nil {
		s.auditCh = make(chan *history.AuditLog, auditChanSize)
	}
	return s, nil
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// The listener is bound before Start returns, so a port conflict is
// reported here rather than logged from the serving goroutine.
//
// Parameters:
//   - ctx: Parent context for the hub and audit writer
//
// Returns:
//   - error: If the listener cannot be bound
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if s.auditCh != nil {
			s.drainAuditLog(srvCtx)
		}
	}()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("binding API listener: %w", err)
	}
	s.listener = ln
	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then flushes queued audit entries.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("API server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	err := s.server.Shutdown(ctx)

	if s.cancel != nil {
		s.cancel()
	}
	<-s.done

	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
