package statesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/bridges/obs"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
)

// defaultRefreshInterval is the periodic refresh when none is configured.
const defaultRefreshInterval = time.Minute

// refreshTimeout bounds one GetSceneList round trip.
const refreshTimeout = 10 * time.Second

// ErrAlreadyStarted is returned by Start on a running Syncer.
var ErrAlreadyStarted = errors.New("statesync: already started")

// Scene events that invalidate the cached listing.
var refreshEvents = map[string]bool{
	"SceneCreated":     true,
	"SceneRemoved":     true,
	"SceneNameChanged": true,
	"SceneListChanged": true,
}

// Logger defines the logging interface used by the Syncer.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventSource delivers obs-websocket events and reconnect notifications.
// *obs.Client implements it.
type EventSource interface {
	SetOnEvent(callback func(obs.Event))
	SetOnReconnect(callback func())
}

// Config holds Syncer settings.
type Config struct {
	// RefreshInterval is the period of the safety-net refresh.
	// Default: 1 minute.
	RefreshInterval time.Duration
}

// Syncer maintains the scene listing cache.
//
// All methods are thread-safe.
type Syncer struct {
	client   scenes.ControlClient
	interval time.Duration
	logger   Logger
	now      func() time.Time

	mu    sync.RWMutex
	state *scenes.CacheState

	trigger chan struct{}

	runMu   sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Ensure Syncer satisfies the manager's cache contract.
var _ scenes.StateCache = (*Syncer)(nil)

// New creates a Syncer reading from client.
func New(client scenes.ControlClient, cfg Config) *Syncer {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Syncer{
		client:   client,
		interval: interval,
		logger:   noopLogger{},
		now:      time.Now,
		trigger:  make(chan struct{}, 1),
	}
}

// SetLogger sets the logger for the syncer.
func (s *Syncer) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Attach subscribes to src's events and reconnect notifications.
func (s *Syncer) Attach(src EventSource) {
	src.SetOnEvent(s.HandleEvent)
	src.SetOnReconnect(s.RequestRefresh)
}

// State returns a copy of the cached listing, or nil if no fetch has
// succeeded yet.
func (s *Syncer) State() *scenes.CacheState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return nil
	}
	cp := *s.state
	cp.Scenes = append([]scenes.SceneInfo(nil), s.state.Scenes...)
	if cp.Scenes == nil {
		cp.Scenes = []scenes.SceneInfo{}
	}
	return &cp
}

// Refresh fetches the full scene listing and replaces the cache.
// On failure the previous state is kept.
func (s *Syncer) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	list, current, err := scenes.ListSceneNames(ctx, s.client)
	if err != nil {
		return fmt.Errorf("refreshing scene list: %w", err)
	}

	s.mu.Lock()
	s.state = &scenes.CacheState{
		Scenes:              list,
		CurrentProgramScene: current,
		UpdatedAt:           s.now(),
	}
	s.mu.Unlock()

	s.logger.Debug("scene cache refreshed", "count", len(list), "program", current)
	return nil
}

// RequestRefresh schedules a refresh on the running loop. Requests made
// while one is already pending are coalesced.
func (s *Syncer) RequestRefresh() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// HandleEvent updates the cache for one obs-websocket event.
// Program scene changes are applied in place; listing changes schedule a
// refresh.
func (s *Syncer) HandleEvent(ev obs.Event) {
	if ev.Type == "CurrentProgramSceneChanged" {
		var data struct {
			SceneName string `json:"sceneName"`
		}
		if err := json.Unmarshal(ev.Data, &data); err != nil {
			s.logger.Warn("malformed program scene event", "error", err)
			return
		}
		s.mu.Lock()
		if s.state != nil {
			s.state.CurrentProgramScene = data.SceneName
			s.state.UpdatedAt = s.now()
		}
		s.mu.Unlock()
		return
	}

	if refreshEvents[ev.Type] {
		s.logger.Debug("scene event, scheduling refresh", "event", ev.Type)
		s.RequestRefresh()
	}
}

// Start performs the initial fetch and starts the refresh loop.
//
// The loop runs until Stop is called or ctx is cancelled, even if the
// initial fetch fails; that error is returned so the caller can log it.
func (s *Syncer) Start(ctx context.Context) error {
	s.runMu.Lock()
	if s.cancel != nil {
		s.runMu.Unlock()
		return ErrAlreadyStarted
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.stopped = make(chan struct{})
	stopped := s.stopped
	s.runMu.Unlock()

	err := s.Refresh(loopCtx)
	if err != nil {
		s.logger.Warn("initial scene fetch failed", "error", err)
	} else {
		s.logger.Info("scene cache ready", "scenes", len(s.State().Scenes))
	}

	go s.loop(loopCtx, stopped)
	return err
}

// Stop ends the refresh loop and waits for it to exit.
func (s *Syncer) Stop() {
	s.runMu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.cancel = nil
	s.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (s *Syncer) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.trigger:
		}
		if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
			s.logger.Warn("scene cache refresh failed", "error", err)
		}
	}
}
