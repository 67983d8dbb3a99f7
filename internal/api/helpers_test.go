package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/history"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/config"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/database"
	"github.com/nerrad567/broadcast-scenes/internal/infrastructure/logging"
	"github.com/nerrad567/broadcast-scenes/internal/scenes"
	"github.com/nerrad567/broadcast-scenes/migrations"
)

// obsError is a rejected request with a status code.
type obsError struct {
	code int
	msg  string
}

func (e *obsError) Error() string   { return e.msg }
func (e *obsError) StatusCode() int { return e.code }

type obsItem struct {
	id      int
	source  string
	enabled bool
}

// fakeOBS keeps scenes and items in memory. Items are stored top first.
type fakeOBS struct {
	mu       sync.Mutex
	scenes   []string
	items    map[string][]obsItem
	inputs   map[string]bool
	nextID   int
	failures map[string]error
	block    chan struct{} // when set, CreateScene waits on it
	entered  chan struct{} // signalled when a CreateScene starts waiting
}

func newFakeOBS(sceneNames ...string) *fakeOBS {
	f := &fakeOBS{
		items:    make(map[string][]obsItem),
		inputs:   make(map[string]bool),
		failures: make(map[string]error),
	}
	f.scenes = append(f.scenes, sceneNames...)
	return f
}

func (f *fakeOBS) failOn(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = err
}

func (f *fakeOBS) addItem(scene, source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.items[scene] = append([]obsItem{{id: f.nextID, source: source, enabled: true}}, f.items[scene]...)
}

func (f *fakeOBS) has(scene string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexOf(scene) >= 0
}

func (f *fakeOBS) indexOf(scene string) int {
	for i, s := range f.scenes {
		if s == scene {
			return i
		}
	}
	return -1
}

// State lets the fake double as the state cache.
func (f *fakeOBS) State() *scenes.CacheState {
	f.mu.Lock()
	defer f.mu.Unlock()
	st := &scenes.CacheState{Scenes: []scenes.SceneInfo{}, CurrentProgramScene: "Starting Soon", UpdatedAt: time.Now()}
	for i, s := range f.scenes {
		st.Scenes = append(st.Scenes, scenes.SceneInfo{Name: s, Index: i})
	}
	return st
}

func (f *fakeOBS) Call(_ context.Context, method string, params any) (json.RawMessage, error) {
	p := map[string]any{}
	if params != nil {
		raw, _ := json.Marshal(params)
		_ = json.Unmarshal(raw, &p)
	}
	str := func(k string) string { s, _ := p[k].(string); return s }

	f.mu.Lock()
	block := f.block
	f.mu.Unlock()
	if block != nil && method == scenes.MethodCreateScene {
		select {
		case f.entered <- struct{}{}:
		default:
		}
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failures[method]; ok {
		return nil, err
	}

	var resp any
	switch method {
	case scenes.MethodGetSceneList:
		list := []map[string]any{}
		for i, s := range f.scenes {
			list = append(list, map[string]any{"sceneName": s, "sceneIndex": i})
		}
		resp = map[string]any{"scenes": list}
	case scenes.MethodCreateScene:
		if f.indexOf(str("sceneName")) >= 0 {
			return nil, &obsError{code: scenes.CodeResourceAlreadyExists, msg: "scene already exists"}
		}
		f.scenes = append(f.scenes, str("sceneName"))
	case scenes.MethodRemoveScene:
		i := f.indexOf(str("sceneName"))
		if i < 0 {
			return nil, &obsError{code: scenes.CodeResourceNotFound, msg: "scene not found"}
		}
		f.scenes = append(f.scenes[:i], f.scenes[i+1:]...)
	case scenes.MethodSetSceneName:
		i := f.indexOf(str("sceneName"))
		if i < 0 {
			return nil, &obsError{code: scenes.CodeResourceNotFound, msg: "scene not found"}
		}
		if f.indexOf(str("newSceneName")) >= 0 {
			return nil, &obsError{code: scenes.CodeResourceAlreadyExists, msg: "scene already exists"}
		}
		f.scenes[i] = str("newSceneName")
	case scenes.MethodGetSceneItemList:
		items := []map[string]any{}
		for i, it := range f.items[str("sceneName")] {
			items = append(items, map[string]any{
				"sceneItemId": it.id, "sourceName": it.source,
				"sceneItemEnabled": it.enabled, "sceneItemIndex": i,
			})
		}
		resp = map[string]any{"sceneItems": items}
	case scenes.MethodCreateSceneItem:
		f.nextID++
		scene := str("sceneName")
		enabled, _ := p["sceneItemEnabled"].(bool)
		f.items[scene] = append([]obsItem{{id: f.nextID, source: str("sourceName"), enabled: enabled}}, f.items[scene]...)
		resp = map[string]any{"sceneItemId": f.nextID}
	case scenes.MethodGetInputSettings:
		if !f.inputs[str("inputName")] {
			return nil, &obsError{code: scenes.CodeResourceNotFound, msg: "input not found"}
		}
		resp = map[string]any{"inputKind": "ffmpeg_source", "inputSettings": map[string]any{}}
	case scenes.MethodCreateInput:
		f.inputs[str("inputName")] = true
	}
	if resp == nil {
		return nil, nil
	}
	return json.Marshal(resp)
}

type testEnv struct {
	obs    *fakeOBS
	server *Server
	engine *scenes.Engine
	http   *httptest.Server
	runs   *history.SQLiteRunRepository
	audit  *history.SQLiteAuditRepository
}

func newTestEnv(t *testing.T, remote *fakeOBS) *testEnv {
	t.Helper()

	db, err := database.Open(database.Config{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(context.Background(), migrations.FS); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	logger := logging.New(config.LoggingConfig{Output: "discard"}, "test")
	runs := history.NewSQLiteRunRepository(db.DB)
	audit := history.NewSQLiteAuditRepository(db.DB)
	hub := NewHub(config.WebSocketConfig{PingInterval: 30, PongTimeout: 10, MaxMessageSize: 4096}, logger)

	engine := scenes.NewEngine(remote, scenes.Observers{
		history.NewRecorder(runs, audit, nil, "api"),
		NewHubObserver(hub),
	}, logger)
	manager := scenes.NewManager(remote, remote, logger)

	srv, err := New(Deps{
		Logger:  logger,
		Engine:  engine,
		Manager: manager,
		Cache:   remote,
		Runs:    runs,
		Audit:   audit,
		DB:      db,
		Hub:     hub,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		srv.drainAuditLog(ctx)
	}()

	ts := httptest.NewServer(srv.buildRouter())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-drained
	})

	return &testEnv{obs: remote, server: srv, engine: engine, http: ts, runs: runs, audit: audit}
}

// do sends a request and decodes a JSON response into out when non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, e.http.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := e.http.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
