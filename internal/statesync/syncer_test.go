package statesync

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/bridges/obs"
)

// fakeClient answers GetSceneList from a mutable scene list.
type fakeClient struct {
	mu      sync.Mutex
	scenes  []string
	program string
	err     error
	calls   int
}

func (f *fakeClient) Call(ctx context.Context, method string, _ any) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.calls++
	if method != "GetSceneList" {
		return nil, errors.New("unexpected method " + method)
	}
	if f.err != nil {
		return nil, f.err
	}
	list := make([]map[string]any, len(f.scenes))
	for i, name := range f.scenes {
		list[i] = map[string]any{"sceneName": name, "sceneIndex": i}
	}
	return json.Marshal(map[string]any{"currentProgramSceneName": f.program, "scenes": list})
}

func (f *fakeClient) set(program string, names ...string) {
	f.mu.Lock()
	f.scenes = names
	f.program = program
	f.mu.Unlock()
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeSource records the callbacks Attach installs.
type fakeSource struct {
	onEvent     func(obs.Event)
	onReconnect func()
}

func (f *fakeSource) SetOnEvent(cb func(obs.Event)) { f.onEvent = cb }
func (f *fakeSource) SetOnReconnect(cb func())      { f.onReconnect = cb }

func sceneNames(s *Syncer) []string {
	st := s.State()
	if st == nil {
		return nil
	}
	names := make([]string, len(st.Scenes))
	for i, sc := range st.Scenes {
		names[i] = sc.Name
	}
	return names
}

func waitForNames(t *testing.T, s *Syncer, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sceneNames(s)) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache never reached %d scenes, have %v", want, sceneNames(s))
}

func TestState_NilBeforeFetch(t *testing.T) {
	s := New(&fakeClient{}, Config{})
	if s.State() != nil {
		t.Error("State() before any fetch should be nil")
	}
}

func TestRefresh(t *testing.T) {
	client := &fakeClient{}
	client.set("Starting Soon", "Starting Soon", "Full Screen - A")
	s := New(client, Config{})
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	st := s.State()
	if st == nil || len(st.Scenes) != 2 {
		t.Fatalf("State() = %+v", st)
	}
	if st.Scenes[1].Name != "Full Screen - A" || st.Scenes[1].Index != 1 {
		t.Errorf("Scenes[1] = %+v", st.Scenes[1])
	}
	if st.CurrentProgramScene != "Starting Soon" || !st.UpdatedAt.Equal(fixed) {
		t.Errorf("State() = %+v", st)
	}
}

func TestRefresh_EmptyListIsPopulated(t *testing.T) {
	s := New(&fakeClient{}, Config{})
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	st := s.State()
	if st == nil || st.Scenes == nil {
		t.Errorf("State() = %+v, want populated empty listing", st)
	}
}

func TestRefresh_FailureKeepsPreviousState(t *testing.T) {
	client := &fakeClient{}
	client.set("", "X")
	s := New(client, Config{})
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	client.mu.Lock()
	client.err = errors.New("connection lost")
	client.mu.Unlock()

	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() error = nil, want failure")
	}
	if got := sceneNames(s); len(got) != 1 || got[0] != "X" {
		t.Errorf("cache after failed refresh = %v, want [X]", got)
	}
}

func TestState_ReturnsCopy(t *testing.T) {
	client := &fakeClient{}
	client.set("", "X")
	s := New(client, Config{})
	_ = s.Refresh(context.Background())

	st := s.State()
	st.Scenes[0].Name = "changed"
	st.CurrentProgramScene = "changed"
	if got := s.State(); got.Scenes[0].Name != "X" || got.CurrentProgramScene != "" {
		t.Errorf("State() exposed internal storage: %+v", got)
	}
}

func TestHandleEvent_ProgramSceneChanged(t *testing.T) {
	client := &fakeClient{}
	client.set("A", "A", "B")
	s := New(client, Config{})
	_ = s.Refresh(context.Background())

	s.HandleEvent(obs.Event{Type: "CurrentProgramSceneChanged", Data: json.RawMessage(`{"sceneName":"B"}`)})

	if got := s.State().CurrentProgramScene; got != "B" {
		t.Errorf("CurrentProgramScene = %q, want B", got)
	}
	select {
	case <-s.trigger:
		t.Error("program scene change scheduled a refresh")
	default:
	}
}

func TestHandleEvent_SchedulesRefresh(t *testing.T) {
	tests := []struct {
		event string
		want  bool
	}{
		{"SceneCreated", true},
		{"SceneRemoved", true},
		{"SceneNameChanged", true},
		{"SceneListChanged", true},
		{"InputCreated", false},
		{"StudioModeStateChanged", false},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			s := New(&fakeClient{}, Config{})
			s.HandleEvent(obs.Event{Type: tt.event})

			var scheduled bool
			select {
			case <-s.trigger:
				scheduled = true
			default:
			}
			if scheduled != tt.want {
				t.Errorf("refresh scheduled = %v, want %v", scheduled, tt.want)
			}
		})
	}
}

func TestRequestRefresh_Coalesces(t *testing.T) {
	s := New(&fakeClient{}, Config{})
	for range 5 {
		s.RequestRefresh()
	}
	if len(s.trigger) != 1 {
		t.Errorf("pending refreshes = %d, want 1", len(s.trigger))
	}
}

func TestStart_EventDrivenRefresh(t *testing.T) {
	client := &fakeClient{}
	client.set("", "A")
	s := New(client, Config{RefreshInterval: time.Hour})
	src := &fakeSource{}
	s.Attach(src)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if got := sceneNames(s); len(got) != 1 {
		t.Fatalf("initial cache = %v", got)
	}

	client.set("", "A", "B")
	src.onEvent(obs.Event{Type: "SceneCreated"})
	waitForNames(t, s, 2)

	client.set("", "A", "B", "C")
	src.onReconnect()
	waitForNames(t, s, 3)
}

func TestStart_PeriodicRefresh(t *testing.T) {
	client := &fakeClient{}
	s := New(client, Config{RefreshInterval: 10 * time.Millisecond})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	client.set("", "Late")
	waitForNames(t, s, 1)
}

func TestStart_InitialFailureStillRuns(t *testing.T) {
	client := &fakeClient{err: errors.New("not ready")}
	s := New(client, Config{RefreshInterval: time.Hour})

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() error = nil, want initial fetch error")
	}
	defer s.Stop()

	client.mu.Lock()
	client.err = nil
	client.scenes = []string{"X"}
	client.mu.Unlock()

	s.RequestRefresh()
	waitForNames(t, s, 1)
}

func TestStartStop(t *testing.T) {
	client := &fakeClient{}
	s := New(client, Config{RefreshInterval: time.Hour})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
	s.Stop()
	s.Stop()

	calls := client.callCount()
	s.RequestRefresh()
	time.Sleep(20 * time.Millisecond)
	if client.callCount() != calls {
		t.Error("refresh ran after Stop")
	}
}
