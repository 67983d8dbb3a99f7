package scenes

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

func newTestManager(remote *fakeRemote, cache StateCache) *Manager {
	return NewManager(remote, cache, nil)
}

// ─── Reads ──────────────────────────────────────────────────────────────────

func TestGetScenes(t *testing.T) {
	t.Run("nil cache", func(t *testing.T) {
		m := NewManager(newFakeRemote(), nil, nil)
		if _, err := m.GetScenes(); !errors.Is(err, ErrCacheUnavailable) {
			t.Errorf("GetScenes() error = %v, want ErrCacheUnavailable", err)
		}
	})

	t.Run("cache without state", func(t *testing.T) {
		m := newTestManager(newFakeRemote(), staticCache{})
		if _, err := m.GetScenes(); !errors.Is(err, ErrCacheUnavailable) {
			t.Errorf("GetScenes() error = %v, want ErrCacheUnavailable", err)
		}
	})

	t.Run("state without scenes", func(t *testing.T) {
		m := newTestManager(newFakeRemote(), staticCache{state: &CacheState{}})
		got, err := m.GetScenes()
		if err != nil {
			t.Fatalf("GetScenes() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("GetScenes() = %#v, want empty non-nil slice", got)
		}
	})

	t.Run("returns copy", func(t *testing.T) {
		cache := cacheOf("X", "Y")
		m := newTestManager(newFakeRemote(), cache)
		got, err := m.GetScenes()
		if err != nil {
			t.Fatalf("GetScenes() error = %v", err)
		}
		got[0].Name = "Z"
		if cache.state.Scenes[0].Name != "X" {
			t.Error("GetScenes() exposed cache storage")
		}
	})
}

func TestGetScene(t *testing.T) {
	remote := newFakeRemote()
	remote.addInput("A", "ffmpeg_source", nil)
	remote.addScene("Full Screen - A", fakeItem{source: "A", enabled: true})
	m := newTestManager(remote, cacheOf("Full Screen - A", "Ghost"))
	ctx := context.Background()

	scene, err := m.GetScene(ctx, "Full Screen - A")
	if err != nil {
		t.Fatalf("GetScene() error = %v", err)
	}
	if len(scene.Items) != 1 || scene.Items[0].SourceName != "A" || !scene.Items[0].Enabled {
		t.Errorf("Items = %+v", scene.Items)
	}
	if scene.Type != layout.FamilySingle {
		t.Errorf("Type = %q, want single", scene.Type)
	}

	before := remote.callCount()
	if _, err := m.GetScene(ctx, "Unknown"); !errors.Is(err, ErrSceneNotFound) {
		t.Errorf("GetScene(unknown) error = %v, want ErrSceneNotFound", err)
	}
	if remote.callCount() != before {
		t.Error("GetScene(unknown) contacted the remote")
	}

	// Cached but gone from the remote: the remote error comes back as is.
	_, err = m.GetScene(ctx, "Ghost")
	if code, ok := RemoteCode(err); !ok || code != CodeResourceNotFound {
		t.Errorf("GetScene(stale) error = %v, want remote code %d", err, CodeResourceNotFound)
	}
}

// ─── Mutations ──────────────────────────────────────────────────────────────

func TestCreateScene(t *testing.T) {
	remote := newFakeRemote()
	m := newTestManager(remote, cacheOf())
	ctx := context.Background()

	scene, err := m.CreateScene(ctx, "Interview Desk")
	if err != nil {
		t.Fatalf("CreateScene() error = %v", err)
	}
	if scene.Name != "Interview Desk" || scene.Items == nil || len(scene.Items) != 0 {
		t.Errorf("CreateScene() = %+v, want empty scene", scene)
	}
	if !remote.hasScene("Interview Desk") {
		t.Error("scene not created on remote")
	}

	_, err = m.CreateScene(ctx, "Interview Desk")
	var rerr *remoteError
	if !errors.As(err, &rerr) || rerr.code != CodeResourceAlreadyExists {
		t.Errorf("duplicate CreateScene() error = %v, want unmodified remote error", err)
	}
	if !IsAlreadyExists(err) {
		t.Error("IsAlreadyExists() = false for code 601")
	}
}

func TestManager_Validation(t *testing.T) {
	remote := newFakeRemote()
	m := newTestManager(remote, cacheOf("X"))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"create empty", func() error { _, err := m.CreateScene(ctx, ""); return err }},
		{"create blank", func() error { _, err := m.CreateScene(ctx, "   "); return err }},
		{"duplicate empty source", func() error { _, err := m.DuplicateScene(ctx, "", "Y"); return err }},
		{"duplicate empty dest", func() error { _, err := m.DuplicateScene(ctx, "X", ""); return err }},
		{"duplicate same", func() error { _, err := m.DuplicateScene(ctx, "X", "X"); return err }},
		{"rename empty", func() error { _, err := m.RenameScene(ctx, "X", ""); return err }},
		{"rename same", func() error { _, err := m.RenameScene(ctx, "X", "X"); return err }},
		{"delete empty", func() error { _, err := m.DeleteScene(ctx, ""); return err }},
		{"reorder nil", func() error { _, err := m.ReorderScenes(nil); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}

	if remote.callCount() != 0 {
		t.Errorf("validation failures made %d remote calls", remote.callCount())
	}
}

func TestDuplicateScene_ReproducesStacking(t *testing.T) {
	remote := newFakeRemote()
	for _, in := range []string{"A", "B", "C"} {
		remote.addInput(in, "ffmpeg_source", nil)
	}
	remote.addScene("Source",
		fakeItem{source: "A", enabled: true, transform: map[string]any{
			"positionX": 10.0, "width": 1920.0, "sourceWidth": 1920.0,
			"boundsType": "OBS_BOUNDS_NONE", "boundsWidth": 0.0,
		}},
		fakeItem{source: "B", enabled: false},
		fakeItem{source: "C", enabled: true},
	)
	m := newTestManager(remote, cacheOf("Source"))

	res, err := m.DuplicateScene(context.Background(), "Source", "Copy")
	if err != nil {
		t.Fatalf("DuplicateScene() error = %v", err)
	}
	if *res != (DuplicateResult{Name: "Copy", CopiedFrom: "Source", ItemCount: 3}) {
		t.Errorf("DuplicateScene() = %+v", res)
	}

	var order []string
	for _, c := range remote.callsFor(MethodCreateSceneItem) {
		order = append(order, c.Params["sourceName"].(string))
	}
	if want := []string{"C", "B", "A"}; !reflect.DeepEqual(order, want) {
		t.Errorf("creation order = %v, want %v", order, want)
	}

	if got, want := remote.itemSources("Copy"), []string{"A", "B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Copy stacking = %v, want %v", got, want)
	}

	items := remote.sceneItems("Copy")
	if items[1].enabled {
		t.Error("disabled item B copied as enabled")
	}
	tr := items[0].transform
	if tr["positionX"] != 10.0 {
		t.Errorf("transform positionX = %v, want 10", tr["positionX"])
	}
	for _, k := range []string{"width", "sourceWidth", "boundsWidth"} {
		if _, ok := tr[k]; ok {
			t.Errorf("transform carried unsettable field %q", k)
		}
	}
	if len(remote.callsFor(MethodSetSceneItemTransform)) != 1 {
		t.Errorf("SetSceneItemTransform calls = %d, want 1 (only A has a transform)", len(remote.callsFor(MethodSetSceneItemTransform)))
	}
}

func TestDuplicateScene_RemoteErrors(t *testing.T) {
	remote := newFakeRemote()
	remote.addScene("Existing")
	m := newTestManager(remote, cacheOf("Existing"))

	_, err := m.DuplicateScene(context.Background(), "Missing", "Existing")
	if code, _ := RemoteCode(err); code != CodeResourceAlreadyExists {
		t.Errorf("dest exists: error = %v, want code 601", err)
	}

	_, err = m.DuplicateScene(context.Background(), "Missing", "Fresh")
	if code, _ := RemoteCode(err); code != CodeResourceNotFound {
		t.Errorf("source missing: error = %v, want code 600", err)
	}
}

func TestRenameScene(t *testing.T) {
	remote := newFakeRemote()
	remote.addScene("Old")
	m := newTestManager(remote, cacheOf("Old"))
	ctx := context.Background()

	res, err := m.RenameScene(ctx, "Old", "New")
	if err != nil {
		t.Fatalf("RenameScene() error = %v", err)
	}
	if *res != (RenameResult{OldName: "Old", NewName: "New"}) {
		t.Errorf("RenameScene() = %+v", res)
	}
	if remote.hasScene("Old") || !remote.hasScene("New") {
		t.Errorf("remote scenes = %v", remote.sceneNames())
	}

	if _, err := m.RenameScene(ctx, "Old", "Newer"); err == nil {
		t.Error("renaming a missing scene succeeded")
	}
}

func TestDeleteScene(t *testing.T) {
	remote := newFakeRemote()
	remote.addScene("Doomed")
	m := newTestManager(remote, cacheOf("Doomed"))
	ctx := context.Background()

	res, err := m.DeleteScene(ctx, "Doomed")
	if err != nil {
		t.Fatalf("DeleteScene() error = %v", err)
	}
	if res.Deleted != "Doomed" || remote.hasScene("Doomed") {
		t.Errorf("DeleteScene() = %+v, remote = %v", res, remote.sceneNames())
	}

	if _, err := m.DeleteScene(ctx, "Doomed"); err == nil {
		t.Error("deleting a missing scene succeeded")
	}
}

// ─── Reorder ────────────────────────────────────────────────────────────────

func TestReorderScenes(t *testing.T) {
	remote := newFakeRemote()
	m := newTestManager(remote, cacheOf("X", "Y"))

	tests := []struct {
		name    string
		order   []string
		want    []string
		wantErr bool
	}{
		{name: "unknown scene", order: []string{"Unknown"}, wantErr: true},
		{name: "empty", order: []string{}, want: []string{}},
		{name: "partial", order: []string{"Y"}, want: []string{"Y"}},
		{name: "full", order: []string{"Y", "X"}, want: []string{"Y", "X"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.ReorderScenes(tt.order)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReorderScenes() error = %v", err)
			}
			if !reflect.DeepEqual(res.Order, tt.want) {
				t.Errorf("Order = %#v, want %#v", res.Order, tt.want)
			}
		})
	}

	if remote.callCount() != 0 {
		t.Errorf("ReorderScenes made %d remote calls, want 0", remote.callCount())
	}

	if _, err := NewManager(remote, nil, nil).ReorderScenes([]string{}); !errors.Is(err, ErrCacheUnavailable) {
		t.Errorf("nil cache error = %v, want ErrCacheUnavailable", err)
	}
}
