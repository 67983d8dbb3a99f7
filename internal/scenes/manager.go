package scenes

import (
	"context"
	"fmt"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

// StateCache supplies the most recent scene listing.
// State returns nil when no listing is available yet.
type StateCache interface {
	State() *CacheState
}

// Manager performs operator scene edits against the remote.
//
// Listings come from the StateCache; item lists are always fetched live.
// Remote errors are returned as received and never retried.
type Manager struct {
	client ControlClient
	cache  StateCache
	logger Logger
}

// NewManager creates a scene manager.
//
// Parameters:
//   - client: Control channel to the remote production tool
//   - cache: Source of scene listings (nil makes listing reads fail)
//   - logger: Logger instance (may be nil)
func NewManager(client ControlClient, cache StateCache, logger Logger) *Manager {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{client: client, cache: cache, logger: logger}
}

// GetScenes returns the cached scene listing.
//
// Returns ErrCacheUnavailable when there is no cache or it holds no state.
// A state without a listing yields an empty slice.
func (m *Manager) GetScenes() ([]SceneInfo, error) {
	if m.cache == nil {
		return nil, ErrCacheUnavailable
	}
	st := m.cache.State()
	if st == nil {
		return nil, ErrCacheUnavailable
	}
	out := make([]SceneInfo, len(st.Scenes))
	copy(out, st.Scenes)
	return out, nil
}

// GetScene returns a scene and its live item list.
//
// Returns ErrSceneNotFound, without contacting the remote, when the name is
// not in the cached listing.
func (m *Manager) GetScene(ctx context.Context, name string) (*Scene, error) {
	listing, err := m.GetScenes()
	if err != nil {
		return nil, err
	}
	if !containsScene(listing, name) {
		return nil, ErrSceneNotFound
	}

	items, err := listSceneItems(ctx, m.client, name)
	if err != nil {
		return nil, err
	}
	family, _ := layout.ClassifySceneName(name)
	return &Scene{Name: name, Items: items, Type: family}, nil
}

// CreateScene creates an empty scene.
func (m *Manager) CreateScene(ctx context.Context, name string) (*Scene, error) {
	if err := validateName("scene name", name); err != nil {
		return nil, err
	}
	if _, err := m.client.Call(ctx, MethodCreateScene, sceneRef{SceneName: name}); err != nil {
		return nil, err
	}

	m.logger.Info("scene created", "scene", name)
	family, _ := layout.ClassifySceneName(name)
	return &Scene{Name: name, Items: []SceneItem{}, Type: family}, nil
}

// DuplicateScene creates dest with a copy of every item in source.
//
// Items are re-created in reverse of the fetched order. New items always
// land on top, so inserting bottom-up reproduces the original stacking.
// Each copy keeps the source item's enabled flag and transform.
func (m *Manager) DuplicateScene(ctx context.Context, source, dest string) (*DuplicateResult, error) {
	if err := validatePair("source scene", source, "destination scene", dest); err != nil {
		return nil, err
	}

	if _, err := m.client.Call(ctx, MethodCreateScene, sceneRef{SceneName: dest}); err != nil {
		return nil, err
	}

	items, err := listSceneItems(ctx, m.client, source)
	if err != nil {
		return nil, err
	}

	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		id, err := createSceneItem(ctx, m.client, dest, item.SourceName, item.Enabled)
		if err != nil {
			return nil, err
		}
		if t := settableTransform(item.Transform); t != nil {
			if err := setSceneItemTransform(ctx, m.client, dest, id, t); err != nil {
				return nil, err
			}
		}
	}

	m.logger.Info("scene duplicated", "source", source, "scene", dest, "items", len(items))
	return &DuplicateResult{Name: dest, CopiedFrom: source, ItemCount: len(items)}, nil
}

// RenameScene renames a scene on the remote.
func (m *Manager) RenameScene(ctx context.Context, oldName, newName string) (*RenameResult, error) {
	if err := validatePair("current name", oldName, "new name", newName); err != nil {
		return nil, err
	}
	_, err := m.client.Call(ctx, MethodSetSceneName, renameSceneRequest{SceneName: oldName, NewSceneName: newName})
	if err != nil {
		return nil, err
	}

	m.logger.Info("scene renamed", "from", oldName, "to", newName)
	return &RenameResult{OldName: oldName, NewName: newName}, nil
}

// DeleteScene removes a scene from the remote.
func (m *Manager) DeleteScene(ctx context.Context, name string) (*DeleteResult, error) {
	if err := validateName("scene name", name); err != nil {
		return nil, err
	}
	if _, err := m.client.Call(ctx, MethodRemoveScene, sceneRef{SceneName: name}); err != nil {
		return nil, err
	}

	m.logger.Info("scene deleted", "scene", name)
	return &DeleteResult{Deleted: name}, nil
}

// ReorderScenes validates a presentation order against the cached listing.
//
// The remote has no scene reorder request, so nothing is sent; the validated
// order is returned for client-side use. Empty and partial orders are
// accepted. A nil order is rejected.
func (m *Manager) ReorderScenes(order []string) (*ReorderResult, error) {
	if order == nil {
		return nil, fmt.Errorf("%w: order must be a list of scene names", ErrValidation)
	}
	listing, err := m.GetScenes()
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(listing))
	for _, s := range listing {
		known[s.Name] = struct{}{}
	}
	for _, name := range order {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("%w: unknown scene %q", ErrValidation, name)
		}
	}

	out := make([]string, len(order))
	copy(out, order)
	return &ReorderResult{Order: out}, nil
}

func containsScene(listing []SceneInfo, name string) bool {
	for _, s := range listing {
		if s.Name == name {
			return true
		}
	}
	return false
}
