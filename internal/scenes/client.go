package scenes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

// ControlClient is the request/response channel to the remote production tool.
//
// Call sends one request and returns the raw response data. A rejected
// request returns an error; if the error exposes a numeric status through a
// StatusCode() int method, RemoteCode extracts it.
//
// Implementations must honour the stack order contract described in the
// package documentation.
type ControlClient interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// Remote methods consumed by this package.
const (
	MethodGetSceneList          = "GetSceneList"
	MethodCreateScene           = "CreateScene"
	MethodRemoveScene           = "RemoveScene"
	MethodSetSceneName          = "SetSceneName"
	MethodGetInputSettings      = "GetInputSettings"
	MethodSetInputSettings      = "SetInputSettings"
	MethodCreateInput           = "CreateInput"
	MethodGetSceneItemList      = "GetSceneItemList"
	MethodCreateSceneItem       = "CreateSceneItem"
	MethodSetSceneItemTransform = "SetSceneItemTransform"
	MethodSetSceneItemIndex     = "SetSceneItemIndex"
)

// Remote status codes with meaning to this package.
const (
	CodeSuccess               = 100
	CodeResourceNotFound      = 600
	CodeResourceAlreadyExists = 601
)

// RemoteCode returns the numeric status carried by a remote error.
func RemoteCode(err error) (int, bool) {
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return coded.StatusCode(), true
	}
	return 0, false
}

// ─── Wire types ─────────────────────────────────────────────────────────────

type sceneRef struct {
	SceneName string `json:"sceneName"`
}

type sceneListResponse struct {
	CurrentProgramSceneName string `json:"currentProgramSceneName"`
	Scenes                  []struct {
		SceneName  string `json:"sceneName"`
		SceneIndex int    `json:"sceneIndex"`
	} `json:"scenes"`
}

type renameSceneRequest struct {
	SceneName    string `json:"sceneName"`
	NewSceneName string `json:"newSceneName"`
}

type inputRef struct {
	InputName string `json:"inputName"`
}

type inputSettingsResponse struct {
	InputKind     string         `json:"inputKind"`
	InputSettings map[string]any `json:"inputSettings"`
}

type setInputSettingsRequest struct {
	InputName     string         `json:"inputName"`
	InputSettings map[string]any `json:"inputSettings"`
	Overlay       bool           `json:"overlay"`
}

// createInputRequest always sends sceneName as null so the input is created
// without being placed in any scene.
type createInputRequest struct {
	SceneName     *string        `json:"sceneName"`
	InputName     string         `json:"inputName"`
	InputKind     string         `json:"inputKind"`
	InputSettings map[string]any `json:"inputSettings"`
}

type sceneItemListResponse struct {
	SceneItems []SceneItem `json:"sceneItems"`
}

type createSceneItemRequest struct {
	SceneName        string `json:"sceneName"`
	SourceName       string `json:"sourceName"`
	SceneItemEnabled bool   `json:"sceneItemEnabled"`
}

type createSceneItemResponse struct {
	SceneItemID int `json:"sceneItemId"`
}

type setTransformRequest struct {
	SceneName          string `json:"sceneName"`
	SceneItemID        int    `json:"sceneItemId"`
	SceneItemTransform any    `json:"sceneItemTransform"`
}

type setIndexRequest struct {
	SceneName      string `json:"sceneName"`
	SceneItemID    int    `json:"sceneItemId"`
	SceneItemIndex int    `json:"sceneItemIndex"`
}

// ─── Call helpers ───────────────────────────────────────────────────────────

// call sends a request and decodes the response data into T.
// An empty or null response decodes to the zero value.
func call[T any](ctx context.Context, c ControlClient, method string, params any) (T, error) {
	var out T
	raw, err := c.Call(ctx, method, params)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decoding %s response: %w", method, err)
	}
	return out, nil
}

// ListSceneNames returns the scene names currently on the remote, along with
// the scene on program output.
func ListSceneNames(ctx context.Context, c ControlClient) ([]SceneInfo, string, error) {
	resp, err := call[sceneListResponse](ctx, c, MethodGetSceneList, nil)
	if err != nil {
		return nil, "", err
	}
	infos := make([]SceneInfo, 0, len(resp.Scenes))
	for _, s := range resp.Scenes {
		infos = append(infos, SceneInfo{Name: s.SceneName, Index: s.SceneIndex})
	}
	return infos, resp.CurrentProgramSceneName, nil
}

func listSceneItems(ctx context.Context, c ControlClient, scene string) ([]SceneItem, error) {
	resp, err := call[sceneItemListResponse](ctx, c, MethodGetSceneItemList, sceneRef{SceneName: scene})
	if err != nil {
		return nil, err
	}
	if resp.SceneItems == nil {
		return []SceneItem{}, nil
	}
	return resp.SceneItems, nil
}

func createSceneItem(ctx context.Context, c ControlClient, scene, source string, enabled bool) (int, error) {
	resp, err := call[createSceneItemResponse](ctx, c, MethodCreateSceneItem, createSceneItemRequest{
		SceneName:        scene,
		SourceName:       source,
		SceneItemEnabled: enabled,
	})
	if err != nil {
		return 0, err
	}
	return resp.SceneItemID, nil
}

func setSceneItemTransform(ctx context.Context, c ControlClient, scene string, itemID int, transform any) error {
	_, err := c.Call(ctx, MethodSetSceneItemTransform, setTransformRequest{
		SceneName:          scene,
		SceneItemID:        itemID,
		SceneItemTransform: transform,
	})
	return err
}

// placeSource adds source to scene and applies the preset transform.
func placeSource(ctx context.Context, c ControlClient, scene, source string, preset layout.TransformPreset) (int, error) {
	id, err := createSceneItem(ctx, c, scene, source, true)
	if err != nil {
		return 0, fmt.Errorf("adding %q: %w", source, err)
	}
	if err := setSceneItemTransform(ctx, c, scene, id, preset); err != nil {
		return id, fmt.Errorf("positioning %q: %w", source, err)
	}
	return id, nil
}

// readOnlyTransformFields are reported by GetSceneItemList but rejected or
// ignored by SetSceneItemTransform.
var readOnlyTransformFields = []string{"width", "height", "sourceWidth", "sourceHeight"}

// settableTransform strips fields that cannot be written back. Bounds
// dimensions are dropped when the item has no bounds, since the remote
// rejects bounds sizes below one.
func settableTransform(t map[string]any) map[string]any {
	if len(t) == 0 {
		return nil
	}
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = v
	}
	for _, k := range readOnlyTransformFields {
		delete(out, k)
	}
	if bt, _ := out["boundsType"].(string); bt == "" || bt == "OBS_BOUNDS_NONE" {
		delete(out, "boundsWidth")
		delete(out, "boundsHeight")
	}
	return out
}
