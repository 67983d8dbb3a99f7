package obs

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

// bottomFirst mimics obs-websocket stacking: index 0 is the bottom and new
// items are appended at the top.
type bottomFirst struct {
	items []string
	calls []string
	last  map[string]any
}

func (b *bottomFirst) Call(_ context.Context, method string, params any) (json.RawMessage, error) {
	b.calls = append(b.calls, method)
	raw, _ := json.Marshal(params)
	b.last = map[string]any{}
	_ = json.Unmarshal(raw, &b.last)

	switch method {
	case requestGetSceneItemList:
		items := make([]map[string]any, len(b.items))
		for i, name := range b.items {
			items[i] = map[string]any{"sourceName": name, "sceneItemIndex": i, "sceneItemId": i + 1}
		}
		return json.Marshal(map[string]any{"sceneItems": items})
	case requestGetSceneItemIndex:
		return json.Marshal(map[string]int{"sceneItemIndex": 0})
	}
	return json.RawMessage(`{}`), nil
}

func TestTopFirst_ReversesItemList(t *testing.T) {
	next := &bottomFirst{items: []string{"Bottom", "Middle", "Top"}}
	c := TopFirst(next)

	raw, err := c.Call(context.Background(), "GetSceneItemList", map[string]string{"sceneName": "S"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var resp struct {
		SceneItems []struct {
			SourceName     string `json:"sourceName"`
			SceneItemIndex int    `json:"sceneItemIndex"`
			SceneItemID    int    `json:"sceneItemId"`
		} `json:"sceneItems"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}

	var names []string
	for i, it := range resp.SceneItems {
		names = append(names, it.SourceName)
		if it.SceneItemIndex != i {
			t.Errorf("%s index = %d, want %d", it.SourceName, it.SceneItemIndex, i)
		}
	}
	if want := []string{"Top", "Middle", "Bottom"}; !reflect.DeepEqual(names, want) {
		t.Errorf("order = %v, want %v", names, want)
	}
	if resp.SceneItems[0].SceneItemID != 3 {
		t.Errorf("item IDs not preserved: top id = %d", resp.SceneItems[0].SceneItemID)
	}
}

func TestTopFirst_EmptyList(t *testing.T) {
	c := TopFirst(&bottomFirst{})
	raw, err := c.Call(context.Background(), "GetSceneItemList", map[string]string{"sceneName": "S"})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var resp struct {
		SceneItems []any `json:"sceneItems"`
	}
	_ = json.Unmarshal(raw, &resp)
	if resp.SceneItems == nil || len(resp.SceneItems) != 0 {
		t.Errorf("sceneItems = %#v, want empty array", resp.SceneItems)
	}
}

func TestTopFirst_SetSceneItemIndex(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  float64
	}{
		{"top", 0, 3},
		{"bottom", 3, 0},
		{"middle", 1, 2},
		{"past bottom clamps", 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := &bottomFirst{items: []string{"A", "B", "C", "D"}}
			c := TopFirst(next)

			_, err := c.Call(context.Background(), "SetSceneItemIndex", map[string]any{
				"sceneName": "S", "sceneItemId": 1, "sceneItemIndex": tt.index,
			})
			if err != nil {
				t.Fatalf("Call() error = %v", err)
			}
			if got := next.last["sceneItemIndex"]; got != tt.want {
				t.Errorf("forwarded index = %v, want %v", got, tt.want)
			}
			if next.last["sceneName"] != "S" {
				t.Errorf("sceneName not forwarded: %v", next.last)
			}
		})
	}
}

func TestTopFirst_GetSceneItemIndex(t *testing.T) {
	next := &bottomFirst{items: []string{"A", "B", "C"}}
	c := TopFirst(next)

	raw, err := c.Call(context.Background(), "GetSceneItemIndex", map[string]any{"sceneName": "S", "sceneItemId": 1})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	var resp struct {
		SceneItemIndex int `json:"sceneItemIndex"`
	}
	_ = json.Unmarshal(raw, &resp)
	if resp.SceneItemIndex != 2 {
		t.Errorf("index = %d, want 2 (bottom of three)", resp.SceneItemIndex)
	}
}

func TestTopFirst_PassesOtherRequests(t *testing.T) {
	next := &bottomFirst{}
	c := TopFirst(next)

	if _, err := c.Call(context.Background(), "CreateScene", map[string]string{"sceneName": "X"}); err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if !reflect.DeepEqual(next.calls, []string{"CreateScene"}) {
		t.Errorf("calls = %v", next.calls)
	}
	if next.last["sceneName"] != "X" {
		t.Errorf("params = %v", next.last)
	}
}
