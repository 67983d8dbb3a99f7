package obs

import (
	"context"
	"encoding/json"
	"fmt"
)

// Caller is anything that sends obs-websocket requests.
type Caller interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// Request types whose item indexes TopFirst translates.
const (
	requestGetSceneItemList      = "GetSceneItemList"
	requestGetGroupSceneItemList = "GetGroupSceneItemList"
	requestGetSceneItemIndex     = "GetSceneItemIndex"
	requestSetSceneItemIndex     = "SetSceneItemIndex"
)

// topFirst renumbers scene items so index 0 is the top of the stack.
type topFirst struct {
	next Caller
}

// TopFirst wraps an obs-websocket caller so scene item indexes count from
// the top of the stack instead of the bottom.
//
// obs-websocket lists items bottom first and appends new items at the top,
// which is the highest index. Through TopFirst, item lists come back top
// first with sceneItemIndex renumbered to match, and index requests are
// translated both ways. A newly created item is therefore always at index 0.
func TopFirst(next Caller) Caller {
	return &topFirst{next: next}
}

func (t *topFirst) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	switch method {
	case requestGetSceneItemList, requestGetGroupSceneItemList:
		raw, err := t.next.Call(ctx, method, params)
		if err != nil {
			return nil, err
		}
		return reverseItemList(raw)

	case requestGetSceneItemIndex:
		raw, err := t.next.Call(ctx, method, params)
		if err != nil {
			return nil, err
		}
		var resp struct {
			SceneItemIndex int `json:"sceneItemIndex"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, fmt.Errorf("%w: decoding %s: %w", ErrProtocol, method, err)
		}
		n, err := t.itemCount(ctx, params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]int{"sceneItemIndex": flipIndex(resp.SceneItemIndex, n)})

	case requestSetSceneItemIndex:
		fields, err := toFields(params)
		if err != nil {
			return nil, err
		}
		var idx int
		if raw, ok := fields["sceneItemIndex"]; ok {
			if err := json.Unmarshal(raw, &idx); err != nil {
				return nil, fmt.Errorf("decoding sceneItemIndex: %w", err)
			}
		}
		n, err := t.itemCount(ctx, fields)
		if err != nil {
			return nil, err
		}
		flipped, _ := json.Marshal(flipIndex(idx, n))
		fields["sceneItemIndex"] = flipped
		return t.next.Call(ctx, method, fields)
	}

	return t.next.Call(ctx, method, params)
}

// itemCount returns how many items the scene named in params holds.
func (t *topFirst) itemCount(ctx context.Context, params any) (int, error) {
	fields, err := toFields(params)
	if err != nil {
		return 0, err
	}
	ref := map[string]json.RawMessage{}
	for _, k := range []string{"sceneName", "sceneUuid"} {
		if v, ok := fields[k]; ok {
			ref[k] = v
		}
	}
	raw, err := t.next.Call(ctx, requestGetSceneItemList, ref)
	if err != nil {
		return 0, err
	}
	var list struct {
		SceneItems []json.RawMessage `json:"sceneItems"`
	}
	if err := json.Unmarshal(raw, &list); err != nil {
		return 0, fmt.Errorf("%w: decoding item list: %w", ErrProtocol, err)
	}
	return len(list.SceneItems), nil
}

// reverseItemList reverses sceneItems and renumbers sceneItemIndex.
// Other response fields pass through unchanged.
func reverseItemList(raw json.RawMessage) (json.RawMessage, error) {
	var resp map[string]json.RawMessage
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding item list: %w", ErrProtocol, err)
	}
	var items []map[string]json.RawMessage
	if rawItems, ok := resp["sceneItems"]; ok {
		if err := json.Unmarshal(rawItems, &items); err != nil {
			return nil, fmt.Errorf("%w: decoding scene items: %w", ErrProtocol, err)
		}
	}

	n := len(items)
	out := make([]map[string]json.RawMessage, n)
	for i, item := range items {
		pos := n - 1 - i
		idx, _ := json.Marshal(pos)
		item["sceneItemIndex"] = idx
		out[pos] = item
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	resp["sceneItems"] = encoded
	return json.Marshal(resp)
}

// flipIndex converts between top-first and bottom-first numbering.
func flipIndex(idx, n int) int {
	if n == 0 {
		return 0
	}
	flipped := n - 1 - idx
	if flipped < 0 {
		return 0
	}
	if flipped > n-1 {
		return n - 1
	}
	return flipped
}

// toFields re-encodes request params as a field map.
func toFields(params any) (map[string]json.RawMessage, error) {
	if m, ok := params.(map[string]json.RawMessage); ok {
		return m, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encoding params: %w", err)
	}
	fields := map[string]json.RawMessage{}
	if string(raw) == "null" {
		return fields, nil
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("params must be an object: %w", err)
	}
	return fields, nil
}
