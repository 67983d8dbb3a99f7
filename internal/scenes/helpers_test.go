package scenes

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// ─── Fake Remote ────────────────────────────────────────────────────────────

// remoteError mimics a rejected request carrying a status code.
type remoteError struct {
	code int
	msg  string
}

func (e *remoteError) Error() string   { return e.msg }
func (e *remoteError) StatusCode() int { return e.code }

func notFound(what string) error {
	return &remoteError{code: CodeResourceNotFound, msg: what + " not found"}
}

func alreadyExists(what string) error {
	return &remoteError{code: CodeResourceAlreadyExists, msg: what + " already exists"}
}

type fakeItem struct {
	id        int
	source    string
	enabled   bool
	transform map[string]any
}

type fakeInput struct {
	kind     string
	settings map[string]any
}

type fakeCall struct {
	Method string
	Params map[string]any
}

// fakeRemote is an in-memory production tool honouring the stack order
// contract: item slices are kept top first and new items are prepended.
type fakeRemote struct {
	mu       sync.Mutex
	scenes   []string
	items    map[string][]fakeItem
	inputs   map[string]fakeInput
	nextID   int
	calls    []fakeCall
	failures map[string]error // "Method" or "Method:target"
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		items:    make(map[string][]fakeItem),
		inputs:   make(map[string]fakeInput),
		failures: make(map[string]error),
	}
}

// failOn makes requests matching key fail. key is a method name, or
// "Method:target" where target is the request's scene, input or source name.
func (r *fakeRemote) failOn(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[key] = err
}

func (r *fakeRemote) clearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = make(map[string]error)
}

func (r *fakeRemote) addInput(name, kind string, settings map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs[name] = fakeInput{kind: kind, settings: settings}
}

// addScene seeds a scene whose items are given top first.
func (r *fakeRemote) addScene(name string, items ...fakeItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenes = append(r.scenes, name)
	for i := range items {
		r.nextID++
		items[i].id = r.nextID
	}
	r.items[name] = items
}

func (r *fakeRemote) sceneNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.scenes))
	copy(out, r.scenes)
	return out
}

func (r *fakeRemote) hasScene(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(name) >= 0
}

// itemSources lists a scene's sources top first.
func (r *fakeRemote) itemSources(scene string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, it := range r.items[scene] {
		out = append(out, it.source)
	}
	return out
}

func (r *fakeRemote) sceneItems(scene string) []fakeItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fakeItem, len(r.items[scene]))
	copy(out, r.items[scene])
	return out
}

func (r *fakeRemote) callsFor(method string) []fakeCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []fakeCall
	for _, c := range r.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (r *fakeRemote) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *fakeRemote) indexOf(scene string) int {
	for i, s := range r.scenes {
		if s == scene {
			return i
		}
	}
	return -1
}

func (r *fakeRemote) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := map[string]any{}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, fakeCall{Method: method, Params: p})

	if err, ok := r.failures[method]; ok {
		return nil, err
	}
	for _, key := range []string{"sceneName", "inputName", "sourceName"} {
		if v, ok := p[key].(string); ok {
			if err, ok := r.failures[method+":"+v]; ok {
				return nil, err
			}
		}
	}

	resp, err := r.handle(method, p)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return json.Marshal(resp)
}

func (r *fakeRemote) handle(method string, p map[string]any) (any, error) {
	str := func(k string) string { s, _ := p[k].(string); return s }
	num := func(k string) int { f, _ := p[k].(float64); return int(f) }

	switch method {
	case MethodGetSceneList:
		scenes := make([]map[string]any, 0, len(r.scenes))
		for i, s := range r.scenes {
			scenes = append(scenes, map[string]any{"sceneName": s, "sceneIndex": i})
		}
		return map[string]any{"currentProgramSceneName": "", "scenes": scenes}, nil

	case MethodCreateScene:
		name := str("sceneName")
		if r.indexOf(name) >= 0 {
			return nil, alreadyExists("scene " + name)
		}
		r.scenes = append(r.scenes, name)
		r.items[name] = nil
		return nil, nil

	case MethodRemoveScene:
		name := str("sceneName")
		i := r.indexOf(name)
		if i < 0 {
			return nil, notFound("scene " + name)
		}
		r.scenes = append(r.scenes[:i], r.scenes[i+1:]...)
		delete(r.items, name)
		return nil, nil

	case MethodSetSceneName:
		name, newName := str("sceneName"), str("newSceneName")
		i := r.indexOf(name)
		if i < 0 {
			return nil, notFound("scene " + name)
		}
		if r.indexOf(newName) >= 0 {
			return nil, alreadyExists("scene " + newName)
		}
		r.scenes[i] = newName
		r.items[newName] = r.items[name]
		delete(r.items, name)
		return nil, nil

	case MethodGetInputSettings:
		in, ok := r.inputs[str("inputName")]
		if !ok {
			return nil, notFound("input " + str("inputName"))
		}
		return map[string]any{"inputKind": in.kind, "inputSettings": in.settings}, nil

	case MethodSetInputSettings:
		name := str("inputName")
		in, ok := r.inputs[name]
		if !ok {
			return nil, notFound("input " + name)
		}
		settings, _ := p["inputSettings"].(map[string]any)
		if in.settings == nil {
			in.settings = map[string]any{}
		}
		for k, v := range settings {
			in.settings[k] = v
		}
		r.inputs[name] = in
		return nil, nil

	case MethodCreateInput:
		name := str("inputName")
		if _, ok := r.inputs[name]; ok {
			return nil, alreadyExists("input " + name)
		}
		settings, _ := p["inputSettings"].(map[string]any)
		r.inputs[name] = fakeInput{kind: str("inputKind"), settings: settings}
		return nil, nil

	case MethodGetSceneItemList:
		name := str("sceneName")
		if r.indexOf(name) < 0 {
			return nil, notFound("scene " + name)
		}
		items := make([]map[string]any, 0, len(r.items[name]))
		for i, it := range r.items[name] {
			items = append(items, map[string]any{
				"sceneItemId":        it.id,
				"sourceName":         it.source,
				"sceneItemEnabled":   it.enabled,
				"sceneItemTransform": it.transform,
				"sceneItemIndex":     i,
			})
		}
		return map[string]any{"sceneItems": items}, nil

	case MethodCreateSceneItem:
		scene, source := str("sceneName"), str("sourceName")
		if r.indexOf(scene) < 0 {
			return nil, notFound("scene " + scene)
		}
		if _, ok := r.inputs[source]; !ok && r.indexOf(source) < 0 {
			return nil, notFound("source " + source)
		}
		enabled, _ := p["sceneItemEnabled"].(bool)
		r.nextID++
		item := fakeItem{id: r.nextID, source: source, enabled: enabled}
		r.items[scene] = append([]fakeItem{item}, r.items[scene]...)
		return map[string]any{"sceneItemId": item.id}, nil

	case MethodSetSceneItemTransform:
		scene, id := str("sceneName"), num("sceneItemId")
		for i, it := range r.items[scene] {
			if it.id == id {
				t, _ := p["sceneItemTransform"].(map[string]any)
				r.items[scene][i].transform = t
				return nil, nil
			}
		}
		return nil, notFound(fmt.Sprintf("scene item %d", id))

	case MethodSetSceneItemIndex:
		scene, id, idx := str("sceneName"), num("sceneItemId"), num("sceneItemIndex")
		items := r.items[scene]
		for i, it := range items {
			if it.id == id {
				items = append(items[:i], items[i+1:]...)
				if idx > len(items) {
					idx = len(items)
				}
				items = append(items[:idx], append([]fakeItem{it}, items[idx:]...)...)
				r.items[scene] = items
				return nil, nil
			}
		}
		return nil, notFound(fmt.Sprintf("scene item %d", id))
	}
	return nil, &remoteError{code: 204, msg: "unknown request type " + method}
}

// ─── Observer / Cache Doubles ───────────────────────────────────────────────

type recordingObserver struct {
	mu      sync.Mutex
	created []GenerationResult
	reports []Report
	deletes []DeleteReport
}

func (o *recordingObserver) SceneCreated(r GenerationResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.created = append(o.created, r)
}

func (o *recordingObserver) GenerationComplete(r Report) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports = append(o.reports, r)
}

func (o *recordingObserver) ScenesDeleted(r DeleteReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deletes = append(o.deletes, r)
}

type staticCache struct {
	state *CacheState
}

func (c staticCache) State() *CacheState { return c.state }

func cacheOf(names ...string) staticCache {
	st := &CacheState{Scenes: []SceneInfo{}}
	for i, n := range names {
		st.Scenes = append(st.Scenes, SceneInfo{Name: n, Index: i})
	}
	return staticCache{state: st}
}
