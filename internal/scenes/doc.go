// Package scenes generates and manages camera-layout scenes on a remote
// production tool.
//
// The remote tool owns every scene. This package never caches scene
// definitions for existence checks; it checks the remote before each create
// and only ever skips scenes that are already present.
//
// Architecture:
//
//	┌────────────────────────────────────────────────────────┐
//	│                 Engine (engine.go)                      │
//	│  Idempotent batch generation from a camera roster       │
//	│  ┌──────────────┐    ┌───────────────────┐            │
//	│  │ layout.Plan  │───▶│ GeneratedRegistry │            │
//	│  │ (candidates) │    │  (registry.go)    │            │
//	│  └──────────────┘    └───────────────────┘            │
//	│        │                                               │
//	│        ▼                                               │
//	│  ┌──────────────────────────────────────────────┐     │
//	│  │  Per-candidate pipeline (sequential)          │     │
//	│  │  1. Check existence (GetSceneList)            │     │
//	│  │  2. Skip if present                           │     │
//	│  │  3. CreateScene                               │     │
//	│  │  4. CreateSceneItem + transform per source    │     │
//	│  │  5. Overlay layer forced to index 0           │     │
//	│  │  6. Notify Observer                           │     │
//	│  └──────────────────────────────────────────────┘     │
//	└────────────────────────────────────────────────────────┘
//
//	┌────────────────────────────────────────────────────────┐
//	│                Manager (manager.go)                     │
//	│  Operator CRUD over a StateCache plus live item reads   │
//	└────────────────────────────────────────────────────────┘
//
// # Stack Order Contract
//
// ControlClient implementations must present scene items top first: index 0
// is the topmost item, GetSceneItemList returns items in index order, and
// CreateSceneItem always lands the new item at index 0. Duplication and the
// overlay placement depend on this. The obs bridge provides obs.TopFirst to
// adapt a native obs-websocket server, which numbers items bottom first.
//
// # Thread Safety
//
// Engine and Manager are safe for concurrent use. Only one generation batch
// runs per Engine at a time; a second call returns ErrGenerationRunning.
//
// # Usage
//
//	engine := scenes.NewEngine(client, observers, log)
//	engine.UpdateConfig(cameras, &layout.GraphicsOverlay{URL: "https://gfx.example/overlay"})
//
//	preview := engine.PreviewScenes()
//	report, err := engine.GenerateAllScenes(ctx, scenes.GenerateOptions{})
package scenes
