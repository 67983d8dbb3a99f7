package scenes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

// SourceSettings controls how camera and graphics inputs are created.
type SourceSettings struct {
	CameraInputKind   string
	BufferingMB       int
	ReconnectDelaySec int
	GraphicsInputKind string
	GraphicsFPS       int
}

// DefaultSourceSettings returns settings for SRT feeds through the media
// source and a 1920x1080 browser source for graphics.
func DefaultSourceSettings() SourceSettings {
	return SourceSettings{
		CameraInputKind:   "ffmpeg_source",
		BufferingMB:       2,
		ReconnectDelaySec: 2,
		GraphicsInputKind: "browser_source",
		GraphicsFPS:       30,
	}
}

// Engine generates scene families from a camera roster.
//
// Generation is strictly sequential: one remote request at a time, phases in
// order, candidates in order. A failed candidate is recorded and the batch
// moves on; nothing is rolled back.
//
// Thread Safety: all methods are safe for concurrent use. Only one batch
// runs at a time.
type Engine struct {
	client   ControlClient
	observer Observer
	logger   Logger
	registry *GeneratedRegistry
	sources  SourceSettings

	mu       sync.RWMutex // Protects cameras, graphics, sources and defaults
	cameras  []layout.Camera
	graphics *layout.GraphicsOverlay
	defaults []layout.Family

	runMu sync.Mutex // Held for the duration of a batch or cleanup
}

// NewEngine creates a scene generation engine.
//
// Parameters:
//   - client: Control channel to the remote production tool
//   - observer: Receives lifecycle notifications (may be nil)
//   - logger: Logger instance (may be nil)
func NewEngine(client ControlClient, observer Observer, logger Logger) *Engine {
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Engine{
		client:   client,
		observer: observer,
		logger:   logger,
		registry: NewGeneratedRegistry(),
		sources:  DefaultSourceSettings(),
	}
}

// SetSourceSettings replaces the input creation settings.
func (e *Engine) SetSourceSettings(s SourceSettings) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources = s
}

// SetDefaultFamilies sets the families used when a batch or preview names
// none. Nil restores all families.
func (e *Engine) SetDefaultFamilies(families []layout.Family) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.defaults = append([]layout.Family(nil), families...)
}

// families resolves requested families against the defaults.
func (e *Engine) families(requested []layout.Family) []layout.Family {
	if len(requested) > 0 {
		return requested
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.defaults) > 0 {
		return append([]layout.Family(nil), e.defaults...)
	}
	return layout.AllFamilies()
}

// UpdateConfig replaces the working roster and overlay. No remote calls are made.
func (e *Engine) UpdateConfig(cameras []layout.Camera, graphics *layout.GraphicsOverlay) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setConfigLocked(cameras, graphics)
}

func (e *Engine) setConfigLocked(cameras []layout.Camera, graphics *layout.GraphicsOverlay) {
	e.cameras = make([]layout.Camera, len(cameras))
	copy(e.cameras, cameras)

	e.graphics = nil
	if graphics != nil {
		g := *graphics
		if graphics.QueryParams != nil {
			g.QueryParams = make(map[string]string, len(graphics.QueryParams))
			for k, v := range graphics.QueryParams {
				g.QueryParams[k] = v
			}
		}
		e.graphics = &g
	}
}

// Cameras returns a copy of the working roster.
func (e *Engine) Cameras() []layout.Camera {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]layout.Camera, len(e.cameras))
	copy(out, e.cameras)
	return out
}

// BuildGraphicsURL resolves the configured overlay into one absolute URL.
func (e *Engine) BuildGraphicsURL() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return ResolveGraphicsURL(e.graphics)
}

// SceneExists reports whether name is on the remote.
//
// Lookup errors are logged and reported as "does not exist", so a transient
// failure leads to a create attempt rather than a silent skip.
func (e *Engine) SceneExists(ctx context.Context, name string) bool {
	infos, _, err := ListSceneNames(ctx, e.client)
	if err != nil {
		e.logger.Warn("scene existence check failed", "scene", name, "error", err)
		return false
	}
	for _, info := range infos {
		if info.Name == name {
			return true
		}
	}
	return false
}

// PreviewScenes returns the unique scene names a batch over the current
// roster would attempt. With no types, the default families are included
// (all, unless SetDefaultFamilies was called). It never contacts the remote.
func (e *Engine) PreviewScenes(types ...layout.Family) layout.Preview {
	families := e.families(types)
	return layout.PreviewCandidates(families, layout.Plan(e.Cameras(), families))
}

// GeneratedScenes returns the names created by this engine since the last cleanup.
func (e *Engine) GeneratedScenes() []string {
	return e.registry.Names()
}

// GenerateAllScenes creates every missing scene for the roster.
//
// Phases run in order: resolve the overlay URL, ensure inputs, then each
// family (static, single, dual, triple, quad, replay, graphics). Every
// candidate yields exactly one result. The batch is detached from ctx
// cancellation: once started it runs to completion.
//
// Parameters:
//   - ctx: Context carrying request values; its cancellation is ignored
//   - opts: Optional roster/overlay replacement and family filter
//
// Returns:
//   - *Report: The categorised outcome of every candidate
//   - error: nil on success, or ErrGenerationRunning if a batch is in progress
func (e *Engine) GenerateAllScenes(ctx context.Context, opts GenerateOptions) (*Report, error) {
	if !e.runMu.TryLock() {
		return nil, ErrGenerationRunning
	}
	defer e.runMu.Unlock()

	ctx = context.WithoutCancel(ctx)

	e.mu.Lock()
	if opts.Cameras != nil || opts.Graphics != nil {
		cameras, graphics := e.cameras, e.graphics
		if opts.Cameras != nil {
			cameras = opts.Cameras
		}
		if opts.Graphics != nil {
			graphics = opts.Graphics
		}
		e.setConfigLocked(cameras, graphics)
	}
	cameras := make([]layout.Camera, len(e.cameras))
	copy(cameras, e.cameras)
	graphicsURL, hasGraphics := ResolveGraphicsURL(e.graphics)
	sources := e.sources
	e.mu.Unlock()

	families := e.families(opts.Types)

	started := time.Now().UTC()
	report := newReport(GenerateID(), started)
	report.Trigger = opts.Trigger
	if report.Trigger == "" {
		report.Trigger = TriggerManual
	}

	e.logger.Info("scene generation started",
		"run_id", report.RunID,
		"trigger", report.Trigger,
		"cameras", len(cameras),
		"families", len(families),
		"graphics", hasGraphics,
	)

	if needsCameraInputs(families) {
		e.ensureCameraInputs(ctx, cameras, sources)
	}
	if hasGraphics {
		e.ensureGraphicsInput(ctx, graphicsURL, sources)
	}

	for _, cand := range layout.Plan(cameras, families) {
		res := e.generateScene(ctx, cand, hasGraphics)
		report.add(res)

		switch res.Status {
		case StatusCreated:
			e.registry.Add(res.Scene)
			e.observer.SceneCreated(res)
			e.logger.Debug("scene created", "scene", res.Scene, "type", res.Type)
		case StatusFailed:
			e.logger.Warn("scene generation failed", "scene", res.Scene, "type", res.Type, "error", res.Error)
		}
	}

	report.DurationMS = time.Since(started).Milliseconds()

	e.logger.Info("scene generation complete",
		"run_id", report.RunID,
		"created", report.Summary.Created,
		"skipped", report.Summary.Skipped,
		"failed", report.Summary.Failed,
		"duration_ms", report.DurationMS,
	)

	e.observer.GenerationComplete(*report)
	return report, nil
}

// generateScene runs the per-candidate pipeline and classifies the outcome.
func (e *Engine) generateScene(ctx context.Context, cand layout.Candidate, hasGraphics bool) GenerationResult {
	res := GenerationResult{Scene: cand.Name, Type: cand.Family}
	fail := func(err error) GenerationResult {
		res.Status = StatusFailed
		res.Error = errorMessage(err)
		return res
	}

	if cand.Family == layout.FamilyQuad && len(cand.Placements) != layout.QuadCameraCount {
		return fail(fmt.Errorf("%w: got %d", ErrQuadCardinality, len(cand.Placements)))
	}
	if cand.Family == layout.FamilyGraphics && !hasGraphics {
		return fail(ErrNoGraphicsURL)
	}

	if e.SceneExists(ctx, cand.Name) {
		res.Status = StatusSkipped
		res.Reason = ReasonExists
		return res
	}

	if _, err := e.client.Call(ctx, MethodCreateScene, sceneRef{SceneName: cand.Name}); err != nil {
		if IsAlreadyExists(err) {
			res.Status = StatusSkipped
			res.Reason = ReasonExists
			return res
		}
		return fail(fmt.Errorf("creating scene: %w", err))
	}

	for _, p := range cand.Placements {
		preset, ok := layout.Preset(p.PresetKey)
		if !ok {
			return fail(fmt.Errorf("source %q has no layout preset", p.Source))
		}
		if _, err := placeSource(ctx, e.client, cand.Name, p.Source, preset); err != nil {
			return fail(err)
		}
	}

	if hasGraphics && cand.Family.UsesCameras() {
		if err := e.addOverlay(ctx, cand.Name); err != nil {
			return fail(err)
		}
	}

	res.Status = StatusCreated
	return res
}

// addOverlay layers the graphics input over a camera scene and forces it to
// the top of the stack.
func (e *Engine) addOverlay(ctx context.Context, scene string) error {
	id, err := placeSource(ctx, e.client, scene, layout.GraphicsInputName, layout.MustPreset(layout.PresetFullscreen))
	if err != nil {
		return err
	}
	_, err = e.client.Call(ctx, MethodSetSceneItemIndex, setIndexRequest{
		SceneName:      scene,
		SceneItemID:    id,
		SceneItemIndex: 0,
	})
	if err != nil {
		return fmt.Errorf("raising overlay: %w", err)
	}
	return nil
}

func needsCameraInputs(families []layout.Family) bool {
	for _, f := range families {
		if f.UsesCameras() {
			return true
		}
	}
	return false
}

// ensureCameraInputs creates one media input per camera unless present.
// Failures are logged; the scenes that use a missing input fail on their own.
func (e *Engine) ensureCameraInputs(ctx context.Context, cameras []layout.Camera, s SourceSettings) {
	for _, cam := range cameras {
		name := layout.InputName(cam)
		if _, err := call[inputSettingsResponse](ctx, e.client, MethodGetInputSettings, inputRef{InputName: name}); err == nil {
			continue
		}
		err := e.createInput(ctx, name, s.CameraInputKind, map[string]any{
			"input":               cam.SRTURL,
			"input_format":        "mpegts",
			"is_local_file":       false,
			"buffering_mb":        s.BufferingMB,
			"reconnect_delay_sec": s.ReconnectDelaySec,
			"restart_on_activate": false,
			"close_when_inactive": false,
		})
		if err != nil {
			e.logger.Warn("camera input not created", "input", name, "error", err)
			continue
		}
		e.logger.Debug("camera input created", "input", name, "camera_id", cam.ID)
	}
}

// ensureGraphicsInput creates the browser overlay input, or points an
// existing one at url when it has drifted.
func (e *Engine) ensureGraphicsInput(ctx context.Context, url string, s SourceSettings) {
	existing, err := call[inputSettingsResponse](ctx, e.client, MethodGetInputSettings, inputRef{InputName: layout.GraphicsInputName})
	if err == nil {
		if current, _ := existing.InputSettings["url"].(string); current != url {
			_, setErr := e.client.Call(ctx, MethodSetInputSettings, setInputSettingsRequest{
				InputName:     layout.GraphicsInputName,
				InputSettings: map[string]any{"url": url},
				Overlay:       true,
			})
			if setErr != nil {
				e.logger.Warn("graphics input url not updated", "error", setErr)
			}
		}
		return
	}

	err = e.createInput(ctx, layout.GraphicsInputName, s.GraphicsInputKind, map[string]any{
		"url":    url,
		"width":  layout.CanvasWidth,
		"height": layout.CanvasHeight,
		"fps":    s.GraphicsFPS,
	})
	if err != nil {
		e.logger.Warn("graphics input not created", "error", err)
	}
}

func (e *Engine) createInput(ctx context.Context, name, kind string, settings map[string]any) error {
	_, err := e.client.Call(ctx, MethodCreateInput, createInputRequest{
		InputName:     name,
		InputKind:     kind,
		InputSettings: settings,
	})
	if err != nil && !IsAlreadyExists(err) {
		return err
	}
	return nil
}

// DeleteGeneratedScenes removes every scene this engine created.
//
// Failures are collected per scene and never abort the pass. The registry
// is cleared afterwards regardless of failures. Waits for a running batch
// to finish first.
func (e *Engine) DeleteGeneratedScenes(ctx context.Context) DeleteReport {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	ctx = context.WithoutCancel(ctx)

	report := DeleteReport{Deleted: []string{}, Failed: []DeleteFailure{}}
	for _, name := range e.registry.Names() {
		if _, err := e.client.Call(ctx, MethodRemoveScene, sceneRef{SceneName: name}); err != nil {
			report.Failed = append(report.Failed, DeleteFailure{Scene: name, Error: errorMessage(err)})
			e.logger.Warn("generated scene not removed", "scene", name, "error", err)
			continue
		}
		report.Deleted = append(report.Deleted, name)
	}
	e.registry.Clear()

	e.logger.Info("generated scenes cleaned up",
		"deleted", len(report.Deleted),
		"failed", len(report.Failed),
	)

	e.observer.ScenesDeleted(report)
	return report
}

// errorMessage renders err for reports, appending the remote status code
// when there is one.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	var coded interface{ StatusCode() int }
	if errors.As(err, &coded) {
		return fmt.Sprintf("%s (code %d)", err.Error(), coded.StatusCode())
	}
	return err.Error()
}
