package scenes

import (
	"time"

	"github.com/nerrad567/broadcast-scenes/internal/layout"
)

// Scene is a scene as it currently exists on the remote.
type Scene struct {
	Name  string        `json:"name"`
	Items []SceneItem   `json:"items"`
	Type  layout.Family `json:"type,omitempty"` // Family whose naming pattern matches, if any
}

// SceneItem is one placed source inside a scene.
//
// StackIndex follows the stack order contract: 0 is the top of the stack.
type SceneItem struct {
	SceneItemID int            `json:"sceneItemId"`
	SourceName  string         `json:"sourceName"`
	Enabled     bool           `json:"sceneItemEnabled"`
	Transform   map[string]any `json:"sceneItemTransform,omitempty"`
	StackIndex  int            `json:"sceneItemIndex"`
}

// SceneInfo is the cached listing entry for a scene.
type SceneInfo struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// CacheState is the snapshot a state-sync collaborator maintains.
// A nil Scenes slice means the listing has not been populated.
type CacheState struct {
	Scenes              []SceneInfo `json:"scenes"`
	CurrentProgramScene string      `json:"current_program_scene,omitempty"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// Status is the outcome of one generation candidate.
type Status string

const (
	StatusCreated Status = "created"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// ReasonExists is the skip reason for a scene already on the remote.
const ReasonExists = "exists"

// GenerationResult is the outcome of one candidate scene.
type GenerationResult struct {
	Scene  string        `json:"scene"`
	Status Status        `json:"status"`
	Type   layout.Family `json:"type"`
	Reason string        `json:"reason,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// Summary counts results per bucket. Total is the number of candidates.
type Summary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// Report is the aggregated outcome of one generation batch.
type Report struct {
	RunID      string             `json:"run_id"`
	Trigger    string             `json:"trigger"`
	Created    []GenerationResult `json:"created"`
	Skipped    []GenerationResult `json:"skipped"`
	Failed     []GenerationResult `json:"failed"`
	Summary    Summary            `json:"summary"`
	StartedAt  time.Time          `json:"started_at"`
	DurationMS int64              `json:"duration_ms"`
}

func newReport(runID string, started time.Time) *Report {
	return &Report{
		RunID:     runID,
		Created:   []GenerationResult{},
		Skipped:   []GenerationResult{},
		Failed:    []GenerationResult{},
		StartedAt: started,
	}
}

// add files a result into exactly one bucket.
func (r *Report) add(res GenerationResult) {
	switch res.Status {
	case StatusCreated:
		r.Created = append(r.Created, res)
		r.Summary.Created++
	case StatusSkipped:
		r.Skipped = append(r.Skipped, res)
		r.Summary.Skipped++
	default:
		r.Failed = append(r.Failed, res)
		r.Summary.Failed++
	}
	r.Summary.Total++
}

// DeleteFailure records a scene that could not be removed.
type DeleteFailure struct {
	Scene string `json:"scene"`
	Error string `json:"error"`
}

// DeleteReport is the outcome of a cleanup pass.
type DeleteReport struct {
	Deleted []string        `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}

// GenerateOptions adjusts a single generation batch.
type GenerateOptions struct {
	// Cameras replaces the working roster when non-nil.
	Cameras []layout.Camera `json:"cameras,omitempty"`

	// Graphics replaces the overlay configuration when non-nil.
	Graphics *layout.GraphicsOverlay `json:"graphics,omitempty"`

	// Types restricts the batch to these families. Empty means the
	// engine defaults.
	Types []layout.Family `json:"types,omitempty"`

	// Trigger names what started the batch ("api", "mqtt", "cli").
	// Defaults to TriggerManual.
	Trigger string `json:"-"`
}

// TriggerManual is the trigger recorded when none is given.
const TriggerManual = "manual"

// DuplicateResult is returned by Manager.DuplicateScene.
type DuplicateResult struct {
	Name       string `json:"name"`
	CopiedFrom string `json:"copied_from"`
	ItemCount  int    `json:"item_count"`
}

// RenameResult is returned by Manager.RenameScene.
type RenameResult struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// DeleteResult is returned by Manager.DeleteScene.
type DeleteResult struct {
	Deleted string `json:"deleted"`
}

// ReorderResult is returned by Manager.ReorderScenes.
type ReorderResult struct {
	Order []string `json:"order"`
}
