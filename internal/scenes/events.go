package scenes

// Notification names used by every Observer that forwards events.
const (
	EventSceneCreated       = "scene.created"
	EventGenerationComplete = "generation.complete"
	EventScenesDeleted      = "scenes.deleted"
)

// Observer receives lifecycle notifications from the Engine.
//
// Callbacks run synchronously on the generating goroutine, in order. They
// must not block for long and must not call back into the Engine.
type Observer interface {
	// SceneCreated is called once per scene the batch created.
	SceneCreated(result GenerationResult)

	// GenerationComplete is called once at the end of every batch.
	GenerationComplete(report Report)

	// ScenesDeleted is called after every cleanup pass.
	ScenesDeleted(report DeleteReport)
}

// Observers fans notifications out to each member in order. Nil members are skipped.
type Observers []Observer

func (o Observers) SceneCreated(result GenerationResult) {
	for _, obs := range o {
		if obs != nil {
			obs.SceneCreated(result)
		}
	}
}

func (o Observers) GenerationComplete(report Report) {
	for _, obs := range o {
		if obs != nil {
			obs.GenerationComplete(report)
		}
	}
}

func (o Observers) ScenesDeleted(report DeleteReport) {
	for _, obs := range o {
		if obs != nil {
			obs.ScenesDeleted(report)
		}
	}
}

// noopObserver discards every notification.
type noopObserver struct{}

func (noopObserver) SceneCreated(GenerationResult) {}
func (noopObserver) GenerationComplete(Report)     {}
func (noopObserver) ScenesDeleted(DeleteReport)    {}
