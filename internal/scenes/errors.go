package scenes

import "errors"

// Domain errors for the scenes package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, scenes.ErrValidation) {
//	    // reject the request
//	}
var (
	// ErrAlreadyExists marks a create that found the scene already present.
	ErrAlreadyExists = errors.New("scenes: already exists")

	// ErrSceneNotFound is returned when a scene is not in the cached scene list.
	ErrSceneNotFound = errors.New("scenes: scene not found")

	// ErrValidation is returned when operator input is missing or inconsistent.
	ErrValidation = errors.New("scenes: validation failed")

	// ErrQuadCardinality is recorded when a quad candidate does not have exactly four cameras.
	ErrQuadCardinality = errors.New("scenes: quad layout requires exactly 4 cameras")

	// ErrNoGraphicsURL is recorded for the graphics scene when no overlay URL resolves.
	ErrNoGraphicsURL = errors.New("scenes: no graphics url configured")

	// ErrCacheUnavailable is returned when the state cache has not been supplied or populated.
	ErrCacheUnavailable = errors.New("scenes: state cache unavailable")

	// ErrGenerationRunning is returned when a batch is already in progress.
	ErrGenerationRunning = errors.New("scenes: generation already running")
)

// IsAlreadyExists reports whether err means the target resource is already
// present, either as ErrAlreadyExists or as a remote ResourceAlreadyExists code.
func IsAlreadyExists(err error) bool {
	if errors.Is(err, ErrAlreadyExists) {
		return true
	}
	code, ok := RemoteCode(err)
	return ok && code == CodeResourceAlreadyExists
}
