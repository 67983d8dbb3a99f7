package layout

import "strings"

// Constant scene and input names.
const (
	// QuadSceneName is shared by every quad candidate, so at most one quad
	// layout is ever materialised per roster.
	QuadSceneName = "Quad View"

	// GraphicsSceneName is the graphics-only scene with no camera feeds.
	GraphicsSceneName = "Web-graphics-only-no-video"

	// GraphicsInputName is the browser source reused by the graphics scene and
	// as the overlay layer on camera scenes.
	GraphicsInputName = "Web Graphics Overlay"
)

// staticSceneNames are placeholder scenes created once, independent of cameras.
var staticSceneNames = []string{
	"Starting Soon",
	"Stream Ending",
}

// Side is a half of the canvas in a dual layout.
type Side string

const (
	SideLeft  Side = "Left"
	SideRight Side = "Right"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// StaticSceneNames returns the placeholder scene names.
func StaticSceneNames() []string {
	names := make([]string, len(staticSceneNames))
	copy(names, staticSceneNames)
	return names
}

// SingleSceneName names a fullscreen camera scene.
func SingleSceneName(camera string) string {
	return "Full Screen - " + camera
}

// ReplaySceneName names a fullscreen replay scene.
func ReplaySceneName(camera string) string {
	return "Replay - " + camera
}

// DirectionalDualSceneName names a dual-meet scene where featured sits on side.
func DirectionalDualSceneName(featured string, side Side) string {
	return "Dual View - " + featured + " - " + string(side)
}

// DualSceneName names a dual scene for a 2-combination.
func DualSceneName(left, right string) string {
	return "Dual View - " + left + " & " + right
}

// TripleSceneName names a triple scene for a 3-combination.
func TripleSceneName(cameras []string) string {
	return "Triple View - " + strings.Join(cameras, " ")
}

// InputName returns the remote source input name for a camera.
func InputName(c Camera) string {
	return c.Name
}

// ClassifySceneName reports which family produced a scene name, if any.
// Names that do not follow a generated pattern return false.
func ClassifySceneName(name string) (Family, bool) {
	switch {
	case name == QuadSceneName:
		return FamilyQuad, true
	case name == GraphicsSceneName:
		return FamilyGraphics, true
	case strings.HasPrefix(name, "Full Screen - "):
		return FamilySingle, true
	case strings.HasPrefix(name, "Replay - "):
		return FamilyReplay, true
	case strings.HasPrefix(name, "Dual View - "):
		return FamilyDual, true
	case strings.HasPrefix(name, "Triple View - "):
		return FamilyTriple, true
	}
	for _, static := range staticSceneNames {
		if name == static {
			return FamilyStatic, true
		}
	}
	return "", false
}
