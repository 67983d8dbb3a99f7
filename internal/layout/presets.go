package layout

// Canvas dimensions all presets are laid out for.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// BoundsScaleInner fits the source inside its bounding box, preserving aspect ratio.
const BoundsScaleInner = "OBS_BOUNDS_SCALE_INNER"

// Preset keys.
const (
	PresetFullscreen        = "fullscreen"
	PresetDualLeft          = "dualLeft"
	PresetDualRight         = "dualRight"
	PresetQuadTopLeft       = "quadTopLeft"
	PresetQuadTopRight      = "quadTopRight"
	PresetQuadBottomLeft    = "quadBottomLeft"
	PresetQuadBottomRight   = "quadBottomRight"
	PresetTripleMain        = "tripleMain"
	PresetTripleTopRight    = "tripleTopRight"
	PresetTripleBottomRight = "tripleBottomRight"
)

// TransformPreset is a fixed placement for one source on the canvas.
//
// Width and Height describe the source resolution the preset was designed
// for; they are reported by the production tool but cannot be set, so they
// are not sent with transform requests.
type TransformPreset struct {
	PositionX    float64 `json:"positionX"`
	PositionY    float64 `json:"positionY"`
	ScaleX       float64 `json:"scaleX"`
	ScaleY       float64 `json:"scaleY"`
	Width        float64 `json:"-"`
	Height       float64 `json:"-"`
	BoundsType   string  `json:"boundsType"`
	BoundsWidth  float64 `json:"boundsWidth"`
	BoundsHeight float64 `json:"boundsHeight"`
}

// presetKeys fixes the listing order of the catalog.
var presetKeys = []string{
	PresetFullscreen,
	PresetDualLeft,
	PresetDualRight,
	PresetQuadTopLeft,
	PresetQuadTopRight,
	PresetQuadBottomLeft,
	PresetQuadBottomRight,
	PresetTripleMain,
	PresetTripleTopRight,
	PresetTripleBottomRight,
}

// presets is the catalog. It is only ever read; lookups return copies.
var presets = map[string]TransformPreset{
	PresetFullscreen: box(0, 0, 1),

	// Side by side, letterboxed vertically.
	PresetDualLeft:  box(0, 270, 0.5),
	PresetDualRight: box(960, 270, 0.5),

	PresetQuadTopLeft:     box(0, 0, 0.5),
	PresetQuadTopRight:    box(960, 0, 0.5),
	PresetQuadBottomLeft:  box(0, 540, 0.5),
	PresetQuadBottomRight: box(960, 540, 0.5),

	// 1280x720 main feed with two 640x360 feeds stacked on the right.
	PresetTripleMain:        box(0, 180, 2.0/3.0),
	PresetTripleTopRight:    box(1280, 180, 1.0/3.0),
	PresetTripleBottomRight: box(1280, 540, 1.0/3.0),
}

// box builds a preset for a full-canvas source scaled by factor at (x, y).
func box(x, y, factor float64) TransformPreset {
	return TransformPreset{
		PositionX:    x,
		PositionY:    y,
		ScaleX:       factor,
		ScaleY:       factor,
		Width:        CanvasWidth,
		Height:       CanvasHeight,
		BoundsType:   BoundsScaleInner,
		BoundsWidth:  CanvasWidth * factor,
		BoundsHeight: CanvasHeight * factor,
	}
}

// Preset returns the preset registered under key.
func Preset(key string) (TransformPreset, bool) {
	p, ok := presets[key]
	return p, ok
}

// MustPreset returns the preset registered under key and panics if the key is
// unknown. Only use it with the Preset* constants.
func MustPreset(key string) TransformPreset {
	p, ok := presets[key]
	if !ok {
		panic("layout: unknown transform preset " + key)
	}
	return p
}

// PresetKeys lists every preset key in catalog order.
func PresetKeys() []string {
	keys := make([]string, len(presetKeys))
	copy(keys, presetKeys)
	return keys
}
