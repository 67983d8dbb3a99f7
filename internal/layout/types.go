package layout

import (
	"fmt"
	"strings"
)

// Camera is one feed in the production's camera roster.
//
// Name is the camera's identity: it is used verbatim as the remote source
// input name and inside every generated scene name.
type Camera struct {
	ID                string   `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	SRTURL            string   `json:"srt_url" yaml:"srt_url"`
	ExpectedApparatus []string `json:"expected_apparatus,omitempty" yaml:"expected_apparatus"`
}

// GraphicsOverlay points at a browser-rendered graphics page.
type GraphicsOverlay struct {
	URL         string            `json:"url" yaml:"url"`
	QueryParams map[string]string `json:"query_params,omitempty" yaml:"query_params"`
}

// Family identifies a scene family.
type Family string

const (
	FamilyStatic   Family = "static"
	FamilySingle   Family = "single"
	FamilyDual     Family = "dual"
	FamilyTriple   Family = "triple"
	FamilyQuad     Family = "quad"
	FamilyReplay   Family = "replay"
	FamilyGraphics Family = "graphics"
)

// AllFamilies returns every family in generation order.
func AllFamilies() []Family {
	return []Family{
		FamilyStatic,
		FamilySingle,
		FamilyDual,
		FamilyTriple,
		FamilyQuad,
		FamilyReplay,
		FamilyGraphics,
	}
}

// ParseFamily converts a string to a Family.
func ParseFamily(s string) (Family, bool) {
	for _, f := range AllFamilies() {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// ParseFamilies converts a list of family names, rejecting unknown ones.
// An empty list yields nil, which callers treat as every family.
func ParseFamilies(names []string) ([]Family, error) {
	var out []Family
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		f, ok := ParseFamily(n)
		if !ok {
			return nil, fmt.Errorf("unknown scene type %q", n)
		}
		out = append(out, f)
	}
	return out, nil
}

// CheckRoster reports the first camera without a name or with a name
// already used. Names are scene identity.
func CheckRoster(cameras []Camera) error {
	seen := make(map[string]bool, len(cameras))
	for i, c := range cameras {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("camera %d has no name", i)
		}
		if seen[name] {
			return fmt.Errorf("camera name %q is duplicated", name)
		}
		seen[name] = true
	}
	return nil
}

// UsesCameras reports whether scenes of this family place camera feeds.
// Only these families receive the graphics overlay layer.
func (f Family) UsesCameras() bool {
	switch f {
	case FamilySingle, FamilyDual, FamilyTriple, FamilyQuad, FamilyReplay:
		return true
	default:
		return false
	}
}

// Placement puts one source into a scene at a preset.
type Placement struct {
	Source    string `json:"source"`
	PresetKey string `json:"preset"`
}

// Candidate is one scene a generation run will attempt to create.
type Candidate struct {
	Name       string      `json:"name"`
	Family     Family      `json:"family"`
	Placements []Placement `json:"placements,omitempty"`
}
