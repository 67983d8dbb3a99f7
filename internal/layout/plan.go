package layout

// Family size thresholds.
const (
	dualMeetCameras = 2
	tripleCameras   = 3
	quadCameras     = 4
)

// Plan returns every scene candidate for the roster, restricted to families.
//
// Candidates come out grouped by family in generation order (static, single,
// dual, triple, quad, replay, graphics) regardless of the order families are
// passed in. An empty families list plans nothing.
//
// Quad candidates all carry QuadSceneName; only the first can ever be created
// and the rest resolve to "exists". Callers that want unique names should
// deduplicate.
func Plan(cameras []Camera, families []Family) []Candidate {
	want := make(map[Family]bool, len(families))
	for _, f := range families {
		want[f] = true
	}

	names := make([]string, len(cameras))
	for i, c := range cameras {
		names[i] = InputName(c)
	}

	var out []Candidate
	for _, family := range AllFamilies() {
		if !want[family] {
			continue
		}
		switch family {
		case FamilyStatic:
			out = append(out, planStatic()...)
		case FamilySingle:
			out = append(out, planFullscreen(names, FamilySingle, SingleSceneName)...)
		case FamilyDual:
			out = append(out, planDual(names)...)
		case FamilyTriple:
			out = append(out, planTriple(names)...)
		case FamilyQuad:
			out = append(out, planQuad(names)...)
		case FamilyReplay:
			out = append(out, planFullscreen(names, FamilyReplay, ReplaySceneName)...)
		case FamilyGraphics:
			out = append(out, Candidate{
				Name:       GraphicsSceneName,
				Family:     FamilyGraphics,
				Placements: []Placement{{Source: GraphicsInputName, PresetKey: PresetFullscreen}},
			})
		}
	}
	return out
}

func planStatic() []Candidate {
	out := make([]Candidate, 0, len(staticSceneNames))
	for _, name := range staticSceneNames {
		out = append(out, Candidate{Name: name, Family: FamilyStatic})
	}
	return out
}

func planFullscreen(names []string, family Family, nameFn func(string) string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for _, cam := range names {
		out = append(out, Candidate{
			Name:       nameFn(cam),
			Family:     family,
			Placements: []Placement{{Source: cam, PresetKey: PresetFullscreen}},
		})
	}
	return out
}

// planDual expands exactly two cameras into four directional scenes and any
// larger roster into one scene per 2-combination.
func planDual(names []string) []Candidate {
	if len(names) < dualMeetCameras {
		return nil
	}

	if len(names) == dualMeetCameras {
		var out []Candidate
		for i, featured := range names {
			other := names[1-i]
			for _, side := range []Side{SideLeft, SideRight} {
				out = append(out, Candidate{
					Name:   DirectionalDualSceneName(featured, side),
					Family: FamilyDual,
					Placements: []Placement{
						{Source: featured, PresetKey: sidePreset(side)},
						{Source: other, PresetKey: sidePreset(side.Opposite())},
					},
				})
			}
		}
		return out
	}

	var out []Candidate
	for _, pair := range Combinations(names, 2) {
		out = append(out, Candidate{
			Name:   DualSceneName(pair[0], pair[1]),
			Family: FamilyDual,
			Placements: []Placement{
				{Source: pair[0], PresetKey: PresetDualLeft},
				{Source: pair[1], PresetKey: PresetDualRight},
			},
		})
	}
	return out
}

func sidePreset(s Side) string {
	if s == SideLeft {
		return PresetDualLeft
	}
	return PresetDualRight
}

func planTriple(names []string) []Candidate {
	if len(names) < tripleCameras {
		return nil
	}
	var out []Candidate
	for _, trio := range Combinations(names, tripleCameras) {
		out = append(out, Candidate{
			Name:   TripleSceneName(trio),
			Family: FamilyTriple,
			Placements: []Placement{
				{Source: trio[0], PresetKey: PresetTripleMain},
				{Source: trio[1], PresetKey: PresetTripleTopRight},
				{Source: trio[2], PresetKey: PresetTripleBottomRight},
			},
		})
	}
	return out
}

// quadPresets assigns quadrants in reading order.
var quadPresets = []string{
	PresetQuadTopLeft,
	PresetQuadTopRight,
	PresetQuadBottomLeft,
	PresetQuadBottomRight,
}

func planQuad(names []string) []Candidate {
	if len(names) < quadCameras {
		return nil
	}
	var out []Candidate
	for _, four := range Combinations(names, quadCameras) {
		out = append(out, QuadCandidate(four))
	}
	return out
}

// QuadCandidate builds a quad candidate for the given cameras, placed in
// quadrant order. Cameras past the fourth get no preset. Every camera stays
// in Placements so callers can reject a candidate whose count is not
// QuadCameraCount before touching the remote.
func QuadCandidate(cameras []string) Candidate {
	c := Candidate{Name: QuadSceneName, Family: FamilyQuad}
	for i, cam := range cameras {
		p := Placement{Source: cam}
		if i < len(quadPresets) {
			p.PresetKey = quadPresets[i]
		}
		c.Placements = append(c.Placements, p)
	}
	return c
}

// QuadCameraCount is the number of cameras a quad scene requires.
const QuadCameraCount = quadCameras
