// Package layout holds the pure, side-effect-free half of scene generation.
//
// It knows how to enumerate camera combinations, which transform preset each
// source uses on the 1920x1080 canvas, and how every scene family is named.
// Nothing in this package talks to the production tool; the scenes package
// turns the candidates planned here into remote calls.
//
// # Key Types
//
//   - Camera: A camera feed in the roster (identity is Name)
//   - TransformPreset: Fixed position/scale/bounds for one layout slot
//   - Family: A scene family (single, dual, triple, quad, replay, static, graphics)
//   - Candidate: One scene a generation run will attempt, with its placements
//
// # Usage
//
//	candidates := layout.Plan(cameras, layout.AllFamilies())
//	for _, c := range candidates {
//	    fmt.Println(c.Family, c.Name, len(c.Placements))
//	}
//
// Plan is the single source of truth for both dry-run previews and real
// generation runs, so the two can never disagree about what will be created.
package layout
