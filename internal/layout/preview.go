package layout

// Preview summarises the unique scene names a generation run would attempt.
type Preview struct {
	Scenes []string       `json:"scenes"`
	Counts map[Family]int `json:"counts"`
	Totals PreviewTotals  `json:"totals"`
}

// PreviewTotals holds the aggregate count.
type PreviewTotals struct {
	Total int `json:"total"`
}

// PreviewCandidates collapses a plan into unique scene names. Every family in
// families gets a count, zero when it planned nothing.
//
// Names are kept in first-seen order and each family counts only names that
// were new when it was reached, so the quad family contributes at most one
// scene however many 4-combinations exist.
func PreviewCandidates(families []Family, candidates []Candidate) Preview {
	p := Preview{
		Scenes: []string{},
		Counts: make(map[Family]int, len(families)),
	}
	for _, f := range families {
		p.Counts[f] = 0
	}
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		p.Scenes = append(p.Scenes, c.Name)
		p.Counts[c.Family]++
	}
	p.Totals.Total = len(p.Scenes)
	return p
}
