package layout

import "testing"

func TestPresetCatalog_HasTenPresets(t *testing.T) {
	keys := PresetKeys()
	if len(keys) != 10 {
		t.Fatalf("PresetKeys() = %d keys, want 10", len(keys))
	}
	for _, key := range keys {
		if _, ok := Preset(key); !ok {
			t.Errorf("Preset(%q) not found", key)
		}
	}
}

func TestPreset_StaysInsideCanvas(t *testing.T) {
	for _, key := range PresetKeys() {
		p := MustPreset(key)
		if p.PositionX < 0 || p.PositionY < 0 {
			t.Errorf("%s: negative position (%v, %v)", key, p.PositionX, p.PositionY)
		}
		if p.PositionX+p.BoundsWidth > CanvasWidth+0.5 {
			t.Errorf("%s: right edge %v exceeds canvas", key, p.PositionX+p.BoundsWidth)
		}
		if p.PositionY+p.BoundsHeight > CanvasHeight+0.5 {
			t.Errorf("%s: bottom edge %v exceeds canvas", key, p.PositionY+p.BoundsHeight)
		}
	}
}

func TestPreset_QuadrantsTileCanvas(t *testing.T) {
	tl := MustPreset(PresetQuadTopLeft)
	br := MustPreset(PresetQuadBottomRight)

	if tl.PositionX != 0 || tl.PositionY != 0 {
		t.Errorf("top-left at (%v, %v), want origin", tl.PositionX, tl.PositionY)
	}
	if br.PositionX != 960 || br.PositionY != 540 {
		t.Errorf("bottom-right at (%v, %v), want (960, 540)", br.PositionX, br.PositionY)
	}
}

func TestPreset_ReturnsCopy(t *testing.T) {
	p, _ := Preset(PresetFullscreen)
	p.PositionX = 500

	again, _ := Preset(PresetFullscreen)
	if again.PositionX != 0 {
		t.Errorf("catalog mutated through returned preset: PositionX = %v", again.PositionX)
	}
}

func TestPreset_Unknown(t *testing.T) {
	if _, ok := Preset("pictureInPicture"); ok {
		t.Error("Preset(unknown) returned ok")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustPreset(unknown) did not panic")
		}
	}()
	MustPreset("pictureInPicture")
}

func TestNaming(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{SingleSceneName("Vault"), "Full Screen - Vault"},
		{ReplaySceneName("Vault"), "Replay - Vault"},
		{DirectionalDualSceneName("Beam", SideLeft), "Dual View - Beam - Left"},
		{DualSceneName("Beam", "Floor"), "Dual View - Beam & Floor"},
		{TripleSceneName([]string{"Beam", "Floor", "Vault"}), "Triple View - Beam Floor Vault"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
	if SideLeft.Opposite() != SideRight || SideRight.Opposite() != SideLeft {
		t.Error("Side.Opposite() mismatch")
	}
}

func TestClassifySceneName(t *testing.T) {
	tests := []struct {
		name   string
		want   Family
		wantOK bool
	}{
		{"Full Screen - Beam", FamilySingle, true},
		{"Replay - Beam", FamilyReplay, true},
		{"Dual View - Beam - Left", FamilyDual, true},
		{"Dual View - Beam & Floor", FamilyDual, true},
		{"Triple View - A B C", FamilyTriple, true},
		{QuadSceneName, FamilyQuad, true},
		{GraphicsSceneName, FamilyGraphics, true},
		{"Starting Soon", FamilyStatic, true},
		{"Interview Desk", "", false},
	}
	for _, tt := range tests {
		got, ok := ClassifySceneName(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ClassifySceneName(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}
