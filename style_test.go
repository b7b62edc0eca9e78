package stxtconverter

import (
	"reflect"
	"testing"
)

func TestSetFace(t *testing.T) {
	tests := []struct {
		name  string
		start FaceFlags
		face  FaceFlags
		on    bool
		want  FaceFlags
	}{
		{"on from regular", FaceRegular, FaceBold, true, FaceBold},
		{"off the only flag", FaceBold, FaceBold, false, FaceRegular},
		{"off from regular", FaceRegular, FaceBold, false, FaceRegular},
		{"add a flag", FaceBold, FaceItalic, true, FaceBold | FaceItalic},
		{"remove one of two", FaceBold | FaceItalic, FaceBold, false, FaceItalic},
		{"on twice", FaceBold, FaceBold, true, FaceBold},
		{"off a missing flag", FaceItalic, FaceBold, false, FaceItalic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Font{Face: tt.start}
			f.SetFace(tt.face, tt.on)
			if f.Face != tt.want {
				t.Errorf("face = %#x, want %#x", f.Face, tt.want)
			}
		})
	}
}

func TestFaceStyleName(t *testing.T) {
	tests := []struct {
		face FaceFlags
		want string
	}{
		{FaceRegular, "Regular"},
		{FaceBold, "Bold"},
		{FaceItalic | FaceUnderline, "Italic"},
		{FaceBold | FaceItalic | FaceStrikeout, "Bold Italic"},
		{FaceUnderline | FaceStrikeout, "Regular"},
	}

	for _, tt := range tests {
		if got := tt.face.StyleName(); got != tt.want {
			t.Errorf("StyleName(%#x) = %q, want %q", tt.face, got, tt.want)
		}
	}
}

func TestSetFaceUpdatesStyle(t *testing.T) {
	f := Font{Family: "Plain", Style: "Regular", Face: FaceRegular}
	f.SetFace(FaceBold, true)
	f.SetFace(FaceItalic, true)
	if f.Style != "Bold Italic" {
		t.Errorf("style = %q, want Bold Italic", f.Style)
	}
	f.SetFace(FaceBold, false)
	f.SetFace(FaceItalic, false)
	if f.Style != "Regular" || f.Face != FaceRegular {
		t.Errorf("font = %+v, want regular", f)
	}
}

func TestSetFaceRoundTripFromRegular(t *testing.T) {
	f := Font{Face: FaceRegular}
	f.SetFace(FaceBold, true)
	if f.Face != FaceBold {
		t.Fatalf("bold on: face = %#x, want only bold", f.Face)
	}
	f.SetFace(FaceBold, false)
	if f.Face != FaceRegular {
		t.Errorf("bold off: face = %#x, want regular", f.Face)
	}
}

func TestRGBA8(t *testing.T) {
	c := RGBA8{R: 0x12, G: 0x34, B: 0x56, A: 0x78}
	if got := c.Uint32(); got != 0x12345678 {
		t.Errorf("Uint32() = %#x", got)
	}
	if got := c.String(); got != "#12345678" {
		t.Errorf("String() = %q", got)
	}
}

func TestRunsAreEqual(t *testing.T) {
	a := &StyleRun{Offset: 1, Color: Black}
	b := &StyleRun{Offset: 1, Color: Black}
	c := &StyleRun{Offset: 2, Color: Black}

	if !runsAreEqual(nil, nil) {
		t.Error("nil runs differ")
	}
	if runsAreEqual(a, nil) || runsAreEqual(nil, a) {
		t.Error("nil equals a run")
	}
	if !runsAreEqual(a, b) {
		t.Error("identical runs differ")
	}
	if runsAreEqual(a, c) {
		t.Error("runs at different offsets are equal")
	}
	if !a.SameStyle(*c) {
		t.Error("runs with the same style differ")
	}
}

func TestNormalizeRuns(t *testing.T) {
	base := StyleRun{Color: Black, Font: Font{Family: "Plain", Size: 12, Face: FaceRegular}}
	bold := base
	bold.Font.Face = FaceBold

	at := func(r StyleRun, offset uint32) StyleRun {
		r.Offset = offset
		return r
	}

	tests := []struct {
		name   string
		runs   []StyleRun
		length int
		want   []StyleRun
	}{
		{"baseline only", []StyleRun{at(base, 0)}, 3, []StyleRun{}},
		{"repeated style", []StyleRun{at(bold, 0), at(bold, 1), at(base, 2)}, 3, []StyleRun{at(bold, 0), at(base, 2)}},
		{"past the end", []StyleRun{at(bold, 0), at(base, 3)}, 3, []StyleRun{at(bold, 0)}},
		{"empty text", []StyleRun{at(bold, 0)}, 0, []StyleRun{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRuns(tt.runs, base, tt.length)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeRuns = %+v, want %+v", got, tt.want)
			}
		})
	}
}
