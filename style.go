package stxtconverter

import "fmt"

// RGBA8 is an 8-bit per channel color; alpha 255 is opaque.
type RGBA8 struct {
	R, G, B, A uint8
}

// Black is the color of text that never selected one.
var Black = RGBA8{0, 0, 0, 255}

// Uint32 packs the color as 0xRRGGBBAA, the order used to sort color tables.
func (c RGBA8) Uint32() uint32 {
	return uint32(c.R)<<24 | uint32(c.G)<<16 | uint32(c.B)<<8 | uint32(c.A)
}

func (c RGBA8) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// FaceFlags is the set of face attributes of a font. The values are the
// ones stored in the flattened run array.
type FaceFlags uint16

const (
	FaceItalic    FaceFlags = 0x0001
	FaceUnderline FaceFlags = 0x0002
	FaceStrikeout FaceFlags = 0x0010
	FaceBold      FaceFlags = 0x0020
	// FaceRegular is the baseline face; it is never combined with other flags.
	FaceRegular FaceFlags = 0x0040
)

func (f FaceFlags) Has(flag FaceFlags) bool {
	return f&flag != 0
}

// StyleName is the name of the font style showing the face; only bold and
// italic select a style, underline and strikeout are drawn over any.
func (f FaceFlags) StyleName() string {
	bold, italic := f.Has(FaceBold), f.Has(FaceItalic)
	switch {
	case bold && italic:
		return "Bold Italic"
	case bold:
		return "Bold"
	case italic:
		return "Italic"
	}
	return "Regular"
}

// Font is the font part of a style run.
type Font struct {
	Family string
	Style  string
	Size   float32 // points
	Face   FaceFlags
}

/**
 * switch one face flag on or off, the style name follows the face
 * the regular face is special: turning a flag on replaces it, and turning off
 * the last remaining flag goes back to it
 */
func (f *Font) SetFace(face FaceFlags, on bool) {
	switch {
	case f.Face == FaceRegular && on:
		f.Face = face
	case f.Face&^face == 0 && !on:
		f.Face = FaceRegular
	case on:
		f.Face |= face
	default:
		f.Face &^= face
	}
	f.Style = f.Face.StyleName()
}

// StyleRun is the style of the text starting at Offset, up to the next run.
type StyleRun struct {
	Offset uint32 // byte offset into the plain text
	Color  RGBA8
	Font   Font
}

// SameStyle reports whether both runs render text the same way, whatever their offsets.
func (r StyleRun) SameStyle(other StyleRun) bool {
	return r.Color == other.Color && r.Font == other.Font
}

func runsAreEqual(a, b *StyleRun) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Offset == b.Offset && a.SameStyle(*b)
}

/**
 * drop the runs that change nothing: a run with the style already in effect
 * (the baseline for the first one), and runs starting at or after the end of the text
 */
func normalizeRuns(runs []StyleRun, baseline StyleRun, textLength int) []StyleRun {
	out := runs[:0]
	previous := baseline
	for _, run := range runs {
		if int(run.Offset) >= textLength {
			break
		}
		if run.SameStyle(previous) {
			continue
		}
		out = append(out, run)
		previous = run
	}
	return out
}
