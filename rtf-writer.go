/**
 * write styled text back as RTF
 */

package stxtconverter

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
)

var rtfReservedEscaper = strings.NewReplacer(`\`, `\\`, `{`, `\{`, `}`, `\}`)

// escape the reserved chars first, so the backslash of the inserted control words stays as is
func escapeRtfText(text, newline string) string {
	return strings.ReplaceAll(rtfReservedEscaper.Replace(text), "\n", newline)
}

/**
 * StyledTextToRtf returns the RTF document of text styled by runs.
 * Without runs a generic font is declared for the whole text.
 */
func StyledTextToRtf(text []byte, runs []StyleRun) string {
	return StyledTextToRtfWithCatalog(text, runs, DefaultFontCatalog())
}

/**
 * StyledTextToRtfWithCatalog marks the fixed font of catalog as \fmodern in the
 * font table, so that reading the document back selects it again
 */
func StyledTextToRtfWithCatalog(text []byte, runs []StyleRun, catalog FontCatalog) string {
	if catalog == nil {
		catalog = DefaultFontCatalog()
	}

	rtf := &strings.Builder{}
	rtf.WriteString(`{\rtf1\ansi`)

	if len(runs) == 0 {
		// there is no style: just use a generic preamble
		rtf.WriteString(`{\fonttbl\f0 Noto Sans;}\f0\pard `)
		rtf.WriteString(escapeRtfText(string(text), `\line`))
		rtf.WriteString("}")
		return rtf.String()
	}

	// RTF needs the font and color names before the text, so collect them first
	fontTable := make([]string, 0, len(runs))
	colorTable := make([]RGBA8, 0, len(runs))
	for _, run := range runs {
		family, _ := FamilyAndStyle(run.Font)
		fontTable = append(fontTable, family)
		colorTable = append(colorTable, run.Color)
	}

	slices.Sort(fontTable)
	fontTable = slices.Compact(fontTable)

	slices.SortFunc(colorTable, compareColors)
	colorTable = slices.Compact(colorTable)

	fixedFamily, _ := FamilyAndStyle(catalog.FixedFont())

	rtf.WriteString(`{\fonttbl`)
	for index, family := range fontTable {
		fontFamily := ""
		if family == fixedFamily {
			fontFamily = `\fmodern`
		}
		fmt.Fprintf(rtf, `{\f%d%s %s;}`, index, fontFamily, escapeRtfText(family, " "))
	}
	rtf.WriteString(`}{\colortbl`)
	for _, color := range colorTable {
		fmt.Fprintf(rtf, `\red%d\green%d\blue%d;`, color.R, color.G, color.B)
	}
	rtf.WriteString("}")

	textLength := uint32(len(text))
	clamp := func(offset, lower uint32) uint32 {
		return max(lower, min(offset, textLength))
	}

	// text before the first run has no style of its own
	if start := clamp(runs[0].Offset, 0); start > 0 {
		rtf.WriteString(`\pard\plain `)
		rtf.WriteString(escapeRtfText(string(text[:start]), `\line`))
	}

	// now put out the actual text with styling information run by run
	previousEnd := uint32(0)
	for i, run := range runs {
		family, _ := FamilyAndStyle(run.Font)
		fontIndex, _ := slices.BinarySearch(fontTable, family)
		colorIndex, _ := slices.BinarySearchFunc(colorTable, run.Color, compareColors)
		fmt.Fprintf(rtf, `\pard\plain\f%d\cf%d`, fontIndex, colorIndex)

		// apply the font faces
		face := run.Font.Face
		if face.Has(FaceItalic) {
			rtf.WriteString(`\i`)
		}
		if face.Has(FaceUnderline) {
			rtf.WriteString(`\ul`)
		}
		if face.Has(FaceBold) {
			rtf.WriteString(`\b`)
		}
		if face.Has(FaceStrikeout) {
			rtf.WriteString(`\strike`)
		}

		// RTF font size unit is half points
		fmt.Fprintf(rtf, `\fs%d`, int(run.Font.Size*2))

		start := clamp(run.Offset, previousEnd)
		end := textLength
		if i < len(runs)-1 {
			end = clamp(runs[i+1].Offset, start)
		}
		previousEnd = end

		rtf.WriteString(" ")
		rtf.WriteString(escapeRtfText(string(text[start:end]), `\line`))
	}

	rtf.WriteString("}")
	return rtf.String()
}

func compareColors(a, b RGBA8) int {
	return cmp.Compare(a.Uint32(), b.Uint32())
}

// ConvertStyledTextToRtf reads a styled text container and writes its RTF document.
func ConvertStyledTextToRtf(r io.Reader, w io.Writer) error {
	text, runs, err := ReadStyledText(r)
	if err != nil {
		return err
	}

	Logger().Debug("styled text to rtf", "length", len(text), "runs", len(runs))
	return writeFull(w, []byte(StyledTextToRtf(text, runs)))
}

/**
 * PlainTextToRtf wraps a plain text in a RTF document; every line is a paragraph
 */
func PlainTextToRtf(text []byte) string {
	rtf := &strings.Builder{}
	rtf.WriteString(`{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}\f0\pard `)
	rtf.WriteString(escapeRtfText(string(text), ` \par `))
	rtf.WriteString(" }")
	return rtf.String()
}

func ConvertPlainTextToRtf(r io.Reader, w io.Writer) error {
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(r); err != nil {
		return fmt.Errorf("reading plain text: %w", err)
	}
	return writeFull(w, []byte(PlainTextToRtf(buf.Bytes())))
}
