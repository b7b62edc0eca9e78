package stxtconverter

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// DefaultFontSize is the size of the catalog fonts, in points.
const DefaultFontSize float32 = 12

// FontCatalog provides the fonts text falls back to: the plain font of
// unstyled text and the fixed width font of \fmodern font table entries.
type FontCatalog interface {
	PlainFont() Font
	FixedFont() Font
}

type fontCatalog struct {
	plain Font
	fixed Font
}

func (c *fontCatalog) PlainFont() Font {
	return c.plain
}

func (c *fontCatalog) FixedFont() Font {
	return c.fixed
}

// NewFontCatalog returns a catalog of two fonts given by family and style name.
func NewFontCatalog(plain, fixed Font) FontCatalog {
	return &fontCatalog{plain: plain, fixed: fixed}
}

// FamilyAndStyle returns the names a font is stored under in style runs.
func FamilyAndStyle(f Font) (family, style string) {
	return f.Family, f.Style
}

/**
 * DefaultFontCatalog uses the Go fonts; their names are read from the embedded font files
 */
var DefaultFontCatalog = sync.OnceValue(func() FontCatalog {
	return &fontCatalog{
		plain: regularFont(sfntFamily(goregular.TTF, "Go"), DefaultFontSize),
		fixed: regularFont(sfntFamily(gomono.TTF, "Go Mono"), DefaultFontSize),
	}
})

func regularFont(family string, size float32) Font {
	return Font{Family: family, Style: "Regular", Size: size, Face: FaceRegular}
}

func sfntFamily(data []byte, fallback string) string {
	f, err := sfnt.Parse(data)
	if err != nil {
		Logger().Warn("embedded font unreadable", "fallback", fallback, "error", err)
		return fallback
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil || name == "" {
		return fallback
	}
	return name
}

/**
 * LoadFontCatalog reads the family and style names of two font files (TrueType, OpenType
 * or collections, the first face is used). An empty path keeps the default font.
 */
func LoadFontCatalog(plainPath, fixedPath string, size float32) (FontCatalog, error) {
	if size <= 0 {
		size = DefaultFontSize
	}

	defaults := DefaultFontCatalog()
	catalog := &fontCatalog{
		plain: defaults.PlainFont(),
		fixed: defaults.FixedFont(),
	}
	catalog.plain.Size = size
	catalog.fixed.Size = size

	if plainPath != "" {
		plain, _, err := loadFontFile(plainPath, size)
		if err != nil {
			return nil, err
		}
		catalog.plain = plain
	}

	if fixedPath != "" {
		fixed, monospace, err := loadFontFile(fixedPath, size)
		if err != nil {
			return nil, err
		}
		if !monospace {
			Logger().Warn("fixed font is not monospaced", "path", fixedPath, "family", fixed.Family)
		}
		catalog.fixed = fixed
	}

	Logger().Debug("font catalog loaded", "plain", catalog.plain.Family, "fixed", catalog.fixed.Family, "size", size)
	return catalog, nil
}

func loadFontFile(path string, size float32) (Font, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Font{}, false, fmt.Errorf("reading font: %w", err)
	}

	faces, err := font.ParseTTC(bytes.NewReader(data))
	if err != nil {
		return Font{}, false, fmt.Errorf("parsing font %s: %w", path, err)
	}
	if len(faces) == 0 {
		return Font{}, false, fmt.Errorf("font %s has no face", path)
	}

	face := faces[0]
	description := face.Font.Describe()

	f := regularFont(description.Family, size)
	f.Style = sfntSubfamily(data)
	if f.Style == "" {
		f.Style = styleName(description.Aspect)
	}
	return f, face.Font.IsMonospace(), nil
}

// sfntSubfamily returns the style name stored in the first face of a font file.
func sfntSubfamily(data []byte) string {
	collection, err := sfnt.ParseCollection(data)
	if err != nil || collection.NumFonts() == 0 {
		return ""
	}
	f, err := collection.Font(0)
	if err != nil {
		return ""
	}
	name, err := f.Name(nil, sfnt.NameIDSubfamily)
	if err != nil {
		return ""
	}
	return name
}

// styleName guesses a style name from the weight class; semibold faces count as bold.
func styleName(aspect font.Aspect) string {
	var face FaceFlags
	if aspect.Weight >= font.WeightSemibold {
		face |= FaceBold
	}
	if aspect.Style == font.StyleItalic {
		face |= FaceItalic
	}
	return face.StyleName()
}
