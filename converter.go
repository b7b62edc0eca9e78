/**
 * converts RTF to styled text or plain text, and styled text back to RTF
 **/

package stxtconverter

import (
	"fmt"
	"os"
)

type RtfInterpreter interface {
	Parse(rtfObj *RtfStructure) ([]byte, error)
}

type Converter struct {
	rtfObj *RtfStructure
	config *Config
}

/**
 * create a new convertor; a nil config uses the default one
 */
func NewConverter(cfg *Config) *Converter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Converter{config: cfg}
}

func (c *Converter) LoadFile(sourceFile string) error {
	content, err := os.ReadFile(sourceFile)
	if err != nil {
		return err
	}
	return c.SetBytes(content)
}

/**
 * decompose RTF into structure based on words, symbols, etc
 * compressed RTF is expanded first
 */
func (c *Converter) SetBytes(content []byte) error {
	if IsCompressedRtf(content) {
		expanded, err := Decompress(content)
		if err != nil {
			return err
		}
		content = expanded
	}

	rtfObj := &RtfStructure{}
	if err := rtfObj.ParseBytes(content); err != nil {
		c.rtfObj = nil
		return err
	}
	c.rtfObj = rtfObj
	return nil
}

// Document is the parsed RTF, nil before a successful LoadFile or SetBytes.
func (c *Converter) Document() *RtfStructure {
	return c.rtfObj
}

func (c *Converter) SaveFile(content []byte, path string) error {
	return os.WriteFile(path, content, 0644)
}

func (c *Converter) Convert(exportType string) ([]byte, error) {
	if c.rtfObj == nil {
		return nil, fmt.Errorf("%w: nothing loaded", ErrInvalidRtf)
	}

	parser, err := c.getInterpreter(exportType)
	if err != nil {
		return nil, err
	}

	return parser.Parse(c.rtfObj)
}

// ConvertStyled returns the RTF document of a styled text container.
func (c *Converter) ConvertStyled(data []byte) ([]byte, error) {
	text, runs, err := DecodeStyledText(data)
	if err != nil {
		return nil, err
	}
	catalog, err := c.config.FontCatalog()
	if err != nil {
		return nil, err
	}
	return []byte(StyledTextToRtfWithCatalog(text, runs, catalog)), nil
}

func (c *Converter) getInterpreter(interpreterType string) (RtfInterpreter, error) {
	switch interpreterType {
	case "stxt", "text":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExport, interpreterType)
	}

	catalog, err := c.config.FontCatalog()
	if err != nil {
		return nil, err
	}

	if interpreterType == "stxt" {
		return &rtfStyledTextInterpreter{catalog: catalog}, nil
	}
	return &rtfTextInterpreter{catalog: catalog}, nil
}
