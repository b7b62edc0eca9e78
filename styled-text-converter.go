/**
 * RTF to styled text: the container with text and style runs, or only the plain text
 */

package stxtconverter

import (
	"bytes"
	"fmt"
	"io"
)

type rtfStyledTextInterpreter struct {
	catalog FontCatalog
}

func (p *rtfStyledTextInterpreter) Parse(rtfObj *RtfStructure) ([]byte, error) {
	content := &bytes.Buffer{}
	if err := ConvertToStyledText(rtfObj, content, p.catalog); err != nil {
		return nil, err
	}
	return content.Bytes(), nil
}

type rtfTextInterpreter struct {
	catalog FontCatalog
}

func (p *rtfTextInterpreter) Parse(rtfObj *RtfStructure) ([]byte, error) {
	content := &bytes.Buffer{}
	if _, err := ConvertToPlainText(rtfObj, content, p.catalog, false); err != nil {
		return nil, err
	}
	return content.Bytes(), nil
}

/**
 * ConvertToStyledText writes the styled text container of an RTF document.
 * The text length goes into the header before the text, so the document is walked
 * twice: once to count the bytes and once to write them and collect the style runs.
 * After a failure the content written to target is incomplete.
 */
func ConvertToStyledText(rtfObj *RtfStructure, target io.Writer, catalog FontCatalog) error {
	if !rtfObj.IsValid() {
		return ErrInvalidRtf
	}

	// first pass: count the bytes of the text
	counter := NewTextOutput(rtfObj, nil, false, catalog)
	if err := counter.Work(); err != nil {
		return err
	}

	if err := writeTextHeaders(target, counter.Length()); err != nil {
		return err
	}

	// second pass: the text and its runs
	output := NewTextOutput(rtfObj, target, true, catalog)
	if err := output.Work(); err != nil {
		return fmt.Errorf("writing text: %w", err)
	}
	if output.Length() != counter.Length() {
		return fmt.Errorf("text length changed between passes: %d then %d", counter.Length(), output.Length())
	}

	// no style section for text without style
	runs := output.Runs()
	if len(runs) == 0 {
		return nil
	}
	return writeStyleSection(target, runs, output.Length())
}

/**
 * ConvertToPlainText writes the text of an RTF document; with processRuns the style
 * runs are returned to be stored beside the text
 */
func ConvertToPlainText(rtfObj *RtfStructure, target io.Writer, catalog FontCatalog, processRuns bool) ([]StyleRun, error) {
	if !rtfObj.IsValid() {
		return nil, ErrInvalidRtf
	}

	output := NewTextOutput(rtfObj, target, processRuns, catalog)
	if err := output.Work(); err != nil {
		return nil, err
	}
	return output.Runs(), nil
}
