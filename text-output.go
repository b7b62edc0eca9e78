package stxtconverter

import (
	"errors"
	"io"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

type conversionContext struct {
	section         int
	page            int
	startPage       int
	firstLineIndent int
	atLineStart     bool

	// code page of \'hh bytes; pending keeps the lead byte of a double byte character
	decoder *encoding.Decoder
	pending []byte
}

func (c *conversionContext) Reset() {
	c.section = 1
	c.page = 1
	c.startPage = c.page
	c.firstLineIndent = 0
	c.atLineStart = true
	c.decoder = GetDecoder(DefaultEncoding)
	c.pending = nil
}

const maxFirstLineIndent = 8

// textSymbols are the commands producing a fixed text
var textSymbols = map[string]string{
	"~":         "\u00a0", // non breaking space
	"_":         "\u2011", // non breaking hyphen
	"emdash":    "\u2014",
	"endash":    "\u2013",
	"emspace":   "\u2003",
	"enspace":   "\u2002",
	"lquote":    "\u2018",
	"rquote":    "\u2019",
	"ldblquote": "\u201c",
	"rdblquote": "\u201d",
	"bullet":    "\u2022",
}

/**
 * TextOutput walks a document and writes its plain text to the target, tracking
 * the style runs when processRuns is set. A nil target only counts the bytes.
 */
type TextOutput struct {
	doc         *RtfStructure
	target      io.Writer
	offset      int
	context     conversionContext
	groupStack  []groupEntry
	processRuns bool
	runs        []StyleRun
	catalog     FontCatalog
}

// groupEntry is the run that was active when a group started; valid is false
// when no run existed yet.
type groupEntry struct {
	run   StyleRun
	valid bool
}

func NewTextOutput(doc *RtfStructure, target io.Writer, processRuns bool, catalog FontCatalog) *TextOutput {
	if catalog == nil {
		catalog = DefaultFontCatalog()
	}
	o := &TextOutput{
		doc:         doc,
		target:      target,
		processRuns: processRuns,
		catalog:     catalog,
	}
	o.context.Reset()
	return o
}

// Work runs the conversion. A failed write aborts it; the target content is
// then incomplete and must be discarded.
func (o *TextOutput) Work() error {
	if o.doc == nil || o.doc.Root == nil {
		return ErrInvalidRtf
	}

	o.offset = 0
	o.context.Reset()
	o.groupStack = o.groupStack[:0]
	o.runs = nil

	if err := Walk(o.doc.Root, o); err != nil {
		return err
	}
	if err := o.flushPending(); err != nil {
		return err
	}

	if o.processRuns {
		o.runs = normalizeRuns(o.runs, o.baselineRun(), o.offset)
	}

	Logger().Debug("text output done", "length", o.offset, "runs", len(o.runs), "counting", o.target == nil)
	return nil
}

// Length is the number of text bytes produced by the last Work.
func (o *TextOutput) Length() int {
	return o.offset
}

// Runs returns the style runs of the last Work, sorted by offset.
func (o *TextOutput) Runs() []StyleRun {
	return o.runs
}

func (o *TextOutput) FlattenedRunArray() ([]byte, error) {
	// are there any styles?
	if len(o.runs) == 0 {
		return nil, nil
	}
	return FlattenRunArray(o.runs)
}

func (o *TextOutput) baselineRun() StyleRun {
	return StyleRun{Color: Black, Font: o.catalog.PlainFont()}
}

func (o *TextOutput) currentRun() *StyleRun {
	if len(o.runs) == 0 {
		return nil
	}
	return &o.runs[len(o.runs)-1]
}

/**
 * make sure the current run starts at the current offset, so that it can be changed
 * without affecting the text before
 */
func (o *TextOutput) prepareTextRun() *StyleRun {
	current := o.currentRun()
	if current != nil && int(current.Offset) == o.offset {
		return current
	}

	newRun := o.baselineRun()
	if current != nil {
		newRun = *current
	}
	newRun.Offset = uint32(o.offset)

	o.runs = append(o.runs, newRun)
	return o.currentRun()
}

func (o *TextOutput) Group(group *Group) (WalkAction, error) {
	if group.Destination() != TextDestination {
		return Skip, nil
	}

	if err := o.flushPending(); err != nil {
		return Skip, err
	}

	if !o.processRuns {
		return Descend, nil
	}

	// We only push a copy of the run on the stack because the current
	// run may still be changed in the new group; at the end we see if
	// that was the case, and either use the copied one, or throw it away
	entry := groupEntry{}
	if current := o.currentRun(); current != nil {
		entry = groupEntry{run: *current, valid: true}
	}
	o.groupStack = append(o.groupStack, entry)

	return Descend, nil
}

func (o *TextOutput) GroupEnd(group *Group) error {
	if group.Destination() != TextDestination {
		return nil
	}

	if err := o.flushPending(); err != nil {
		return err
	}

	if !o.processRuns || len(o.groupStack) == 0 {
		return nil
	}

	entry := o.groupStack[len(o.groupStack)-1]
	o.groupStack = o.groupStack[:len(o.groupStack)-1]

	current := o.currentRun()

	var last *StyleRun
	if entry.valid {
		last = &entry.run
	}

	// has the style been changed?
	if runsAreEqual(last, current) {
		return nil
	}

	// a group opened before any run started with the baseline style
	restored := o.baselineRun()
	if last != nil {
		restored = *last
	}

	if int(current.Offset) == o.offset {
		// replace the current one, we don't need it anymore
		current.Color = restored.Color
		current.Font = restored.Font
		return nil
	}

	// adopt the run from the previous group
	restored.Offset = uint32(o.offset)
	o.runs = append(o.runs, restored)
	return nil
}

func (o *TextOutput) Command(command *Command) error {
	if command.Name != "'" {
		if err := o.flushPending(); err != nil {
			return err
		}
	}

	if o.processRuns && o.processStyleCommand(command) {
		return nil
	}

	written, err := o.processCommand(command)
	o.offset += written
	return err
}

func (o *TextOutput) Text(text *Text) error {
	if err := o.flushPending(); err != nil {
		return err
	}

	written, err := writeText(&o.context, text.GetContent(), o.target)
	o.offset += written
	return err
}

/**
 * commands changing the current run; returns false for anything else
 */
func (o *TextOutput) processStyleCommand(command *Command) bool {
	switch command.Name {
	case "cf":
		// foreground color
		run := o.prepareTextRun()
		run.Color = o.doc.ColorAt(command.Option)
	case "b", "embo", "impr":
		// bold style ("emboss" and "engrave" are currently the same, too)
		run := o.prepareTextRun()
		run.Font.SetFace(FaceBold, command.IntOption() != 0)
	case "i":
		run := o.prepareTextRun()
		run.Font.SetFace(FaceItalic, command.IntOption() != 0)
	case "ul":
		run := o.prepareTextRun()
		run.Font.SetFace(FaceUnderline, command.IntOption() != 0)
	case "ulnone":
		run := o.prepareTextRun()
		run.Font.SetFace(FaceUnderline, false)
	case "strike":
		run := o.prepareTextRun()
		run.Font.SetFace(FaceStrikeout, command.IntOption() != 0)
	case "fs":
		// font size in half points, 24 when omitted
		halfPoints := 24
		if command.HasOption {
			halfPoints = command.Option
		}
		run := o.prepareTextRun()
		run.Font.Size = float32(halfPoints) / 2
	case "plain":
		// reset font to plain style
		run := o.prepareTextRun()
		run.Font = o.catalog.PlainFont()
	case "f":
		o.selectFont(command)
	default:
		return false
	}
	return true
}

/**
 * font number: only fixed fonts are told apart from proportional ones,
 * the declared name of the font is not matched
 */
func (o *TextOutput) selectFont(command *Command) {
	fonts := o.doc.FindGroup("fonttbl")
	if fonts == nil {
		return
	}

	run := o.prepareTextRun()

	// missing font info will be replaced by the default font
	font := o.catalog.PlainFont()
	for index := 0; ; index++ {
		info := fonts.FindDefinition("f", index)
		if info == nil {
			break
		}
		if info.Option != command.Option {
			continue
		}
		if info.GetParent().FindDefinition("fmodern", 0) != nil {
			font = o.catalog.FixedFont()
		}
	}

	// the face is kept, so the style name has to match it
	family, style := FamilyAndStyle(font)
	if run.Font.Face.Has(FaceBold | FaceItalic) {
		style = run.Font.Face.StyleName()
	}
	run.Font.Family, run.Font.Style = family, style
}

/**
 * layout and text producing commands; returns the number of bytes written
 * unknown commands are ignored
 */
func (o *TextOutput) processCommand(command *Command) (int, error) {
	context := &o.context
	target := o.target

	switch command.Name {
	case "par", "line":
		// paragraph ended
		return nextLine(context, "\n", target)
	case "sect":
		context.section++
		return nextLine(context, "\n", target)
	case "page":
		// we just insert two carriage returns for a page break
		context.page++
		return nextLine(context, "\n\n", target)
	case "tab":
		return writeString(context, "\t", target)
	case "u":
		return writeUnicodeChar(context, rune(command.Option), target)
	case "'":
		if !command.HasOption {
			return 0, nil
		}
		return o.writeCodepageByte(byte(command.Option))
	case "pard":
		// reset paragraph
		context.firstLineIndent = 0
		return 0, nil
	case "fi", "cufi":
		// "cufi" first line indent in 1/100 space steps
		// "fi" is most probably specified in 1/20 pts, but both are handled the same
		// clamp first, the parameter may be any int
		option := min(max(command.Option, 0), maxFirstLineIndent*100)
		context.firstLineIndent = (option + 50) / 100
		return 0, nil
	case "sectnum":
		return writeString(context, strconv.Itoa(context.section), target)
	case "pgnstarts":
		context.startPage = 1
		if command.HasOption {
			context.startPage = command.Option
		}
		return 0, nil
	case "pgnrestart":
		context.page = context.startPage
		return 0, nil
	case "chpgn":
		return writeString(context, strconv.Itoa(context.page), target)
	case "ansi", "mac", "pc", "pca":
		enc, _ := GetEncodingFromCodepage(command.Name)
		context.decoder = GetDecoder(enc)
		return 0, nil
	case "ansicpg":
		if enc, err := GetEncodingFromCodepage(strconv.Itoa(command.Option)); err == nil {
			context.decoder = GetDecoder(enc)
		}
		return 0, nil
	}

	if symbol, ok := textSymbols[command.Name]; ok {
		return writeString(context, symbol, target)
	}
	return 0, nil
}

/**
 * \'hh is a byte of the document code page; double byte code pages need two of them
 */
func (o *TextOutput) writeCodepageByte(b byte) (int, error) {
	context := &o.context
	context.pending = append(context.pending, b)

	var dst [16]byte
	context.decoder.Reset()
	nDst, nSrc, err := context.decoder.Transform(dst[:], context.pending, false)
	if errors.Is(err, transform.ErrShortSrc) && nSrc == 0 {
		// wait for the trail byte
		return 0, nil
	}
	context.pending = context.pending[nSrc:]
	if len(context.pending) == 0 {
		context.pending = nil
	}

	written, werr := writeText(context, dst[:nDst], o.target)
	o.offset += written
	return 0, werr
}

/**
 * a lead byte without its trail byte is decoded alone
 */
func (o *TextOutput) flushPending() error {
	context := &o.context
	if len(context.pending) == 0 {
		return nil
	}

	context.decoder.Reset()
	decoded, err := context.decoder.Bytes(context.pending)
	context.pending = nil
	if err != nil || len(decoded) == 0 {
		decoded = []byte("�")
	}

	written, err := writeText(context, decoded, o.target)
	o.offset += written
	return err
}
