/**
 * decompose a rtf file into a tree of rtf tokens: groups, commands and text
 */

package stxtconverter

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

type RtfStructure struct {
	reader       *bufio.Reader
	Root         *Group
	currentGroup *Group

	/**
	 * This keyword represents the number of bytes corresponding to a given \uN Unicode character.
	 * Values are scoped like character properties: a \ucN keyword applies only to text following
	 * the keyword, and within the same (or deeper) nested braces. On exiting the group, the previous
	 * \uc value is restored. A default of 1 is assumed if no \uc keyword has been seen.
	 */
	uc []int

	// colortbl entries, resolved once the whole document is parsed
	colors []RGBA8
}

/**
 * load a file
 */
func (rtfObj *RtfStructure) ParseFile(filename string) error {
	fileReader, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fileReader.Close()

	rtfObj.setReader(bufio.NewReader(fileReader))
	return rtfObj.Parse()
}

func (rtfObj *RtfStructure) ParseBytes(content []byte) error {
	rtfObj.setReader(bufio.NewReader(bytes.NewReader(content)))
	return rtfObj.Parse()
}

func (rtfObj *RtfStructure) setReader(reader *bufio.Reader) {
	rtfObj.reader = reader
	rtfObj.Root = nil
	rtfObj.currentGroup = nil
	rtfObj.uc = nil
	rtfObj.colors = nil
}

func (rtfObj *RtfStructure) Parse() error {
	if rtfObj.reader == nil {
		return errors.New("no RTF source to parse")
	}

	for {
		if rtfObj.currentGroup == nil && rtfObj.Root != nil {
			// ignore text after RTF group tag is closed
			break
		}

		b, err := rtfObj.reader.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		if rtfObj.Root == nil && b != '{' {
			// anything before the first group is garbage
			continue
		}

		// What type of character is this?
		switch b {
		case '{':
			rtfObj.startGroup()
		case '}':
			rtfObj.endGroup()
		case '\\':
			if err := rtfObj.parseControl(); err != nil {
				return err
			}
		default:
			// move the pointer back 1 char
			if err := rtfObj.reader.UnreadByte(); err != nil {
				return err
			}
			if err := rtfObj.parseText(); err != nil {
				return err
			}
		}
	}

	// close groups left open by a truncated document
	for rtfObj.currentGroup != nil {
		rtfObj.endGroup()
	}

	if rtfObj.Root == nil {
		return fmt.Errorf("%w: no group found", ErrInvalidRtf)
	}

	rtfObj.colors = parseColorTable(rtfObj.FindGroup("colortbl"))

	Logger().Debug("rtf parsed", "colors", len(rtfObj.colors))
	return nil
}

/**
 * create a new group if the current char is {, add it as a child to current group, and make it the current group
 */
func (rtfObj *RtfStructure) startGroup() {
	group := &Group{}
	if rtfObj.Root == nil {
		rtfObj.Root = group
		rtfObj.currentGroup = rtfObj.Root
		rtfObj.uc = append(rtfObj.uc, 1)
		return
	}

	// add the new group as a child to the current one
	rtfObj.currentGroup.addChild(group)

	// set the active group the new one
	rtfObj.currentGroup = group

	// inherit the uc from the last group
	rtfObj.uc = append(rtfObj.uc, rtfObj.uc[len(rtfObj.uc)-1])
}

/**
 * an end group is identified; set the parent of current group as current group
 */
func (rtfObj *RtfStructure) endGroup() {
	if rtfObj.currentGroup == nil {
		// unbalanced }
		return
	}

	rtfObj.currentGroup.determineDestination()

	// when a group is closed, set the new current group his parent
	rtfObj.currentGroup = rtfObj.currentGroup.GetParent()

	// uc for the group is lost when the group is closed, and the previous value is restored
	if len(rtfObj.uc) > 0 {
		rtfObj.uc = rtfObj.uc[:len(rtfObj.uc)-1]
	}
}

func (rtfObj *RtfStructure) parseText(prefix ...byte) error {
	buffer := bytes.NewBuffer(prefix)

	// continue read until meet a char that tell us the text ends (start group, end group, control word, control symbol)
	for {
		bp, err := rtfObj.reader.Peek(2)
		if len(bp) == 0 {
			if err != nil && err != io.EOF {
				return err
			}
			break
		}

		// ignore EOL chars
		if bp[0] == '\r' || bp[0] == '\n' {
			rtfObj.reader.ReadByte()
			continue
		}

		if bp[0] == '{' || bp[0] == '}' {
			break
		}

		if bp[0] == '\\' {
			if len(bp) < 2 || (bp[1] != '\\' && bp[1] != '{' && bp[1] != '}') {
				// it's the beginning of a new control word or symbol
				break
			}

			// an escaped reserved char belongs to the text, without its backslash
			rtfObj.reader.Discard(1)
			b, _ := rtfObj.reader.ReadByte()
			buffer.WriteByte(b)
			continue
		}

		b, _ := rtfObj.reader.ReadByte()
		buffer.WriteByte(b)
	}

	if buffer.Len() > 0 {
		// append text token only if the text if not empty
		rtfObj.currentGroup.addChild(&Text{content: buffer.Bytes()})
	}
	return nil
}

/**
 * the char before the reader pointer is \ that tell us is a control symbol (a single non alphanumeric char) or control word
 */
func (rtfObj *RtfStructure) parseControl() error {
	bp, err := rtfObj.reader.Peek(1)
	if err != nil {
		// a trailing backslash
		if err == io.EOF {
			return nil
		}
		return err
	}

	if ByteIsAsciiLetter(bp[0]) {
		return rtfObj.parseControlWord()
	}
	return rtfObj.parseControlSymbol()
}

/**
 * control symbols are tokens formed by a single non alphanumeric char, without parameters
 * if the char is ', it is followed by a 2 digit hex number.
 *
 * The function match:
 * \NonAlphaNumericChar (\~, \*, \_)
 * \'HH , HH - hexadecimal value
 *
 * \\n or \\r is an escaped new line and is transformed to the control word \par
 * \\, \{ and \} are text
 */
func (rtfObj *RtfStructure) parseControlSymbol() error {
	b, err := rtfObj.reader.ReadByte()
	if err != nil {
		return err
	}

	switch b {
	case '\r', '\n':
		// swallow the second half of a \r\n pair
		if bp, err := rtfObj.reader.Peek(1); err == nil && (bp[0] == '\r' || bp[0] == '\n') && bp[0] != b {
			rtfObj.reader.ReadByte()
		}
		rtfObj.currentGroup.addChild(&Command{Name: "par"})
		return nil
	case '\\', '{', '}':
		// an escaped reserved char starting a text
		return rtfObj.parseText(b)
	case '\'':
		cmd := &Command{Name: "'"}
		if v, ok := rtfObj.readHexByte(); ok {
			cmd.HasOption = true
			cmd.Option = v
		}
		rtfObj.currentGroup.addChild(cmd)
		return nil
	}

	rtfObj.currentGroup.addChild(&Command{Name: string(b)})
	return nil
}

// readHexByte consumes up to two hex digits.
func (rtfObj *RtfStructure) readHexByte() (int, bool) {
	var digits []byte
	for len(digits) < 2 {
		bp, err := rtfObj.reader.Peek(1)
		if err != nil || !ByteIsHexDigit(bp[0]) {
			break
		}
		rtfObj.reader.ReadByte()
		digits = append(digits, bp[0])
	}
	if len(digits) == 0 {
		return 0, false
	}
	v, err := strconv.ParseUint(string(digits), 16, 8)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

/**
 * control words patterns are:
 * 		\letters[numericParameter]
 * 		\u[-]NNNNN
 */
func (rtfObj *RtfStructure) parseControlWord() error {
	wordBuffer := &bytes.Buffer{}
	parameterBuffer := &bytes.Buffer{}

	// extract the word
	for {
		bp, err := rtfObj.reader.Peek(1)
		if err != nil || !ByteIsAsciiLetter(bp[0]) {
			break
		}
		b, _ := rtfObj.reader.ReadByte()
		wordBuffer.WriteByte(b)
	}

	// check if the parameter is negative (-digits)
	if bp, err := rtfObj.reader.Peek(2); err == nil && bp[0] == '-' && ByteIsDigit(bp[1]) {
		rtfObj.reader.ReadByte()
		parameterBuffer.WriteByte('-')
	}

	// extract the numeric parameter
	for {
		bp, err := rtfObj.reader.Peek(1)
		if err != nil || !ByteIsDigit(bp[0]) {
			break
		}
		b, _ := rtfObj.reader.ReadByte()
		parameterBuffer.WriteByte(b)
	}

	/**
	 * if a space delimits the control word, the space does not appear in the document.
	 * Any characters following the delimiter, including spaces, will appear in the document.
	 */
	if bp, err := rtfObj.reader.Peek(1); err == nil && bp[0] == ' ' {
		rtfObj.reader.ReadByte()
	}

	cmd := &Command{Name: wordBuffer.String()}
	if parameterBuffer.Len() > 0 {
		if parameter, err := strconv.Atoi(parameterBuffer.String()); err == nil {
			cmd.HasOption = true
			cmd.Option = parameter
		}
	}

	switch cmd.Name {
	case "uc":
		// rewrite the last entry from uc - a new group inherits the value of its parent
		rtfObj.uc[len(rtfObj.uc)-1] = cmd.IntOption()
	case "u":
		/**
		 * RTF control words accept signed 16-bit numbers as arguments, so Unicode values
		 * greater than 32767 are expressed as negative numbers.
		 * The keyword is followed by its ANSI representation: the reader ignores the
		 * next N characters, where N corresponds to the last \ucN value encountered.
		 */
		if cmd.Option < 0 {
			cmd.Option += 65536
		}
		if err := rtfObj.skipFallback(rtfObj.uc[len(rtfObj.uc)-1]); err != nil {
			return err
		}
	}

	rtfObj.currentGroup.addChild(cmd)
	return nil
}

/**
 * skip the ANSI replacement of a \uN character
 * a control word or symbol counts as one character; a brace ends the skippable data
 */
func (rtfObj *RtfStructure) skipFallback(count int) error {
	for count > 0 {
		bp, err := rtfObj.reader.Peek(1)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if bp[0] == '{' || bp[0] == '}' {
			return nil
		}

		b, _ := rtfObj.reader.ReadByte()
		if b == '\r' || b == '\n' {
			continue
		}
		count--
		if b != '\\' {
			continue
		}

		bp, err = rtfObj.reader.Peek(1)
		if err != nil {
			return nil
		}
		switch {
		case bp[0] == '\'':
			rtfObj.reader.ReadByte()
			rtfObj.readHexByte()
		case ByteIsAsciiLetter(bp[0]):
			for {
				bp, err := rtfObj.reader.Peek(1)
				if err != nil || !(ByteIsAsciiLetter(bp[0]) || ByteIsDigit(bp[0]) || bp[0] == '-') {
					break
				}
				rtfObj.reader.ReadByte()
			}
			if bp, err := rtfObj.reader.Peek(1); err == nil && bp[0] == ' ' {
				rtfObj.reader.ReadByte()
			}
		default:
			rtfObj.reader.ReadByte()
		}
	}
	return nil
}

func (rtfObj *RtfStructure) Dump(w io.Writer) {
	if rtfObj.Root != nil {
		rtfObj.Root.Dump(w, 0)
	}
}

/**
 * the root group must have the first control word == rtf1
 */
func (rtfObj *RtfStructure) IsValid() bool {
	if rtfObj.Root == nil || !rtfObj.Root.IsRtfGroup() {
		return false
	}
	cmd := rtfObj.Root.GetChildren()[0].(*Command)
	return cmd.HasOption && cmd.Option == 1
}

/**
 * FindGroup returns the first group, in document order, whose first control word is tag
 */
func (rtfObj *RtfStructure) FindGroup(tag string) *Group {
	if rtfObj.Root == nil {
		return nil
	}
	return findGroup(rtfObj.Root, tag)
}

func findGroup(g *Group, tag string) *Group {
	if g.CheckChildAtIndex(0, tag) {
		return g
	}
	for _, child := range g.children {
		if cg, ok := child.(*Group); ok {
			if found := findGroup(cg, tag); found != nil {
				return found
			}
		}
	}
	return nil
}

/**
 * ColorAt resolves an index of the document color table;
 * missing tables and indexes out of range give black
 */
func (rtfObj *RtfStructure) ColorAt(index int) RGBA8 {
	if index < 0 || index >= len(rtfObj.colors) {
		return Black
	}
	return rtfObj.colors[index]
}

/**
 * extract colors from colortbl tag
 *  {\colortbl;\red0\green0\blue0;}
 * every ; ends an entry, so index 0 of the table above is the 'auto' color
 */
func parseColorTable(item *Group) []RGBA8 {
	if item == nil {
		return nil
	}

	var colors []RGBA8
	color := Black
	for _, child := range item.GetChildren() {
		switch c := child.(type) {
		case *Command:
			switch c.Name {
			case "red":
				color.R = clampColorComponent(c.IntOption())
			case "green":
				color.G = clampColorComponent(c.IntOption())
			case "blue":
				color.B = clampColorComponent(c.IntOption())
			}
		case *Text:
			for _, b := range c.GetContent() {
				if b == ';' {
					colors = append(colors, color)
					color = Black
				}
			}
		}
	}
	return colors
}

func clampColorComponent(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
