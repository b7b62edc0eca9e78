package stxtconverter

import (
	"fmt"
	"io"
	"strings"
)

// Node is one element of a parsed RTF document: a *Group, a *Command or a *Text.
type Node interface {
	setParent(p *Group)
	GetParent() *Group
	Dump(w io.Writer, level int)
}

// Destination tells whether the content of a group is renderable text or
// auxiliary metadata that text conversion skips.
type Destination int

const (
	TextDestination Destination = iota
	CommentDestination
	FontTableDestination
	ColorTableDestination
	StyleSheetDestination
	InfoDestination
	PictureDestination
	ListTableDestination
	RevisionTableDestination
)

func (d Destination) String() string {
	switch d {
	case TextDestination:
		return "text"
	case CommentDestination:
		return "comment"
	case FontTableDestination:
		return "fonttbl"
	case ColorTableDestination:
		return "colortbl"
	case StyleSheetDestination:
		return "stylesheet"
	case InfoDestination:
		return "info"
	case PictureDestination:
		return "pict"
	case ListTableDestination:
		return "listtable"
	case RevisionTableDestination:
		return "revtbl"
	}
	return fmt.Sprintf("Destination(%d)", int(d))
}

/**
 * RTF Groups
 */
type Group struct {
	children    []Node
	parent      *Group
	destination Destination
}

func (r *Group) addChild(c Node) {
	c.setParent(r)
	r.children = append(r.children, c)
}

func (r *Group) GetChildren() []Node {
	return r.children
}

func (r *Group) setParent(p *Group) {
	r.parent = p
}

func (r *Group) GetParent() *Group {
	return r.parent
}

// Destination is determined once the group is closed by the tokenizer.
func (r *Group) Destination() Destination {
	return r.destination
}

/**
 * look at the first control words of the group and decide where its content goes
 * {\*\xxx ...} groups are ignorable destinations; the tables we know about get their own tag
 */
func (r *Group) determineDestination() {
	switch {
	case r.IsFontTable():
		r.destination = FontTableDestination
	case r.IsColorTable():
		r.destination = ColorTableDestination
	case r.IsStylesheet():
		r.destination = StyleSheetDestination
	case r.IsInfo():
		r.destination = InfoDestination
	case r.IsPicture():
		r.destination = PictureDestination
	case r.IsListtables():
		r.destination = ListTableDestination
	case r.IsTrackChanges():
		r.destination = RevisionTableDestination
	case r.IsDestination():
		r.destination = CommentDestination
	default:
		r.destination = TextDestination
	}
}

func (r *Group) IsDestination() bool {
	return r.CheckChildAtIndex(0, "*")
}

func (r *Group) IsRtfGroup() bool {
	return r.CheckChildAtIndex(0, "rtf")
}

/**
 * check if the group define the font table (first child must be fonttbl)
 */
func (r *Group) IsFontTable() bool {
	return r.CheckChildAtIndex(0, "fonttbl")
}

/**
 * check if the group define the stylesheet
 */
func (r *Group) IsStylesheet() bool {
	return r.CheckChildAtIndex(0, "stylesheet")
}

func (r *Group) IsListtables() bool {
	return r.CheckChildAtIndex(0, "listtable") || r.CheckChildAtIndex(0, "listtables") ||
		(r.IsDestination() && (r.CheckChildAtIndex(1, "listtable") || r.CheckChildAtIndex(1, "listoverridetable")))
}

func (r *Group) IsInfo() bool {
	return r.CheckChildAtIndex(0, "info")
}

func (r *Group) IsPicture() bool {
	return r.CheckChildAtIndex(0, "pict") || (r.IsDestination() && r.CheckChildAtIndex(1, "shppict"))
}

/**
 * check if the group define the revtbl
 */
func (r *Group) IsTrackChanges() bool {
	return (r.IsDestination() && r.CheckChildAtIndex(1, "revtbl")) || r.CheckChildAtIndex(0, "revtbl")
}

func (r *Group) IsColorTable() bool {
	return r.CheckChildAtIndex(0, "colortbl")
}

func (r *Group) CheckChildAtIndex(idx int, checkWord string) bool {
	if idx < len(r.children) {
		if cmd, ok := r.children[idx].(*Command); ok {
			return cmd.Name == checkWord
		}
	}
	return false
}

/**
 * FindDefinition returns the index-th command named name inside the group,
 * searching nested groups depth first. Font tables keep one {\fN ...} group
 * per font, so FindDefinition("f", i) walks the declared fonts in order.
 */
func (r *Group) FindDefinition(name string, index int) *Command {
	var found *Command
	r.findDefinition(name, &index, &found)
	return found
}

func (r *Group) findDefinition(name string, skip *int, found **Command) bool {
	for _, child := range r.children {
		switch c := child.(type) {
		case *Command:
			if c.Name == name {
				if *skip == 0 {
					*found = c
					return true
				}
				*skip--
			}
		case *Group:
			if c.findDefinition(name, skip, found) {
				return true
			}
		}
	}
	return false
}

func (r *Group) Dump(w io.Writer, level int) {
	fmt.Fprintf(w, "%sGroup %s (Children: %d)\n", strings.Repeat(" ", level), r.destination, len(r.children))
	for _, child := range r.children {
		child.Dump(w, level+1)
	}
}

/**
 * RTF Command: a control word or a control symbol
 * the name is saved without \
 *
 * 	eg: \rtf1
 * 	 Name: rtf
 * 	 HasOption: true
 * 	 Option: 1
 *
 *	\'e9
 *	 Name: '
 *	 Option: 0xe9
 */
type Command struct {
	Name      string
	HasOption bool
	Option    int
	parent    *Group
}

func (r *Command) setParent(p *Group) {
	r.parent = p
}

func (r *Command) GetParent() *Group {
	return r.parent
}

/**
 * for control words the default parameter is 1
 */
func (r *Command) IntOption() int {
	if !r.HasOption {
		return 1
	}
	return r.Option
}

func (r *Command) Dump(w io.Writer, level int) {
	if r.HasOption {
		fmt.Fprintf(w, "%sCommand (\\%s%d)\n", strings.Repeat(" ", level), r.Name, r.Option)
		return
	}
	fmt.Fprintf(w, "%sCommand (\\%s)\n", strings.Repeat(" ", level), r.Name)
}

/**
 * Text
 */
type Text struct {
	content []byte
	parent  *Group
}

func (r *Text) setParent(p *Group) {
	r.parent = p
}

func (r *Text) GetParent() *Group {
	return r.parent
}

func (r *Text) GetContent() []byte {
	return r.content
}

func (r *Text) Dump(w io.Writer, level int) {
	fmt.Fprintf(w, "%sText: %q\n", strings.Repeat(" ", level), r.content)
}
