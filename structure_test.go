package stxtconverter

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func parseRtf(t *testing.T, src string) *RtfStructure {
	t.Helper()
	doc := &RtfStructure{}
	if err := doc.ParseBytes([]byte(src)); err != nil {
		t.Fatalf("ParseBytes(%q): %v", src, err)
	}
	return doc
}

func TestParseText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"plain", `{\rtf1 hello}`, "hello"},
		{"escaped reserved chars", `{\rtf1 a\\b\{c\}}`, `a\b{c}`},
		{"line breaks are ignored", "{\\rtf1 a\r\nb}", "ab"},
		{"delimiter space is dropped", `{\rtf1\b  x}`, " x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseRtf(t, tt.src)
			var got []byte
			for _, child := range doc.Root.GetChildren() {
				if text, ok := child.(*Text); ok {
					got = append(got, text.GetContent()...)
				}
			}
			if string(got) != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseControlWords(t *testing.T) {
	doc := parseRtf(t, `{\rtf1\fi-150\b\ul0\'e9\~}`)

	want := []Command{
		{Name: "rtf", HasOption: true, Option: 1},
		{Name: "fi", HasOption: true, Option: -150},
		{Name: "b"},
		{Name: "ul", HasOption: true, Option: 0},
		{Name: "'", HasOption: true, Option: 0xe9},
		{Name: "~"},
	}

	children := doc.Root.GetChildren()
	if len(children) != len(want) {
		t.Fatalf("got %d children, want %d", len(children), len(want))
	}
	for i, child := range children {
		cmd, ok := child.(*Command)
		if !ok {
			t.Fatalf("child %d is %T, want *Command", i, child)
		}
		if cmd.Name != want[i].Name || cmd.HasOption != want[i].HasOption || cmd.Option != want[i].Option {
			t.Errorf("child %d = {%q %v %d}, want {%q %v %d}", i,
				cmd.Name, cmd.HasOption, cmd.Option, want[i].Name, want[i].HasOption, want[i].Option)
		}
	}
}

func TestParseEscapedNewlineIsPar(t *testing.T) {
	doc := parseRtf(t, "{\\rtf1 a\\\r\nb}")

	children := doc.Root.GetChildren()
	if len(children) != 4 {
		t.Fatalf("got %d children, want 4", len(children))
	}
	if cmd, ok := children[2].(*Command); !ok || cmd.Name != "par" {
		t.Errorf("child 2 = %#v, want par command", children[2])
	}
}

func TestParseUnicode(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode int
		wantText string
	}{
		{"fallback skipped", `{\rtf1\u233 e}`, 233, ""},
		{"negative value", `{\rtf1\u-4064 ?x}`, 61472, "x"},
		{"uc2", `{\rtf1\uc2\u233 ab c}`, 233, " c"},
		{"uc0", `{\rtf1\uc0\u233 e}`, 233, "e"},
		// no delimiter after a control symbol, the space is text
		{"control symbol fallback", `{\rtf1\u8364\'80 x}`, 8364, " x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseRtf(t, tt.src)

			u := doc.Root.FindDefinition("u", 0)
			if u == nil {
				t.Fatal("no \\u command")
			}
			if u.Option != tt.wantCode {
				t.Errorf("code = %d, want %d", u.Option, tt.wantCode)
			}

			var text []byte
			for _, child := range doc.Root.GetChildren() {
				if tx, ok := child.(*Text); ok {
					text = append(text, tx.GetContent()...)
				}
			}
			if string(text) != tt.wantText {
				t.Errorf("remaining text = %q, want %q", text, tt.wantText)
			}
		})
	}
}

func TestParseUcIsScopedToGroup(t *testing.T) {
	doc := parseRtf(t, `{\rtf1{\uc2 x}\u233 ab}`)

	var text []byte
	for _, child := range doc.Root.GetChildren() {
		if tx, ok := child.(*Text); ok {
			text = append(text, tx.GetContent()...)
		}
	}
	// back to the default of one fallback char outside the group
	if string(text) != "b" {
		t.Errorf("text = %q, want %q", text, "b")
	}
}

func TestParseDestinations(t *testing.T) {
	doc := parseRtf(t, `{\rtf1{\fonttbl{\f0 Arial;}}{\colortbl;}{\stylesheet}{\info}{\pict}{\*\generator x;}{\*\listtable}{\*\revtbl}{\b x}}`)

	want := []Destination{
		FontTableDestination,
		ColorTableDestination,
		StyleSheetDestination,
		InfoDestination,
		PictureDestination,
		CommentDestination,
		ListTableDestination,
		RevisionTableDestination,
		TextDestination,
	}

	var got []Destination
	for _, child := range doc.Root.GetChildren() {
		if g, ok := child.(*Group); ok {
			got = append(got, g.Destination())
		}
	}

	if len(got) != len(want) {
		t.Fatalf("got %d groups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("group %d destination = %v, want %v", i, got[i], want[i])
		}
	}
	if doc.Root.Destination() != TextDestination {
		t.Errorf("root destination = %v, want text", doc.Root.Destination())
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantText string
	}{
		{"garbage before the document", `junk{\rtf1 x}`, "x"},
		{"text after the document", `{\rtf1 x}trailing`, "x"},
		{"unclosed groups", `{\rtf1 x{\b y`, "x"},
		{"trailing backslash", `{\rtf1 x\`, "x"},
		{"truncated hex", `{\rtf1 x\'e`, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseRtf(t, tt.src)
			if !doc.IsValid() {
				t.Error("document is not valid")
			}
			text, ok := doc.Root.GetChildren()[1].(*Text)
			if !ok || string(text.GetContent()) != tt.wantText {
				t.Errorf("first text = %#v, want %q", doc.Root.GetChildren()[1], tt.wantText)
			}
		})
	}
}

func TestParseWithoutGroup(t *testing.T) {
	doc := &RtfStructure{}
	err := doc.ParseBytes([]byte("just text"))
	if !errors.Is(err, ErrInvalidRtf) {
		t.Errorf("err = %v, want ErrInvalidRtf", err)
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{`{\rtf1 x}`, true},
		{`{\rtf2 x}`, false},
		{`{\rtf x}`, false},
		{`{x}`, false},
	}

	for _, tt := range tests {
		if got := parseRtf(t, tt.src).IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestFindGroupAndDefinition(t *testing.T) {
	doc := parseRtf(t, `{\rtf1{\fonttbl{\f0\fswiss Arial;}{\f1\fmodern Courier;}}x}`)

	fonts := doc.FindGroup("fonttbl")
	if fonts == nil {
		t.Fatal("fonttbl not found")
	}
	if doc.FindGroup("colortbl") != nil {
		t.Error("found a colortbl that does not exist")
	}

	second := fonts.FindDefinition("f", 1)
	if second == nil || second.Option != 1 {
		t.Fatalf("second font = %#v", second)
	}
	if second.GetParent().FindDefinition("fmodern", 0) == nil {
		t.Error("second font is not fmodern")
	}
	if fonts.FindDefinition("f", 2) != nil {
		t.Error("found a third font")
	}
}

func TestColorAt(t *testing.T) {
	doc := parseRtf(t, `{\rtf1{\colortbl;\red255\green0\blue0;\red0\green300\blue-5;}x}`)

	tests := []struct {
		index int
		want  RGBA8
	}{
		{0, Black},
		{1, RGBA8{255, 0, 0, 255}},
		{2, RGBA8{0, 255, 0, 255}},
		{3, Black},
		{-1, Black},
	}

	for _, tt := range tests {
		if got := doc.ColorAt(tt.index); got != tt.want {
			t.Errorf("ColorAt(%d) = %v, want %v", tt.index, got, tt.want)
		}
	}

	if got := parseRtf(t, `{\rtf1 x}`).ColorAt(0); got != Black {
		t.Errorf("ColorAt without table = %v, want black", got)
	}
}

func TestDump(t *testing.T) {
	doc := parseRtf(t, `{\rtf1{\b x}}`)

	buf := &bytes.Buffer{}
	doc.Dump(buf)

	for _, want := range []string{"Group text (Children: 2)", `Command (\rtf1)`, " Command (\\b)", `Text: "x"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("dump misses %q:\n%s", want, buf.String())
		}
	}
}
