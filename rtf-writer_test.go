package stxtconverter

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestStyledTextToRtf(t *testing.T) {
	red := RGBA8{255, 0, 0, 255}

	tests := []struct {
		name string
		text string
		runs []StyleRun
		want string
	}{
		{
			name: "one run",
			text: "A\nB",
			runs: []StyleRun{run(0, Black, testPlainFont)},
			want: `{\rtf1\ansi{\fonttbl{\f0 Plain;}}{\colortbl\red0\green0\blue0;}\pard\plain\f0\cf0\fs24 A\lineB}`,
		},
		{
			name: "no runs",
			text: "a{b}\\c\nd",
			want: `{\rtf1\ansi{\fonttbl\f0 Noto Sans;}\f0\pard a\{b\}\\c\lined}`,
		},
		{
			name: "escaped text",
			text: `a{b}\c`,
			runs: []StyleRun{run(0, Black, testPlainFont)},
			want: `{\rtf1\ansi{\fonttbl{\f0 Plain;}}{\colortbl\red0\green0\blue0;}\pard\plain\f0\cf0\fs24 a\{b\}\\c}`,
		},
		{
			name: "sorted tables",
			text: "abc",
			runs: []StyleRun{
				run(0, red, testPlainFont),
				run(1, Black, testFixedFont),
				run(2, red, testPlainFont),
			},
			want: `{\rtf1\ansi{\fonttbl{\f0 Fixed;}{\f1 Plain;}}{\colortbl\red0\green0\blue0;\red255\green0\blue0;}` +
				`\pard\plain\f1\cf1\fs24 a\pard\plain\f0\cf0\fs24 b\pard\plain\f1\cf1\fs24 c}`,
		},
		{
			name: "faces",
			text: "x",
			runs: []StyleRun{run(0, Black, withFace(testPlainFont, FaceStrikeout|FaceBold|FaceUnderline|FaceItalic))},
			want: `{\rtf1\ansi{\fonttbl{\f0 Plain;}}{\colortbl\red0\green0\blue0;}\pard\plain\f0\cf0\i\ul\b\strike\fs24 x}`,
		},
		{
			name: "half point sizes",
			text: "x",
			runs: []StyleRun{run(0, Black, Font{Family: "Plain", Size: 10.5, Face: FaceRegular})},
			want: `{\rtf1\ansi{\fonttbl{\f0 Plain;}}{\colortbl\red0\green0\blue0;}\pard\plain\f0\cf0\fs21 x}`,
		},
		{
			name: "text before the first run",
			text: "abcd",
			runs: []StyleRun{run(2, Black, testPlainFont)},
			want: `{\rtf1\ansi{\fonttbl{\f0 Plain;}}{\colortbl\red0\green0\blue0;}\pard\plain ab\pard\plain\f0\cf0\fs24 cd}`,
		},
		{
			name: "runs past the end",
			text: "ab",
			runs: []StyleRun{run(0, Black, testPlainFont), run(5, red, testPlainFont)},
			want: `{\rtf1\ansi{\fonttbl{\f0 Plain;}}{\colortbl\red0\green0\blue0;\red255\green0\blue0;}` +
				`\pard\plain\f0\cf0\fs24 ab\pard\plain\f0\cf1\fs24 }`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StyledTextToRtf([]byte(tt.text), tt.runs)
			if got != tt.want {
				t.Errorf("StyledTextToRtf =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestStyledTextToRtfConvertsBack(t *testing.T) {
	red := RGBA8{255, 0, 0, 255}
	text := "Hello world"
	runs := []StyleRun{
		run(0, red, withFace(testPlainFont, FaceBold)),
		run(6, Black, Font{Family: "Plain", Style: "Italic", Size: 10, Face: FaceItalic}),
	}

	got, gotRuns := convertRtf(t, StyledTextToRtf([]byte(text), runs), true)
	if got != text {
		t.Errorf("text = %q, want %q", got, text)
	}
	if !reflect.DeepEqual(gotRuns, runs) {
		t.Errorf("runs =\n%+v\nwant\n%+v", gotRuns, runs)
	}
}

func TestStyledTextToRtfKeepsFixedFont(t *testing.T) {
	text := "ab"
	runs := []StyleRun{run(0, Black, testFixedFont), run(1, Black, testPlainFont)}

	rtf := StyledTextToRtfWithCatalog([]byte(text), runs, testCatalog)
	if !strings.Contains(rtf, `{\fonttbl{\f0\fmodern Fixed;}{\f1 Plain;}}`) {
		t.Fatalf("font table of %s", rtf)
	}

	got, gotRuns := convertRtf(t, rtf, true)
	if got != text {
		t.Errorf("text = %q, want %q", got, text)
	}
	if !reflect.DeepEqual(gotRuns, runs) {
		t.Errorf("runs =\n%+v\nwant\n%+v", gotRuns, runs)
	}
}

func TestStyledTextToRtfDefaultCatalog(t *testing.T) {
	fixed := DefaultFontCatalog().FixedFont()
	runs := []StyleRun{run(0, Black, fixed)}

	got := StyledTextToRtf([]byte("x"), runs)
	if got != StyledTextToRtfWithCatalog([]byte("x"), runs, nil) {
		t.Errorf("nil catalog differs from the default one: %s", got)
	}
	if !strings.Contains(got, `{\f0\fmodern `+fixed.Family+`;}`) {
		t.Errorf("rtf = %s", got)
	}
}

func TestPlainTextToRtf(t *testing.T) {
	got := PlainTextToRtf([]byte("a\nb{"))
	want := `{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}\f0\pard a \par b\{ }`
	if got != want {
		t.Errorf("PlainTextToRtf = %s, want %s", got, want)
	}

	text, _ := convertRtf(t, got, false)
	if text != "a \nb{ " {
		t.Errorf("converted back to %q", text)
	}
}

func TestConvertStyledTextToRtf(t *testing.T) {
	data := encodeForTest(t, "hi", []StyleRun{run(0, Black, testPlainFont)})

	out := &bytes.Buffer{}
	if err := ConvertStyledTextToRtf(bytes.NewReader(data), out); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out.String(), `\fs24 hi}`) {
		t.Errorf("rtf = %s", out.String())
	}

	err := ConvertStyledTextToRtf(strings.NewReader("not a container"), out)
	if !errors.Is(err, ErrMalformedContainer) {
		t.Errorf("err = %v, want ErrMalformedContainer", err)
	}
}

func TestConvertPlainTextToRtf(t *testing.T) {
	out := &bytes.Buffer{}
	if err := ConvertPlainTextToRtf(strings.NewReader("x"), out); err != nil {
		t.Fatal(err)
	}
	if out.String() != PlainTextToRtf([]byte("x")) {
		t.Errorf("rtf = %s", out.String())
	}
}
