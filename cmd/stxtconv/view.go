package main

import (
	"sort"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	stxtconverter "github.com/axigenmessaging/stxtconverter"
)

const tabWidth = 8

type viewCell struct {
	r     rune
	style tcell.Style
	width int
}

// runStyle maps a style run onto terminal attributes; black text keeps the terminal color
func runStyle(run stxtconverter.StyleRun) tcell.Style {
	style := tcell.StyleDefault
	if run.Color != stxtconverter.Black {
		style = style.Foreground(tcell.NewRGBColor(int32(run.Color.R), int32(run.Color.G), int32(run.Color.B)))
	}

	face := run.Font.Face
	return style.
		Bold(face.Has(stxtconverter.FaceBold)).
		Italic(face.Has(stxtconverter.FaceItalic)).
		Underline(face.Has(stxtconverter.FaceUnderline)).
		StrikeThrough(face.Has(stxtconverter.FaceStrikeout))
}

/**
 * layoutStyledText splits the text into screen lines of at most width columns
 */
func layoutStyledText(text []byte, runs []stxtconverter.StyleRun, width int) [][]viewCell {
	if width < 1 {
		width = 1
	}

	styleAt := func(offset int) tcell.Style {
		// the last run starting at or before offset
		i := sort.Search(len(runs), func(i int) bool { return int(runs[i].Offset) > offset })
		if i == 0 {
			return tcell.StyleDefault
		}
		return runStyle(runs[i-1])
	}

	lines := [][]viewCell{}
	line := []viewCell{}
	column := 0

	for offset := 0; offset < len(text); {
		r, size := utf8.DecodeRune(text[offset:])
		style := styleAt(offset)
		offset += size

		if r == '\n' {
			lines = append(lines, line)
			line = []viewCell{}
			column = 0
			continue
		}

		cells := []viewCell{{r: r, style: style, width: runewidth.RuneWidth(r)}}
		if r == '\t' {
			cells = cells[:0]
			for n := tabWidth - column%tabWidth; n > 0; n-- {
				cells = append(cells, viewCell{r: ' ', style: style, width: 1})
			}
		}

		for _, cell := range cells {
			if cell.width == 0 {
				// control chars and combining marks are not shown
				continue
			}
			if column+cell.width > width {
				lines = append(lines, line)
				line = []viewCell{}
				column = 0
			}
			line = append(line, cell)
			column += cell.width
		}
	}
	return append(lines, line)
}

/**
 * drawStyledText draws the lines starting at top; returns the number of lines of the text
 */
func drawStyledText(screen tcell.Screen, text []byte, runs []stxtconverter.StyleRun, top int) int {
	width, height := screen.Size()
	lines := layoutStyledText(text, runs, width)

	screen.Clear()
	for y := 0; y < height && top+y < len(lines); y++ {
		x := 0
		for _, cell := range lines[top+y] {
			screen.SetContent(x, y, cell.r, nil, cell.style)
			x += cell.width
		}
	}
	return len(lines)
}

func runViewer(text []byte, runs []stxtconverter.StyleRun) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	return viewLoop(screen, text, runs)
}

// viewLoop shows the text until q or Esc is pressed
func viewLoop(screen tcell.Screen, text []byte, runs []stxtconverter.StyleRun) error {
	top := 0
	for {
		total := drawStyledText(screen, text, runs, top)
		screen.Show()

		_, height := screen.Size()
		maxTop := max(0, total-height)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return nil
			case tcell.KeyRune:
				if ev.Rune() == 'q' {
					return nil
				}
			case tcell.KeyUp:
				top--
			case tcell.KeyDown:
				top++
			case tcell.KeyPgUp:
				top -= height
			case tcell.KeyPgDn:
				top += height
			case tcell.KeyHome:
				top = 0
			case tcell.KeyEnd:
				top = maxTop
			}
			top = min(max(top, 0), maxTop)
		}
	}
}
