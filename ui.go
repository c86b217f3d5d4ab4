package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/benwiggins/modtracker/pkg/mod"
)

var backgroundColour = tcell.GetColor("#282a36")
var effectColour = tcell.GetColor("#88DEEB")
var songColour = tcell.GetColor("#F879C0")
var patternNoteFgColour = tcell.GetColor("#F879C0")
var patternSampleFgColour = tcell.GetColor("#ffb86c")

var sampleBgColour = tcell.GetColor("#282a36")
var sampleFgColour = tcell.GetColor("#626A86")
var sampleHighlightBgColour = tcell.GetColor("#526A9E")
var sampleHighlightFgColour = tcell.GetColor("#bc91f3")

var patternHighlightBgColour = tcell.GetColor("#526A9E")
var patternHighlightFgColour = tcell.GetColor("#bc91f3")

var boxBgColour = tcell.GetColor("#282a36")
var boxFgColour = tcell.GetColor("#526A9E")

var meterColour = tcell.GetColor("#E1FA8C")

var songStyle = tcell.StyleDefault.Background(backgroundColour).Bold(true).Foreground(songColour)
var sampleStyle = tcell.StyleDefault.Background(sampleBgColour).Foreground(sampleFgColour)
var sampleHighlightStyle = tcell.StyleDefault.Background(sampleHighlightBgColour).Foreground(sampleHighlightFgColour).Bold(true)

func drawBox(s tcell.Screen, x1, y1, x2, y2 int) {
	style := tcell.StyleDefault.Background(boxBgColour).Foreground(boxFgColour)

	for row := y1; row <= y2; row++ {
		for col := x1; col <= x2; col++ {
			s.SetContent(col, row, ' ', nil, style)
		}
	}

	for col := x1; col <= x2; col++ {
		s.SetContent(col, y1, '─', nil, style)
		s.SetContent(col, y2, '─', nil, style)
	}
	for row := y1 + 1; row < y2; row++ {
		s.SetContent(x1, row, tcell.RuneVLine, nil, style)
		s.SetContent(x2, row, tcell.RuneVLine, nil, style)
	}

	if y1 != y2 && x1 != x2 {
		s.SetContent(x1, y1, '╭', nil, style)
		s.SetContent(x2, y1, '╮', nil, style)
		s.SetContent(x1, y2, '╰', nil, style)
		s.SetContent(x2, y2, '╯', nil, style)
	}
}

func drawText(s tcell.Screen, x, y, width, height int, style tcell.Style, text string) {
	xPos := x
	yPos := y
	for _, r := range []rune(text) {
		s.SetContent(xPos, yPos, r, nil, style)
		xPos++
		if xPos > x+width {
			yPos++
			xPos = x
		}
		if yPos > y+height {
			return
		}
	}

	for yPos < y+height {
		for xPos < x+width {
			s.SetContent(xPos, yPos, ' ', nil, style)
			xPos++
		}
		yPos++
		xPos = x
	}
}

func drawSamples(s tcell.Screen, song *mod.Song, st mod.State) {
	xPos, yPos := 1, 1
	width, height := 27, 33

	drawBox(s, xPos, yPos, xPos+width, yPos+height)
	xPos++
	yPos++

	drawText(s, xPos, yPos, width-2, 1, songStyle, song.Title)
	yPos++

	playing := make(map[int]bool, len(st.Channels))
	for _, ch := range st.Channels {
		if ch.SampleNum > 0 && ch.State != mod.VoiceIdle {
			playing[ch.SampleNum-1] = true
		}
	}

	for idx, sample := range song.Samples {
		line := fmt.Sprintf("%02d %-20s", idx+1, sample.Name)
		if playing[idx] {
			drawText(s, xPos, yPos, width-2, 1, sampleHighlightStyle, line)
		} else {
			drawText(s, xPos, yPos, width-2, 1, sampleStyle, line)
		}
		yPos++
	}
}

var meterHistorySize = 8
var leftHistory = make([]float32, meterHistorySize)
var rightHistory = make([]float32, meterHistorySize)

func drawMeters(s tcell.Screen, st mod.State) {
	x, y := 1, 35
	width := 126
	drawBox(s, x, y, x+width, y+3)

	leftHistory = append(leftHistory[1:], st.LeftLevel)
	rightHistory = append(rightHistory[1:], st.RightLevel)

	var leftSum, rightSum float32
	for i := 0; i < meterHistorySize; i++ {
		leftSum += leftHistory[i]
		rightSum += rightHistory[i]
	}

	drawMeterBar(s, x+1, y+1, width-2, leftSum/float32(meterHistorySize))
	drawMeterBar(s, x+1, y+2, width-2, rightSum/float32(meterHistorySize))
}

var meterRunes = []string{"▏", "▎", "▍", "▌", "▋", "▊", "▉", "█"}

func drawMeterBar(s tcell.Screen, x, y, width int, level float32) {
	db := 20 * math.Log10(float64(level))
	if db > 0 {
		db = 0
	}
	if db < -96 {
		db = -96
	}

	style := tcell.StyleDefault.Background(backgroundColour).Foreground(meterColour)
	length := float32(width) * float32(96+db) / 96

	xPos := x
	for i := 0; i < int(length); i++ {
		drawText(s, xPos, y, 1, 1, style, meterRunes[7])
		xPos++
	}
	if remainder := length - float32(int(length)); remainder >= 0.125 {
		drawText(s, xPos, y, 1, 1, style, meterRunes[int(remainder*8)-1])
		xPos++
	}
	for xPos < x+width {
		drawText(s, xPos, y, 1, 1, style, " ")
		xPos++
	}
}

func drawPattern(s tcell.Screen, song *mod.Song, st mod.State) {
	x, y := 29, 1
	width, height := 98, 33
	drawBox(s, x, y, x+width, y+height)
	xPos := x + 1
	yPos := y + 1

	defaultStyle := tcell.StyleDefault.Background(backgroundColour).Foreground(sampleFgColour)
	highlightStyle := tcell.StyleDefault.Background(patternHighlightBgColour).Foreground(patternHighlightFgColour).Bold(true)

	numRows := 32
	var lineIdx int
	switch {
	case st.Row < 16:
		lineIdx = 0
	case st.Row > 48:
		lineIdx = 32
	default:
		lineIdx = st.Row - 16
	}

	pattern := song.Patterns[st.Pattern]

	for rowNum := 0; rowNum < numRows && lineIdx < len(pattern.Rows); rowNum++ {
		style := defaultStyle
		if lineIdx == st.Row {
			style = highlightStyle
		}

		row := pattern.Rows[lineIdx]
		drawText(s, xPos, yPos, width-2, 1, style, fmt.Sprintf("%02d.%02d", st.Order, lineIdx))
		xPos += 5

		for idx, note := range row {
			drawText(s, xPos, yPos, 1, 1, style, "│")
			xPos++
			noteStyle := style
			sampStyle := style
			effStyle := style
			if idx < len(st.Channels) && !st.Channels[idx].Muted {
				noteStyle = style.Foreground(patternNoteFgColour)
				sampStyle = style.Foreground(patternSampleFgColour)
				effStyle = style.Foreground(effectColour)
			}

			drawText(s, xPos, yPos, 4, 1, noteStyle, note.Name+" ")
			xPos += 4

			if note.SampleNumber > 0 {
				drawText(s, xPos, yPos, 3, 1, sampStyle, fmt.Sprintf("%02d", note.SampleNumber))
			} else {
				drawText(s, xPos, yPos, 3, 1, style, "..")
			}
			xPos += 3

			if note.EffectCode > 0 || note.EffectParam > 0 {
				drawText(s, xPos, yPos, 4, 1, effStyle, fmt.Sprintf("%x%02x", note.EffectCode, note.EffectParam))
			} else {
				drawText(s, xPos, yPos, 4, 1, style, "...")
			}
			xPos += 4
		}
		lineIdx++
		xPos = x + 1
		yPos++
	}
}

func drawStatusLine(s tcell.Screen, song *mod.Song, st mod.State, paused bool) {
	defStyle := tcell.StyleDefault.Background(backgroundColour)
	labelStyle := defStyle.Foreground(sampleFgColour).Bold(true)
	valueStyle := defStyle.Foreground(effectColour)

	xPos, yPos := 2, 0
	drawText(s, xPos, yPos, 1, 1, labelStyle.Underline(true), "M")
	xPos++
	drawText(s, xPos, yPos, 12, 1, labelStyle, "ixing mode:")
	xPos += 12
	drawText(s, xPos, yPos, 8, 1, valueStyle, st.Mixing.String())
	xPos += 8

	drawText(s, xPos, yPos, 7, 1, labelStyle, "Speed:")
	xPos += 7
	drawText(s, xPos, yPos, 8, 1, valueStyle, fmt.Sprintf("%d/%d", st.Speed, st.Tempo))
	xPos += 8

	drawText(s, xPos, yPos, 10, 1, labelStyle, "Position:")
	xPos += 10
	drawText(s, xPos, yPos, 8, 1, valueStyle, fmt.Sprintf("%d/%d", st.Order, len(song.Orders)))
	xPos += 8

	drawText(s, xPos, yPos, 8, 1, labelStyle, "Format:")
	xPos += 8
	tag := song.Format.Tag
	if tag == "" {
		tag = "ST15"
	}
	drawText(s, xPos, yPos, 6, 1, defStyle.Foreground(patternSampleFgColour), tag)
	xPos += 6

	status := "playing"
	switch {
	case paused:
		status = "paused"
	case st.Finished:
		status = "finished"
	}
	drawText(s, xPos, yPos, 10, 1, valueStyle, status)
}
