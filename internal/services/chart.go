package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"sort"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var chartPalette = []color.NRGBA{
	{R: 0x2c, G: 0x3e, B: 0x50, A: 0xff},
	{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff},
	{R: 0xf3, G: 0x9c, B: 0x12, A: 0xff},
	{R: 0x27, G: 0xae, B: 0x60, A: 0xff},
	{R: 0x29, G: 0x80, B: 0xb9, A: 0xff},
}

// renderPriorityChart draws a bar chart of record counts per priority and
// returns it as PNG bytes. fontPath is optional; without it the built-in
// bitmap face is used.
func renderPriorityChart(counts map[string]int, fontPath string) ([]byte, error) {
	const (
		width   = 640
		height  = 360
		marginX = 50.0
		marginY = 40.0
	)

	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	maxCount := 1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	face, err := chartFontFace(fontPath, 13)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	plotW := float64(width) - 2*marginX
	plotH := float64(height) - 2*marginY
	baseline := float64(height) - marginY

	dc.SetColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})
	dc.SetLineWidth(1)
	dc.DrawLine(marginX, baseline, float64(width)-marginX, baseline)
	dc.DrawLine(marginX, marginY, marginX, baseline)
	dc.Stroke()

	if len(labels) == 0 {
		dc.DrawStringAnchored("no data", float64(width)/2, float64(height)/2, 0.5, 0.5)
	}

	slot := plotW / float64(max(len(labels), 1))
	barW := slot * 0.6
	for i, label := range labels {
		count := counts[label]
		h := plotH * float64(count) / float64(maxCount)
		x := marginX + float64(i)*slot + (slot-barW)/2
		y := baseline - h

		dc.SetColor(chartPalette[i%len(chartPalette)])
		dc.DrawRectangle(x, y, barW, h)
		dc.Fill()

		dc.SetColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff})
		dc.DrawStringAnchored(label, x+barW/2, baseline+14, 0.5, 0.5)
		dc.DrawStringAnchored(fmt.Sprintf("%d", count), x+barW/2, y-10, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode chart png: %w", err)
	}
	return buf.Bytes(), nil
}

func chartFontFace(fontPath string, size float64) (font.Face, error) {
	if fontPath == "" {
		return basicfont.Face7x13, nil
	}
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
