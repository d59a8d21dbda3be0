package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cleanviz/internal/analysis"
)

// heatmap layout in pixels
const (
	heatmapMargin      = 16
	heatmapTitleH      = 32
	heatmapColorbarW   = 18
	heatmapColorbarGap = 24
	heatmapTickW       = 48
	heatmapMaxLabel    = 16
	heatmapMinAnnot    = 28
)

var (
	coolEnd  = color.RGBA{R: 59, G: 76, B: 192, A: 255}
	neutral  = color.RGBA{R: 221, G: 221, B: 221, A: 255}
	warmEnd  = color.RGBA{R: 180, G: 4, B: 38, A: 255}
	nanColor = color.RGBA{R: 245, G: 245, B: 245, A: 255}
	ink      = color.RGBA{R: 34, G: 34, B: 34, A: 255}
)

// Heatmap renders the correlation matrix as an annotated grid on a diverging
// scale fixed to [-1, 1] and centered at zero. Cells too small to hold a
// label are drawn without annotation.
func (r *Renderer) Heatmap(m analysis.CorrelationMatrix) ([]byte, error) {
	n := len(m.Columns)
	if n == 0 {
		return nil, fmt.Errorf("%w: no numeric columns", ErrNoPoints)
	}

	face := basicfont.Face7x13
	charW := face.Advance
	lineH := face.Height

	labels := make([]string, n)
	labelW := 0
	for i, name := range m.Columns {
		labels[i] = truncate(name, heatmapMaxLabel)
		labelW = max(labelW, textWidth(labels[i]))
	}

	width, height := r.opts.Width, r.opts.Height
	gridLeft := heatmapMargin + labelW + 8
	gridTop := heatmapMargin + heatmapTitleH
	availW := width - gridLeft - heatmapColorbarGap - heatmapColorbarW - heatmapTickW - heatmapMargin
	availH := height - gridTop - heatmapMargin - lineH - 8
	cell := max(min(availW, availH)/n, 1)
	grid := cell * n

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	title := "Correlation Heatmap"
	drawText(img, title, (width-textWidth(title))/2, heatmapMargin+lineH, ink)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.Values[i][j]
			rect := image.Rect(gridLeft+j*cell, gridTop+i*cell, gridLeft+(j+1)*cell, gridTop+(i+1)*cell)
			draw.Draw(img, rect, image.NewUniform(divergingColor(v)), image.Point{}, draw.Src)

			if cell < heatmapMinAnnot {
				continue
			}
			text := "nan"
			if !math.IsNaN(v) {
				text = fmt.Sprintf("%.2f", v)
			}
			col := ink
			if math.Abs(v) > 0.6 {
				col = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			tx := rect.Min.X + (cell-textWidth(text))/2
			ty := rect.Min.Y + (cell+face.Ascent)/2
			drawText(img, text, tx, ty, col)
		}
	}

	// row labels right-aligned against the grid, column labels centered below
	perCell := max(cell/charW, 1)
	for i, label := range labels {
		y := gridTop + i*cell + (cell+face.Ascent)/2
		drawText(img, label, gridLeft-8-textWidth(label), y, ink)

		below := truncate(label, perCell)
		x := gridLeft + i*cell + (cell-textWidth(below))/2
		drawText(img, below, x, gridTop+grid+lineH+2, ink)
	}

	drawColorbar(img, gridLeft+grid+heatmapColorbarGap, gridTop, grid)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return buf.Bytes(), nil
}

// drawColorbar paints the scale from +1 at the top to -1 at the bottom with
// ticks at both ends and zero.
func drawColorbar(img *image.RGBA, x, y, h int) {
	if h < 2 {
		return
	}
	for row := 0; row < h; row++ {
		v := 1 - 2*float64(row)/float64(h-1)
		line := image.Rect(x, y+row, x+heatmapColorbarW, y+row+1)
		draw.Draw(img, line, image.NewUniform(divergingColor(v)), image.Point{}, draw.Src)
	}
	ascent := basicfont.Face7x13.Ascent
	tx := x + heatmapColorbarW + 4
	drawText(img, "1.00", tx, y+ascent, ink)
	drawText(img, "0.00", tx, y+h/2+ascent/2, ink)
	drawText(img, "-1.00", tx, y+h, ink)
}

// divergingColor maps [-1, 1] onto blue, neutral grey and red.
func divergingColor(v float64) color.RGBA {
	if math.IsNaN(v) {
		return nanColor
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerp(neutral, coolEnd, -v)
	}
	return lerp(neutral, warmEnd, v)
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

func drawText(img *image.RGBA, s string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func textWidth(s string) int {
	return utf8.RuneCountInString(s) * basicfont.Face7x13.Advance
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "~"
}
