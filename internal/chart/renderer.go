// Package chart renders a price series with indicator overlays into a PNG.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"BistSentinel/internal/model"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("chart: empty series")

// Panel selects where an overlay is drawn.
type Panel int

const (
	// PanelPrice shares the candlestick axis.
	PanelPrice Panel = iota
	// PanelLower gets its own axis below the candles (oscillators).
	PanelLower
)

// Overlay is one indicator line aligned 1:1 with the series bars. NaN entries
// leave a gap.
type Overlay struct {
	Name   string
	Values []float64
	Color  color.RGBA
	Panel  Panel
}

// Renderer produces an encoded image of a series and its overlays.
type Renderer interface {
	Render(series model.PriceSeries, overlays []Overlay, title string) ([]byte, error)
}

// Palette colours in the TradingView dark style.
var (
	ColorUp     = color.RGBA{0x08, 0x99, 0x81, 0xff}
	ColorDown   = color.RGBA{0xF2, 0x36, 0x45, 0xff}
	ColorBlue   = color.RGBA{0x29, 0x62, 0xFF, 0xff}
	ColorOrange = color.RGBA{0xFF, 0x98, 0x00, 0xff}
	ColorPurple = color.RGBA{0x9C, 0x27, 0xB0, 0xff}
	ColorGrey   = color.RGBA{0x78, 0x7B, 0x86, 0xff}
	colorBG     = color.RGBA{0x13, 0x17, 0x22, 0xff}
	colorGrid   = color.RGBA{0x2A, 0x2E, 0x39, 0xff}
	colorText   = color.RGBA{0xD1, 0xD4, 0xDC, 0xff}
)

// PNGRenderer draws candlesticks and overlay lines onto an RGBA canvas.
type PNGRenderer struct {
	Width  int
	Height int
}

// NewPNGRenderer creates a renderer with a 1200x700 canvas.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 1200, Height: 700}
}

const (
	marginTop    = 28
	marginBottom = 10
	marginLeft   = 10
	marginRight  = 70
	panelGap     = 12
)

// Render implements Renderer.
func (r *PNGRenderer) Render(series model.PriceSeries, overlays []Overlay, title string) ([]byte, error) {
	n := series.Len()
	if n == 0 {
		return nil, ErrEmptySeries
	}
	hasLower := false
	for _, o := range overlays {
		if len(o.Values) != n {
			return nil, fmt.Errorf("chart: overlay %s has %d values for %d bars", o.Name, len(o.Values), n)
		}
		if o.Panel == PanelLower {
			hasLower = true
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{colorBG}, image.Point{}, draw.Src)

	plotW := r.Width - marginLeft - marginRight
	plotH := r.Height - marginTop - marginBottom
	priceRect := image.Rect(marginLeft, marginTop, marginLeft+plotW, marginTop+plotH)
	var lowerRect image.Rectangle
	if hasLower {
		split := marginTop + plotH*7/10
		priceRect.Max.Y = split
		lowerRect = image.Rect(marginLeft, split+panelGap, marginLeft+plotW, marginTop+plotH)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range series.Bars {
		lo, hi = math.Min(lo, b.Low), math.Max(hi, b.High)
	}
	lo, hi = extend(overlays, PanelPrice, lo, hi)
	priceAxis := newAxis(priceRect, lo, hi)
	drawGrid(img, priceAxis)

	slot := float64(plotW) / float64(n)
	x := func(i int) int { return marginLeft + int(slot*float64(i)+slot/2) }
	bodyW := int(slot * 0.7)
	if bodyW < 1 {
		bodyW = 1
	}

	for i, b := range series.Bars {
		col := ColorUp
		if b.Close < b.Open {
			col = ColorDown
		}
		cx := x(i)
		vline(img, cx, priceAxis.y(b.High), priceAxis.y(b.Low), col)
		top, bot := priceAxis.y(math.Max(b.Open, b.Close)), priceAxis.y(math.Min(b.Open, b.Close))
		if bot == top {
			bot++
		}
		fill(img, image.Rect(cx-bodyW/2, top, cx-bodyW/2+bodyW, bot), col)
	}

	if hasLower {
		llo, lhi := extend(overlays, PanelLower, math.Inf(1), math.Inf(-1))
		lowerAxis := newAxis(lowerRect, llo, lhi)
		drawGrid(img, lowerAxis)
		drawOverlays(img, overlays, PanelLower, lowerAxis, x)
	}
	drawOverlays(img, overlays, PanelPrice, priceAxis, x)

	label(img, marginLeft, 18, title)
	label(img, marginLeft+plotW+6, priceAxis.y(series.Last().Close)+4, fmt.Sprintf("%.2f", series.Last().Close))

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type axis struct {
	rect   image.Rectangle
	lo, hi float64
}

func newAxis(rect image.Rectangle, lo, hi float64) axis {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	return axis{rect: rect, lo: lo - pad, hi: hi + pad}
}

func (a axis) y(v float64) int {
	frac := (v - a.lo) / (a.hi - a.lo)
	return a.rect.Max.Y - int(frac*float64(a.rect.Dy()))
}

func extend(overlays []Overlay, p Panel, lo, hi float64) (float64, float64) {
	for _, o := range overlays {
		if o.Panel != p {
			continue
		}
		for _, v := range o.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi
}

func drawGrid(img *image.RGBA, a axis) {
	for k := 0; k <= 4; k++ {
		y := a.rect.Min.Y + a.rect.Dy()*k/4
		for x := a.rect.Min.X; x < a.rect.Max.X; x += 4 {
			img.SetRGBA(x, y, colorGrid)
		}
		v := a.hi - (a.hi-a.lo)*float64(k)/4
		label(img, a.rect.Max.X+6, y+4, fmt.Sprintf("%.2f", v))
	}
}

func drawOverlays(img *image.RGBA, overlays []Overlay, p Panel, a axis, x func(int) int) {
	for _, o := range overlays {
		if o.Panel != p {
			continue
		}
		prev := -1
		for i, v := range o.Values {
			if math.IsNaN(v) {
				prev = -1
				continue
			}
			if prev >= 0 {
				x0, y0, x1, y1 := x(prev), a.y(o.Values[prev]), x(i), a.y(v)
				line(img, x0, y0, x1, y1, o.Color)
				line(img, x0, y0+1, x1, y1+1, o.Color)
			}
			prev = i
		}
	}
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r, &image.Uniform{c}, image.Point{}, draw.Src)
}

func vline(img *image.RGBA, x, y0, y1 int, c color.RGBA) {
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, c)
	}
}

// line draws with Bresenham's algorithm.
func line(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func label(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(colorText),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
