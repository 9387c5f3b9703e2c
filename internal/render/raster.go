package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/colornames"

	"health-scatter/internal/chart"
)

const (
	tickSize      = 6.0
	tickFontSize  = 10.0
	labelFontSize = 13.0
)

var (
	axisColor     = color.RGBA{0x33, 0x33, 0x33, 0xff}
	activeColor   = color.Black
	inactiveColor = color.RGBA{0xaa, 0xaa, 0xaa, 0xff}
	abbrColor     = color.White
)

// Raster draws views into RGBA images with gg.
type Raster struct {
	Fonts *Fonts
}

func NewRaster(fonts *Fonts) *Raster {
	if fonts == nil {
		fonts = LoadFonts(nil)
	}
	return &Raster{Fonts: fonts}
}

// Draw renders v at its layout size.
func (r *Raster) Draw(v chart.View) (image.Image, error) {
	l := v.Layout
	fill, err := ParseColor(l.Fill, l.Opacity)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(int(math.Round(l.Width)), int(math.Round(l.Height)))
	dc.SetColor(color.White)
	dc.Clear()

	w, h := l.InnerWidth(), l.InnerHeight()
	dc.Push()
	dc.Translate(l.Margin.Left, l.Margin.Top)

	r.drawAxes(dc, v, w, h)

	dc.SetColor(fill)
	for _, p := range v.Points {
		dc.DrawCircle(p.CX, p.CY, l.Radius)
		dc.Fill()
	}

	dc.SetFontFace(r.Fonts.Face(math.Max(6, l.Radius*0.55), true))
	dc.SetColor(abbrColor)
	for _, p := range v.Points {
		dc.DrawStringAnchored(p.Abbr, p.CX, p.CY, 0.5, 0.35)
	}

	r.drawLabels(dc, v, w, h)
	dc.Pop()
	return dc.Image(), nil
}

func (r *Raster) drawAxes(dc *gg.Context, v chart.View, w, h float64) {
	dc.SetColor(axisColor)
	dc.SetLineWidth(1)
	dc.DrawLine(0, h, w, h)
	dc.DrawLine(0, 0, 0, h)
	dc.Stroke()

	dc.SetFontFace(r.Fonts.Face(tickFontSize, false))
	for _, tk := range v.XAxis.Ticks {
		dc.DrawLine(tk.Pos, h, tk.Pos, h+tickSize)
		dc.Stroke()
		dc.DrawStringAnchored(tk.Text, tk.Pos, h+tickSize+3, 0.5, 1)
	}
	for _, tk := range v.YAxis.Ticks {
		dc.DrawLine(-tickSize, tk.Pos, 0, tk.Pos)
		dc.Stroke()
		dc.DrawStringAnchored(tk.Text, -tickSize-3, tk.Pos, 1, 0.35)
	}
}

func (r *Raster) drawLabels(dc *gg.Context, v chart.View, w, h float64) {
	for _, lb := range v.XAxis.Labels {
		r.setLabelStyle(dc, lb.Active)
		dc.DrawStringAnchored(lb.Text, w/2, h+20+lb.Offset, 0.5, 0)
	}
	for _, lb := range v.YAxis.Labels {
		r.setLabelStyle(dc, lb.Active)
		dc.Push()
		dc.Translate(-lb.Offset, h/2)
		dc.Rotate(-math.Pi / 2)
		dc.DrawStringAnchored(lb.Text, 0, 0, 0.5, 0)
		dc.Pop()
	}
}

func (r *Raster) setLabelStyle(dc *gg.Context, active bool) {
	dc.SetFontFace(r.Fonts.Face(labelFontSize, active))
	if active {
		dc.SetColor(activeColor)
		return
	}
	dc.SetColor(inactiveColor)
}

// WritePNG encodes v as PNG.
func (r *Raster) WritePNG(w io.Writer, v chart.View) error {
	img, err := r.Draw(v)
	if err != nil {
		return err
	}
	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// ParseColor accepts an SVG colour name or #rgb/#rrggbb and applies opacity.
func ParseColor(s string, opacity float64) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	var c color.RGBA
	if named, ok := colornames.Map[s]; ok {
		c = named
	} else if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return nil, fmt.Errorf("invalid colour %q", s)
		}
		c = color.RGBA{uint8(n >> 16), uint8(n >> 8), uint8(n), 0xff}
	} else {
		return nil, fmt.Errorf("invalid colour %q", s)
	}

	opacity = math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Round(opacity * 255))}, nil
}
