package render

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"health-scatter/internal/chart"
)

// Formats understood by Vector.
var vectorFormats = map[string]bool{"svg": true, "pdf": true, "eps": true, "png": true, "jpg": true, "tiff": true}

// Vector renders views with gonum/plot.
type Vector struct{}

// Plot builds a gonum plot of v: one circle glyph and state label per row,
// axes limited to the padded domains and ticked where the view ticks.
func (Vector) Plot(v chart.View) (*plot.Plot, error) {
	fill, err := ParseColor(v.Layout.Fill, v.Layout.Opacity)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s", v.Selection.Y.Label(), v.Selection.X.Label())
	p.X.Label.Text = v.Selection.X.Label()
	p.Y.Label.Text = v.Selection.Y.Label()
	p.X.Min, p.X.Max = v.XAxis.Scale.Domain[0], v.XAxis.Scale.Domain[1]
	p.Y.Min, p.Y.Max = v.YAxis.Scale.Domain[0], v.YAxis.Scale.Domain[1]
	p.X.Tick.Marker = constantTicks(v.XAxis.Ticks)
	p.Y.Tick.Marker = constantTicks(v.YAxis.Ticks)

	pts := make(plotter.XYs, len(v.Points))
	names := make([]string, len(v.Points))
	for i, pt := range v.Points {
		pts[i].X = pt.X
		pts[i].Y = pt.Y
		names[i] = pt.Abbr
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("failed to build scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(v.Layout.Radius * 0.5)
	scatter.GlyphStyle.Color = fill
	p.Add(scatter)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: names})
	if err != nil {
		return nil, fmt.Errorf("failed to build labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = color.Black
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	p.Add(labels)

	return p, nil
}

func constantTicks(ticks []chart.Tick) plot.ConstantTicks {
	out := make(plot.ConstantTicks, len(ticks))
	for i, tk := range ticks {
		out[i] = plot.Tick{Value: tk.Value, Label: tk.Text}
	}
	return out
}

func (vr Vector) size(v chart.View) (vg.Length, vg.Length) {
	// one SVG px is 0.75pt
	return vg.Points(v.Layout.Width * 0.75), vg.Points(v.Layout.Height * 0.75)
}

// WriteTo encodes v in format (svg, pdf, eps, png, jpg, tiff).
func (vr Vector) WriteTo(w io.Writer, v chart.View, format string) error {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if !vectorFormats[format] {
		return fmt.Errorf("unsupported format %q", format)
	}
	p, err := vr.Plot(v)
	if err != nil {
		return err
	}
	width, height := vr.size(v)
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", format, err)
	}
	return nil
}

// Save writes v to path; the extension picks the format.
func (vr Vector) Save(path string, v chart.View) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !vectorFormats[format] {
		return fmt.Errorf("unsupported format %q", format)
	}
	p, err := vr.Plot(v)
	if err != nil {
		return err
	}
	width, height := vr.size(v)
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
