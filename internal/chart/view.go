package chart

import (
	"fmt"
	"strconv"

	"health-scatter/internal/dataset"
	"health-scatter/internal/scale"
)

// Tick is one positioned axis tick. Pos is relative to the plotting area.
type Tick struct {
	Value float64 `json:"value"`
	Pos   float64 `json:"pos"`
	Text  string  `json:"text"`
}

type AxisView struct {
	Axis     Axis             `json:"axis"`
	Variable dataset.Variable `json:"variable"`
	Scale    scale.Linear     `json:"scale"`
	Ticks    []Tick           `json:"ticks"`
	Labels   []Label          `json:"labels"`
}

// Point is one circle. CX and CY are relative to the plotting area.
type Point struct {
	State   string   `json:"state"`
	Abbr    string   `json:"abbr"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	CX      float64  `json:"cx"`
	CY      float64  `json:"cy"`
	Tooltip []string `json:"tooltip"`
}

// View is everything needed to draw one selection.
type View struct {
	Selection Selection `json:"selection"`
	Layout    Layout    `json:"layout"`
	XAxis     AxisView  `json:"x_axis"`
	YAxis     AxisView  `json:"y_axis"`
	Points    []Point   `json:"points"`
}

// Scale builds the padded linear scale of v for axis.
func Scale(ds *dataset.Dataset, v dataset.Variable, axis Axis, layout Layout) scale.Linear {
	lo, hi := scale.PaddedDomain(ds.Extent(v))
	if axis == Y {
		return scale.NewLinear(lo, hi, layout.InnerHeight(), 0)
	}
	return scale.NewLinear(lo, hi, 0, layout.InnerWidth())
}

func buildAxis(ds *dataset.Dataset, sel Selection, axis Axis, layout Layout) AxisView {
	v := sel.Get(axis)
	s := Scale(ds, v, axis, layout)
	step := s.TickStep(layout.Ticks)

	values := s.Ticks(layout.Ticks)
	ticks := make([]Tick, len(values))
	for i, tv := range values {
		ticks[i] = Tick{Value: tv, Pos: s.Apply(tv), Text: scale.TickFormat(tv, step)}
	}
	return AxisView{
		Axis:     axis,
		Variable: v,
		Scale:    s,
		Ticks:    ticks,
		Labels:   Labels(axis, sel),
	}
}

// Build computes the view of ds for sel.
func Build(ds *dataset.Dataset, sel Selection, layout Layout) (View, error) {
	if !Offers(X, sel.X) {
		return View{}, fmt.Errorf("%w %q on x axis", ErrUnknownVariable, sel.X)
	}
	if !Offers(Y, sel.Y) {
		return View{}, fmt.Errorf("%w %q on y axis", ErrUnknownVariable, sel.Y)
	}
	if layout.InnerWidth() <= 0 || layout.InnerHeight() <= 0 {
		return View{}, fmt.Errorf("layout %gx%g leaves no room inside the margins", layout.Width, layout.Height)
	}

	xa := buildAxis(ds, sel, X, layout)
	ya := buildAxis(ds, sel, Y, layout)

	points := make([]Point, ds.Len())
	for i := range points {
		r := ds.Row(i)
		xv, yv := r.Value(sel.X), r.Value(sel.Y)
		points[i] = Point{
			State:   r.State,
			Abbr:    r.Abbr,
			X:       xv,
			Y:       yv,
			CX:      xa.Scale.Apply(xv),
			CY:      ya.Scale.Apply(yv),
			Tooltip: Tooltip(r, sel),
		}
	}

	return View{
		Selection: sel,
		Layout:    layout,
		XAxis:     xa,
		YAxis:     ya,
		Points:    points,
	}, nil
}

// Tooltip returns the hover lines for r: state name, then the selected values.
func Tooltip(r dataset.Row, sel Selection) []string {
	return []string{
		r.State,
		sel.X.Caption() + ": " + formatValue(r.Value(sel.X)),
		sel.Y.Caption() + ": " + formatValue(r.Value(sel.Y)),
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
