package transition

// Package transition interpolates between two chart views the way the
// browser animates an axis switch: circles glide to their new centres
// while each axis scale slides from the old domain to the new one.

import (
	"errors"
	"math"

	"health-scatter/internal/chart"
	"health-scatter/internal/scale"
)

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

func Linear(t float64) float64 { return t }

// CubicInOut is the default easing of browser-side chart transitions.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

var ErrMismatchedViews = errors.New("views were built from different datasets")

type Tween struct {
	From, To chart.View
	Ease     Easing
}

// New pairs two views of the same dataset.
func New(from, to chart.View, ease Easing) (*Tween, error) {
	if len(from.Points) != len(to.Points) {
		return nil, ErrMismatchedViews
	}
	for i := range from.Points {
		if from.Points[i].Abbr != to.Points[i].Abbr {
			return nil, ErrMismatchedViews
		}
	}
	if ease == nil {
		ease = CubicInOut
	}
	return &Tween{From: from, To: to, Ease: ease}, nil
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

// At returns the view at progress t, clamped to [0,1]. Labels, tooltips
// and the selection are already those of the target view.
func (tw *Tween) At(t float64) chart.View {
	t = math.Max(0, math.Min(1, t))
	if t == 1 {
		return tw.To
	}
	e := tw.Ease(t)

	v := tw.To
	v.Points = make([]chart.Point, len(tw.To.Points))
	for i, p := range tw.To.Points {
		from := tw.From.Points[i]
		p.CX = lerp(from.CX, p.CX, e)
		p.CY = lerp(from.CY, p.CY, e)
		v.Points[i] = p
	}
	v.XAxis = tweenAxis(tw.From.XAxis, tw.To.XAxis, e)
	v.YAxis = tweenAxis(tw.From.YAxis, tw.To.YAxis, e)
	return v
}

// tweenAxis slides the scale domain and places the target ticks on the
// intermediate scale, dropping those that fall outside the range.
func tweenAxis(from, to chart.AxisView, e float64) chart.AxisView {
	s := scale.Linear{
		Domain: [2]float64{
			lerp(from.Scale.Domain[0], to.Scale.Domain[0], e),
			lerp(from.Scale.Domain[1], to.Scale.Domain[1], e),
		},
		Range: to.Scale.Range,
	}
	lo, hi := math.Min(s.Range[0], s.Range[1]), math.Max(s.Range[0], s.Range[1])

	out := to
	out.Scale = s
	out.Ticks = make([]chart.Tick, 0, len(to.Ticks))
	for _, tk := range to.Ticks {
		tk.Pos = s.Apply(tk.Value)
		if tk.Pos >= lo-0.5 && tk.Pos <= hi+0.5 {
			out.Ticks = append(out.Ticks, tk)
		}
	}
	return out
}

// Frames samples n+1 evenly spaced views, both ends included.
func (tw *Tween) Frames(n int) []chart.View {
	if n < 1 {
		n = 1
	}
	frames := make([]chart.View, n+1)
	for i := 0; i <= n; i++ {
		frames[i] = tw.At(float64(i) / float64(n))
	}
	return frames
}
