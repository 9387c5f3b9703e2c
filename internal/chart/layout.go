package chart

import "time"

// Margins around the plotting area, in px.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Layout controls the geometry and styling of the chart.
type Layout struct {
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Margin     Margins       `json:"margin"`
	Radius     float64       `json:"radius"`
	Fill       string        `json:"fill"`
	Opacity    float64       `json:"opacity"`
	Ticks      int           `json:"ticks"`
	Transition time.Duration `json:"-"`
}

func DefaultLayout() Layout {
	return Layout{
		Width:      960,
		Height:     500,
		Margin:     Margins{Top: 20, Right: 40, Bottom: 80, Left: 100},
		Radius:     20,
		Fill:       "pink",
		Opacity:    0.5,
		Ticks:      10,
		Transition: time.Second,
	}
}

// InnerWidth is the width of the plotting area.
func (l Layout) InnerWidth() float64 { return l.Width - l.Margin.Left - l.Margin.Right }

// InnerHeight is the height of the plotting area.
func (l Layout) InnerHeight() float64 { return l.Height - l.Margin.Top - l.Margin.Bottom }

// TransitionMs is Transition in whole milliseconds.
func (l Layout) TransitionMs() int64 { return l.Transition.Milliseconds() }
