package chart

import (
	"fmt"

	"health-scatter/internal/dataset"
)

// Axis identifies the horizontal or vertical axis.
type Axis string

const (
	X Axis = "x"
	Y Axis = "y"
)

// ParseAxis accepts "x" or "y".
func ParseAxis(s string) (Axis, error) {
	switch Axis(s) {
	case X, Y:
		return Axis(s), nil
	}
	return "", fmt.Errorf("unknown axis %q", s)
}

var ErrUnknownVariable = dataset.ErrUnknownVariable

// Options lists the variables each axis offers, in label order.
var Options = map[Axis][]dataset.Variable{
	X: {dataset.Poverty, dataset.Age, dataset.Income},
	Y: {dataset.Obesity, dataset.Smokes, dataset.Healthcare},
}

// Selection is the pair of variables currently driving the axes.
type Selection struct {
	X dataset.Variable `json:"x"`
	Y dataset.Variable `json:"y"`
}

func DefaultSelection() Selection {
	return Selection{X: dataset.Poverty, Y: dataset.Obesity}
}

// Get returns the variable selected on axis.
func (s Selection) Get(axis Axis) dataset.Variable {
	if axis == Y {
		return s.Y
	}
	return s.X
}

// Offers reports whether v can be chosen on axis.
func Offers(axis Axis, v dataset.Variable) bool {
	for _, o := range Options[axis] {
		if o == v {
			return true
		}
	}
	return false
}

// Choose switches axis to v. Choosing the active variable is a no-op.
func (s Selection) Choose(axis Axis, v dataset.Variable) (Selection, bool, error) {
	if !Offers(axis, v) {
		return s, false, fmt.Errorf("%w %q on %s axis", ErrUnknownVariable, v, axis)
	}
	if s.Get(axis) == v {
		return s, false, nil
	}
	if axis == X {
		s.X = v
	} else {
		s.Y = v
	}
	return s, true, nil
}

// ParseSelection builds a selection from raw x/y keys; empty keys keep the defaults.
func ParseSelection(x, y string) (Selection, error) {
	return DefaultSelection().With(x, y)
}

// With applies raw x/y keys on top of s; an empty key keeps that axis.
func (s Selection) With(x, y string) (Selection, error) {
	var err error
	if x != "" {
		if s, _, err = s.Choose(X, dataset.Variable(x)); err != nil {
			return Selection{}, err
		}
	}
	if y != "" {
		if s, _, err = s.Choose(Y, dataset.Variable(y)); err != nil {
			return Selection{}, err
		}
	}
	return s, nil
}

// Label is one clickable axis title.
type Label struct {
	Axis   Axis             `json:"axis"`
	Value  dataset.Variable `json:"value"`
	Text   string           `json:"text"`
	Offset float64          `json:"offset"` // px below the x axis, or left of the y axis
	Active bool             `json:"active"`
}

// Class is the CSS class the label carries.
func (l Label) Class() string {
	if l.Active {
		return "active"
	}
	return "inactive"
}

// Labels returns the labels of axis in display order; exactly one is active.
func Labels(axis Axis, sel Selection) []Label {
	opts := Options[axis]
	out := make([]Label, len(opts))
	chosen := sel.Get(axis)
	for i, v := range opts {
		offset := float64(20 * (i + 1))
		if axis == Y {
			offset = float64(80 - 20*i)
		}
		out[i] = Label{
			Axis:   axis,
			Value:  v,
			Text:   v.Label(),
			Offset: offset,
			Active: v == chosen,
		}
	}
	return out
}
