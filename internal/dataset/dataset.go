package dataset

// Package dataset holds the per-state survey table the chart is drawn from.
// The table is loaded once and never mutated.

import (
	"errors"
	"fmt"
	"math"
)

// Variable is the CSV column key of a plottable measure.
type Variable string

const (
	Poverty    Variable = "poverty"
	Age        Variable = "age"
	Income     Variable = "income"
	Obesity    Variable = "obesity"
	Smokes     Variable = "smokes"
	Healthcare Variable = "healthcare"
)

// Variables lists every plottable measure in column order.
var Variables = []Variable{Poverty, Age, Income, Obesity, Smokes, Healthcare}

var labels = map[Variable][2]string{
	Poverty:    {"In Poverty (%)", "Poverty (%)"},
	Age:        {"Age (Median)", "Age"},
	Income:     {"Household Income (Median)", "Income"},
	Obesity:    {"Obese (%)", "Obesity (%)"},
	Smokes:     {"Smokes (%)", "Smokes (%)"},
	Healthcare: {"Lacks Healthcare (%)", "Healthcare (%)"},
}

var ErrUnknownVariable = errors.New("unknown variable")

// ParseVariable validates a column key.
func ParseVariable(s string) (Variable, error) {
	v := Variable(s)
	if _, ok := labels[v]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariable, s)
	}
	return v, nil
}

// Label is the axis label text.
func (v Variable) Label() string { return labels[v][0] }

// Caption is the short name used in tooltips.
func (v Variable) Caption() string { return labels[v][1] }

// Row is one US state.
type Row struct {
	State      string  `json:"state"`
	Abbr       string  `json:"abbr"`
	Poverty    float64 `json:"poverty"`
	Age        float64 `json:"age"`
	Income     float64 `json:"income"`
	Obesity    float64 `json:"obesity"`
	Smokes     float64 `json:"smokes"`
	Healthcare float64 `json:"healthcare"`
}

// Value returns the row's value for v. Unknown variables yield NaN.
func (r Row) Value(v Variable) float64 {
	switch v {
	case Poverty:
		return r.Poverty
	case Age:
		return r.Age
	case Income:
		return r.Income
	case Obesity:
		return r.Obesity
	case Smokes:
		return r.Smokes
	case Healthcare:
		return r.Healthcare
	}
	return math.NaN()
}

func (r *Row) set(v Variable, f float64) {
	switch v {
	case Poverty:
		r.Poverty = f
	case Age:
		r.Age = f
	case Income:
		r.Income = f
	case Obesity:
		r.Obesity = f
	case Smokes:
		r.Smokes = f
	case Healthcare:
		r.Healthcare = f
	}
}

// Dataset is an ordered, read-only set of rows.
type Dataset struct {
	rows []Row
}

// New copies rows into a Dataset.
func New(rows []Row) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &Dataset{rows: cp}, nil
}

func (d *Dataset) Len() int { return len(d.rows) }

// Row returns the i-th row in file order.
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// Rows returns a copy of all rows.
func (d *Dataset) Rows() []Row {
	cp := make([]Row, len(d.rows))
	copy(cp, d.rows)
	return cp
}

// Values returns one column in row order.
func (d *Dataset) Values(v Variable) []float64 {
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.Value(v)
	}
	return out
}

// Extent returns the smallest and largest value of v.
func (d *Dataset) Extent(v Variable) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, r := range d.rows {
		x := r.Value(v)
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return min, max
}
