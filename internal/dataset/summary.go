package dataset

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes one column.
type Stats struct {
	Variable Variable `json:"variable"`
	Count    int      `json:"count"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Mean     float64  `json:"mean"`
	Median   float64  `json:"median"`
	StdDev   float64  `json:"std_dev"`
}

// Summary returns Stats for every variable, in Variables order.
func (d *Dataset) Summary() []Stats {
	out := make([]Stats, 0, len(Variables))
	for _, v := range Variables {
		xs := d.Values(v)
		sorted := append([]float64(nil), xs...)
		sort.Float64s(sorted)

		s := Stats{
			Variable: v,
			Count:    len(xs),
			Min:      floats.Min(xs),
			Max:      floats.Max(xs),
			Mean:     stat.Mean(xs, nil),
			Median:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		}
		if len(xs) > 1 {
			s.StdDev = stat.StdDev(xs, nil)
		}
		out = append(out, s)
	}
	return out
}
