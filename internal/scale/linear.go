package scale

// Package scale maps data values to pixel positions and picks round axis ticks.

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// Padding applied to the data extent on each side of the domain.
	LowerPad = 0.8
	UpperPad = 1.2
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

var printer = message.NewPrinter(language.English)

// Linear maps Domain onto Range.
type Linear struct {
	Domain [2]float64 `json:"domain"`
	Range  [2]float64 `json:"range"`
}

// NewLinear builds a scale from domain and range bounds.
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{Domain: [2]float64{d0, d1}, Range: [2]float64{r0, r1}}
}

// PaddedDomain widens [min, max] to [min*0.8, max*1.2]. Negative data can
// invert the interval, in which case the bounds are swapped.
func PaddedDomain(min, max float64) (float64, float64) {
	lo, hi := min*LowerPad, max*UpperPad
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Apply maps a domain value to the range. A degenerate domain maps
// everything to the middle of the range.
func (s Linear) Apply(v float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if d0 == d1 {
		return (r0 + r1) / 2
	}
	t := (v - d0) / (d1 - d0)
	return r0 + t*(r1-r0)
}

// Invert maps a range value back to the domain.
func (s Linear) Invert(px float64) float64 {
	d0, d1 := s.Domain[0], s.Domain[1]
	r0, r1 := s.Range[0], s.Range[1]
	if r0 == r1 {
		return (d0 + d1) / 2
	}
	t := (px - r0) / (r1 - r0)
	return d0 + t*(d1-d0)
}

// tickIncrement returns the tick step for roughly count ticks over
// [start, stop]. Positive results are the step itself; negative results
// are -1/step, which keeps fractional steps exact.
func tickIncrement(start, stop float64, count int) float64 {
	step := (stop - start) / math.Max(0, float64(count))
	power := math.Floor(math.Log10(step))
	err := step / math.Pow(10, power)

	factor := 1.0
	switch {
	case err >= e10:
		factor = 10
	case err >= e5:
		factor = 5
	case err >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// Ticks returns round values inside the domain, in ascending order.
func (s Linear) Ticks(count int) []float64 {
	lo, hi := s.Domain[0], s.Domain[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if count <= 0 || math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}

	inc := tickIncrement(lo, hi, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return nil
	}

	var ticks []float64
	if inc > 0 {
		first, last := math.Ceil(lo/inc), math.Floor(hi/inc)
		for i := first; i <= last; i++ {
			ticks = append(ticks, i*inc)
		}
	} else {
		inv := -inc
		first, last := math.Ceil(lo*inv), math.Floor(hi*inv)
		for i := first; i <= last; i++ {
			ticks = append(ticks, i/inv)
		}
	}
	return ticks
}

// TickStep is the spacing Ticks(count) uses.
func (s Linear) TickStep(count int) float64 {
	lo, hi := s.Domain[0], s.Domain[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi || count <= 0 {
		return 0
	}
	inc := tickIncrement(lo, hi, count)
	if inc < 0 {
		return -1 / inc
	}
	return inc
}

// TickFormat renders v with as many decimals as the tick step needs and
// thousands separators.
func TickFormat(v, step float64) string {
	precision := 0
	if step > 0 && step < 1 {
		precision = int(math.Max(0, -math.Floor(math.Log10(step)+1e-9)))
	}
	if v == 0 {
		v = 0 // drop negative zero
	}
	return printer.Sprintf("%.*f", precision, v)
}
