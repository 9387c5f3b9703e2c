package chart

import (
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"health-scatter/internal/dataset"
)

func loadFixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(filepath.Join("..", "dataset", "testdata", "states.csv"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return ds
}

func TestChooseSwitchesAndIgnoresRepeats(t *testing.T) {
	sel := DefaultSelection()

	next, changed, err := sel.Choose(X, dataset.Age)
	if err != nil || !changed || next.X != dataset.Age || next.Y != dataset.Obesity {
		t.Fatalf("Choose(x, age) = %+v, %v, %v", next, changed, err)
	}

	same, changed, err := next.Choose(X, dataset.Age)
	if err != nil || changed || same != next {
		t.Fatalf("choosing the active variable must be a no-op, got %+v, %v, %v", same, changed, err)
	}

	if _, _, err := sel.Choose(Y, dataset.Poverty); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("poverty is not a y option, got %v", err)
	}
}

func TestLabelsExactlyOneActive(t *testing.T) {
	sel := Selection{X: dataset.Income, Y: dataset.Healthcare}
	for _, axis := range []Axis{X, Y} {
		labels := Labels(axis, sel)
		if len(labels) != 3 {
			t.Fatalf("%s: expected 3 labels, got %d", axis, len(labels))
		}
		active := 0
		for _, l := range labels {
			if l.Active {
				active++
				if l.Value != sel.Get(axis) || l.Class() != "active" {
					t.Fatalf("%s: wrong active label %+v", axis, l)
				}
			} else if l.Class() != "inactive" {
				t.Fatalf("%s: inactive label has class %q", axis, l.Class())
			}
		}
		if active != 1 {
			t.Fatalf("%s: expected 1 active label, got %d", axis, active)
		}
	}
}

func TestLabelOffsets(t *testing.T) {
	sel := DefaultSelection()
	var xs, ys []float64
	for _, l := range Labels(X, sel) {
		xs = append(xs, l.Offset)
	}
	for _, l := range Labels(Y, sel) {
		ys = append(ys, l.Offset)
	}
	if !reflect.DeepEqual(xs, []float64{20, 40, 60}) || !reflect.DeepEqual(ys, []float64{80, 60, 40}) {
		t.Fatalf("unexpected offsets x=%v y=%v", xs, ys)
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("", "")
	if err != nil || sel != DefaultSelection() {
		t.Fatalf("empty keys should give defaults, got %+v, %v", sel, err)
	}
	sel, err = ParseSelection("income", "smokes")
	if err != nil || sel.X != dataset.Income || sel.Y != dataset.Smokes {
		t.Fatalf("ParseSelection(income, smokes) = %+v, %v", sel, err)
	}
	if _, err := ParseSelection("obesity", ""); err == nil {
		t.Fatalf("expected error for y variable on x axis")
	}
}

func TestSelectionWithKeepsUnsetAxis(t *testing.T) {
	from := Selection{X: dataset.Poverty, Y: dataset.Smokes}
	to, err := from.With("income", "")
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if to.X != dataset.Income || to.Y != dataset.Smokes {
		t.Fatalf("With(income, \"\") = %+v, want y kept as smokes", to)
	}
	if same, _ := from.With("", ""); same != from {
		t.Fatalf("empty keys should keep %+v, got %+v", from, same)
	}
	if _, err := from.With("", "age"); err == nil {
		t.Fatalf("expected error for x variable on y axis")
	}
}

func TestBuildPositions(t *testing.T) {
	ds := loadFixture(t)
	layout := DefaultLayout()
	view, err := Build(ds, DefaultSelection(), layout)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// poverty 10..20 pads to 8..24; obesity 20..30 pads to 16..36.
	if math.Abs(view.XAxis.Scale.Domain[0]-8) > 1e-9 || math.Abs(view.XAxis.Scale.Domain[1]-24) > 1e-9 {
		t.Fatalf("x domain = %v", view.XAxis.Scale.Domain)
	}
	if math.Abs(view.YAxis.Scale.Domain[0]-16) > 1e-9 || math.Abs(view.YAxis.Scale.Domain[1]-36) > 1e-9 {
		t.Fatalf("y domain = %v", view.YAxis.Scale.Domain)
	}

	w, h := layout.InnerWidth(), layout.InnerHeight()
	if w != 820 || h != 400 {
		t.Fatalf("inner size = %vx%v, want 820x400", w, h)
	}

	alpha := view.Points[0]
	if math.Abs(alpha.CX-w*(10-8)/16) > 1e-9 {
		t.Fatalf("alpha cx = %v", alpha.CX)
	}
	if math.Abs(alpha.CY-h*(1-(20-16)/20.0)) > 1e-9 {
		t.Fatalf("alpha cy = %v", alpha.CY)
	}

	for _, p := range view.Points {
		if p.CX < 0 || p.CX > w || p.CY < 0 || p.CY > h {
			t.Fatalf("point %s outside plotting area: (%v, %v)", p.Abbr, p.CX, p.CY)
		}
	}
	for _, tk := range view.YAxis.Ticks {
		if tk.Pos < 0 || tk.Pos > h {
			t.Fatalf("y tick %v outside axis: %v", tk.Value, tk.Pos)
		}
	}
}

func TestBuildTooltip(t *testing.T) {
	ds := loadFixture(t)
	view, err := Build(ds, Selection{X: dataset.Income, Y: dataset.Healthcare}, DefaultLayout())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	want := []string{"Beta", "Income: 60000", "Healthcare (%): 12"}
	if got := view.Points[1].Tooltip; !reflect.DeepEqual(got, want) {
		t.Fatalf("tooltip = %v, want %v", got, want)
	}
}

func TestBuildRejectsBadInput(t *testing.T) {
	ds := loadFixture(t)
	if _, err := Build(ds, Selection{X: dataset.Smokes, Y: dataset.Obesity}, DefaultLayout()); !errors.Is(err, ErrUnknownVariable) {
		t.Fatalf("expected ErrUnknownVariable, got %v", err)
	}
	tiny := DefaultLayout()
	tiny.Width = 100
	if _, err := Build(ds, DefaultSelection(), tiny); err == nil {
		t.Fatalf("expected error for layout narrower than its margins")
	}
}

func TestBuildOnlyMovesSwitchedAxis(t *testing.T) {
	ds := loadFixture(t)
	before, _ := Build(ds, DefaultSelection(), DefaultLayout())
	sel, _, _ := DefaultSelection().Choose(X, dataset.Age)
	after, _ := Build(ds, sel, DefaultLayout())
	for i := range before.Points {
		if before.Points[i].CY != after.Points[i].CY {
			t.Fatalf("switching x must not move circles vertically")
		}
	}
}
