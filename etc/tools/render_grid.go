package main

import (
	"fmt"
	"io"
	"os"

	"health-scatter/internal/chart"
	"health-scatter/internal/dataset"
	"health-scatter/internal/infra/fs"
	"health-scatter/internal/render"
)

// go run etc/tools/render_grid.go [data.csv]
// in etc/charts/grid/<y>_vs_<x>.png, one file per axis pairing
func main() {
	path := "assets/data/data.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ds, err := dataset.Load(path)
	if err != nil {
		fmt.Printf("Error loading dataset: %v\n", err)
		os.Exit(1)
	}

	storage := fs.NewStorage("etc/charts/grid")
	raster := render.NewRaster(nil)
	for _, x := range chart.Options[chart.X] {
		for _, y := range chart.Options[chart.Y] {
			view, err := chart.Build(ds, chart.Selection{X: x, Y: y}, chart.DefaultLayout())
			if err != nil {
				fmt.Printf("Error building %s/%s: %v\n", x, y, err)
				os.Exit(1)
			}
			out, err := storage.WriteFile(fmt.Sprintf("%s_vs_%s.png", y, x), func(w io.Writer) error {
				return raster.WritePNG(w, view)
			})
			if err != nil {
				fmt.Printf("Error rendering %s/%s: %v\n", x, y, err)
				os.Exit(1)
			}
			fmt.Println(out)
		}
	}
}
