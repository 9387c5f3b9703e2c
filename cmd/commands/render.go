package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-scatter/internal/chart"
	"health-scatter/internal/dataset"
	"health-scatter/internal/infra/fs"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/render"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Export a static chart (png, svg, pdf, eps)",
	Long: `Render one selection to a file. PNG output is drawn with the raster renderer,
other formats with the vector plotter. Relative paths land in app.output_dir.`,
	RunE: runRender,
}

func init() {
	selectionFlags(renderCmd, "")
	renderCmd.Flags().String("out", "", "Output file; the extension picks the format (default <y>_vs_<x>.png)")
}

func runRender(cmd *cobra.Command, args []string) error {
	sel, err := selectionFromFlags(cmd, "")
	if err != nil {
		return err
	}
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("%s_vs_%s.png", sel.Y, sel.X)
	}

	snap, err := renderSnapshot(ds, sel, out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), snap.Path)
	return nil
}

// renderSnapshot draws sel into out and records its metadata beside it.
func renderSnapshot(ds *dataset.Dataset, sel chart.Selection, out string) (*fs.Snapshot, error) {
	start := time.Now()
	view, err := chart.Build(ds, sel, layoutFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(out), "."))
	dir, name := filepath.Split(out)
	if !filepath.IsAbs(out) {
		dir = filepath.Join(cfg.App.OutputDir, dir)
	}
	storage := fs.NewStorage(dir)

	var write func(io.Writer) error
	switch format {
	case "png":
		raster := newRaster()
		write = func(w io.Writer) error { return raster.WritePNG(w, view) }
	case "svg", "pdf", "eps":
		write = func(w io.Writer) error { return render.Vector{}.WriteTo(w, view, format) }
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}

	path, err := storage.WriteFile(name, write)
	if err != nil {
		logging.LogError("Failed to render chart", zap.String("out", out), zap.Error(err))
		return nil, err
	}

	snap := &fs.Snapshot{
		Path:      path,
		Format:    format,
		X:         string(sel.X),
		Y:         string(sel.Y),
		Rows:      ds.Len(),
		CreatedAt: time.Now().UTC(),
	}
	if info, err := os.Stat(path); err == nil {
		snap.Size = info.Size()
	}
	if err := storage.SaveSnapshot(*snap); err != nil {
		logging.LogWarn("Failed to save snapshot metadata", zap.Error(err))
	}

	logging.LogSuccess("Chart rendered",
		zap.String("path", path),
		zap.String("x", string(sel.X)),
		zap.String("y", string(sel.Y)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	return snap, nil
}
