package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-scatter/internal/chart"
	"health-scatter/internal/infra/fs"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/transition"
)

var animateCmd = &cobra.Command{
	Use:   "animate",
	Short: "Record an axis switch as an animated GIF",
	Long: `Render the transition between two selections frame by frame, the same
motion the page shows when an axis label is clicked.`,
	Example: `  health-scatter animate --to-x income
  health-scatter animate --from-y smokes --to-y healthcare --frames 40 --out switch.gif`,
	RunE: runAnimate,
}

func init() {
	selectionFlags(animateCmd, "from-")
	animateCmd.Flags().String("to-x", "", "X axis variable to switch to (default: keep --from-x)")
	animateCmd.Flags().String("to-y", "", "Y axis variable to switch to (default: keep --from-y)")
	animateCmd.Flags().String("out", "", "Output .gif file (default <from>_to_<to>.gif)")
	animateCmd.Flags().Int("frames", 24, "Number of frames after the first")
}

func runAnimate(cmd *cobra.Command, args []string) error {
	fromSel, err := selectionFromFlags(cmd, "from-")
	if err != nil {
		return err
	}
	toX, _ := cmd.Flags().GetString("to-x")
	toY, _ := cmd.Flags().GetString("to-y")
	toSel, err := fromSel.With(toX, toY)
	if err != nil {
		return err
	}
	if toSel == fromSel {
		return fmt.Errorf("nothing to animate: set --to-x or --to-y to a different variable")
	}
	frames, _ := cmd.Flags().GetInt("frames")
	if frames < 1 {
		return fmt.Errorf("--frames must be at least 1, got %d", frames)
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("%s_%s_to_%s_%s.gif", fromSel.X, fromSel.Y, toSel.X, toSel.Y)
	}
	if !strings.EqualFold(filepath.Ext(out), ".gif") {
		return fmt.Errorf("animation output must be a .gif file, got %q", out)
	}

	ds, err := loadDataset()
	if err != nil {
		return err
	}
	layout := layoutFromConfig(cfg)
	from, err := chart.Build(ds, fromSel, layout)
	if err != nil {
		return err
	}
	to, err := chart.Build(ds, toSel, layout)
	if err != nil {
		return err
	}
	tw, err := transition.New(from, to, transition.CubicInOut)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	dir, name := filepath.Split(out)
	if !filepath.IsAbs(out) {
		dir = filepath.Join(cfg.App.OutputDir, dir)
	}
	start := time.Now()
	raster := newRaster()
	delay := layout.Transition / time.Duration(frames)
	path, err := fs.NewStorage(dir).WriteFile(name, func(w io.Writer) error {
		return raster.Animate(ctx, w, tw, frames, delay)
	})
	if err != nil {
		logging.LogError("Failed to render animation", zap.String("out", out), zap.Error(err))
		return err
	}

	logging.LogSuccess("Animation rendered",
		zap.String("path", path),
		zap.Int("frames", frames+1),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
