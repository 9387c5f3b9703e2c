package commands

// Root command: loads configuration and the dataset shared by every subcommand.

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-scatter/internal/chart"
	"health-scatter/internal/dataset"
	"health-scatter/internal/infra/config"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/render"
)

var rootCmd = &cobra.Command{
	Use:   "health-scatter",
	Short: "Interactive scatter plot of US state health and demographic data",
	Long: `health-scatter loads a per-state survey CSV (poverty, age, income, obesity,
smoking, lack of healthcare) and draws it as a scatter plot. Serve it as an
interactive page, export static charts, animate axis switches or publish a
snapshot to Telegram.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := logging.Init(cfg.Log.Dir); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// cfg is set by PersistentPreRunE before any subcommand runs.
var cfg *config.Config

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("data.path", "assets/data/data.csv", "CSV file with one row per state (env: DATA_PATH)")
	pf.String("log.dir", "logs", "Directory for app.log (env: HEALTH_SCATTER_LOG_DIR)")
	pf.String("app.output_dir", "etc/charts", "Directory for rendered charts (env: HEALTH_SCATTER_APP_OUTPUT_DIR)")
	pf.Float64("chart.radius", 20, "Circle radius in px (env: HEALTH_SCATTER_CHART_RADIUS)")
	pf.Int("chart.transition_ms", 1000, "Axis switch animation length (env: HEALTH_SCATTER_CHART_TRANSITION_MS)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(animateCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(describeCmd)
}

// layoutFromConfig maps chart.* settings onto the default layout.
func layoutFromConfig(c *config.Config) chart.Layout {
	l := chart.DefaultLayout()
	l.Width = float64(c.Chart.Width)
	l.Height = float64(c.Chart.Height)
	l.Radius = c.Chart.Radius
	l.Ticks = c.Chart.Ticks
	l.Transition = c.Chart.Transition()
	return l
}

func loadDataset() (*dataset.Dataset, error) {
	ds, err := dataset.Load(cfg.Data.Path)
	if err != nil {
		logging.LogError("Failed to load dataset", zap.String("path", cfg.Data.Path), zap.Error(err))
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	logging.LogInfo("Dataset loaded", zap.String("path", cfg.Data.Path), zap.Int("rows", ds.Len()))
	return ds, nil
}

func newRaster() *render.Raster {
	return render.NewRaster(render.LoadFonts(cfg.Chart.FontPaths))
}

func selectionFlags(cmd *cobra.Command, prefix string) {
	cmd.Flags().String(prefix+"x", "poverty", "X axis variable: poverty, age, income")
	cmd.Flags().String(prefix+"y", "obesity", "Y axis variable: obesity, smokes, healthcare")
}

func selectionFromFlags(cmd *cobra.Command, prefix string) (chart.Selection, error) {
	x, _ := cmd.Flags().GetString(prefix + "x")
	y, _ := cmd.Flags().GetString(prefix + "y")
	return chart.ParseSelection(x, y)
}
