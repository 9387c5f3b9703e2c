package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"health-scatter/internal/infra/exec"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive scatter plot",
	Long:  `Serve the scatter plot page. Click an axis label to switch variables; hover a circle for its details.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("server.addr", ":8080", "Listen address (env: ADDR)")
	serveCmd.Flags().Bool("open", false, "Open the page in the system browser")
}

func runServe(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := web.New(ds, layoutFromConfig(cfg), newRaster(), web.Options{
		ImageRPS:   cfg.Server.ImageRPS,
		ImageBurst: cfg.Server.ImageBurst,
	})

	if open, _ := cmd.Flags().GetBool("open"); open {
		go func() {
			time.Sleep(300 * time.Millisecond)
			url := pageURL(cfg.Server.Addr)
			if err := exec.OpenBrowser(url, 5*time.Second); err != nil {
				logging.LogWarn("Failed to open browser", zap.String("url", url), zap.Error(err))
			}
		}()
	}

	if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// pageURL turns a listen address into a local URL.
func pageURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
