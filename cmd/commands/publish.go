package commands

import (
	"context"
	"fmt"
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
	"health-scatter/internal/publish"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render a chart and send it to Telegram",
	Long: `Render the selected chart as PNG and post it to telegram.chat_id
(a numeric chat id or an @channel). Requires TELEGRAM_BOT_TOKEN.

With --file an existing PNG is sent instead. The command waits up to --wait
for it to appear, so it can follow a render running in another process.`,
	Example: `  health-scatter publish --x age --y smokes
  health-scatter publish --file etc/charts/obesity_vs_poverty.png --wait 30s`,
	RunE: runPublish,
}

func init() {
	selectionFlags(publishCmd, "")
	publishCmd.Flags().String("file", "", "Send this PNG instead of rendering one")
	publishCmd.Flags().Duration("wait", 10*time.Second, "How long to wait for --file to appear")
	publishCmd.Flags().String("telegram.chat_id", "", "Target chat id or @channel (env: TELEGRAM_CHAT_ID)")
	publishCmd.Flags().Int("telegram.max_retries", 3, "Retries for rate limited or failed uploads")
}

func runPublish(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	sel, err := selectionFromFlags(cmd, "")
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var snap *fs.Snapshot
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		wait, _ := cmd.Flags().GetDuration("wait")
		if snap, sel, err = existingSnapshot(ctx, file, wait, sel); err != nil {
			return err
		}
	} else {
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%s_vs_%s_%d.png", sel.Y, sel.X, time.Now().Unix())
		if snap, err = renderSnapshot(ds, sel, name); err != nil {
			return err
		}
	}

	bot, err := publish.NewBot(cfg.Telegram.BotToken)
	if err != nil {
		return err
	}
	pub, err := publish.New(bot, publish.Options{
		ChatID:     cfg.Telegram.ChatID,
		MaxRetries: cfg.Telegram.MaxRetries,
	})
	if err != nil {
		return err
	}

	// Publish logs its own failures.
	return pub.Publish(ctx, *snap, publish.Caption(sel, snap.Rows))
}

// existingSnapshot waits for a PNG written elsewhere and reads its metadata.
// Without usable metadata the flag selection describes the chart.
func existingSnapshot(ctx context.Context, path string, wait time.Duration, sel chart.Selection) (*fs.Snapshot, chart.Selection, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".png" {
		return nil, sel, fmt.Errorf("only png charts can be published, got %q", path)
	}
	if err := fs.WaitForFile(ctx, path, wait); err != nil {
		return nil, sel, err
	}

	snap, err := fs.NewStorage(filepath.Dir(path)).LoadSnapshot(path)
	if err == nil {
		if stored, perr := chart.ParseSelection(snap.X, snap.Y); perr == nil {
			sel = stored
		}
	} else {
		logging.LogDebug("No snapshot metadata, using flag selection", zap.String("path", path), zap.Error(err))
		snap = &fs.Snapshot{}
	}
	snap.Path = path
	snap.Format = "png"
	snap.X, snap.Y = string(sel.X), string(sel.Y)
	return snap, sel, nil
}
