package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

// isolate runs the test in an empty directory with no config env set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"DATA_PATH", "ADDR", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "FONT_PATHS",
		"HEALTH_SCATTER_CHART_RADIUS", "HEALTH_SCATTER_CHART_WIDTH", "HEALTH_SCATTER_SERVER_ADDR",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Data.Path != "assets/data/data.csv" || cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Chart.Width != 960 || cfg.Chart.Height != 500 || cfg.Chart.Radius != 20 {
		t.Fatalf("unexpected chart defaults: %+v", cfg.Chart)
	}
	if cfg.Chart.Transition() != time.Second {
		t.Fatalf("transition = %v, want 1s", cfg.Chart.Transition())
	}
	if len(cfg.Chart.FontPaths) == 0 {
		t.Fatalf("expected default font paths")
	}
	if cfg.Telegram.MaxRetries != 3 {
		t.Fatalf("max retries = %d", cfg.Telegram.MaxRetries)
	}
}

func TestLoadLayers(t *testing.T) {
	dir := isolate(t)

	yaml := "chart:\n  radius: 12\n  width: 800\nserver:\n  addr: \":9000\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HEALTH_SCATTER_CHART_RADIUS", "15")
	t.Setenv("DATA_PATH", "/tmp/states.csv")
	t.Setenv("FONT_PATHS", "a.ttf, b.ttf")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("server.addr", ":8080", "")
	if err := flags.Parse([]string{"--server.addr", ":7000"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Chart.Width != 800 {
		t.Fatalf("config.yaml width ignored: %d", cfg.Chart.Width)
	}
	if cfg.Chart.Radius != 15 {
		t.Fatalf("env should override config.yaml, radius = %g", cfg.Chart.Radius)
	}
	if cfg.Data.Path != "/tmp/states.csv" {
		t.Fatalf("DATA_PATH alias ignored: %q", cfg.Data.Path)
	}
	if cfg.Server.Addr != ":7000" {
		t.Fatalf("flag should win, addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Chart.FontPaths) != 2 || cfg.Chart.FontPaths[1] != "b.ttf" {
		t.Fatalf("unexpected font paths %q", cfg.Chart.FontPaths)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("HEALTH_SCATTER_CHART_RADIUS", "-1")

	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for negative radius")
	}
}

func TestValidateTelegram(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateTelegram(); err == nil {
		t.Fatalf("expected error without token")
	}
	cfg.Telegram.BotToken = "token"
	if err := cfg.ValidateTelegram(); err == nil {
		t.Fatalf("expected error without chat id")
	}
	cfg.Telegram.ChatID = "@channel"
	if err := cfg.ValidateTelegram(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a , ,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("splitList = %q", got)
	}
	if splitList("  ") != nil {
		t.Fatalf("blank input should give nil")
	}
}
