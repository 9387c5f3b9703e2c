package config

// Layered configuration: defaults, config.yaml, .env, environment, command flags.

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HEALTH_SCATTER"

type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Server   ServerConfig   `mapstructure:"server"`
	Chart    ChartConfig    `mapstructure:"chart"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type DataConfig struct {
	Path string `mapstructure:"path"`
}

type ServerConfig struct {
	Addr       string  `mapstructure:"addr"`
	ImageRPS   float64 `mapstructure:"image_rps"`   // rendered images per second
	ImageBurst int     `mapstructure:"image_burst"`
}

// ChartConfig mirrors chart.Layout; sizes are in SVG pixels.
type ChartConfig struct {
	Width        int      `mapstructure:"width"`
	Height       int      `mapstructure:"height"`
	Radius       float64  `mapstructure:"radius"`
	Ticks        int      `mapstructure:"ticks"`
	TransitionMs int      `mapstructure:"transition_ms"`
	FontPaths    []string `mapstructure:"font_paths"`
}

type AppConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type LogConfig struct {
	Dir string `mapstructure:"dir"`
}

type TelegramConfig struct {
	BotToken   string `mapstructure:"bot_token"`
	ChatID     string `mapstructure:"chat_id"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// Transition returns the configured transition duration.
func (c ChartConfig) Transition() time.Duration {
	return time.Duration(c.TransitionMs) * time.Millisecond
}

// Load reads configuration. flags may be nil; when set, every flag whose
// name matches a config key ("chart.radius") overrides the other layers.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvAliases(v)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	// FONT_PATHS from .env arrives as one comma-separated string.
	if raw, ok := v.Get("chart.font_paths").(string); ok {
		cfg.Chart.FontPaths = splitList(raw)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func bindEnvAliases(v *viper.Viper) {
	_ = v.BindEnv("data.path", envPrefix+"_DATA_PATH", "DATA_PATH")
	_ = v.BindEnv("server.addr", envPrefix+"_SERVER_ADDR", "ADDR")
	_ = v.BindEnv("telegram.bot_token", envPrefix+"_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("telegram.chat_id", envPrefix+"_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	_ = v.BindEnv("chart.font_paths", envPrefix+"_CHART_FONT_PATHS", "FONT_PATHS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.path", "assets/data/data.csv")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.image_rps", 5.0)
	v.SetDefault("server.image_burst", 10)

	v.SetDefault("chart.width", 960)
	v.SetDefault("chart.height", 500)
	v.SetDefault("chart.radius", 20.0)
	v.SetDefault("chart.ticks", 10)
	v.SetDefault("chart.transition_ms", 1000)
	v.SetDefault("chart.font_paths", []string{
		"etc/fonts/Inter-Regular.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
	})

	v.SetDefault("app.output_dir", "etc/charts")
	v.SetDefault("log.dir", "logs")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
}

// Validate checks values every command depends on.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.Radius <= 0 {
		return fmt.Errorf("chart.radius must be positive, got %g", c.Chart.Radius)
	}
	if c.Chart.Ticks <= 0 {
		return fmt.Errorf("chart.ticks must be positive, got %d", c.Chart.Ticks)
	}
	if c.Chart.TransitionMs < 0 {
		return fmt.Errorf("chart.transition_ms must not be negative, got %d", c.Chart.TransitionMs)
	}
	if c.Server.ImageRPS <= 0 || c.Server.ImageBurst <= 0 {
		return fmt.Errorf("server.image_rps and server.image_burst must be positive")
	}
	return nil
}

// ValidateTelegram checks the credentials needed by the publish command.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (env: TELEGRAM_BOT_TOKEN)")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required (env: TELEGRAM_CHAT_ID)")
	}
	return nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
