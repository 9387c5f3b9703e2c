package publish

// Sends rendered chart snapshots to a Telegram chat.
// Every send passes a rate limiter, then a circuit breaker; Telegram
// "too many requests" and 5xx answers are retried with backoff.

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"health-scatter/internal/chart"
	"health-scatter/internal/infra/fs"
	logging "health-scatter/internal/infra/log"
	"health-scatter/internal/infra/retry"
)

// Sender is the part of tgbotapi.BotAPI the publisher uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Options struct {
	ChatID     string // numeric id or @channelname
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Limit      rate.Limit
	Burst      int
}

type Publisher struct {
	sender  Sender
	chatID  string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	retry   retry.Options
}

// NewBot connects to the Bot API with token.
func NewBot(token string) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return bot, nil
}

func New(sender Sender, opts Options) (*Publisher, error) {
	if strings.TrimSpace(opts.ChatID) == "" {
		return nil, errors.New("telegram chat id is required")
	}
	if opts.Limit <= 0 {
		opts.Limit = rate.Limit(1) // Telegram allows about one message per second per chat
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 500 * time.Millisecond
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TelegramPublish",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.LogWarn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Publisher{
		sender:  sender,
		chatID:  strings.TrimSpace(opts.ChatID),
		limiter: rate.NewLimiter(opts.Limit, opts.Burst),
		breaker: breaker,
		retry: retry.Options{
			MaxRetries: opts.MaxRetries,
			BaseDelay:  opts.BaseDelay,
			MaxDelay:   opts.MaxDelay,
		},
	}, nil
}

// Caption describes a selection in Telegram HTML. The state count is
// left out when rows is unknown (zero).
func Caption(sel chart.Selection, rows int) string {
	caption := fmt.Sprintf("<b>%s</b> vs <b>%s</b>",
		html.EscapeString(sel.Y.Label()),
		html.EscapeString(sel.X.Label()))
	if rows > 0 {
		caption += fmt.Sprintf("\n%d states", rows)
	}
	return caption
}

func (p *Publisher) photo(snap fs.Snapshot, caption string) (tgbotapi.PhotoConfig, error) {
	file := tgbotapi.FilePath(snap.Path)
	var photo tgbotapi.PhotoConfig
	if strings.HasPrefix(p.chatID, "@") {
		photo = tgbotapi.NewPhotoToChannel(p.chatID, file)
	} else {
		id, err := strconv.ParseInt(p.chatID, 10, 64)
		if err != nil {
			return photo, fmt.Errorf("invalid telegram chat id %q: %w", p.chatID, err)
		}
		photo = tgbotapi.NewPhoto(id, file)
	}
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeHTML
	return photo, nil
}

// Publish uploads the chart in snap with caption.
func (p *Publisher) Publish(ctx context.Context, snap fs.Snapshot, caption string) error {
	photo, err := p.photo(snap, caption)
	if err != nil {
		return err
	}

	start := time.Now()
	attempt := 0
	err = retry.Do(ctx, p.retry, func() error {
		attempt++
		if err := p.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
		_, err := p.breaker.Execute(func() (interface{}, error) {
			msg, err := p.sender.Send(photo)
			if err != nil {
				return nil, asRetryable(err)
			}
			return msg, nil
		})
		if err != nil {
			logging.LogWarn("Telegram send failed",
				zap.Int("attempt", attempt),
				zap.String("chat_id", p.chatID),
				zap.Error(err))
		}
		return err
	})

	durationMs := time.Since(start).Milliseconds()
	if err != nil {
		logging.LogError("Failed to publish chart",
			zap.String("path", snap.Path),
			zap.Int("attempts", attempt),
			zap.Error(err))
		return fmt.Errorf("failed to publish chart: %w", err)
	}

	logging.LogSuccess("Chart published to Telegram",
		zap.String("path", snap.Path),
		zap.String("chat_id", p.chatID),
		zap.Int64("duration_ms", durationMs))
	return nil
}

// asRetryable turns Bot API errors into retry.HTTPError so the retry loop
// can see the status code and retry_after hint.
func asRetryable(err error) error {
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) {
		return &retry.HTTPError{
			StatusCode: tgErr.Code,
			Message:    tgErr.Message,
			RetryAfter: time.Duration(tgErr.RetryAfter) * time.Second,
		}
	}
	return err
}
