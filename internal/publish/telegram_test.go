package publish

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"health-scatter/internal/chart"
	"health-scatter/internal/dataset"
	"health-scatter/internal/infra/fs"
	"health-scatter/internal/infra/retry"
)

type fakeSender struct {
	errs []error
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return tgbotapi.Message{}, err
	}
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func testOptions(chatID string) Options {
	return Options{
		ChatID:     chatID,
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   5 * time.Millisecond,
		Limit:      rate.Inf,
	}
}

func TestPublishSendsPhoto(t *testing.T) {
	sender := &fakeSender{}
	p, err := New(sender, testOptions("-100123"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	snap := fs.Snapshot{Path: "etc/charts/chart.png"}
	if err := p.Publish(context.Background(), snap, "caption"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	photo, ok := sender.sent[0].(tgbotapi.PhotoConfig)
	if !ok {
		t.Fatalf("expected PhotoConfig, got %T", sender.sent[0])
	}
	if photo.ChatID != -100123 || photo.Caption != "caption" || photo.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("unexpected photo config %+v", photo)
	}
}

func TestPublishToChannel(t *testing.T) {
	sender := &fakeSender{}
	p, _ := New(sender, testOptions("@charts"))
	if err := p.Publish(context.Background(), fs.Snapshot{Path: "c.png"}, ""); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	photo := sender.sent[0].(tgbotapi.PhotoConfig)
	if photo.ChannelUsername != "@charts" {
		t.Fatalf("expected channel username, got %+v", photo.BaseChat)
	}
}

func TestPublishRetriesTooManyRequests(t *testing.T) {
	tooMany := &tgbotapi.Error{Code: 429, Message: "Too Many Requests", ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1}}
	sender := &fakeSender{errs: []error{tooMany}}
	p, _ := New(sender, testOptions("42"))
	start := time.Now()
	if err := p.Publish(context.Background(), fs.Snapshot{Path: "c.png"}, ""); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(sender.sent))
	}
	if waited := time.Since(start); waited < time.Second {
		t.Fatalf("retry_after of 1s not honoured, waited %v", waited)
	}
}

func TestPublishBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	badGateway := &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}
	errs := make([]error, 20)
	for i := range errs {
		errs[i] = badGateway
	}
	sender := &fakeSender{errs: errs}
	p, _ := New(sender, testOptions("42"))
	snap := fs.Snapshot{Path: "c.png"}

	// 1 attempt + 3 retries, all 502.
	err := p.Publish(context.Background(), snap, "")
	var he *retry.HTTPError
	if !errors.As(err, &he) || he.StatusCode != 502 {
		t.Fatalf("first publish: expected 502, got %v", err)
	}
	if len(sender.sent) != 4 {
		t.Fatalf("first publish: expected 4 sends, got %d", len(sender.sent))
	}

	// The fifth consecutive failure trips the breaker; the next retry is refused.
	err = p.Publish(context.Background(), snap, "")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("second publish: expected open breaker, got %v", err)
	}
	if len(sender.sent) != 5 {
		t.Fatalf("second publish: expected 5 sends total, got %d", len(sender.sent))
	}

	err = p.Publish(context.Background(), snap, "")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("third publish: expected open breaker, got %v", err)
	}
	if len(sender.sent) != 5 {
		t.Fatalf("open breaker must not reach the sender, got %d sends", len(sender.sent))
	}
}

func TestPublishStopsOnBadRequest(t *testing.T) {
	sender := &fakeSender{errs: []error{&tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}}}
	p, _ := New(sender, testOptions("42"))
	err := p.Publish(context.Background(), fs.Snapshot{Path: "c.png"}, "")
	var he *retry.HTTPError
	if !errors.As(err, &he) || he.StatusCode != 400 {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("bad requests must not be retried, got %d sends", len(sender.sent))
	}
}

func TestPublishRejectsBadChatID(t *testing.T) {
	p, _ := New(&fakeSender{}, testOptions("not-a-number"))
	if err := p.Publish(context.Background(), fs.Snapshot{Path: "c.png"}, ""); err == nil {
		t.Fatalf("expected chat id error")
	}
	if _, err := New(&fakeSender{}, Options{}); err == nil {
		t.Fatalf("expected error for empty chat id")
	}
}

func TestCaption(t *testing.T) {
	got := Caption(chart.Selection{X: dataset.Income, Y: dataset.Smokes}, 51)
	if !strings.Contains(got, "<b>Smokes (%)</b> vs <b>Household Income (Median)</b>") || !strings.HasSuffix(got, "51 states") {
		t.Fatalf("unexpected caption %q", got)
	}
	if got := Caption(chart.DefaultSelection(), 0); strings.Contains(got, "states") {
		t.Fatalf("unknown row count should be left out, got %q", got)
	}
}
