package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/contracts"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/config"
	"github.com/HarminderAI/Vedic-Market-Energy/pkg/logger"
)

// MaxMessageRunes is the Bot API limit for one text message
const MaxMessageRunes = 4096

// ErrNotConfigured is returned when delivery is enabled without token or chat
var ErrNotConfigured = errors.New("telegram token or chat id missing")

// Notifier sends plain-text reports to one chat
// ⭐ SSOT: chat delivery lives here only
type Notifier struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	channel    string
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger
}

// NewNotifier connects to the Bot API and validates the token
func NewNotifier(cfg config.TelegramConfig, log *logger.Logger) (*Notifier, error) {
	return newNotifier(cfg, tgbotapi.APIEndpoint, &http.Client{Timeout: 30 * time.Second}, log)
}

func newNotifier(cfg config.TelegramConfig, endpoint string, httpClient *http.Client, log *logger.Logger) (*Notifier, error) {
	if cfg.Token == "" || cfg.ChatID == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = logger.Nop()
	}

	n := &Notifier{
		maxRetries: 3,
		retryDelay: time.Second,
		logger:     log,
	}

	if strings.HasPrefix(cfg.ChatID, "@") {
		n.channel = cfg.ChatID
	} else {
		id, err := strconv.ParseInt(cfg.ChatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chat ID: %w", err)
		}
		n.chatID = id
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	n.bot = bot

	return n, nil
}

// WithRetry sets the attempt count and the linear backoff step
func (n *Notifier) WithRetry(maxRetries int, delay time.Duration) *Notifier {
	if maxRetries > 0 {
		n.maxRetries = maxRetries
	}
	if delay >= 0 {
		n.retryDelay = delay
	}
	return n
}

// Send implements contracts.Notifier. Long text is split on line
// boundaries; each part is retried with linear backoff.
func (n *Notifier) Send(ctx context.Context, text string) error {
	parts := Split(text, MaxMessageRunes)
	for i, part := range parts {
		if err := n.sendPart(ctx, part); err != nil {
			return fmt.Errorf("telegram part %d/%d: %w", i+1, len(parts), err)
		}
	}

	n.logger.WithFields(map[string]interface{}{
		"parts": len(parts),
		"runes": utf8.RuneCountInString(text),
	}).Info("Telegram message sent")

	return nil
}

func (n *Notifier) sendPart(ctx context.Context, text string) error {
	var msg tgbotapi.MessageConfig
	if n.channel != "" {
		msg = tgbotapi.NewMessageToChannel(n.channel, text)
	} else {
		msg = tgbotapi.NewMessage(n.chatID, text)
	}
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < n.maxRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, err := n.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		n.logger.WithError(err).WithField("attempt", i+1).Warn("Telegram send failed")

		if i == n.maxRetries-1 {
			break
		}
		timer := time.NewTimer(n.retryDelay * time.Duration(i+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("failed after %d retries: %w", n.maxRetries, lastErr)
}

// Split cuts text into parts of at most limit runes, preferring newlines
func Split(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts   []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > 0 {
			parts = append(parts, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > 0 {
			room := limit - size
			if len(runes) <= room {
				current.WriteString(string(runes))
				size += len(runes)
				break
			}
			if size > 0 {
				flush()
				continue
			}
			current.WriteString(string(runes[:limit]))
			size = limit
			runes = runes[limit:]
			flush()
		}
	}
	flush()

	return parts
}

// LogNotifier writes messages to the log instead of a chat
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{logger: log}
}

// Send implements contracts.Notifier
func (l *LogNotifier) Send(_ context.Context, text string) error {
	l.logger.WithField("text", text).Info("Notification (delivery disabled)")
	return nil
}

// FromConfig picks the chat notifier when delivery is enabled and the log
// notifier otherwise.
func FromConfig(cfg config.TelegramConfig, log *logger.Logger) (contracts.Notifier, error) {
	if !cfg.Enabled {
		return NewLogNotifier(log), nil
	}
	n, err := NewNotifier(cfg, log)
	if err != nil {
		return nil, err
	}
	return n, nil
}
