// Package telegram sends backend outage and recovery notifications via the
// Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rewired-gh/arbdash/internal/logger"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = time.Second
	pollTimeout       = 60 // seconds
)

// Client posts alerts to one chat and answers /ping and /status there.
type Client struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	attempts   int
	retryDelay time.Duration
	status     func() string
}

// NewClient creates a new Telegram client. maxRetries is the number of send
// attempts; retryDelayBase grows linearly between them.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	c := &Client{
		bot:        bot,
		chatID:     id,
		attempts:   maxRetries,
		retryDelay: retryDelayBase,
	}
	if c.attempts <= 0 {
		c.attempts = defaultAttempts
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	return c, nil
}

// SetStatus installs the reply of the /status command.
func (c *Client) SetStatus(status func() string) {
	c.status = status
}

// ListenForCommands polls for updates in the background until ctx is
// cancelled. Commands from chats other than the configured one are ignored.
func (c *Client) ListenForCommands(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeout
	updates := c.bot.GetUpdatesChan(cfg)

	go func() {
		defer c.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				msg := update.Message
				if msg == nil || !msg.IsCommand() || msg.Chat.ID != c.chatID {
					continue
				}
				if reply, ok := c.answer(msg.Command()); ok {
					if _, err := c.bot.Send(tgbotapi.NewMessage(c.chatID, reply)); err != nil {
						logger.Warn("Failed to answer /%s: %v", msg.Command(), err)
					}
				}
			}
		}
	}()
}

func (c *Client) answer(command string) (string, bool) {
	switch command {
	case "ping":
		return "Pong", true
	case "status":
		if c.status == nil {
			return "No status available", true
		}
		return c.status(), true
	default:
		return "", false
	}
}

// SendError reports that the backend started failing.
func (c *Client) SendError(fetchErr error) error {
	return c.send(formatError(fetchErr))
}

// SendRecovery reports that the backend answers again.
func (c *Client) SendRecovery(failureCount int) error {
	return c.send(formatRecovery(failureCount))
}

func (c *Client) send(markdown string) error {
	msg := tgbotapi.NewMessage(c.chatID, markdown)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if _, err = c.bot.Send(msg); err == nil {
			return nil
		}
		if attempt < c.attempts {
			time.Sleep(c.retryDelay * time.Duration(attempt))
		}
	}
	return fmt.Errorf("telegram send failed after %d attempts: %w", c.attempts, err)
}

func formatError(fetchErr error) string {
	return "⚠️ *Dashboard backend unavailable*\n`" + escapeMarkdownV2(fetchErr.Error()) + "`"
}

func formatRecovery(failureCount int) string {
	return fmt.Sprintf("✅ *Dashboard backend recovered* after %d consecutive failure\\(s\\)", failureCount)
}

// escapeMarkdownV2 escapes the characters MarkdownV2 reserves.
func escapeMarkdownV2(text string) string {
	const reserved = "_*[]()~`>#+-=|{}.!"

	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for _, r := range text {
		if strings.ContainsRune(reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
