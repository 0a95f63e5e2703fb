package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/k3a/html2text"
	"github.com/kursant77/ajabo-f69de2d8/internal/application/notification"
	"golang.org/x/time/rate"
)

// Telegram allows about 30 messages per second per bot.
const defaultMessagesPerSecond = 25

type TelegramOptions struct {
	Token string
	// APIEndpoint overrides tgbotapi.APIEndpoint, mostly for tests.
	APIEndpoint string
	Client      *http.Client
	// PerSecond caps outgoing messages; zero uses the default.
	PerSecond float64
}

// TelegramSender messages customers directly through the Bot API.
type TelegramSender struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

func NewTelegramSender(opts TelegramOptions) (*TelegramSender, error) {
	endpoint := opts.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(opts.Token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return NewTelegramSenderWithBot(bot, opts.PerSecond), nil
}

func NewTelegramSenderWithBot(bot *tgbotapi.BotAPI, perSecond float64) *TelegramSender {
	if perSecond <= 0 {
		perSecond = defaultMessagesPerSecond
	}
	return &TelegramSender{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Bot exposes the client so the update loop can share it.
func (s *TelegramSender) Bot() *tgbotapi.BotAPI { return s.bot }

func (s *TelegramSender) Send(ctx context.Context, n notification.Notification) error {
	if n.TelegramUserID == 0 {
		return fmt.Errorf("%w: empty chat id", notification.ErrRejected)
	}
	text, err := Render(n)
	if err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.TelegramUserID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	err = s.send(ctx, msg)
	if isParseError(err) {
		// retry once without markup
		plain := tgbotapi.NewMessage(n.TelegramUserID, html2text.HTML2Text(text))
		err = s.send(ctx, plain)
	}
	return classify(err)
}

func (s *TelegramSender) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.bot.Send(msg)
	return err
}

func isParseError(err error) bool {
	var apiErr *tgbotapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(apiErr.Message), "parse entities")
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s", notification.ErrRecipientBlocked, apiErr.Message)
		case http.StatusBadRequest:
			return fmt.Errorf("%w: %s", notification.ErrRejected, apiErr.Message)
		}
	}
	return fmt.Errorf("telegram: send: %w", err)
}
