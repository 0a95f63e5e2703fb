// Package telegrampresentation runs the customer-facing bot that links Telegram accounts to phone numbers.
package telegrampresentation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	domprofile "github.com/kursant77/ajabo-f69de2d8/internal/domain/profile"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability"
	"github.com/kursant77/ajabo-f69de2d8/internal/observability/logctx"
)

const (
	componentBot = "telegram_bot"

	buttonShareContact = "📱 Telefon raqamni yuborish"
	buttonOrder        = "🍔 Buyurtma berish"
)

// API is the part of the bot client the loop uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api       API
	profiles  domprofile.Repository
	webAppURL string
	now       func() time.Time

	log      observability.Logger
	requests observability.Counter
}

func NewBot(api API, profiles domprofile.Repository, webAppURL string, tel observability.Observability) *Bot {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Bot{
		api:       api,
		profiles:  profiles,
		webAppURL: webAppURL,
		now:       time.Now,
		log:       tel.Logger().With(observability.F("component", componentBot)),
		requests:  tel.Metrics().Counter(observability.MExternalRequests),
	}
}

// Run long-polls updates until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	b.log.Info("telegram_bot_started")
	for {
		select {
		case <-ctx.Done():
			b.log.Info("telegram_bot_stopped")
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Message == nil {
				continue
			}
			b.serve(ctx, u.Message)
		}
	}
}

func (b *Bot) serve(ctx context.Context, msg *tgbotapi.Message) {
	logger := logctx.FromOr(ctx, b.log).With(observability.F("chat_id", msg.Chat.ID))

	reply, err := b.Reply(logctx.With(ctx, logger), msg)
	if err != nil {
		logger.Error("telegram_bot_handle_failed", observability.F("error", err))
		reply = tgbotapi.NewMessage(msg.Chat.ID, "Xatolik yuz berdi. Iltimos keyinroq qayta urinib ko'ring.")
	}

	outcome := "success"
	if _, err := b.api.Send(reply); err != nil {
		outcome = "error"
		logger.Warn("telegram_bot_reply_failed", observability.F("error", err))
	}
	b.requests.Add(1,
		observability.L("peer", "telegram"),
		observability.L("endpoint", "sendMessage"),
		observability.L("outcome", outcome),
	)
}

// Reply decides the answer to one incoming message.
func (b *Bot) Reply(ctx context.Context, msg *tgbotapi.Message) (tgbotapi.MessageConfig, error) {
	chatID := msg.Chat.ID

	switch {
	case msg.Contact != nil:
		return b.register(ctx, msg)
	case msg.IsCommand() && msg.Command() == "start":
		name := ""
		if msg.From != nil {
			name = msg.From.FirstName
		}
		out := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"👋 <b>Assalomu alaykum, %s!</b>\n\nBizning yetkazib berish botimizga xush kelibsiz! 🍔\nDavom etishdan oldin raqamingizni yuboring:",
			html.EscapeString(name),
		))
		out.ParseMode = tgbotapi.ModeHTML
		keyboard := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(buttonShareContact),
		))
		keyboard.OneTimeKeyboard = true
		out.ReplyMarkup = keyboard
		return out, nil
	default:
		fullName, phone, err := b.known(ctx, chatID)
		if err != nil {
			return tgbotapi.MessageConfig{}, err
		}
		out := tgbotapi.NewMessage(chatID, "Buyurtma berish uchun quyidagi tugmani bosing:")
		out.ReplyMarkup = b.orderButton(chatID, fullName, phone)
		return out, nil
	}
}

// known returns what the customer shared on registration, if anything.
func (b *Bot) known(ctx context.Context, chatID int64) (fullName, phone string, err error) {
	p, err := b.profiles.FindByTelegramID(ctx, strconv.FormatInt(chatID, 10))
	switch {
	case errors.Is(err, domprofile.ErrNotFound):
		return "", "", nil
	case err != nil:
		return "", "", fmt.Errorf("telegram bot: load profile: %w", err)
	}
	return p.FullName, p.Phone, nil
}

func (b *Bot) register(ctx context.Context, msg *tgbotapi.Message) (tgbotapi.MessageConfig, error) {
	c := msg.Contact
	if msg.From == nil || c.UserID != msg.From.ID {
		return tgbotapi.NewMessage(msg.Chat.ID, "Iltimos, o'zingizning raqamingizni yuboring."), nil
	}

	phone := domprofile.NormalizePhone(c.PhoneNumber)
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	p := &domprofile.Profile{
		TelegramID: strconv.FormatInt(msg.From.ID, 10),
		Phone:      phone,
		FullName:   strings.TrimSpace(c.FirstName + " " + c.LastName),
		Username:   msg.From.UserName,
		UpdatedAt:  b.now().UTC(),
	}
	if err := b.profiles.Upsert(ctx, p); err != nil {
		return tgbotapi.MessageConfig{}, fmt.Errorf("telegram bot: save profile: %w", err)
	}
	logctx.FromOr(ctx, b.log).Info("customer_registered", observability.F("telegram_id", p.TelegramID))

	out := tgbotapi.NewMessage(msg.Chat.ID, fmt.Sprintf(
		"Tabriklaymiz, %s! Ro'yxatdan muvaffaqiyatli o'tdingiz. ✅", p.FullName,
	))
	out.ReplyMarkup = b.orderButton(msg.From.ID, p.FullName, p.Phone)
	return out, nil
}

// orderButton links to the storefront with the customer prefilled.
func (b *Bot) orderButton(telegramID int64, fullName, phone string) tgbotapi.InlineKeyboardMarkup {
	q := url.Values{}
	q.Set("telegram_user_id", strconv.FormatInt(telegramID, 10))
	if fullName != "" {
		q.Set("full_name", fullName)
	}
	if phone != "" {
		q.Set("phone", phone)
	}
	link := strings.TrimRight(b.webAppURL, "/") + "/?" + q.Encode()
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonURL(buttonOrder, link),
	))
}
