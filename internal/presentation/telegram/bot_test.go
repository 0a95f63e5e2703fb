package telegrampresentation

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/kursant77/ajabo-f69de2d8/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	updates chan tgbotapi.Update

	mu   sync.Mutex
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }
func (f *fakeAPI) StopReceivingUpdates() {}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Sent() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

func startMessage() *tgbotapi.Message {
	return &tgbotapi.Message{
		Text:     "/start",
		From:     &tgbotapi.User{ID: 42, FirstName: "Aziz"},
		Chat:     &tgbotapi.Chat{ID: 42},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}
}

func contactMessage(owner int64) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42, FirstName: "Aziz", UserName: "aziz"},
		Chat: &tgbotapi.Chat{ID: 42},
		Contact: &tgbotapi.Contact{
			PhoneNumber: "998 90 000 11 22",
			FirstName:   "Aziz",
			LastName:    "Karimov",
			UserID:      owner,
		},
	}
}

func TestStartAsksForContact(t *testing.T) {
	bot := NewBot(&fakeAPI{}, memory.NewProfileRepository(), "https://cafe.example", nil)

	out, err := bot.Reply(context.Background(), startMessage())
	require.NoError(t, err)

	assert.Contains(t, out.Text, "Aziz")
	keyboard, ok := out.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, keyboard.Keyboard[0][0].RequestContact)
}

func TestContactRegistersProfile(t *testing.T) {
	profiles := memory.NewProfileRepository()
	bot := NewBot(&fakeAPI{}, profiles, "https://cafe.example/", nil)

	out, err := bot.Reply(context.Background(), contactMessage(42))
	require.NoError(t, err)
	assert.Contains(t, out.Text, "Aziz Karimov")

	p, err := profiles.FindByPhone(context.Background(), "+998900001122")
	require.NoError(t, err)
	assert.Equal(t, "42", p.TelegramID)
	assert.Equal(t, "aziz", p.Username)

	markup, ok := out.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.NotNil(t, markup.InlineKeyboard[0][0].URL)
	assert.Contains(t, *markup.InlineKeyboard[0][0].URL, "https://cafe.example/?")
	assert.Contains(t, *markup.InlineKeyboard[0][0].URL, "telegram_user_id=42")
}

func TestForeignContactIsRejected(t *testing.T) {
	profiles := memory.NewProfileRepository()
	bot := NewBot(&fakeAPI{}, profiles, "https://cafe.example", nil)

	out, err := bot.Reply(context.Background(), contactMessage(7))
	require.NoError(t, err)
	assert.Contains(t, out.Text, "o'zingizning")

	_, err = profiles.FindByPhone(context.Background(), "+998900001122")
	assert.Error(t, err)
}

func TestRunAnswersUpdatesUntilCancelled(t *testing.T) {
	api := &fakeAPI{updates: make(chan tgbotapi.Update, 2)}
	bot := NewBot(api, memory.NewProfileRepository(), "https://cafe.example", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		bot.Run(ctx)
		close(done)
	}()

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: startMessage()}
	api.updates <- tgbotapi.Update{UpdateID: 2}

	require.Eventually(t, func() bool { return len(api.Sent()) == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestOrderButtonPrefillsRegisteredCustomer(t *testing.T) {
	ctx := context.Background()
	profiles := memory.NewProfileRepository()
	bot := NewBot(&fakeAPI{}, profiles, "https://cafe.example", nil)

	text := &tgbotapi.Message{Text: "salom", From: &tgbotapi.User{ID: 42}, Chat: &tgbotapi.Chat{ID: 42}}
	out, err := bot.Reply(ctx, text)
	require.NoError(t, err)
	link := *out.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup).InlineKeyboard[0][0].URL
	assert.NotContains(t, link, "phone=")

	_, err = bot.Reply(ctx, contactMessage(42))
	require.NoError(t, err)

	out, err = bot.Reply(ctx, text)
	require.NoError(t, err)
	link = *out.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup).InlineKeyboard[0][0].URL
	assert.Contains(t, link, "telegram_user_id=42")
	assert.Contains(t, link, "full_name=Aziz+Karimov")
	assert.Contains(t, link, "phone=%2B998900001122")
}
