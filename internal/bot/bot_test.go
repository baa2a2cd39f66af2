//go:build unit

package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTelegram struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	editErr  error
}

func newFakeTelegram() *fakeTelegram {
	return &fakeTelegram{updates: make(chan tgbotapi.Update)}
}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && f.editErr != nil {
		return tgbotapi.Message{}, f.editErr
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeTelegram) SelfUser() tgbotapi.User {
	return tgbotapi.User{UserName: "wishlist_bot"}
}

func (f *fakeTelegram) sentMessages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (f *fakeTelegram) sentEdits() []tgbotapi.EditMessageTextConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.EditMessageTextConfig
	for _, c := range f.sent {
		if edit, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			out = append(out, edit)
		}
	}
	return out
}

func (f *fakeTelegram) callbackAnswers() []tgbotapi.CallbackConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.CallbackConfig
	for _, c := range f.requests {
		if cb, ok := c.(tgbotapi.CallbackConfig); ok {
			out = append(out, cb)
		}
	}
	return out
}

type fakeWishlist struct {
	listFunc      func(ctx context.Context) ([]Gift, error)
	getFunc       func(ctx context.Context, id uuid.UUID) (*Gift, error)
	createFunc    func(ctx context.Context, title, link string) (*Gift, error)
	deleteFunc    func(ctx context.Context, id uuid.UUID) error
	reserveFunc   func(ctx context.Context, id uuid.UUID, req ReserveRequest) error
	unreserveFunc func(ctx context.Context, id uuid.UUID, nickname string) error

	mu         sync.Mutex
	deletedIDs []uuid.UUID
	reserved   []ReserveRequest
}

func (f *fakeWishlist) ListGifts(ctx context.Context) ([]Gift, error) {
	return f.listFunc(ctx)
}

func (f *fakeWishlist) GetGift(ctx context.Context, id uuid.UUID) (*Gift, error) {
	return f.getFunc(ctx, id)
}

func (f *fakeWishlist) CreateGift(ctx context.Context, title, link string) (*Gift, error) {
	return f.createFunc(ctx, title, link)
}

func (f *fakeWishlist) DeleteGift(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	f.deletedIDs = append(f.deletedIDs, id)
	f.mu.Unlock()
	return f.deleteFunc(ctx, id)
}

func (f *fakeWishlist) Reserve(ctx context.Context, id uuid.UUID, req ReserveRequest) error {
	f.mu.Lock()
	f.reserved = append(f.reserved, req)
	f.mu.Unlock()
	return f.reserveFunc(ctx, id, req)
}

func (f *fakeWishlist) Unreserve(ctx context.Context, id uuid.UUID, nickname string) error {
	return f.unreserveFunc(ctx, id, nickname)
}

func newTestBot(tg telegramClient, wishlist wishlistAPI) *Bot {
	cfg := config.TelegramConfig{Token: "test", Admins: []string{"@Hanna"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWithTelegramClient(tg, cfg, wishlist, logger)
}

func textMessage(chatID int64, username, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: 1, UserName: username},
		Text: text,
	}
}

func TestBot_Help(t *testing.T) {
	tg := newFakeTelegram()
	b := newTestBot(tg, &fakeWishlist{})

	b.handleMessage(context.Background(), textMessage(100, "alice", "/help"))

	msgs := tg.sentMessages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Text, "/wishlist")
	assert.Contains(t, msgs[0].Text, "/addgift")
}

func TestBot_Wishlist(t *testing.T) {
	t.Run("empty catalog", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{listFunc: func(context.Context) ([]Gift, error) { return nil, nil }}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "alice", "/wishlist"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "Список подарков пуст 🎁", msgs[0].Text)
	})

	t.Run("one message per gift with toggle button", func(t *testing.T) {
		gifts := []Gift{
			{ID: uuid.New(), Title: "Book", Status: "Free"},
			{ID: uuid.New(), Title: "Lego", Status: "Reserved", ReservedByFirstName: "Bob"},
		}
		tg := newFakeTelegram()
		wl := &fakeWishlist{listFunc: func(context.Context) ([]Gift, error) { return gifts, nil }}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "alice", "/wishlist"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 2)
		assert.Equal(t, tgbotapi.ModeMarkdownV2, msgs[0].ParseMode)
		assert.Contains(t, msgs[0].Text, "*Book*")
		assert.Contains(t, msgs[1].Text, "Забронирован \\(Bob \\)")

		kb, ok := msgs[0].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		require.True(t, ok)
		assert.Equal(t, gifts[0].ID.String()+":Free", *kb.InlineKeyboard[0][0].CallbackData)
	})
}

func TestBot_AddGift(t *testing.T) {
	t.Run("title and link split on pipe", func(t *testing.T) {
		var gotTitle, gotLink string
		tg := newFakeTelegram()
		wl := &fakeWishlist{createFunc: func(_ context.Context, title, link string) (*Gift, error) {
			gotTitle, gotLink = title, link
			return &Gift{ID: uuid.New(), Title: title, Status: "Free"}, nil
		}}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "alice", "/addgift Lego Star Wars | https://shop.example/lego"))

		assert.Equal(t, "Lego Star Wars", gotTitle)
		assert.Equal(t, "https://shop.example/lego", gotLink)

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "🎁 Подарок «Lego Star Wars» добавлен!", msgs[0].Text)
	})

	t.Run("missing arguments prints usage", func(t *testing.T) {
		tg := newFakeTelegram()
		b := newTestBot(tg, &fakeWishlist{})

		b.handleMessage(context.Background(), textMessage(100, "alice", "/addgift"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Contains(t, msgs[0].Text, "Использование: /addgift")
	})

	t.Run("api rejection surfaces sanitized message", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{createFunc: func(context.Context, string, string) (*Gift, error) {
			return nil, &APIError{StatusCode: http.StatusBadRequest, Body: `{"error":{"message":"Invalid request format"}}`}
		}}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "alice", "/addgift x"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "Ошибка при добавлении подарка: Invalid request format", msgs[0].Text)
	})
}

func TestBot_DeleteGift(t *testing.T) {
	gifts := []Gift{
		{ID: uuid.New(), Title: "Book", Status: "Free"},
		{ID: uuid.New(), Title: "Lego", Status: "Free"},
	}

	t.Run("non-admin is refused before any API call", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "mallory", "/deletegift 1"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "⛔ У вас нет прав для удаления подарков.", msgs[0].Text)
		assert.Empty(t, wl.deletedIDs)
	})

	t.Run("admin deletes by ordinal", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{
			listFunc:   func(context.Context) ([]Gift, error) { return gifts, nil },
			deleteFunc: func(context.Context, uuid.UUID) error { return nil },
		}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "hanna", "/deletegift 2"))

		require.Len(t, wl.deletedIDs, 1)
		assert.Equal(t, gifts[1].ID, wl.deletedIDs[0])

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "🗑 Подарок «Lego» удалён.", msgs[0].Text)
	})

	t.Run("out of range ordinal", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{listFunc: func(context.Context) ([]Gift, error) { return gifts, nil }}
		b := newTestBot(tg, wl)

		b.handleMessage(context.Background(), textMessage(100, "hanna", "/deletegift 5"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "❌ Неверный номер подарка.", msgs[0].Text)
		assert.Empty(t, wl.deletedIDs)
	})

	t.Run("non-numeric argument prints usage", func(t *testing.T) {
		tg := newFakeTelegram()
		b := newTestBot(tg, &fakeWishlist{})

		b.handleMessage(context.Background(), textMessage(100, "hanna", "/deletegift abc"))

		msgs := tg.sentMessages()
		require.Len(t, msgs, 1)
		assert.Equal(t, "Использование: /deletegift <номер>", msgs[0].Text)
	})
}

func callbackFrom(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb-1",
		Data: data,
		From: &tgbotapi.User{ID: 42, UserName: "alice", FirstName: "Alice", LastName: "Liddell"},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: 100},
		},
	}
}

func TestBot_Callback(t *testing.T) {
	id := uuid.New()

	t.Run("reserving a free gift edits the message", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{
			reserveFunc: func(context.Context, uuid.UUID, ReserveRequest) error { return nil },
			getFunc: func(context.Context, uuid.UUID) (*Gift, error) {
				return &Gift{
					ID: id, Title: "Book", Status: "Reserved",
					ReservedByID: "42", ReservedByFirstName: "Alice", ReservedByLastName: "Liddell",
				}, nil
			},
		}
		b := newTestBot(tg, wl)

		b.handleCallback(context.Background(), callbackFrom(id.String()+":Free"))

		require.Len(t, wl.reserved, 1)
		assert.Equal(t, ReserveRequest{
			ReservedByID:        "42",
			ReservedByNickname:  "alice",
			ReservedByFirstName: "Alice",
			ReservedByLastName:  "Liddell",
		}, wl.reserved[0])

		edits := tg.sentEdits()
		require.Len(t, edits, 1)
		assert.Equal(t, int64(100), edits[0].ChatID)
		assert.Equal(t, 7, edits[0].MessageID)
		assert.Contains(t, edits[0].Text, "tg://user?id=42")

		answers := tg.callbackAnswers()
		require.Len(t, answers, 1)
		assert.Equal(t, "✅ Успешно!", answers[0].Text)
		assert.False(t, answers[0].ShowAlert)
	})

	t.Run("failed message edit answers with an error instead of success", func(t *testing.T) {
		tg := newFakeTelegram()
		tg.editErr = errors.New("message to edit not found")
		wl := &fakeWishlist{
			reserveFunc: func(context.Context, uuid.UUID, ReserveRequest) error { return nil },
			getFunc: func(context.Context, uuid.UUID) (*Gift, error) {
				return &Gift{ID: id, Title: "Book", Status: "Reserved", ReservedByID: "42"}, nil
			},
		}
		b := newTestBot(tg, wl)

		b.handleCallback(context.Background(), callbackFrom(id.String()+":Free"))

		answers := tg.callbackAnswers()
		require.Len(t, answers, 1)
		assert.Equal(t, "Не удалось обновить сообщение.", answers[0].Text)
		assert.True(t, answers[0].ShowAlert)
	})

	t.Run("releasing goes through unreserve with the username", func(t *testing.T) {
		var gotNickname string
		tg := newFakeTelegram()
		wl := &fakeWishlist{
			unreserveFunc: func(_ context.Context, _ uuid.UUID, nickname string) error {
				gotNickname = nickname
				return nil
			},
			getFunc: func(context.Context, uuid.UUID) (*Gift, error) {
				return &Gift{ID: id, Title: "Book", Status: "Free"}, nil
			},
		}
		b := newTestBot(tg, wl)

		b.handleCallback(context.Background(), callbackFrom(id.String()+":Reserved"))

		assert.Equal(t, "alice", gotNickname)
		require.Len(t, tg.sentEdits(), 1)
	})

	t.Run("stale callback acks without editing", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{
			unreserveFunc: func(context.Context, uuid.UUID, string) error { return nil },
			getFunc: func(context.Context, uuid.UUID) (*Gift, error) {
				// Someone else already released it so the rendered status matches.
				return &Gift{ID: id, Title: "Book", Status: "Reserved"}, nil
			},
		}
		b := newTestBot(tg, wl)

		b.handleCallback(context.Background(), callbackFrom(id.String()+":Reserved"))

		assert.Empty(t, tg.sentEdits())
		answers := tg.callbackAnswers()
		require.Len(t, answers, 1)
		assert.Equal(t, "Статус не изменился: Reserved", answers[0].Text)
	})

	t.Run("conflict surfaces a sanitized alert and no edit", func(t *testing.T) {
		tg := newFakeTelegram()
		wl := &fakeWishlist{
			reserveFunc: func(context.Context, uuid.UUID, ReserveRequest) error {
				return &APIError{StatusCode: http.StatusConflict, Body: `{"error":{"message":"Gift already reserved by another user"}}`}
			},
		}
		b := newTestBot(tg, wl)

		b.handleCallback(context.Background(), callbackFrom(id.String()+":Free"))

		assert.Empty(t, tg.sentEdits())
		answers := tg.callbackAnswers()
		require.Len(t, answers, 1)
		assert.Equal(t, "Ошибка: Gift already reserved by another user", answers[0].Text)
		assert.True(t, answers[0].ShowAlert)
	})

	t.Run("malformed payload is ignored", func(t *testing.T) {
		tg := newFakeTelegram()
		b := newTestBot(tg, &fakeWishlist{})

		b.handleCallback(context.Background(), callbackFrom("not-a-uuid:Free"))
		b.handleCallback(context.Background(), callbackFrom("a:b:c"))

		assert.Empty(t, tg.sentEdits())
		assert.Empty(t, tg.callbackAnswers())
	})

	t.Run("missing message or data alerts", func(t *testing.T) {
		tg := newFakeTelegram()
		b := newTestBot(tg, &fakeWishlist{})

		cq := callbackFrom("")
		b.handleCallback(context.Background(), cq)

		answers := tg.callbackAnswers()
		require.Len(t, answers, 1)
		assert.True(t, answers[0].ShowAlert)
	})
}
