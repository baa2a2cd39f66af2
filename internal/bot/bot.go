package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const helpText = "👋 Привет! Я бот‑вишлист 🎁\n\n" +
	"Доступные команды:\n" +
	"/wishlist – показать список подарков\n" +
	"/addgift Название | [ссылка] – добавить подарок\n" +
	"/deletegift [номер по списку] – удалить подарок (только для администраторов)\n" +
	"/help – помощь по командам\n"

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

type wishlistAPI interface {
	ListGifts(ctx context.Context) ([]Gift, error)
	GetGift(ctx context.Context, id uuid.UUID) (*Gift, error)
	CreateGift(ctx context.Context, title, link string) (*Gift, error)
	DeleteGift(ctx context.Context, id uuid.UUID) error
	Reserve(ctx context.Context, id uuid.UUID, req ReserveRequest) error
	Unreserve(ctx context.Context, id uuid.UUID, nickname string) error
}

// Bot polls Telegram for updates and drives the wishlist API.
type Bot struct {
	tg          telegramClient
	wishlist    wishlistAPI
	admins      map[string]struct{}
	pollTimeout int
	logger      *slog.Logger
}

func New(cfg config.TelegramConfig, wishlist *WishlistClient, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newBot(&realTelegramClient{api: api}, cfg, wishlist, logger), nil
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, cfg config.TelegramConfig, wishlist wishlistAPI, logger *slog.Logger) *Bot {
	return newBot(tg, cfg, wishlist, logger)
}

func newBot(tg telegramClient, cfg config.TelegramConfig, wishlist wishlistAPI, logger *slog.Logger) *Bot {
	admins := make(map[string]struct{})
	for _, a := range cfg.NormalizedAdmins() {
		admins[a] = struct{}{}
	}
	logger.Info("loaded bot admins", "count", len(admins))

	pollTimeout := int(cfg.PollTimeout.Seconds())
	if pollTimeout <= 0 {
		pollTimeout = 30
	}

	return &Bot{
		tg:          tg,
		wishlist:    wishlist,
		admins:      admins,
		pollTimeout: pollTimeout,
		logger:      logger,
	}
}

// Start polls updates until the context is canceled. Each update runs on its
// own goroutine so a slow API call cannot stall the poll loop.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info("wishlist bot authorized", "username", b.tg.SelfUser().UserName)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			go b.handleUpdate(ctx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic while handling update", "panic", r, "update_id", update.UpdateID)
		}
	}()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/addgift"):
		b.handleAddGift(ctx, msg)
	case strings.HasPrefix(text, "/deletegift"):
		b.handleDeleteGift(ctx, msg)
	case text == "/start" || text == "/help":
		b.reply(msg.Chat.ID, helpText)
	case text == "/wishlist":
		b.handleWishlist(ctx, msg.Chat.ID)
	}
}

func (b *Bot) handleWishlist(ctx context.Context, chatID int64) {
	gifts, err := b.wishlist.ListGifts(ctx)
	if err != nil {
		b.logger.Error("failed to list gifts", "error", err)
		b.reply(chatID, "Ошибка при получении списка подарков.")
		return
	}

	if len(gifts) == 0 {
		b.reply(chatID, "Список подарков пуст 🎁")
		return
	}

	// The API returns gifts ordered by title, so ordinals are stable between
	// /wishlist and /deletegift as long as the catalog does not change.
	for i := range gifts {
		gift := &gifts[i]
		msg := tgbotapi.NewMessage(chatID, wishlistItemText(i+1, gift))
		msg.ParseMode = tgbotapi.ModeMarkdownV2
		msg.ReplyMarkup = giftKeyboard(gift)
		if _, err := b.tg.Send(msg); err != nil {
			b.logger.Error("failed to send wishlist item", "error", err, "gift_id", gift.ID)
		}
	}
}

func (b *Bot) handleAddGift(ctx context.Context, msg *tgbotapi.Message) {
	parts := strings.SplitN(msg.Text, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		b.reply(msg.Chat.ID, "Использование: /addgift Название | [ссылка]")
		return
	}

	title, link := parts[1], ""
	if idx := strings.Index(title, "|"); idx >= 0 {
		link = strings.TrimSpace(title[idx+1:])
		title = title[:idx]
	}
	title = strings.TrimSpace(title)

	if _, err := b.wishlist.CreateGift(ctx, title, link); err != nil {
		b.logger.Error("failed to create gift", "error", err, "title", title)
		b.reply(msg.Chat.ID, "Ошибка при добавлении подарка: "+sanitizeAPIError(err))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("🎁 Подарок «%s» добавлен!", title))
}

func (b *Bot) handleDeleteGift(ctx context.Context, msg *tgbotapi.Message) {
	if !b.isAdmin(msg.From) {
		if msg.From != nil {
			b.logger.Info("deletegift denied", "user_id", msg.From.ID, "username", msg.From.UserName)
		}
		b.reply(msg.Chat.ID, "⛔ У вас нет прав для удаления подарков.")
		return
	}

	parts := strings.SplitN(msg.Text, " ", 2)
	if len(parts) < 2 {
		b.reply(msg.Chat.ID, "Использование: /deletegift <номер>")
		return
	}
	ordinal, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		b.reply(msg.Chat.ID, "Использование: /deletegift <номер>")
		return
	}

	gifts, err := b.wishlist.ListGifts(ctx)
	if err != nil {
		b.logger.Error("failed to list gifts", "error", err)
		b.reply(msg.Chat.ID, "Ошибка при получении списка подарков.")
		return
	}

	// Ordinal resolution races with concurrent catalog edits; the worst case
	// deletes a neighbor that shifted into the slot.
	if ordinal < 1 || ordinal > len(gifts) {
		b.reply(msg.Chat.ID, "❌ Неверный номер подарка.")
		return
	}

	gift := gifts[ordinal-1]
	if err := b.wishlist.DeleteGift(ctx, gift.ID); err != nil {
		b.logger.Error("failed to delete gift", "error", err, "gift_id", gift.ID)
		b.reply(msg.Chat.ID, "Ошибка при удалении: "+sanitizeAPIError(err))
		return
	}

	b.reply(msg.Chat.ID, fmt.Sprintf("🗑 Подарок «%s» удалён.", gift.Title))
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil || cq.Data == "" {
		b.answerCallback(cq.ID, "Ошибка: неверные данные запроса или отсутствует сообщение.", true)
		return
	}

	parts := strings.Split(cq.Data, ":")
	if len(parts) != 2 {
		return
	}
	giftID, err := uuid.Parse(parts[0])
	if err != nil {
		return
	}
	statusAtRender := parts[1]

	if strings.EqualFold(statusAtRender, "Free") {
		err = b.wishlist.Reserve(ctx, giftID, ReserveRequest{
			ReservedByID:        strconv.FormatInt(cq.From.ID, 10),
			ReservedByNickname:  cq.From.UserName,
			ReservedByFirstName: cq.From.FirstName,
			ReservedByLastName:  cq.From.LastName,
		})
	} else {
		err = b.wishlist.Unreserve(ctx, giftID, cq.From.UserName)
	}
	if err != nil {
		b.logger.Info("reservation toggle rejected", "gift_id", giftID, "user_id", cq.From.ID, "error", err)
		b.answerCallback(cq.ID, "Ошибка: "+sanitizeAPIError(err), true)
		return
	}

	updated, err := b.wishlist.GetGift(ctx, giftID)
	if err != nil {
		b.logger.Error("failed to reload gift after toggle", "error", err, "gift_id", giftID)
		b.answerCallback(cq.ID, "Не удалось обновить данные", true)
		return
	}

	// If the status did not change the message is already current; editing it
	// would make Telegram reject the request as "message not modified".
	if strings.EqualFold(statusAtRender, updated.Status) {
		b.answerCallback(cq.ID, "Статус не изменился: "+updated.Status, false)
		return
	}

	edit := tgbotapi.NewEditMessageTextAndMarkup(
		cq.Message.Chat.ID,
		cq.Message.MessageID,
		giftMessageText(updated),
		giftKeyboard(updated),
	)
	edit.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := b.tg.Send(edit); err != nil {
		b.logger.Error("failed to edit gift message", "error", err, "gift_id", giftID)
		b.answerCallback(cq.ID, "Не удалось обновить сообщение.", true)
		return
	}

	b.answerCallback(cq.ID, "✅ Успешно!", false)
}

func (b *Bot) isAdmin(user *tgbotapi.User) bool {
	if user == nil {
		return false
	}
	_, ok := b.admins[strings.ToLower(user.UserName)]
	return ok
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send message", "error", err, "chat_id", chatID)
	}
}

func (b *Bot) answerCallback(callbackID, text string, alert bool) {
	cb := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cb = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := b.tg.Request(cb); err != nil {
		b.logger.Error("failed to answer callback", "error", err)
	}
}

func sanitizeAPIError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return extractErrorMessage(apiErr.Body)
	}
	return "Неизвестная ошибка"
}
