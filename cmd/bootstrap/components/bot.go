package components

import (
	"log/slog"

	"github.com/bahooo22/HannaWhishlist/internal/bot"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/clock"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"

	"go.uber.org/fx"
)

var BotModule = fx.Module("bot",
	fx.Provide(
		NewTokenSource,
		NewWishlistClient,
		NewBot,
	),
)

func NewTokenSource(cfg config.Config) *bot.TokenSource {
	return bot.NewTokenSource(cfg.Auth, nil, clock.NewRealClock())
}

func NewWishlistClient(cfg config.Config, tokens *bot.TokenSource) *bot.WishlistClient {
	return bot.NewWishlistClient(cfg.Wishlist, tokens)
}

func NewBot(cfg config.Config, wishlist *bot.WishlistClient, logger *slog.Logger) (*bot.Bot, error) {
	return bot.New(cfg.Telegram, wishlist, logger)
}
