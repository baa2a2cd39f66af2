package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/bahooo22/HannaWhishlist/cmd/bootstrap"
	"github.com/bahooo22/HannaWhishlist/internal/bot"

	"go.uber.org/fx"
)

func startBot(lc fx.Lifecycle, b *bot.Bot, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			logger.Info("🤖 starting wishlist bot")
			go b.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			logger.Info("🛑 stopping wishlist bot")
			cancel()
			return nil
		},
	})
}

func main() {
	app := fx.New(
		bootstrap.BotModule,
		fx.Invoke(
			startBot,
		),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("failed to start application", "error", err)
		os.Exit(1)
	}

	<-app.Done()

	if err := app.Stop(context.Background()); err != nil {
		slog.Error("failed to stop application cleanly", "error", err)
	}

	slog.Info("application stopped")
}
