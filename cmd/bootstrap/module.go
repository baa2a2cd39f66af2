package bootstrap

import (
	"github.com/bahooo22/HannaWhishlist/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// Module wires the wishlist HTTP API.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	JWTModule,
	components.RepositoryModule,
	components.UseCaseModule,
	components.HandlerModule,
)

// BotModule wires the Telegram bot, which talks to the API over HTTP and
// needs neither the database nor the HTTP handlers.
var BotModule = fx.Options(
	ConfigModule,
	LoggerModule,
	components.BotModule,
)
