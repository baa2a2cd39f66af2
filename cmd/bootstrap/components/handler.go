package components

import (
	"github.com/bahooo22/HannaWhishlist/internal/handler"
	"github.com/bahooo22/HannaWhishlist/internal/handler/api"
	"github.com/bahooo22/HannaWhishlist/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewGiftHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
