package bootstrap

import (
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
	),
)
