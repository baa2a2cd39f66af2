package bootstrap

import (
	"github.com/bahooo22/HannaWhishlist/internal/pkg/config"
	"github.com/bahooo22/HannaWhishlist/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret)
}
