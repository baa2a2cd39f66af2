package components

import (
	"github.com/bahooo22/HannaWhishlist/internal/pkg/clock"
	"github.com/bahooo22/HannaWhishlist/internal/usecase"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/commands"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		commands.NewGiftCommands,
		queries.NewGiftQueries,
		usecase.NewTokenValidator,
	),
)
